// Package audio stores synthesized speech files and serves them back.
package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"docchat-backend/internal/shared/storage/object/local"
)

const (
	routePrefix = "/audio"
	fileExt     = ".mp3"
	contentType = "audio/mpeg"
)

// Artifact is a generated audio file.
type Artifact struct {
	FileName  string
	URL       string
	SizeBytes int64
}

// Store writes audio artifacts into a directory under fresh unique names.
// Files are never removed.
type Store struct {
	files   *local.Store
	baseURL string
}

// NewStore creates a Store rooted at dir. URLs are built from baseURL.
func NewStore(dir, baseURL string) *Store {
	return &Store{
		files:   local.New(dir),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Dir returns the directory holding audio files.
func (s *Store) Dir() string {
	return s.files.Dir()
}

// EnsureDir creates the audio directory if missing.
func (s *Store) EnsureDir() error {
	return s.files.EnsureDir()
}

// Save streams r into a new file and returns its public URL.
func (s *Store) Save(ctx context.Context, r io.Reader) (Artifact, error) {
	name := uuid.NewString() + fileExt
	n, err := s.files.Save(ctx, name, contentType, r)
	if err != nil {
		if p, perr := s.files.Path(name); perr == nil {
			_ = os.Remove(p)
		}
		return Artifact{}, fmt.Errorf("write audio %s: %w", name, err)
	}
	return Artifact{FileName: name, URL: s.URL(name), SizeBytes: n}, nil
}

// URL returns the absolute URL of a stored file.
func (s *Store) URL(fileName string) string {
	return s.baseURL + routePrefix + "/" + fileName
}
