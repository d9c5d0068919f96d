package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/shared/storage/object"
	"docchat-backend/internal/shared/storage/object/local"
	"docchat-backend/internal/shared/telemetry"
	"docchat-backend/internal/shared/util"
)

const contextEllipsis = "..."

// Service contains business logic for documents.
type Service struct {
	Uploads *local.Store
	// Archive optionally mirrors saved uploads; failures are logged only.
	Archive         object.ObjectStore
	Repo            Repo
	ContextMaxChars int
	Now             func() time.Time
}

// Upload saves the file, extracts its text and records the document.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: no file selected", ErrInvalidInput)
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	format, extractFn, err := extract.ForFile(name)
	if err != nil {
		return Document{}, err
	}

	size, err := s.Uploads.Save(ctx, name, "", r)
	if err != nil {
		return Document{}, fmt.Errorf("save upload: %w", err)
	}
	filePath, err := s.Uploads.Path(name)
	if err != nil {
		return Document{}, fmt.Errorf("save upload: %w", err)
	}

	text, err := extractFn(filePath)
	if err != nil {
		return Document{}, &ProcessingError{Format: format, Err: err}
	}

	doc := Document{
		ID:         uuid.NewString(),
		FileName:   name,
		Text:       text,
		MimeType:   sniffMimeType(filePath),
		SizeBytes:  size,
		UploadedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	s.archive(ctx, doc, filePath)
	return doc, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// Current returns the document used as chat context.
func (s *Service) Current(ctx context.Context) (Document, error) {
	return s.Repo.Latest(ctx)
}

// List returns stored documents newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}

// LatestContext returns the context window of the most recent document, or
// "" when nothing has been uploaded.
func (s *Service) LatestContext(ctx context.Context) (string, error) {
	doc, err := s.Repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return ContextWindow(doc.Text, s.ContextMaxChars), nil
}

// ContextWindow returns the first maxChars characters of text followed by
// "...". The marker is appended whether or not anything was cut. Empty text
// yields "".
func ContextWindow(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	if maxChars > 0 {
		count := 0
		for i := range text {
			if count == maxChars {
				text = text[:i]
				break
			}
			count++
		}
	}
	return text + contextEllipsis
}

func (s *Service) archive(ctx context.Context, doc Document, filePath string) {
	if s.Archive == nil {
		return
	}
	f, err := os.Open(filePath)
	if err != nil {
		telemetry.Warn("documents.archive_failed", map[string]any{"document_id": doc.ID, "error": err})
		return
	}
	defer f.Close()

	key := path.Join("uploads", doc.ID, doc.FileName)
	if _, err := s.Archive.Save(ctx, key, doc.MimeType, f); err != nil {
		telemetry.Warn("documents.archive_failed", map[string]any{"document_id": doc.ID, "key": key, "error": err})
		return
	}
	telemetry.Info("documents.archived", map[string]any{"document_id": doc.ID, "key": key})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sniffMimeType(filePath string) string {
	mt, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
