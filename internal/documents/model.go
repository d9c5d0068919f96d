package documents

import "time"

// Document is an uploaded file together with its extracted text.
// Records are immutable once stored.
type Document struct {
	ID         string
	FileName   string
	Text       string
	MimeType   string
	SizeBytes  int64
	UploadedAt time.Time
}
