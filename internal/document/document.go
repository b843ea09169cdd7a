// Package document parses uploaded files into per-page text and renders
// PDF pages to images for vision models.
package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a parsed upload with its extracted text split by page.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	PageCount  int       `json:"page_count"`
	Pages      []string  `json:"pages,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Text returns the full extracted text with form feeds between pages.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\f")
}

// Page returns the text of a single 1-based page, or "" if out of range.
func (d *Document) Page(n int) string {
	if n < 1 || n > len(d.Pages) {
		return ""
	}
	return d.Pages[n-1]
}

func newDocument(filename string, size int64) *Document {
	return &Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}
}
