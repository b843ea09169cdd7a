package document

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse reads a document from r and extracts its text, dispatching on the
// filename extension. Supported: .pdf, .txt, .md, .markdown, .docx.
func Parse(r io.Reader, filename string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return parsePDF(r, filename)
	case ".txt":
		return parseText(r, filename)
	case ".md", ".markdown":
		return parseMarkdown(r, filename)
	case ".docx":
		return parseDOCX(r, filename)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// Supported reports whether Parse can handle the given filename.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md", ".markdown", ".docx":
		return true
	}
	return false
}

func parseText(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	doc := newDocument(filename, int64(len(data)))
	text := strings.TrimSpace(string(data))

	// Plain text may carry its own form feeds.
	for _, page := range strings.Split(text, "\f") {
		doc.Pages = append(doc.Pages, strings.TrimSpace(page))
	}
	doc.PageCount = len(doc.Pages)
	return doc, nil
}
