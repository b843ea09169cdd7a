package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/signet-dev/signet/internal/document"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord is a stored document plus its on-disk location.
type DocumentRecord struct {
	document.Document
	StoredPath string `json:"-"`
}

// SaveDocument inserts a document and its per-page text.
func (s *Store) SaveDocument(ctx context.Context, doc *document.Document, storedPath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, size, page_count, stored_path, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Size, doc.PageCount, storedPath, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for i, text := range doc.Pages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO document_pages (document_id, page_num, text) VALUES (?, ?, ?)`,
			doc.ID, i+1, text)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// GetDocument loads a document with its pages.
func (s *Store) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, size, page_count, stored_path, uploaded_at
		 FROM documents WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Filename, &rec.Size, &rec.PageCount, &rec.StoredPath, &rec.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM document_pages WHERE document_id = ? ORDER BY page_num`, id)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		rec.Pages = append(rec.Pages, text)
	}
	return &rec, rows.Err()
}

// ListDocuments returns all documents, newest first, without page text.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, size, page_count, stored_path, uploaded_at
		 FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Size, &rec.PageCount, &rec.StoredPath, &rec.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document and, via cascade, its pages and
// extractions.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPageText returns the text of one 1-based page.
func (s *Store) GetPageText(ctx context.Context, id string, page int) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT text FROM document_pages WHERE document_id = ? AND page_num = ?`, id, page).
		Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query page: %w", err)
	}
	return text, nil
}
