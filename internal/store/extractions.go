package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/signet-dev/signet/internal/signing"
)

// Extraction is a stored signing-rule extraction run.
type Extraction struct {
	ID            string          `json:"id"`
	DocumentID    string          `json:"document_id"`
	Provider      string          `json:"provider"`
	Model         string          `json:"model,omitempty"`
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	TotalRules    int             `json:"total_rules"`
	ApprovedCount int             `json:"approved_count"`
	Result        json.RawMessage `json:"result"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SigningResult decodes the stored result payload.
func (e *Extraction) SigningResult() (*signing.Result, error) {
	var r signing.Result
	if err := json.Unmarshal(e.Result, &r); err != nil {
		return nil, fmt.Errorf("decode extraction result: %w", err)
	}
	return &r, nil
}

// SaveExtraction records an extraction result against a document.
func (s *Store) SaveExtraction(ctx context.Context, documentID, provider, model string, result *signing.Result) (*Extraction, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	ext := &Extraction{
		ID:            uuid.New().String(),
		DocumentID:    documentID,
		Provider:      provider,
		Model:         model,
		Status:        result.Status,
		Message:       result.Message,
		TotalRules:    result.TotalRules,
		ApprovedCount: result.ApprovedCount,
		Result:        payload,
		CreatedAt:     time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, document_id, provider, model, status, message, total_rules, approved_count, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ext.ID, ext.DocumentID, ext.Provider, ext.Model, ext.Status, ext.Message,
		ext.TotalRules, ext.ApprovedCount, string(ext.Result), ext.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert extraction: %w", err)
	}
	return ext, nil
}

// GetExtraction loads a single extraction by ID.
func (s *Store) GetExtraction(ctx context.Context, id string) (*Extraction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, provider, model, status, message, total_rules, approved_count, result_json, created_at
		 FROM extractions WHERE id = ?`, id)
	return scanExtraction(row)
}

// ListExtractions returns extractions, newest first. A non-empty documentID
// filters to one document.
func (s *Store) ListExtractions(ctx context.Context, documentID string) ([]Extraction, error) {
	query := `SELECT id, document_id, provider, model, status, message, total_rules, approved_count, result_json, created_at
	          FROM extractions`
	args := []any{}
	if documentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var ext Extraction
		var payload string
		if err := rows.Scan(&ext.ID, &ext.DocumentID, &ext.Provider, &ext.Model, &ext.Status, &ext.Message,
			&ext.TotalRules, &ext.ApprovedCount, &payload, &ext.CreatedAt); err != nil {
			return nil, err
		}
		ext.Result = json.RawMessage(payload)
		out = append(out, ext)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*Extraction, error) {
	var ext Extraction
	var payload string
	err := row.Scan(&ext.ID, &ext.DocumentID, &ext.Provider, &ext.Model, &ext.Status, &ext.Message,
		&ext.TotalRules, &ext.ApprovedCount, &payload, &ext.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query extraction: %w", err)
	}
	ext.Result = json.RawMessage(payload)
	return &ext, nil
}
