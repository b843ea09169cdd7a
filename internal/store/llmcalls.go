package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMCallRow is an LLM call record as stored.
type LLMCallRow struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	LatencyMs    int       `json:"latency_ms"`
	DocumentID   string    `json:"document_id,omitempty"`
	ExtractionID string    `json:"extraction_id,omitempty"`
	PromptKey    string    `json:"prompt_key"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Response     string    `json:"response,omitempty"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

// InsertLLMCall stores one call record.
func (s *Store) InsertLLMCall(ctx context.Context, call *LLMCallRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_calls (id, timestamp, latency_ms, document_id, extraction_id, prompt_key, provider, model, input_tokens, output_tokens, response, success, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.ID, call.Timestamp, call.LatencyMs, call.DocumentID, call.ExtractionID, call.PromptKey,
		call.Provider, call.Model, call.InputTokens, call.OutputTokens, call.Response,
		boolToInt(call.Success), call.Error)
	if err != nil {
		return fmt.Errorf("insert llm call: %w", err)
	}
	return nil
}

// GetLLMCall returns one call record by ID.
func (s *Store) GetLLMCall(ctx context.Context, id string) (*LLMCallRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, latency_ms, document_id, extraction_id, prompt_key, provider, model, input_tokens, output_tokens, response, success, error
		 FROM llm_calls WHERE id = ?`, id)

	var call LLMCallRow
	var success int
	err := row.Scan(&call.ID, &call.Timestamp, &call.LatencyMs, &call.DocumentID, &call.ExtractionID,
		&call.PromptKey, &call.Provider, &call.Model, &call.InputTokens, &call.OutputTokens,
		&call.Response, &success, &call.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query llm call: %w", err)
	}
	call.Success = success != 0
	return &call, nil
}

// LLMCallFilter narrows ListLLMCalls.
type LLMCallFilter struct {
	DocumentID string
	PromptKey  string
	Limit      int
}

// ListLLMCalls returns call records, newest first.
func (s *Store) ListLLMCalls(ctx context.Context, filter LLMCallFilter) ([]LLMCallRow, error) {
	query := `SELECT id, timestamp, latency_ms, document_id, extraction_id, prompt_key, provider, model, input_tokens, output_tokens, response, success, error
	          FROM llm_calls`
	var conds []string
	var args []any
	if filter.DocumentID != "" {
		conds = append(conds, "document_id = ?")
		args = append(args, filter.DocumentID)
	}
	if filter.PromptKey != "" {
		conds = append(conds, "prompt_key = ?")
		args = append(args, filter.PromptKey)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm calls: %w", err)
	}
	defer rows.Close()

	var out []LLMCallRow
	for rows.Next() {
		var row LLMCallRow
		var success int
		if err := rows.Scan(&row.ID, &row.Timestamp, &row.LatencyMs, &row.DocumentID, &row.ExtractionID,
			&row.PromptKey, &row.Provider, &row.Model, &row.InputTokens, &row.OutputTokens,
			&row.Response, &success, &row.Error); err != nil {
			return nil, err
		}
		row.Success = success != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

// LLMCallStats aggregates recorded calls.
type LLMCallStats struct {
	TotalCalls   int `json:"total_calls"`
	SuccessCalls int `json:"success_calls"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// GetLLMCallStats returns aggregate usage numbers.
func (s *Store) GetLLMCallStats(ctx context.Context) (*LLMCallStats, error) {
	var stats LLMCallStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		 FROM llm_calls`).
		Scan(&stats.TotalCalls, &stats.SuccessCalls, &stats.InputTokens, &stats.OutputTokens)
	if err != nil {
		return nil, fmt.Errorf("query llm call stats: %w", err)
	}
	return &stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
