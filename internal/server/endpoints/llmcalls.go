package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/store"
	"github.com/signet-dev/signet/internal/svcctx"
)

// ListLLMCallsEndpoint handles GET /api/llmcalls. Supports ?document_id=,
// ?prompt_key=, and ?limit=.
type ListLLMCallsEndpoint struct{}

func (e *ListLLMCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls", e.handler
}

func (e *ListLLMCallsEndpoint) RequiresInit() bool { return true }

func (e *ListLLMCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.LLMCallFilter{
		DocumentID: q.Get("document_id"),
		PromptKey:  q.Get("prompt_key"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	calls, err := svcctx.StoreFrom(r.Context()).ListLLMCalls(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list llm calls: %v", err))
		return
	}
	if calls == nil {
		calls = []store.LLMCallRow{}
	}
	writeJSON(w, http.StatusOK, calls)
}

func (e *ListLLMCallsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var documentID, promptKey string
	var limit int
	cmd := &cobra.Command{
		Use:   "llmcalls",
		Short: "List recorded LLM calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/llmcalls?limit=" + strconv.Itoa(limit)
			if documentID != "" {
				path += "&document_id=" + documentID
			}
			if promptKey != "" {
				path += "&prompt_key=" + promptKey
			}
			var calls []store.LLMCallRow
			if err := client.Get(cmd.Context(), path, &calls); err != nil {
				return err
			}
			return api.Output(calls)
		},
	}
	cmd.Flags().StringVar(&documentID, "document", "", "Filter by document ID")
	cmd.Flags().StringVar(&promptKey, "prompt-key", "", "Filter by prompt key")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of calls to return")
	return cmd
}

// GetLLMCallEndpoint handles GET /api/llmcalls/{id}.
type GetLLMCallEndpoint struct{}

func (e *GetLLMCallEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls/{id}", e.handler
}

func (e *GetLLMCallEndpoint) RequiresInit() bool { return true }

func (e *GetLLMCallEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	call, err := svcctx.StoreFrom(r.Context()).GetLLMCall(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "llm call not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load llm call: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (e *GetLLMCallEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "llmcall <id>",
		Short: "Get one recorded LLM call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var call store.LLMCallRow
			if err := client.Get(cmd.Context(), "/api/llmcalls/"+args[0], &call); err != nil {
				return err
			}
			return api.Output(call)
		},
	}
}

// LLMCallStatsEndpoint handles GET /api/llmcalls/stats.
type LLMCallStatsEndpoint struct{}

func (e *LLMCallStatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/llmcalls/stats", e.handler
}

func (e *LLMCallStatsEndpoint) RequiresInit() bool { return true }

func (e *LLMCallStatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	stats, err := svcctx.StoreFrom(r.Context()).GetLLMCallStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get stats: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (e *LLMCallStatsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "llmcall-stats",
		Short: "Show aggregate LLM usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var stats store.LLMCallStats
			if err := client.Get(cmd.Context(), "/api/llmcalls/stats", &stats); err != nil {
				return err
			}
			return api.Output(stats)
		},
	}
}
