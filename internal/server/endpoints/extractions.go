package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/export"
	"github.com/signet-dev/signet/internal/store"
	"github.com/signet-dev/signet/internal/svcctx"
)

// ListExtractionsEndpoint handles GET /api/extractions. Supports
// ?document_id= to filter.
type ListExtractionsEndpoint struct{}

func (e *ListExtractionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/extractions", e.handler
}

func (e *ListExtractionsEndpoint) RequiresInit() bool { return true }

func (e *ListExtractionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	exts, err := svcctx.StoreFrom(r.Context()).ListExtractions(r.Context(), r.URL.Query().Get("document_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list extractions: %v", err))
		return
	}
	if exts == nil {
		exts = []store.Extraction{}
	}
	writeJSON(w, http.StatusOK, exts)
}

func (e *ListExtractionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var documentID string
	cmd := &cobra.Command{
		Use:   "extractions",
		Short: "List extraction results",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/extractions"
			if documentID != "" {
				path += "?document_id=" + documentID
			}
			var exts []store.Extraction
			if err := client.Get(cmd.Context(), path, &exts); err != nil {
				return err
			}
			return api.Output(exts)
		},
	}
	cmd.Flags().StringVar(&documentID, "document", "", "Filter by document ID")
	return cmd
}

// GetExtractionEndpoint handles GET /api/extractions/{id}.
type GetExtractionEndpoint struct{}

func (e *GetExtractionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/extractions/{id}", e.handler
}

func (e *GetExtractionEndpoint) RequiresInit() bool { return true }

func (e *GetExtractionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ext, err := svcctx.StoreFrom(r.Context()).GetExtraction(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load extraction: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

func (e *GetExtractionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "extraction <id>",
		Short: "Get one extraction result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var ext store.Extraction
			if err := client.Get(cmd.Context(), "/api/extractions/"+args[0], &ext); err != nil {
				return err
			}
			return api.Output(ext)
		},
	}
}

// ExportExtractionEndpoint handles GET /api/extractions/{id}/export and
// returns an XLSX download.
type ExportExtractionEndpoint struct{}

func (e *ExportExtractionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/extractions/{id}/export", e.handler
}

func (e *ExportExtractionEndpoint) RequiresInit() bool { return true }

func (e *ExportExtractionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ext, err := svcctx.StoreFrom(r.Context()).GetExtraction(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load extraction: %v", err))
		return
	}

	data, err := export.ExtractionXLSX(ext, svcctx.LoggerFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to export: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "extraction-"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Command is nil: downloading binary artifacts belongs to curl or the UI.
func (e *ExportExtractionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil
}
