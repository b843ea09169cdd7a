package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/llmcall"
	"github.com/signet-dev/signet/internal/store"
	"github.com/signet-dev/signet/internal/svcctx"
	"github.com/signet-dev/signet/internal/vqa"
)

// VQARequest is the request body for page question answering.
type VQARequest struct {
	// Questions to ask about each page. Empty uses the default signatory
	// questions.
	Questions []string `json:"questions,omitempty"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	APIKey    string   `json:"api_key,omitempty"`
	// DPI is the page render resolution.
	DPI int `json:"dpi,omitempty"`
}

// VQAResponse is the per-page answer set.
type VQAResponse struct {
	DocumentID string       `json:"document_id"`
	Provider   string       `json:"provider"`
	Answers    []vqa.Answer `json:"answers"`
}

// VQAEndpoint handles POST /api/documents/{id}/vqa. It renders the stored
// PDF's pages and asks the questions about each.
type VQAEndpoint struct{}

var _ api.Endpoint = (*VQAEndpoint)(nil)

func (e *VQAEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/vqa", e.handler
}

func (e *VQAEndpoint) RequiresInit() bool { return true }

func (e *VQAEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req VQARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	st := svcctx.StoreFrom(r.Context())
	rec, err := st.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load document: %v", err))
		return
	}
	if rec.StoredPath == "" {
		writeError(w, http.StatusBadRequest, "document original is not stored on this server")
		return
	}
	if _, err := os.Stat(rec.StoredPath); err != nil {
		writeError(w, http.StatusInternalServerError, "stored document file is missing")
		return
	}

	client, providerName, err := resolveClient(r, req.Provider, req.APIKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recorded := llmcall.WrapClient(client, svcctx.RecorderFrom(r.Context()), llmcall.RecordOptions{
		DocumentID: id,
		PromptKey:  llmcall.PromptKeyVQA,
	})

	pipeline := vqa.New(vqa.Config{
		Client: recorded,
		Model:  req.Model,
		DPI:    req.DPI,
		Logger: svcctx.LoggerFrom(r.Context()),
	})

	answers, err := pipeline.Ask(r.Context(), rec.StoredPath, req.Questions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("vqa failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, VQAResponse{
		DocumentID: id,
		Provider:   providerName,
		Answers:    answers,
	})
}

func (e *VQAEndpoint) Command(getServerURL func() string) *cobra.Command {
	var questions []string
	var provider, model string
	var dpi int
	cmd := &cobra.Command{
		Use:   "vqa <document-id>",
		Short: "Ask questions about each page of an uploaded PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			body := VQARequest{Questions: questions, Provider: provider, Model: model, DPI: dpi}
			var resp VQAResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/vqa", body, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringArrayVarP(&questions, "question", "q", nil, "Question to ask about each page (repeatable)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "Render resolution in DPI")
	return cmd
}
