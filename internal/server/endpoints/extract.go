package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/llmcall"
	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/signing"
	"github.com/signet-dev/signet/internal/store"
	"github.com/signet-dev/signet/internal/svcctx"
)

// ExtractRequest is the request body for starting an extraction.
type ExtractRequest struct {
	// Provider selects a configured provider. Empty uses the configured default.
	Provider string `json:"provider,omitempty"`
	// Model overrides the provider's configured model.
	Model string `json:"model,omitempty"`
	// APIKey, when set, builds a one-off client with this key instead of the
	// configured one. It is used for this request only and never persisted.
	APIKey string `json:"api_key,omitempty"`
}

// ExtractResponse returns the stored extraction together with its parsed
// result.
type ExtractResponse struct {
	ExtractionID string          `json:"extraction_id"`
	DocumentID   string          `json:"document_id"`
	Provider     string          `json:"provider"`
	Result       *signing.Result `json:"result"`
}

// ExtractEndpoint handles POST /api/documents/{id}/extract.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// An empty body means "all defaults".
	var req ExtractRequest
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
	if rec.Text() == "" {
		writeError(w, http.StatusBadRequest, "document has no extractable text")
		return
	}

	client, providerName, err := resolveClient(r, req.Provider, req.APIKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recorded := llmcall.WrapClient(client, svcctx.RecorderFrom(r.Context()), llmcall.RecordOptions{
		DocumentID: id,
		PromptKey:  llmcall.PromptKeySigningExtraction,
	})

	extractor := signing.NewExtractor(signing.Config{
		Model:  req.Model,
		Logger: svcctx.LoggerFrom(r.Context()),
	})
	result := extractor.Extract(r.Context(), recorded, rec.Text())

	ext, err := st.SaveExtraction(r.Context(), id, providerName, req.Model, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save extraction: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		ExtractionID: ext.ID,
		DocumentID:   id,
		Provider:     providerName,
		Result:       result,
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model string
	cmd := &cobra.Command{
		Use:   "extract <document-id>",
		Short: "Run signing-rule extraction on an uploaded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			body := ExtractRequest{Provider: provider, Model: model}
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/extract", body, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	return cmd
}

// resolveClient picks the LLM client for a request. A per-request API key
// builds a throwaway client of the same provider type; otherwise the
// registered client is used.
func resolveClient(r *http.Request, providerName, apiKey string) (providers.LLMClient, string, error) {
	cfgMgr := svcctx.ConfigManagerFrom(r.Context())
	if providerName == "" && cfgMgr != nil {
		providerName = cfgMgr.Get().Defaults.LLMProvider
	}
	if providerName == "" {
		return nil, "", errors.New("no provider specified and no default configured")
	}

	if apiKey != "" {
		if cfgMgr == nil {
			return nil, "", errors.New("server has no provider configuration")
		}
		provCfg, ok := cfgMgr.Get().LLMProviders[providerName]
		if !ok {
			return nil, "", fmt.Errorf("unknown provider %q", providerName)
		}
		client := providers.NewClientFromConfig(providers.LLMProviderConfig{
			Type:      provCfg.Type,
			Model:     provCfg.Model,
			APIKey:    apiKey,
			RateLimit: provCfg.RateLimit,
			Enabled:   true,
		})
		if client == nil {
			return nil, "", fmt.Errorf("unknown provider type %q", provCfg.Type)
		}
		return client, providerName, nil
	}

	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		return nil, "", errors.New("provider registry not initialized")
	}
	client, err := registry.Get(providerName)
	if err != nil {
		return nil, "", err
	}
	return client, providerName, nil
}
