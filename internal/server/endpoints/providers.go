package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/svcctx"
)

// ProviderInfo describes one configured LLM provider.
type ProviderInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Model   string `json:"model,omitempty"`
	Default bool   `json:"default,omitempty"`
	// Active means the provider has an API key and a registered client.
	Active bool `json:"active"`
}

// ListProvidersEndpoint handles GET /api/providers. The web UI's provider
// selector is driven by this. API keys are never included.
type ListProvidersEndpoint struct{}

func (e *ListProvidersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/providers", e.handler
}

func (e *ListProvidersEndpoint) RequiresInit() bool { return false }

func (e *ListProvidersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.RegistryFrom(r.Context())
	cfgMgr := svcctx.ConfigManagerFrom(r.Context())

	out := []ProviderInfo{}
	if cfgMgr != nil {
		cfg := cfgMgr.Get()
		for name, prov := range cfg.LLMProviders {
			if !prov.Enabled {
				continue
			}
			info := ProviderInfo{
				Name:    name,
				Type:    prov.Type,
				Model:   prov.Model,
				Default: name == cfg.Defaults.LLMProvider,
			}
			if registry != nil {
				info.Active = registry.Has(name)
			}
			out = append(out, info)
		}
	} else if registry != nil {
		for _, name := range registry.List() {
			out = append(out, ProviderInfo{Name: name, Active: true})
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (e *ListProvidersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List configured LLM providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var out []ProviderInfo
			if err := client.Get(cmd.Context(), "/api/providers", &out); err != nil {
				return err
			}
			return api.Output(out)
		},
	}
}
