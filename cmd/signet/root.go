package main

import (
	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/server/endpoints"
	"github.com/signet-dev/signet/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	serverURL    string
)

var rootCmd = &cobra.Command{
	Use:   "signet",
	Short: "Document signing-rule extraction and page-level VQA toolkit",
	Long: `Signet extracts structured information from uploaded documents using
hosted LLM providers.

The toolkit includes:
  - Signing-rule checkbox extraction (approved vs. unapproved)
  - Per-page visual question answering over rendered PDF pages
  - ORB-style feature-match similarity between two images
  - An HTTP server with an embedded web UI for document review`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.signet/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "signet home directory (default: ~/.signet)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://127.0.0.1:8080", "signet server URL for api commands",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	// Commands that call a running server
	apiRegistry := api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{}) {
		apiRegistry.Register(ep)
	}
	rootCmd.AddCommand(apiRegistry.BuildCommands(func() string { return serverURL }))

	rootCmd.AddCommand(versionCmd)
}
