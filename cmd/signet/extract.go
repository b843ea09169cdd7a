package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/config"
	"github.com/signet-dev/signet/internal/document"
	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/signing"
)

var (
	extractProvider string
	extractModel    string
)

var extractCmd = &cobra.Command{
	Use:   "extract <document>",
	Short: "Extract signing rules from a document",
	Long: `Extract the document's text, send it to the configured LLM provider,
and print the detected signing rules with their approval state.

Supported inputs: .pdf, .docx, .md, .txt

Examples:
  signet extract bylaws.pdf
  signet extract bylaws.pdf --provider anthropic -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := document.Parse(f, filepath.Base(args[0]))
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		if doc.Text() == "" {
			return fmt.Errorf("no text extracted from %s", args[0])
		}

		registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
		name := extractProvider
		if name == "" {
			name = cfg.Defaults.LLMProvider
		}
		client, err := registry.Get(name)
		if err != nil {
			return err
		}

		extractor := signing.NewExtractor(signing.Config{Model: extractModel})
		result := extractor.Extract(cmd.Context(), client, doc.Text())
		return api.Output(result)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "LLM provider name (default: configured default)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "Model override for the provider")

	rootCmd.AddCommand(extractCmd)
}
