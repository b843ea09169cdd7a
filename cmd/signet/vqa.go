package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/config"
	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/vqa"
)

var (
	vqaQuestions []string
	vqaProvider  string
	vqaModel     string
	vqaDPI       int
)

var vqaCmd = &cobra.Command{
	Use:   "vqa <document.pdf>",
	Short: "Ask questions about each page of a PDF",
	Long: `Render each page of a PDF and ask a vision-capable LLM provider the
given questions about it. Without -q flags the default signatory
questions are used (print full name, print surname, official position).

Examples:
  signet vqa contract.pdf
  signet vqa contract.pdf -q "Who signed this page?"
  signet vqa contract.pdf --provider gemini --dpi 150`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
		name := vqaProvider
		if name == "" {
			name = cfg.Defaults.LLMProvider
		}
		client, err := registry.Get(name)
		if err != nil {
			return err
		}

		questions := vqaQuestions
		if len(questions) == 0 {
			questions = cfg.Defaults.VQAQuestions
		}
		if len(questions) == 0 {
			questions = vqa.DefaultQuestions()
		}

		dpi := vqaDPI
		if dpi == 0 {
			dpi = cfg.Defaults.RenderDPI
		}

		pipeline := vqa.New(vqa.Config{
			Client: client,
			Model:  vqaModel,
			DPI:    dpi,
		})

		answers, err := pipeline.Ask(cmd.Context(), args[0], questions)
		if err != nil {
			return err
		}

		page := 0
		for _, a := range answers {
			if a.Page != page {
				page = a.Page
				fmt.Printf("\nPage %d\n", page)
			}
			if a.Err != "" {
				fmt.Printf("%s -> error: %s\n", a.Question, a.Err)
				continue
			}
			fmt.Printf("%s -> %s\n", a.Question, a.Answer)
		}
		return nil
	},
}

func init() {
	vqaCmd.Flags().StringArrayVarP(&vqaQuestions, "question", "q", nil, "Question to ask about each page (repeatable)")
	vqaCmd.Flags().StringVar(&vqaProvider, "provider", "", "LLM provider name (default: configured default)")
	vqaCmd.Flags().StringVar(&vqaModel, "model", "", "Model override for the provider")
	vqaCmd.Flags().IntVar(&vqaDPI, "dpi", 0, "Render resolution in DPI (default: configured render_dpi)")

	rootCmd.AddCommand(vqaCmd)
}
