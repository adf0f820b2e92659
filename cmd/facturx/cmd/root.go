package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose    bool
	profile    string
	apiKey     string
	llmBaseURL string
	llmModel   string
)

var rootCmd = &cobra.Command{
	Use:   "facturx",
	Short: "Generate Factur-X hybrid invoices (PDF/A-3 with embedded CII XML)",
	Long: `Factur-X builds hybrid electronic invoices: a human-readable PDF
carrying a machine-readable UN/CEFACT Cross Industry Invoice document.

Supports:
  - CII XML generation from JSON or YAML invoice files
  - Embedding into PDF/A-3 containers with compliance metadata
  - Optional Ghostscript PDF/A-3 pre-conversion
  - LLM-based extraction from invoice text and images

Examples:
  # Generate the invoice XML only
  facturx generate invoice.json -o factur-x.xml

  # Build a full Factur-X PDF
  facturx build invoice.json letterhead.pdf -o invoice.pdf

  # Embed a pre-made XML document
  facturx embed factur-x.xml letterhead.pdf -o invoice.pdf

  # Check what a PDF carries
  facturx inspect invoice.pdf`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "EN16931", "Conformance profile (MINIMUM, BASIC_WL, EN16931)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for LLM provider (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL (env: LLM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model for extraction (env: LLM_MODEL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if llmBaseURL == "" {
		llmBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if llmModel == "" {
		llmModel = os.Getenv("LLM_MODEL")
	}
	if env := os.Getenv("FACTURX_PROFILE"); env != "" && !rootCmd.PersistentFlags().Changed("profile") {
		profile = env
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
