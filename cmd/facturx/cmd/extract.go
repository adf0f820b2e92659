package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/llm"
	"github.com/rezonia/facturx/internal/model"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <text-or-image-file>",
	Short: "Extract an invoice description from text or an image via LLM",
	Long: `Extract reads unstructured invoice content (plain text, or a PNG/JPEG
scan) and uses an LLM to produce a validated invoice description that can be
fed to generate or build.

Requires an API key (--api-key or LLM_API_KEY).

Examples:
  facturx extract invoice.txt -o invoice.json
  facturx extract scan.png --api-key <openrouter-key>`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if apiKey == "" {
		return fmt.Errorf("extraction requires an API key (--api-key or LLM_API_KEY)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return model.NewIOError("read", fmt.Sprintf("cannot read %s", args[0]), err)
	}

	var clientOpts []llm.ClientOption
	if llmBaseURL != "" {
		clientOpts = append(clientOpts, llm.WithBaseURL(llmBaseURL))
	}
	var extractorOpts []llm.ExtractorOption
	if llmModel != "" {
		extractorOpts = append(extractorOpts, llm.WithModel(llmModel))
	}
	extractor := llm.NewExtractor(llm.NewClient(apiKey, clientOpts...), extractorOpts...)

	var inv *model.Invoice
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".png":
		inv, err = extractor.ExtractFromImage(cmd.Context(), data, "image/png")
	case ".jpg", ".jpeg":
		inv, err = extractor.ExtractFromImage(cmd.Context(), data, "image/jpeg")
	default:
		inv, err = extractor.ExtractFromText(cmd.Context(), string(data))
	}
	if err != nil {
		return err
	}
	printVerbose("Extracted invoice %s with %d line items\n", inv.ID, len(inv.Items))

	out, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}

	if extractOutput == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(extractOutput, out, 0o644); err != nil {
		return model.NewIOError("write", fmt.Sprintf("cannot write %s", extractOutput), err)
	}
	return nil
}
