package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/pdfa"
	"github.com/rezonia/facturx/internal/processor"
)

var (
	buildOutput      string
	buildConvertPDFA bool
)

var buildCmd = &cobra.Command{
	Use:   "build <invoice-file> <pdf-file>",
	Short: "Build a Factur-X PDF from an invoice description and a PDF",
	Long: `Build generates the CII XML document for the invoice and embeds it,
together with PDF/A-3 compliance metadata, into the given PDF.

With --pdfa the input is first rewritten as PDF/A-3b through Ghostscript.
Without it the input is assumed to already be archival-grade.

Examples:
  # Embed into an existing PDF/A-3 container
  facturx build invoice.json letterhead.pdf -o invoice.pdf

  # Convert a plain PDF first
  facturx build invoice.json letterhead.pdf -o invoice.pdf --pdfa`,
	Args: cobra.ExactArgs(2),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "invoice.pdf", "Output PDF file")
	buildCmd.Flags().BoolVar(&buildConvertPDFA, "pdfa", false, "Convert the input to PDF/A-3 with Ghostscript first")
}

func runBuild(cmd *cobra.Command, args []string) error {
	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	inv, err := input.Load(args[0])
	if err != nil {
		return err
	}
	printVerbose("Loaded invoice %s with %d line items\n", inv.ID, len(inv.Items))

	opts := []processor.Option{processor.WithProfile(prof)}
	if buildConvertPDFA {
		conv := pdfa.NewConverter()
		if !conv.Available() {
			printVerbose("Ghostscript not found, skipping archival conversion\n")
		}
		opts = append(opts, processor.WithConverter(conv))
	}

	pl := processor.New(opts...)
	if err := pl.Build(cmd.Context(), inv, args[1], buildOutput); err != nil {
		return err
	}
	printVerbose("Wrote Factur-X container to %s\n", buildOutput)
	return nil
}
