package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdfa"
	"github.com/rezonia/facturx/internal/processor"
)

var (
	embedOutput      string
	embedConvertPDFA bool
)

var embedCmd = &cobra.Command{
	Use:   "embed <xml-file> <pdf-file>",
	Short: "Embed a pre-made CII XML document into a PDF",
	Long: `Embed attaches an existing Factur-X XML document to a PDF, registering
it as an associated file and in the embedded files name tree, and sets the
PDF/A-3 compliance metadata.

Examples:
  facturx embed factur-x.xml letterhead.pdf -o invoice.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedOutput, "output", "o", "invoice.pdf", "Output PDF file")
	embedCmd.Flags().BoolVar(&embedConvertPDFA, "pdfa", false, "Convert the input to PDF/A-3 with Ghostscript first")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	xmlBytes, err := os.ReadFile(args[0])
	if err != nil {
		return model.NewIOError("read", fmt.Sprintf("cannot read %s", args[0]), err)
	}

	opts := []processor.Option{processor.WithProfile(prof)}
	if embedConvertPDFA {
		opts = append(opts, processor.WithConverter(pdfa.NewConverter()))
	}

	pl := processor.New(opts...)
	if err := pl.Embed(cmd.Context(), xmlBytes, args[1], embedOutput); err != nil {
		return err
	}
	printVerbose("Wrote Factur-X container to %s\n", embedOutput)
	return nil
}
