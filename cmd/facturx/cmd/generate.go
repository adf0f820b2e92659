package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/processor"
)

var generateOutput string

var generateCmd = &cobra.Command{
	Use:   "generate <invoice-file>",
	Short: "Generate the Factur-X CII XML document for an invoice",
	Long: `Generate validates an invoice description (JSON or YAML), reconciles its
totals and writes the UN/CEFACT Cross Industry Invoice XML document.

Examples:
  # Write to stdout
  facturx generate invoice.json

  # Write to a file with the BASIC WL profile
  facturx generate invoice.yaml -o factur-x.xml --profile BASIC_WL`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	inv, err := input.Load(args[0])
	if err != nil {
		return err
	}
	printVerbose("Loaded invoice %s with %d line items\n", inv.ID, len(inv.Items))

	pl := processor.New(processor.WithProfile(prof))
	xmlBytes, err := pl.GenerateXML(inv)
	if err != nil {
		return err
	}

	if generateOutput == "" {
		_, err = os.Stdout.Write(xmlBytes)
		return err
	}
	if err := os.WriteFile(generateOutput, xmlBytes, 0o644); err != nil {
		return model.NewIOError("write", fmt.Sprintf("cannot write %s", generateOutput), err)
	}
	printVerbose("Wrote %d bytes to %s\n", len(xmlBytes), generateOutput)
	return nil
}

func parseProfile(s string) (model.Profile, error) {
	p := model.Profile(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", model.NewValidationError("profile", s, "enum", "profile must be MINIMUM, BASIC_WL or EN16931")
	}
	return p, nil
}
