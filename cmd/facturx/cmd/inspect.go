package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/pdf"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <pdf-file>",
	Short: "Report the Factur-X content of a PDF",
	Long: `Inspect lists the embedded and associated files of a PDF and reports
whether a Factur-X document twin is registered in both indices.

Examples:
  facturx inspect invoice.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	report, err := pdf.Inspect(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
