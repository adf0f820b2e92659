package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	servePDFA    bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for building Factur-X invoices.

The API provides endpoints for:
  - POST /api/v1/generate/xml  - Generate the CII XML for a JSON invoice
  - POST /api/v1/build         - Build a Factur-X PDF (multipart: invoice, pdf)
  - POST /api/v1/inspect       - Report the Factur-X content of a PDF
  - POST /api/v1/extract       - LLM extraction from invoice text
  - GET  /health               - Health check

Examples:
  # Start server on default port
  facturx serve

  # Start on custom port with LLM extraction enabled
  facturx serve --address :8080 --api-key <key>

  # Start in debug mode
  facturx serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().BoolVar(&servePDFA, "pdfa", false, "Convert uploads to PDF/A-3 with Ghostscript before embedding")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	prof, err := parseProfile(profile)
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:      serverAddr,
		Profile:      string(prof),
		APIKey:       apiKey,
		LLMBaseURL:   llmBaseURL,
		LLMModel:     llmModel,
		ConvertPDFA:  servePDFA,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if apiKey != "" {
		fmt.Println("LLM extraction enabled")
	} else {
		fmt.Println("LLM extraction disabled (no API key)")
	}

	return srv.Run()
}
