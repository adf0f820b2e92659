// Package server exposes the Factur-X build flow over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rezonia/facturx/internal/input"
	"github.com/rezonia/facturx/internal/llm"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/internal/pdfa"
	"github.com/rezonia/facturx/internal/processor"
)

// Config holds server configuration
type Config struct {
	Address      string
	Profile      string
	APIKey       string
	LLMBaseURL   string
	LLMModel     string
	ConvertPDFA  bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	pipeline  *processor.Pipeline
	extractor *llm.Extractor
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	// Create LLM extractor if API key provided
	var extractor *llm.Extractor
	if config.APIKey != "" {
		var clientOpts []llm.ClientOption
		if config.LLMBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(config.LLMBaseURL))
		}
		client := llm.NewClient(config.APIKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if config.LLMModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(config.LLMModel))
		}
		extractor = llm.NewExtractor(client, extractorOpts...)
	}

	prof := model.Profile(config.Profile)
	if !prof.Valid() {
		prof = model.ProfileEN16931
	}
	pipelineOpts := []processor.Option{
		processor.WithProfile(prof),
	}
	if config.ConvertPDFA {
		pipelineOpts = append(pipelineOpts, processor.WithConverter(pdfa.NewConverter()))
	}

	s := &Server{
		config:    config,
		router:    router,
		pipeline:  processor.New(pipelineOpts...),
		extractor: extractor,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/generate/xml", s.handleGenerateXML)
		v1.POST("/build", s.handleBuild)
		v1.POST("/inspect", s.handleInspect)
		v1.POST("/extract", s.handleExtract)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"profile": string(s.pipeline.Profile()),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGenerateXML accepts a JSON invoice description and responds with the
// encoded CII document.
func (s *Server) handleGenerateXML(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	inv, err := input.ParseJSON(body)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	xmlBytes, err := s.pipeline.GenerateXML(inv)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/xml", xmlBytes)
}

// handleBuild accepts a multipart form with a "pdf" file and an "invoice"
// JSON file and responds with the Factur-X container.
func (s *Server) handleBuild(c *gin.Context) {
	invoiceData, err := formFileBytes(c, "invoice")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing invoice form file"})
		return
	}
	pdfData, err := formFileBytes(c, "pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing pdf form file"})
		return
	}

	inv, err := input.ParseJSON(invoiceData)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Each request gets its own scratch directory; the editor needs real
	// files for the container read and the atomic write.
	workDir, err := os.MkdirTemp("", "facturx-"+uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate work directory"})
		return
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, "input.pdf")
	outPath := filepath.Join(workDir, "output.pdf")
	if err := os.WriteFile(inPath, pdfData, 0o600); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage input container"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	if err := s.pipeline.Build(ctx, inv, inPath, outPath); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.FileAttachment(outPath, inv.ID+".pdf")
}

// handleInspect accepts a PDF body and reports how the document twin is
// registered in it.
func (s *Server) handleInspect(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	workDir, err := os.MkdirTemp("", "facturx-"+uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate work directory"})
		return
	}
	defer os.RemoveAll(workDir)

	path := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage input container"})
		return
	}

	report, err := pdf.Inspect(path)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleExtract accepts free-form invoice text and responds with the
// extracted, validated invoice.
func (s *Server) handleExtract(c *gin.Context) {
	if s.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "extraction unavailable",
			"details": "no LLM API key configured on server",
		})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	inv, err := s.extractor.ExtractFromText(ctx, string(body))
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, inv)
}

// Helper functions

func formFileBytes(c *gin.Context, name string) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// errorStatus maps the error taxonomy onto HTTP statuses: rejected input is
// unprocessable, everything else is a server-side failure.
func errorStatus(err error) int {
	var ve *model.ValidationError
	var re *model.ReconciliationError
	var ee *model.EncodingError
	switch {
	case errors.As(err, &ve), errors.As(err, &re), errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
