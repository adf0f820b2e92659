// Package pdfa shells out to Ghostscript to rewrite a plain PDF as a
// PDF/A-3 container before embedding. The conversion step is optional: when
// the input is already archival-grade the pipeline can skip it, and when
// Ghostscript is not installed the converter reports itself unavailable
// instead of failing at call time.
package pdfa

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// Converter wraps the Ghostscript binary
type Converter struct {
	binary    string
	available bool
	timeout   time.Duration
}

// Option configures a Converter
type Option func(*Converter)

// WithBinary overrides the Ghostscript binary name or path
func WithBinary(path string) Option {
	return func(c *Converter) {
		c.binary = path
	}
}

// WithTimeout overrides the conversion timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.timeout = d
	}
}

// NewConverter probes for Ghostscript on PATH. A missing binary is not an
// error; the returned Converter reports itself unavailable.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		binary:  "gs",
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	path, err := exec.LookPath(c.binary)
	if err == nil {
		c.binary = path
		c.available = true
	}
	return c
}

// Available reports whether the Ghostscript binary was found
func (c *Converter) Available() bool {
	return c.available
}

// Version returns the Ghostscript version string, e.g. "10.02.1"
func (c *Converter) Version(ctx context.Context) (string, error) {
	if !c.available {
		return "", fmt.Errorf("ghostscript not available")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run ghostscript: %w", err)
	}

	version := versionPattern.FindString(strings.TrimSpace(string(out)))
	if version == "" {
		return "", fmt.Errorf("unexpected version output: %q", string(out))
	}
	return version, nil
}

// Convert rewrites inPath as a PDF/A-3b container at outPath
func (c *Converter) Convert(ctx context.Context, inPath, outPath string) error {
	if !c.available {
		return fmt.Errorf("ghostscript not available")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, conversionArgs(inPath, outPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ghostscript conversion timed out after %s", c.timeout)
		}
		return fmt.Errorf("ghostscript conversion failed: %w: %s", err, firstLine(stderr.String()))
	}
	return nil
}

// conversionArgs builds the Ghostscript invocation for a PDF/A-3b rewrite
func conversionArgs(inPath, outPath string) []string {
	return []string{
		"-dPDFA=3",
		"-dBATCH",
		"-dNOPAUSE",
		"-sProcessColorModel=DeviceRGB",
		"-sDEVICE=pdfwrite",
		"-dPDFACompatibilityPolicy=1",
		"-dPDFAValidation=1",
		"-sPDFAValidationProfile=PDF/A-3B",
		"-sOutputFile=" + outPath,
		inPath,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
