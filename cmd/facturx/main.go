package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rezonia/facturx/cmd/facturx/cmd"
	"github.com/rezonia/facturx/internal/model"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto distinct exit codes so scripts can
// tell rejected input from infrastructure failures.
func exitCode(err error) int {
	var ve *model.ValidationError
	var re *model.ReconciliationError
	var ee *model.EncodingError
	var ioe *model.IOError
	switch {
	case errors.As(err, &ve):
		return 2
	case errors.As(err, &re):
		return 3
	case errors.As(err, &ee):
		return 4
	case errors.As(err, &ioe):
		return 5
	}
	return 1
}
