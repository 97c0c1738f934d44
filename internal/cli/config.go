package cli

import (
	"github.com/toyz/siggs/internal/source"
	"github.com/toyz/siggs/internal/utils"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// Config holds the configuration for a CLI run
type Config struct {
	// Dir is the package directory holding the method declarations
	Dir string

	// Methods lists the methods to synthesize, as Type.Method. Empty means
	// every method in Dir carrying a parameter directive.
	Methods []string

	// Output is the file emitted source is written to; empty or "-" means stdout
	Output string

	// Package is the package clause of emitted source
	Package string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only shows errors
	Quiet bool

	// JSON renders inspection results as JSON
	JSON bool
}

// Validate checks the configuration for a run
func (c Config) Validate() error {
	if err := utils.NotBlank("dir")(c.Dir); err != nil {
		return siggserrors.Wrap(siggserrors.ConfigurationErrorCode, "a package directory is required", err)
	}
	if c.Verbose && c.Quiet {
		return siggserrors.New(siggserrors.ConfigurationErrorCode, "--verbose and --quiet are mutually exclusive")
	}

	isRef := utils.Custom("method", "must have the form Type.Method", func(ref string) bool {
		_, _, err := source.ParseRef(ref)
		return err == nil
	})
	if err := utils.ValidateEach("methods", isRef)(c.Methods); err != nil {
		return siggserrors.Wrap(siggserrors.ConfigurationErrorCode, "invalid method list", err).
			WithSuggestion("use the form Type.Method, e.g. Handler.Send")
	}

	if c.Package != "" {
		if err := utils.IsValidGoIdentifier("package")(c.Package); err != nil {
			return siggserrors.Wrap(siggserrors.ConfigurationErrorCode, "invalid package name", err)
		}
	}
	return nil
}
