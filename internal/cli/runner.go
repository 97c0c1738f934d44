package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/toyz/siggs/internal/emit"
	"github.com/toyz/siggs/internal/source"
	"github.com/toyz/siggs/internal/utils"
	"github.com/toyz/siggs/pkg/annotations"
	siggserrors "github.com/toyz/siggs/pkg/errors"
	"github.com/toyz/siggs/pkg/siggs"
	"github.com/toyz/siggs/pkg/synth"
)

// DefaultPackage is the package clause used when none is configured
const DefaultPackage = "params"

// Runner loads methods from source, synthesizes their types and reports or
// emits them
type Runner struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	service     *siggs.Service
	loader      *source.Loader
	out         io.Writer
}

// NewRunner creates a runner writing results to out. Diagnostics go to
// stderr at the level chosen by Verbose and Quiet.
func NewRunner(config Config, out io.Writer) *Runner {
	return NewRunnerWithDiagnostics(config, out, NewDiagnostics(config.Verbose, config.Quiet))
}

// NewDiagnostics creates a stderr diagnostic system for the given verbosity
func NewDiagnostics(verbose, quiet bool) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return diagnostics.ToStderr()
}

// NewRunnerWithDiagnostics creates a runner with a custom diagnostic system
func NewRunnerWithDiagnostics(config Config, out io.Writer, diagnostics *utils.DiagnosticSystem) *Runner {
	registry := annotations.NewBuiltinRegistry()
	return &Runner{
		config:      config,
		diagnostics: diagnostics,
		service: siggs.New(siggs.Options{
			Registry: registry,
			Logger:   diagnostics,
		}),
		loader: source.NewLoader(registry, nil),
		out:    out,
	}
}

// Synthesize loads every configured method and returns its type, in order
func (r *Runner) Synthesize() ([]*synth.Type, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	refs, err := r.methodRefs()
	if err != nil {
		return nil, err
	}

	r.diagnostics.Verbose("Loading %d method(s) from %s", len(refs), r.config.Dir)
	methods, err := r.loader.LoadRefs(r.config.Dir, refs)
	if err != nil {
		return nil, err
	}

	types := make([]*synth.Type, 0, len(methods))
	failures := siggserrors.NewMultipleErrors()
	for _, m := range methods {
		t, err := r.service.GetOrCreate(m)
		if err != nil {
			if se, ok := err.(siggserrors.SiggsError); ok {
				failures.Add(se)
				continue
			}
			return nil, err
		}
		types = append(types, t)
	}
	if !failures.IsEmpty() {
		return nil, failures
	}
	return types, nil
}

// methodRefs returns the configured methods, discovering annotated ones
// when none are configured
func (r *Runner) methodRefs() ([]string, error) {
	if len(r.config.Methods) > 0 {
		return r.config.Methods, nil
	}

	refs, err := r.loader.Discover(r.config.Dir)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, siggserrors.Newf(siggserrors.ConfigurationErrorCode,
			"no methods with %s directives found in %s", source.DirectivePrefix, r.config.Dir).
			WithSuggestion("name methods explicitly as Type.Method, e.g. Handler.Send")
	}
	r.diagnostics.Verbose("Discovered %d annotated method(s)", len(refs))
	return refs, nil
}

// Inspect prints the synthesized types as text diagnostics or as JSON
func (r *Runner) Inspect() error {
	types, err := r.Synthesize()
	if err != nil {
		return err
	}

	if r.config.JSON {
		reports := make([]TypeReport, 0, len(types))
		for _, t := range types {
			reports = append(reports, NewTypeReport(t))
		}
		if err := json.MarshalWrite(r.out, reports, jsontext.WithIndent("  ")); err != nil {
			return siggserrors.Wrap(siggserrors.ConfigurationErrorCode, "failed to write report", err)
		}
		_, err := io.WriteString(r.out, "\n")
		return err
	}

	report := utils.NewWriterDiagnostics(utils.DiagnosticInfo, r.out)
	for _, t := range types {
		report.Section(t.Name())
		report.List("id: %s", t.ID())
		for _, f := range t.Fields() {
			report.List("%s %s `%s`", f.GoName(), f.Type(), f.Tag())
			report.Indent()
			for _, inst := range f.Annotations() {
				report.List("%s", inst.Source())
			}
			report.Unindent()
		}
	}
	r.summary("Inspection Complete!")
	return nil
}

// Emit renders the synthesized types as Go source into Output
func (r *Runner) Emit() error {
	types, err := r.Synthesize()
	if err != nil {
		return err
	}

	pkg := r.config.Package
	if pkg == "" {
		pkg = DefaultPackage
	}

	var buf bytes.Buffer
	if err := emit.New(pkg).Render(&buf, types...); err != nil {
		return err
	}

	if r.config.Output == "" || r.config.Output == "-" {
		_, err := r.out.Write(buf.Bytes())
		return err
	}

	if dir := filepath.Dir(r.config.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return siggserrors.WrapFileSystemError("create directory for", r.config.Output, err)
		}
	}
	if err := os.WriteFile(r.config.Output, buf.Bytes(), 0o644); err != nil {
		return siggserrors.WrapFileSystemError("write", r.config.Output, err)
	}

	r.diagnostics.Success("Wrote %d type(s) to %s", len(types), r.config.Output)
	r.summary("Emit Complete!")
	return nil
}

func (r *Runner) summary(title string) {
	stats := r.service.Stats()
	keys := []string{"Types synthesized", "Cache hits", "Failures"}
	r.diagnostics.Summary(title, keys, map[string]interface{}{
		"Types synthesized": stats.Builds,
		"Cache hits":        stats.Hits,
		"Failures":          stats.Failures,
	})
}

// Diagnostics returns the runner's diagnostic system
func (r *Runner) Diagnostics() *utils.DiagnosticSystem {
	return r.diagnostics
}
