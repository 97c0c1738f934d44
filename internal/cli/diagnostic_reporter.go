package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	siggserrors "github.com/toyz/siggs/pkg/errors"
)

// DiagnosticReporter renders failed runs with their location, context and
// suggestions
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	header  *color.Color
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewWriterReporter(os.Stderr, verbose, !color.NoColor)
}

// NewWriterReporter creates a reporter writing to w
func NewWriterReporter(w io.Writer, verbose, colors bool) *DiagnosticReporter {
	header := color.New(color.FgRed, color.Bold)
	if colors {
		header.EnableColor()
	} else {
		header.DisableColor()
	}
	return &DiagnosticReporter{
		verbose: verbose,
		out:     w,
		header:  header,
	}
}

// ReportError writes a report for err. Every error collected in a
// *errors.MultipleErrors gets its own block.
func (r *DiagnosticReporter) ReportError(err error) {
	r.header.Fprint(r.out, "\nERROR: Synthesis Failed\n")
	fmt.Fprintf(r.out, "=======================\n\n")

	var all *siggserrors.MultipleErrors
	if errors.As(err, &all) && all.Count() > 1 {
		for i, e := range all.Errors {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, all.Count())
			r.reportSiggsError(e)
		}
	} else if se := findSiggsError(err); se != nil {
		r.reportSiggsError(se)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	r.printGeneralHelp()
}

func (r *DiagnosticReporter) reportSiggsError(se siggserrors.SiggsError) {
	r.printErrorHeader(se.ErrorCode())

	fmt.Fprintf(r.out, "Message: %s\n\n", se.Error())

	if r.verbose && se.Unwrap() != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n\n", se.Unwrap().Error())
	}

	if loc := se.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}

	if ctx := se.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := se.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	r.printAdditionalHelp(se.ErrorCode())
}

func (r *DiagnosticReporter) printErrorHeader(code siggserrors.ErrorCode) {
	var errorTypeStr string

	switch code {
	case siggserrors.DescriptorErrorCode:
		errorTypeStr = "Descriptor Error"
	case siggserrors.DuplicateFieldNameErrorCode:
		errorTypeStr = "Duplicate Field Name"
	case siggserrors.SyntaxErrorCode:
		errorTypeStr = "Directive Syntax Error"
	case siggserrors.RegistrationErrorCode:
		errorTypeStr = "Registration Error"
	case siggserrors.FileSystemErrorCode:
		errorTypeStr = "File System Error"
	case siggserrors.ConfigurationErrorCode:
		errorTypeStr = "Configuration Error"
	default:
		errorTypeStr = code.String()
	}

	fmt.Fprintf(r.out, "Type: %s\n", errorTypeStr)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(errorTypeStr)+6))
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printAdditionalHelp(code siggserrors.ErrorCode) {
	switch code {
	case siggserrors.SyntaxErrorCode:
		fmt.Fprintf(r.out, "Directive Syntax Help:\n")
		fmt.Fprintf(r.out, "  - Directives start with //siggs::param followed by the parameter name\n")
		fmt.Fprintf(r.out, "  - Annotations are written @Type or @Type(args, Member=value)\n")
		fmt.Fprintf(r.out, "  - Values are strings, numbers, true, false, nil, [lists] or @Nested(...)\n\n")

	case siggserrors.DescriptorErrorCode:
		fmt.Fprintf(r.out, "Descriptor Help:\n")
		fmt.Fprintf(r.out, "  - Every parameter needs a name and a resolvable type\n")
		fmt.Fprintf(r.out, "  - Annotation arguments must match one of the type's constructors\n\n")
	}
}

func (r *DiagnosticReporter) printGeneralHelp() {
	fmt.Fprintf(r.out, "For more help:\n")
	fmt.Fprintf(r.out, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.out, "  - Run siggs --help for usage\n\n")
}

// findSiggsError returns the first SiggsError in err's chain
func findSiggsError(err error) siggserrors.SiggsError {
	var se siggserrors.SiggsError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
