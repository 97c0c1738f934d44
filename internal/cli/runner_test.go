package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/siggs/internal/utils"
	siggserrors "github.com/toyz/siggs/pkg/errors"
)

const handlerSource = `package api

type Handler struct{}

//siggs::param message @Validate("required") @Alias("msg")
//siggs::param count @Description("how many", Deprecated=true)
func (h *Handler) Send(message string, count int) error { return nil }

//siggs::param name @Validate("min=2")
func (h *Handler) SetName(name string) {}

//siggs::param note @Validate("")
func (h *Handler) Broken(note string) {}
`

func writeModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/api\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handler.go"), []byte(handlerSource), 0o644))
	return dir
}

func newTestRunner(config Config) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, diag bytes.Buffer
	runner := NewRunnerWithDiagnostics(config, &out, utils.NewWriterDiagnostics(utils.DiagnosticInfo, &diag))
	return runner, &out, &diag
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		message string
	}{
		{name: "valid", config: Config{Dir: ".", Methods: []string{"Handler.Send"}}},
		{name: "missing dir", config: Config{Methods: []string{"Handler.Send"}}, message: "a package directory is required"},
		{name: "discovered methods", config: Config{Dir: "."}},
		{name: "blank dir", config: Config{Dir: "  "}, message: "a package directory is required"},
		{name: "bad method", config: Config{Dir: ".", Methods: []string{"Send"}}, message: "methods[0]"},
		{name: "bad package", config: Config{Dir: ".", Package: "my-pkg"}, message: "invalid package name"},
		{
			name:    "conflicting levels",
			config:  Config{Dir: ".", Methods: []string{"Handler.Send"}, Verbose: true, Quiet: true},
			message: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, siggserrors.HasCode(err, siggserrors.ConfigurationErrorCode))
		})
	}
}

func TestRunner_Synthesize(t *testing.T) {
	dir := writeModule(t)
	runner, _, _ := newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Send", "Handler.SetName"}})

	types, err := runner.Synthesize()
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "example.com/api.Handler.Send", types[0].Name())
	assert.Equal(t, 2, types[0].NumField())

	// setter-shaped methods name their single field after the property
	_, ok := types[1].Field("Name")
	assert.True(t, ok)

	again, err := runner.Synthesize()
	require.NoError(t, err)
	assert.Same(t, types[0], again[0])
	assert.Same(t, types[1], again[1])

	stats := runner.service.Stats()
	assert.Equal(t, uint64(2), stats.Builds)
	assert.Equal(t, uint64(2), stats.Hits)
}

func TestRunner_SynthesizeFailures(t *testing.T) {
	dir := writeModule(t)

	runner, _, diag := newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Send", "Handler.Broken"}})
	_, err := runner.Synthesize()
	require.Error(t, err)

	var all *siggserrors.MultipleErrors
	require.ErrorAs(t, err, &all)
	assert.Equal(t, 1, all.Count())
	assert.True(t, siggserrors.HasCode(err, siggserrors.DescriptorErrorCode))
	assert.Contains(t, err.Error(), "example.com/api.Handler.Broken")
	assert.Contains(t, diag.String(), "[WARN] synthesis of example.com/api.Handler.Broken failed")

	runner, _, _ = newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Missing"}})
	_, err = runner.Synthesize()
	assert.True(t, siggserrors.HasCode(err, siggserrors.DescriptorErrorCode))

	runner, _, _ = newTestRunner(Config{Methods: []string{"Handler.Send"}})
	_, err = runner.Synthesize()
	assert.True(t, siggserrors.HasCode(err, siggserrors.ConfigurationErrorCode))
}

func TestRunner_DiscoversAnnotatedMethods(t *testing.T) {
	dir := writeModule(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "handler.go")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handler.go"), []byte(`package api

type Handler struct{}

//siggs::param message @Validate("required")
func (h *Handler) Send(message string) error { return nil }

func (h *Handler) Ping() {}

//siggs::param name @Alias("n")
func (h *Handler) SetName(name string) {}
`), 0o644))

	runner, _, _ := newTestRunner(Config{Dir: dir})
	types, err := runner.Synthesize()
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "example.com/api.Handler.Send", types[0].Name())
	assert.Equal(t, "example.com/api.Handler.SetName", types[1].Name())

	empty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(empty, "plain.go"), []byte("package plain\n"), 0o644))
	runner, _, _ = newTestRunner(Config{Dir: empty})
	_, err = runner.Synthesize()
	require.Error(t, err)
	assert.True(t, siggserrors.HasCode(err, siggserrors.ConfigurationErrorCode))
	assert.Contains(t, err.Error(), "no methods with siggs::param directives found")
}

func TestRunner_InspectJSON(t *testing.T) {
	dir := writeModule(t)
	runner, out, _ := newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Send"}, JSON: true})

	require.NoError(t, runner.Inspect())

	var reports []TypeReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, "example.com/api.Handler.Send", report.Identity)
	assert.NotEmpty(t, report.ID)
	require.Len(t, report.Fields, 2)

	message := report.Fields[0]
	assert.Equal(t, "message", message.Name)
	assert.Equal(t, "message", message.Parameter)
	assert.Equal(t, "Message", message.GoName)
	assert.Equal(t, "string", message.Type)
	assert.Contains(t, message.Tag, `json:"msg"`)
	assert.Contains(t, message.Tag, `validate:"required"`)
	require.Len(t, message.Annotations, 2)
	assert.Equal(t, "Validate", message.Annotations[0]["type"])
	assert.Equal(t, []interface{}{"required"}, message.Annotations[0]["args"])

	count := report.Fields[1]
	require.Len(t, count.Annotations, 1)
	assert.Equal(t, map[string]interface{}{"Deprecated": true}, count.Annotations[0]["properties"])
}

func TestRunner_InspectText(t *testing.T) {
	dir := writeModule(t)
	runner, out, diag := newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Send"}})

	require.NoError(t, runner.Inspect())

	text := out.String()
	assert.Contains(t, text, "example.com/api.Handler.Send\n")
	assert.Contains(t, text, "- id: ")
	assert.Contains(t, text, "- Message string `json:\"msg\"")
	assert.Contains(t, text, "  - @Validate(\"required\")\n")
	assert.Contains(t, text, "  - @Alias(\"msg\")\n")
	assert.Contains(t, text, "  - @Description(\"how many\", Deprecated=true)\n")

	assert.Contains(t, diag.String(), "Inspection Complete!")
	assert.Contains(t, diag.String(), "Types synthesized: 1")
}

func TestRunner_EmitStdout(t *testing.T) {
	dir := writeModule(t)
	runner, out, _ := newTestRunner(Config{Dir: dir, Methods: []string{"Handler.Send", "Handler.SetName"}, Output: "-"})

	require.NoError(t, runner.Emit())

	src := out.String()
	assert.Contains(t, src, "package "+DefaultPackage)
	assert.Contains(t, src, "type HandlerSendParams struct")
	assert.Contains(t, src, "type HandlerSetNameParams struct")
	assert.Contains(t, src, "func (p *HandlerSetNameParams) SetName(v string)")
}

func TestRunner_EmitFile(t *testing.T) {
	dir := writeModule(t)
	output := filepath.Join(t.TempDir(), "gen", "params.go")
	runner, out, diag := newTestRunner(Config{
		Dir:     dir,
		Methods: []string{"Handler.Send"},
		Output:  output,
		Package: "gen",
	})

	require.NoError(t, runner.Emit())
	assert.Empty(t, out.String())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package gen")
	assert.Contains(t, string(content), "func NewHandlerSendParams() *HandlerSendParams")

	assert.Contains(t, diag.String(), "[SUCCESS] Wrote 1 type(s) to "+output)
	assert.Contains(t, diag.String(), "Emit Complete!")
}
