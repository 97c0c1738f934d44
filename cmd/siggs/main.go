package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/toyz/siggs/internal/cli"
)

type CLI struct {
	Verbose bool `help:"Enable verbose output and detailed error reporting." short:"v" xor:"level"`
	Quiet   bool `help:"Only show errors." short:"q" xor:"level"`

	Inspect InspectCmd `cmd:"" help:"Synthesize parameter types and describe them."`
	Emit    EmitCmd    `cmd:"" help:"Synthesize parameter types and write them as Go source."`
	Clean   CleanCmd   `cmd:"" help:"Remove files written by emit."`
}

type InspectCmd struct {
	Dir     string   `arg:"" help:"Package directory holding the methods." type:"existingdir"`
	Methods []string `arg:"" optional:"" help:"Methods to synthesize, as Type.Method. Defaults to every annotated method."`
	JSON    bool     `help:"Print the types as JSON." name:"json"`
}

func (c *InspectCmd) Run(root *CLI, out io.Writer) error {
	return cli.NewRunner(cli.Config{
		Dir:     c.Dir,
		Methods: c.Methods,
		JSON:    c.JSON,
		Verbose: root.Verbose,
		Quiet:   root.Quiet,
	}, out).Inspect()
}

type EmitCmd struct {
	Dir     string   `arg:"" help:"Package directory holding the methods." type:"existingdir"`
	Methods []string `arg:"" optional:"" help:"Methods to synthesize, as Type.Method. Defaults to every annotated method."`
	Output  string   `help:"Output file, - for stdout." short:"o" default:"-"`
	Package string   `help:"Package clause of the emitted file." short:"p" default:"params"`
}

func (c *EmitCmd) Run(root *CLI, out io.Writer) error {
	return cli.NewRunner(cli.Config{
		Dir:     c.Dir,
		Methods: c.Methods,
		Output:  c.Output,
		Package: c.Package,
		Verbose: root.Verbose,
		Quiet:   root.Quiet,
	}, out).Emit()
}

type CleanCmd struct {
	Dirs []string `arg:"" help:"Directories to clean. A trailing /... cleans recursively."`
}

func (c *CleanCmd) Run(root *CLI) error {
	_, err := cli.NewCleaner(cli.NewDiagnostics(root.Verbose, root.Quiet)).Clean(c.Dirs)
	return err
}

// newParser builds the command line parser, binding out as the writer
// results are printed to
func newParser(root *CLI, out io.Writer) (*kong.Kong, error) {
	return kong.New(root,
		kong.Name("siggs"),
		kong.Description("Synthesize record types mirroring Go method parameter lists."),
		kong.UsageOnError(),
		kong.BindTo(out, (*io.Writer)(nil)),
	)
}

func main() {
	root := &CLI{}
	parser, err := newParser(root, os.Stdout)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(root); err != nil {
		cli.NewDiagnosticReporter(root.Verbose).ReportError(err)
		os.Exit(1)
	}
}
