package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/shibukawa/hcss"
	"github.com/shibukawa/hcss/parser"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Logger returns the parser trace logger. It is nil unless --verbose is set.
func (c *Context) Logger() *slog.Logger {
	if !c.Verbose {
		return nil
	}

	return slog.New(slog.NewTextHandler(c.Stderr, &slog.HandlerOptions{Level: parser.LevelTrace}))
}

// LoadConfig loads the configuration named by --config.
func (c *Context) LoadConfig() (*hcss.Config, error) {
	config, err := hcss.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return config, nil
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"hcss.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Build   BuildCmd   `cmd:"" help:"Compile hcss files to CSS"`
	Tokens  TokensCmd  `cmd:"" help:"Print the token stream of a file"`
	Dump    DumpCmd    `cmd:"" help:"Print the resolved syntax tree of a file"`
	Test    TestCmd    `cmd:"" help:"Run compile fixtures"`
	Format  FormatCmd  `cmd:"" help:"Format CSS files and CSS blocks of fixture documents"`
	Init    InitCmd    `cmd:"" help:"Initialize a new hcss project"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Version is overwritten at link time.
var Version = "v0.1.0"

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "hcss %s\n", Version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("hcss"),
		kong.Description("CSS with variables, mixins and nesting"),
		kong.UsageOnError(),
	)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
