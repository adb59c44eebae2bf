package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/shibukawa/hcss"
)

// BuildCmd represents the build command
type BuildCmd struct {
	Paths  []string `arg:"" optional:"" help:"Source files or directories (default: input_dir from config, '-' for stdin)"`
	Output string   `short:"o" help:"Output directory (default: output_dir from config)"`
	Minify bool     `short:"m" help:"Minify output"`
}

// Run executes the build command
func (cmd *BuildCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	if cmd.Minify {
		config.Output.Minify = true
	}

	opts := []hcss.Option{hcss.WithConfig(config), hcss.WithLogger(ctx.Logger())}

	if len(cmd.Paths) == 1 && cmd.Paths[0] == "-" {
		css, err := hcss.CompileReader(ctx.Stdin, "<stdin>", opts...)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(ctx.Stdout, css)

		return err
	}

	paths := cmd.Paths
	if len(paths) == 0 {
		paths = []string{config.InputDir}
	}

	outputDir := cmd.Output
	if outputDir == "" {
		outputDir = config.OutputDir
	}

	sources, err := hcss.CollectSources(config, paths)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.New(color.FgBlue).Fprintf(ctx.Stdout, "Compiling %d files into %s\n", len(sources), outputDir)
	}

	var failed int

	for _, source := range sources {
		if err := cmd.compile(source, outputDir, opts); err != nil {
			failed++

			color.New(color.FgRed).Fprintf(ctx.Stderr, "%v\n", err)

			continue
		}

		if !ctx.Quiet {
			color.New(color.FgGreen).Fprintf(ctx.Stdout, "Generated: %s\n", source.OutputPath(outputDir))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrBuildFailed, failed, len(sources))
	}

	return nil
}

func (cmd *BuildCmd) compile(source hcss.Source, outputDir string, opts []hcss.Option) error {
	css, err := hcss.CompileFile(source.Path, opts...)
	if err != nil {
		return err
	}

	output := source.OutputPath(outputDir)

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", output, err)
	}

	if err := os.WriteFile(output, []byte(css), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	return nil
}
