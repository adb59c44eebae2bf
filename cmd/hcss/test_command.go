package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shibukawa/hcss/testrunner"
)

// TestCmd represents the test command
type TestCmd struct {
	Paths   []string      `arg:"" optional:"" help:"Fixture files or directories (default: test.dir from config)"`
	Pattern string        `name:"run" short:"r" help:"Run only cases whose file/case name matches this regular expression"`
	Exact   bool          `help:"Compare output byte for byte instead of ignoring whitespace"`
	Minify  bool          `short:"m" help:"Compile fixtures in minify mode"`
	Timeout time.Duration `help:"Abort the whole run after this duration" default:"0s"`
}

// Run executes the test command
func (cmd *TestCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	paths := cmd.Paths
	if len(paths) == 0 {
		paths = []string{config.Test.Dir}
	}

	runner := testrunner.NewFixtureTestRunner(paths, testrunner.Options{
		IgnoreWhitespace: config.Test.ShouldIgnoreWhitespace() && !cmd.Exact,
		MaxDuration:      config.Test.MaxDuration,
		Minify:           cmd.Minify,
		Config:           config,
	})
	runner.SetVerbose(ctx.Verbose)
	runner.SetOutput(ctx.Stdout)

	if err := runner.SetRunPattern(cmd.Pattern); err != nil {
		return err
	}

	runCtx := context.Background()

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(runCtx, cmd.Timeout)
		defer cancel()
	}

	summary, err := runner.RunAll(runCtx)
	if err != nil {
		return err
	}

	if !ctx.Quiet || summary.FailedTests > 0 {
		runner.PrintSummary(summary)
	}

	if summary.FailedTests > 0 {
		return fmt.Errorf("%w: %d of %d", ErrTestsFailed, summary.FailedTests, summary.TotalTests)
	}

	return nil
}
