package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"woc/internal/diag"
	"woc/internal/driver"
)

// runCmd compiles, links, and executes a source file in one step.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile, link, and execute a .wo source file" }
func (*runCmd) Usage() string {
	return `run <source-file>:
  Compile, link, execute, and exit with the program's own exit code.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file given\n")
		return subcommands.ExitUsageError
	}

	req := driver.CompileRequest{
		SourcePath: args[0],
		Stage:      driver.StageExecutable,
		Run:        true,
	}

	res, err := driver.CompileTarget(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 internal error: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(res.Diagnostics) > 0 {
		diag.RenderBag(os.Stderr, res.Diagnostics, diag.Pretty, diag.AutoColor(os.Stderr))
		fmt.Fprintln(os.Stderr)
	}
	if res.Diagnostics.HasCritical() {
		return subcommands.ExitFailure
	}

	if res.Ran {
		os.Exit(res.RanExitCode)
	}
	return subcommands.ExitSuccess
}
