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

// dumpTokensCmd lexes a file and prints its token stream, the same code
// path compile's -lx flag uses.
type dumpTokensCmd struct{}

func (*dumpTokensCmd) Name() string     { return "dump-tokens" }
func (*dumpTokensCmd) Synopsis() string { return "Lex a .wo source file and print its token stream" }
func (*dumpTokensCmd) Usage() string {
	return `dump-tokens <source-file>:
  Lex only, then print one token per line.
`
}
func (*dumpTokensCmd) SetFlags(f *flag.FlagSet) {}

func (*dumpTokensCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file given\n")
		return subcommands.ExitUsageError
	}

	res, err := driver.CompileTarget(ctx, driver.CompileRequest{
		SourcePath: args[0],
		Stage:      driver.StageCompile,
		DumpTokens: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 internal error: %v\n", err)
		return subcommands.ExitFailure
	}

	if res.TokenDump != "" {
		fmt.Print(res.TokenDump)
	}
	if len(res.Diagnostics) > 0 {
		diag.RenderBag(os.Stderr, res.Diagnostics, diag.Pretty, diag.AutoColor(os.Stderr))
		fmt.Fprintln(os.Stderr)
	}
	if res.Diagnostics.HasCritical() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// dumpASTCmd lexes and parses a file and pretty-prints its AST, the same
// code path compile's -ast flag uses.
type dumpASTCmd struct{}

func (*dumpASTCmd) Name() string     { return "dump-ast" }
func (*dumpASTCmd) Synopsis() string { return "Lex and parse a .wo source file and print its AST" }
func (*dumpASTCmd) Usage() string {
	return `dump-ast <source-file>:
  Lex and parse, then pretty-print the resulting AST as JSON.
`
}
func (*dumpASTCmd) SetFlags(f *flag.FlagSet) {}

func (*dumpASTCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file given\n")
		return subcommands.ExitUsageError
	}

	res, err := driver.CompileTarget(ctx, driver.CompileRequest{
		SourcePath: args[0],
		Stage:      driver.StageCompile,
		DumpAST:    true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 internal error: %v\n", err)
		return subcommands.ExitFailure
	}

	if res.ASTDump != "" {
		fmt.Println(res.ASTDump)
	}
	if len(res.Diagnostics) > 0 {
		diag.RenderBag(os.Stderr, res.Diagnostics, diag.Pretty, diag.AutoColor(os.Stderr))
		fmt.Fprintln(os.Stderr)
	}
	if res.Diagnostics.HasCritical() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
