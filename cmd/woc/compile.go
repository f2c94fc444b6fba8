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

// compileCmd implements the compile subcommand.
type compileCmd struct {
	output  string
	cOnly   bool
	sOnly   bool
	quiet   bool
	verbose bool
	debug   bool
	dumpAST bool
	dumpLx  bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a .wo source file to a native executable" }
func (*compileCmd) Usage() string {
	return `compile [options] <source-file>:
  Run the full lex/parse/sema/ir/codegen/assemble/link pipeline.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "write executable to <file> (default: source with .obj extension)")
	f.BoolVar(&c.cOnly, "C", false, "compile only (stop after .asm generation)")
	f.BoolVar(&c.sOnly, "S", false, "compile and assemble (stop before linking)")
	f.BoolVar(&c.quiet, "q", false, "quiet: suppress non-error output")
	f.BoolVar(&c.verbose, "v0", false, "verbose: report each pipeline stage")
	f.BoolVar(&c.debug, "v1", false, "debug: report stages plus artifact paths")
	f.BoolVar(&c.dumpAST, "ast", false, "dump AST after parsing")
	f.BoolVar(&c.dumpLx, "lx", false, "dump tokens after lexing")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 no source file given\n")
		return subcommands.ExitUsageError
	}

	stage := driver.StageExecutable
	if c.cOnly {
		stage = driver.StageCompile
	} else if c.sOnly {
		stage = driver.StageAssemble
	}

	req := driver.CompileRequest{
		SourcePath: args[0],
		OutputPath: c.output,
		Stage:      stage,
		DumpTokens: c.dumpLx,
		DumpAST:    c.dumpAST,
	}

	if c.verbose || c.debug {
		fmt.Fprintf(os.Stderr, "woc: compiling %s\n", req.SourcePath)
	}

	res, err := driver.CompileTarget(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 internal error: %v\n", err)
		return subcommands.ExitFailure
	}

	if res.TokenDump != "" {
		fmt.Print(res.TokenDump)
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

	if !c.quiet {
		switch {
		case res.AssemblyPath != "" && stage == driver.StageCompile:
			fmt.Fprintf(os.Stderr, "wrote %s\n", res.AssemblyPath)
		case res.ObjectPath != "" && stage == driver.StageAssemble:
			fmt.Fprintf(os.Stderr, "wrote %s\n", res.ObjectPath)
		case res.ExecPath != "":
			fmt.Fprintf(os.Stderr, "wrote %s\n", res.ExecPath)
		}
	}
	if c.debug {
		fmt.Fprintf(os.Stderr, "woc: asm=%q obj=%q exec=%q\n", res.AssemblyPath, res.ObjectPath, res.ExecPath)
	}

	return subcommands.ExitSuccess
}
