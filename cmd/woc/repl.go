package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"woc/internal/ast"
	"woc/internal/lexer"
	"woc/internal/parser"
	"woc/internal/types"
)

// replCmd is a quick-check tool, not an interpreter: the language requires
// whole functions, so a single REPL line can never reach IR/codegen. Each
// line is lexed and echoed as tokens, and parsed (echoed as AST) only when
// it happens to stand on its own as a complete function declaration.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Interactively lex (and, where possible, parse) source lines" }
func (*replCmd) Usage() string {
	return `repl:
  Read lines from stdin, print their tokens and (if parseable) their AST.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("woc> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	fmt.Println("woc quick-check repl. Ctrl-D to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		if line == "" {
			continue
		}
		replLine(line)
	}
}

func replLine(line string) {
	stream, ldiags := lexer.New("<repl>", line).Lex()
	for _, tok := range stream.Tokens {
		fmt.Println(tok.String())
	}
	if ldiags.HasCritical() {
		return
	}

	interner := types.NewInterner()
	prog, pdiags := parser.New("<repl>", line, stream, interner).Parse()
	if pdiags.HasCritical() {
		return
	}
	if txt, err := ast.PrintJSON(prog); err == nil {
		fmt.Println(txt)
	}
}
