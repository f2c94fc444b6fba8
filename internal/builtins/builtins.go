// Package builtins holds the fixed textual list of linker-provided
// functions (putchar, putnum, quit, assert) and parses their signatures
// using the real internal/parser grammar, rather than a second hand-rolled
// mini-parser.
package builtins

import (
	"fmt"

	"woc/internal/lexer"
	"woc/internal/parser"
	"woc/internal/types"
)

// source is the builtin signature table, written in the language's own
// function-declaration syntax. Each is given a trivial body so it parses as
// an ordinary function declaration; only the header is kept.
const source = `
fn free putchar(_0: char)
  return;
end
fn free putnum(_0: int)
  return;
end
fn free quit(_0: int)
  return;
end
fn free assert(_0: bool)
  return;
end
`

// Param describes one builtin parameter.
type Param struct {
	Name string
	Typ  *types.Type
}

// Signature is a parsed builtin function header.
type Signature struct {
	Name       string
	Params     []Param
	ReturnType *types.Type
}

// Names returns the builtin function names in the fixed declaration order.
// internal/codegen uses this for the program prologue's extern list, where
// only the name (not the full parsed signature) is needed.
func Names() []string {
	return []string{"putchar", "putnum", "quit", "assert"}
}

// Load parses the builtin table and returns one Signature per builtin, in
// the fixed declaration order (putchar, putnum, quit, assert).
func Load(interner *types.Interner) ([]Signature, error) {
	stream, diags := lexer.New("<builtins>", source).Lex()
	if diags.HasCritical() {
		return nil, fmt.Errorf("internal error: builtin table failed to lex: %v", diags)
	}
	p := parser.New("<builtins>", source, stream, interner)
	prog, pdiags := p.Parse()
	if pdiags.HasCritical() {
		return nil, fmt.Errorf("internal error: builtin table failed to parse: %v", pdiags)
	}

	sigs := make([]Signature, 0, len(prog.Decls))
	for _, fn := range prog.Decls {
		sig := Signature{Name: fn.Header.Name, ReturnType: fn.Header.ReturnType}
		for _, p := range fn.Header.Params {
			sig.Params = append(sig.Params, Param{Name: p.Name, Typ: p.Typ})
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
