package ast

import (
	"encoding/json"
	"testing"

	"woc/internal/token"
	"woc/internal/types"
)

func TestTypeDecorationRoundTrip(t *testing.T) {
	in := types.NewInterner()
	lit := &Literal{Lexeme: "1", Kind_: token.LIT_INT}
	if Type(lit) != nil {
		t.Fatalf("fresh node must have nil Type")
	}
	SetType(lit, in.IntT())
	if Type(lit) == nil || !Type(lit).Equal(in.IntT()) {
		t.Fatalf("SetType/Type round trip failed")
	}
}

func TestPrintJSONProducesValidJSON(t *testing.T) {
	in := types.NewInterner()
	body := &Block{Stmts: []Stmt{
		&Return{FnName: "main", Value: &Literal{Lexeme: "7", Kind_: token.LIT_INT}},
	}}
	fn := &Fn{
		Header: &FnHeader{Name: "main", ReturnType: in.IntT()},
		Body:   body,
	}
	prog := &Program{Path: "t.wo", Decls: []*Fn{fn}}

	out, err := PrintJSON(prog)
	if err != nil {
		t.Fatalf("PrintJSON error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("PrintJSON produced invalid JSON: %v\n%s", err, out)
	}
	if decoded["path"] != "t.wo" {
		t.Fatalf("expected path field, got %v", decoded["path"])
	}
}

func TestPrintJSONHandlesNilIfElse(t *testing.T) {
	ifNode := &If{
		Cond: &Literal{Lexeme: "true", Kind_: token.LIT_BOOL},
		Then: &Block{},
		Else: nil,
	}
	prog := &Program{Path: "t.wo", Decls: []*Fn{{
		Header: &FnHeader{Name: "main"},
		Body:   &Block{Stmts: []Stmt{ifNode}},
	}}}
	out, err := PrintJSON(prog)
	if err != nil {
		t.Fatalf("PrintJSON with nil else branch must not error: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty output")
	}
}

func TestPrintJSONHandlesNilInitializer(t *testing.T) {
	decl := &VarDeclaration{Name: "x", Init: nil}
	prog := &Program{Path: "t.wo", Decls: []*Fn{{
		Header: &FnHeader{Name: "main"},
		Body:   &Block{Stmts: []Stmt{decl}},
	}}}
	if _, err := PrintJSON(prog); err != nil {
		t.Fatalf("PrintJSON with nil initializer must not error: %v", err)
	}
}
