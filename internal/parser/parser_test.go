package parser

import (
	"testing"

	"woc/internal/ast"
	"woc/internal/lexer"
	"woc/internal/types"
)

func parse(t *testing.T, src string) (*ast.Program, *Parser) {
	t.Helper()
	stream, diags := lexer.New("t.wo", src).Lex()
	if len(diags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	p := New("t.wo", src, stream, types.NewInterner())
	prog, pdiags := p.Parse()
	if pdiags.HasCritical() {
		t.Fatalf("unexpected parse diagnostics: %v", pdiags)
	}
	return prog, p
}

func TestParseArithmeticReturn(t *testing.T) {
	prog, _ := parse(t, `
fn int main()
  return 1 + 2 * 3;
end
`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Decls))
	}
	fn := prog.Decls[0]
	if fn.Header.Name != "main" {
		t.Fatalf("expected function named main, got %q", fn.Header.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected a Return statement, got %T", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected top-level BinOp (the '+'), got %T", ret.Value)
	}
	if bin.Op != "+" {
		t.Fatalf("expected top-level operator '+', got %q (product must bind tighter)", bin.Op)
	}
	if _, ok := bin.Rhs.(*ast.BinOp); !ok {
		t.Fatalf("expected rhs to be the '2 * 3' BinOp, got %T", bin.Rhs)
	}
}

func TestParseDeclarationAndAssignment(t *testing.T) {
	prog, _ := parse(t, `
fn int main()
  mut x: int = 5;
  x = x + 10;
  return x;
end
`)
	fn := prog.Decls[0]
	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body.Stmts))
	}
	decl, ok := fn.Body.Stmts[0].(*ast.VarDeclaration)
	if !ok || !decl.Mut || decl.Name != "x" {
		t.Fatalf("expected mutable decl of x, got %#v", fn.Body.Stmts[0])
	}
	if _, ok := fn.Body.Stmts[1].(*ast.Assignment); !ok {
		t.Fatalf("expected an Assignment, got %T", fn.Body.Stmts[1])
	}
}

func TestParseCallStatements(t *testing.T) {
	prog, _ := parse(t, `
fn free main()
  putnum(1);
  quit(0);
end
`)
	fn := prog.Decls[0]
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.FnCall); !ok {
		t.Fatalf("expected a statement-form FnCall, got %T", fn.Body.Stmts[0])
	}
}

func TestParsePointerParameters(t *testing.T) {
	prog, _ := parse(t, `
fn int f(p: ptr<int>, q: ptr<int>)
  return p - q;
end
`)
	fn := prog.Decls[0]
	if len(fn.Header.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Header.Params))
	}
	if !fn.Header.Params[0].Typ.IsPointer() {
		t.Fatalf("expected param 0 to be a pointer type")
	}
}

func TestParseEmptyFunctionBodyRejected(t *testing.T) {
	stream, _ := lexer.New("t.wo", "fn free main()\nend\n").Lex()
	p := New("t.wo", "fn free main()\nend\n", stream, types.NewInterner())
	_, diags := p.Parse()
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for an empty function body")
	}
}

func TestParseZeroArgumentCall(t *testing.T) {
	prog, _ := parse(t, `
fn free main()
  quit();
end
`)
	fn := prog.Decls[0]
	call, ok := fn.Body.Stmts[0].(*ast.FnCall)
	if !ok {
		t.Fatalf("expected FnCall, got %T", fn.Body.Stmts[0])
	}
	if len(call.Args) != 0 {
		t.Fatalf("expected 0 args, got %d", len(call.Args))
	}
}

func TestParsePowIsRightAssociative(t *testing.T) {
	prog, _ := parse(t, `
fn int main()
  return 2 ** 3 ** 2;
end
`)
	ret := prog.Decls[0].Body.Stmts[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinOp)
	if !ok || top.Op != "**" {
		t.Fatalf("expected top-level '**', got %#v", ret.Value)
	}
	if _, ok := top.Rhs.(*ast.BinOp); !ok {
		t.Fatalf("expected rhs '3 ** 2' to itself be a BinOp (right-associative), got %T", top.Rhs)
	}
	if _, ok := top.Lhs.(*ast.Literal); !ok {
		t.Fatalf("expected lhs to be the literal '2', got %T", top.Lhs)
	}
}

func TestParseIfElse(t *testing.T) {
	prog, _ := parse(t, `
fn int main()
  if 1 == 1
    return 1;
  else
    return 0;
  end
end
`)
	stmt := prog.Decls[0].Body.Stmts[0]
	ifNode, ok := stmt.(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %T", stmt)
	}
	if ifNode.Else == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestParseLoopAndBreak(t *testing.T) {
	prog, _ := parse(t, `
fn free main()
  loop
    break;
  end
end
`)
	stmt := prog.Decls[0].Body.Stmts[0]
	loop, ok := stmt.(*ast.Loop)
	if !ok {
		t.Fatalf("expected Loop, got %T", stmt)
	}
	if _, ok := loop.Body.Stmts[0].(*ast.Break); !ok {
		t.Fatalf("expected Break inside loop body, got %T", loop.Body.Stmts[0])
	}
}

func TestParseAndOrShortCircuitPrecedence(t *testing.T) {
	prog, _ := parse(t, `
fn bool main()
  return 1 == 1 and 2 == 2 or 3 == 4;
end
`)
	ret := prog.Decls[0].Body.Stmts[0].(*ast.Return)
	top, ok := ret.Value.(*ast.BinOp)
	if !ok || top.Op != "or" {
		t.Fatalf("expected top-level 'or' (lowest precedence), got %#v", ret.Value)
	}
	lhs, ok := top.Lhs.(*ast.BinOp)
	if !ok || lhs.Op != "and" {
		t.Fatalf("expected lhs to be the 'and' expression, got %#v", top.Lhs)
	}
}
