package codegen

import (
	"strings"
	"testing"

	"woc/internal/ir"
	"woc/internal/lexer"
	"woc/internal/parser"
	"woc/internal/sema"
	"woc/internal/types"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	interner := types.NewInterner()
	stream, diags := lexer.New("t.wo", src).Lex()
	if diags.HasCritical() {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	prog, pdiags := parser.New("t.wo", src, stream, interner).Parse()
	if pdiags.HasCritical() {
		t.Fatalf("unexpected parse diagnostics: %v", pdiags)
	}
	sdiags := sema.New("t.wo", src, interner).Analyze(prog)
	if sdiags.HasCritical() {
		t.Fatalf("unexpected sema diagnostics: %v", sdiags)
	}
	irProg, idiags := ir.Lower(prog, src)
	if idiags.HasCritical() {
		t.Fatalf("unexpected lowering diagnostics: %v", idiags)
	}
	asm, gdiags := New("t.wo", src).Generate(irProg)
	if gdiags.HasCritical() {
		t.Fatalf("unexpected codegen diagnostics: %v", gdiags)
	}
	return asm
}

// return 1 + 2 * 3; exercises imul/add and the ret-to-.end jump.
func TestGenerateArithmeticReturn(t *testing.T) {
	asm := generate(t, `
fn int main()
  return 1 + 2 * 3;
end
`)
	for _, want := range []string{"global _start", "_start:", "call main", "main:", "imul rax, rbx", "jmp .end_main", ".end_main:"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected generated asm to contain %q, got:\n%s", want, asm)
		}
	}
}

// A mutable local gets one sub rsp sized to a 16-byte multiple, and both
// assigns land in the same frame slot.
func TestGenerateFrameAlignment(t *testing.T) {
	asm := generate(t, `
fn int main()
  mut x: int = 5;
  x = x + 10;
  return x;
end
`)
	if !strings.Contains(asm, "sub rsp, 16") {
		t.Errorf("expected a 16-byte aligned sub rsp, got:\n%s", asm)
	}
}

// Calls with a single argument bind it to rdi and never touch the
// stack-argument path.
func TestGenerateArgRegisters(t *testing.T) {
	asm := generate(t, `
fn free main()
  putnum(1);
  quit(0);
end
`)
	for _, want := range []string{"mov rdi, 1", "call putnum", "mov rdi, 0", "call quit"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected %q in generated asm, got:\n%s", want, asm)
		}
	}
	if strings.Contains(asm, "push rax") {
		t.Errorf("single-argument calls should never spill to the stack, got:\n%s", asm)
	}
}

func TestGenerateSevenArgCallSpillsToStack(t *testing.T) {
	asm := generate(t, `
fn int sum7(a: int, b: int, c: int, d: int, e: int, f: int, g: int)
  return a;
end

fn free main()
  sum7(1, 2, 3, 4, 5, 6, 7);
end
`)
	if !strings.Contains(asm, "push rax") {
		t.Errorf("expected the seventh argument to spill via push rax, got:\n%s", asm)
	}
	if !strings.Contains(asm, "add rsp, 8") {
		t.Errorf("expected stack cleanup of one spilled argument, got:\n%s", asm)
	}
}

func TestGenerateLoopAndBreak(t *testing.T) {
	asm := generate(t, `
fn int main()
  mut i: int = 0;
  loop
    if i == 3
      break;
    end
    i = i + 1;
  end
  return i;
end
`)
	for _, want := range []string{"sete al", "je ", "jmp "} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected %q in generated asm, got:\n%s", want, asm)
		}
	}
}

func TestGenerateFlooredDiv(t *testing.T) {
	asm := generate(t, `
fn int main()
  return (0 - 7) // 2;
end
`)
	for _, want := range []string{"idiv rbx", "test rdx, rdx", "dec rax"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected %q in generated asm, got:\n%s", want, asm)
		}
	}
}

func TestGeneratePowDesugarsToLoop(t *testing.T) {
	asm := generate(t, `
fn int main()
  return 2 ** 10;
end
`)
	if !strings.Contains(asm, "imul") {
		t.Errorf("expected pow to desugar into a multiplication loop, got:\n%s", asm)
	}
}

func TestGenerateFloatGateEmitsDiagnosticNotCode(t *testing.T) {
	src := `
fn float main()
  mut x: float = 1.5;
  return x;
end
`
	interner := types.NewInterner()
	stream, diags := lexer.New("t.wo", src).Lex()
	if diags.HasCritical() {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	prog, pdiags := parser.New("t.wo", src, stream, interner).Parse()
	if pdiags.HasCritical() {
		t.Fatalf("unexpected parse diagnostics: %v", pdiags)
	}
	sdiags := sema.New("t.wo", src, interner).Analyze(prog)
	if sdiags.HasCritical() {
		t.Fatalf("unexpected sema diagnostics: %v", sdiags)
	}
	irProg, idiags := ir.Lower(prog, src)
	if idiags.HasCritical() {
		t.Fatalf("unexpected lowering diagnostics: %v", idiags)
	}
	_, gdiags := New("t.wo", src).Generate(irProg)
	if !gdiags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for float codegen")
	}
}
