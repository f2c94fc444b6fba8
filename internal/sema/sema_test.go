package sema

import (
	"strings"
	"testing"

	"woc/internal/diag"
	"woc/internal/lexer"
	"woc/internal/parser"
	"woc/internal/types"
)

func analyze(t *testing.T, src string) diag.Bag {
	t.Helper()
	interner := types.NewInterner()
	stream, ldiags := lexer.New("t.wo", src).Lex()
	if ldiags.HasCritical() {
		t.Fatalf("unexpected lex diagnostics: %v", ldiags)
	}
	prog, pdiags := parser.New("t.wo", src, stream, interner).Parse()
	if pdiags.HasCritical() {
		t.Fatalf("unexpected parse diagnostics: %v", pdiags)
	}
	return New("t.wo", src, interner).Analyze(prog)
}

func messages(diags diag.Bag) string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// Assigning to a `let` binding is a mutability violation.
func TestMutabilityViolation(t *testing.T) {
	diags := analyze(t, `
fn free main()
  let y: int = 1;
  y = 2;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for assigning to an immutable binding")
	}
	if !strings.Contains(messages(diags), "y") {
		t.Errorf("expected diagnostic to name y, got: %s", messages(diags))
	}
}

// An initializer whose type differs from the declared type is fatal.
func TestInitializerTypeMismatch(t *testing.T) {
	diags := analyze(t, `
fn free main()
  mut z: bool = 3;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for bool/int initializer mismatch")
	}
}

// Pointer subtraction of equal pointee types yields int.
func TestPointerSubtractionYieldsInt(t *testing.T) {
	diags := analyze(t, `
fn int f(p: ptr<int>, q: ptr<int>)
  return p - q;
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestPointerSubtractionDifferingPointeesRejected(t *testing.T) {
	diags := analyze(t, `
fn int f(p: ptr<int>, q: ptr<bool>)
  return p - q;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for mismatched pointee types")
	}
}

func TestPointerAdditionRejectsTwoPointers(t *testing.T) {
	diags := analyze(t, `
fn int f(p: ptr<int>, q: ptr<int>)
  return p + q;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for pointer + pointer")
	}
}

func TestRedeclarationInSameScopeIsFatal(t *testing.T) {
	diags := analyze(t, `
fn free main()
  let a: int = 1;
  let a: int = 2;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for redeclaring a in the same scope")
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	diags := analyze(t, `
fn free main()
  let a: int = 1;
  if a == 1
    let a: bool = true;
  end
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics for shadowing in an inner scope: %v", diags)
	}
}

func TestArityMismatchIsFatal(t *testing.T) {
	diags := analyze(t, `
fn int add(a: int, b: int)
  return a + b;
end

fn free main()
  add(1);
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for arity mismatch")
	}
}

func TestZeroArgumentCallTypeChecks(t *testing.T) {
	diags := analyze(t, `
fn int zero()
  return 0;
end

fn free main()
  zero();
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics for a zero-argument call: %v", diags)
	}
}

func TestUnknownIdentifierIsFatal(t *testing.T) {
	diags := analyze(t, `
fn free main()
  mut x: int = y;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for an unknown identifier")
	}
}

func TestFunctionNameUsedAsValueIsRejected(t *testing.T) {
	diags := analyze(t, `
fn int add(a: int, b: int)
  return a + b;
end

fn free main()
  mut x: int = add;
end
`)
	if !diags.HasCritical() {
		t.Fatalf("expected a critical diagnostic for referencing a function name as a term")
	}
}

func TestStringLiteralTypeIsCharArray(t *testing.T) {
	diags := analyze(t, `
fn free main()
  let s: [5]char = "hello";
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

// "a\nb" spans four source characters between its quotes, so it types as
// [4]char: the escape's backslash and 'n' each count.
func TestStringLiteralLengthCountsEscapeCharacters(t *testing.T) {
	diags := analyze(t, `
fn free main()
  let s: [4]char = "a\nb";
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestMutuallyRecursiveFunctionsResolve(t *testing.T) {
	diags := analyze(t, `
fn bool isEven(n: int)
  return isOdd(n);
end

fn bool isOdd(n: int)
  return isEven(n);
end
`)
	if diags.HasCritical() {
		t.Fatalf("unexpected diagnostics for mutually-recursive functions: %v", diags)
	}
}
