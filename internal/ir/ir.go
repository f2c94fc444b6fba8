// Package ir models the three-address intermediate representation that
// sits between the decorated AST and x86-64 code generation. A Program is
// a flat, ordered list of Functions;
// each Function is a flat, ordered list of Instructions. There is no
// control-flow graph: branching is expressed with label/jmp/jmp_false the
// way the target assembly itself expresses it.
package ir

import (
	"fmt"

	"woc/internal/token"
	"woc/internal/types"
)

// Op is a three-address instruction opcode.
type Op string

const (
	LABEL     Op = "label"
	COPY      Op = "copy"
	ALLOC     Op = "alloc"
	ASSIGN    Op = "assign"
	LOAD      Op = "load"
	TEMP      Op = "temp"
	PUSH      Op = "push"
	POP       Op = "pop"
	CALL      Op = "call"
	RET       Op = "ret"
	SYSCALL   Op = "syscall"
	ADD       Op = "add"
	SUB       Op = "sub"
	MUL       Op = "mul"
	DIV       Op = "div"
	FLOOREDDIV Op = "floored_div"
	MOD       Op = "mod"
	AND       Op = "and"
	OR        Op = "or"
	BITXOR    Op = "bit_xor"
	BITAND    Op = "bit_and"
	BITOR     Op = "bit_or"
	SHL       Op = "shl"
	SHR       Op = "shr"
	EQ        Op = "eq"
	LT        Op = "lt"
	LE        Op = "le"
	NEQ       Op = "neq"
	GE        Op = "ge"
	GT        Op = "gt"
	NEG       Op = "neg"
	NOT       Op = "not"
	BITNOT    Op = "bit_not"
	JMP       Op = "jmp"
	JMPFALSE  Op = "jmp_false"
	NOP       Op = "nop"
)

// Operand is one of Lit, Sym, or Temp.
type Operand interface {
	isOperand()
	String() string
}

// Lit is a literal operand: the raw source lexeme plus the literal kind
// that produced it (so codegen can tell "1" (int) from '1' (char)).
type Lit struct {
	Lexeme string
	Kind   token.Kind
}

func (Lit) isOperand()      {}
func (l Lit) String() string { return l.Lexeme }

// Sym is a reference to a named local (a parameter, a declared variable, or
// a synthesized result name shared between instructions).
type Sym struct {
	Name string
}

func (Sym) isOperand()      {}
func (s Sym) String() string { return s.Name }

// Temp is a monotonically assigned synthetic variable holding the result
// of an intermediate expression. It renders as "%t<id>" and is allocated a
// stack slot by codegen on first use, exactly like a Sym.
type Temp struct {
	ID int
}

func (Temp) isOperand() {}
func (t Temp) String() string { return fmt.Sprintf("%%t%d", t.ID) }

// Name is the stack-slot name a Temp is addressed by; it is what appears
// as an Instruction's Dst and what a later Sym-shaped reference to the same
// value would use.
func (t Temp) Name() string { return t.String() }

// Instruction is one three-address operation. Dst is the destination local
// name (may be empty, e.g. for jmp/ret); Operands is the ordered operand
// list. Typ is the decorated Type of the value flowing through this
// instruction, when known, used by codegen for size-keyword selection and
// the float feature gate. Loc is the originating
// source location, threaded through for codegen's internal-error
// diagnostics.
type Instruction struct {
	Op       Op
	Dst      string
	Operands []Operand
	Typ      *types.Type
	Loc      token.Location
}

// Function is one compiled function: a name, its instructions (the first
// of which must be a label matching Name), and the stack space its own
// declarations (parameters + locals, not counting codegen-allocated
// temps) occupy.
type Function struct {
	Name         string
	Instructions []Instruction
	DeclaredSize int
}

// Program is the whole lowered translation unit.
type Program struct {
	Path      string
	Functions []Function
}
