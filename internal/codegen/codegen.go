// Package codegen lowers an *ir.Program into NASM-syntax x86-64 Linux text
// (ELF64, System V AMD64 ABI). It owns a stack of per-function frame
// allocators and a monotonic argument-position counter for the 6-register
// ABI window; there is no general-purpose register allocator (rax/rbx/rcx/
// rdx are always scratch, never held across instructions).
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"woc/internal/builtins"
	"woc/internal/diag"
	"woc/internal/ir"
	"woc/internal/token"
)

// Generator accumulates NASM text for one compilation unit.
type Generator struct {
	file  string
	lines []string

	buf strings.Builder

	frames      []*frame
	argPos      int
	extraArgs   int
	fdSeq       int
	pendingArgs []ir.Operand

	diags diag.Bag
}

func New(file, source string) *Generator {
	return &Generator{file: file, lines: splitLines(source)}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func (g *Generator) lineText(n int) string {
	if n < 0 || n >= len(g.lines) {
		return ""
	}
	return g.lines[n]
}

func (g *Generator) errorf(loc token.Location, format string, args ...any) {
	region := diag.Region{File: g.file, Line: loc.Line, Column: loc.Column, Source: g.lineText(loc.Line)}
	g.diags.Add(diag.Criticalf(format, args...).WithLabel(region, "here"))
}

func (g *Generator) frame() *frame { return g.frames[len(g.frames)-1] }

func (g *Generator) raw(s string) { g.buf.WriteString(s) }

func (g *Generator) line(indent int, format string, args ...any) {
	g.buf.WriteString(strings.Repeat("    ", indent))
	if len(args) == 0 {
		g.buf.WriteString(format)
	} else {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	}
	g.buf.WriteByte('\n')
}

// Generate emits the program prologue (global _start, builtin externs,
// empty .data, _start calling main then exiting via syscall 60) followed by
// one labeled block per function.
func (g *Generator) Generate(prog *ir.Program) (string, diag.Bag) {
	g.raw("global _start\n")
	for _, name := range builtins.Names() {
		g.raw("extern " + name + "\n")
	}
	g.raw("\nsection .data\n\nsection .text\n")
	g.raw("_start:\n")
	g.line(1, "call main")
	g.line(1, "mov rax, 60")
	g.line(1, "mov rdi, 0")
	g.line(1, "syscall")
	g.raw("\n")

	for _, fn := range prog.Functions {
		g.genFunction(fn)
	}
	return g.buf.String(), g.diags
}

func (g *Generator) genFunction(fn ir.Function) {
	if len(fn.Instructions) == 0 || fn.Instructions[0].Op != ir.LABEL {
		g.errorf(token.Location{}, "internal error: function %q has no leading label instruction", fn.Name)
		return
	}
	name := fn.Instructions[0].Dst

	fr := newFrame()
	for i, instr := range fn.Instructions {
		if i == 0 || instr.Op == ir.LABEL || instr.Dst == "" {
			continue
		}
		fr.reserve(instr.Dst, g.sizeFor(instr))
	}
	g.frames = append(g.frames, fr)
	defer func() { g.frames = g.frames[:len(g.frames)-1] }()

	g.line(0, "%s:", name)
	g.line(1, "push rbp")
	g.line(1, "mov rbp, rsp")
	if aligned := fr.alignedSize(); aligned > 0 {
		g.line(1, "sub rsp, %d", aligned)
	}

	g.argPos = 0
	g.extraArgs = 0
	g.pendingArgs = nil
	for _, instr := range fn.Instructions[1:] {
		g.genInstr(name, instr)
	}

	g.line(0, ".end_%s:", name)
	g.line(1, "mov rsp, rbp")
	g.line(1, "pop rbp")
	g.line(1, "ret")
	g.raw("\n")
}

// sizeFor computes the byte width of an instruction's destination slot:
// alloc/pop carry their size as an explicit literal operand; everything
// else falls back to its decorated Type's size, or 8 bytes if untyped.
func (g *Generator) sizeFor(instr ir.Instruction) int {
	switch instr.Op {
	case ir.ALLOC, ir.POP:
		if len(instr.Operands) > 0 {
			if lit, ok := instr.Operands[0].(ir.Lit); ok {
				if n, err := strconv.Atoi(lit.Lexeme); err == nil && n > 0 {
					return n
				}
			}
		}
		return 8
	default:
		if instr.Typ != nil {
			return instr.Typ.Size()
		}
		return 8
	}
}

func (g *Generator) genInstr(fnName string, instr ir.Instruction) {
	switch instr.Op {
	case ir.LABEL:
		g.line(0, "%s:", instr.Dst)
	case ir.ALLOC, ir.TEMP, ir.NOP:
		// Frame slot already reserved by genFunction's pre-scan; nothing to
		// emit for a bare reservation.
	case ir.ASSIGN, ir.COPY:
		g.genAssign(instr)
	case ir.PUSH:
		g.genPush(instr)
	case ir.POP:
		g.genPop(instr)
	case ir.CALL:
		g.genCall(instr)
	case ir.RET:
		g.genRet(instr)
	case ir.ADD, ir.SUB, ir.MUL, ir.DIV, ir.MOD, ir.BITAND, ir.BITOR, ir.BITXOR:
		g.genArith(instr)
	case ir.FLOOREDDIV:
		g.genFlooredDiv(instr)
	case ir.NEG, ir.BITNOT:
		g.genUnaryArith(instr)
	case ir.NOT:
		g.genLogicalNot(instr)
	case ir.AND, ir.OR:
		g.genLogicalAndOr(instr)
	case ir.EQ, ir.NEQ, ir.LT, ir.LE, ir.GT, ir.GE:
		g.genCompare(instr)
	case ir.SHL, ir.SHR:
		g.genShift(instr)
	case ir.JMP:
		g.line(1, "jmp %s", instr.Operands[0].String())
	case ir.JMPFALSE:
		g.loadInto("rax", 8, instr.Operands[0])
		g.line(1, "cmp rax, 0")
		g.line(1, "je %s", instr.Operands[1].String())
	case ir.LOAD:
		g.genLoad(instr)
	case ir.SYSCALL:
		g.line(1, "syscall")
	default:
		g.errorf(instr.Loc, "internal error: codegen received unexpected IR op %q", instr.Op)
	}
}

// floatGate rejects float-typed instructions with a clean diagnostic
// instead of miscompiled or panicking code: the front end types floats all
// the way through IR lowering, but no FP emission exists yet.
func (g *Generator) floatGate(instr ir.Instruction) bool {
	if instr.Typ != nil && instr.Typ.IsFloat() {
		g.errorf(instr.Loc, "floating-point code generation is not supported")
		return true
	}
	return false
}

// arrayGate rejects assigning a whole array value in one instruction: this
// naive codegen only moves single machine words, never back to back
// element copies.
func (g *Generator) arrayGate(instr ir.Instruction) bool {
	if instr.Typ != nil && instr.Typ.IsArray() {
		g.errorf(instr.Loc, "whole-array value assignment is not supported by codegen")
		return true
	}
	return false
}

func (g *Generator) genAssign(instr ir.Instruction) {
	if g.floatGate(instr) || g.arrayGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", s.size, instr.Operands[0])
	g.storeFrom("rax", s.size, instr.Dst)
}
