package codegen

import (
	"strconv"

	"woc/internal/ir"
	"woc/internal/token"
)

// regVariants gives the 8/4/2/1-byte NASM spellings of the eight general
// registers codegen ever names directly. rdx doing double duty as both an
// ABI argument register and the div/mod high-half scratch register is
// fine: argument binding happens at function entry, div/mod scratch use
// happens mid-expression, and the two never overlap within one instruction.
var regVariants = map[string][4]string{
	"rax": {"rax", "eax", "ax", "al"},
	"rbx": {"rbx", "ebx", "bx", "bl"},
	"rcx": {"rcx", "ecx", "cx", "cl"},
	"rdx": {"rdx", "edx", "dx", "dl"},
	"rdi": {"rdi", "edi", "di", "dil"},
	"rsi": {"rsi", "esi", "si", "sil"},
	"r8":  {"r8", "r8d", "r8w", "r8b"},
	"r9":  {"r9", "r9d", "r9w", "r9b"},
}

var abiBase = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

func sizeIndex(size int) int {
	switch size {
	case 4:
		return 1
	case 2:
		return 2
	case 1:
		return 3
	default:
		return 0
	}
}

// regSized returns the sub-register spelling of base at the given width.
func regSized(base string, size int) string {
	v, ok := regVariants[base]
	if !ok {
		return base
	}
	return v[sizeIndex(size)]
}

func abiReg(idx, size int) string {
	return regSized(abiBase[idx], size)
}

// sizeKeyword is the NASM size-override keyword for a memory operand of the
// given width.
func sizeKeyword(size int) string {
	switch size {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	default:
		return "qword"
	}
}

// literalValue renders an ir.Lit as the immediate NASM would accept: bools
// become 0/1, chars become their ordinal, everything else (ints, already-
// numeric lexemes) passes through unchanged.
func literalValue(l ir.Lit) string {
	switch l.Kind {
	case token.LIT_BOOL:
		if l.Lexeme == "true" {
			return "1"
		}
		return "0"
	case token.LIT_CHAR:
		r := []rune(l.Lexeme)
		if len(r) == 0 {
			return "0"
		}
		return strconv.Itoa(int(r[0]))
	default:
		return l.Lexeme
	}
}

func literalInt(op ir.Operand) (int, bool) {
	lit, ok := op.(ir.Lit)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Lexeme)
	if err != nil {
		return 0, false
	}
	return n, true
}

// loadInto moves op's value into reg (at the given width), covering all
// three operand kinds: an immediate literal, a named local/parameter, or a
// codegen temp — the latter two both resolve through the active frame. A
// frame slot narrower than the requested width is zero-extended on load, so
// reading a 1-byte bool slot into rax never drags in the neighboring slots'
// bytes.
func (g *Generator) loadInto(reg string, size int, op ir.Operand) {
	switch o := op.(type) {
	case ir.Lit:
		g.line(1, "mov %s, %s", regSized(reg, size), literalValue(o))
	case ir.Sym:
		g.loadSlot(reg, size, g.frame().offsetOf(o.Name))
	case ir.Temp:
		g.loadSlot(reg, size, g.frame().offsetOf(o.String()))
	default:
		g.line(1, "; internal error: unhandled operand kind for %v", op)
	}
}

func (g *Generator) loadSlot(reg string, size int, s slot) {
	width := size
	if s.size < width {
		width = s.size
	}
	switch width {
	case 8:
		g.line(1, "mov %s, qword [rbp - %d]", regSized(reg, 8), s.offset)
	case 4:
		// a 32-bit mov zero-extends into the full register on its own
		g.line(1, "mov %s, dword [rbp - %d]", regSized(reg, 4), s.offset)
	default:
		g.line(1, "movzx %s, %s [rbp - %d]", regSized(reg, 8), sizeKeyword(width), s.offset)
	}
}

// storeFrom writes reg's value (at the given width) to name's frame slot.
func (g *Generator) storeFrom(reg string, size int, name string) {
	s := g.frame().offsetOf(name)
	g.line(1, "mov %s [rbp - %d], %s", sizeKeyword(size), s.offset, regSized(reg, size))
}
