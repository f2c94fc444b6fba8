package codegen

import (
	"strconv"

	"woc/internal/ir"
)

// genPush buffers one call argument. The lowering emits PUSH instructions
// right-to-left (last argument first) so that, once the window-spilling
// tail is known at the matching CALL, those trailing arguments can be
// pushed onto the stack in the same right-to-left order a real stack-based
// call needs (the rightmost extra argument ends up furthest from rbp). The
// first six arguments in original left-to-right order instead bind
// directly to the ABI register window, which this buffering also makes
// possible to recover even though they arrive in reverse.
func (g *Generator) genPush(instr ir.Instruction) {
	g.pendingArgs = append(g.pendingArgs, instr.Operands[0])
}

// genPop binds one declared parameter at function entry: register-passed
// arguments are copied straight from their ABI register into the
// parameter's frame slot (narrowed to its declared size); stack-passed
// arguments are read from above the saved rbp/return address.
func (g *Generator) genPop(instr ir.Instruction) {
	size, ok := literalInt(instr.Operands[0])
	if !ok || size <= 0 {
		size = 8
	}
	s := g.frame().offsetOf(instr.Dst)
	idx := g.argPos
	if idx < 6 {
		g.line(1, "mov %s [rbp - %d], %s", sizeKeyword(size), s.offset, abiReg(idx, size))
	} else {
		off := 16 + 8*(idx-6)
		g.line(1, "mov rax, [rbp + %d]", off)
		g.line(1, "mov %s [rbp - %d], %s", sizeKeyword(size), s.offset, regSized("rax", size))
	}
	g.argPos++
}

// genCall resolves the buffered arguments into their real positions, emits
// the call, stores a non-free result, and releases any stack space used by
// arguments beyond the 6-register window.
//
// g.pendingArgs holds one entry per PUSH seen since the last call, in the
// right-to-left order the lowering emits them in: the stack-spilled tail
// (original argument index >= 6) first, already in the right-to-left order
// a real stack push needs, followed by the register-bound head (original
// index < 6) in reverse. Splitting at len-6 and reversing the head recovers
// each argument's true left-to-right position.
func (g *Generator) genCall(instr ir.Instruction) {
	argc, _ := literalInt(instr.Operands[1])
	args := g.pendingArgs
	g.pendingArgs = nil
	if len(args) != argc {
		g.errorf(instr.Loc, "internal error: call to %q expected %d buffered arguments, found %d",
			instr.Operands[0].(ir.Lit).Lexeme, argc, len(args))
		return
	}

	numStack := 0
	if argc > 6 {
		numStack = argc - 6
	}
	stackArgs := args[:numStack]  // already right-to-left
	regArgsRev := args[numStack:] // arg[5]..arg[0], needs reversing

	for _, op := range stackArgs {
		g.loadInto("rax", 8, op)
		g.line(1, "push rax")
		g.extraArgs++
	}
	for i := len(regArgsRev) - 1; i >= 0; i-- {
		pos := len(regArgsRev) - 1 - i
		g.loadInto(abiBase[pos], 8, regArgsRev[i])
	}

	name := instr.Operands[0].(ir.Lit).Lexeme
	g.line(1, "call %s", name)
	if instr.Dst != "" && !g.floatGate(instr) {
		s := g.frame().offsetOf(instr.Dst)
		g.storeFrom("rax", s.size, instr.Dst)
	}
	if g.extraArgs > 0 {
		g.line(1, "add rsp, %d", 8*g.extraArgs)
	}
	g.argPos = 0
	g.extraArgs = 0
}

func (g *Generator) genRet(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	g.loadInto("rax", 8, instr.Operands[0])
	label := instr.Operands[1].(ir.Lit).Lexeme
	g.line(1, "jmp .end_%s", label)
}

func (g *Generator) genArith(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.loadInto("rbx", 8, instr.Operands[1])

	result := "rax"
	switch instr.Op {
	case ir.ADD:
		g.line(1, "add rax, rbx")
	case ir.SUB:
		g.line(1, "sub rax, rbx")
	case ir.MUL:
		g.line(1, "imul rax, rbx")
	case ir.DIV:
		g.line(1, "cqo")
		g.line(1, "idiv rbx")
	case ir.MOD:
		g.line(1, "cqo")
		g.line(1, "idiv rbx")
		result = "rdx"
	case ir.BITAND:
		g.line(1, "and rax, rbx")
	case ir.BITOR:
		g.line(1, "or rax, rbx")
	case ir.BITXOR:
		g.line(1, "xor rax, rbx")
	}
	g.storeFrom(result, s.size, instr.Dst)
}

// genFlooredDiv is DIV followed by the sign-correction sequence recorded in
// DESIGN.md's floored-division decision: x86 idiv truncates toward zero, so
// when the remainder is nonzero and the dividend and divisor disagree in
// sign, the quotient is decremented to floor it.
func (g *Generator) genFlooredDiv(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.loadInto("rbx", 8, instr.Operands[1])
	g.line(1, "mov rcx, rax")
	g.line(1, "cqo")
	g.line(1, "idiv rbx")

	skip := g.freshLabel("fd_skip")
	g.line(1, "test rdx, rdx")
	g.line(1, "jz %s", skip)
	g.line(1, "xor rcx, rbx")
	g.line(1, "jns %s", skip)
	g.line(1, "dec rax")
	g.line(0, "%s:", skip)
	g.storeFrom("rax", s.size, instr.Dst)
}

func (g *Generator) freshLabel(prefix string) string {
	g.fdSeq++
	return ".L" + prefix + strconv.Itoa(g.fdSeq)
}

func (g *Generator) genUnaryArith(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	if instr.Op == ir.NEG {
		g.line(1, "neg rax")
	} else {
		g.line(1, "not rax")
	}
	g.storeFrom("rax", s.size, instr.Dst)
}

func (g *Generator) genLogicalNot(instr ir.Instruction) {
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.line(1, "cmp rax, 0")
	g.line(1, "sete al")
	g.line(1, "movzx rax, al")
	g.storeFrom("rax", s.size, instr.Dst)
}

// genLogicalAndOr is the eager bitwise path for and/or, used by the
// lowering when both operands are pure: each operand is first normalized
// to 0/1 before combining, so a value like 2 and 4 still yields a bool.
func (g *Generator) genLogicalAndOr(instr ir.Instruction) {
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.line(1, "cmp rax, 0")
	g.line(1, "setne al")
	g.line(1, "movzx rax, al")
	g.loadInto("rbx", 8, instr.Operands[1])
	g.line(1, "cmp rbx, 0")
	g.line(1, "setne bl")
	g.line(1, "movzx rbx, bl")
	if instr.Op == ir.AND {
		g.line(1, "and rax, rbx")
	} else {
		g.line(1, "or rax, rbx")
	}
	g.storeFrom("rax", s.size, instr.Dst)
}

var compareSet = map[ir.Op]string{
	ir.EQ:  "sete",
	ir.NEQ: "setne",
	ir.LT:  "setl",
	ir.LE:  "setle",
	ir.GT:  "setg",
	ir.GE:  "setge",
}

func (g *Generator) genCompare(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.loadInto("rbx", 8, instr.Operands[1])
	g.line(1, "cmp rax, rbx")
	g.line(1, "%s al", compareSet[instr.Op])
	g.line(1, "movzx rax, al")
	g.storeFrom("rax", s.size, instr.Dst)
}

func (g *Generator) genShift(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	s := g.frame().offsetOf(instr.Dst)
	g.loadInto("rax", 8, instr.Operands[0])
	g.loadInto("rcx", 8, instr.Operands[1])
	if instr.Op == ir.SHL {
		g.line(1, "shl rax, cl")
	} else {
		g.line(1, "sar rax, cl")
	}
	g.storeFrom("rax", s.size, instr.Dst)
}

// genLoad reads one element out of an array local. A literal index folds
// into the base offset at compile time; a runtime index is scaled by the
// element size and added to the array's base address.
func (g *Generator) genLoad(instr ir.Instruction) {
	if g.floatGate(instr) {
		return
	}
	arr := instr.Operands[0].(ir.Sym)
	arrSlot := g.frame().offsetOf(arr.Name)
	elemSize := 8
	if instr.Typ != nil {
		elemSize = instr.Typ.Size()
	}
	dstSlot := g.frame().offsetOf(instr.Dst)

	if n, ok := literalInt(instr.Operands[1]); ok {
		off := arrSlot.offset - n*elemSize
		g.line(1, "mov %s, %s [rbp - %d]", regSized("rax", elemSize), sizeKeyword(elemSize), off)
	} else {
		g.loadInto("rbx", 8, instr.Operands[1])
		g.line(1, "imul rbx, %d", elemSize)
		g.line(1, "lea rcx, [rbp - %d]", arrSlot.offset)
		g.line(1, "add rcx, rbx")
		g.line(1, "mov %s, %s [rcx]", regSized("rax", elemSize), sizeKeyword(elemSize))
	}
	g.storeFrom("rax", dstSlot.size, instr.Dst)
}
