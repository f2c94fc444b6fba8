// Package sema decorates a parsed *ast.Program with types: scope
// resolution, symbol table management, and type checking including
// pointer arithmetic.
package sema

import (
	"strings"

	"woc/internal/ast"
	"woc/internal/builtins"
	"woc/internal/diag"
	"woc/internal/token"
	"woc/internal/types"
)

// Analyzer walks a Program, decorating every expression node's Type field
// in place and reporting diagnostics on failure. Semantic errors are fatal:
// the first critical diagnostic halts the walk.
type Analyzer struct {
	file     string
	lines    []string
	interner *types.Interner
	global   *Scope
	diags    diag.Bag
}

func New(file, source string, interner *types.Interner) *Analyzer {
	a := &Analyzer{file: file, lines: strings.Split(source, "\n"), interner: interner, global: NewGlobalScope()}
	return a
}

func (a *Analyzer) lineText(n int) string {
	if n < 0 || n >= len(a.lines) {
		return ""
	}
	return a.lines[n]
}

func (a *Analyzer) region(loc token.Location) diag.Region {
	return diag.Region{File: a.file, Line: loc.Line, Column: loc.Column, Source: a.lineText(loc.Line)}
}

func (a *Analyzer) errorAt(loc token.Location, format string, args ...any) {
	a.diags.Add(diag.Criticalf(format, args...).WithLabel(a.region(loc), "here"))
}

func (a *Analyzer) failed() bool { return a.diags.HasCritical() }

// Analyze pre-registers the builtins, registers every top-level function in
// global scope (so mutually-recursive references resolve), then visits each
// function body in turn.
func (a *Analyzer) Analyze(prog *ast.Program) diag.Bag {
	if err := a.registerBuiltins(); err != nil {
		a.diags.Add(diag.Criticalf("%s", err.Error()))
		return a.diags
	}

	for _, fn := range prog.Decls {
		if a.failed() {
			break
		}
		a.registerFn(fn)
	}
	for _, fn := range prog.Decls {
		if a.failed() {
			break
		}
		a.visitFn(fn)
	}
	return a.diags
}

func (a *Analyzer) registerBuiltins() error {
	sigs, err := builtins.Load(a.interner)
	if err != nil {
		return err
	}
	for _, sig := range sigs {
		var params []Param
		for _, p := range sig.Params {
			params = append(params, Param{Name: p.Name, Typ: p.Typ})
		}
		a.global.Insert(sig.Name, NewFnSymbol(sig.Name, params, sig.ReturnType))
	}
	return nil
}

func (a *Analyzer) registerFn(fn *ast.Fn) {
	if a.global.DeclaredHere(fn.Header.Name) {
		a.errorAt(fn.Header.Loc, "function %q is already declared", fn.Header.Name)
		return
	}
	var params []Param
	for _, p := range fn.Header.Params {
		params = append(params, Param{Mut: p.Mut, Name: p.Name, Typ: p.Typ})
	}
	a.global.Insert(fn.Header.Name, NewFnSymbol(fn.Header.Name, params, fn.Header.ReturnType))
}

func (a *Analyzer) visitFn(fn *ast.Fn) {
	scope := a.global.Push()
	for _, p := range fn.Header.Params {
		scope.Insert(p.Name, NewVarSymbol(p.Name, p.Typ, p.Mut))
	}
	a.visitBlock(fn.Body, scope, fn.Header.Name)
}

func (a *Analyzer) visitBlock(blk *ast.Block, scope *Scope, fnName string) {
	for _, stmt := range blk.Stmts {
		if a.failed() {
			return
		}
		a.visitStmt(stmt, scope, fnName)
	}
}

func (a *Analyzer) visitStmt(stmt ast.Stmt, scope *Scope, fnName string) {
	switch n := stmt.(type) {
	case *ast.VarDeclaration:
		a.visitVarDecl(n, scope)
	case *ast.Assignment:
		a.visitAssignment(n, scope)
	case *ast.Return:
		a.visitReturn(n, scope, fnName)
	case *ast.Import:
		// nothing to check: import names are resolved by the driver/linker,
		// not by the type system.
	case *ast.FnCall:
		a.visitExpr(n, scope)
	case *ast.If:
		a.visitIf(n, scope, fnName)
	case *ast.Loop:
		a.visitBlock(n.Body, scope.Push(), fnName)
	case *ast.Break:
		// Break's "must be inside a loop" rule is enforced structurally by
		// internal/ir's loop-label stack; nothing to type-check here.
	default:
		a.errorAt(stmt.Location(), "internal error: unhandled statement kind %T", stmt)
	}
}

func (a *Analyzer) visitIf(n *ast.If, scope *Scope, fnName string) {
	condType := a.visitExpr(n.Cond, scope)
	if condType != nil && !condType.Equal(a.interner.BoolT()) {
		a.errorAt(n.Cond.Location(), "if condition must be bool, got %s", condType)
		return
	}
	a.visitBlock(n.Then, scope.Push(), fnName)
	if n.Else != nil {
		a.visitBlock(n.Else, scope.Push(), fnName)
	}
}

func (a *Analyzer) visitVarDecl(n *ast.VarDeclaration, scope *Scope) {
	if scope.DeclaredHere(n.Name) {
		a.errorAt(n.Loc, "%q is already declared in this scope", n.Name)
		return
	}
	if n.Init != nil {
		initType := a.visitExpr(n.Init, scope)
		if initType == nil {
			return
		}
		if !initType.Equal(n.Typ) {
			a.errorAt(n.Init.Location(), "cannot initialize %q: declared as %s, got %s", n.Name, n.Typ, initType)
			return
		}
	}
	scope.Insert(n.Name, NewVarSymbol(n.Name, n.Typ, n.Mut))
}

func (a *Analyzer) visitAssignment(n *ast.Assignment, scope *Scope) {
	sym, ok := scope.Resolve(n.Name)
	if !ok {
		a.errorAt(n.Loc, "unknown identifier %q", n.Name)
		return
	}
	if !sym.IsVar() {
		a.errorAt(n.Loc, "%q is not a variable", n.Name)
		return
	}
	if !sym.Mut {
		a.errorAt(n.Loc, "%q is immutable", n.Name)
		return
	}
	rhsType := a.visitExpr(n.Rhs, scope)
	if rhsType == nil {
		return
	}
	if !rhsType.Equal(sym.VarType) {
		a.errorAt(n.Rhs.Location(), "cannot assign to %q: expected %s, got %s", n.Name, sym.VarType, rhsType)
	}
}

func (a *Analyzer) visitReturn(n *ast.Return, scope *Scope, fnName string) {
	fnSym, ok := a.global.Resolve(fnName)
	if !ok || !fnSym.IsFn() {
		a.errorAt(n.Loc, "internal error: return outside any known function %q", fnName)
		return
	}
	if fnSym.ReturnType.Equal(a.interner.FreeT()) {
		if n.Value != nil {
			a.errorAt(n.Value.Location(), "function %q returns free, so return must not carry a value", fnName)
		}
		return
	}
	if n.Value == nil {
		a.errorAt(n.Loc, "function %q must return a %s value", fnName, fnSym.ReturnType)
		return
	}
	valType := a.visitExpr(n.Value, scope)
	if valType == nil {
		return
	}
	if !valType.Equal(fnSym.ReturnType) {
		a.errorAt(n.Value.Location(), "function %q must return %s, got %s", fnName, fnSym.ReturnType, valType)
	}
}

// visitExpr decorates e's Type and returns it (nil on failure, with a
// diagnostic already recorded).
func (a *Analyzer) visitExpr(e ast.Expr, scope *Scope) *types.Type {
	switch n := e.(type) {
	case *ast.Literal:
		return a.visitLiteral(n)
	case *ast.VarTerminal:
		return a.visitVarTerminal(n, scope)
	case *ast.ArraySubscription:
		return a.visitArraySubscription(n, scope)
	case *ast.BinOp:
		return a.visitBinOp(n, scope)
	case *ast.UnaryOp:
		return a.visitUnaryOp(n, scope)
	case *ast.FnCall:
		return a.visitFnCall(n, scope)
	default:
		a.errorAt(e.Location(), "internal error: unhandled expression kind %T", e)
		return nil
	}
}

func (a *Analyzer) visitLiteral(n *ast.Literal) *types.Type {
	var t *types.Type
	switch n.Kind_ {
	case token.LIT_INT:
		t = a.interner.IntT()
	case token.LIT_FLOAT:
		t = a.interner.FloatT()
	case token.LIT_CHAR:
		t = a.interner.CharT()
	case token.LIT_BOOL:
		t = a.interner.BoolT()
	case token.LIT_STRING:
		// Lexeme is the raw source span between the quotes, so an escape
		// sequence counts as two characters of array length.
		t = a.interner.Array(len(n.Lexeme), a.interner.CharT())
	default:
		a.errorAt(n.Loc, "internal error: unknown literal kind %s", n.Kind_)
		return nil
	}
	ast.SetType(n, t)
	return t
}

func (a *Analyzer) visitVarTerminal(n *ast.VarTerminal, scope *Scope) *types.Type {
	sym, ok := scope.Resolve(n.Name)
	if !ok {
		a.errorAt(n.Loc, "unknown identifier %q", n.Name)
		return nil
	}
	if !sym.IsVar() {
		a.errorAt(n.Loc, "%q is a function, not a value", n.Name)
		return nil
	}
	ast.SetType(n, sym.VarType)
	return sym.VarType
}

func (a *Analyzer) visitArraySubscription(n *ast.ArraySubscription, scope *Scope) *types.Type {
	sym, ok := scope.Resolve(n.Array)
	if !ok {
		a.errorAt(n.Loc, "unknown identifier %q", n.Array)
		return nil
	}
	if !sym.IsVar() || !sym.VarType.IsArray() {
		a.errorAt(n.Loc, "%q is not an array", n.Array)
		return nil
	}
	idxType := a.visitExpr(n.Index, scope)
	if idxType == nil {
		return nil
	}
	if !idxType.Equal(a.interner.IntT()) {
		a.errorAt(n.Index.Location(), "array index must be int, got %s", idxType)
		return nil
	}
	elem := sym.VarType.Elem()
	ast.SetType(n, elem)
	return elem
}

func (a *Analyzer) visitFnCall(n *ast.FnCall, scope *Scope) *types.Type {
	sym, ok := a.global.Resolve(n.Name)
	if !ok {
		a.errorAt(n.Loc, "unknown function %q", n.Name)
		return nil
	}
	if !sym.IsFn() {
		a.errorAt(n.Loc, "%q is not a function", n.Name)
		return nil
	}
	if len(n.Args) != len(sym.Params) {
		a.errorAt(n.Loc, "%q expects %d argument(s), got %d", n.Name, len(sym.Params), len(n.Args))
		return nil
	}
	for i, arg := range n.Args {
		argType := a.visitExpr(arg, scope)
		if argType == nil {
			return nil
		}
		if !argType.Equal(sym.Params[i].Typ) {
			a.errorAt(arg.Location(), "%q argument %d: expected %s, got %s", n.Name, i+1, sym.Params[i].Typ, argType)
			return nil
		}
	}
	ast.SetType(n, sym.ReturnType)
	return sym.ReturnType
}

func (a *Analyzer) visitUnaryOp(n *ast.UnaryOp, scope *Scope) *types.Type {
	operandType := a.visitExpr(n.Operand, scope)
	if operandType == nil {
		return nil
	}
	var result *types.Type
	switch n.Op {
	case "not":
		if !operandType.Equal(a.interner.BoolT()) {
			a.errorAt(n.Loc, "'not' requires bool, got %s", operandType)
			return nil
		}
		result = a.interner.BoolT()
	case token.MINUS: // neg
		if !operandType.IsPrimitive() || (!operandType.IsInt() && !operandType.IsFloat()) {
			a.errorAt(n.Loc, "unary '-' requires int or float, got %s", operandType)
			return nil
		}
		result = operandType
	case token.BANG: // bit_not
		if !operandType.IsPrimitive() || (!operandType.IsInt() && !operandType.IsBool()) {
			a.errorAt(n.Loc, "'!' requires int or bool, got %s", operandType)
			return nil
		}
		result = operandType
	default:
		a.errorAt(n.Loc, "internal error: unknown unary operator %q", n.Op)
		return nil
	}
	ast.SetType(n, result)
	return result
}

var arithmeticOps = map[token.Kind]bool{
	token.PLUS: true, token.MINUS: true, token.STAR: true, token.SLASH: true,
	token.FLOORDIV: true, token.POW: true, token.PERCENT: true,
}

var comparisonOps = map[token.Kind]bool{
	token.EQ_EQ: true, token.NOT_EQ: true, token.LESS: true, token.LESS_EQ: true,
	token.GREATER: true, token.GREATER_EQ: true, "and": true, "or": true,
}

func (a *Analyzer) visitBinOp(n *ast.BinOp, scope *Scope) *types.Type {
	lhsType := a.visitExpr(n.Lhs, scope)
	rhsType := a.visitExpr(n.Rhs, scope)
	if lhsType == nil || rhsType == nil {
		return nil
	}

	if lhsType.IsArray() || rhsType.IsArray() {
		a.errorAt(n.Loc, "operator %q is not defined on array types", n.Op)
		return nil
	}

	if lhsType.IsPointer() || rhsType.IsPointer() {
		return a.visitPointerBinOp(n, lhsType, rhsType)
	}

	if !lhsType.Equal(rhsType) {
		a.errorAt(n.Loc, "operator %q requires matching types, got %s and %s", n.Op, lhsType, rhsType)
		return nil
	}

	var result *types.Type
	switch {
	case arithmeticOps[n.Op]:
		result = lhsType
	case comparisonOps[n.Op]:
		result = a.interner.BoolT()
	default:
		a.errorAt(n.Loc, "internal error: unknown binary operator %q", n.Op)
		return nil
	}
	ast.SetType(n, result)
	return result
}

// visitPointerBinOp checks the operators that remain legal once at least
// one operand is a pointer: ptr+int and ptr-int keep the pointer type,
// ptr-ptr of a common pointee yields int, and comparisons require two
// pointers of the same pointee.
func (a *Analyzer) visitPointerBinOp(n *ast.BinOp, lhsType, rhsType *types.Type) *types.Type {
	lhsPtr, rhsPtr := lhsType.IsPointer(), rhsType.IsPointer()

	var result *types.Type
	switch n.Op {
	case token.PLUS:
		switch {
		case lhsPtr && rhsPtr:
			a.errorAt(n.Loc, "cannot add two pointers")
			return nil
		case lhsPtr && rhsType.IsInt():
			result = lhsType
		case rhsPtr && lhsType.IsInt():
			result = rhsType
		default:
			a.errorAt(n.Loc, "pointer '+' requires a pointer and an int, got %s and %s", lhsType, rhsType)
			return nil
		}
	case token.MINUS:
		switch {
		case lhsPtr && rhsPtr:
			if !lhsType.Equal(rhsType) {
				a.errorAt(n.Loc, "cannot subtract pointers of differing pointee types: %s and %s", lhsType, rhsType)
				return nil
			}
			result = a.interner.IntT()
		case lhsPtr && rhsType.IsInt():
			result = lhsType
		default:
			a.errorAt(n.Loc, "pointer '-' requires ptr-ptr or ptr-int, got %s and %s", lhsType, rhsType)
			return nil
		}
	case token.EQ_EQ, token.NOT_EQ, token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		if !lhsPtr || !rhsPtr {
			a.errorAt(n.Loc, "pointer comparison requires two pointers, got %s and %s", lhsType, rhsType)
			return nil
		}
		if !lhsType.Equal(rhsType) {
			a.errorAt(n.Loc, "cannot compare pointers of differing pointee types: %s and %s", lhsType, rhsType)
			return nil
		}
		result = a.interner.BoolT()
	default:
		a.errorAt(n.Loc, "operator %q is not defined on pointer types", n.Op)
		return nil
	}
	ast.SetType(n, result)
	return result
}
