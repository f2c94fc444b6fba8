// Package ast defines the tagged-variant AST: a Go interface implemented by
// concrete node structs, dispatched by type switch rather than by a
// Visitor/Accept pair. This is a deliberate departure from an
// inheritance-style visitor hierarchy: passes over the tree (pretty
// printing, semantic analysis, IR lowering) are plain functions keyed on
// node kind, not methods the node itself must host.
package ast

import (
	"woc/internal/token"
	"woc/internal/types"
)

// Node is implemented by every expression and statement node. Kind reports
// which concrete variant a Node holds, so callers can type-switch on it or
// on the concrete type directly.
type Node interface {
	Kind() Kind
	Location() token.Location
}

type Kind int

const (
	KindLiteral Kind = iota
	KindBinOp
	KindUnaryOp
	KindVarTerminal
	KindArraySubscription
	KindFnCall

	KindVarDeclaration
	KindAssignment
	KindReturn
	KindImport
	KindFnHeader
	KindBlock
	KindFn
	KindLoop
	KindIf
	KindBreak
)

// Expr is a Node that produces a value and carries a decorated Type, set by
// the semantic pass. Type is nil before semantic analysis and must be
// non-nil afterwards for every expression reachable from the program root.
type Expr interface {
	Node
	exprType() **types.Type
}

// Type returns the node's decorated Type, or nil if semantic analysis has
// not yet run over it.
func Type(e Expr) *types.Type {
	return *e.exprType()
}

// SetType decorates e with t. Used exclusively by internal/sema.
func SetType(e Expr, t *types.Type) {
	*e.exprType() = t
}

// Stmt is a Node that performs an action rather than producing a value.
type Stmt interface {
	Node
}

// Program is the parser's output: an ordered list of top-level function
// declarations plus the source path they came from.
type Program struct {
	Path  string
	Decls []*Fn
}
