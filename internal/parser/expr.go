package parser

import (
	"woc/internal/ast"
	"woc/internal/token"
)

// expr is the entry point into the precedence-climbing expression grammar.
// Precedence lowest-to-highest: or, and, compare, bit-or, bit-xor, bit-and,
// shift, sum, product, pow (right-associative), prefix, call/grouping.
// Each level is a small left-associative loop except
// pow, which recurses on its own level to associate right.
func (p *Parser) expr() (ast.Expr, bool) {
	return p.orExpr()
}

func (p *Parser) binaryLevel(next func() (ast.Expr, bool), kinds ...token.Kind) (ast.Expr, bool) {
	lhs, ok := next()
	if !ok {
		return nil, false
	}
	for {
		matched := false
		for _, k := range kinds {
			if p.check(k) {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		opTok := p.stream.Advance()
		rhs, ok := next()
		if !ok {
			return nil, false
		}
		lhs = &ast.BinOp{Op: opTok.Kind, Lhs: lhs, Rhs: rhs, Loc: opTok.Loc}
	}
	return lhs, true
}

func (p *Parser) orExpr() (ast.Expr, bool) {
	return p.binaryLevelKeyword(p.andExpr, "or")
}

func (p *Parser) andExpr() (ast.Expr, bool) {
	return p.binaryLevelKeyword(p.compareExpr, "and")
}

// binaryLevelKeyword is binaryLevel specialized for keyword-spelled
// operators ("and"/"or"), which lex as KEYWORD tokens rather than a
// dedicated punctuator Kind.
func (p *Parser) binaryLevelKeyword(next func() (ast.Expr, bool), word string) (ast.Expr, bool) {
	lhs, ok := next()
	if !ok {
		return nil, false
	}
	for p.checkKeyword(word) {
		opTok := p.stream.Advance()
		rhs, ok := next()
		if !ok {
			return nil, false
		}
		lhs = &ast.BinOp{Op: token.Kind(word), Lhs: lhs, Rhs: rhs, Loc: opTok.Loc}
	}
	return lhs, true
}

func (p *Parser) compareExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.bitOrExpr, token.EQ_EQ, token.NOT_EQ, token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ)
}

func (p *Parser) bitOrExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.bitXorExpr, token.PIPE)
}

func (p *Parser) bitXorExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.bitAndExpr, token.CARET)
}

func (p *Parser) bitAndExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.shiftExpr, token.AMP)
}

func (p *Parser) shiftExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.sumExpr, token.SHL, token.SHR)
}

func (p *Parser) sumExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.productExpr, token.PLUS, token.MINUS)
}

func (p *Parser) productExpr() (ast.Expr, bool) {
	return p.binaryLevel(p.powExpr, token.STAR, token.SLASH, token.PERCENT, token.FLOORDIV)
}

// powExpr is right-associative: it recurses into itself on the right rather
// than looping, so `2 ** 3 ** 2` parses as `2 ** (3 ** 2)`.
func (p *Parser) powExpr() (ast.Expr, bool) {
	lhs, ok := p.prefixExpr()
	if !ok {
		return nil, false
	}
	if p.check(token.POW) {
		opTok := p.stream.Advance()
		rhs, ok := p.powExpr()
		if !ok {
			return nil, false
		}
		return &ast.BinOp{Op: opTok.Kind, Lhs: lhs, Rhs: rhs, Loc: opTok.Loc}, true
	}
	return lhs, true
}

// prefixExpr parses unary `-`, `!`, and `not`, right-associative by
// recursing on itself.
func (p *Parser) prefixExpr() (ast.Expr, bool) {
	if p.check(token.MINUS) || p.check(token.BANG) || p.checkKeyword("not") {
		opTok := p.stream.Advance()
		operand, ok := p.prefixExpr()
		if !ok {
			return nil, false
		}
		op := opTok.Kind
		if opTok.Kind == token.KEYWORD {
			op = token.Kind(opTok.Lexeme)
		}
		return &ast.UnaryOp{Op: op, Operand: operand, Loc: opTok.Loc}, true
	}
	return p.callOrPrimary()
}

func (p *Parser) callOrPrimary() (ast.Expr, bool) {
	if p.check(token.IDENTIFIER) && p.peekAhead(1) == token.LPAREN {
		return p.fnCall()
	}
	return p.primary()
}

func (p *Parser) primary() (ast.Expr, bool) {
	tok := p.current()
	switch tok.Kind {
	case token.LIT_INT, token.LIT_FLOAT, token.LIT_CHAR, token.LIT_STRING, token.LIT_BOOL:
		p.stream.Advance()
		return &ast.Literal{Lexeme: tok.Lexeme, Kind_: tok.Kind, Loc: tok.Loc}, true

	case token.IDENTIFIER:
		p.stream.Advance()
		if p.isMatch(token.LBRACKET) {
			idx, ok := p.expr()
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.RBRACKET, "expected ']' after array index"); !ok {
				return nil, false
			}
			return &ast.ArraySubscription{Array: tok.Lexeme, Index: idx, Loc: tok.Loc}, true
		}
		return &ast.VarTerminal{Name: tok.Lexeme, Loc: tok.Loc}, true

	case token.LPAREN:
		p.stream.Advance()
		inner, ok := p.expr()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.RPAREN, "expected ')' to close grouped expression"); !ok {
			return nil, false
		}
		return inner, true

	default:
		p.diags.Add(p.syntaxError(tok, "expected an expression"))
		return nil, false
	}
}
