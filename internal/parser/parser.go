// Package parser turns a fully-lexed token.Stream into an *ast.Program via
// recursive descent, with Pratt-style precedence climbing for expressions.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"woc/internal/ast"
	"woc/internal/diag"
	"woc/internal/token"
	"woc/internal/types"
)

// Parser holds a cursor over the previous/current token plus enough source
// context to label diagnostics.
type Parser struct {
	file    string
	lines   []string
	stream  *token.Stream
	interner *types.Interner
	diags   diag.Bag
}

func New(file, source string, stream *token.Stream, interner *types.Interner) *Parser {
	return &Parser{file: file, lines: strings.Split(source, "\n"), stream: stream, interner: interner}
}

func (p *Parser) lineText(n int) string {
	if n < 0 || n >= len(p.lines) {
		return ""
	}
	return p.lines[n]
}

func (p *Parser) current() token.Token  { return p.stream.Current() }
func (p *Parser) previous() token.Token { return p.stream.Previous() }
func (p *Parser) atEOF() bool           { return p.current().Kind == token.EOF }

func (p *Parser) check(kind token.Kind) bool {
	return !p.atEOF() && p.current().Kind == kind
}

func (p *Parser) checkKeyword(word string) bool {
	return p.check(token.KEYWORD) && p.current().Lexeme == word
}

func (p *Parser) isMatch(kind token.Kind) bool {
	if p.check(kind) {
		p.stream.Advance()
		return true
	}
	return false
}

func (p *Parser) isMatchKeyword(word string) bool {
	if p.checkKeyword(word) {
		p.stream.Advance()
		return true
	}
	return false
}

// peekAhead(n) reports the token.Kind n positions ahead of the cursor, or
// token.EOF if that lookahead runs out of range. This is the parser's one
// bounded-lookahead predicate.
func (p *Parser) peekAhead(n int) token.Kind {
	if !p.stream.InRange(n) {
		return token.EOF
	}
	return p.stream.PeekAt(n).Kind
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, bool) {
	if p.check(kind) {
		return p.stream.Advance(), true
	}
	p.diags.Add(p.syntaxError(p.current(), message))
	return token.Token{}, false
}

func (p *Parser) consumeKeyword(word, message string) (token.Token, bool) {
	if p.checkKeyword(word) {
		return p.stream.Advance(), true
	}
	p.diags.Add(p.syntaxError(p.current(), message))
	return token.Token{}, false
}

// Parse parses the whole token stream into an *ast.Program. The first
// syntax error is fatal: the returned Bag has a critical diagnostic and the
// partial program should be discarded by the caller.
func (p *Parser) Parse() (*ast.Program, diag.Bag) {
	prog := &ast.Program{Path: p.file}
	for !p.atEOF() {
		if p.diags.HasCritical() {
			break
		}
		fn, ok := p.fnDecl()
		if !ok {
			break
		}
		prog.Decls = append(prog.Decls, fn)
	}
	return prog, p.diags
}

// ---- types ----

func (p *Parser) parseType() (*types.Type, bool) {
	switch {
	case p.checkKeyword("ptr"):
		p.stream.Advance()
		if _, ok := p.consume(token.LESS, "expected '<' after 'ptr'"); !ok {
			return nil, false
		}
		elem, ok := p.parseType()
		if !ok {
			return nil, false
		}
		if _, ok := p.consume(token.GREATER, "expected '>' to close 'ptr<...'"); !ok {
			return nil, false
		}
		return p.interner.Pointer(elem), true

	case p.check(token.LBRACKET):
		p.stream.Advance()
		lenTok, ok := p.consume(token.LIT_INT, "expected array length")
		if !ok {
			return nil, false
		}
		length, err := strconv.Atoi(lenTok.Lexeme)
		if err != nil {
			p.diags.Add(p.syntaxError(lenTok, fmt.Sprintf("invalid array length %q", lenTok.Lexeme)))
			return nil, false
		}
		if _, ok := p.consume(token.RBRACKET, "expected ']' after array length"); !ok {
			return nil, false
		}
		elem, ok := p.parseType()
		if !ok {
			return nil, false
		}
		return p.interner.Array(length, elem), true

	case p.check(token.IDENTIFIER):
		tok := p.stream.Advance()
		prim, ok := primitiveByName(tok.Lexeme)
		if !ok {
			p.diags.Add(p.syntaxError(tok, fmt.Sprintf("unknown type %q", tok.Lexeme)))
			return nil, false
		}
		return p.interner.Primitive(prim), true

	default:
		p.diags.Add(p.syntaxError(p.current(), "expected a type"))
		return nil, false
	}
}

func primitiveByName(name string) (types.Primitive, bool) {
	switch name {
	case "free":
		return types.Free, true
	case "int":
		return types.Int, true
	case "float":
		return types.Float, true
	case "char":
		return types.Char, true
	case "bool":
		return types.Bool, true
	default:
		return 0, false
	}
}

// ---- top-level declarations ----

func (p *Parser) fnDecl() (*ast.Fn, bool) {
	startTok := p.current()
	if _, ok := p.consumeKeyword("fn", "expected 'fn'"); !ok {
		return nil, false
	}
	retType, ok := p.parseType()
	if !ok {
		return nil, false
	}
	nameTok, ok := p.consume(token.IDENTIFIER, "expected function name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LPAREN, "expected '(' after function name"); !ok {
		return nil, false
	}
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			mut := p.isMatchKeyword("mut")
			pname, ok := p.consume(token.IDENTIFIER, "expected parameter name")
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.COLON, "expected ':' after parameter name"); !ok {
				return nil, false
			}
			ptype, ok := p.parseType()
			if !ok {
				return nil, false
			}
			params = append(params, ast.Param{Mut: mut, Name: pname.Lexeme, Typ: ptype, Loc: pname.Loc})
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after parameters"); !ok {
		return nil, false
	}

	header := &ast.FnHeader{Name: nameTok.Lexeme, Params: params, ReturnType: retType, Loc: startTok.Loc}

	block, ok := p.block(nameTok.Lexeme)
	if !ok {
		return nil, false
	}
	if len(block.Stmts) == 0 {
		p.diags.Add(p.syntaxError(nameTok, fmt.Sprintf("function %q must have at least one statement", nameTok.Lexeme)))
		return nil, false
	}
	if _, ok := p.consumeKeyword("end", "expected 'end' to close function body"); !ok {
		return nil, false
	}

	return &ast.Fn{Header: header, Body: block, Loc: startTok.Loc}, true
}

// block parses statements until 'end', '}', or (when parsing an if's then
// branch) 'else', without consuming the terminator, so callers choose which
// closing token to require.
func (p *Parser) block(fnName string) (*ast.Block, bool) {
	return p.blockUntil(fnName)
}

func (p *Parser) blockUntil(fnName string, extraStops ...string) (*ast.Block, bool) {
	startTok := p.current()
	blk := &ast.Block{Loc: startTok.Loc}
	for !p.atEOF() && !p.checkKeyword("end") && !p.check(token.RBRACE) {
		stopped := false
		for _, w := range extraStops {
			if p.checkKeyword(w) {
				stopped = true
				break
			}
		}
		if stopped {
			break
		}
		stmt, ok := p.statement(fnName)
		if !ok {
			return nil, false
		}
		blk.Stmts = append(blk.Stmts, stmt)
	}
	return blk, true
}

// ---- statements ----

func (p *Parser) statement(fnName string) (ast.Stmt, bool) {
	switch {
	case p.checkKeyword("let") || p.checkKeyword("mut"):
		return p.varDecl()
	case p.checkKeyword("return"):
		return p.returnStmt(fnName)
	case p.checkKeyword("import"):
		return p.importStmt()
	case p.checkKeyword("if"):
		return p.ifStmt(fnName)
	case p.checkKeyword("loop"):
		return p.loopStmt(fnName)
	case p.checkKeyword("break"):
		return p.breakStmt()
	case p.check(token.IDENTIFIER):
		if p.peekAhead(1) == token.LPAREN {
			expr, ok := p.fnCall()
			if !ok {
				return nil, false
			}
			if _, ok := p.consume(token.SEMI, "expected ';' after function-call statement"); !ok {
				return nil, false
			}
			return expr, true
		}
		return p.assignment()
	default:
		p.diags.Add(p.syntaxError(p.current(), "expected a statement"))
		return nil, false
	}
}

func (p *Parser) varDecl() (ast.Stmt, bool) {
	startTok := p.current()
	mut := p.isMatchKeyword("mut")
	if !mut {
		if _, ok := p.consumeKeyword("let", "expected 'let' or 'mut'"); !ok {
			return nil, false
		}
	}
	nameTok, ok := p.consume(token.IDENTIFIER, "expected variable name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.COLON, "expected ':' after variable name"); !ok {
		return nil, false
	}
	declType, ok := p.parseType()
	if !ok {
		return nil, false
	}

	decl := &ast.VarDeclaration{Mut: mut, Name: nameTok.Lexeme, Typ: declType, Op: token.NONE, Loc: startTok.Loc}
	if p.isMatch(token.ASSIGN) {
		decl.Op = token.ASSIGN
		init, ok := p.expr()
		if !ok {
			return nil, false
		}
		decl.Init = init
	}
	if _, ok := p.consume(token.SEMI, "expected ';' after variable declaration"); !ok {
		return nil, false
	}
	return decl, true
}

func (p *Parser) assignment() (ast.Stmt, bool) {
	nameTok, ok := p.consume(token.IDENTIFIER, "expected identifier")
	if !ok {
		return nil, false
	}
	opTok := p.current()
	if !opTok.IsAssignOp() {
		p.diags.Add(p.syntaxError(opTok, "expected an assignment operator"))
		return nil, false
	}
	p.stream.Advance()

	rhs, ok := p.expr()
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMI, "expected ';' after assignment"); !ok {
		return nil, false
	}
	return &ast.Assignment{Name: nameTok.Lexeme, Op: opTok.Kind, Rhs: rhs, Loc: nameTok.Loc}, true
}

func (p *Parser) returnStmt(fnName string) (ast.Stmt, bool) {
	startTok, ok := p.consumeKeyword("return", "expected 'return'")
	if !ok {
		return nil, false
	}
	ret := &ast.Return{FnName: fnName, Loc: startTok.Loc}
	if !p.check(token.SEMI) {
		val, ok := p.expr()
		if !ok {
			return nil, false
		}
		ret.Value = val
	}
	if _, ok := p.consume(token.SEMI, "expected ';' after return"); !ok {
		return nil, false
	}
	return ret, true
}

func (p *Parser) importStmt() (ast.Stmt, bool) {
	startTok, ok := p.consumeKeyword("import", "expected 'import'")
	if !ok {
		return nil, false
	}
	nameTok, ok := p.consume(token.IDENTIFIER, "expected import name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMI, "expected ';' after import"); !ok {
		return nil, false
	}
	return &ast.Import{Name: nameTok.Lexeme, Loc: startTok.Loc}, true
}

func (p *Parser) ifStmt(fnName string) (ast.Stmt, bool) {
	startTok, ok := p.consumeKeyword("if", "expected 'if'")
	if !ok {
		return nil, false
	}
	cond, ok := p.expr()
	if !ok {
		return nil, false
	}
	then, ok := p.blockUntil(fnName, "else")
	if !ok {
		return nil, false
	}
	node := &ast.If{Cond: cond, Then: then, Loc: startTok.Loc}
	if p.isMatchKeyword("else") {
		elseBlk, ok := p.block(fnName)
		if !ok {
			return nil, false
		}
		node.Else = elseBlk
	}
	if _, ok := p.consumeKeyword("end", "expected 'end' to close 'if'"); !ok {
		return nil, false
	}
	return node, true
}

func (p *Parser) loopStmt(fnName string) (ast.Stmt, bool) {
	startTok, ok := p.consumeKeyword("loop", "expected 'loop'")
	if !ok {
		return nil, false
	}
	body, ok := p.block(fnName)
	if !ok {
		return nil, false
	}
	if _, ok := p.consumeKeyword("end", "expected 'end' to close 'loop'"); !ok {
		return nil, false
	}
	return &ast.Loop{Body: body, Loc: startTok.Loc}, true
}

func (p *Parser) breakStmt() (ast.Stmt, bool) {
	startTok, ok := p.consumeKeyword("break", "expected 'break'")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.SEMI, "expected ';' after break"); !ok {
		return nil, false
	}
	return &ast.Break{Loc: startTok.Loc}, true
}

func (p *Parser) fnCall() (*ast.FnCall, bool) {
	nameTok, ok := p.consume(token.IDENTIFIER, "expected function name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(token.LPAREN, "expected '(' after function name"); !ok {
		return nil, false
	}
	call := &ast.FnCall{Name: nameTok.Lexeme, Loc: nameTok.Loc}
	if !p.check(token.RPAREN) {
		for {
			arg, ok := p.expr()
			if !ok {
				return nil, false
			}
			call.Args = append(call.Args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.consume(token.RPAREN, "expected ')' after arguments"); !ok {
		return nil, false
	}
	return call, true
}
