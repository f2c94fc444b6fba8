package parser

import (
	"woc/internal/diag"
	"woc/internal/token"
)

// syntaxError is the parser's single failure shape: a fatal, unrecoverable
// condition reported as one critical diagnostic labelled at the offending
// token. Recovery is not attempted.
func (p *Parser) syntaxError(tok token.Token, message string) diag.Diagnostic {
	return diag.Criticalf("%s", message).WithLabel(p.region(tok), "here")
}

func (p *Parser) region(tok token.Token) diag.Region {
	return diag.Region{
		File:   p.file,
		Line:   tok.Loc.Line,
		Column: tok.Loc.Column,
		Source: p.lineText(tok.Loc.Line),
	}
}
