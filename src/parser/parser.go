// Package parser implements tau's syntax analyzer: recursive descent with
// one-token lookahead for declarations, statements, and types, deferring to
// a Shunting-Yard operator-precedence parser (shyd.go) for expressions.
// Grounded on original_source/inc/stages/parser/parser.h's parser_t
// contract (parser_current/next/peek/consume/expect, delimited/terminated
// list helpers), translated from an opaque-pointer C API into a Go struct
// with exported methods.
package parser

import (
	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/token"
)

// Parser holds the token cursor, the node arena it builds into, and the
// error bag it reports into.
type Parser struct {
	toks []token.Token
	pos  int

	reg *ast.Registry
	bag *diag.Bag

	// ignoreNewline mirrors parser_get/set_ignore_newline. The tau lexer
	// this implementation pairs with never emits a significant newline
	// token (whitespace, including newlines, is always skipped), so this
	// flag has no observable effect today; it is kept so a future
	// whitespace-sensitive lexer mode has a place to plug in without an
	// API change.
	ignoreNewline bool
}

// New returns a Parser over toks, allocating nodes into reg and reporting
// errors into bag. toks must end with an EOF token.
func New(toks []token.Token, reg *ast.Registry, bag *diag.Bag) *Parser {
	return &Parser{toks: toks, reg: reg, bag: bag}
}

// Registry returns the node arena the parser allocates into.
func (p *Parser) Registry() *ast.Registry { return p.reg }

// Current returns the token at the cursor without advancing.
func (p *Parser) Current() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // trailing EOF
	}
	return p.toks[p.pos]
}

// Peek returns the token after the cursor without advancing.
func (p *Parser) Peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

// Next returns the current token and advances the cursor, stopping at EOF.
func (p *Parser) Next() token.Token {
	t := p.Current()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

// Consume advances past the current token if it has kind k, reporting
// whether it did.
func (p *Parser) Consume(k token.Kind) bool {
	if p.Current().Kind != k {
		return false
	}
	p.Next()
	return true
}

// Expect consumes the current token if it has kind k; otherwise it emits
// UnexpectedToken and returns the (wrong) current token without advancing.
func (p *Parser) Expect(k token.Kind) token.Token {
	if p.Current().Kind == k {
		return p.Next()
	}
	cur := p.Current()
	p.bag.Add(diag.Diagnostic{
		Kind:    diag.KindUnexpectedToken,
		Message: "expected " + k.String() + ", found " + cur.Kind.String(),
		Primary: cur.Loc,
	})
	return cur
}

// IgnoreNewline reports the current ignore_newline mode.
func (p *Parser) IgnoreNewline() bool { return p.ignoreNewline }

// SetIgnoreNewline sets the ignore_newline mode for the productions that
// follow.
func (p *Parser) SetIgnoreNewline(v bool) { p.ignoreNewline = v }

// parseFunc parses one element of a delimited/terminated list.
type parseFunc func(p *Parser) ast.ID

// parseDelimitedList parses elements separated by delim until the current
// token is no longer delim, appending each as a child of into. Mirrors
// parser_parse_delimited_list: `(e, e, e)`-shaped lists where the absence
// of delim ends the list (the caller still consumes the closing token).
func parseDelimitedList(p *Parser, into ast.ID, delim token.Kind, fn parseFunc) {
	if p.Current().Kind == token.RPAREN || p.Current().Kind == token.RBRACE || p.Current().Kind == token.RBRACKET {
		return
	}
	for {
		id := fn(p)
		if id != ast.NoID {
			p.reg.AddChild(into, id)
		}
		if !p.Consume(delim) {
			return
		}
	}
}

// parseTerminatedList parses elements until the current token has kind
// termin (not consumed), resynchronizing at termin on a parse error.
// Mirrors parser_parse_terminated_list: `{ decl; decl; }`-shaped lists.
func parseTerminatedList(p *Parser, into ast.ID, termin token.Kind, fn parseFunc) {
	for p.Current().Kind != termin && p.Current().Kind != token.EOF {
		before := p.pos
		id := fn(p)
		if id != ast.NoID {
			p.reg.AddChild(into, id)
		}
		if p.pos == before {
			// fn made no progress; avoid an infinite loop by
			// resynchronizing at the next statement/decl boundary.
			p.Next()
		}
	}
}
