package parser

import (
	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/token"
)

// ParseType parses a type expression: prefix modifiers outermost-to-
// innermost (mut, const?, *, &, ?, [expr?]), then a base type (primitive
// keyword, identifier, member type A.B, or function type), per spec.md
// section 4.2's parse_type contract.
func ParseType(p *Parser) ast.ID {
	switch p.Current().Kind {
	case token.KW_MUT:
		return parseTypeMut(p)
	case token.KW_CONST:
		return parseTypeConst(p)
	case token.STAR:
		return parseTypePtr(p)
	case token.AMP:
		return parseTypeRef(p)
	case token.QUESTION:
		return parseTypeOpt(p)
	case token.LBRACKET:
		return parseTypeArray(p)
	case token.KW_FUN:
		return parseTypeFun(p)
	case token.KW_VEC:
		return parseTypeVec(p)
	case token.KW_MAT:
		return parseTypeMat(p)
	default:
		if p.Current().Kind.IsPrimitiveType() {
			return parseTypePrim(p)
		}
		if p.Current().Kind == token.IDENTIFIER {
			return parseTypeMember(p)
		}
	}
	cur := p.Current()
	p.bag.Errorf(diag.KindUnexpectedToken, cur.Loc, "expected a type, found %s", cur.Kind)
	return ast.NoID
}

func parseTypeMut(p *Parser) ast.ID {
	tok := p.Expect(token.KW_MUT)
	n := p.reg.New(ast.KindTypeMut, tok)
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

func parseTypeConst(p *Parser) ast.ID {
	tok := p.Expect(token.KW_CONST)
	n := p.reg.New(ast.KindTypeConst, tok)
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

func parseTypePtr(p *Parser) ast.ID {
	tok := p.Expect(token.STAR)
	n := p.reg.New(ast.KindTypePtr, tok)
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

func parseTypeRef(p *Parser) ast.ID {
	tok := p.Expect(token.AMP)
	n := p.reg.New(ast.KindTypeRef, tok)
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

func parseTypeOpt(p *Parser) ast.ID {
	tok := p.Expect(token.QUESTION)
	n := p.reg.New(ast.KindTypeOpt, tok)
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

// parseTypeArray parses `[` expr? `]` base, per parser_parse_type_array.
func parseTypeArray(p *Parser) ast.ID {
	tok := p.Expect(token.LBRACKET)
	n := p.reg.New(ast.KindTypeArray, tok)
	if p.Current().Kind != token.RBRACKET {
		length := ParseExpr(p)
		p.reg.At(n).ArrayLen = length
	}
	if !p.Consume(token.RBRACKET) {
		p.bag.Errorf(diag.KindMissingBracket, p.Current().Loc, "missing closing ']' in array type")
	}
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

// parseTypeVec parses `vec` `[` expr `]` base, the extension-type
// counterpart of array that fixes a vec to a single element type, per
// original_source/inc/ast/type/vec.h's size/base_type fields.
func parseTypeVec(p *Parser) ast.ID {
	tok := p.Expect(token.KW_VEC)
	n := p.reg.New(ast.KindTypeVec, tok)
	p.Expect(token.LBRACKET)
	p.reg.At(n).ArrayLen = ParseExpr(p)
	if !p.Consume(token.RBRACKET) {
		p.bag.Errorf(diag.KindMissingBracket, p.Current().Loc, "missing closing ']' in vec type")
	}
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

// parseTypeMat parses `mat` `[` expr `,` expr `]` base, per
// original_source/inc/ast/type/mat.h's rows/cols/base_type fields.
func parseTypeMat(p *Parser) ast.ID {
	tok := p.Expect(token.KW_MAT)
	n := p.reg.New(ast.KindTypeMat, tok)
	p.Expect(token.LBRACKET)
	p.reg.At(n).MatRows = ParseExpr(p)
	p.Expect(token.COMMA)
	p.reg.At(n).MatCols = ParseExpr(p)
	if !p.Consume(token.RBRACKET) {
		p.bag.Errorf(diag.KindMissingBracket, p.Current().Loc, "missing closing ']' in mat type")
	}
	base := ParseType(p)
	if base != ast.NoID {
		p.reg.AddChild(n, base)
	}
	return n
}

func parseTypePrim(p *Parser) ast.ID {
	tok := p.Next()
	return p.reg.New(ast.KindTypePrim, tok)
}

// parseTypeMember parses an identifier, optionally followed by one or more
// `.member` suffixes (A.B.C), per parser_parse_type_member. A bare
// identifier produces KindTypeName; each `.` suffix wraps it in
// KindTypeMember.
func parseTypeMember(p *Parser) ast.ID {
	tok := p.Expect(token.IDENTIFIER)
	n := p.reg.New(ast.KindTypeName, tok)
	p.reg.At(n).Name = tok.Text
	for p.Current().Kind == token.DOT {
		p.Next()
		memberTok := p.Expect(token.IDENTIFIER)
		member := p.reg.New(ast.KindTypeMember, memberTok)
		p.reg.At(member).Member = memberTok.Text
		p.reg.AddChild(member, n)
		n = member
	}
	return n
}

// parseTypeFun parses an optional calling-convention string literal, `fun`,
// a parenthesized comma-delimited parameter type list with an optional
// `...` variadic marker, `:`, and the return type.
func parseTypeFun(p *Parser) ast.ID {
	tok := p.Expect(token.KW_FUN)
	n := p.reg.New(ast.KindTypeFun, tok)
	p.Expect(token.LPAREN)
	parseDelimitedList(p, n, token.COMMA, func(p *Parser) ast.ID {
		if p.Current().Kind == token.ELLIPSIS {
			p.Next()
			p.reg.At(n).IsVariadic = true
			return ast.NoID
		}
		return ParseType(p)
	})
	p.Expect(token.RPAREN)
	p.Expect(token.COLON)
	ret := ParseType(p)
	if ret != ast.NoID {
		p.reg.AddChild(n, ret)
	}
	return n
}
