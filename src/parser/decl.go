package parser

import (
	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/token"
)

// ParseDecl dispatches on the leading keyword, per spec.md section 4.2's
// parse_decl contract: var|param|fun|struct|union|enum|mod|type.
func ParseDecl(p *Parser) ast.ID {
	switch p.Current().Kind {
	case token.KW_VAR:
		return parseDeclVar(p)
	case token.KW_FUN:
		return parseDeclFun(p)
	case token.KW_STRUCT:
		return parseDeclStruct(p)
	case token.KW_UNION:
		return parseDeclUnion(p)
	case token.KW_ENUM:
		return parseDeclEnum(p)
	case token.KW_MOD:
		return parseDeclMod(p)
	case token.KW_TYPE:
		return parseDeclType(p)
	}
	cur := p.Current()
	p.bag.Errorf(diag.KindUnexpectedToken, cur.Loc, "expected a declaration, found %s", cur.Kind)
	p.Next()
	return ast.NoID
}

// parseDeclVar parses `var` id `:` type (`=` expr)? `;`.
func parseDeclVar(p *Parser) ast.ID {
	tok := p.Expect(token.KW_VAR)
	n := p.reg.New(ast.KindDeclVar, tok)

	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	if p.Consume(token.COLON) {
		p.reg.At(n).VarType = ParseType(p)
	}
	if p.Consume(token.ASSIGN) {
		p.reg.At(n).Init = ParseExpr(p)
	}
	p.Expect(token.SEMI)
	return n
}

// parseDeclParam parses one function parameter: id `:` type (`=` expr)?,
// or a bare `...` variadic marker (handled by the caller).
func parseDeclParam(p *Parser) ast.ID {
	tok := p.Expect(token.IDENTIFIER)
	n := p.reg.New(ast.KindDeclParam, tok)
	p.reg.At(n).Name = tok.Text
	p.Expect(token.COLON)
	p.reg.At(n).VarType = ParseType(p)
	if p.Consume(token.ASSIGN) {
		p.reg.At(n).Init = ParseExpr(p)
	}
	return n
}

// parseCallConv parses an optional calling-convention string literal
// preceding `fun`, per parser_parse_callconv.
func parseCallConv(p *Parser) ast.CallConv {
	if p.Current().Kind != token.LIT_STRING {
		return ast.CConvDefault
	}
	tok := p.Next()
	switch tok.Text {
	case "cdecl":
		return ast.CConvCDecl
	case "stdcall":
		return ast.CConvStdCall
	case "fastcall":
		return ast.CConvFastCall
	default:
		p.bag.Errorf(diag.KindUnknownCallingConvention, tok.Loc, "unknown calling convention %q", tok.Text)
		return ast.CConvDefault
	}
}

// parseDeclFun parses an optional calling convention, `fun`, an identifier,
// a parenthesized parameter list (defaults permitted only once all
// following parameters also default, else DefaultParameterOrder), an
// optional `...` variadic marker, `:` return type, and a body (or `;` for
// an external declaration).
func parseDeclFun(p *Parser) ast.ID {
	cc := parseCallConv(p)
	tok := p.Expect(token.KW_FUN)
	n := p.reg.New(ast.KindDeclFun, tok)
	p.reg.At(n).CallConv = cc

	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	p.Expect(token.LPAREN)
	seenDefault := false
	if p.Current().Kind != token.RPAREN {
		for {
			if p.Current().Kind == token.ELLIPSIS {
				p.Next()
				p.reg.At(n).IsVariadic = true
				break
			}
			param := parseDeclParam(p)
			if param != ast.NoID {
				hasDefault := p.reg.At(param).Init != ast.NoID
				if seenDefault && !hasDefault {
					p.bag.Errorf(diag.KindDefaultParameterOrder, p.reg.At(param).Tok.Loc,
						"parameter without a default may not follow one with a default")
				}
				seenDefault = seenDefault || hasDefault
				p.reg.At(n).Params = append(p.reg.At(n).Params, param)
			}
			if !p.Consume(token.COMMA) {
				break
			}
		}
	}
	p.Expect(token.RPAREN)

	p.Expect(token.COLON)
	p.reg.At(n).ReturnTy = ParseType(p)

	if p.Consume(token.SEMI) {
		p.reg.At(n).IsExtern = true
		return n
	}
	p.reg.At(n).Body = parseStmtBlock(p)
	return n
}

// parseDeclStruct parses `struct` id `{` (var;)* `}`.
func parseDeclStruct(p *Parser) ast.ID {
	tok := p.Expect(token.KW_STRUCT)
	n := p.reg.New(ast.KindDeclStruct, tok)
	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	p.Expect(token.LBRACE)
	parseTerminatedList(p, n, token.RBRACE, func(p *Parser) ast.ID {
		m := parseStructField(p)
		if m != ast.NoID {
			p.reg.At(n).Members = append(p.reg.At(n).Members, m)
		}
		return ast.NoID // already added as a child above by the member path, not via parseTerminatedList
	})
	p.Expect(token.RBRACE)
	return n
}

// parseStructField parses `id : type ;`, the member shape struct and union
// declarations share.
func parseStructField(p *Parser) ast.ID {
	tok := p.Expect(token.IDENTIFIER)
	n := p.reg.New(ast.KindDeclVar, tok)
	p.reg.At(n).Name = tok.Text
	p.Expect(token.COLON)
	p.reg.At(n).VarType = ParseType(p)
	p.Expect(token.SEMI)
	return n
}

// parseDeclUnion parses `union` id `{` (var;)* `}`.
func parseDeclUnion(p *Parser) ast.ID {
	tok := p.Expect(token.KW_UNION)
	n := p.reg.New(ast.KindDeclUnion, tok)
	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	p.Expect(token.LBRACE)
	parseTerminatedList(p, n, token.RBRACE, func(p *Parser) ast.ID {
		m := parseStructField(p)
		if m != ast.NoID {
			p.reg.At(n).Members = append(p.reg.At(n).Members, m)
		}
		return ast.NoID
	})
	p.Expect(token.RBRACE)
	return n
}

// parseDeclEnum parses `enum` id `{` id (`,` id)* `}`.
func parseDeclEnum(p *Parser) ast.ID {
	tok := p.Expect(token.KW_ENUM)
	n := p.reg.New(ast.KindDeclEnum, tok)
	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	p.Expect(token.LBRACE)
	parseDelimitedList(p, n, token.COMMA, func(p *Parser) ast.ID {
		constTok := p.Expect(token.IDENTIFIER)
		c := p.reg.New(ast.KindDeclEnumConstant, constTok)
		p.reg.At(c).Name = constTok.Text
		p.reg.At(n).Members = append(p.reg.At(n).Members, c)
		return ast.NoID
	})
	p.Expect(token.RBRACE)
	return n
}

// parseDeclMod parses `mod` id `{` decl* `}`.
func parseDeclMod(p *Parser) ast.ID {
	tok := p.Expect(token.KW_MOD)
	n := p.reg.New(ast.KindDeclMod, tok)
	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text

	p.Expect(token.LBRACE)
	parseTerminatedList(p, n, token.RBRACE, func(p *Parser) ast.ID {
		d := ParseDecl(p)
		if d != ast.NoID {
			p.reg.At(n).ModDecls = append(p.reg.At(n).ModDecls, d)
		}
		return ast.NoID
	})
	p.Expect(token.RBRACE)
	return n
}

// parseDeclType parses a `type` alias: `type` id `=` type `;`.
func parseDeclType(p *Parser) ast.ID {
	tok := p.Expect(token.KW_TYPE)
	n := p.reg.New(ast.KindDeclType, tok)
	idTok := p.Expect(token.IDENTIFIER)
	p.reg.At(n).Name = idTok.Text
	p.Expect(token.ASSIGN)
	p.reg.At(n).VarType = ParseType(p)
	p.Expect(token.SEMI)
	return n
}
