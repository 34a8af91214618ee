package parser

import (
	"tauc/src/ast"
	"tauc/src/token"
)

// ParseStmt dispatches on the leading token, per spec.md section 4.2's
// parse_stmt contract: if|for|while|do|loop|break|continue|return|defer|
// {…}|expr;
func ParseStmt(p *Parser) ast.ID {
	switch p.Current().Kind {
	case token.LBRACE:
		return parseStmtBlock(p)
	case token.KW_IF:
		return parseStmtIf(p)
	case token.KW_FOR:
		return parseStmtFor(p)
	case token.KW_WHILE:
		return parseStmtWhile(p)
	case token.KW_DO:
		return parseStmtDoWhile(p)
	case token.KW_LOOP:
		return parseStmtLoop(p)
	case token.KW_BREAK:
		return parseStmtBreak(p)
	case token.KW_CONTINUE:
		return parseStmtContinue(p)
	case token.KW_RETURN:
		return parseStmtReturn(p)
	case token.KW_DEFER:
		return parseStmtDefer(p)
	case token.KW_VAR:
		n := parseDeclVar(p)
		return wrapExprStmt(p, n, false)
	default:
		expr := ParseExpr(p)
		return wrapExprStmt(p, expr, true)
	}
}

// wrapExprStmt wraps a parsed expression or var-decl in a KindStmtExpr,
// consuming the trailing `;` unless the inner production already did (var
// declarations terminate themselves).
func wrapExprStmt(p *Parser, inner ast.ID, needsSemi bool) ast.ID {
	n := p.reg.New(ast.KindStmtExpr, p.Current())
	if inner != ast.NoID {
		p.reg.AddChild(n, inner)
	}
	if needsSemi {
		p.Expect(token.SEMI)
	}
	return n
}

// parseStmtBlock parses `{` stmt* `}`, pushing a new lexical scope per
// spec.md section 4.5 ("every block statement pushes a scope") — scope
// construction itself is the name-resolution pass's responsibility; the
// parser only shapes the tree.
func parseStmtBlock(p *Parser) ast.ID {
	tok := p.Expect(token.LBRACE)
	n := p.reg.New(ast.KindStmtBlock, tok)
	parseTerminatedList(p, n, token.RBRACE, func(p *Parser) ast.ID {
		if p.Current().Kind == token.EOF {
			return ast.NoID
		}
		return statementOrDecl(p)
	})
	p.Expect(token.RBRACE)
	return n
}

// statementOrDecl lets a block body mix declarations and statements, since
// tau permits local `var`/`fun`/`struct` declarations inside a block.
func statementOrDecl(p *Parser) ast.ID {
	switch p.Current().Kind {
	case token.KW_FUN, token.KW_STRUCT, token.KW_UNION, token.KW_ENUM, token.KW_MOD, token.KW_TYPE:
		return ParseDecl(p)
	default:
		return ParseStmt(p)
	}
}

// parseStmtIf parses `if` expr `then` stmt (`else` stmt)?.
func parseStmtIf(p *Parser) ast.ID {
	tok := p.Expect(token.KW_IF)
	n := p.reg.New(ast.KindStmtIf, tok)
	p.reg.At(n).Cond = ParseExpr(p)
	p.Expect(token.KW_THEN)
	p.reg.At(n).Then = ParseStmt(p)
	if p.Consume(token.KW_ELSE) {
		p.reg.At(n).Else = ParseStmt(p)
	}
	return n
}

// parseStmtForVar parses the for-loop variable: a bare identifier, or an
// identifier with an explicit type annotation, per
// parser_parse_stmt_for_var.
func parseStmtForVar(p *Parser) ast.ID {
	tok := p.Expect(token.IDENTIFIER)
	n := p.reg.New(ast.KindDeclVar, tok)
	p.reg.At(n).Name = tok.Text
	if p.Consume(token.COLON) {
		p.reg.At(n).VarType = ParseType(p)
	}
	return n
}

// parseStmtFor parses `for` loopvar `in` expr `do` stmt.
func parseStmtFor(p *Parser) ast.ID {
	tok := p.Expect(token.KW_FOR)
	n := p.reg.New(ast.KindStmtFor, tok)
	p.reg.At(n).ForVar = parseStmtForVar(p)
	p.Expect(token.KW_IN)
	p.reg.At(n).ForIter = ParseExpr(p)
	p.Expect(token.KW_DO)
	p.reg.At(n).Then = ParseStmt(p)
	return n
}

// parseStmtWhile parses `while` expr `do` stmt.
func parseStmtWhile(p *Parser) ast.ID {
	tok := p.Expect(token.KW_WHILE)
	n := p.reg.New(ast.KindStmtWhile, tok)
	p.reg.At(n).Cond = ParseExpr(p)
	p.Expect(token.KW_DO)
	p.reg.At(n).Then = ParseStmt(p)
	return n
}

// parseStmtDoWhile parses `do` stmt `while` expr `;`.
func parseStmtDoWhile(p *Parser) ast.ID {
	tok := p.Expect(token.KW_DO)
	n := p.reg.New(ast.KindStmtDoWhile, tok)
	p.reg.At(n).Then = ParseStmt(p)
	p.Expect(token.KW_WHILE)
	p.reg.At(n).Cond = ParseExpr(p)
	p.Expect(token.SEMI)
	return n
}

// parseStmtLoop parses `loop` stmt.
func parseStmtLoop(p *Parser) ast.ID {
	tok := p.Expect(token.KW_LOOP)
	n := p.reg.New(ast.KindStmtLoop, tok)
	p.reg.At(n).Then = ParseStmt(p)
	return n
}

func parseStmtBreak(p *Parser) ast.ID {
	tok := p.Expect(token.KW_BREAK)
	n := p.reg.New(ast.KindStmtBreak, tok)
	p.Expect(token.SEMI)
	return n
}

func parseStmtContinue(p *Parser) ast.ID {
	tok := p.Expect(token.KW_CONTINUE)
	n := p.reg.New(ast.KindStmtContinue, tok)
	p.Expect(token.SEMI)
	return n
}

// parseStmtReturn parses `return` expr? `;`.
func parseStmtReturn(p *Parser) ast.ID {
	tok := p.Expect(token.KW_RETURN)
	n := p.reg.New(ast.KindStmtReturn, tok)
	if p.Current().Kind != token.SEMI {
		p.reg.At(n).ReturnOf = ParseExpr(p)
	}
	p.Expect(token.SEMI)
	return n
}

// parseStmtDefer parses `defer` stmt.
func parseStmtDefer(p *Parser) ast.ID {
	tok := p.Expect(token.KW_DEFER)
	n := p.reg.New(ast.KindStmtDefer, tok)
	p.reg.At(n).DeferOf = ParseStmt(p)
	return n
}
