package parser

import (
	"tauc/src/ast"
	"tauc/src/token"
)

// ParseProgram parses a whole compilation unit: a sequence of top-level
// declarations wrapped in a single KindProg root.
func ParseProgram(p *Parser) ast.ID {
	n := p.reg.New(ast.KindProg, p.Current())
	parseTerminatedList(p, n, token.EOF, func(p *Parser) ast.ID {
		return ParseDecl(p)
	})
	return n
}
