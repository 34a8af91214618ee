package parser

import (
	"strconv"
	"strings"

	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/token"
)

// elemKind tags a shunting-yard queue/stack element, grounded on
// original_source/inc/stages/parser/shyd.h's shyd_elem_kind_t.
type elemKind int

const (
	elemTerm elemKind = iota
	elemType
	elemOp
	elemParenOpen
	elemBracketOpen
)

// elem is one shunting-yard element: either a fully-parsed operand (Term or
// Type, carrying an ast.ID) or a pending operator (carrying an OpKind and,
// for Call, the argument count it was built with).
type elem struct {
	kind     elemKind
	tok      token.Token
	node     ast.ID
	op       ast.OpKind
	argCount int
}

// shydCtx is the shunting-yard state for one expression: two stacks plus
// the prev_term flag distinguishing unary from binary operator context,
// mirroring shyd_ctx_t.
type shydCtx struct {
	p        *Parser
	outQueue []elem
	opStack  []elem
	prevTerm bool
}

// ParseExpr parses one expression via the Shunting-Yard algorithm: elements
// are consumed left to right into postfix order, then an AST is rebuilt
// from that postfix queue by popping operand counts into operator nodes.
func ParseExpr(p *Parser) ast.ID {
	ctx := &shydCtx{p: p}
	ctx.parsePostfix()
	return ctx.buildTree()
}

func (c *shydCtx) push(e elem)      { c.opStack = append(c.opStack, e) }
func (c *shydCtx) popOp() elem      { e := c.opStack[len(c.opStack)-1]; c.opStack = c.opStack[:len(c.opStack)-1]; return e }
func (c *shydCtx) peekOp() (elem, bool) {
	if len(c.opStack) == 0 {
		return elem{}, false
	}
	return c.opStack[len(c.opStack)-1], true
}
func (c *shydCtx) emit(e elem) { c.outQueue = append(c.outQueue, e) }

func (c *shydCtx) hasOpenMarker() bool {
	for _, e := range c.opStack {
		if e.kind == elemParenOpen || e.kind == elemBracketOpen {
			return true
		}
	}
	return false
}

// flushForOp pops operators of higher precedence, or equal precedence when
// op is left-associative, from op_stack to out_queue before op itself is
// pushed, mirroring shyd_op_flush_for_op.
func (c *shydCtx) flushForOp(op ast.OpKind) {
	for {
		top, ok := c.peekOp()
		if !ok || top.kind != elemOp {
			return
		}
		if top.op.Precedence() > op.Precedence() ||
			(top.op.Precedence() == op.Precedence() && !op.IsRightAssoc()) {
			c.emit(c.popOp())
			continue
		}
		return
	}
}

// flushUntilMarker pops every operator into out_queue until a paren/bracket
// open marker is found, discarding the marker; reports whether one was
// found, mirroring shyd_op_flush_until_elem.
func (c *shydCtx) flushUntilMarker(kind elemKind) bool {
	for len(c.opStack) > 0 {
		top := c.popOp()
		if top.kind == kind {
			return true
		}
		c.emit(top)
	}
	return false
}

func (c *shydCtx) parsePostfix() {
	for c.parsePostfixNext() {
	}
	for len(c.opStack) > 0 {
		c.emit(c.popOp())
	}
}

func unaryOpFor(k token.Kind) (ast.OpKind, bool) {
	switch k {
	case token.PLUS:
		return ast.OpPos, true
	case token.MINUS:
		return ast.OpNeg, true
	case token.STAR:
		return ast.OpIndirection, true
	case token.AMP:
		return ast.OpAddr, true
	case token.BANG:
		return ast.OpLogicNot, true
	case token.TILDE:
		return ast.OpBitNot, true
	case token.PLUSPLUS:
		return ast.OpIncPre, true
	case token.MINUSMINUS:
		return ast.OpDecPre, true
	}
	return ast.OpUnknown, false
}

func binaryOpFor(k token.Kind) (ast.OpKind, bool) {
	switch k {
	case token.PLUS:
		return ast.OpAdd, true
	case token.MINUS:
		return ast.OpSub, true
	case token.STAR:
		return ast.OpMul, true
	case token.SLASH:
		return ast.OpDiv, true
	case token.PERCENT:
		return ast.OpMod, true
	case token.AMP:
		return ast.OpBitAnd, true
	case token.PIPE:
		return ast.OpBitOr, true
	case token.CARET:
		return ast.OpBitXor, true
	case token.LSHIFT:
		return ast.OpLShift, true
	case token.RSHIFT:
		return ast.OpRShift, true
	case token.AMPAMP:
		return ast.OpLogicAnd, true
	case token.PIPEPIPE:
		return ast.OpLogicOr, true
	case token.EQ:
		return ast.OpEq, true
	case token.NE:
		return ast.OpNe, true
	case token.LT:
		return ast.OpLt, true
	case token.LE:
		return ast.OpLe, true
	case token.GT:
		return ast.OpGt, true
	case token.GE:
		return ast.OpGe, true
	case token.ASSIGN:
		return ast.OpAssign, true
	case token.PLUSEQ:
		return ast.OpAddAssign, true
	case token.MINUSEQ:
		return ast.OpSubAssign, true
	case token.STAREQ:
		return ast.OpMulAssign, true
	case token.SLASHEQ:
		return ast.OpDivAssign, true
	case token.PERCENTEQ:
		return ast.OpModAssign, true
	case token.AMPEQ:
		return ast.OpBitAndAssign, true
	case token.PIPEEQ:
		return ast.OpBitOrAssign, true
	case token.CARETEQ:
		return ast.OpBitXorAssign, true
	case token.LSHIFTEQ:
		return ast.OpLShiftAssign, true
	case token.RSHIFTEQ:
		return ast.OpRShiftAssign, true
	case token.DOTDOT:
		return ast.OpRange, true
	case token.KW_IN:
		return ast.OpIn, true
	}
	return ast.OpUnknown, false
}

// parsePostfixNext consumes one element and reports whether the expression
// may continue.
func (c *shydCtx) parsePostfixNext() bool {
	p := c.p
	cur := p.Current()

	if !c.prevTerm {
		return c.parseTermPosition(cur)
	}
	return c.parseOpPosition(cur)
}

// parseTermPosition handles a position where a term or unary prefix
// operator is expected.
func (c *shydCtx) parseTermPosition(cur token.Token) bool {
	p := c.p
	switch {
	case cur.Kind == token.LIT_INT || cur.Kind == token.LIT_FLOAT || cur.Kind == token.LIT_STRING ||
		cur.Kind == token.LIT_CHAR || cur.Kind == token.LIT_BOOL || cur.Kind == token.LIT_NULL ||
		cur.Kind == token.IDENTIFIER:
		c.emit(elem{kind: elemTerm, node: parsePrimary(p)})
		c.prevTerm = true
		return true

	case cur.Kind == token.LPAREN:
		p.Next()
		c.push(elem{kind: elemParenOpen, tok: cur})
		c.prevTerm = false
		return true

	case cur.Kind == token.KW_SIZEOF || cur.Kind == token.KW_ALIGNOF || cur.Kind == token.KW_TYPEOF:
		c.emit(elem{kind: elemTerm, node: parseTypeQuery(p)})
		c.prevTerm = true
		return true
	}

	if op, ok := unaryOpFor(cur.Kind); ok {
		p.Next()
		c.push(elem{kind: elemOp, tok: cur, op: op})
		c.prevTerm = false
		return true
	}

	// Not a term-starting token: the expression is empty at this position.
	// The caller (a higher-level production) reports MissingUnaryArgument
	// if it required a non-empty expression; here we simply stop.
	return false
}

// parseOpPosition handles a position where a binary/postfix operator, or
// the end of the expression, is expected.
func (c *shydCtx) parseOpPosition(cur token.Token) bool {
	p := c.p
	switch cur.Kind {
	case token.RPAREN:
		if !c.hasOpenMarker() {
			return false
		}
		c.flushUntilMarker(elemParenOpen)
		p.Next()
		c.prevTerm = true
		return true

	case token.KW_AS:
		p.Next()
		// `as Type` completes immediately once the type is parsed (the type
		// is not itself subject to further shunting-yard ordering), so flush
		// competing pending operators first, then emit type and OpCast
		// straight to the queue rather than routing OpCast through op_stack.
		c.flushForOp(ast.OpCast)
		typ := ParseType(p)
		c.emit(elem{kind: elemType, node: typ})
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpCast})
		c.prevTerm = true
		return true

	case token.LBRACKET:
		p.Next()
		c.flushForOp(ast.OpSubscript)
		idx := ParseExpr(p)
		if !p.Consume(token.RBRACKET) {
			p.bag.Errorf(diag.KindMissingBracket, p.Current().Loc, "missing closing ']' in subscript")
		}
		c.emit(elem{kind: elemTerm, node: idx})
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpSubscript})
		c.prevTerm = true
		return true

	case token.LPAREN:
		argc := c.parseCallArgs(p)
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpCall, argCount: argc})
		c.prevTerm = true
		return true

	case token.DOT, token.STARDOT, token.QDOT:
		p.Next()
		memberTok := p.Expect(token.IDENTIFIER)
		memberNode := p.reg.New(ast.KindExprId, memberTok)
		p.reg.At(memberNode).Name = memberTok.Text
		c.emit(elem{kind: elemTerm, node: memberNode})
		var op ast.OpKind
		switch cur.Kind {
		case token.DOT:
			op = ast.OpAccess
		case token.STARDOT:
			op = ast.OpIndAccess
		case token.QDOT:
			op = ast.OpNullSafeAccess
		}
		c.emit(elem{kind: elemOp, tok: cur, op: op})
		c.prevTerm = true
		return true

	case token.BANG:
		p.Next()
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpUnwrapSafe})
		c.prevTerm = true
		return true

	case token.PLUSPLUS:
		p.Next()
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpIncPost})
		c.prevTerm = true
		return true

	case token.MINUSMINUS:
		p.Next()
		c.emit(elem{kind: elemOp, tok: cur, op: ast.OpDecPost})
		c.prevTerm = true
		return true
	}

	if op, ok := binaryOpFor(cur.Kind); ok {
		p.Next()
		c.flushForOp(op)
		c.push(elem{kind: elemOp, tok: cur, op: op})
		c.prevTerm = false
		return true
	}

	return false
}

// parseCallArgs parses `(` arg, arg, ... `)`, pushing each parsed argument
// straight onto the output queue as a Term (arguments are independent
// subexpressions; they do not participate in the enclosing expression's
// operator ordering). Returns the argument count.
func (c *shydCtx) parseCallArgs(p *Parser) int {
	p.Expect(token.LPAREN)
	n := 0
	if p.Current().Kind != token.RPAREN {
		for {
			arg := ParseExpr(p)
			c.emit(elem{kind: elemTerm, node: arg})
			n++
			if !p.Consume(token.COMMA) {
				break
			}
		}
	}
	p.Expect(token.RPAREN)
	return n
}

// intLitSuffixes lists the integer-literal type suffixes the lexer
// recognizes (src/lexer/lexer.go's intSuffixes). None of these strings is
// itself a suffix of another, so the order of a HasSuffix scan over them
// does not matter.
var intLitSuffixes = []string{"isize", "usize", "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64"}

// splitIntSuffix strips a recognized suffix from text, returning the
// remaining digits (with any radix prefix still attached) and the suffix
// found, or "" if text carries none.
func splitIntSuffix(text string) (string, string) {
	for _, s := range intLitSuffixes {
		if strings.HasSuffix(text, s) {
			return text[:len(text)-len(s)], s
		}
	}
	return text, ""
}

// parseIntLiteral decodes a LIT_INT token's text into its 64-bit value and
// suffix, per spec.md section 4.1's radix-prefix and suffix grammar. A
// value too wide for 64 bits (lexable but unrepresentable) clamps to
// all-ones so the sema overflow check still flags it, rather than
// panicking on a token the lexer already accepted.
func parseIntLiteral(text string) (int64, string) {
	digits, suffix := splitIntSuffix(text)
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0o"), strings.HasPrefix(digits, "0O"):
		base, digits = 8, digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		v = ^uint64(0)
	}
	return int64(v), suffix
}

// parsePrimary parses a single literal or identifier term.
func parsePrimary(p *Parser) ast.ID {
	tok := p.Next()
	switch tok.Kind {
	case token.LIT_INT:
		n := p.reg.New(ast.KindExprLitInt, tok)
		v, suffix := parseIntLiteral(tok.Text)
		p.reg.At(n).IntVal = v
		p.reg.At(n).LitSuffix = suffix
		return n
	case token.LIT_FLOAT:
		return p.reg.New(ast.KindExprLitFloat, tok)
	case token.LIT_STRING:
		n := p.reg.New(ast.KindExprLitString, tok)
		p.reg.At(n).StringVal = tok.Text
		return n
	case token.LIT_CHAR:
		return p.reg.New(ast.KindExprLitChar, tok)
	case token.LIT_BOOL:
		n := p.reg.New(ast.KindExprLitBool, tok)
		p.reg.At(n).BoolVal = tok.Text == "true"
		return n
	case token.LIT_NULL:
		return p.reg.New(ast.KindExprLitNull, tok)
	default: // IDENTIFIER
		n := p.reg.New(ast.KindExprId, tok)
		p.reg.At(n).Name = tok.Text
		return n
	}
}

// parseTypeQuery parses `sizeof`/`alignof`/`typeof` `(` type `)`.
func parseTypeQuery(p *Parser) ast.ID {
	tok := p.Next()
	var kind ast.Kind
	var op ast.OpKind
	switch tok.Kind {
	case token.KW_SIZEOF:
		kind, op = ast.KindExprSizeof, ast.OpSizeof
	case token.KW_ALIGNOF:
		kind, op = ast.KindExprAlignof, ast.OpAlignof
	default:
		kind, op = ast.KindExprTypeof, ast.OpTypeof
	}
	n := p.reg.New(kind, tok)
	p.reg.At(n).Op = op
	p.Expect(token.LPAREN)
	typ := ParseType(p)
	if typ != ast.NoID {
		p.reg.AddChild(n, typ)
	}
	p.Expect(token.RPAREN)
	return n
}

func isUnaryOpKind(k ast.OpKind) bool {
	switch k {
	case ast.OpPos, ast.OpNeg, ast.OpIndirection, ast.OpAddr, ast.OpLogicNot, ast.OpBitNot,
		ast.OpIncPre, ast.OpDecPre, ast.OpIncPost, ast.OpDecPost, ast.OpUnwrapSafe:
		return true
	}
	return false
}

// buildTree rebuilds the expression tree from c.outQueue by popping operand
// counts into operator nodes, mirroring shyd_ast_op/shyd_ast_term et al.
func (c *shydCtx) buildTree() ast.ID {
	var stack []ast.ID
	pop := func() ast.ID {
		if len(stack) == 0 {
			return ast.NoID
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, e := range c.outQueue {
		switch e.kind {
		case elemTerm, elemType:
			stack = append(stack, e.node)
			continue
		}

		switch {
		case e.op == ast.OpCast:
			typ := pop()
			operand := pop()
			n := c.p.reg.New(ast.KindExprCast, e.tok)
			c.p.reg.At(n).Op = ast.OpCast
			c.p.reg.AddChild(n, operand)
			c.p.reg.AddChild(n, typ)
			stack = append(stack, n)

		case e.op == ast.OpCall:
			args := make([]ast.ID, e.argCount)
			for i := e.argCount - 1; i >= 0; i-- {
				args[i] = pop()
			}
			callee := pop()
			n := c.p.reg.New(ast.KindExprCall, e.tok)
			c.p.reg.At(n).Op = ast.OpCall
			c.p.reg.AddChild(n, callee)
			for _, a := range args {
				c.p.reg.AddChild(n, a)
			}
			stack = append(stack, n)

		case e.op == ast.OpSubscript:
			idx := pop()
			owner := pop()
			n := c.p.reg.New(ast.KindExprSubscript, e.tok)
			c.p.reg.At(n).Op = ast.OpSubscript
			c.p.reg.AddChild(n, owner)
			c.p.reg.AddChild(n, idx)
			stack = append(stack, n)

		case e.op == ast.OpAccess || e.op == ast.OpIndAccess || e.op == ast.OpNullSafeAccess:
			member := pop()
			owner := pop()
			tok := e.tok
			if member != ast.NoID {
				tok = c.p.reg.At(member).Tok
			}
			n := c.p.reg.New(ast.KindExprAccess, tok)
			c.p.reg.At(n).Op = e.op
			if member != ast.NoID {
				c.p.reg.At(n).Member = c.p.reg.At(member).Name
			}
			c.p.reg.AddChild(n, owner)
			stack = append(stack, n)

		case isUnaryOpKind(e.op):
			operand := pop()
			kind := ast.KindExprOpUn
			if e.op == ast.OpUnwrapSafe {
				kind = ast.KindExprUnwrap
			}
			n := c.p.reg.New(kind, e.tok)
			c.p.reg.At(n).Op = e.op
			c.p.reg.AddChild(n, operand)
			stack = append(stack, n)

		default: // binary
			rhs := pop()
			lhs := pop()
			n := c.p.reg.New(ast.KindExprOpBin, e.tok)
			c.p.reg.At(n).Op = e.op
			c.p.reg.AddChild(n, lhs)
			c.p.reg.AddChild(n, rhs)
			stack = append(stack, n)
		}
	}

	return pop()
}
