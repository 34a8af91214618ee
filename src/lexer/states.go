package lexer

import (
	"strings"

	"tauc/src/diag"
	"tauc/src/token"
)

const maxIdentifierLength = 255

// lexGlobal is the default state: whitespace and comments are skipped
// silently, then the leading character dispatches to a more specific
// scan, mirroring frontend/lexerStates.go's lexGlobal switch.
func lexGlobal(l *lexer) stateFunc {
	for {
		r := l.next()
		switch {
		case r == eof:
			l.emit(token.EOF)
			return nil
		case r == '\n':
			l.ignore()
		case isSpace(r):
			l.ignore()
		case r == '/' && l.peek() == '/':
			for c := l.next(); c != '\n' && c != eof; c = l.next() {
			}
			l.ignore()
		case r == '/' && l.peek() == '*':
			l.next()
			return lexBlockComment
		case isAlpha(r):
			return lexWord
		case isDigit(r):
			return lexNumber
		case r == '"':
			l.ignore()
			return lexString
		case r == '\'':
			l.ignore()
			return lexChar
		default:
			l.backup()
			return lexPunctuation
		}
	}
}

// lexBlockComment skips a non-nesting /* ... */ comment.
func lexBlockComment(l *lexer) stateFunc {
	for {
		r := l.next()
		if r == eof {
			l.ignore()
			return lexGlobal
		}
		if r == '*' && l.peek() == '/' {
			l.next()
			l.ignore()
			return lexGlobal
		}
	}
}

// lexWord scans an identifier or keyword, capped at 255 bytes.
func lexWord(l *lexer) stateFunc {
	for {
		r := l.next()
		if !isAlpha(r) && !isDigit(r) {
			l.backup()
			break
		}
	}
	word := l.input[l.start:l.pos]
	if len(word) > maxIdentifierLength {
		l.errorf(diag.KindIdentifierTooLong, "identifier %q exceeds %d bytes", word, maxIdentifierLength)
		l.emit(token.IDENTIFIER)
		return lexGlobal
	}
	if kind, ok := token.Lookup(word); ok {
		l.emit(kind)
	} else {
		l.emit(token.IDENTIFIER)
	}
	return lexGlobal
}

// lexNumber scans an integer or float literal, including 0x/0b/0o
// prefixed integers and an optional exponent, ending with a recognized
// suffix if present.
func lexNumber(l *lexer) stateFunc {
	// l.start points at the already-consumed leading digit.
	if l.input[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'b' || l.peek() == 'o') {
		base := l.next()
		digitBegin := l.pos
		switch base {
		case 'x':
			l.acceptRun("0123456789abcdefABCDEF")
		case 'b':
			l.acceptRun("01")
		case 'o':
			l.acceptRun("01234567")
		}
		if l.pos == digitBegin {
			l.errorf(diag.KindIllFormedInteger, "no digits after radix prefix")
		}
		return lexSuffix(l, token.LIT_INT)
	}

	l.acceptRun("0123456789")
	isFloat := false
	if l.peek() == '.' {
		// Only treat '.' as a decimal point if followed by a digit; this
		// keeps range operator '..' and member access out of number scans.
		save := l.pos
		l.next()
		if isDigit(l.peek()) {
			isFloat = true
			l.acceptRun("0123456789")
		} else {
			l.pos = save
		}
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		save := l.pos
		l.next()
		l.accept("+-")
		digitBegin := l.pos
		l.acceptRun("0123456789")
		if l.pos == digitBegin {
			l.pos = save // Not actually an exponent.
		} else {
			isFloat = true
		}
	}
	if isFloat {
		return lexSuffix(l, token.LIT_FLOAT)
	}
	return lexSuffix(l, token.LIT_INT)
}

// lexSuffix consumes a trailing numeric-literal suffix, if any, validating
// it against the recognized set.
func lexSuffix(l *lexer, kind token.Kind) stateFunc {
	if isAlpha(l.peek()) {
		suffixBegin := l.pos
		for isAlpha(l.peek()) || isDigit(l.peek()) {
			l.next()
		}
		suffix := l.input[suffixBegin:l.pos]
		var ok bool
		allowed := intSuffixes
		if kind == token.LIT_FLOAT {
			allowed = floatSuffixes
		}
		for _, s := range allowed {
			if suffix == s {
				ok = true
			}
		}
		if !ok {
			l.errorf(diag.KindInvalidIntegerSuffix, "invalid numeric literal suffix %q", suffix)
		}
	}
	l.emit(kind)
	return lexGlobal
}

// lexString scans a "..." literal, processing the escape set spec.md
// section 4.1 enumerates.
func lexString(l *lexer) stateFunc {
	for {
		r := l.next()
		switch r {
		case eof:
			l.errorf(diag.KindMissingDoubleQuote, "unterminated string literal")
			l.emit(token.LIT_STRING)
			return lexGlobal
		case '"':
			l.backup()
			l.emit(token.LIT_STRING)
			l.next()
			l.ignore()
			return lexGlobal
		case '\\':
			lexEscape(l)
		}
	}
}

// lexChar scans a '...' literal: exactly one code unit after escape
// processing.
func lexChar(l *lexer) stateFunc {
	r := l.next()
	if r == '\'' {
		l.errorf(diag.KindEmptyCharacter, "empty character literal")
		l.backup()
		l.emit(token.LIT_CHAR)
		l.next()
		l.ignore()
		return lexGlobal
	}
	if r == '\\' {
		lexEscape(l)
	}
	if l.peek() != '\'' {
		l.errorf(diag.KindMissingSingleQuote, "missing closing single quote")
		l.emit(token.LIT_CHAR)
		return lexGlobal
	}
	l.emit(token.LIT_CHAR)
	l.next()
	l.ignore()
	return lexGlobal
}

// lexEscape consumes an escape sequence starting just after the backslash
// already consumed by the caller.
func lexEscape(l *lexer) {
	r := l.next()
	switch r {
	case 'n', 'r', 't', 'v', 'f', 'a', 'b', '\\', '\'', '"', '0':
		return
	case 'x':
		digitBegin := l.pos
		for n := 0; n < 2 && isHexDigit(l.peek()); n++ {
			l.next()
		}
		n := l.pos - digitBegin
		if n == 0 {
			l.errorf(diag.KindMissingHexDigits, "\\x escape requires at least one hex digit")
			return
		}
		if isHexDigit(l.peek()) {
			// A third hex digit present: too many.
			l.next()
			l.errorf(diag.KindTooManyHexDigits, "\\x escape accepts at most two hex digits")
		}
	default:
		l.errorf(diag.KindUnknownEscapeSequence, "unknown escape sequence \\%c", r)
	}
}

// multiCharOps lists every multi-character punctuation form, longest
// first so the longest-match rule in spec.md section 4.1 is satisfied by
// linear scan.
var multiCharOps = []struct {
	text string
	kind token.Kind
}{
	{"<<=", token.LSHIFTEQ}, {">>=", token.RSHIFTEQ}, {"...", token.ELLIPSIS},
	{"==", token.EQ}, {"!=", token.NE}, {"<=", token.LE}, {">=", token.GE},
	{"<<", token.LSHIFT}, {">>", token.RSHIFT}, {"&&", token.AMPAMP}, {"||", token.PIPEPIPE},
	{"++", token.PLUSPLUS}, {"--", token.MINUSMINUS},
	{"+=", token.PLUSEQ}, {"-=", token.MINUSEQ}, {"*=", token.STAREQ}, {"/=", token.SLASHEQ},
	{"%=", token.PERCENTEQ}, {"&=", token.AMPEQ}, {"|=", token.PIPEEQ}, {"^=", token.CARETEQ},
	{"..", token.DOTDOT}, {"?.", token.QDOT}, {"*.", token.STARDOT},
}

var singleCharOps = map[rune]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACKET, ']': token.RBRACKET, ',': token.COMMA, ';': token.SEMI,
	':': token.COLON, '?': token.QUESTION, '.': token.DOT, '&': token.AMP,
	'|': token.PIPE, '^': token.CARET, '~': token.TILDE, '!': token.BANG,
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH,
	'%': token.PERCENT, '<': token.LT, '>': token.GT, '=': token.ASSIGN,
}

// lexPunctuation scans the longest recognized multi-character operator
// starting here, falling back to a single-character token.
func lexPunctuation(l *lexer) stateFunc {
	rest := l.input[l.pos:]
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op.text) {
			for range op.text {
				l.next()
			}
			l.emit(op.kind)
			return lexGlobal
		}
	}
	r := l.next()
	if kind, ok := singleCharOps[r]; ok {
		l.emit(kind)
		return lexGlobal
	}
	l.errorf(diag.KindUnexpectedCharacter, "unexpected character %q", r)
	l.emit(token.ILLEGAL)
	return lexGlobal
}
