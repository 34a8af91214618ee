// Package lexer tokenizes tau source text. The state-machine shape (a
// stateFunc returning the next stateFunc, a rune cursor with next/backup/
// peek/accept) is Rob Pike's lexer design as used by the teacher's
// frontend/lexer.go and frontend/lexerStates.go, adapted to run
// synchronously (append to a caller-owned slice) instead of over a
// goroutine+channel pair, since spec.md section 4.1 calls for a lexer that
// "appends tokens to a caller-supplied vector" rather than a producer
// feeding a concurrent parser.
package lexer

import (
	"strings"
	"unicode/utf8"

	"tauc/src/diag"
	"tauc/src/token"
)

const eof = rune(-1)

// stateFunc is one state of the lexer. It returns the next state, or nil
// when scanning is complete.
type stateFunc func(*lexer) stateFunc

// lexer scans src rune by rune, tracking byte offset, row and column.
type lexer struct {
	path  string
	input string
	start int // Byte offset of the start of the current token.
	pos   int // Current byte offset.
	width int // Width in bytes of the last rune returned by next.

	row         int // Current row, 1-indexed.
	col         int // Current column, 1-indexed.
	startRow    int
	startCol    int

	out  *[]token.Token
	bag  *diag.Bag
}

// Lex tokenizes src, appending every recognized token (including a
// terminal EOF token) to *out and any lexical errors to bag. Tokens
// appear in source order; errors are reported in the order discovered.
func Lex(path, src string, out *[]token.Token, bag *diag.Bag) {
	l := &lexer{path: path, input: src, row: 1, col: 1, startRow: 1, startCol: 1, out: out, bag: bag}
	for state := stateFunc(lexGlobal); state != nil; {
		state = state(l)
	}
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	l.width = w
	if r == '\n' {
		l.row++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) backup() {
	if l.pos > l.start && l.width > 0 {
		l.pos -= l.width
		if l.input[l.pos] == '\n' {
			l.row--
		} else {
			l.col--
		}
	}
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

func (l *lexer) acceptRun(valid string) {
	for strings.ContainsRune(valid, l.next()) {
	}
	l.backup()
}

func (l *lexer) ignore() {
	l.start = l.pos
	l.startRow = l.row
	l.startCol = l.col
}

// loc builds the Location for the token currently being scanned.
func (l *lexer) loc() diag.Location {
	return diag.Location{
		Path: l.path, Source: l.input, SourceBegin: l.start,
		Row: l.startRow, Col: l.startCol, Length: l.pos - l.start,
	}
}

// emit appends a token of kind k spanning [start, pos) to the output slice.
func (l *lexer) emit(k token.Kind) {
	loc := l.loc()
	if loc.Length < 1 {
		loc.Length = 1
	}
	*l.out = append(*l.out, token.Token{Kind: k, Loc: loc, Text: l.input[l.start:l.pos]})
	l.ignore()
}

// errorf records a lexical diagnostic at the current token's location.
func (l *lexer) errorf(kind diag.Kind, format string, args ...interface{}) {
	l.bag.Errorf(kind, l.loc(), format, args...)
}

// ----------------------------
// ----- helper predicates -----
// ----------------------------

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\f' || r == '\r' || r == '\v'
}

// Suffix literals recognized by lexSuffix, per spec.md section 4.1.
var intSuffixes = []string{"i8", "i16", "i32", "i64", "isize", "u8", "u16", "u32", "u64", "usize"}
var floatSuffixes = []string{"f32", "f64"}
