package lexer

import (
	"testing"

	"tauc/src/diag"
	"tauc/src/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	var toks []token.Token
	bag := diag.NewBag(0)
	Lex("test.tau", src, &toks, bag)
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	toks, bag := lex(t, "fun main is_ok")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{token.KW_FUN, token.IDENTIFIER, token.IDENTIFIER, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexMultiCharOperators(t *testing.T) {
	toks, bag := lex(t, "a <<= b ... c ?. d")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{token.IDENTIFIER, token.LSHIFTEQ, token.IDENTIFIER, token.ELLIPSIS,
		token.IDENTIFIER, token.QDOT, token.IDENTIFIER, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"123", token.LIT_INT},
		{"0x1F", token.LIT_INT},
		{"0b101", token.LIT_INT},
		{"0o17", token.LIT_INT},
		{"1.5", token.LIT_FLOAT},
		{"1.5e10", token.LIT_FLOAT},
		{"10i64", token.LIT_INT},
		{"1.0f32", token.LIT_FLOAT},
	}
	for _, c := range cases {
		toks, bag := lex(t, c.src)
		if bag.HasErrors() {
			t.Errorf("%q: unexpected errors: %v", c.src, bag.Items())
			continue
		}
		if len(toks) < 1 || toks[0].Kind != c.kind {
			t.Errorf("%q: got %v, want first kind %s", c.src, toks, c.kind)
		}
	}
}

func TestLexInvalidSuffix(t *testing.T) {
	_, bag := lex(t, "10bogus")
	if !bag.HasErrors() {
		t.Fatalf("expected InvalidIntegerSuffix error")
	}
}

func TestLexIdentifierTooLong(t *testing.T) {
	long := "a"
	for i := 0; i < 300; i++ {
		long += "a"
	}
	_, bag := lex(t, long)
	if !bag.HasErrors() {
		t.Fatalf("expected IdentifierTooLong error")
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, bag := lex(t, `"a\nb\x1Fz"`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if toks[0].Kind != token.LIT_STRING {
		t.Fatalf("got %v", toks)
	}
}

func TestLexStringUnterminated(t *testing.T) {
	_, bag := lex(t, `"unterminated`)
	if !bag.HasErrors() {
		t.Fatalf("expected MissingDoubleQuote error")
	}
}

func TestLexCharEscapeHexBounds(t *testing.T) {
	if _, bag := lex(t, `'\x1'`); bag.HasErrors() {
		t.Errorf("single hex digit should be accepted: %v", bag.Items())
	}
	if _, bag := lex(t, `'\x1F'`); bag.HasErrors() {
		t.Errorf("two hex digits should be accepted: %v", bag.Items())
	}
	if _, bag := lex(t, `'\x'`); !bag.HasErrors() {
		t.Errorf("missing hex digits should error")
	}
	if _, bag := lex(t, `'\x1FF'`); !bag.HasErrors() {
		t.Errorf("three hex digits should error")
	}
}

func TestLexEmptyCharacter(t *testing.T) {
	_, bag := lex(t, "''")
	if !bag.HasErrors() {
		t.Fatalf("expected EmptyCharacter error")
	}
}

func TestLexComments(t *testing.T) {
	toks, bag := lex(t, "a // line comment\nb /* block\ncomment */ c")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	want := []token.Kind{token.IDENTIFIER, token.IDENTIFIER, token.IDENTIFIER, token.EOF}
	if got := kinds(toks); len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexRoundTripsSourceOrder(t *testing.T) {
	src := "var x = 1 + 2 * y"
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	for i := 1; i < len(toks); i++ {
		if toks[i].Loc.SourceBegin < toks[i-1].Loc.SourceBegin {
			t.Fatalf("tokens out of source order at %d", i)
		}
	}
}
