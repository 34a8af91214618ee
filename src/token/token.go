package token

import "tauc/src/diag"

// Token is a single lexeme with its source location. Tokens are owned by
// the caller's slice (typically one per lexer run) and require no separate
// freeing, unlike the teacher's registry-owned C tokens.
type Token struct {
	Kind Kind
	Loc  diag.Location
	Text string // Captured source text, escapes un-interpreted.
}

func (t Token) String() string {
	if len(t.Text) > 10 {
		return t.Kind.String() + " " + t.Text[:10] + "…"
	}
	return t.Kind.String() + " " + t.Text
}
