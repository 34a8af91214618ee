package ast

import (
	"testing"

	"tauc/src/token"
)

func TestRegistryAllocatesStableIDs(t *testing.T) {
	r := NewRegistry()
	a := r.New(KindExprLitInt, token.Token{Kind: token.LIT_INT, Text: "1"})
	b := r.New(KindExprLitInt, token.Token{Kind: token.LIT_INT, Text: "2"})

	if a == b {
		t.Fatalf("expected distinct ids, got %d and %d", a, b)
	}
	if r.At(a).Tok.Text != "1" || r.At(b).Tok.Text != "2" {
		t.Fatalf("node payload did not round-trip through registry")
	}
}

func TestRegistryAddChild(t *testing.T) {
	r := NewRegistry()
	parent := r.New(KindStmtBlock, token.Token{})
	child1 := r.New(KindStmtExpr, token.Token{})
	child2 := r.New(KindStmtExpr, token.Token{})

	r.AddChild(parent, child1)
	r.AddChild(parent, child2)

	children := r.At(parent).Children
	if len(children) != 2 || children[0] != child1 || children[1] != child2 {
		t.Fatalf("unexpected children list: %v", children)
	}
}

func TestNoIDIsZeroValue(t *testing.T) {
	var id ID
	if id != NoID {
		t.Fatalf("zero value of ID must equal NoID")
	}
}
