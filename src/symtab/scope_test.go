package symtab

import (
	"testing"

	"tauc/src/ast"
)

func TestInsertAndLookup(t *testing.T) {
	root := NewScope(nil)
	if _, err := root.Insert("x", 1); err != nil {
		t.Fatalf("unexpected error inserting x: %v", err)
	}

	sym, ok := root.Lookup("x")
	if !ok || sym.Node != 1 {
		t.Fatalf("expected to find x bound to node 1, got %v ok=%v", sym, ok)
	}
}

func TestInsertCollisionPreservesOriginal(t *testing.T) {
	root := NewScope(nil)
	first, _ := root.Insert("x", 1)

	second, err := root.Insert("x", 2)
	if err == nil {
		t.Fatalf("expected collision error on duplicate insert")
	}
	if second != first {
		t.Fatalf("collision should return the pre-existing symbol, not a new one")
	}
	if sym, _ := root.Lookup("x"); sym.Node != 1 {
		t.Fatalf("original binding must survive a collision, got node %v", sym.Node)
	}
}

func TestLookupWalksAncestors(t *testing.T) {
	root := NewScope(nil)
	root.Insert("x", 1)
	child := NewScope(root)

	sym, ok := child.Lookup("x")
	if !ok || sym.Node != 1 {
		t.Fatalf("expected child scope lookup to find ancestor binding")
	}
	if _, ok := root.Lookup("y"); ok {
		t.Fatalf("lookup of undeclared name must fail")
	}
}

func TestShadowsOuter(t *testing.T) {
	root := NewScope(nil)
	root.Insert("x", 1)
	child := NewScope(root)
	child.Insert("x", 2)

	if !child.ShadowsOuter("x") {
		t.Fatalf("expected child's x to shadow root's x")
	}
	if root.ShadowsOuter("x") {
		t.Fatalf("root has no outer scope to shadow")
	}

	sym, _ := child.Lookup("x")
	if sym.Node != 2 {
		t.Fatalf("lookup from child must prefer the nearer binding")
	}
}

func TestScopeExpandsAndPreservesAllSymbols(t *testing.T) {
	root := NewScope(nil)
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, n := range names {
		if _, err := root.Insert(n, ast.ID(i+1)); err != nil {
			t.Fatalf("unexpected collision inserting %s: %v", n, err)
		}
	}
	if root.Size() != len(names) {
		t.Fatalf("expected size %d, got %d", len(names), root.Size())
	}
	for i, n := range names {
		sym, ok := root.Lookup(n)
		if !ok {
			t.Fatalf("expected to find %s after expansion", n)
		}
		if int(sym.Node) != i+1 {
			t.Fatalf("expected node %d for %s, got %d", i+1, n, sym.Node)
		}
	}
	if got := root.Symbols(); len(got) != len(names) {
		t.Fatalf("expected insertion-order slice of length %d, got %d", len(names), len(got))
	} else {
		for i, n := range names {
			if got[i].Name != n {
				t.Fatalf("expected insertion order %v, got %s at index %d", names, got[i].Name, i)
			}
		}
	}
}

func TestChildScopeLinksToParent(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)
	if child.Parent != root {
		t.Fatalf("expected child's Parent to be root")
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Fatalf("expected root.Children to contain child")
	}
}
