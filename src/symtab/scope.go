// Package symtab implements tau's lexical scope tree: nested,
// insertion-ordered hash-bucket symbol tables, grounded on
// original_source/inc/symtable.h's symbol_s/symtable_s layout (parent,
// children, buckets, size, capacity) translated into idiomatic Go, with
// child-scope bookkeeping borrowed from the teacher pack's LLVM-targeting
// sokoide-llvm5 Scope type.
package symtab

import (
	"fmt"
	"hash/fnv"

	"tauc/src/ast"
)

// initialBucketCount and loadFactor mirror symtable_init's starting
// capacity and the expansion trigger symtable_expand implements in C; here
// expansion is folded into Insert instead of a separate exported call.
const (
	initialBucketCount = 8
	loadFactor         = 0.75
)

// Symbol binds a name to the AST node that declares it, within the Scope
// it was inserted into. next chains symbols that collide in the same
// bucket, mirroring symbol_s.next in original_source/inc/symtable.h.
type Symbol struct {
	Name  string
	Node  ast.ID
	Scope *Scope

	next *Symbol
}

// Scope is one node of the scope tree: a compilation unit, module, function
// body, or block. Symbols hash into buckets; order records insertion order
// so callers can enumerate a scope's declarations the way they were
// written, per spec.md's "insertion-ordered" requirement.
type Scope struct {
	Parent   *Scope
	Children []*Scope

	buckets []*Symbol
	size    int
	order   []*Symbol
}

// NewScope creates a scope as a child of parent. Passing a nil parent
// creates the root scope for a compilation unit.
func NewScope(parent *Scope) *Scope {
	s := &Scope{buckets: make([]*Symbol, initialBucketCount)}
	s.Parent = parent
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

func bucketIndex(name string, nbuckets int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32()) % nbuckets
}

// lookupLocal searches only s's own buckets, not any ancestor.
func (s *Scope) lookupLocal(name string) *Symbol {
	idx := bucketIndex(name, len(s.buckets))
	for sym := s.buckets[idx]; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// expand doubles bucket capacity and rehashes every existing symbol,
// mirroring symtable_expand.
func (s *Scope) expand() {
	old := s.buckets
	s.buckets = make([]*Symbol, len(old)*2)
	for _, head := range old {
		for sym := head; sym != nil; {
			next := sym.next
			idx := bucketIndex(sym.Name, len(s.buckets))
			sym.next = s.buckets[idx]
			s.buckets[idx] = sym
			sym = next
		}
	}
}

// Insert binds name to node in s. If name is already present in s (not an
// ancestor), Insert returns the pre-existing Symbol and a non-nil error so
// the name-resolution pass can report KindSymbolCollision while preserving
// the original declaration, per spec.md section 4.4.
func (s *Scope) Insert(name string, node ast.ID) (*Symbol, error) {
	if existing := s.lookupLocal(name); existing != nil {
		return existing, fmt.Errorf("symbol %q already declared in this scope", name)
	}
	if float64(s.size+1) > loadFactor*float64(len(s.buckets)) {
		s.expand()
	}
	sym := &Symbol{Name: name, Node: node, Scope: s}
	idx := bucketIndex(name, len(s.buckets))
	sym.next = s.buckets[idx]
	s.buckets[idx] = sym
	s.order = append(s.order, sym)
	s.size++
	return sym, nil
}

// Lookup searches s, then each ancestor in turn, returning the first
// binding found.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym := sc.lookupLocal(name); sym != nil {
			return sym, true
		}
	}
	return nil, false
}

// ShadowsOuter reports whether name is bound in some strictly-outer scope,
// letting the name-resolution pass emit KindShadowedSymbol without
// affecting which binding Lookup returns.
func (s *Scope) ShadowsOuter(name string) bool {
	for sc := s.Parent; sc != nil; sc = sc.Parent {
		if sc.lookupLocal(name) != nil {
			return true
		}
	}
	return false
}

// Symbols returns this scope's own symbols in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

// Size reports how many symbols are bound directly in s.
func (s *Scope) Size() int {
	return s.size
}
