package types

import "tauc/src/ast"

// Table maps AST nodes to the Type descriptor the type-check pass assigned
// them. The Table borrows descriptors from a Builder; it never constructs
// or frees one, per spec.md section 3's ownership note.
type Table struct {
	entries map[ast.ID]*Type
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[ast.ID]*Type)}
}

// Set records node's type. Overwriting an existing entry is allowed: a
// node may be revisited (e.g. a forward-declared struct whose field types
// resolve after its first reference).
func (t *Table) Set(node ast.ID, typ *Type) {
	t.entries[node] = typ
}

// Get returns node's recorded type, or (nil, false) if the type-check pass
// has not yet visited it (or it was never typed, e.g. a Prog or Id node).
func (t *Table) Get(node ast.ID) (*Type, bool) {
	typ, ok := t.entries[node]
	return typ, ok
}

// Len reports how many nodes currently have a recorded type.
func (t *Table) Len() int {
	return len(t.entries)
}
