package ast

import "tauc/src/token"

// Registry is the arena that owns every Node in a compilation unit. Nodes
// are addressed by ID rather than pointer so that cross-references (break
// -> enclosing loop, struct member -> declaring struct) stay stable across
// slice growth and need no reference counting: the whole arena is freed at
// once when the compilation unit is done, mirroring the teacher's ir.Node
// tree lifetime but without its pointer-cycle bookkeeping.
type Registry struct {
	nodes []Node
}

// NewRegistry returns an empty Registry. Index 0 is reserved for NoID, so
// the first real node gets ID 1.
func NewRegistry() *Registry {
	return &Registry{nodes: make([]Node, 1, 64)}
}

// New allocates a node of the given kind/token and returns its ID.
func (r *Registry) New(kind Kind, tok token.Token) ID {
	id := ID(len(r.nodes))
	r.nodes = append(r.nodes, Node{ID: id, Kind: kind, Tok: tok})
	return id
}

// At returns a pointer into the arena for id, letting callers mutate the
// node in place (e.g. appending a Children entry, stamping ExprType).
// Mutating through any other copy of Node has no effect on the registry.
func (r *Registry) At(id ID) *Node {
	return &r.nodes[id]
}

// Len reports how many nodes have been allocated, including the reserved
// slot 0.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// AddChild appends child to parent's Children list.
func (r *Registry) AddChild(parent, child ID) {
	n := r.At(parent)
	n.Children = append(n.Children, child)
}
