// Package sema implements the three post-parse passes spec.md section 4
// describes: name resolution, type checking and control-flow validation.
// Each pass is a single traversal over an *ast.Registry, writing results
// into auxiliary tables (symtab.Scope, types.Table) rather than mutating
// the tree's shape, mirroring the teacher's ir.validate walk over its own
// Node tree.
package sema

import (
	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/symtab"
)

// Resolver runs the name-resolution pass described in spec.md section 4.5.
type Resolver struct {
	reg    *ast.Registry
	bag    *diag.Bag
	global *symtab.Scope

	// deferDepth counts enclosing StmtDefer nodes on the current path.
	// Nothing reads it: a return inside a defer is rejected by the
	// control-flow pass from its own statement stack.
	deferDepth int
}

// NewResolver creates a resolver writing diagnostics to bag.
func NewResolver(reg *ast.Registry, bag *diag.Bag) *Resolver {
	return &Resolver{reg: reg, bag: bag}
}

// Resolve walks the program rooted at root, returning the global scope. It
// is the pass's sole entry point.
func (r *Resolver) Resolve(root ast.ID) *symtab.Scope {
	r.global = symtab.NewScope(nil)
	r.declareAndVisit(r.reg.At(root).Children, r.global)
	return r.global
}

// declareAndVisit inserts a symbol for every declaration in ids into scope
// before visiting any of their bodies, so mutually-recursive functions and
// self-referential declarations resolve within the same scope (spec.md
// section 4.5, "Declarations first insert their symbol... so self-reference
// and mutual reference inside the same scope work").
func (r *Resolver) declareAndVisit(ids []ast.ID, scope *symtab.Scope) {
	for _, id := range ids {
		r.declare(id, scope)
	}
	for _, id := range ids {
		r.visitDecl(id, scope)
	}
}

// declare inserts id's name into scope if it carries one. Struct/union
// fields and enum constants are not inserted into the enclosing scope: their
// resolution is deferred to type-check member-access handling (spec.md
// section 4.5, "Member accesses... defer resolution to type-check time for
// struct/union/enum fields").
func (r *Resolver) declare(id ast.ID, scope *symtab.Scope) {
	if id == ast.NoID {
		return
	}
	n := r.reg.At(id)
	switch n.Kind {
	case ast.KindDeclVar, ast.KindDeclParam, ast.KindDeclFun,
		ast.KindDeclStruct, ast.KindDeclUnion, ast.KindDeclEnum,
		ast.KindDeclMod, ast.KindDeclType:
		if existing, err := scope.Insert(n.Name, id); err != nil {
			r.bag.Errorf2(diag.KindSymbolCollision, n.Tok.Loc, r.reg.At(existing.Node).Tok.Loc,
				"%q is already declared in this scope", n.Name)
		} else if (n.Kind == ast.KindDeclVar || n.Kind == ast.KindDeclParam) && scope.Parent != nil {
			if outer, ok := scope.Parent.Lookup(n.Name); ok {
				r.bag.Errorf2(diag.KindShadowedSymbol, n.Tok.Loc, r.reg.At(outer.Node).Tok.Loc,
					"%q shadows an outer declaration", n.Name)
			}
		}
		n.DeclID = id
	}
}

// visitDecl recurses into one already-declared node's body.
func (r *Resolver) visitDecl(id ast.ID, scope *symtab.Scope) {
	if id == ast.NoID {
		return
	}
	n := r.reg.At(id)
	switch n.Kind {
	case ast.KindDeclVar, ast.KindDeclParam:
		if n.VarType != ast.NoID {
			r.visitType(n.VarType, scope)
		}
		if n.Init != ast.NoID {
			r.visitExpr(n.Init, scope)
		}
	case ast.KindDeclFun:
		inner := symtab.NewScope(scope)
		if r.shadows(scope, n.Name) {
			r.bag.Errorf(diag.KindShadowedSymbol, n.Tok.Loc, "function %q shadows an outer declaration", n.Name)
		}
		r.declareAndVisit(n.Params, inner)
		if n.ReturnTy != ast.NoID {
			r.visitType(n.ReturnTy, inner)
		}
		if n.Body != ast.NoID {
			r.visitBlockIn(n.Body, inner)
		}
	case ast.KindDeclStruct, ast.KindDeclUnion:
		inner := symtab.NewScope(scope)
		for _, m := range n.Members {
			mn := r.reg.At(m)
			if mn.VarType != ast.NoID {
				r.visitType(mn.VarType, inner)
			}
		}
	case ast.KindDeclEnum:
		// Enum constants carry no type annotation to resolve; their values
		// are assigned by type-check.
	case ast.KindDeclMod:
		inner := symtab.NewScope(scope)
		r.declareAndVisit(n.ModDecls, inner)
	case ast.KindDeclType:
		if n.VarType != ast.NoID {
			r.visitType(n.VarType, scope)
		}
	}
}

func (r *Resolver) shadows(scope *symtab.Scope, name string) bool {
	return scope.ShadowsOuter(name)
}

// visitBlockIn visits a StmtBlock's statements directly in scope, without
// allocating a further child scope — the caller (a function declaration) already
// pushed the scope the block's locals belong in. visitStmt pushes a fresh
// child scope for any nested StmtBlock it encounters itself.
func (r *Resolver) visitBlockIn(id ast.ID, scope *symtab.Scope) {
	n := r.reg.At(id)
	r.declareAndVisitStmts(n.Children, scope)
}

// declareAndVisitStmts mirrors declareAndVisit for a block's mixed
// statement/local-declaration children: declarations are inserted in
// textual order as they're reached (unlike top-level decls, locals are not
// mutually visible before their point of declaration) and each statement is
// visited immediately after, matching ordinary block execution order.
func (r *Resolver) declareAndVisitStmts(ids []ast.ID, scope *symtab.Scope) {
	for _, id := range ids {
		if id == ast.NoID {
			continue
		}
		n := r.reg.At(id)
		if n.Kind.IsDecl() {
			r.declare(id, scope)
			r.visitDecl(id, scope)
			continue
		}
		r.visitStmt(id, scope)
	}
}

func (r *Resolver) visitStmt(id ast.ID, scope *symtab.Scope) {
	if id == ast.NoID {
		return
	}
	n := r.reg.At(id)
	switch n.Kind {
	case ast.KindStmtBlock:
		inner := symtab.NewScope(scope)
		r.declareAndVisitStmts(n.Children, inner)
	case ast.KindStmtExpr:
		for _, c := range n.Children {
			// The parser wraps a local `var` statement in a StmtExpr.
			if c != ast.NoID && r.reg.At(c).Kind.IsDecl() {
				r.declare(c, scope)
				r.visitDecl(c, scope)
				continue
			}
			r.visitExpr(c, scope)
		}
	case ast.KindStmtIf:
		r.visitExpr(n.Cond, scope)
		r.visitStmt(n.Then, scope)
		r.visitStmt(n.Else, scope)
	case ast.KindStmtWhile, ast.KindStmtDoWhile:
		r.visitExpr(n.Cond, scope)
		r.visitStmt(n.Then, scope)
	case ast.KindStmtFor:
		inner := symtab.NewScope(scope)
		r.visitExpr(n.ForIter, scope)
		r.declare(n.ForVar, inner)
		r.visitDecl(n.ForVar, inner)
		r.visitStmt(n.Then, inner)
	case ast.KindStmtLoop:
		r.visitStmt(n.Then, scope)
	case ast.KindStmtBreak, ast.KindStmtContinue:
		// Loop target resolution is the control-flow pass's job.
	case ast.KindStmtReturn:
		if n.ReturnOf != ast.NoID {
			r.visitExpr(n.ReturnOf, scope)
		}
	case ast.KindStmtDefer:
		r.deferDepth++
		r.visitStmt(n.DeferOf, scope)
		r.deferDepth--
	}
}

func (r *Resolver) visitExpr(id ast.ID, scope *symtab.Scope) {
	if id == ast.NoID {
		return
	}
	n := r.reg.At(id)
	switch n.Kind {
	case ast.KindExprId:
		sym, ok := scope.Lookup(n.Name)
		if !ok {
			r.bag.Errorf(diag.KindUndefinedSymbol, n.Tok.Loc, "undefined symbol %q", n.Name)
			return
		}
		decl := r.reg.At(sym.Node)
		if !isExpressionValued(decl.Kind) {
			r.bag.Errorf(diag.KindExpectedExpressionSymbol, n.Tok.Loc, "%q does not name a value", n.Name)
			return
		}
		n.DeclID = sym.Node
	case ast.KindExprAccess:
		// Owner resolved normally; the member name itself is resolved
		// against the owner's declaration (module scope or struct/union
		// fields) once its type/kind is known, per spec.md section 4.5.
		for _, c := range n.Children {
			r.visitExpr(c, scope)
		}
	case ast.KindExprCast:
		// Children are [operand, type].
		if len(n.Children) == 2 {
			r.visitExpr(n.Children[0], scope)
			r.visitType(n.Children[1], scope)
		}
	case ast.KindExprSizeof, ast.KindExprAlignof, ast.KindExprTypeof:
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	default:
		for _, c := range n.Children {
			r.visitExpr(c, scope)
		}
	}
}

func (r *Resolver) visitType(id ast.ID, scope *symtab.Scope) {
	if id == ast.NoID {
		return
	}
	n := r.reg.At(id)
	switch n.Kind {
	case ast.KindTypeName:
		sym, ok := scope.Lookup(n.Name)
		if !ok {
			r.bag.Errorf(diag.KindUndefinedSymbol, n.Tok.Loc, "undefined type %q", n.Name)
			return
		}
		decl := r.reg.At(sym.Node)
		if !isTypenameValued(decl.Kind) {
			r.bag.Errorf(diag.KindExpectedTypename, n.Tok.Loc, "%q does not name a type", n.Name)
			return
		}
		n.DeclID = sym.Node
	case ast.KindTypeMember:
		// The base is resolved to its owning module/decl; the member
		// itself is deferred to type-check like struct-field access.
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	case ast.KindTypeArray:
		if n.ArrayLen != ast.NoID {
			r.visitExpr(n.ArrayLen, scope)
		}
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	case ast.KindTypeFun:
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	case ast.KindTypeVec:
		if n.ArrayLen != ast.NoID {
			r.visitExpr(n.ArrayLen, scope)
		}
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	case ast.KindTypeMat:
		if n.MatRows != ast.NoID {
			r.visitExpr(n.MatRows, scope)
		}
		if n.MatCols != ast.NoID {
			r.visitExpr(n.MatCols, scope)
		}
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	default:
		for _, c := range n.Children {
			r.visitType(c, scope)
		}
	}
}

// isExpressionValued reports whether decl's kind may be referenced from an
// ExprId position: variables, parameters, functions and enum constants.
func isExpressionValued(k ast.Kind) bool {
	switch k {
	case ast.KindDeclVar, ast.KindDeclParam, ast.KindDeclFun, ast.KindDeclEnumConstant:
		return true
	}
	return false
}

// isTypenameValued reports whether decl's kind may be referenced from a
// TypeName position: structs, unions, enums and type aliases.
func isTypenameValued(k ast.Kind) bool {
	switch k {
	case ast.KindDeclStruct, ast.KindDeclUnion, ast.KindDeclEnum, ast.KindDeclType, ast.KindDeclMod:
		return true
	}
	return false
}
