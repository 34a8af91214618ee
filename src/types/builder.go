package types

import (
	"fmt"

	"tauc/src/ast"
)

// Builder owns every Type descriptor ever constructed for a compilation
// unit and hash-conses them: two calls that describe the same structural
// (or, for declared types, nominal) shape return the identical pointer, so
// type identity throughout the rest of the pipeline is Go pointer
// equality, per spec.md section 9's "Type graph identity" note. The
// Builder, not the Table, owns descriptors; the Table only references them.
type Builder struct {
	primitives map[Kind]*Type
	modifiers  map[string]*Type // key: kind + base pointer + extra dims
	funs       map[string]*Type
	decls      map[ast.ID]*Type // struct/union/enum/mod, keyed on declaring node
	vars       map[int]*Type
}

// NewBuilder returns a Builder with every primitive singleton pre-interned.
func NewBuilder() *Builder {
	b := &Builder{
		primitives: make(map[Kind]*Type),
		modifiers:  make(map[string]*Type),
		funs:       make(map[string]*Type),
		decls:      make(map[ast.ID]*Type),
		vars:       make(map[int]*Type),
	}
	for _, k := range []Kind{
		KindI8, KindI16, KindI32, KindI64, KindIsize,
		KindU8, KindU16, KindU32, KindU64, KindUsize,
		KindF32, KindF64, KindChar, KindBool, KindUnit, KindNull,
	} {
		b.primitives[k] = &Type{Kind: k}
	}
	return b
}

// Primitive returns the unique descriptor for a built-in kind. Passing a
// non-primitive Kind panics: it is a programmer error, not a user-facing
// one.
func (b *Builder) Primitive(k Kind) *Type {
	t, ok := b.primitives[k]
	if !ok {
		panic(fmt.Sprintf("types: %v is not a primitive kind", k))
	}
	return t
}

// modifierKey derives a hash-consing key from a modifier kind and its base
// descriptor's identity (pointer value, via fmt's %p), plus any extra
// dimension fields (array length, vector/matrix shape).
func modifierKey(k Kind, base *Type, extra ...int) string {
	key := fmt.Sprintf("%d:%p", k, base)
	for _, e := range extra {
		key += fmt.Sprintf(":%d", e)
	}
	return key
}

func (b *Builder) intern(key string, make_ func() *Type) *Type {
	if t, ok := b.modifiers[key]; ok {
		return t
	}
	t := make_()
	b.modifiers[key] = t
	return t
}

// CanAddMut reports whether mut may wrap base. Per DESIGN.md's resolution
// of the source's underspecified mut/const interaction, mut is legal only
// as the outermost modifier: it may not wrap another mut, nor a const.
func CanAddMut(base *Type) bool {
	return base.Kind != KindMut && base.Kind != KindConst
}

// Mut returns the unique mut(base) descriptor, or an error if CanAddMut
// rejects base.
func (b *Builder) Mut(base *Type) (*Type, error) {
	if !CanAddMut(base) {
		return nil, fmt.Errorf("types: mut may not wrap a %v type", base.Kind)
	}
	return b.intern(modifierKey(KindMut, base), func() *Type {
		return &Type{Kind: KindMut, Base: base}
	}), nil
}

// CanAddConst reports whether const may wrap base. const, like ptr/ref,
// may wrap any type.
func CanAddConst(base *Type) bool {
	return true
}

func (b *Builder) Const(base *Type) *Type {
	return b.intern(modifierKey(KindConst, base), func() *Type {
		return &Type{Kind: KindConst, Base: base}
	})
}

// CanAddPtr reports whether ptr may wrap base. ptr may wrap any type.
func CanAddPtr(base *Type) bool { return true }

func (b *Builder) Ptr(base *Type) *Type {
	return b.intern(modifierKey(KindPtr, base), func() *Type {
		return &Type{Kind: KindPtr, Base: base}
	})
}

// CanAddRef reports whether ref may wrap base. ref may wrap any type.
func CanAddRef(base *Type) bool { return true }

func (b *Builder) Ref(base *Type) *Type {
	return b.intern(modifierKey(KindRef, base), func() *Type {
		return &Type{Kind: KindRef, Base: base}
	})
}

// CanAddOpt reports whether opt may wrap base: only over a non-opt type,
// per spec.md section 3's modifier chaining rules.
func CanAddOpt(base *Type) bool {
	return base.Kind != KindOpt
}

func (b *Builder) Opt(base *Type) (*Type, error) {
	if !CanAddOpt(base) {
		return nil, fmt.Errorf("types: opt may not wrap another opt type")
	}
	return b.intern(modifierKey(KindOpt, base), func() *Type {
		return &Type{Kind: KindOpt, Base: base}
	}), nil
}

// CanAddArray reports whether array may wrap elem: any non-opt element.
func CanAddArray(elem *Type) bool {
	return elem.Kind != KindOpt
}

// Array returns the unique array(length, elem) descriptor. length is 0 for
// an unsized array(expr?) whose bound is not a compile-time constant.
func (b *Builder) Array(elem *Type, length int) (*Type, error) {
	if !CanAddArray(elem) {
		return nil, fmt.Errorf("types: array element may not be an opt type")
	}
	return b.intern(modifierKey(KindArray, elem, length), func() *Type {
		return &Type{Kind: KindArray, Base: elem, Length: length}
	}), nil
}

// Vec returns the unique vec(elem, length) descriptor, supplementing
// spec.md's primitive type family with the extension type original_source
// models under src/ast/type/type_type.c.
func (b *Builder) Vec(elem *Type, length int) *Type {
	return b.intern(modifierKey(KindVec, elem, length), func() *Type {
		return &Type{Kind: KindVec, Base: elem, Length: length}
	})
}

// Mat returns the unique mat(elem, rows, cols) descriptor.
func (b *Builder) Mat(elem *Type, rows, cols int) *Type {
	return b.intern(modifierKey(KindMat, elem, rows, cols), func() *Type {
		return &Type{Kind: KindMat, Base: elem, Rows: rows, Cols: cols}
	})
}

// funKey derives a hash-consing key for a function type: calling
// convention and varargs flag participate, per spec.md section 3's
// "Function type uniqueness includes calling convention and varargs flag".
func funKey(ret *Type, params []*Type, variadic bool, cc ast.CallConv) string {
	key := fmt.Sprintf("fun:%p:%t:%d:", ret, variadic, cc)
	for _, p := range params {
		key += fmt.Sprintf("%p,", p)
	}
	return key
}

// Fun returns the unique function type descriptor for this signature.
func (b *Builder) Fun(ret *Type, params []*Type, variadic bool, cc ast.CallConv) *Type {
	key := funKey(ret, params, variadic, cc)
	if t, ok := b.funs[key]; ok {
		return t
	}
	t := &Type{Kind: KindFun, Return: ret, Params: append([]*Type(nil), params...), Variadic: variadic, CallConv: cc}
	b.funs[key] = t
	return t
}

// Decl returns the unique struct/union/enum/mod descriptor for the
// declaring node id, creating it on first reference with an empty field
// list (identity is fixed on first reference, before fields are known;
// type check fills Fields in place on the same pointer).
func (b *Builder) Decl(kind Kind, node ast.ID) *Type {
	if t, ok := b.decls[node]; ok {
		return t
	}
	t := &Type{Kind: kind, Node: node}
	b.decls[node] = t
	return t
}

// Var returns the unique inference-placeholder descriptor for id.
func (b *Builder) Var(id int) *Type {
	if t, ok := b.vars[id]; ok {
		return t
	}
	t := &Type{Kind: KindVar, VarID: id}
	b.vars[id] = t
	return t
}
