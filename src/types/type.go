// Package types implements tau's hash-consed type descriptors: a sum type
// over primitive, modifier, and declared type shapes, grounded on
// original_source/inc/typedesc.h's typedesc_kind_e/typedesc_*_s family,
// translated from a tagged-union-of-C-structs into a single Go struct with
// kind-dependent fields, the same tagging style the teacher uses for
// ir.Node.
package types

import "tauc/src/ast"

// Kind discriminates a Type's shape.
type Kind int

const (
	KindInvalid Kind = iota

	// Modifiers: each wraps exactly one Base type.
	KindMut
	KindConst
	KindPtr
	KindRef
	KindOpt
	KindArray

	// Primitives: singletons, no Base.
	KindI8
	KindI16
	KindI32
	KindI64
	KindIsize
	KindU8
	KindU16
	KindU32
	KindU64
	KindUsize
	KindF32
	KindF64
	KindChar
	KindBool
	KindUnit
	KindNull // sentinel, assignable to any opt/ptr

	// Declared/composite.
	KindFun
	KindStruct
	KindUnion
	KindEnum
	KindMod

	// Inference placeholder, resolved away before type check completes.
	KindVar

	// Supplemented extension types (original_source/inc/ast/type covers
	// these under a richer schema than spec.md's distillation keeps).
	KindVec
	KindMat
)

// Type is tau's hash-consed type descriptor. Fields outside a Kind's own
// family stay at the zero value. Every descriptor caches its LLVM
// counterpart lazily; codegen fills LLVMType the first time it lowers the
// descriptor.
type Type struct {
	Kind Kind

	// Modifier family (Mut, Const, Ptr, Ref, Opt, Array, Vec, Mat).
	Base *Type

	// Array/Vec: element count. 0 means "unsized" (array(expr?) with no
	// constant expression resolved yet).
	Length int

	// Mat: dimensions; Rows/Cols both set, Length unused.
	Rows int
	Cols int

	// Fun: signature.
	Params   []*Type
	Return   *Type
	Variadic bool
	CallConv ast.CallConv

	// Struct/Union/Enum/Mod: nominal identity is the declaring AST node,
	// not the field list, per spec.md section 3's "nominal identity, not
	// structural" rule.
	Node   ast.ID
	Fields []*Type // Struct/Union only

	// Var: inference placeholder identity.
	VarID int

	// LLVMType caches the lowered llvm.Type handle; nil until codegen
	// populates it. Declared as interface{} so this package never imports
	// the LLVM bindings.
	LLVMType interface{}
}

// IsModifier reports whether t wraps exactly one Base type.
func (t *Type) IsModifier() bool {
	switch t.Kind {
	case KindMut, KindConst, KindPtr, KindRef, KindOpt, KindArray, KindVec, KindMat:
		return true
	}
	return false
}

// IsBuiltin reports whether t is a primitive singleton.
func (t *Type) IsBuiltin() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindIsize,
		KindU8, KindU16, KindU32, KindU64, KindUsize,
		KindF32, KindF64, KindChar, KindBool, KindUnit, KindNull:
		return true
	}
	return false
}

// IsInteger reports whether t is one of the fixed-width or pointer-sized
// integer kinds.
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindIsize,
		KindU8, KindU16, KindU32, KindU64, KindUsize:
		return true
	}
	return false
}

// IsFloat reports whether t is f32 or f64.
func (t *Type) IsFloat() bool {
	return t.Kind == KindF32 || t.Kind == KindF64
}

// IsArithmetic reports whether t is an integer or float kind.
func (t *Type) IsArithmetic() bool {
	return t.IsInteger() || t.IsFloat()
}

// IsSigned reports whether t is a signed integer kind.
func (t *Type) IsSigned() bool {
	switch t.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindIsize:
		return true
	}
	return false
}

// IsUnsigned reports whether t is an unsigned integer kind.
func (t *Type) IsUnsigned() bool {
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindUsize:
		return true
	}
	return false
}

// IsInvokable reports whether t can appear as a call's callee type.
func (t *Type) IsInvokable() bool {
	return t.Kind == KindFun
}

// IsComposite reports whether t aggregates other types by field.
func (t *Type) IsComposite() bool {
	switch t.Kind {
	case KindStruct, KindUnion, KindVec, KindMat:
		return true
	}
	return false
}

// IsDecl reports whether t carries a declaring AST node for nominal
// identity.
func (t *Type) IsDecl() bool {
	switch t.Kind {
	case KindStruct, KindUnion, KindEnum, KindMod:
		return true
	}
	return false
}

// IntWidth returns the bit width of an integer kind, or 0 if t is not a
// fixed-width integer kind (isize/usize report 0; callers compare against
// a data-layout pointer width instead).
func (t *Type) IntWidth() int {
	switch t.Kind {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32:
		return 32
	case KindI64, KindU64:
		return 64
	}
	return 0
}
