package codegen

import (
	"tinygo.org/x/go-llvm"

	"tauc/src/types"
)

// llvmType maps a type descriptor to its lowered LLVM type, caching the
// result on t.LLVMType so repeated lowering of the same hash-consed
// descriptor (t is shared by every use site) is a map-free pointer read
// after the first visit, per spec.md section 4.8's "map each type
// descriptor to a cached LLVMType".
func (g *Generator) llvmType(t *types.Type) llvm.Type {
	if t == nil {
		return llvm.VoidType()
	}
	if cached, ok := t.LLVMType.(llvm.Type); ok {
		return cached
	}
	lt := g.lowerType(t)
	t.LLVMType = lt
	return lt
}

func (g *Generator) lowerType(t *types.Type) llvm.Type {
	switch t.Kind {
	case types.KindMut, types.KindConst:
		return g.llvmType(t.Base)
	case types.KindPtr, types.KindRef:
		return llvm.PointerType(g.llvmType(types.Strip(t.Base)), 0)
	case types.KindOpt:
		return g.ctx.StructType([]llvm.Type{llvm.Int1Type(), g.llvmType(t.Base)}, false)
	case types.KindArray:
		return llvm.ArrayType(g.llvmType(t.Base), t.Length)
	case types.KindVec:
		return llvm.VectorType(g.llvmType(t.Base), t.Length)
	case types.KindMat:
		return llvm.ArrayType(llvm.ArrayType(g.llvmType(t.Base), t.Cols), t.Rows)
	case types.KindFun:
		return g.llvmFuncType(t)

	case types.KindI8, types.KindU8:
		return llvm.Int8Type()
	case types.KindI16, types.KindU16:
		return llvm.Int16Type()
	case types.KindI32, types.KindU32:
		return llvm.Int32Type()
	case types.KindI64, types.KindU64:
		return llvm.Int64Type()
	case types.KindIsize, types.KindUsize:
		return g.ctx.IntType(g.ptrBits)
	case types.KindF32:
		return llvm.FloatType()
	case types.KindF64:
		return llvm.DoubleType()
	case types.KindChar:
		// Unicode code point, not a C byte-char: grounded on
		// original_source's `char` being a 32-bit scalar distinct from i8.
		return llvm.Int32Type()
	case types.KindBool:
		return llvm.Int1Type()
	case types.KindUnit:
		return llvm.VoidType()
	case types.KindNull:
		return llvm.Int1Type() // only ever a transient sentinel; never lowered standalone.

	case types.KindStruct, types.KindUnion:
		return g.lowerComposite(t)
	case types.KindEnum:
		return g.enumIntType(t)
	case types.KindMod:
		return llvm.VoidType() // compile-time namespace only; never instantiated.
	}
	return llvm.VoidType()
}

func (g *Generator) llvmFuncType(t *types.Type) llvm.Type {
	params := make([]llvm.Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = g.llvmType(p)
	}
	return llvm.FunctionType(g.llvmType(t.Return), params, t.Variadic)
}

// lowerComposite builds a named LLVM struct for a struct/union declaration,
// creating it eagerly (body filled in afterwards) so self-referential
// pointer fields (`struct Node { next: *Node; }`) resolve without infinite
// recursion, per the teacher's general "declare identity, fill body later"
// pattern (genFuncHeader/genFuncBody's own two-step split, generalized to
// aggregate layout).
func (g *Generator) lowerComposite(t *types.Type) llvm.Type {
	if named, ok := g.named[t.Node]; ok {
		return named
	}
	named := g.ctx.StructCreateNamed(structName(t))
	g.named[t.Node] = named
	t.LLVMType = named

	if t.Kind == types.KindUnion {
		named.StructSetBody([]llvm.Type{unionStorageType(g, t)}, false)
		return named
	}
	fields := make([]llvm.Type, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = g.llvmType(f)
	}
	named.StructSetBody(fields, false)
	return named
}

func structName(t *types.Type) string {
	if t.Kind == types.KindUnion {
		return "union.anon"
	}
	return "struct.anon"
}

// unionStorageType picks a single field sized to the widest member, so
// every member aliases the same storage (spec.md section 4.8: "unions as
// a single field sized to the largest member ... runtime aliasing handled
// by bitcast at read sites").
func unionStorageType(g *Generator, t *types.Type) llvm.Type {
	var widest llvm.Type
	var widestBits uint64
	for _, f := range t.Fields {
		lt := g.llvmType(f)
		bits := lt.SizeOf().ZExtValue()
		if widest.IsNil() || bits > widestBits {
			widest = lt
			widestBits = bits
		}
	}
	if widest.IsNil() {
		return llvm.Int8Type()
	}
	return widest
}

// enumIntType picks the smallest integer width that fits t's constant
// count, per spec.md section 4.8.
func (g *Generator) enumIntType(t *types.Type) llvm.Type {
	n := len(g.reg.At(t.Node).Members)
	switch {
	case n <= 1<<8:
		return llvm.Int8Type()
	case n <= 1<<16:
		return llvm.Int16Type()
	default:
		return llvm.Int32Type()
	}
}
