package codegen

import (
	"tinygo.org/x/go-llvm"

	"tauc/src/types"
)

// convert inserts the implicit-conversion instruction sequence spec.md
// section 4.8 names (sext/zext/trunc/sitofp/uitofp/fpext/fptrunc) to bring
// v from its recorded type to to. from may be nil for values with no
// source type (e.g. sizeof's raw SizeOf() result), in which case v is
// returned unconverted.
func (g *Generator) convert(v llvm.Value, from, to *types.Type) llvm.Value {
	if to == nil || from == to {
		return v
	}
	if from == nil {
		return v
	}
	if from.Kind == types.KindVec && to.Kind == types.KindVec {
		return g.convertElemwise(v, from.Base, to.Base, to)
	}
	if from.Kind == to.Kind && from.IntWidth() == to.IntWidth() {
		return v
	}

	fromInt, toInt := from.IsInteger(), to.IsInteger()
	fromFloat, toFloat := from.IsFloat(), to.IsFloat()

	switch {
	case fromInt && toInt:
		fw, tw := from.IntWidth(), to.IntWidth()
		if fw == 0 {
			fw = g.ptrBits
		}
		if tw == 0 {
			tw = g.ptrBits
		}
		switch {
		case tw > fw:
			if from.IsSigned() {
				return g.builder.CreateSExt(v, g.llvmType(to), "")
			}
			return g.builder.CreateZExt(v, g.llvmType(to), "")
		case tw < fw:
			return g.builder.CreateTrunc(v, g.llvmType(to), "")
		default:
			return v
		}
	case fromFloat && toFloat:
		fw, tw := floatRank(from), floatRank(to)
		if tw > fw {
			return g.builder.CreateFPExt(v, g.llvmType(to), "")
		}
		if tw < fw {
			return g.builder.CreateFPTrunc(v, g.llvmType(to), "")
		}
		return v
	case fromInt && toFloat:
		if from.IsUnsigned() {
			return g.builder.CreateUIToFP(v, g.llvmType(to), "")
		}
		return g.builder.CreateSIToFP(v, g.llvmType(to), "")
	case fromFloat && toInt:
		if to.IsUnsigned() {
			return g.builder.CreateFPToUI(v, g.llvmType(to), "")
		}
		return g.builder.CreateFPToSI(v, g.llvmType(to), "")
	case from.Kind == types.KindBool && toInt:
		return g.builder.CreateZExt(v, g.llvmType(to), "")
	case fromInt && to.Kind == types.KindBool:
		zero := llvm.ConstInt(g.llvmType(from), 0, false)
		return g.builder.CreateICmp(llvm.IntNE, v, zero, "")
	case (from.Kind == types.KindPtr || from.Kind == types.KindIsize || from.Kind == types.KindUsize) &&
		(to.Kind == types.KindPtr || to.Kind == types.KindIsize || to.Kind == types.KindUsize):
		if from.Kind == types.KindPtr && to.Kind == types.KindPtr {
			return g.builder.CreateBitCast(v, g.llvmType(to), "")
		}
		if from.Kind == types.KindPtr {
			return g.builder.CreatePtrToInt(v, g.llvmType(to), "")
		}
		return g.builder.CreateIntToPtr(v, g.llvmType(to), "")
	}
	return v
}

// convertElemwise applies the same implicit-conversion instruction the
// scalar case in convert would choose, but targeting to's full vec LLVM
// type: sext/zext/trunc/sitofp/uitofp/fpext/fptrunc already act
// elementwise when given vector-of-scalar operands, so no explicit
// extract/insert loop is needed (unlike genMatArith's array lowering).
func (g *Generator) convertElemwise(v llvm.Value, fromElem, toElem, to *types.Type) llvm.Value {
	if fromElem == toElem {
		return v
	}
	target := g.llvmType(to)
	fromInt, toInt := fromElem.IsInteger(), toElem.IsInteger()
	fromFloat, toFloat := fromElem.IsFloat(), toElem.IsFloat()

	switch {
	case fromInt && toInt:
		fw, tw := fromElem.IntWidth(), toElem.IntWidth()
		switch {
		case tw > fw:
			if fromElem.IsSigned() {
				return g.builder.CreateSExt(v, target, "")
			}
			return g.builder.CreateZExt(v, target, "")
		case tw < fw:
			return g.builder.CreateTrunc(v, target, "")
		default:
			return v
		}
	case fromFloat && toFloat:
		fw, tw := floatRank(fromElem), floatRank(toElem)
		if tw > fw {
			return g.builder.CreateFPExt(v, target, "")
		}
		if tw < fw {
			return g.builder.CreateFPTrunc(v, target, "")
		}
		return v
	case fromInt && toFloat:
		if fromElem.IsUnsigned() {
			return g.builder.CreateUIToFP(v, target, "")
		}
		return g.builder.CreateSIToFP(v, target, "")
	case fromFloat && toInt:
		if toElem.IsUnsigned() {
			return g.builder.CreateFPToUI(v, target, "")
		}
		return g.builder.CreateFPToSI(v, target, "")
	}
	return v
}

func floatRank(t *types.Type) int {
	if t.Kind == types.KindF64 {
		return 64
	}
	return 32
}
