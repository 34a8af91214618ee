package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"tauc/src/ast"
	"tauc/src/types"
)

// genExpr lowers id and returns its raw value together with its recorded
// type. Identifier references and other reference-category expressions
// yield an address; genExprValue additionally inserts the load a
// value-context consumer expects (spec.md section 4.8's `load_if_ref`).
func (g *Generator) genExpr(id ast.ID) (llvm.Value, *types.Type, error) {
	n := g.reg.At(id)
	t, _ := g.table.Get(id)

	switch n.Kind {
	case ast.KindExprLitInt:
		return llvm.ConstInt(g.llvmType(t), uint64(n.IntVal), t.IsSigned()), t, nil
	case ast.KindExprLitFloat:
		return llvm.ConstFloat(g.llvmType(t), n.FloatVal), t, nil
	case ast.KindExprLitChar:
		return llvm.ConstInt(g.llvmType(t), uint64(n.CharVal), false), t, nil
	case ast.KindExprLitBool:
		v := uint64(0)
		if n.BoolVal {
			v = 1
		}
		return llvm.ConstInt(g.llvmType(t), v, false), t, nil
	case ast.KindExprLitString:
		return g.builder.CreateGlobalStringPtr(n.StringVal, "str"), t, nil
	case ast.KindExprLitNull:
		return g.genNullLiteral(t), t, nil

	case ast.KindExprId:
		return g.genIdent(n, t)
	case ast.KindExprOpUn:
		return g.genUnary(n, t)
	case ast.KindExprOpBin:
		return g.genBinary(n, t)
	case ast.KindExprCall:
		return g.genCall(n, t)
	case ast.KindExprSubscript:
		return g.genSubscript(n, t)
	case ast.KindExprAccess:
		return g.genAccess(n, t)
	case ast.KindExprCast:
		return g.genCast(n, t)
	case ast.KindExprSizeof:
		return g.genSizeof(n, t)
	case ast.KindExprAlignof:
		return g.genAlignof(n, t)
	case ast.KindExprTypeof:
		// A compile-time type descriptor has no runtime value; typeof's
		// result is only ever consumed by other compile-time constructs
		// (sizeof/alignof of its operand), never lowered standalone.
		return llvm.Value{}, t, nil
	case ast.KindExprUnwrap:
		return g.genUnwrap(n, t)
	}
	return llvm.Value{}, t, fmt.Errorf("codegen: unhandled expression kind %v", n.Kind)
}

// genExprValue lowers id and loads through a reference if needed, so the
// caller always receives a usable value (not an address).
func (g *Generator) genExprValue(id ast.ID) (llvm.Value, *types.Type, error) {
	v, t, err := g.genExpr(id)
	if err != nil {
		return v, t, err
	}
	return g.loadIfRef(v, t), types.Strip(t), nil
}

// loadIfRef inserts a load when t is a reference category, the helper
// spec.md section 4.8 names explicitly.
func (g *Generator) loadIfRef(v llvm.Value, t *types.Type) llvm.Value {
	if types.IsReferenceCategory(t) {
		return g.builder.CreateLoad(v, "")
	}
	return v
}

func (g *Generator) genNullLiteral(t *types.Type) llvm.Value {
	if t == nil {
		return llvm.Value{}
	}
	switch t.Kind {
	case types.KindOpt:
		lt := g.llvmType(t)
		return llvm.ConstNamedStruct(lt, []llvm.Value{
			llvm.ConstInt(llvm.Int1Type(), 0, false),
			llvm.ConstNull(g.llvmType(t.Base)),
		})
	case types.KindPtr:
		return llvm.ConstPointerNull(g.llvmType(t))
	}
	return llvm.ConstNull(g.llvmType(t))
}

// genIdent returns the storage address for a variable/parameter, the bare
// function value for a function reference, or the integer constant for an
// enum constant — declUsageType (src/sema/typecheck.go) already tells us
// which of these n.DeclID names.
func (g *Generator) genIdent(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	decl := g.reg.At(n.DeclID)
	switch decl.Kind {
	case ast.KindDeclFun:
		if fn, ok := g.funcs[n.DeclID]; ok {
			return fn, t, nil
		}
		return llvm.Value{}, t, fmt.Errorf("codegen: function %q has no LLVM declaration", decl.Name)
	case ast.KindDeclEnumConstant:
		return llvm.ConstInt(g.llvmType(t), uint64(decl.IntVal), false), t, nil
	default:
		if v, ok := g.vars[n.DeclID]; ok {
			return v, t, nil
		}
		if v, ok := g.gvars[n.DeclID]; ok {
			return v, t, nil
		}
		return llvm.Value{}, t, fmt.Errorf("codegen: identifier %q has no storage", n.Name)
	}
}

func (g *Generator) genUnary(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	operand := n.Children[0]
	switch n.Op {
	case ast.OpAddr:
		addr, _, err := g.genExpr(operand)
		if err != nil {
			return llvm.Value{}, t, err
		}
		return addr, t, nil
	case ast.OpIndirection:
		v, _, err := g.genExprValue(operand)
		if err != nil {
			return llvm.Value{}, t, err
		}
		return v, t, nil
	case ast.OpIncPre, ast.OpDecPre, ast.OpIncPost, ast.OpDecPost:
		return g.genIncDec(n, t)
	}

	v, vt, err := g.genExprValue(operand)
	if err != nil {
		return llvm.Value{}, t, err
	}
	switch n.Op {
	case ast.OpPos:
		return v, t, nil
	case ast.OpNeg:
		if vt.IsFloat() {
			return g.builder.CreateFNeg(v, ""), t, nil
		}
		return g.builder.CreateNeg(v, ""), t, nil
	case ast.OpBitNot:
		return g.builder.CreateNot(v, ""), t, nil
	case ast.OpLogicNot:
		return g.builder.CreateNot(v, ""), t, nil
	}
	return llvm.Value{}, t, fmt.Errorf("codegen: unhandled unary operator %v", n.Op)
}

func (g *Generator) genIncDec(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	operand := n.Children[0]
	addr, addrType, err := g.genExpr(operand)
	if err != nil {
		return llvm.Value{}, t, err
	}
	valType := types.Strip(addrType)
	old := g.builder.CreateLoad(addr, "")
	one := llvm.ConstInt(g.llvmType(valType), 1, false)
	if valType.IsFloat() {
		one = llvm.ConstFloat(g.llvmType(valType), 1)
	}
	var updated llvm.Value
	switch n.Op {
	case ast.OpIncPre, ast.OpIncPost:
		if valType.IsFloat() {
			updated = g.builder.CreateFAdd(old, one, "")
		} else {
			updated = g.builder.CreateAdd(old, one, "")
		}
	default:
		if valType.IsFloat() {
			updated = g.builder.CreateFSub(old, one, "")
		} else {
			updated = g.builder.CreateSub(old, one, "")
		}
	}
	g.builder.CreateStore(updated, addr)
	if n.Op == ast.OpIncPre || n.Op == ast.OpDecPre {
		return updated, t, nil
	}
	return old, t, nil
}

func (g *Generator) genBinary(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	if isAssignOp(n.Op) {
		return g.genAssign(n, t)
	}
	if n.Op == ast.OpLogicAnd || n.Op == ast.OpLogicOr {
		return g.genShortCircuit(n, t)
	}
	if n.Op == ast.OpAccess {
		return g.genAccess(n, t)
	}

	lv, lt, err := g.genExprValue(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	rv, rt, err := g.genExprValue(n.Children[1])
	if err != nil {
		return llvm.Value{}, t, err
	}

	if isComparisonOp(n.Op) {
		return g.genComparison(n.Op, lv, lt, rv, rt), t, nil
	}

	lv = g.convert(lv, lt, t)
	rv = g.convert(rv, rt, t)
	return g.genArith(n.Op, lv, rv, t), t, nil
}

func (g *Generator) genArith(op ast.OpKind, lv, rv llvm.Value, t *types.Type) llvm.Value {
	if t.Kind == types.KindVec {
		return g.genVecArith(op, lv, rv, t)
	}
	if t.Kind == types.KindMat {
		return g.genMatArith(op, lv, rv, t)
	}
	f := t.IsFloat()
	switch op {
	case ast.OpAdd:
		if f {
			return g.builder.CreateFAdd(lv, rv, "")
		}
		return g.builder.CreateAdd(lv, rv, "")
	case ast.OpSub:
		if f {
			return g.builder.CreateFSub(lv, rv, "")
		}
		return g.builder.CreateSub(lv, rv, "")
	case ast.OpMul:
		if f {
			return g.builder.CreateFMul(lv, rv, "")
		}
		return g.builder.CreateMul(lv, rv, "")
	case ast.OpDiv:
		if f {
			return g.builder.CreateFDiv(lv, rv, "")
		}
		if t.IsUnsigned() {
			return g.builder.CreateUDiv(lv, rv, "")
		}
		return g.builder.CreateSDiv(lv, rv, "")
	case ast.OpMod:
		if f {
			return g.builder.CreateFRem(lv, rv, "")
		}
		if t.IsUnsigned() {
			return g.builder.CreateURem(lv, rv, "")
		}
		return g.builder.CreateSRem(lv, rv, "")
	case ast.OpBitAnd:
		return g.builder.CreateAnd(lv, rv, "")
	case ast.OpBitOr:
		return g.builder.CreateOr(lv, rv, "")
	case ast.OpBitXor:
		return g.builder.CreateXor(lv, rv, "")
	case ast.OpLShift:
		return g.builder.CreateShl(lv, rv, "")
	case ast.OpRShift:
		if t.IsUnsigned() {
			return g.builder.CreateLShr(lv, rv, "")
		}
		return g.builder.CreateAShr(lv, rv, "")
	case ast.OpRange:
		// No dedicated range value exists at runtime; `for x in a..b` lowers
		// the range directly into the loop bounds (see stmt.go's genFor),
		// so a bare range expression used elsewhere just yields its upper
		// bound, matching checkBinary's `types.Promote` fallback result type.
		return rv
	}
	return lv
}

// genVecArith lowers a vec-typed binary op: vec lowers to a native LLVM
// vector type (types.go's lowerType), so the scalar builder methods apply
// elementwise with no explicit extract/insert loop, mirroring genArith but
// keyed on the vec's element kind rather than t itself.
func (g *Generator) genVecArith(op ast.OpKind, lv, rv llvm.Value, t *types.Type) llvm.Value {
	elem := types.Strip(t.Base)
	f := elem.IsFloat()
	switch op {
	case ast.OpAdd:
		if f {
			return g.builder.CreateFAdd(lv, rv, "")
		}
		return g.builder.CreateAdd(lv, rv, "")
	case ast.OpSub:
		if f {
			return g.builder.CreateFSub(lv, rv, "")
		}
		return g.builder.CreateSub(lv, rv, "")
	case ast.OpMul:
		if f {
			return g.builder.CreateFMul(lv, rv, "")
		}
		return g.builder.CreateMul(lv, rv, "")
	case ast.OpDiv:
		if f {
			return g.builder.CreateFDiv(lv, rv, "")
		}
		if elem.IsUnsigned() {
			return g.builder.CreateUDiv(lv, rv, "")
		}
		return g.builder.CreateSDiv(lv, rv, "")
	case ast.OpMod:
		if f {
			return g.builder.CreateFRem(lv, rv, "")
		}
		if elem.IsUnsigned() {
			return g.builder.CreateURem(lv, rv, "")
		}
		return g.builder.CreateSRem(lv, rv, "")
	}
	return lv
}

// genMatArith lowers a mat-typed binary op element by element: mat lowers
// to nested LLVM array types (types.go's lowerType), and arrays, unlike
// vectors, are not valid operands to add/sub/mul directly, so each element
// is pulled out with ExtractValue, combined, and written back with
// InsertValue.
func (g *Generator) genMatArith(op ast.OpKind, lv, rv llvm.Value, t *types.Type) llvm.Value {
	elem := types.Strip(t.Base)
	f := elem.IsFloat()
	result := llvm.Undef(g.llvmType(t))
	for r := 0; r < t.Rows; r++ {
		lrow := g.builder.CreateExtractValue(lv, r, "")
		rrow := g.builder.CreateExtractValue(rv, r, "")
		rowResult := llvm.Undef(g.llvmType(t).ElementType())
		for c := 0; c < t.Cols; c++ {
			le := g.builder.CreateExtractValue(lrow, c, "")
			re := g.builder.CreateExtractValue(rrow, c, "")
			var ce llvm.Value
			switch op {
			case ast.OpAdd:
				if f {
					ce = g.builder.CreateFAdd(le, re, "")
				} else {
					ce = g.builder.CreateAdd(le, re, "")
				}
			case ast.OpSub:
				if f {
					ce = g.builder.CreateFSub(le, re, "")
				} else {
					ce = g.builder.CreateSub(le, re, "")
				}
			case ast.OpMul:
				if f {
					ce = g.builder.CreateFMul(le, re, "")
				} else {
					ce = g.builder.CreateMul(le, re, "")
				}
			default:
				ce = le
			}
			rowResult = g.builder.CreateInsertValue(rowResult, ce, c, "")
		}
		result = g.builder.CreateInsertValue(result, rowResult, r, "")
	}
	return result
}

func (g *Generator) genComparison(op ast.OpKind, lv llvm.Value, lt *types.Type, rv llvm.Value, rt *types.Type) llvm.Value {
	if lt.IsFloat() || rt.IsFloat() {
		pred := map[ast.OpKind]llvm.FloatPredicate{
			ast.OpEq: llvm.FloatOEQ, ast.OpNe: llvm.FloatONE,
			ast.OpLt: llvm.FloatOLT, ast.OpLe: llvm.FloatOLE,
			ast.OpGt: llvm.FloatOGT, ast.OpGe: llvm.FloatOGE,
		}[op]
		return g.builder.CreateFCmp(pred, lv, rv, "")
	}
	signed := lt.IsSigned() || rt.IsSigned()
	var pred llvm.IntPredicate
	switch op {
	case ast.OpEq:
		pred = llvm.IntEQ
	case ast.OpNe:
		pred = llvm.IntNE
	case ast.OpLt:
		if signed {
			pred = llvm.IntSLT
		} else {
			pred = llvm.IntULT
		}
	case ast.OpLe:
		if signed {
			pred = llvm.IntSLE
		} else {
			pred = llvm.IntULE
		}
	case ast.OpGt:
		if signed {
			pred = llvm.IntSGT
		} else {
			pred = llvm.IntUGT
		}
	case ast.OpGe:
		if signed {
			pred = llvm.IntSGE
		} else {
			pred = llvm.IntUGE
		}
	}
	return g.builder.CreateICmp(pred, lv, rv, "")
}

// genShortCircuit lowers && / || with branching so the right operand is
// only evaluated when it can affect the result.
func (g *Generator) genShortCircuit(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	lv, _, err := g.genExprValue(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	startBlock := g.builder.GetInsertBlock()
	rhsBlock := llvm.AddBasicBlock(g.curFunc, "")
	endBlock := llvm.AddBasicBlock(g.curFunc, "")

	if n.Op == ast.OpLogicAnd {
		g.builder.CreateCondBr(lv, rhsBlock, endBlock)
	} else {
		g.builder.CreateCondBr(lv, endBlock, rhsBlock)
	}

	g.builder.SetInsertPointAtEnd(rhsBlock)
	rv, _, err := g.genExprValue(n.Children[1])
	if err != nil {
		return llvm.Value{}, t, err
	}
	rhsEnd := g.builder.GetInsertBlock()
	g.builder.CreateBr(endBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
	phi := g.builder.CreatePHI(llvm.Int1Type(), "")
	phi.AddIncoming([]llvm.Value{lv, rv}, []llvm.BasicBlock{startBlock, rhsEnd})
	return phi, t, nil
}

func (g *Generator) genAssign(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	addr, addrType, err := g.genExpr(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	rv, rt, err := g.genExprValue(n.Children[1])
	if err != nil {
		return llvm.Value{}, t, err
	}
	valType := types.Strip(addrType)

	if n.Op != ast.OpAssign {
		cur := g.builder.CreateLoad(addr, "")
		rv = g.convert(rv, rt, valType)
		rv = g.genArith(compoundBaseOp(n.Op), cur, rv, valType)
	} else {
		rv = g.convert(rv, rt, valType)
	}
	g.builder.CreateStore(rv, addr)
	return addr, t, nil
}

func compoundBaseOp(op ast.OpKind) ast.OpKind {
	switch op {
	case ast.OpAddAssign:
		return ast.OpAdd
	case ast.OpSubAssign:
		return ast.OpSub
	case ast.OpMulAssign:
		return ast.OpMul
	case ast.OpDivAssign:
		return ast.OpDiv
	case ast.OpModAssign:
		return ast.OpMod
	case ast.OpBitAndAssign:
		return ast.OpBitAnd
	case ast.OpBitOrAssign:
		return ast.OpBitOr
	case ast.OpBitXorAssign:
		return ast.OpBitXor
	case ast.OpLShiftAssign:
		return ast.OpLShift
	case ast.OpRShiftAssign:
		return ast.OpRShift
	}
	return ast.OpUnknown
}

func isAssignOp(op ast.OpKind) bool {
	switch op {
	case ast.OpAssign, ast.OpAddAssign, ast.OpSubAssign, ast.OpMulAssign, ast.OpDivAssign, ast.OpModAssign,
		ast.OpBitAndAssign, ast.OpBitOrAssign, ast.OpBitXorAssign, ast.OpLShiftAssign, ast.OpRShiftAssign:
		return true
	}
	return false
}

func isComparisonOp(op ast.OpKind) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return true
	}
	return false
}

func (g *Generator) genCall(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	callee := n.Children[0]
	calleeType, _ := g.table.Get(callee)
	fv, _, err := g.genExprValue(callee)
	if err != nil {
		return llvm.Value{}, t, err
	}
	args := make([]llvm.Value, 0, len(n.Children)-1)
	for i, a := range n.Children[1:] {
		av, at, err := g.genExprValue(a)
		if err != nil {
			return llvm.Value{}, t, err
		}
		if calleeType != nil && i < len(calleeType.Params) {
			av = g.convert(av, at, calleeType.Params[i])
		}
		args = append(args, av)
	}
	return g.builder.CreateCall(fv, args, ""), t, nil
}

func (g *Generator) genSubscript(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	owner, _, err := g.genExpr(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	idx, _, err := g.genExprValue(n.Children[1])
	if err != nil {
		return llvm.Value{}, t, err
	}
	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	gep := g.builder.CreateGEP(owner, []llvm.Value{zero, idx}, "")
	return gep, t, nil
}

// genAccess lowers struct/union field access, enum-constant access and
// module-qualified access. The field's address is a GEP off the owner's
// address; union reads alias the shared storage via bitcast, per spec.md
// section 4.8.
func (g *Generator) genAccess(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	ownerID := n.Children[0]
	ownerType, _ := g.table.Get(ownerID)
	base := types.Strip(ownerType)

	if base != nil && base.Kind == types.KindEnum {
		return g.genExpr(ownerID) // handled entirely by genIdent on the constant itself elsewhere
	}
	if base != nil && base.Kind == types.KindMod {
		// Module member: re-dispatch to the member's own identifier-style
		// lowering; nameres/typecheck already resolved DeclID on this node.
		decl := g.reg.At(n.DeclID)
		if decl.Kind == ast.KindDeclFun {
			if fn, ok := g.funcs[n.DeclID]; ok {
				return fn, t, nil
			}
		}
		if v, ok := g.gvars[n.DeclID]; ok {
			return v, t, nil
		}
		return llvm.Value{}, t, fmt.Errorf("codegen: module member %q has no storage", n.Member)
	}

	owner, _, err := g.genExpr(ownerID)
	if err != nil {
		return llvm.Value{}, t, err
	}

	if base != nil && base.Kind == types.KindUnion {
		ptr := g.builder.CreateBitCast(owner, llvm.PointerType(g.llvmType(t), 0), "")
		return ptr, t, nil
	}

	idx := fieldIndex(g.reg, base, n.Member)
	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	fidx := llvm.ConstInt(llvm.Int32Type(), uint64(idx), false)
	gep := g.builder.CreateGEP(owner, []llvm.Value{zero, fidx}, "")
	return gep, t, nil
}

func fieldIndex(reg *ast.Registry, t *types.Type, member string) int {
	decl := reg.At(t.Node)
	for i, m := range decl.Members {
		if reg.At(m).Name == member {
			return i
		}
	}
	return 0
}

func (g *Generator) genCast(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	v, from, err := g.genExprValue(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	return g.convert(v, from, t), t, nil
}

func (g *Generator) genSizeof(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	operand, _ := g.table.Get(n.Children[0])
	if operand == nil {
		operand = g.typeOperandType(n.Children[0])
	}
	sz := g.llvmType(operand).SizeOf()
	return g.convert(sz, nil, t), t, nil
}

func (g *Generator) genAlignof(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	operand := g.typeOperandType(n.Children[0])
	al := g.llvmType(operand).AlignOf()
	return g.convert(al, nil, t), t, nil
}

// typeOperandType resolves sizeof/alignof/typeof's operand, which is a
// Type node (not an Expr node) and therefore carries no table entry of its
// own; its resolved descriptor lives on the node's Type field, stamped by
// typecheck's resolveType.
func (g *Generator) typeOperandType(id ast.ID) *types.Type {
	n := g.reg.At(id)
	if ty, ok := n.Type.(*types.Type); ok {
		return ty
	}
	return nil
}

// genUnwrap lowers the safe optional-unwrap postfix `!`: on a missing
// value it calls exit(1) and marks the path unreachable, per spec.md
// section 4.8.
func (g *Generator) genUnwrap(n *ast.Node, t *types.Type) (llvm.Value, *types.Type, error) {
	addr, addrType, err := g.genExpr(n.Children[0])
	if err != nil {
		return llvm.Value{}, t, err
	}
	optType := types.Strip(addrType)
	optAddr := addr
	if types.IsReferenceCategory(addrType) {
		optAddr = addr
	}
	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	one := llvm.ConstInt(llvm.Int32Type(), 1, false)
	presentPtr := g.builder.CreateGEP(optAddr, []llvm.Value{zero, zero}, "")
	present := g.builder.CreateLoad(presentPtr, "")

	exitBlock := llvm.AddBasicBlock(g.curFunc, "")
	okBlock := llvm.AddBasicBlock(g.curFunc, "")
	g.builder.CreateCondBr(present, okBlock, exitBlock)

	g.builder.SetInsertPointAtEnd(exitBlock)
	g.builder.CreateCall(g.exitDecl(), []llvm.Value{llvm.ConstInt(llvm.Int32Type(), 1, true)}, "")
	g.builder.CreateUnreachable()

	g.builder.SetInsertPointAtEnd(okBlock)
	valPtr := g.builder.CreateGEP(optAddr, []llvm.Value{zero, one}, "")
	_ = optType
	return g.builder.CreateLoad(valPtr, ""), t, nil
}
