package sema

import (
	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/types"
)

// Checker runs the type-check pass described in spec.md section 4.6: a
// post-order traversal assigning every typed node an entry in a
// types.Table, grounded on the teacher's ir.validate walk but generalized
// from its fixed int/float lattice to tau's full hash-consed type system.
type Checker struct {
	reg     *ast.Registry
	bag     *diag.Bag
	builder *types.Builder
	table   *types.Table
	poison  *types.Type

	// inProgress breaks cycles while eagerly resolving struct/union field
	// lists for self- or mutually-referential aggregate declarations.
	inProgress map[ast.ID]bool
}

// NewChecker creates a Checker writing diagnostics to bag and interning
// types through builder.
func NewChecker(reg *ast.Registry, bag *diag.Bag, builder *types.Builder) *Checker {
	return &Checker{
		reg:        reg,
		bag:        bag,
		builder:    builder,
		table:      types.NewTable(),
		poison:     &types.Type{Kind: types.KindInvalid},
		inProgress: make(map[ast.ID]bool),
	}
}

// Table returns the type table the pass has populated. Valid to call at
// any point; entries accumulate as Check proceeds.
func (c *Checker) Table() *types.Table { return c.table }

// Check type-checks every top-level declaration under root.
func (c *Checker) Check(root ast.ID) {
	c.checkBlock(c.reg.At(root).Children, nil)
}

func (c *Checker) isPoison(t *types.Type) bool { return t == nil || t == c.poison }

// checkBlock type-checks a mixed declaration/statement sequence in the
// two-phase order spec.md section 4.6 implies for forward/mutual
// reference: every declaration's signature (not yet its body) is resolved
// first, then every declaration's body and every statement is checked in
// turn.
func (c *Checker) checkBlock(ids []ast.ID, retType *types.Type) {
	for _, id := range ids {
		if id != ast.NoID && c.reg.At(id).Kind.IsDecl() {
			c.declareSignature(id)
		}
	}
	for _, id := range ids {
		if id == ast.NoID {
			continue
		}
		if c.reg.At(id).Kind.IsDecl() {
			c.checkDeclBody(id, retType)
		} else {
			c.checkStmt(id, retType)
		}
	}
}

// declareSignature resolves id's type shape without descending into
// initializer expressions or function bodies, so mutually-recursive
// functions and forward-referencing variables see a complete type before
// their bodies are checked.
func (c *Checker) declareSignature(id ast.ID) {
	n := c.reg.At(id)
	switch n.Kind {
	case ast.KindDeclFun:
		params := make([]*types.Type, 0, len(n.Params))
		for _, p := range n.Params {
			pn := c.reg.At(p)
			pt := c.resolveType(pn.VarType)
			pn.Type = pt
			c.table.Set(p, pt)
			params = append(params, pt)
		}
		ret := c.resolveType(n.ReturnTy)
		ft := c.builder.Fun(ret, params, n.IsVariadic, n.CallConv)
		n.Type = ft
		c.table.Set(id, ft)
	case ast.KindDeclStruct, ast.KindDeclUnion, ast.KindDeclEnum:
		t := c.resolveDeclType(id, n)
		n.Type = t
	case ast.KindDeclMod:
		t := c.resolveDeclType(id, n)
		n.Type = t
		for _, d := range n.ModDecls {
			c.declareSignature(d)
		}
	case ast.KindDeclVar:
		if n.VarType != ast.NoID {
			t := c.resolveType(n.VarType)
			n.Type = t
			c.table.Set(id, t)
		}
	case ast.KindDeclType:
		t := c.resolveType(n.VarType)
		n.Type = t
		c.table.Set(id, t)
	}
}

// checkDeclBody type-checks the parts declareSignature skipped: initializer
// expressions, default parameter values, and function bodies.
func (c *Checker) checkDeclBody(id ast.ID, retType *types.Type) {
	n := c.reg.At(id)
	switch n.Kind {
	case ast.KindDeclFun:
		ft, _ := c.table.Get(id)
		fnRet := c.poison
		if ft != nil {
			fnRet = ft.Return
		}
		for _, p := range n.Params {
			pn := c.reg.At(p)
			if pn.Init == ast.NoID {
				continue
			}
			it := c.checkExpr(pn.Init)
			pt, _ := c.table.Get(p)
			if pt == nil {
				pt = c.poison
			}
			if !c.convertibleTo(pn.Init, types.Strip(it), pt) {
				c.bag.Errorf(diag.KindIllegalConversion, pn.Tok.Loc, "default value is not convertible to parameter type")
			}
		}
		if n.Body != ast.NoID {
			c.checkStmt(n.Body, fnRet)
		}
	case ast.KindDeclVar, ast.KindDeclParam:
		c.checkDeclVarBody(n, id)
	case ast.KindDeclMod:
		for _, d := range n.ModDecls {
			c.checkDeclBody(d, nil)
		}
	}
}

func (c *Checker) checkDeclVarBody(n *ast.Node, id ast.ID) {
	declared, hasDeclared := c.table.Get(id)
	if n.Init == ast.NoID {
		if !hasDeclared {
			n.Type = c.poison
			c.table.Set(id, c.poison)
		}
		return
	}
	it := c.checkExpr(n.Init)
	inferred := types.Strip(it)
	if !hasDeclared || declared == nil {
		n.Type = inferred
		c.table.Set(id, inferred)
		return
	}
	target := declared
	for target.Kind == types.KindMut || target.Kind == types.KindConst {
		target = target.Base
	}
	if !c.convertibleTo(n.Init, inferred, target) {
		c.bag.Errorf(diag.KindIllegalConversion, n.Tok.Loc, "initializer is not convertible to declared type")
	}
}

// resolveType lowers a Type-family AST node to its hash-consed descriptor,
// caching the result on the node itself (Node.Type) and in the type table.
func (c *Checker) resolveType(id ast.ID) *types.Type {
	if id == ast.NoID {
		return c.builder.Primitive(types.KindUnit)
	}
	n := c.reg.At(id)
	if t, ok := n.Type.(*types.Type); ok && t != nil {
		return t
	}
	result := c.resolveTypeKind(id, n)
	n.Type = result
	c.table.Set(id, result)
	return result
}

func (c *Checker) resolveTypeKind(id ast.ID, n *ast.Node) *types.Type {
	switch n.Kind {
	case ast.KindTypePrim:
		return c.resolvePrimitive(n)
	case ast.KindTypeMut:
		base := c.childType(n)
		t, err := c.builder.Mut(base)
		if err != nil {
			c.bag.Errorf(diag.KindExpectedMutable, n.Tok.Loc, "%s", err)
			return c.poison
		}
		return t
	case ast.KindTypeConst:
		return c.builder.Const(c.childType(n))
	case ast.KindTypePtr:
		return c.builder.Ptr(c.childType(n))
	case ast.KindTypeRef:
		return c.builder.Ref(c.childType(n))
	case ast.KindTypeOpt:
		base := c.childType(n)
		t, err := c.builder.Opt(base)
		if err != nil {
			c.bag.Errorf(diag.KindExpectedOptional, n.Tok.Loc, "%s", err)
			return c.poison
		}
		return t
	case ast.KindTypeArray:
		elem := c.childType(n)
		length := 0
		if n.ArrayLen != ast.NoID {
			lenNode := c.reg.At(n.ArrayLen)
			c.checkExpr(n.ArrayLen)
			if lenNode.Kind == ast.KindExprLitInt {
				length = int(lenNode.IntVal)
			}
		}
		t, err := c.builder.Array(elem, length)
		if err != nil {
			c.bag.Errorf(diag.KindExpectedArray, n.Tok.Loc, "%s", err)
			return c.poison
		}
		return t
	case ast.KindTypeVec:
		elem := c.childType(n)
		return c.builder.Vec(elem, c.constIntOf(n.ArrayLen))
	case ast.KindTypeMat:
		elem := c.childType(n)
		return c.builder.Mat(elem, c.constIntOf(n.MatRows), c.constIntOf(n.MatCols))
	case ast.KindTypeName:
		if n.DeclID == ast.NoID {
			return c.poison
		}
		decl := c.reg.At(n.DeclID)
		return c.resolveDeclType(n.DeclID, decl)
	case ast.KindTypeMember:
		if len(n.Children) == 0 {
			return c.poison
		}
		base := c.resolveType(n.Children[0])
		if base.Kind != types.KindMod {
			c.bag.Errorf(diag.KindExpectedTypename, n.Tok.Loc, "left side of '.' is not a module")
			return c.poison
		}
		memberID := c.findModDecl(base.Node, n.Member)
		if memberID == ast.NoID {
			c.bag.Errorf(diag.KindNoMember, n.Tok.Loc, "module has no member %q", n.Member)
			return c.poison
		}
		md := c.reg.At(memberID)
		if !isTypenameValued(md.Kind) {
			c.bag.Errorf(diag.KindExpectedTypename, n.Tok.Loc, "%q does not name a type", n.Member)
			return c.poison
		}
		return c.resolveDeclType(memberID, md)
	case ast.KindTypeFun:
		if len(n.Children) == 0 {
			return c.poison
		}
		retNode := n.Children[len(n.Children)-1]
		params := make([]*types.Type, 0, len(n.Children)-1)
		for _, p := range n.Children[:len(n.Children)-1] {
			params = append(params, c.resolveType(p))
		}
		ret := c.resolveType(retNode)
		return c.builder.Fun(ret, params, n.IsVariadic, n.CallConv)
	}
	return c.poison
}

func (c *Checker) childType(n *ast.Node) *types.Type {
	if len(n.Children) == 0 {
		return c.poison
	}
	return c.resolveType(n.Children[0])
}

// constIntOf evaluates a vec/mat dimension expression, the same
// constant-literal-only evaluation the array-length case applies: only a
// bare integer literal is accepted, mirroring spec.md section 4.2's
// compile-time-constant array bound.
func (c *Checker) constIntOf(id ast.ID) int {
	if id == ast.NoID {
		return 0
	}
	c.checkExpr(id)
	n := c.reg.At(id)
	if n.Kind == ast.KindExprLitInt {
		return int(n.IntVal)
	}
	return 0
}

var primKinds = map[string]types.Kind{
	"i8": types.KindI8, "i16": types.KindI16, "i32": types.KindI32, "i64": types.KindI64, "isize": types.KindIsize,
	"u8": types.KindU8, "u16": types.KindU16, "u32": types.KindU32, "u64": types.KindU64, "usize": types.KindUsize,
	"f32": types.KindF32, "f64": types.KindF64,
	"char": types.KindChar, "bool": types.KindBool, "unit": types.KindUnit,
}

func (c *Checker) resolvePrimitive(n *ast.Node) *types.Type {
	k, ok := primKinds[n.Tok.Text]
	if !ok {
		return c.poison
	}
	return c.builder.Primitive(k)
}

// resolveDeclType returns the nominal Type descriptor for a struct, union,
// enum, mod or type-alias declaration, populating struct/union Fields and
// enum constant values on first reference. inProgress guards against
// infinite recursion for a struct containing itself by value through a
// chain of other aggregates; the real language only permits such
// self-reference behind a pointer, whose Type does not need Fields
// populated to exist.
func (c *Checker) resolveDeclType(id ast.ID, decl *ast.Node) *types.Type {
	switch decl.Kind {
	case ast.KindDeclStruct:
		return c.resolveComposite(types.KindStruct, id, decl)
	case ast.KindDeclUnion:
		return c.resolveComposite(types.KindUnion, id, decl)
	case ast.KindDeclEnum:
		t := c.builder.Decl(types.KindEnum, id)
		if !c.inProgress[id] && len(decl.Members) > 0 {
			c.inProgress[id] = true
			for i, m := range decl.Members {
				mn := c.reg.At(m)
				mn.IntVal = int64(i)
				mn.Type = t
				c.table.Set(m, t)
			}
			delete(c.inProgress, id)
		}
		return t
	case ast.KindDeclMod:
		return c.builder.Decl(types.KindMod, id)
	case ast.KindDeclType:
		return c.resolveType(decl.VarType)
	}
	return c.poison
}

func (c *Checker) resolveComposite(kind types.Kind, id ast.ID, decl *ast.Node) *types.Type {
	t := c.builder.Decl(kind, id)
	if c.inProgress[id] {
		return t
	}
	if len(t.Fields) == 0 && len(decl.Members) > 0 {
		c.inProgress[id] = true
		for _, m := range decl.Members {
			mn := c.reg.At(m)
			ft := c.resolveType(mn.VarType)
			mn.Type = ft
			c.table.Set(m, ft)
			t.Fields = append(t.Fields, ft)
		}
		delete(c.inProgress, id)
	}
	return t
}

func (c *Checker) findModDecl(modID ast.ID, name string) ast.ID {
	decl := c.reg.At(modID)
	for _, d := range decl.ModDecls {
		if c.reg.At(d).Name == name {
			return d
		}
	}
	return ast.NoID
}

func (c *Checker) findMember(members []ast.ID, name string) ast.ID {
	for _, m := range members {
		if c.reg.At(m).Name == name {
			return m
		}
	}
	return ast.NoID
}

// declUsageType returns the type an identifier reference to decl yields in
// expression position: a reference for storage locations, the bare
// function type for functions (call targets, not addressable values), and
// the enclosing enum type for enum constants.
func (c *Checker) declUsageType(id ast.ID) *types.Type {
	n := c.reg.At(id)
	switch n.Kind {
	case ast.KindDeclVar, ast.KindDeclParam:
		t, ok := c.table.Get(id)
		if !ok || t == nil {
			t = c.poison
		}
		return c.builder.Ref(t)
	case ast.KindDeclFun:
		t, ok := c.table.Get(id)
		if !ok || t == nil {
			return c.poison
		}
		return t
	case ast.KindDeclEnumConstant:
		t, ok := c.table.Get(id)
		if !ok || t == nil {
			return c.poison
		}
		return t
	}
	return c.poison
}

// checkStmt type-checks one statement, threading the enclosing function's
// return type through for StmtReturn's convertibility check.
func (c *Checker) checkStmt(id ast.ID, retType *types.Type) {
	if id == ast.NoID {
		return
	}
	n := c.reg.At(id)
	switch n.Kind {
	case ast.KindStmtBlock:
		c.checkBlock(n.Children, retType)
	case ast.KindStmtExpr:
		for _, ch := range n.Children {
			// The parser wraps a local `var` statement in a StmtExpr.
			if ch != ast.NoID && c.reg.At(ch).Kind.IsDecl() {
				c.declareSignature(ch)
				c.checkDeclBody(ch, retType)
				continue
			}
			c.checkExpr(ch)
		}
	case ast.KindStmtIf:
		c.expectBool(n.Cond)
		c.checkStmt(n.Then, retType)
		c.checkStmt(n.Else, retType)
	case ast.KindStmtWhile, ast.KindStmtDoWhile:
		c.expectBool(n.Cond)
		c.checkStmt(n.Then, retType)
	case ast.KindStmtFor:
		c.checkStmtFor(n, retType)
	case ast.KindStmtLoop:
		c.checkStmt(n.Then, retType)
	case ast.KindStmtReturn:
		c.checkStmtReturn(n, retType)
	case ast.KindStmtDefer:
		c.checkStmt(n.DeferOf, retType)
	case ast.KindStmtBreak, ast.KindStmtContinue:
		// Nothing to type-check; placement is the control-flow pass's job.
	}
}

func (c *Checker) expectBool(id ast.ID) {
	t := c.checkExpr(id)
	st := types.Strip(t)
	if c.isPoison(st) {
		return
	}
	if st.Kind != types.KindBool {
		c.bag.Errorf(diag.KindExpectedBool, c.reg.At(id).Tok.Loc, "condition must be bool")
	}
}

func (c *Checker) checkStmtFor(n *ast.Node, retType *types.Type) {
	it := c.checkExpr(n.ForIter)
	container := types.Strip(it)
	var elem *types.Type
	if c.isPoison(container) {
		elem = c.poison
	} else if container.Kind == types.KindArray {
		elem = container.Base
	} else {
		c.bag.Errorf(diag.KindExpectedArray, c.reg.At(n.ForIter).Tok.Loc, "for-loop source must be an array")
		elem = c.poison
	}
	forVar := c.reg.At(n.ForVar)
	if forVar.VarType != ast.NoID {
		t := c.resolveType(forVar.VarType)
		if !c.convertibleTo(ast.NoID, elem, t) {
			c.bag.Errorf(diag.KindIllegalConversion, forVar.Tok.Loc, "loop variable type does not match element type")
		}
		forVar.Type = t
		c.table.Set(n.ForVar, t)
	} else {
		forVar.Type = elem
		c.table.Set(n.ForVar, elem)
	}
	c.checkStmt(n.Then, retType)
}

func (c *Checker) checkStmtReturn(n *ast.Node, retType *types.Type) {
	if retType == nil {
		retType = c.poison
	}
	if n.ReturnOf == ast.NoID {
		if !c.isPoison(retType) && retType.Kind != types.KindUnit {
			c.bag.Errorf(diag.KindIncompatibleReturnType, n.Tok.Loc, "missing return value")
		}
		return
	}
	rt := c.checkExpr(n.ReturnOf)
	if !c.convertibleTo(n.ReturnOf, types.Strip(rt), retType) {
		c.bag.Errorf(diag.KindIncompatibleReturnType, n.Tok.Loc, "return value is not convertible to the function's return type")
	}
}

// checkExpr type-checks one expression, memoizing its result on the node
// (Node.ExprType) and in the type table.
func (c *Checker) checkExpr(id ast.ID) *types.Type {
	if id == ast.NoID {
		return c.poison
	}
	n := c.reg.At(id)
	if t, ok := n.ExprType.(*types.Type); ok && t != nil {
		return t
	}
	t := c.checkExprKind(id, n)
	n.ExprType = t
	c.table.Set(id, t)
	return t
}

func (c *Checker) checkExprKind(id ast.ID, n *ast.Node) *types.Type {
	switch n.Kind {
	case ast.KindExprLitInt:
		k := types.KindI32
		if n.LitSuffix != "" {
			if sk, ok := primKinds[n.LitSuffix]; ok {
				k = sk
			}
		}
		t := c.builder.Primitive(k)
		suffix := n.LitSuffix
		if suffix == "" {
			suffix = "i32"
		}
		if !types.FitsInt(n.IntVal, t) {
			c.bag.Errorf(diag.KindIntegerLiteralTooLarge, n.Tok.Loc, "integer literal %d does not fit in %s", n.IntVal, suffix)
		}
		return t
	case ast.KindExprLitFloat:
		return c.builder.Primitive(types.KindF32)
	case ast.KindExprLitString:
		return c.builder.Ptr(c.builder.Primitive(types.KindU8))
	case ast.KindExprLitChar:
		return c.builder.Primitive(types.KindChar)
	case ast.KindExprLitBool:
		return c.builder.Primitive(types.KindBool)
	case ast.KindExprLitNull:
		return c.builder.Primitive(types.KindNull)
	case ast.KindExprId:
		if n.DeclID == ast.NoID {
			return c.poison
		}
		return c.declUsageType(n.DeclID)
	case ast.KindExprOpUn:
		return c.checkUnary(n)
	case ast.KindExprOpBin:
		return c.checkBinary(n)
	case ast.KindExprCall:
		return c.checkCall(n)
	case ast.KindExprSubscript:
		return c.checkSubscript(n)
	case ast.KindExprAccess:
		return c.checkAccess(n)
	case ast.KindExprCast:
		return c.checkCast(n)
	case ast.KindExprSizeof, ast.KindExprAlignof:
		for _, ch := range n.Children {
			c.resolveType(ch)
		}
		return c.builder.Primitive(types.KindUsize)
	case ast.KindExprTypeof:
		if len(n.Children) == 0 {
			return c.poison
		}
		return c.resolveType(n.Children[0])
	case ast.KindExprUnwrap:
		return c.checkUnwrap(n)
	}
	return c.poison
}

func (c *Checker) checkUnary(n *ast.Node) *types.Type {
	if len(n.Children) == 0 {
		return c.poison
	}
	ot := c.checkExpr(n.Children[0])
	if c.isPoison(ot) {
		return c.poison
	}
	st := types.Strip(ot)
	switch n.Op {
	case ast.OpPos, ast.OpNeg:
		if c.isPoison(st) || !st.IsArithmetic() {
			c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "unary %s requires an arithmetic operand", n.Op)
			return c.poison
		}
		n.OpSub = subKindFor(st)
		return st
	case ast.OpBitNot:
		if c.isPoison(st) || !st.IsInteger() {
			c.bag.Errorf(diag.KindExpectedInteger, n.Tok.Loc, "~ requires an integer operand")
			return c.poison
		}
		return st
	case ast.OpLogicNot:
		if c.isPoison(st) || st.Kind != types.KindBool {
			c.bag.Errorf(diag.KindExpectedBool, n.Tok.Loc, "! requires a bool operand")
			return c.poison
		}
		return st
	case ast.OpIndirection:
		if c.isPoison(st) || st.Kind != types.KindPtr {
			c.bag.Errorf(diag.KindExpectedPointer, n.Tok.Loc, "*. requires a pointer operand")
			return c.poison
		}
		return c.builder.Ref(st.Base)
	case ast.OpAddr:
		if !types.IsReferenceCategory(ot) {
			c.bag.Errorf(diag.KindExpectedReference, n.Tok.Loc, "& requires an addressable operand")
			return c.poison
		}
		return c.builder.Ptr(ot.Base)
	case ast.OpIncPre, ast.OpIncPost, ast.OpDecPre, ast.OpDecPost:
		if !types.IsMutableReference(ot) {
			c.bag.Errorf(diag.KindExpectedMutable, n.Tok.Loc, "increment/decrement requires a mutable reference")
			return c.poison
		}
		if !types.Strip(ot).IsArithmetic() {
			c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "increment/decrement requires an arithmetic operand")
			return c.poison
		}
		n.OpSub = subKindFor(types.Strip(ot))
		return ot
	}
	return c.poison
}

func isAssignOp(op ast.OpKind) bool {
	switch op {
	case ast.OpAssign, ast.OpAddAssign, ast.OpSubAssign, ast.OpMulAssign, ast.OpDivAssign, ast.OpModAssign,
		ast.OpBitAndAssign, ast.OpBitOrAssign, ast.OpBitXorAssign, ast.OpLShiftAssign, ast.OpRShiftAssign:
		return true
	}
	return false
}

func isArithOp(op ast.OpKind) bool {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return true
	}
	return false
}

func isBitwiseOp(op ast.OpKind) bool {
	switch op {
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpLShift, ast.OpRShift:
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

func (c *Checker) checkBinary(n *ast.Node) *types.Type {
	if len(n.Children) != 2 {
		return c.poison
	}
	lt := c.checkExpr(n.Children[0])
	rt := c.checkExpr(n.Children[1])
	if c.isPoison(lt) || c.isPoison(rt) {
		return c.poison
	}

	switch {
	case isAssignOp(n.Op):
		return c.checkAssign(n, lt, rt)
	case isArithOp(n.Op):
		lst, rst := types.Strip(lt), types.Strip(rt)
		if !c.isPoison(lst) && !c.isPoison(rst) && (lst.Kind == types.KindVec || rst.Kind == types.KindVec) {
			return c.checkVecArith(n, lst, rst)
		}
		if !c.isPoison(lst) && !c.isPoison(rst) && (lst.Kind == types.KindMat || rst.Kind == types.KindMat) {
			return c.checkMatArith(n, lst, rst)
		}
		if c.isPoison(lst) || !lst.IsArithmetic() || c.isPoison(rst) || !rst.IsArithmetic() {
			c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "%s requires arithmetic operands", n.Op)
			return c.poison
		}
		if types.SignednessMismatch(lst, rst) {
			c.bag.Errorf(diag.KindMismatchedSignedness, n.Tok.Loc, "operands of %s have mismatched signedness", n.Op)
		}
		result := types.Promote(lst, rst)
		n.OpSub = subKindFor(result)
		return result
	case isBitwiseOp(n.Op):
		lst, rst := types.Strip(lt), types.Strip(rt)
		ok := true
		if c.isPoison(lst) || !lst.IsInteger() {
			c.bag.Errorf(diag.KindExpectedInteger, n.Tok.Loc, "%s requires integer operands", n.Op)
			ok = false
		}
		if c.isPoison(rst) || !rst.IsInteger() {
			c.bag.Errorf(diag.KindExpectedInteger, n.Tok.Loc, "%s requires integer operands", n.Op)
			ok = false
		}
		if !ok {
			return c.poison
		}
		n.OpSub = subKindFor(lst)
		return lst
	case n.Op == ast.OpLogicAnd || n.Op == ast.OpLogicOr:
		lst, rst := types.Strip(lt), types.Strip(rt)
		if c.isPoison(lst) || lst.Kind != types.KindBool || c.isPoison(rst) || rst.Kind != types.KindBool {
			c.bag.Errorf(diag.KindExpectedBool, n.Tok.Loc, "%s requires bool operands", n.Op)
			return c.poison
		}
		return lst
	case isComparisonOp(n.Op):
		return c.checkComparison(n, lt, rt)
	case n.Op == ast.OpRange:
		lst, rst := types.Strip(lt), types.Strip(rt)
		if c.isPoison(lst) || !lst.IsInteger() || c.isPoison(rst) || !rst.IsInteger() {
			c.bag.Errorf(diag.KindExpectedInteger, n.Tok.Loc, ".. requires integer bounds")
			return c.poison
		}
		return types.Promote(lst, rst)
	case n.Op == ast.OpIn:
		rst := types.Strip(rt)
		if c.isPoison(rst) || rst.Kind != types.KindArray {
			c.bag.Errorf(diag.KindExpectedArray, n.Tok.Loc, "in requires an array on the right-hand side")
			return c.poison
		}
		return c.builder.Primitive(types.KindBool)
	}
	return c.poison
}

func (c *Checker) checkAssign(n *ast.Node, lt, rt *types.Type) *types.Type {
	if !types.IsReferenceCategory(lt) {
		c.bag.Errorf(diag.KindExpectedReference, n.Tok.Loc, "assignment target must be an addressable location")
		return c.poison
	}
	if !types.IsMutableReference(lt) {
		c.bag.Errorf(diag.KindExpectedMutable, n.Tok.Loc, "assignment target is not mutable")
		return c.poison
	}
	target := types.Strip(lt)
	rhs := n.Children[1]
	source := rt
	if n.Op != ast.OpAssign {
		source = types.Strip(rt)
		if c.isPoison(target) || !target.IsArithmetic() || c.isPoison(source) || !source.IsArithmetic() {
			c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "%s requires arithmetic operands", n.Op)
			return c.poison
		}
	}
	if !c.convertibleTo(rhs, source, target) {
		c.bag.Errorf(diag.KindIllegalConversion, n.Tok.Loc, "right-hand side is not convertible to the target type")
		return c.poison
	}
	n.OpSub = subKindFor(target)
	return lt
}

// checkVecArith type-checks a binary arithmetic operator applied to at
// least one vec operand, per spec.md section 4.6's "binary ops on vectors
// require equal length and element-type compatibility; results use
// element-promoted types; mismatches -> IncompatibleVectorDimensions".
func (c *Checker) checkVecArith(n *ast.Node, lst, rst *types.Type) *types.Type {
	if lst.Kind != types.KindVec || rst.Kind != types.KindVec {
		c.bag.Errorf(diag.KindExpectedVector, n.Tok.Loc, "%s requires both operands to be vec when either is vec", n.Op)
		return c.poison
	}
	if lst.Length != rst.Length {
		c.bag.Errorf(diag.KindIncompatibleVectorDimensions, n.Tok.Loc,
			"%s requires equal vec lengths, got %d and %d", n.Op, lst.Length, rst.Length)
		return c.poison
	}
	lbase, rbase := types.Strip(lst.Base), types.Strip(rst.Base)
	if c.isPoison(lbase) || !lbase.IsArithmetic() || c.isPoison(rbase) || !rbase.IsArithmetic() {
		c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "%s requires vec operands with arithmetic elements", n.Op)
		return c.poison
	}
	result := c.builder.Vec(types.Promote(lbase, rbase), lst.Length)
	n.OpSub = subKindFor(result)
	return result
}

// checkMatArith is checkVecArith's mat counterpart: both dimensions must
// match, per spec.md section 4.6's matrix mismatch -> IncompatibleMatrixDimensions.
func (c *Checker) checkMatArith(n *ast.Node, lst, rst *types.Type) *types.Type {
	if lst.Kind != types.KindMat || rst.Kind != types.KindMat {
		c.bag.Errorf(diag.KindExpectedMatrix, n.Tok.Loc, "%s requires both operands to be mat when either is mat", n.Op)
		return c.poison
	}
	if lst.Rows != rst.Rows || lst.Cols != rst.Cols {
		c.bag.Errorf(diag.KindIncompatibleMatrixDimensions, n.Tok.Loc,
			"%s requires equal mat dimensions, got %dx%d and %dx%d", n.Op, lst.Rows, lst.Cols, rst.Rows, rst.Cols)
		return c.poison
	}
	lbase, rbase := types.Strip(lst.Base), types.Strip(rst.Base)
	if c.isPoison(lbase) || !lbase.IsArithmetic() || c.isPoison(rbase) || !rbase.IsArithmetic() {
		c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "%s requires mat operands with arithmetic elements", n.Op)
		return c.poison
	}
	result := c.builder.Mat(types.Promote(lbase, rbase), lst.Rows, lst.Cols)
	n.OpSub = subKindFor(result)
	return result
}

func (c *Checker) checkComparison(n *ast.Node, lt, rt *types.Type) *types.Type {
	lst, rst := types.Strip(lt), types.Strip(rt)
	boolType := c.builder.Primitive(types.KindBool)
	if c.isPoison(lst) || c.isPoison(rst) {
		return c.poison
	}
	if lst.IsArithmetic() && rst.IsArithmetic() {
		if types.SignednessMismatch(lst, rst) {
			c.bag.Errorf(diag.KindMismatchedSignedness, n.Tok.Loc, "operands of %s have mismatched signedness", n.Op)
		}
		n.OpSub = subKindFor(types.Promote(lst, rst))
		return boolType
	}
	if (lst.Kind == types.KindPtr || lst.Kind == types.KindRef) && (rst.Kind == types.KindPtr || rst.Kind == types.KindRef) {
		n.OpSub = ast.SubKindPointer
		return boolType
	}
	c.bag.Errorf(diag.KindExpectedArithmetic, n.Tok.Loc, "%s requires comparable operands", n.Op)
	return c.poison
}

func (c *Checker) checkCall(n *ast.Node) *types.Type {
	if len(n.Children) == 0 {
		return c.poison
	}
	callee := n.Children[0]
	args := n.Children[1:]
	ct := c.checkExpr(callee)
	cst := types.Strip(ct)
	if c.isPoison(cst) {
		for _, a := range args {
			c.checkExpr(a)
		}
		return c.poison
	}
	if cst.Kind != types.KindFun {
		c.bag.Errorf(diag.KindIllegalConversion, c.reg.At(callee).Tok.Loc, "called value is not a function")
		for _, a := range args {
			c.checkExpr(a)
		}
		return c.poison
	}
	params := cst.Params
	switch {
	case !cst.Variadic && len(args) > len(params):
		c.bag.Errorf(diag.KindTooManyFunctionParameters, n.Tok.Loc, "too many arguments: expected %d, got %d", len(params), len(args))
	case len(args) < len(params):
		c.bag.Errorf(diag.KindTooFewFunctionParameters, n.Tok.Loc, "too few arguments: expected %d, got %d", len(params), len(args))
	}
	for i, a := range args {
		at := c.checkExpr(a)
		if i >= len(params) {
			continue
		}
		if !c.convertibleTo(a, types.Strip(at), params[i]) {
			c.bag.Errorf(diag.KindIllegalConversion, c.reg.At(a).Tok.Loc, "argument %d is not convertible to the parameter type", i+1)
		}
	}
	return cst.Return
}

func (c *Checker) checkSubscript(n *ast.Node) *types.Type {
	if len(n.Children) != 2 {
		return c.poison
	}
	ot := c.checkExpr(n.Children[0])
	it := c.checkExpr(n.Children[1])
	ost := types.Strip(ot)
	if c.isPoison(ost) {
		return c.poison
	}
	if ost.Kind != types.KindArray && ost.Kind != types.KindPtr {
		c.bag.Errorf(diag.KindExpectedArray, n.Tok.Loc, "subscript requires an array or pointer")
		return c.poison
	}
	ist := types.Strip(it)
	if c.isPoison(ist) || !ist.IsInteger() {
		c.bag.Errorf(diag.KindExpectedInteger, n.Tok.Loc, "subscript index must be an integer")
	}
	return c.builder.Ref(ost.Base)
}

func (c *Checker) checkAccess(n *ast.Node) *types.Type {
	if len(n.Children) == 0 {
		return c.poison
	}
	ot := c.checkExpr(n.Children[0])
	ost := types.Strip(ot)
	if c.isPoison(ost) {
		return c.poison
	}
	switch ost.Kind {
	case types.KindStruct, types.KindUnion:
		decl := c.reg.At(ost.Node)
		fieldID := c.findMember(decl.Members, n.Member)
		if fieldID == ast.NoID {
			c.bag.Errorf(diag.KindNoMember, n.Tok.Loc, "%s has no member %q", decl.Name, n.Member)
			return c.poison
		}
		fieldType := c.resolveType(c.reg.At(fieldID).VarType)
		if types.IsReferenceCategory(ot) {
			return c.builder.Ref(fieldType)
		}
		return fieldType
	case types.KindEnum:
		decl := c.reg.At(ost.Node)
		constID := c.findMember(decl.Members, n.Member)
		if constID == ast.NoID {
			c.bag.Errorf(diag.KindNoMember, n.Tok.Loc, "%s has no constant %q", decl.Name, n.Member)
			return c.poison
		}
		return ost
	case types.KindMod:
		memberID := c.findModDecl(ost.Node, n.Member)
		if memberID == ast.NoID {
			c.bag.Errorf(diag.KindNoMember, n.Tok.Loc, "module has no member %q", n.Member)
			return c.poison
		}
		return c.declUsageType(memberID)
	}
	c.bag.Errorf(diag.KindNoMember, n.Tok.Loc, "member access requires a struct, union, enum or module")
	return c.poison
}

func (c *Checker) checkCast(n *ast.Node) *types.Type {
	if len(n.Children) != 2 {
		return c.poison
	}
	ot := c.checkExpr(n.Children[0])
	tt := c.resolveType(n.Children[1])
	ost := types.Strip(ot)
	if c.isPoison(ost) || c.isPoison(tt) {
		return c.poison
	}
	if !c.castLegal(ost, tt) {
		c.bag.Errorf(diag.KindIllegalConversion, n.Tok.Loc, "illegal conversion")
		return c.poison
	}
	n.OpSub = subKindFor(tt)
	return tt
}

func (c *Checker) castLegal(from, to *types.Type) bool {
	if from == to {
		return true
	}
	if from.IsArithmetic() && to.IsArithmetic() {
		return true
	}
	if from.Kind == types.KindPtr && to.Kind == types.KindPtr {
		return true
	}
	if from.IsInteger() && to.Kind == types.KindPtr {
		return true
	}
	if from.Kind == types.KindPtr && to.IsInteger() {
		return true
	}
	if from.Kind == types.KindBool && to.IsInteger() {
		return true
	}
	if from.IsInteger() && to.Kind == types.KindBool {
		return true
	}
	return false
}

func (c *Checker) checkUnwrap(n *ast.Node) *types.Type {
	if len(n.Children) == 0 {
		return c.poison
	}
	ot := c.checkExpr(n.Children[0])
	st := types.Strip(ot)
	if c.isPoison(st) {
		return c.poison
	}
	if st.Kind != types.KindOpt {
		c.bag.Errorf(diag.KindExpectedOptional, n.Tok.Loc, "! requires an optional operand")
		return c.poison
	}
	return st.Base
}

// convertibleTo reports whether a value of type from may be used where to
// is expected, per spec.md section 4.6's implicit-conversion rules.
// exprID, when not ast.NoID and the expression is an untyped integer/float
// literal, is re-stamped to the target type: this is how a literal
// "participates in implicit promotion to the target type" instead of being
// frozen at its default i32/f32.
func (c *Checker) convertibleTo(exprID ast.ID, from, to *types.Type) bool {
	if c.isPoison(from) || c.isPoison(to) {
		return true
	}
	// Checked against to before the from == to shortcut: a literal whose
	// inferred natural type already equals to (e.g. an unsuffixed literal
	// flowing into an i32 context) would otherwise never have its value
	// compared against to's width.
	if exprID != ast.NoID && to.IsInteger() {
		if n := c.reg.At(exprID); n.Kind == ast.KindExprLitInt && !types.FitsInt(n.IntVal, to) {
			c.bag.Errorf(diag.KindIntegerLiteralTooLarge, n.Tok.Loc, "integer literal %d does not fit in the target type", n.IntVal)
		}
	}
	if from == to {
		return true
	}
	if to.Kind == types.KindOpt {
		if from.Kind == types.KindNull {
			return true
		}
		return c.convertibleTo(exprID, from, to.Base)
	}
	if to.Kind == types.KindPtr && from.Kind == types.KindNull {
		return true
	}
	if from.IsArithmetic() && to.IsArithmetic() {
		if exprID != ast.NoID {
			n := c.reg.At(exprID)
			if n.Kind == ast.KindExprLitInt || n.Kind == ast.KindExprLitFloat {
				n.ExprType = to
				c.table.Set(exprID, to)
			}
		}
		return true
	}
	if from.IsDecl() && to.IsDecl() {
		return from.Node == to.Node
	}
	return false
}

// subKindFor classifies t for the operator sub-kind tagging spec.md section
// 4.6 describes, so code generation dispatches on it directly.
func subKindFor(t *types.Type) ast.OpSubKind {
	if t == nil {
		return ast.SubKindNone
	}
	switch {
	case t.IsFloat():
		return ast.SubKindFloat
	case t.IsInteger():
		return ast.SubKindInt
	case t.Kind == types.KindVec:
		return ast.SubKindVector
	case t.Kind == types.KindMat:
		return ast.SubKindMatrix
	case t.Kind == types.KindPtr:
		return ast.SubKindPointer
	}
	return ast.SubKindNone
}
