package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"tauc/src/ast"
	"tauc/src/types"
)

// genStmt lowers a statement and reports whether it terminated the current
// basic block with a return, break or continue (so callers know not to fall through and
// append their own branch), mirroring the teacher's gen()'s bool result.
func (g *Generator) genStmt(id ast.ID) (bool, error) {
	if id == ast.NoID {
		return false, nil
	}
	n := g.reg.At(id)
	switch n.Kind {
	case ast.KindStmtBlock:
		for _, c := range n.Children {
			cn := g.reg.At(c)
			if cn.Kind.IsDecl() {
				if err := g.genLocalDecl(c); err != nil {
					return false, err
				}
				continue
			}
			ret, err := g.genStmt(c)
			if err != nil {
				return false, err
			}
			if ret {
				return true, nil
			}
		}
		return false, nil
	case ast.KindStmtExpr:
		for _, c := range n.Children {
			// The parser wraps a local `var` statement in a StmtExpr.
			if g.reg.At(c).Kind.IsDecl() {
				if err := g.genLocalDecl(c); err != nil {
					return false, err
				}
				continue
			}
			if _, _, err := g.genExpr(c); err != nil {
				return false, err
			}
		}
		return false, nil
	case ast.KindStmtIf:
		return g.genIf(n)
	case ast.KindStmtWhile:
		return false, g.genWhile(id, n)
	case ast.KindStmtDoWhile:
		return false, g.genDoWhile(id, n)
	case ast.KindStmtFor:
		return false, g.genFor(id, n)
	case ast.KindStmtLoop:
		return false, g.genLoop(id, n)
	case ast.KindStmtBreak:
		return g.genBreakContinue(n, true)
	case ast.KindStmtContinue:
		return g.genBreakContinue(n, false)
	case ast.KindStmtReturn:
		return true, g.genReturn(n)
	case ast.KindStmtDefer:
		g.deferred = append(g.deferred, id)
		return false, nil
	}
	return false, fmt.Errorf("codegen: unhandled statement kind %v", n.Kind)
}

func (g *Generator) genLocalDecl(id ast.ID) error {
	n := g.reg.At(id)
	if n.Kind != ast.KindDeclVar || n.Init == ast.NoID {
		return nil
	}
	addr := g.vars[id]
	v, vt, err := g.genExprValue(n.Init)
	if err != nil {
		return err
	}
	declType, _ := g.table.Get(id)
	v = g.convert(v, vt, declType)
	g.builder.CreateStore(v, addr)
	return nil
}

// genIf wires `then`/optional `else`/`end` exactly as spec.md section 4.8
// describes: condition branches to then/else, and each branch that does not
// terminate flows to end. With an else, end is created only once some
// branch falls through (the teacher's genIf tracks its convergence block
// the same way, as a possibly-nil `conv`), so an if whose branches all
// terminate emits no end block.
func (g *Generator) genIf(n *ast.Node) (bool, error) {
	cond, _, err := g.genExprValue(n.Cond)
	if err != nil {
		return false, err
	}
	thenBlock := llvm.AddBasicBlock(g.curFunc, "")
	var elseBlock, endBlock llvm.BasicBlock
	hasElse := n.Else != ast.NoID
	if hasElse {
		elseBlock = llvm.AddBasicBlock(g.curFunc, "")
		g.builder.CreateCondBr(cond, thenBlock, elseBlock)
	} else {
		endBlock = llvm.AddBasicBlock(g.curFunc, "")
		g.builder.CreateCondBr(cond, thenBlock, endBlock)
	}

	g.builder.SetInsertPointAtEnd(thenBlock)
	thenRet, err := g.genStmt(n.Then)
	if err != nil {
		return false, err
	}
	thenNeedsEnd := !thenRet

	elseRet := true
	if hasElse {
		if thenNeedsEnd {
			endBlock = llvm.AddBasicBlock(g.curFunc, "")
			g.builder.CreateBr(endBlock)
		}
		g.builder.SetInsertPointAtEnd(elseBlock)
		elseRet, err = g.genStmt(n.Else)
		if err != nil {
			return false, err
		}
		if !elseRet {
			if endBlock.IsNil() {
				endBlock = llvm.AddBasicBlock(g.curFunc, "")
			}
			g.builder.CreateBr(endBlock)
		}
	} else {
		if thenNeedsEnd {
			g.builder.CreateBr(endBlock)
		}
		elseRet = false
	}

	if thenNeedsEnd || !elseRet {
		g.builder.SetInsertPointAtEnd(endBlock)
		return false, nil
	}
	// Both branches returned: the whole if terminates, and end is
	// unreachable — do not switch the insert point there.
	return true, nil
}

// genWhile wires `cond`/`loop`/`end`: unconditional branch to cond;
// condition branches to loop or end; loop falls back to cond.
func (g *Generator) genWhile(id ast.ID, n *ast.Node) error {
	condBlock := llvm.AddBasicBlock(g.curFunc, "")
	loopBlock := llvm.AddBasicBlock(g.curFunc, "")
	endBlock := llvm.AddBasicBlock(g.curFunc, "")
	g.loopCond[id] = condBlock
	g.loopEnd[id] = endBlock

	g.builder.CreateBr(condBlock)
	g.builder.SetInsertPointAtEnd(condBlock)
	cond, _, err := g.genExprValue(n.Cond)
	if err != nil {
		return err
	}
	g.builder.CreateCondBr(cond, loopBlock, endBlock)

	g.builder.SetInsertPointAtEnd(loopBlock)
	ret, err := g.genStmt(n.Then)
	if err != nil {
		return err
	}
	if !ret {
		g.builder.CreateBr(condBlock)
	}

	g.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

// genDoWhile wires `loop`/`cond`/`end`: enter loop unconditionally, then
// evaluate cond at the bottom.
func (g *Generator) genDoWhile(id ast.ID, n *ast.Node) error {
	loopBlock := llvm.AddBasicBlock(g.curFunc, "")
	condBlock := llvm.AddBasicBlock(g.curFunc, "")
	endBlock := llvm.AddBasicBlock(g.curFunc, "")
	g.loopCond[id] = condBlock
	g.loopEnd[id] = endBlock

	g.builder.CreateBr(loopBlock)
	g.builder.SetInsertPointAtEnd(loopBlock)
	ret, err := g.genStmt(n.Then)
	if err != nil {
		return err
	}
	if !ret {
		g.builder.CreateBr(condBlock)
	}

	g.builder.SetInsertPointAtEnd(condBlock)
	cond, _, err := g.genExprValue(n.Cond)
	if err != nil {
		return err
	}
	g.builder.CreateCondBr(cond, loopBlock, endBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

// genFor lowers `for x in iter do body` over an array value: cond checks
// the running index against the array length, loop executes body with the
// loop variable loaded from the current element, continuation increments
// the index and branches back to cond.
func (g *Generator) genFor(id ast.ID, n *ast.Node) error {
	iterAddr, iterType, err := g.genExpr(n.ForIter)
	if err != nil {
		return err
	}
	arrType := types.Strip(iterType)

	idxAddr := g.builder.CreateAlloca(llvm.Int32Type(), "")
	g.builder.CreateStore(llvm.ConstInt(llvm.Int32Type(), 0, false), idxAddr)

	condBlock := llvm.AddBasicBlock(g.curFunc, "")
	loopBlock := llvm.AddBasicBlock(g.curFunc, "")
	contBlock := llvm.AddBasicBlock(g.curFunc, "")
	endBlock := llvm.AddBasicBlock(g.curFunc, "")
	g.loopCond[id] = contBlock
	g.loopEnd[id] = endBlock

	g.builder.CreateBr(condBlock)
	g.builder.SetInsertPointAtEnd(condBlock)
	idx := g.builder.CreateLoad(idxAddr, "")
	length := llvm.ConstInt(llvm.Int32Type(), uint64(arrType.Length), false)
	cmp := g.builder.CreateICmp(llvm.IntULT, idx, length, "")
	g.builder.CreateCondBr(cmp, loopBlock, endBlock)

	g.builder.SetInsertPointAtEnd(loopBlock)
	zero := llvm.ConstInt(llvm.Int32Type(), 0, false)
	elemPtr := g.builder.CreateGEP(iterAddr, []llvm.Value{zero, idx}, "")
	g.vars[n.ForVar] = elemPtr
	ret, err := g.genStmt(n.Then)
	if err != nil {
		return err
	}
	if !ret {
		g.builder.CreateBr(contBlock)
	}

	g.builder.SetInsertPointAtEnd(contBlock)
	next := g.builder.CreateAdd(idx, llvm.ConstInt(llvm.Int32Type(), 1, false), "")
	g.builder.CreateStore(next, idxAddr)
	g.builder.CreateBr(condBlock)

	g.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

// genLoop lowers the unconditional `loop` statement: a single basic block
// that always branches back to itself; break/continue are its only exits.
func (g *Generator) genLoop(id ast.ID, n *ast.Node) error {
	loopBlock := llvm.AddBasicBlock(g.curFunc, "")
	endBlock := llvm.AddBasicBlock(g.curFunc, "")
	g.loopCond[id] = loopBlock
	g.loopEnd[id] = endBlock

	g.builder.CreateBr(loopBlock)
	g.builder.SetInsertPointAtEnd(loopBlock)
	ret, err := g.genStmt(n.Then)
	if err != nil {
		return err
	}
	if !ret {
		g.builder.CreateBr(loopBlock)
	}

	g.builder.SetInsertPointAtEnd(endBlock)
	return nil
}

// genBreakContinue branches to the loop target's end (break) or cond
// (continue) block, recorded during that loop's own lowering and looked
// up via the back-pointer src/sema's control-flow pass attached to n.
func (g *Generator) genBreakContinue(n *ast.Node, isBreak bool) (bool, error) {
	var target llvm.BasicBlock
	var ok bool
	if isBreak {
		target, ok = g.loopEnd[n.LoopTarget]
	} else {
		target, ok = g.loopCond[n.LoopTarget]
	}
	if !ok {
		return false, fmt.Errorf("codegen: break/continue with no resolved loop target")
	}
	g.builder.CreateBr(target)
	return true, nil
}

func (g *Generator) genReturn(n *ast.Node) error {
	if n.ReturnOf == ast.NoID {
		g.runDeferred()
		g.builder.CreateRetVoid()
		return nil
	}
	v, vt, err := g.genExprValue(n.ReturnOf)
	if err != nil {
		return err
	}
	v = g.convert(v, vt, g.curRetType)
	g.runDeferred()
	g.builder.CreateRet(v)
	return nil
}
