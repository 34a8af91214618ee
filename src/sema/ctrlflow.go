package sema

import (
	"tauc/src/ast"
	"tauc/src/diag"
)

// stackEntry is one frame of the control-flow pass's statement stack:
// either a loop (break/continue target) or a defer (return barrier), per
// spec.md section 4.7.
type stackEntry struct {
	node   ast.ID
	isLoop bool
}

// FlowChecker runs the control-flow pass: it enforces that break/continue
// appear inside a loop and that return does not escape through a defer,
// recording a back-pointer from break/continue to their enclosing loop so
// code generation can find the right basic blocks without re-walking the
// tree.
type FlowChecker struct {
	reg   *ast.Registry
	bag   *diag.Bag
	stack []stackEntry
}

// NewFlowChecker creates a FlowChecker writing diagnostics to bag.
func NewFlowChecker(reg *ast.Registry, bag *diag.Bag) *FlowChecker {
	return &FlowChecker{reg: reg, bag: bag}
}

// Check walks every top-level function body under root.
func (f *FlowChecker) Check(root ast.ID) {
	for _, id := range f.reg.At(root).Children {
		f.visitDecl(id)
	}
}

func (f *FlowChecker) visitDecl(id ast.ID) {
	if id == ast.NoID {
		return
	}
	n := f.reg.At(id)
	switch n.Kind {
	case ast.KindDeclFun:
		if n.Body != ast.NoID {
			// A nested function's break/continue/return must not resolve
			// against the loop/defer frames of whatever encloses its
			// declaration, so the stack resets for its own body.
			saved := f.stack
			f.stack = nil
			f.visitStmt(n.Body)
			f.stack = saved
		}
	case ast.KindDeclMod:
		for _, d := range n.ModDecls {
			f.visitDecl(d)
		}
	}
}

func (f *FlowChecker) push(entry stackEntry) { f.stack = append(f.stack, entry) }
func (f *FlowChecker) pop()                  { f.stack = f.stack[:len(f.stack)-1] }

// nearestLoop returns the id of the innermost loop frame on the stack, or
// ast.NoID if none exists.
func (f *FlowChecker) nearestLoop() ast.ID {
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].isLoop {
			return f.stack[i].node
		}
	}
	return ast.NoID
}

// insideDefer reports whether any enclosing statement stack frame is a
// defer — a return reached from within one is always illegal, per
// spec.md section 4.5's "within a defer, enclosed returns are illegal".
func (f *FlowChecker) insideDefer() bool {
	for _, e := range f.stack {
		if !e.isLoop {
			return true
		}
	}
	return false
}

func (f *FlowChecker) visitStmt(id ast.ID) {
	if id == ast.NoID {
		return
	}
	n := f.reg.At(id)
	switch n.Kind {
	case ast.KindStmtBlock:
		for _, c := range n.Children {
			if c == ast.NoID {
				continue
			}
			if f.reg.At(c).Kind.IsDecl() {
				f.visitDecl(c)
				continue
			}
			f.visitStmt(c)
		}
	case ast.KindStmtIf:
		f.visitStmt(n.Then)
		f.visitStmt(n.Else)
	case ast.KindStmtWhile, ast.KindStmtDoWhile, ast.KindStmtFor, ast.KindStmtLoop:
		f.push(stackEntry{node: id, isLoop: true})
		f.visitStmt(n.Then)
		f.pop()
	case ast.KindStmtBreak:
		f.resolveLoopTarget(n, diag.KindBreakOutsideLoop)
	case ast.KindStmtContinue:
		f.resolveLoopTarget(n, diag.KindContinueOutsideLoop)
	case ast.KindStmtReturn:
		if f.insideDefer() {
			f.bag.Errorf(diag.KindReturnInsideDefer, n.Tok.Loc, "return is not allowed inside a defer")
		}
	case ast.KindStmtDefer:
		f.push(stackEntry{node: id, isLoop: false})
		f.visitStmt(n.DeferOf)
		f.pop()
	}
}

func (f *FlowChecker) resolveLoopTarget(n *ast.Node, kind diag.Kind) {
	target := f.nearestLoop()
	if target == ast.NoID {
		verb := "break"
		if kind == diag.KindContinueOutsideLoop {
			verb = "continue"
		}
		f.bag.Errorf(kind, n.Tok.Loc, "%s outside of a loop", verb)
		return
	}
	n.LoopTarget = target
}
