// Package codegen lowers a resolved, type-checked, control-flow-validated
// AST to LLVM IR, grounded on the teacher's src/ir/llvm/transform.go
// (context/builder/module setup, genFuncHeader/genFuncBody split,
// genType), generalized from VSL's two-datatype (int/float) lowering to
// tau's full type-descriptor-driven lowering per spec.md section 4.8.
package codegen

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/types"
)

// reservedFunctionNames cannot be declared by tau source, mirroring the
// teacher's reservedFunctionNames list (there: main/printf/atof/atoi; here:
// the runtime helper codegen itself emits).
var reservedFunctionNames = []string{"exit"}

// Generator lowers one compilation unit's AST to a single LLVM module. It
// is the context object spec.md section 4.8 describes as
// { typetable, llvm_context, llvm_data_layout, llvm_module, llvm_builder,
// current_function }.
type Generator struct {
	reg   *ast.Registry
	table *types.Table
	bag   *diag.Bag

	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder

	ptrBits int // pointer width in bits, set from the target data layout.

	funcs  map[ast.ID]llvm.Value // DeclFun -> function value, module-wide.
	gvars  map[ast.ID]llvm.Value // module-scope DeclVar -> global value.
	vars   map[ast.ID]llvm.Value // current function's locals/params, by DeclID.
	named  map[ast.ID]llvm.Type  // struct/union nominal LLVM types, by declaring node.

	curFunc    llvm.Value
	curRetType *types.Type
	deferred   []ast.ID // DeferOf statement ids registered in the current function, LIFO.

	loopCond map[ast.ID]llvm.BasicBlock // loop node -> `continue` target.
	loopEnd  map[ast.ID]llvm.BasicBlock // loop node -> `break` target.

	exitFn llvm.Value // lazily declared `exit(i32): unit` used by safe unwrap.
}

// New creates a Generator over reg/table, writing diagnostics (fatal LLVM
// construction issues only — type errors were already reported by sema) to
// bag. moduleName names the resulting LLVM module.
func New(reg *ast.Registry, table *types.Table, bag *diag.Bag, moduleName string) *Generator {
	ctx := llvm.NewContext()
	g := &Generator{
		reg:      reg,
		table:    table,
		bag:      bag,
		ctx:      ctx,
		mod:      ctx.NewModule(moduleName),
		builder:  ctx.NewBuilder(),
		ptrBits:  64,
		funcs:    make(map[ast.ID]llvm.Value),
		gvars:    make(map[ast.ID]llvm.Value),
		named:    make(map[ast.ID]llvm.Type),
		loopCond: make(map[ast.ID]llvm.BasicBlock),
		loopEnd:  make(map[ast.ID]llvm.BasicBlock),
	}
	return g
}

// SetPointerWidth configures the width used to lower isize/usize and
// pointer types; callers set this from the target data layout before
// calling Generate. Defaults to 64 if never called.
func (g *Generator) SetPointerWidth(bits int) {
	if bits > 0 {
		g.ptrBits = bits
	}
}

// Module returns the generated module. Valid after Generate returns nil.
func (g *Generator) Module() llvm.Module { return g.mod }

// Dispose releases the generator's LLVM context resources.
func (g *Generator) Dispose() {
	g.builder.Dispose()
	g.mod.Dispose()
	g.ctx.Dispose()
}

// Generate lowers every top-level declaration under root, in two passes:
// headers (function prototypes and global variables) first so mutually
// and forward-referencing top-level declarations resolve regardless of
// textual order, then bodies — mirroring genFuncHeader/genFuncBody's
// split in the teacher.
func (g *Generator) Generate(root ast.ID) error {
	prog := g.reg.At(root)
	for _, id := range prog.Children {
		if err := g.declareTop(id); err != nil {
			return err
		}
	}
	for _, id := range prog.Children {
		if err := g.defineTop(id); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) declareTop(id ast.ID) error {
	if id == ast.NoID {
		return nil
	}
	n := g.reg.At(id)
	switch n.Kind {
	case ast.KindDeclFun:
		return g.declareFunc(id, n)
	case ast.KindDeclVar:
		return g.declareGlobalVar(id, n)
	case ast.KindDeclMod:
		for _, d := range n.ModDecls {
			if err := g.declareTop(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) defineTop(id ast.ID) error {
	if id == ast.NoID {
		return nil
	}
	n := g.reg.At(id)
	switch n.Kind {
	case ast.KindDeclFun:
		if n.Body != ast.NoID {
			return g.genFuncBody(id, n)
		}
	case ast.KindDeclMod:
		for _, d := range n.ModDecls {
			if err := g.defineTop(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) declareFunc(id ast.ID, n *ast.Node) error {
	for _, r := range reservedFunctionNames {
		if r == n.Name {
			return fmt.Errorf("%q is a reserved function name", n.Name)
		}
	}
	t, ok := g.table.Get(id)
	if !ok || t.Kind != types.KindFun {
		return fmt.Errorf("function %q has no recorded signature", n.Name)
	}
	ftyp := g.llvmFuncType(t)
	fn := llvm.AddFunction(g.mod, n.Name, ftyp)
	for i, p := range n.Params {
		fn.Param(i).SetName(g.reg.At(p).Name)
	}
	g.funcs[id] = fn
	return nil
}

func (g *Generator) declareGlobalVar(id ast.ID, n *ast.Node) error {
	t, ok := g.table.Get(n.VarType)
	if !ok {
		if dt, ok2 := g.table.Get(id); ok2 {
			t = types.Strip(dt)
		}
	}
	if t == nil {
		return fmt.Errorf("global %q has no recorded type", n.Name)
	}
	lt := g.llvmType(t)
	gv := llvm.AddGlobal(g.mod, lt, n.Name)
	gv.SetInitializer(llvm.ConstNull(lt))
	g.gvars[id] = gv
	return nil
}

// genFuncBody builds the entry block, allocates stack slots for every
// parameter and local `var` declaration up-front (spec.md section 4.8,
// "allocate stack slots for parameters and var declarations at entry"),
// then lowers the body and appends an implicit `unit` return if the body
// fell through without one.
func (g *Generator) genFuncBody(id ast.ID, n *ast.Node) error {
	fn := g.funcs[id]
	sig, _ := g.table.Get(id)

	g.curFunc = fn
	g.curRetType = sig.Return
	g.vars = make(map[ast.ID]llvm.Value)
	g.deferred = nil

	entry := llvm.AddBasicBlock(fn, "entry")
	g.builder.SetInsertPointAtEnd(entry)

	for i, p := range n.Params {
		pn := g.reg.At(p)
		pt, _ := g.table.Get(pn.VarType)
		lt := g.llvmType(pt)
		alloc := g.builder.CreateAlloca(lt, pn.Name)
		g.builder.CreateStore(fn.Param(i), alloc)
		g.vars[p] = alloc
	}
	g.hoistLocals(n.Body)

	ret, err := g.genStmt(n.Body)
	if err != nil {
		return err
	}
	if !ret {
		g.runDeferred()
		if sig.Return != nil && sig.Return.Kind == types.KindUnit {
			g.builder.CreateRetVoid()
		} else {
			g.builder.CreateRet(llvm.ConstNull(g.llvmType(sig.Return)))
		}
	}
	return nil
}

// hoistLocals walks body collecting every DeclVar (not parameters, which
// declareFunc/genFuncBody already handles) and allocates its stack slot in
// the current (entry) block before any statement executes.
func (g *Generator) hoistLocals(id ast.ID) {
	if id == ast.NoID {
		return
	}
	n := g.reg.At(id)
	switch n.Kind {
	case ast.KindDeclVar:
		t, ok := g.table.Get(id)
		if !ok {
			return
		}
		base := types.Strip(t)
		lt := g.llvmType(base)
		g.vars[id] = g.builder.CreateAlloca(lt, n.Name)
		return
	case ast.KindStmtFor:
		g.hoistLocals(n.ForVar)
		g.hoistLocals(n.Then)
		return
	case ast.KindStmtIf, ast.KindStmtWhile, ast.KindStmtDoWhile, ast.KindStmtLoop:
		g.hoistLocals(n.Then)
		g.hoistLocals(n.Else)
		return
	case ast.KindStmtDefer:
		g.hoistLocals(n.DeferOf)
		return
	}
	if n.Kind.IsStmt() || n.Kind == ast.KindProg {
		for _, c := range n.Children {
			g.hoistLocals(c)
		}
	}
}

// exitDecl lazily declares the external `exit` function used by safe
// optional unwrap's abort path.
func (g *Generator) exitDecl() llvm.Value {
	if !g.exitFn.IsNil() {
		return g.exitFn
	}
	ftyp := llvm.FunctionType(llvm.VoidType(), []llvm.Type{llvm.Int32Type()}, false)
	g.exitFn = llvm.AddFunction(g.mod, "exit", ftyp)
	return g.exitFn
}

// runDeferred emits every registered deferred statement in reverse
// (last-registered-first) order, the exit-scope semantics spec.md section
// 4.5's defer/return interaction implies: defers fire in LIFO order
// wherever control leaves the function.
func (g *Generator) runDeferred() {
	for i := len(g.deferred) - 1; i >= 0; i-- {
		n := g.reg.At(g.deferred[i])
		_, _ = g.genStmt(n.DeferOf)
	}
}
