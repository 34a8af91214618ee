package parser

import (
	"testing"

	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/lexer"
	"tauc/src/token"
)

func parse(t *testing.T, src string) (*ast.Registry, ast.ID, *diag.Bag) {
	t.Helper()
	var toks []token.Token
	bag := diag.NewBag(0)
	lexer.Lex("test.tau", src, &toks, bag)
	reg := ast.NewRegistry()
	p := New(toks, reg, bag)
	root := ParseProgram(p)
	return reg, root, bag
}

func TestParseSimpleFunction(t *testing.T) {
	reg, root, bag := parse(t, `fun main(): i32 { return 0; }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	prog := reg.At(root)
	if len(prog.Children) != 1 {
		t.Fatalf("expected one top-level decl, got %d", len(prog.Children))
	}
	fn := reg.At(prog.Children[0])
	if fn.Kind != ast.KindDeclFun || fn.Name != "main" {
		t.Fatalf("expected DeclFun main, got %v %q", fn.Kind, fn.Name)
	}
	if fn.Body == ast.NoID {
		t.Fatalf("expected a function body")
	}
}

func TestParseVarWithInit(t *testing.T) {
	reg, root, bag := parse(t, `fun f(): unit { var x: i32 = 1 + 2 * 3; }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	stmt := reg.At(block.Children[0])
	v := reg.At(stmt.Children[0])
	if v.Kind != ast.KindDeclVar || v.Name != "x" {
		t.Fatalf("expected DeclVar x, got %v", v)
	}
	initNode := reg.At(v.Init)
	if initNode.Kind != ast.KindExprOpBin || initNode.Op != ast.OpAdd {
		t.Fatalf("expected outer op to be +, got %v", initNode.Op)
	}
	rhs := reg.At(initNode.Children[1])
	if rhs.Kind != ast.KindExprOpBin || rhs.Op != ast.OpMul {
		t.Fatalf("expected * to bind tighter than +, got rhs kind %v op %v", rhs.Kind, rhs.Op)
	}
}

func TestParseCallAndMemberAccess(t *testing.T) {
	reg, root, bag := parse(t, `fun f(): unit { g(a, b.c); }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	stmt := reg.At(block.Children[0])
	call := reg.At(stmt.Children[0])
	if call.Kind != ast.KindExprCall || call.Op != ast.OpCall {
		t.Fatalf("expected a call expression, got %v", call)
	}
	if len(call.Children) != 3 { // callee, a, b.c
		t.Fatalf("expected callee + 2 args, got %d children", len(call.Children))
	}
	access := reg.At(call.Children[2])
	if access.Kind != ast.KindExprAccess || access.Op != ast.OpAccess || access.Member != "c" {
		t.Fatalf("expected access .c, got %v", access)
	}
}

func TestParseIfThenElse(t *testing.T) {
	reg, root, bag := parse(t, `fun f(): unit { if true then return; else return; }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	ifStmt := reg.At(block.Children[0])
	if ifStmt.Kind != ast.KindStmtIf || ifStmt.Then == ast.NoID || ifStmt.Else == ast.NoID {
		t.Fatalf("expected a fully-populated if/then/else, got %v", ifStmt)
	}
}

func TestParseForLoop(t *testing.T) {
	reg, root, bag := parse(t, `fun f(): unit { for x in xs do break; }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	forStmt := reg.At(block.Children[0])
	if forStmt.Kind != ast.KindStmtFor {
		t.Fatalf("expected StmtFor, got %v", forStmt.Kind)
	}
	if reg.At(forStmt.ForVar).Name != "x" {
		t.Fatalf("expected loop var x")
	}
}

func TestParseStructAndCast(t *testing.T) {
	reg, root, bag := parse(t, `struct P { x: i32; y: i32; } fun f(): unit { var p: P; (p.x as i64); }`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	s := reg.At(reg.At(root).Children[0])
	if s.Kind != ast.KindDeclStruct || len(s.Members) != 2 {
		t.Fatalf("expected struct with 2 members, got %v", s)
	}
}

func TestDefaultParameterOrderError(t *testing.T) {
	_, _, bag := parse(t, `fun f(a: i32 = 1, b: i32): unit {}`)
	found := false
	for _, d := range bag.Items() {
		if d.Kind == diag.KindDefaultParameterOrder {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DefaultParameterOrder diagnostic")
	}
}

func TestParseArrayAndPointerTypes(t *testing.T) {
	reg, root, bag := parse(t, `fun f(a: *i32, b: [4]i32): unit {}`)
	for _, d := range bag.Items() {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	fn := reg.At(reg.At(root).Children[0])
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	ptrType := reg.At(reg.At(fn.Params[0]).VarType)
	if ptrType.Kind != ast.KindTypePtr {
		t.Fatalf("expected TypePtr, got %v", ptrType.Kind)
	}
	arrType := reg.At(reg.At(fn.Params[1]).VarType)
	if arrType.Kind != ast.KindTypeArray {
		t.Fatalf("expected TypeArray, got %v", arrType.Kind)
	}
}
