package sema

import (
	"testing"

	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/lexer"
	"tauc/src/parser"
	"tauc/src/symtab"
	"tauc/src/token"
	"tauc/src/types"
)

// compile runs every pass up through control-flow over src, returning the
// populated registries/tables for assertions.
func compile(t *testing.T, src string) (*ast.Registry, ast.ID, *diag.Bag, *symtab.Scope, *types.Table) {
	t.Helper()
	var toks []token.Token
	bag := diag.NewBag(0)
	lexer.Lex("test.tau", src, &toks, bag)
	reg := ast.NewRegistry()
	p := parser.New(toks, reg, bag)
	root := parser.ParseProgram(p)

	r := NewResolver(reg, bag)
	global := r.Resolve(root)

	checker := NewChecker(reg, bag, types.NewBuilder())
	checker.Check(root)

	flow := NewFlowChecker(reg, bag)
	flow.Check(root)

	return reg, root, bag, global, checker.Table()
}

func findKind(bag *diag.Bag, kind diag.Kind) (diag.Diagnostic, bool) {
	for _, d := range bag.Items() {
		if d.Kind == kind {
			return d, true
		}
	}
	return diag.Diagnostic{}, false
}

// Scenario 1: arithmetic and promotion.
func TestArithmeticAndPromotion(t *testing.T) {
	reg, root, bag, _, table := compile(t, `fun main(): i32 { var x: i64 = 1; var y: i32 = 2; return (x + y) as i32; }`)
	for _, d := range bag.Items() {
		if d.Kind.Severity() == diag.SeverityError {
			t.Fatalf("unexpected error: %v", d)
		}
	}
	if _, found := findKind(bag, diag.KindMismatchedSignedness); found {
		t.Fatalf("did not expect a signedness warning for same-signedness operands")
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	// children[2] is `return (x + y) as i32;`
	ret := reg.At(block.Children[2])
	cast := reg.At(ret.ReturnOf)
	addExpr := reg.At(cast.Children[0])
	addType, ok := table.Get(addExpr.ID)
	if !ok || addType.Kind != types.KindI64 {
		t.Fatalf("expected x + y to have type i64, got %v", addType)
	}
}

// Scenario 2: break outside loop.
func TestBreakOutsideLoop(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun main(): unit { if true then break; }`)
	if _, found := findKind(bag, diag.KindBreakOutsideLoop); !found {
		t.Fatalf("expected a BreakOutsideLoop diagnostic")
	}
}

// Scenario 3: shadowing.
func TestShadowing(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun f(): unit { var x: i32 = 0; { var x: i32 = 1; } }`)
	d, found := findKind(bag, diag.KindShadowedSymbol)
	if !found {
		t.Fatalf("expected a ShadowedSymbol warning")
	}
	if d.Secondary == nil {
		t.Fatalf("expected ShadowedSymbol to carry a secondary location")
	}
}

// Scenario 4: optional unwrap.
func TestOptionalUnwrap(t *testing.T) {
	reg, root, bag, _, table := compile(t, `fun main(): i32 { var o: ?i32 = null; return o!; }`)
	for _, d := range bag.Items() {
		if d.Kind.Severity() == diag.SeverityError {
			t.Fatalf("unexpected error: %v", d)
		}
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	ret := reg.At(block.Children[1])
	unwrap := reg.At(ret.ReturnOf)
	if unwrap.Kind != ast.KindExprUnwrap {
		t.Fatalf("expected an ExprUnwrap node, got %v", unwrap.Kind)
	}
	ut, ok := table.Get(unwrap.ID)
	if !ok || ut.Kind != types.KindI32 {
		t.Fatalf("expected o! to have type i32, got %v", ut)
	}
}

// Scenario 5: member access on union.
func TestMemberAccessOnUnion(t *testing.T) {
	_, _, bag, _, _ := compile(t, `union U { a: i32; b: f32; } fun main(): unit { var u: U; u.c; }`)
	d, found := findKind(bag, diag.KindNoMember)
	if !found {
		t.Fatalf("expected a NoMember diagnostic")
	}
	if d.Primary.Text() != "c" {
		t.Fatalf("expected NoMember to point at 'c', got %q", d.Primary.Text())
	}
}

// Scenario 6: symbol collision.
func TestSymbolCollision(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun f(): unit {} fun f(): unit {}`)
	d, found := findKind(bag, diag.KindSymbolCollision)
	if !found {
		t.Fatalf("expected a SymbolCollision diagnostic")
	}
	if d.Secondary == nil {
		t.Fatalf("expected SymbolCollision to carry a secondary location")
	}
}

func TestUndefinedSymbol(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun f(): unit { return y; }`)
	if _, found := findKind(bag, diag.KindUndefinedSymbol); !found {
		t.Fatalf("expected an UndefinedSymbol diagnostic")
	}
}

func TestContinueOutsideLoopAndReturnInsideDefer(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun f(): unit { continue; }`)
	if _, found := findKind(bag, diag.KindContinueOutsideLoop); !found {
		t.Fatalf("expected a ContinueOutsideLoop diagnostic")
	}

	_, _, bag2, _, _ := compile(t, `fun g(): unit { while true do { defer return; } }`)
	if _, found := findKind(bag2, diag.KindReturnInsideDefer); !found {
		t.Fatalf("expected a ReturnInsideDefer diagnostic")
	}
}

func TestLoopBackPointer(t *testing.T) {
	reg, root, bag, _, _ := compile(t, `fun f(): unit { while true do { break; } }`)
	for _, d := range bag.Items() {
		if d.Kind.Severity() == diag.SeverityError {
			t.Fatalf("unexpected error: %v", d)
		}
	}
	fn := reg.At(reg.At(root).Children[0])
	block := reg.At(fn.Body)
	loop := reg.At(block.Children[0])
	inner := reg.At(loop.Then)
	brk := reg.At(inner.Children[0])
	if brk.LoopTarget != loop.ID {
		t.Fatalf("expected break's LoopTarget to point at the enclosing while, got %v want %v", brk.LoopTarget, loop.ID)
	}
}

func TestFunctionCallArityAndArgumentType(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun add(a: i32, b: i32): i32 { return a + b; } fun main(): i32 { return add(1, 2, 3); }`)
	if _, found := findKind(bag, diag.KindTooManyFunctionParameters); !found {
		t.Fatalf("expected a TooManyFunctionParameters diagnostic")
	}
}

func TestAssignmentRequiresMutableReference(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun f(): unit { var x: mut i32 = 0; x = 1; }`)
	for _, d := range bag.Items() {
		if d.Kind.Severity() == diag.SeverityError {
			t.Fatalf("unexpected error assigning to a declared var: %v", d)
		}
	}
}

func TestMutualRecursionResolves(t *testing.T) {
	_, _, bag, _, _ := compile(t, `fun isEven(n: i32): bool { return n == 0; } fun isOdd(n: i32): bool { return isEven(n); }`)
	if _, found := findKind(bag, diag.KindUndefinedSymbol); found {
		t.Fatalf("mutually referencing top-level functions should resolve without UndefinedSymbol")
	}
}
