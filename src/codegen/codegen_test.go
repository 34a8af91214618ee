package codegen

import (
	"testing"

	"tauc/src/ast"
	"tauc/src/diag"
	"tauc/src/lexer"
	"tauc/src/parser"
	"tauc/src/sema"
	"tauc/src/token"
	"tauc/src/types"
)

// compile runs the full front-end pipeline through control-flow checking,
// then lowers the result to LLVM IR, returning the Generator for assertions.
func compile(t *testing.T, src string) (*Generator, *diag.Bag) {
	t.Helper()
	var toks []token.Token
	bag := diag.NewBag(0)
	lexer.Lex("test.tau", src, &toks, bag)
	reg := ast.NewRegistry()
	p := parser.New(toks, reg, bag)
	root := parser.ParseProgram(p)

	r := sema.NewResolver(reg, bag)
	r.Resolve(root)

	checker := sema.NewChecker(reg, bag, types.NewBuilder())
	checker.Check(root)

	flow := sema.NewFlowChecker(reg, bag)
	flow.Check(root)

	if bag.HasErrors() {
		t.Fatalf("unexpected front-end errors: %v", bag.Items())
	}

	g := New(reg, checker.Table(), bag, "test")
	if err := g.Generate(root); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return g, bag
}

func TestSimpleFunctionDeclared(t *testing.T) {
	g, _ := compile(t, `fun main(): i32 { return 0; }`)
	defer g.Dispose()

	fn := g.Module().NamedFunction("main")
	if fn.IsAFunction().IsNil() {
		t.Fatalf("expected main to be declared as a function")
	}
	if fn.FirstBasicBlock().IsNil() {
		t.Fatalf("expected main to have a body")
	}
}

func TestExternFunctionHasNoBody(t *testing.T) {
	g, _ := compile(t, `fun exit2(code: i32): unit; fun main(): i32 { return 0; }`)
	defer g.Dispose()

	fn := g.Module().NamedFunction("exit2")
	if fn.IsAFunction().IsNil() {
		t.Fatalf("expected exit2 to be declared")
	}
	if !fn.FirstBasicBlock().IsNil() {
		t.Fatalf("expected exit2 to have no body")
	}
}

func TestGlobalVariableDeclared(t *testing.T) {
	g, _ := compile(t, `var counter: i32 = 0; fun main(): i32 { return counter; }`)
	defer g.Dispose()

	gv := g.Module().NamedGlobal("counter")
	if gv.IsNil() {
		t.Fatalf("expected counter to be declared as a global")
	}
}

func TestForwardReferencingFunctionsBothResolve(t *testing.T) {
	g, _ := compile(t, `
		fun even(n: i32): bool { if n == 0 then { return true; } return odd(n - 1); }
		fun odd(n: i32): bool { if n == 0 then { return false; } return even(n - 1); }
	`)
	defer g.Dispose()

	even := g.Module().NamedFunction("even")
	odd := g.Module().NamedFunction("odd")
	if even.IsAFunction().IsNil() || odd.IsAFunction().IsNil() {
		t.Fatalf("expected both mutually-referencing functions to be declared")
	}
}

func TestIfWithReturningBranchesDoesNotLeaveDanglingBlock(t *testing.T) {
	g, _ := compile(t, `
		fun abs(n: i32): i32 {
			if n < 0 then { return 0 - n; } else { return n; }
		}
	`)
	defer g.Dispose()

	fn := g.Module().NamedFunction("abs")
	if fn.IsAFunction().IsNil() {
		t.Fatalf("expected abs to be declared")
	}
}

func TestWhileLoopWithBreakCompiles(t *testing.T) {
	g, _ := compile(t, `
		fun sum(n: i32): i32 {
			var i: mut i32 = 0;
			var total: mut i32 = 0;
			while i < n do {
				if i == 5 then { break; }
				total = total + i;
				i = i + 1;
			}
			return total;
		}
	`)
	defer g.Dispose()

	fn := g.Module().NamedFunction("sum")
	if fn.IsAFunction().IsNil() {
		t.Fatalf("expected sum to be declared")
	}
}

func TestReservedFunctionNameRejected(t *testing.T) {
	var toks []token.Token
	bag := diag.NewBag(0)
	lexer.Lex("test.tau", `fun exit(code: i32): unit { return; }`, &toks, bag)
	reg := ast.NewRegistry()
	p := parser.New(toks, reg, bag)
	root := parser.ParseProgram(p)

	r := sema.NewResolver(reg, bag)
	r.Resolve(root)
	checker := sema.NewChecker(reg, bag, types.NewBuilder())
	checker.Check(root)
	sema.NewFlowChecker(reg, bag).Check(root)

	g := New(reg, checker.Table(), bag, "test")
	defer g.Dispose()
	if err := g.Generate(root); err == nil {
		t.Fatalf("expected an error declaring a function named exit")
	}
}
