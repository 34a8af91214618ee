package compiler

import (
	"fmt"
	"os"
	"sync"

	"tauc/src/ast"
	"tauc/src/codegen"
	"tauc/src/diag"
	"tauc/src/lexer"
	"tauc/src/parser"
	"tauc/src/sema"
	"tauc/src/symtab"
	"tauc/src/token"
	"tauc/src/types"
)

// Unit holds every pipeline artifact produced for one source file, passed
// back to cmd/tauc for emission (--dump-tokens/--dump-ast/--emit-ll/etc.).
type Unit struct {
	Path   string
	Tokens []token.Token
	Reg    *ast.Registry
	Root   ast.ID
	Global *symtab.Scope
	Table  *types.Table
	Gen    *codegen.Generator
	Bag    *diag.Bag
}

// Result collects every unit Compile produced, in input order.
type Result struct {
	Units []*Unit
}

// Compile runs the full pipeline over every path in opt.Paths. Each file is
// an independent compilation unit — own token stream, own AST registry, own
// global scope, own diagnostic bag — so units with no cross-references
// beyond the language's own built-in scope fan out across opt.Threads
// goroutines exactly as the teacher's GenLLVM splits work across workers
// with a sync.WaitGroup and a buffered error channel (src/5 concurrency
// model: this schedules independent units, it never mutates one AST from
// more than one goroutine).
func Compile(opt Options) (*Result, error) {
	if len(opt.Paths) == 0 {
		return nil, fmt.Errorf("compiler: no input files")
	}
	threads := opt.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > MaxThreads {
		threads = MaxThreads
	}
	if threads > len(opt.Paths) {
		threads = len(opt.Paths)
	}

	units := make([]*Unit, len(opt.Paths))

	if threads <= 1 {
		for i, path := range opt.Paths {
			u, err := compileUnit(path, opt)
			if err != nil {
				return nil, err
			}
			units[i] = u
		}
		return &Result{Units: units}, nil
	}

	// Parallel: split opt.Paths into threads contiguous batches, the same
	// n/res residual-distribution scheme transform.go's GenLLVM uses to
	// spread root.Children across worker goroutines.
	l := len(opt.Paths)
	n := l / threads
	res := l % threads
	start := 0

	wg := sync.WaitGroup{}
	wg.Add(threads)
	cerr := make(chan error, threads)

	for i := 0; i < threads; i++ {
		end := start + n
		if i < res {
			end++
		}
		go func(start, end int) {
			defer wg.Done()
			for i2 := start; i2 < end; i2++ {
				u, err := compileUnit(opt.Paths[i2], opt)
				if err != nil {
					cerr <- err
					return
				}
				units[i2] = u
			}
		}(start, end)
		start = end
	}

	wg.Wait()
	close(cerr)
	for err := range cerr {
		if err != nil {
			return nil, err
		}
	}
	return &Result{Units: units}, nil
}

// compileUnit drives one file through Lex -> Parse -> NameRes -> TypeCheck
// -> CtrlFlow -> CodeGen, matching the teacher's run(opt) stage ordering in
// src/main.go.
func compileUnit(path string, opt Options) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: reading %s: %w", path, err)
	}

	log := opt.Logger
	if log != nil {
		log.Debugf("compiling %s", path)
	}

	bag := diag.NewBag(0)
	var toks []token.Token
	lexer.Lex(path, string(src), &toks, bag)

	reg := ast.NewRegistry()
	p := parser.New(toks, reg, bag)
	root := parser.ParseProgram(p)

	resolver := sema.NewResolver(reg, bag)
	global := resolver.Resolve(root)

	checker := sema.NewChecker(reg, bag, types.NewBuilder())
	checker.Check(root)

	flow := sema.NewFlowChecker(reg, bag)
	flow.Check(root)

	u := &Unit{
		Path: path, Tokens: toks, Reg: reg, Root: root,
		Global: global, Table: checker.Table(), Bag: bag,
	}

	if bag.HasErrors() {
		if log != nil {
			log.Warnf("%s: %d diagnostics, skipping code generation", path, len(bag.Items()))
		}
		return u, nil
	}

	gen := codegen.New(reg, checker.Table(), bag, moduleNameOf(path))
	gen.SetPointerWidth(opt.PointerWidth())
	if err := gen.Generate(root); err != nil {
		return u, fmt.Errorf("compiler: code generation for %s: %w", path, err)
	}
	u.Gen = gen
	if log != nil {
		log.Debugf("%s: code generation complete", path)
	}
	return u, nil
}

func moduleNameOf(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	return base
}
