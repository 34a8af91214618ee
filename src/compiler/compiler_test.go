package compiler

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

func TestCompileSingleFileSequential(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.tau", `fun main(): i32 { return 0; }`)

	opt := NewOptions()
	opt.Paths = []string{path}

	res, err := Compile(opt)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(res.Units))
	}
	u := res.Units[0]
	if u.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", u.Bag.Items())
	}
	if u.Gen == nil {
		t.Fatalf("expected code generation to have run")
	}
	fn := u.Gen.Module().NamedFunction("main")
	if fn.IsAFunction().IsNil() {
		t.Fatalf("expected main to be declared in the generated module")
	}
}

func TestCompileMultipleFilesParallel(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTemp(t, dir, "a.tau", `fun f(): i32 { return 1; }`),
		writeTemp(t, dir, "b.tau", `fun g(): i32 { return 2; }`),
		writeTemp(t, dir, "c.tau", `fun h(): i32 { return 3; }`),
	}

	opt := NewOptions()
	opt.Paths = paths
	opt.Threads = 3

	res, err := Compile(opt)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(res.Units))
	}
	for i, u := range res.Units {
		if u == nil {
			t.Fatalf("unit %d was never populated", i)
		}
		if u.Bag.HasErrors() {
			t.Fatalf("unit %d: unexpected diagnostics: %v", i, u.Bag.Items())
		}
		if u.Gen == nil {
			t.Fatalf("unit %d: expected code generation to have run", i)
		}
	}
}

func TestCompileReportsDiagnosticsWithoutCodeGen(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.tau", `fun main(): i32 { return undefined_name; }`)

	opt := NewOptions()
	opt.Paths = []string{path}

	res, err := Compile(opt)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	u := res.Units[0]
	if !u.Bag.HasErrors() {
		t.Fatalf("expected an undefined-symbol diagnostic")
	}
	if u.Gen != nil {
		t.Fatalf("expected code generation to be skipped when diagnostics are present")
	}
}

func TestCompileNoInputsIsAnError(t *testing.T) {
	opt := NewOptions()
	if _, err := Compile(opt); err == nil {
		t.Fatalf("expected an error when no input paths are given")
	}
}
