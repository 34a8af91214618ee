// Package compiler orchestrates the front-end pipeline (lex, parse, name
// resolution, type check, control-flow check, code generation) over one or
// more source files, generalized from the teacher's src/main.go run(opt)
// staged-pipeline shape and its opt.Threads worker-pool split in
// src/ir/llvm/transform.go's GenLLVM, moved here from per-function fan-out
// within one file to per-file fan-out across independent compilation units.
package compiler

import "go.uber.org/zap"

// Target architecture/OS/vendor enums, carried over from the teacher's
// util.Options integer enums (TargetArch/TargetOS/TargetVendor) verbatim in
// spirit: a small closed set of triple components the code generator's
// pointer-width and calling-convention choices key off of.
const (
	ArchUnknown = iota
	ArchX86_64
	ArchAarch64
	ArchRiscv64
)

const (
	OSUnknown = iota
	OSLinux
	OSWindows
	OSDarwin
)

const (
	VendorUnknown = iota
	VendorPC
	VendorApple
)

// MaxThreads bounds the worker count fan-out, mirroring the teacher's
// util.maxThreads guard.
const MaxThreads = 64

// Options configures a Compile run: which files to build, the target
// triple, how many units to process concurrently, and what the front-end
// should emit.
type Options struct {
	Paths []string // Source file paths; each compiled as an independent unit.

	Threads int // Worker count for independent-unit fan-out; <=1 runs sequentially.

	TargetArch   int
	TargetOS     int
	TargetVendor int

	DumpTokens bool
	DumpAST    bool
	EmitLL     bool
	EmitBC     bool
	EmitObj    bool
	EmitAsm    bool

	OutDir string // Not consulted when emitting: every artifact is written next to its input file.

	Logger *zap.SugaredLogger // Verbose/log-level output; never nil, see NewOptions.
}

// NewOptions returns Options with a no-op logger and a single worker,
// matching the teacher's util.Options zero value (Threads defaults to 0,
// treated as 1 by Compile).
func NewOptions() Options {
	return Options{Threads: 1, Logger: zap.NewNop().Sugar()}
}

// PointerWidth returns the pointer width in bits implied by TargetArch, the
// value src/codegen.Generator.SetPointerWidth is configured with.
func (o Options) PointerWidth() int {
	switch o.TargetArch {
	case ArchX86_64, ArchAarch64, ArchRiscv64:
		return 64
	default:
		return 64
	}
}
