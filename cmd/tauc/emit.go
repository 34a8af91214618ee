package main

import (
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"

	"tauc/src/compiler"
)

// emitNative writes --emit-bc/--emit-obj/--emit-asm output, grounded
// directly on the teacher's genTargetTriple + CreateTargetMachine +
// EmitToMemoryBuffer sequence in src/ir/llvm/transform.go, generalized to
// the three output kinds (bitcode needs no target machine; object/assembly
// both go through EmitToFile, differing only in CodeGenFileType).
func emitNative(u *compiler.Unit, opt compiler.Options) error {
	mod := u.Gen.Module()

	if opt.EmitBC {
		if err := llvm.WriteBitcodeToFile(mod, u.Path+".bc"); err != nil {
			return fmt.Errorf("tauc: writing %s.bc: %w", u.Path, err)
		}
	}
	if !opt.EmitObj && !opt.EmitAsm {
		return nil
	}

	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()
	llvm.InitializeAllTargets()

	triple := targetTriple(opt)
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return fmt.Errorf("tauc: resolving target triple %q: %w", triple, err)
	}

	tm := target.CreateTargetMachine(triple, "generic", "",
		llvm.CodeGenLevelNone, llvm.RelocDefault, llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()
	mod.SetDataLayout(td.String())
	mod.SetTarget(tm.Triple())

	if opt.EmitObj {
		if err := tm.EmitToFile(mod, u.Path+".obj", llvm.ObjectFile); err != nil {
			return fmt.Errorf("tauc: emitting %s.obj: %w", u.Path, err)
		}
	}
	if opt.EmitAsm {
		if err := tm.EmitToFile(mod, u.Path+".asm", llvm.AssemblyFile); err != nil {
			return fmt.Errorf("tauc: emitting %s.asm: %w", u.Path, err)
		}
	}
	return nil
}

// targetTriple builds an LLVM target triple string from opt's target
// fields, falling back to the host default when no architecture was given
// — the same fallback-to-host behavior as the teacher's genTargetTriple.
func targetTriple(opt compiler.Options) string {
	if opt.TargetArch == compiler.ArchUnknown {
		return llvm.DefaultTargetTriple()
	}

	sb := strings.Builder{}
	switch opt.TargetArch {
	case compiler.ArchAarch64:
		sb.WriteString("aarch64")
	case compiler.ArchRiscv64:
		sb.WriteString("riscv64")
	default:
		sb.WriteString("x86_64")
	}
	sb.WriteRune('-')

	switch opt.TargetVendor {
	case compiler.VendorApple:
		sb.WriteString("apple")
	default:
		sb.WriteString("pc")
	}
	sb.WriteRune('-')

	switch opt.TargetOS {
	case compiler.OSWindows:
		sb.WriteString("win32")
	case compiler.OSDarwin:
		sb.WriteString("darwin")
	default:
		sb.WriteString("linux")
	}
	sb.WriteRune('-')
	sb.WriteString("gnu")

	return sb.String()
}
