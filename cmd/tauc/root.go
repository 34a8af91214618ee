// Command tauc is the tau compiler driver: a cobra command wiring the
// src/compiler pipeline to a CLI surface, grounded on the teacher's
// util.Options flag semantics (target triple, thread count, verbose, token
// stream) and on MadAppGang/dingo's cobra+zap+BurntSushi/toml ambient stack
// (the only compiler-shaped project in the retrieval pack with a real
// third-party CLI/logging/config stack) for *how* those flags are wired.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tauc/src/compiler"
)

const version = "tauc 0.1"

// config is the optional tauc.toml project file shape (section 6.3):
// arch/os/vendor/threads/log-level defaults, overridden by explicit flags.
type config struct {
	Arch     string `toml:"arch"`
	OS       string `toml:"os"`
	Vendor   string `toml:"vendor"`
	Threads  int    `toml:"threads"`
	LogLevel int    `toml:"log-level"`
}

// flags holds the cobra-parsed command-line state before it is resolved
// into compiler.Options.
type flags struct {
	verbose     bool
	logLevel    int
	dumpTokens  bool
	dumpAST     bool
	emitLL      bool
	emitBC      bool
	emitObj     bool
	emitAsm     bool
	arch        string
	os          string
	vendor      string
	threads     int
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:     "tauc [files...]",
		Short:   "Compile tau source files to LLVM IR",
		Version: version,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, f)
		},
	}

	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.Flags().IntVar(&f.logLevel, "log-level", int(zapcore.InfoLevel), "zap log level (-1 debug ... 5 fatal)")
	cmd.Flags().BoolVar(&f.dumpTokens, "dump-tokens", false, "write <input>.tokens.json")
	cmd.Flags().BoolVar(&f.dumpAST, "dump-ast", false, "write <input>.ast.json")
	cmd.Flags().BoolVar(&f.emitLL, "emit-ll", false, "write <input>.ll (LLVM IR text)")
	cmd.Flags().BoolVar(&f.emitBC, "emit-bc", false, "write <input>.bc (LLVM bitcode)")
	cmd.Flags().BoolVar(&f.emitObj, "emit-obj", false, "write <input>.obj (native object)")
	cmd.Flags().BoolVar(&f.emitAsm, "emit-asm", false, "write <input>.asm (native assembly)")
	cmd.Flags().StringVar(&f.arch, "arch", "x86_64", "target architecture (x86_64, aarch64, riscv64)")
	cmd.Flags().StringVar(&f.os, "os", "linux", "target operating system (linux, windows, darwin)")
	cmd.Flags().StringVar(&f.vendor, "vendor", "pc", "target vendor (pc, apple)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 1, "worker count for independent-file fan-out")

	return cmd
}

func runCompile(cmd *cobra.Command, paths []string, f *flags) error {
	applyConfigFile(cmd, f)

	logger, err := newLogger(f)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opt := compiler.NewOptions()
	opt.Paths = paths
	opt.Threads = f.threads
	opt.TargetArch = parseArch(f.arch)
	opt.TargetOS = parseOS(f.os)
	opt.TargetVendor = parseVendor(f.vendor)
	opt.DumpTokens = f.dumpTokens
	opt.DumpAST = f.dumpAST
	opt.EmitLL = f.emitLL
	opt.EmitBC = f.emitBC
	opt.EmitObj = f.emitObj
	opt.EmitAsm = f.emitAsm
	opt.Logger = logger

	res, err := compiler.Compile(opt)
	if err != nil {
		return err
	}

	hadErrors := false
	for _, u := range res.Units {
		u.Bag.Report(func(s string) { fmt.Fprint(cmd.OutOrStdout(), s) })
		if u.Bag.HasErrors() {
			hadErrors = true
			continue
		}
		if err := emitUnit(u, opt); err != nil {
			return err
		}
	}
	if hadErrors {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

// applyConfigFile loads ./tauc.toml, if present, filling in any flag not
// given explicitly on the command line. Explicit flags always win (cobra has
// already parsed them into f by the time this runs).
func applyConfigFile(cmd *cobra.Command, f *flags) {
	var cfg config
	if _, err := toml.DecodeFile("tauc.toml", &cfg); err != nil {
		return
	}
	changed := cmd.Flags().Changed
	if !changed("arch") && cfg.Arch != "" {
		f.arch = cfg.Arch
	}
	if !changed("os") && cfg.OS != "" {
		f.os = cfg.OS
	}
	if !changed("vendor") && cfg.Vendor != "" {
		f.vendor = cfg.Vendor
	}
	if !changed("threads") && cfg.Threads > 0 {
		f.threads = cfg.Threads
	}
	if !changed("log-level") && cfg.LogLevel != 0 {
		f.logLevel = cfg.LogLevel
	}
}

func newLogger(f *flags) (*zap.SugaredLogger, error) {
	level := zapcore.Level(f.logLevel)
	if f.verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("tauc: building logger: %w", err)
	}
	return logger.Sugar(), nil
}

func parseArch(s string) int {
	switch strings.ToLower(s) {
	case "aarch64", "arm64":
		return compiler.ArchAarch64
	case "riscv64":
		return compiler.ArchRiscv64
	case "x86_64", "amd64":
		return compiler.ArchX86_64
	default:
		return compiler.ArchUnknown
	}
}

func parseOS(s string) int {
	switch strings.ToLower(s) {
	case "linux":
		return compiler.OSLinux
	case "windows":
		return compiler.OSWindows
	case "darwin", "macos", "mac":
		return compiler.OSDarwin
	default:
		return compiler.OSUnknown
	}
}

func parseVendor(s string) int {
	switch strings.ToLower(s) {
	case "pc":
		return compiler.VendorPC
	case "apple":
		return compiler.VendorApple
	default:
		return compiler.VendorUnknown
	}
}

// emitUnit writes the artifacts requested by opt for one successfully
// compiled unit, named after its source path (section 6.1/6.5).
func emitUnit(u *compiler.Unit, opt compiler.Options) error {
	if opt.DumpTokens {
		if err := writeJSON(u.Path+".tokens.json", u.Tokens); err != nil {
			return err
		}
	}
	if opt.DumpAST {
		if err := writeJSON(u.Path+".ast.json", astDump(u)); err != nil {
			return err
		}
	}
	if u.Gen == nil {
		return nil
	}
	if opt.EmitLL {
		if err := os.WriteFile(u.Path+".ll", []byte(u.Gen.Module().String()), 0o644); err != nil {
			return fmt.Errorf("tauc: writing %s.ll: %w", u.Path, err)
		}
	}
	if opt.EmitBC || opt.EmitObj || opt.EmitAsm {
		if err := emitNative(u, opt); err != nil {
			return err
		}
	}
	return nil
}

// astDump produces a structural (not stability-guaranteed) dump of the
// parsed tree for --dump-ast, via stdlib encoding/json: this is diagnostic
// scaffolding, not a domain concern worth a third-party serializer for
// (section 6.5).
func astDump(u *compiler.Unit) interface{} {
	return struct {
		Path string `json:"path"`
		Root int    `json:"root"`
		Len  int    `json:"node_count"`
	}{Path: u.Path, Root: int(u.Root), Len: u.Reg.Len()}
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("tauc: encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("tauc: writing %s: %w", path, err)
	}
	return nil
}
