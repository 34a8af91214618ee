// Package ast defines the tau abstract syntax tree: a single tagged-union
// Node type covering ~80 kinds partitioned into the Id/Type*/Expr*/Stmt*/
// Decl*/Prog families spec.md section 3 describes, generalized from the
// teacher's single-struct ir.Node (kind, line, pos, data, children) to
// tau's richer per-family payloads.
package ast

import "tauc/src/token"

// ID is a stable index into a Registry's node arena, taking the place of
// the teacher's pointer-heavy *Node cross-references (break -> loop,
// struct type -> declaring struct) with a handle that survives arena
// growth and needs no separate ownership bookkeeping, per Design Notes'
// "model cross-references as indices into an arena" guidance.
type ID int

// NoID is the zero value of ID and denotes "no node".
const NoID ID = 0

// CallConv names a calling convention attribute string, supplementing
// spec.md from original_source/inc/ast.h's attrs field.
type CallConv int

const (
	CConvDefault CallConv = iota
	CConvCDecl
	CConvStdCall
	CConvFastCall
)

// Node is the tagged-union AST node. Every node carries Kind and Tok; the
// remaining fields are populated according to which family Kind belongs
// to, mirroring spec.md section 3's per-family field list. Unused fields
// for a given Kind stay at their zero value.
type Node struct {
	ID   ID
	Kind Kind
	Tok  token.Token

	Children []ID

	// Id / name reference payload (ExprId, TypeName, member owner names).
	Name string

	// Literal payload (ExprLit*). LitSuffix is the numeric-literal type
	// suffix recognized by the lexer ("i64", "u8", "f32", ...), empty for
	// an unsuffixed literal; it fixes the literal's concrete type instead
	// of leaving it to default/promotion, per spec.md section 4.1/4.6.
	IntVal    int64
	FloatVal  float64
	StringVal string
	CharVal   rune
	BoolVal   bool
	LitSuffix string

	// Type nodes: resolved type descriptor, set by the type builder while
	// parsing `parse_type`, refined during type check. Stored as
	// interface{} (concretely types.Type) to avoid an import cycle between
	// ast and types; codegen/sema type-assert as needed. ArrayLen is the
	// child expression id for `array(expr?)`, Member is the field name for
	// TypeMember. TypeVec reuses ArrayLen for its element-count expression;
	// TypeMat carries both dimensions in MatRows/MatCols.
	Type     interface{}
	ArrayLen ID
	MatRows  ID
	MatCols  ID
	Member   string

	// Expression payload.
	Op        OpKind
	OpSub     OpSubKind
	ExprType  interface{} // resolved types.Type, nil until type-checked or poisoned
	IsRef     bool        // reference-category flag set by type check
	LLVMType  interface{} // cached llvm.Type, set only during code generation
	LLVMValue interface{} // cached llvm.Value, set only during code generation

	// Declaration payload.
	DeclID         ID // symtab.Symbol owner-of-declaration back reference, set by nameres
	Attrs          []string
	CallConv       CallConv
	IsExtern       bool
	IsVariadic     bool
	Params         []ID // DeclFun
	ReturnTy       ID   // DeclFun: Type node
	Body           ID   // DeclFun: StmtBlock; 0 if extern
	VarType        ID   // DeclVar/DeclParam: Type node, 0 if inferred
	Init           ID   // DeclVar/DeclParam: initializer/default Expr node, 0 if none
	Members        []ID // DeclStruct/DeclUnion: DeclVar fields; DeclEnum: DeclEnumConstant
	ModDecls       []ID // DeclMod
	LLVMFunc       interface{} // DeclFun: cached llvm.Value
	LLVMEntryBlock interface{} // DeclFun: cached llvm.BasicBlock
	LLVMEndBlock   interface{} // DeclFun: cached llvm.BasicBlock

	// Statement payload.
	Cond     ID // StmtIf/While/DoWhile/For condition Expr
	Then     ID // StmtIf body, or loop body for While/DoWhile/For/Loop
	Else     ID // StmtIf else branch, 0 if absent
	ForVar   ID // StmtFor: DeclVar of the loop variable
	ForIter  ID // StmtFor: Expr being iterated ("in" operand)
	ReturnOf ID // StmtReturn: Expr, 0 if bare `return`
	DeferOf  ID // StmtDefer: wrapped Stmt

	// Control-flow back-pointers, populated by src/sema's control-flow pass.
	LoopTarget ID // StmtBreak/StmtContinue: the enclosing loop statement node

	// Loop/if LLVM basic-block handles, allocated up-front during code
	// generation per spec.md section 4.8.
	LLVMCond ID_LLVM
	LLVMLoop ID_LLVM
	LLVMThen ID_LLVM
	LLVMElse ID_LLVM
	LLVMEnd  ID_LLVM
}

// ID_LLVM is an opaque cached llvm.BasicBlock handle; only code generation
// populates or reads it.
type ID_LLVM = interface{}
