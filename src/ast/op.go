package ast

// OpKind enumerates the operators recognized by the Shunting-Yard parser
// and later consumed by type-check and code generation, grounded on
// original_source/inc/op.h's op_kind_e enum, generalized to Go naming.
type OpKind int

const (
	OpUnknown OpKind = iota

	OpSizeof
	OpAlignof
	OpTypeof
	OpIn

	OpIncPre
	OpIncPost
	OpDecPre
	OpDecPost
	OpPos
	OpNeg
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpLShift
	OpRShift

	OpLogicAnd
	OpLogicOr
	OpLogicNot

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpBitAndAssign
	OpBitOrAssign
	OpBitXorAssign
	OpLShiftAssign
	OpRShiftAssign

	OpSubscript
	OpIndirection // unary prefix `*`
	OpAddr        // unary prefix `&`
	OpAccess      // `.`
	OpIndAccess   // `*.`
	OpNullSafeAccess
	OpRange // `..`
	OpCall
	OpUnwrapSafe // postfix `!`
	OpCast       // `as`
)

// IsBinary reports whether kind takes two operands.
func (k OpKind) IsBinary() bool {
	switch k {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod,
		OpBitAnd, OpBitOr, OpBitXor, OpLShift, OpRShift,
		OpLogicAnd, OpLogicOr,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe,
		OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign,
		OpBitAndAssign, OpBitOrAssign, OpBitXorAssign, OpLShiftAssign, OpRShiftAssign,
		OpAccess, OpIndAccess, OpNullSafeAccess, OpRange, OpIn:
		return true
	}
	return false
}

// IsUnary reports whether kind takes a single operand.
func (k OpKind) IsUnary() bool {
	switch k {
	case OpPos, OpNeg, OpBitNot, OpLogicNot, OpIndirection, OpAddr,
		OpIncPre, OpIncPost, OpDecPre, OpDecPost, OpUnwrapSafe, OpSizeof, OpAlignof, OpTypeof:
		return true
	}
	return false
}

// IsRightAssoc reports whether kind associates right-to-left: assignment
// and member access, per spec.md section 4.3.
func (k OpKind) IsRightAssoc() bool {
	switch k {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign, OpModAssign,
		OpBitAndAssign, OpBitOrAssign, OpBitXorAssign, OpLShiftAssign, OpRShiftAssign,
		OpAccess, OpIndAccess, OpNullSafeAccess:
		return true
	}
	return false
}

// Precedence assigns a binding power to every binary operator kind; higher
// binds tighter. Unary operators and OpCall are handled specially by the
// Shunting-Yard parser and do not need table entries here.
var precedence = map[OpKind]int{
	OpAssign: 1, OpAddAssign: 1, OpSubAssign: 1, OpMulAssign: 1, OpDivAssign: 1, OpModAssign: 1,
	OpBitAndAssign: 1, OpBitOrAssign: 1, OpBitXorAssign: 1, OpLShiftAssign: 1, OpRShiftAssign: 1,
	OpRange:    2,
	OpLogicOr:  3,
	OpLogicAnd: 4,
	OpBitOr:    5,
	OpBitXor:   6,
	OpBitAnd:   7,
	OpEq:       8, OpNe: 8,
	OpLt: 9, OpLe: 9, OpGt: 9, OpGe: 9,
	OpIn:     9,
	OpLShift: 10, OpRShift: 10,
	OpAdd: 11, OpSub: 11,
	OpMul: 12, OpDiv: 12, OpMod: 12,
	OpAccess: 14, OpIndAccess: 14, OpNullSafeAccess: 14,
	OpCall: 14, OpSubscript: 14,
}

// Precedence returns k's binding power. Unary prefix operators are always
// tighter than any binary operator; OpUnwrapSafe (postfix `!`) binds as
// tightly as member access.
func (k OpKind) Precedence() int {
	if k == OpUnwrapSafe {
		return 14
	}
	if k.IsUnary() {
		return 13
	}
	if p, ok := precedence[k]; ok {
		return p
	}
	return 0
}

func (k OpKind) String() string {
	names := map[OpKind]string{
		OpSizeof: "sizeof", OpAlignof: "alignof", OpTypeof: "typeof", OpIn: "in",
		OpIncPre: "++(pre)", OpIncPost: "++(post)", OpDecPre: "--(pre)", OpDecPost: "--(post)",
		OpPos: "+(unary)", OpNeg: "-(unary)", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
		OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpBitNot: "~", OpLShift: "<<", OpRShift: ">>",
		OpLogicAnd: "&&", OpLogicOr: "||", OpLogicNot: "!",
		OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
		OpAssign: "=", OpAddAssign: "+=", OpSubAssign: "-=", OpMulAssign: "*=", OpDivAssign: "/=", OpModAssign: "%=",
		OpBitAndAssign: "&=", OpBitOrAssign: "|=", OpBitXorAssign: "^=", OpLShiftAssign: "<<=", OpRShiftAssign: ">>=",
		OpSubscript: "[]", OpIndirection: "*(indirection)", OpAddr: "&(addr)", OpAccess: ".",
		OpIndAccess: "*.", OpNullSafeAccess: "?.", OpRange: "..", OpCall: "()", OpUnwrapSafe: "!", OpCast: "as",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "?"
}

// OpSubKind refines an OpKind once the type checker knows which family of
// operand it applies to, so code generation does not repeat the
// classification (spec.md section 4.6, "Operator sub-kind tagging").
type OpSubKind int

const (
	SubKindNone OpSubKind = iota
	SubKindInt
	SubKindFloat
	SubKindVector
	SubKindMatrix
	SubKindPointer
)
