package diag

// Kind identifies the shape of a diagnostic. Kinds are grouped by the pass
// that raises them, matching spec.md section 7.
type Kind int

const (
	KindUnknown Kind = iota

	// Lexer.
	KindUnexpectedCharacter
	KindIdentifierTooLong
	KindMissingSingleQuote
	KindMissingDoubleQuote
	KindEmptyCharacter
	KindMissingHexDigits
	KindTooManyHexDigits
	KindUnknownEscapeSequence
	KindIllFormedInteger
	KindIllFormedFloat
	KindInvalidIntegerSuffix

	// Parser.
	KindUnexpectedToken
	KindMissingParen
	KindMissingBracket
	KindMissingUnaryArgument
	KindMissingBinaryArgument
	KindMissingCallee
	KindUnknownCallingConvention
	KindExpectedCallingConvention
	KindDefaultParameterOrder
	KindInconsistentMatrixDimensions

	// Name resolution.
	KindSymbolCollision
	KindUndefinedSymbol
	KindExpectedExpressionSymbol
	KindExpectedTypename
	KindShadowedSymbol
	KindNoMember
	KindPrivateMember

	// Type check.
	KindExpectedInteger
	KindExpectedArithmetic
	KindExpectedBool
	KindExpectedMutable
	KindExpectedOptional
	KindExpectedPointer
	KindExpectedArray
	KindExpectedReference
	KindExpectedVector
	KindExpectedMatrix
	KindExpectedIntegerOrFloat
	KindIncompatibleReturnType
	KindTooManyFunctionParameters
	KindTooFewFunctionParameters
	KindIllegalConversion
	KindIntegerLiteralTooLarge
	KindIncompatibleVectorDimensions
	KindIncompatibleMatrixDimensions
	KindMismatchedSignedness // warning

	// Control flow.
	KindBreakOutsideLoop
	KindContinueOutsideLoop
	KindReturnInsideDefer
)

var kindNames = map[Kind]string{
	KindUnknown:                      "Unknown",
	KindUnexpectedCharacter:          "UnexpectedCharacter",
	KindIdentifierTooLong:            "IdentifierTooLong",
	KindMissingSingleQuote:           "MissingSingleQuote",
	KindMissingDoubleQuote:           "MissingDoubleQuote",
	KindEmptyCharacter:               "EmptyCharacter",
	KindMissingHexDigits:             "MissingHexDigits",
	KindTooManyHexDigits:             "TooManyHexDigits",
	KindUnknownEscapeSequence:        "UnknownEscapeSequence",
	KindIllFormedInteger:             "IllFormedInteger",
	KindIllFormedFloat:               "IllFormedFloat",
	KindInvalidIntegerSuffix:         "InvalidIntegerSuffix",
	KindUnexpectedToken:              "UnexpectedToken",
	KindMissingParen:                 "MissingParen",
	KindMissingBracket:               "MissingBracket",
	KindMissingUnaryArgument:         "MissingUnaryArgument",
	KindMissingBinaryArgument:        "MissingBinaryArgument",
	KindMissingCallee:                "MissingCallee",
	KindUnknownCallingConvention:     "UnknownCallingConvention",
	KindExpectedCallingConvention:    "ExpectedCallingConvention",
	KindDefaultParameterOrder:        "DefaultParameterOrder",
	KindInconsistentMatrixDimensions: "InconsistentMatrixDimensions",
	KindSymbolCollision:              "SymbolCollision",
	KindUndefinedSymbol:              "UndefinedSymbol",
	KindExpectedExpressionSymbol:     "ExpectedExpressionSymbol",
	KindExpectedTypename:             "ExpectedTypename",
	KindShadowedSymbol:               "ShadowedSymbol",
	KindNoMember:                     "NoMember",
	KindPrivateMember:                "PrivateMember",
	KindExpectedInteger:              "ExpectedInteger",
	KindExpectedArithmetic:           "ExpectedArithmetic",
	KindExpectedBool:                 "ExpectedBool",
	KindExpectedMutable:              "ExpectedMutable",
	KindExpectedOptional:             "ExpectedOptional",
	KindExpectedPointer:              "ExpectedPointer",
	KindExpectedArray:                "ExpectedArray",
	KindExpectedReference:            "ExpectedReference",
	KindExpectedVector:               "ExpectedVector",
	KindExpectedMatrix:               "ExpectedMatrix",
	KindExpectedIntegerOrFloat:       "ExpectedIntegerOrFloat",
	KindIncompatibleReturnType:       "IncompatibleReturnType",
	KindTooManyFunctionParameters:    "TooManyFunctionParameters",
	KindTooFewFunctionParameters:     "TooFewFunctionParameters",
	KindIllegalConversion:            "IllegalConversion",
	KindIntegerLiteralTooLarge:       "IntegerLiteralTooLarge",
	KindIncompatibleVectorDimensions: "IncompatibleVectorDimensions",
	KindIncompatibleMatrixDimensions: "IncompatibleMatrixDimensions",
	KindMismatchedSignedness:         "MismatchedSignedness",
	KindBreakOutsideLoop:             "BreakOutsideLoop",
	KindContinueOutsideLoop:          "ContinueOutsideLoop",
	KindReturnInsideDefer:            "ReturnInsideDefer",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Severity of a diagnostic kind. Only ShadowedSymbol and MismatchedSignedness
// are warnings; everything else is an error.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (k Kind) Severity() Severity {
	switch k {
	case KindShadowedSymbol, KindMismatchedSignedness:
		return SeverityWarning
	default:
		return SeverityError
	}
}
