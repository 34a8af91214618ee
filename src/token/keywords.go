package token

// keywords maps reserved words, bucketed by length the way the teacher's
// frontend/lang.go does ("indexing and searching by length should be
// faster than using a hash table"), generalized from VSL's dozen keywords
// to tau's full set.
var keywords = [...]map[string]Kind{
	0: {},
	1: {},
	2: {"if": KW_IF, "do": KW_DO, "in": KW_IN, "is": KW_IS, "as": KW_AS, "i8": KW_I8, "u8": KW_U8},
	3: {"var": KW_VAR, "fun": KW_FUN, "mod": KW_MOD, "for": KW_FOR, "mut": KW_MUT, "i16": KW_I16, "i32": KW_I32, "i64": KW_I64, "u16": KW_U16, "u32": KW_U32, "u64": KW_U64, "f32": KW_F32, "f64": KW_F64, "vec": KW_VEC, "mat": KW_MAT},
	4: {"then": KW_THEN, "else": KW_ELSE, "enum": KW_ENUM, "loop": KW_LOOP, "type": KW_TYPE, "true": LIT_BOOL, "char": KW_CHAR, "bool": KW_BOOL, "unit": KW_UNIT, "null": LIT_NULL},
	5: {"while": KW_WHILE, "break": KW_BREAK, "defer": KW_DEFER, "union": KW_UNION, "const": KW_CONST, "isize": KW_ISIZE, "usize": KW_USIZE, "false": LIT_BOOL},
	6: {"struct": KW_STRUCT, "return": KW_RETURN, "sizeof": KW_SIZEOF, "typeof": KW_TYPEOF},
	7: {},
	8: {"continue": KW_CONTINUE, "alignof": KW_ALIGNOF},
}

// Lookup returns the keyword Kind for s, or (IDENTIFIER, false) if s is not
// a reserved word.
func Lookup(s string) (Kind, bool) {
	if len(s) == 0 || len(s) >= len(keywords) {
		return IDENTIFIER, false
	}
	if k, ok := keywords[len(s)][s]; ok {
		return k, true
	}
	return IDENTIFIER, false
}
