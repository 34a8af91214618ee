package types

import "testing"

func TestPrimitivesAreSingletons(t *testing.T) {
	b := NewBuilder()
	if b.Primitive(KindI32) != b.Primitive(KindI32) {
		t.Fatalf("expected i32 to be a singleton")
	}
	if b.Primitive(KindI32) == b.Primitive(KindI64) {
		t.Fatalf("distinct primitive kinds must not alias")
	}
}

func TestModifiersHashCons(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)

	p1 := b.Ptr(i32)
	p2 := b.Ptr(i32)
	if p1 != p2 {
		t.Fatalf("expected ptr(i32) to hash-cons to the same descriptor")
	}

	r := b.Ref(i32)
	if r == p1 {
		t.Fatalf("ref(i32) and ptr(i32) must be distinct")
	}
}

func TestMutOnlyOutermost(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)

	m, err := b.Mut(i32)
	if err != nil {
		t.Fatalf("mut(i32) should be legal: %v", err)
	}
	if CanAddMut(m) {
		t.Fatalf("mut may not wrap another mut")
	}
	if _, err := b.Mut(m); err == nil {
		t.Fatalf("expected error wrapping mut(mut(i32))")
	}

	c := b.Const(i32)
	if CanAddMut(c) {
		t.Fatalf("mut may not wrap const")
	}
}

func TestOptCannotWrapOpt(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)

	o, err := b.Opt(i32)
	if err != nil {
		t.Fatalf("opt(i32) should be legal: %v", err)
	}
	if CanAddOpt(o) {
		t.Fatalf("opt may not wrap another opt")
	}
	if _, err := b.Opt(o); err == nil {
		t.Fatalf("expected error wrapping opt(opt(i32))")
	}
}

func TestArrayRejectsOptElement(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)
	o, _ := b.Opt(i32)

	if CanAddArray(o) {
		t.Fatalf("array may not contain an opt element")
	}
	if _, err := b.Array(o, 4); err == nil {
		t.Fatalf("expected error constructing array of opt")
	}
}

func TestFunIdentityIncludesCallConvAndVariadic(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)

	f1 := b.Fun(i32, []*Type{i32}, false, 0)
	f2 := b.Fun(i32, []*Type{i32}, false, 0)
	f3 := b.Fun(i32, []*Type{i32}, true, 0)
	f4 := b.Fun(i32, []*Type{i32}, false, 1)

	if f1 != f2 {
		t.Fatalf("identical signatures must hash-cons to the same descriptor")
	}
	if f1 == f3 {
		t.Fatalf("varargs flag must participate in identity")
	}
	if f1 == f4 {
		t.Fatalf("calling convention must participate in identity")
	}
}

func TestDeclIdentityIsNominal(t *testing.T) {
	b := NewBuilder()
	s1 := b.Decl(KindStruct, 10)
	s2 := b.Decl(KindStruct, 10)
	s3 := b.Decl(KindStruct, 11)

	if s1 != s2 {
		t.Fatalf("same declaring node must yield the same struct descriptor")
	}
	if s1 == s3 {
		t.Fatalf("different declaring nodes must yield distinct descriptors even with identical shape")
	}
}

func TestPromoteFloatDominatesInt(t *testing.T) {
	b := NewBuilder()
	got := Promote(b.Primitive(KindI64), b.Primitive(KindF32))
	if got.Kind != KindF32 {
		t.Fatalf("expected float to dominate integer, got %v", got.Kind)
	}
}

func TestPromoteWiderIntDominates(t *testing.T) {
	b := NewBuilder()
	got := Promote(b.Primitive(KindI32), b.Primitive(KindI64))
	if got.Kind != KindI64 {
		t.Fatalf("expected wider integer to dominate, got %v", got.Kind)
	}
}

func TestPromoteSignedDominatesUnsignedSameWidth(t *testing.T) {
	b := NewBuilder()
	got := Promote(b.Primitive(KindI32), b.Primitive(KindU32))
	if got.Kind != KindI32 {
		t.Fatalf("expected signed to dominate unsigned of equal width, got %v", got.Kind)
	}
}

func TestSignednessMismatch(t *testing.T) {
	b := NewBuilder()
	if !SignednessMismatch(b.Primitive(KindI32), b.Primitive(KindU32)) {
		t.Fatalf("expected mismatch between i32 and u32")
	}
	if SignednessMismatch(b.Primitive(KindI32), b.Primitive(KindI64)) {
		t.Fatalf("same-signedness operands must not mismatch")
	}
}

func TestStripPeelsRefMutConst(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)
	m, _ := b.Mut(i32)
	r := b.Ref(m)

	if Strip(r) != i32 {
		t.Fatalf("expected Strip(ref(mut(i32))) to reach i32")
	}
}

func TestIsMutableReference(t *testing.T) {
	b := NewBuilder()
	i32 := b.Primitive(KindI32)
	m, _ := b.Mut(i32)
	r := b.Ref(m)
	rOnly := b.Ref(i32)

	if !IsMutableReference(r) {
		t.Fatalf("expected ref(mut(i32)) to be a mutable reference")
	}
	if IsMutableReference(rOnly) {
		t.Fatalf("ref(i32) without mut must not be a mutable reference")
	}
}
