package types

import "testing"

func TestInternerReturnsSamePointerForSameShape(t *testing.T) {
	in := NewInterner()
	a := in.Pointer(in.IntT())
	b := in.Pointer(in.IntT())
	if a != b {
		t.Fatalf("expected interner to return identical pointer for identical shape")
	}
}

func TestInternerDistinguishesShapes(t *testing.T) {
	in := NewInterner()
	ptrInt := in.Pointer(in.IntT())
	ptrFloat := in.Pointer(in.FloatT())
	if ptrInt.Equal(ptrFloat) {
		t.Fatalf("ptr<int> must not equal ptr<float>")
	}
}

func TestArrayShapeEquality(t *testing.T) {
	in := NewInterner()
	a := in.Array(4, in.CharT())
	b := in.Array(4, in.CharT())
	c := in.Array(5, in.CharT())
	if !a.Equal(b) {
		t.Fatalf("[4]char must equal [4]char")
	}
	if a.Equal(c) {
		t.Fatalf("[4]char must not equal [5]char")
	}
}

func TestHashEqualityImpliesStructuralEquality(t *testing.T) {
	in := NewInterner()
	shapes := []*Type{
		in.IntT(), in.FloatT(), in.CharT(), in.BoolT(), in.FreeT(),
		in.Pointer(in.IntT()), in.Pointer(in.CharT()),
		in.Array(1, in.IntT()), in.Array(2, in.IntT()),
		in.Pointer(in.Pointer(in.IntT())),
	}
	for i, a := range shapes {
		for j, b := range shapes {
			hashEq := a.Hash() == b.Hash()
			wantEq := i == j
			if hashEq != wantEq {
				t.Errorf("shape %d vs %d: hash-equal=%v, want %v (%s vs %s)", i, j, hashEq, wantEq, a, b)
			}
		}
	}
}

func TestSizeOfPrimitives(t *testing.T) {
	in := NewInterner()
	if in.BoolT().Size() != 1 {
		t.Fatalf("bool must be 1 byte")
	}
	if in.CharT().Size() != 1 {
		t.Fatalf("char must be 1 byte")
	}
	if in.IntT().Size() != 8 {
		t.Fatalf("int must be 8 bytes")
	}
	if in.Pointer(in.IntT()).Size() != 8 {
		t.Fatalf("pointer must be 8 bytes")
	}
	if in.Array(4, in.CharT()).Size() != 4 {
		t.Fatalf("[4]char must be 4 bytes, got %d", in.Array(4, in.CharT()).Size())
	}
}

func TestStringRendering(t *testing.T) {
	in := NewInterner()
	cases := []struct {
		t    *Type
		want string
	}{
		{in.IntT(), "int"},
		{in.Pointer(in.IntT()), "ptr<int>"},
		{in.Array(3, in.BoolT()), "[3]bool"},
	}
	for _, c := range cases {
		if got := c.t.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
