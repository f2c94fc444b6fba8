// Package types models the language's Type tagged variant (Primitive,
// Pointer, Array) with structural hashing and interning, so two Types
// describing the same shape compare equal by identity.
package types

import (
	"fmt"
	"hash/fnv"
)

// Family distinguishes the three Type shapes.
type Family int

const (
	PrimitiveFamily Family = iota
	PointerFamily
	ArrayFamily
)

// Primitive enumerates the scalar subkinds. Free is the bottom type used as
// the return type of a function that produces no value.
type Primitive int

const (
	Free Primitive = iota
	Int
	Float
	Char
	Bool
)

func (p Primitive) String() string {
	switch p {
	case Free:
		return "free"
	case Int:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Type is an immutable, interned description of a value's shape. Equality
// is hash-based: two Types are equal iff their Hash() values match, which
// holds precisely when they are structurally identical (see Interner).
type Type struct {
	family    Family
	primitive Primitive // valid when family == PrimitiveFamily
	length    int       // valid when family == ArrayFamily
	elem      *Type     // valid when family == PointerFamily or ArrayFamily
	hash      uint64
}

func computeHash(family Family, payload int, elemHash uint64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d:%d", family, payload, elemHash)
	return h.Sum64()
}

func newPrimitive(p Primitive) *Type {
	return &Type{family: PrimitiveFamily, primitive: p, hash: computeHash(PrimitiveFamily, int(p), 0)}
}

func newPointer(elem *Type) *Type {
	return &Type{family: PointerFamily, elem: elem, hash: computeHash(PointerFamily, 0, elem.hash)}
}

func newArray(length int, elem *Type) *Type {
	return &Type{family: ArrayFamily, length: length, elem: elem, hash: computeHash(ArrayFamily, length, elem.hash)}
}

func (t *Type) Family() Family     { return t.family }
func (t *Type) Primitive() Primitive { return t.primitive }
func (t *Type) Length() int        { return t.length }
func (t *Type) Elem() *Type        { return t.elem }
func (t *Type) Hash() uint64       { return t.hash }

func (t *Type) IsPrimitive() bool { return t.family == PrimitiveFamily }
func (t *Type) IsPointer() bool   { return t.family == PointerFamily }
func (t *Type) IsArray() bool     { return t.family == ArrayFamily }

func (t *Type) IsInt() bool   { return t.IsPrimitive() && t.primitive == Int }
func (t *Type) IsFloat() bool { return t.IsPrimitive() && t.primitive == Float }
func (t *Type) IsBool() bool  { return t.IsPrimitive() && t.primitive == Bool }
func (t *Type) IsFree() bool  { return t.IsPrimitive() && t.primitive == Free }

// Equal compares by hash, the sole equality witness per the data model. The
// Interner guarantees hash collisions never occur for distinct shapes in
// practice (see Interner.intern), so this never falls back to a structural
// walk.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.hash == other.hash
}

func (t *Type) String() string {
	switch t.family {
	case PrimitiveFamily:
		return t.primitive.String()
	case PointerFamily:
		return "ptr<" + t.elem.String() + ">"
	case ArrayFamily:
		return fmt.Sprintf("[%d]%s", t.length, t.elem.String())
	default:
		return "?"
	}
}

// Size returns the in-memory size, in bytes, of a value of this Type.
// Ints, floats, and pointers occupy a full 8-byte stack slot; bools and
// chars occupy one byte; arrays occupy length * elem-size.
func (t *Type) Size() int {
	switch t.family {
	case PointerFamily:
		return 8
	case ArrayFamily:
		return t.length * t.elem.Size()
	case PrimitiveFamily:
		if t.primitive == Bool || t.primitive == Char {
			return 1
		}
		return 8
	default:
		return 8
	}
}
