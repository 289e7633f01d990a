// Package value defines smog's runtime Value representation and the heap
// object variants it can reference.
//
// A Value is a tagged union of: boolean, nil, double-precision number, and a
// heap object reference. This package implements the explicit tagged-struct
// representation rather than NaN-boxing (see DESIGN.md for that choice) —
// both are permitted by the language's data model and are behaviorally
// equivalent; only the bit-for-bit encoding differs.
//
// Every heap object variant shares a common header (Kind, Marked, Next) so
// the collector in pkg/gc can walk one intrusive linked list regardless of
// the concrete type underneath. Objects are never copied by value; a Value
// holding an object only ever carries a pointer, so object identity (used by
// string interning and by reference equality for classes/instances) is
// preserved.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the tag of a Value.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is smog's tagged runtime value.
type Value struct {
	kind   Kind
	boolean bool
	number  float64
	obj     Object
}

// Nil is the singleton nil value.
var Nil = Value{kind: KindNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// Obj wraps a heap Object in a Value.
func Obj(o Object) Value { return Value{kind: KindObject, obj: o} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }
func (v Value) IsBool() bool { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean payload; only meaningful when IsBool.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the numeric payload; only meaningful when IsNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsObject returns the object payload; only meaningful when IsObject.
func (v Value) AsObject() Object { return v.obj }

// IsObjKind reports whether v is an object of the given kind.
func (v Value) IsObjKind(k ObjKind) bool {
	return v.kind == KindObject && v.obj != nil && v.obj.ObjKind() == k
}

// AsString returns the *ObjString payload; caller must have checked kind.
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// Falsy implements the language's truthiness rule: nil and false are falsy,
// everything else (including 0 and "") is truthy.
func (v Value) Falsy() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.boolean
	default:
		return false
	}
}

func (v Value) Truthy() bool { return !v.Falsy() }

// Equal implements the language's equality: never coerces across kinds,
// number equality follows IEEE 754, object equality is reference identity
// (which, thanks to interning, makes equal-content strings compare equal),
// nil equals only nil, booleans compare by value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way the language's print statement does.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObject:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%g", n)
	}
}
