// Package heap implements the tagged Value representation (spec.md §3.1),
// the object/property model (§3.4, §4.3), the built-in object kinds'
// runtime layout (§2, §3.5-§3.7), and the generational GC heap with its
// write barrier (§4.1, §5). These are kept in one package because they
// are, in the spec's own words, "tightly coupled": the GC walks every
// live reference inside Values, the object model's property storage is
// itself GC-scanned, and Value needs to name *Object/*HeapCell/*HeapArray
// directly. Splitting them would force either an import cycle or an
// artificial interface boundary the source material never uses.
//
// Grounded on the teacher's value.go (closed Value union with a small,
// exhaustively-switched tag set) and original_source/njs/basic_types/JSValue.h
// (the tag-range partitioning referenced in spec.md §3.1's invariant).
package heap

import (
	"math"

	"ecmalite/internal/primstring"
)

// PrimString is the heap's name for the UTF-16 buffer type; kept as an
// alias so callers outside this package import primstring directly
// while heap's own files read naturally (spec.md §3.3).
type PrimString = primstring.String

// Tag discriminates the Value union. Order matters: everything below
// firstGCTag is inline (no heap pointer, no GC involvement); everything
// at or above it is heap-referenced and GC-scanned. This mirrors
// spec.md §3.1's note that tag ordering lets needs_gc/is_object reduce
// to comparisons.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagUninitialized
	TagNull
	TagAtom
	TagSymbol
	TagBool
	TagU32
	TagI32
	TagF64
	TagValueHandle
	TagProcMeta

	firstGCTag
	TagString = firstGCTag
	TagHeapCell
	TagHeapArray
	TagObject
)

// Value is the discriminated union described in spec.md §3.1. Small
// values are carried inline in bits; heap-referenced variants carry
// a pointer in ref.
type Value struct {
	tag  Tag
	bits uint64 // Bool/U32/I32/Atom/Symbol/ProcMeta payload, or math.Float64bits for F64
	ref  any    // *GCString | *HeapCell | *HeapArray | *Object | *Value (ValueHandle only)
}

// Tag reports v's discriminant.
func (v Value) Tag() Tag { return v.tag }

// NeedsGC reports whether v is a heap-referenced variant that the GC
// must trace (spec.md §3.1).
func (v Value) NeedsGC() bool { return v.tag >= firstGCTag }

// Constructors

// Undefined returns the `undefined` value.
func Undefined() Value { return Value{tag: TagUndefined} }

// Uninitialized returns the let/const temporal-dead-zone sentinel.
func Uninitialized() Value { return Value{tag: TagUninitialized} }

// Null returns the `null` value.
func Null() Value { return Value{tag: TagNull} }

// Bool wraps a boolean.
func Bool(b bool) Value {
	v := Value{tag: TagBool}
	if b {
		v.bits = 1
	}
	return v
}

// U32 wraps an unsigned 32-bit integer.
func U32(n uint32) Value { return Value{tag: TagU32, bits: uint64(n)} }

// I32 wraps a signed 32-bit integer.
func I32(n int32) Value { return Value{tag: TagI32, bits: uint64(uint32(n))} }

// F64 wraps a double.
func F64(f float64) Value { return Value{tag: TagF64, bits: math.Float64bits(f)} }

// AtomVal wraps an interned string/integer atom (spec.md §3.2).
func AtomVal(a uint32) Value { return Value{tag: TagAtom, bits: uint64(a)} }

// SymbolVal wraps a symbol atom.
func SymbolVal(a uint32) Value { return Value{tag: TagSymbol, bits: uint64(a)} }

// ProcMeta wraps a return-PC marker used for internal sub-procedure
// calls (spec.md §3.1).
func ProcMeta(pc uint32) Value { return Value{tag: TagProcMeta, bits: uint64(pc)} }

// ValueHandle wraps a non-owning pointer into a live value-stack slot,
// used only transiently during property writes (spec.md §3.1). It is
// inline: the GC never follows it directly, since its referent is
// already scanned as part of the owning frame's stack slots.
func ValueHandle(slot *Value) Value { return Value{tag: TagValueHandle, ref: slot} }

// StringVal wraps a heap-allocated PrimitiveString.
func StringVal(s *GCString) Value { return Value{tag: TagString, ref: s} }

// HeapCellVal wraps a closure cell box.
func HeapCellVal(c *HeapCell) Value { return Value{tag: TagHeapCell, ref: c} }

// HeapArrayVal wraps a raw GC-scanned array of Values, used for closure
// capture arrays.
func HeapArrayVal(a *HeapArray) Value { return Value{tag: TagHeapArray, ref: a} }

// ObjectVal wraps any object-kind value (PlainObject, Array, Function,
// BoundFunction, wrappers, Date, RegExp, Promise, Generator, iterator
// kinds): all of these share the Object layout and are distinguished by
// Object.Class, per spec.md §9's design note.
func ObjectVal(o *Object) Value { return Value{tag: TagObject, ref: o} }

// Accessors. Each panics on a tag mismatch, matching the teacher's
// config.go checkType/assignType panic-on-misuse idiom: these are
// internal contract violations, never spec-visible errors.

func (v Value) AsBool() bool { v.expect(TagBool); return v.bits != 0 }

func (v Value) AsU32() uint32 { v.expect(TagU32); return uint32(v.bits) }

func (v Value) AsI32() int32 { v.expect(TagI32); return int32(uint32(v.bits)) }

func (v Value) AsF64() float64 { v.expect(TagF64); return math.Float64frombits(v.bits) }

func (v Value) AsAtom() uint32 {
	if v.tag != TagAtom && v.tag != TagSymbol {
		panic("heap: AsAtom called on a non-atom Value")
	}
	return uint32(v.bits)
}

func (v Value) AsProcMeta() uint32 { v.expect(TagProcMeta); return uint32(v.bits) }

func (v Value) AsValueHandle() *Value { v.expect(TagValueHandle); return v.ref.(*Value) }

func (v Value) AsString() *GCString { v.expect(TagString); return v.ref.(*GCString) }

func (v Value) AsHeapCell() *HeapCell { v.expect(TagHeapCell); return v.ref.(*HeapCell) }

func (v Value) AsHeapArray() *HeapArray { v.expect(TagHeapArray); return v.ref.(*HeapArray) }

func (v Value) AsObject() *Object { v.expect(TagObject); return v.ref.(*Object) }

func (v Value) expect(t Tag) {
	if v.tag != t {
		panic("heap: Value tag mismatch")
	}
}

// Predicates

func (v Value) IsUndefined() bool { return v.tag == TagUndefined }
func (v Value) IsUninitialized() bool { return v.tag == TagUninitialized }
func (v Value) IsNull() bool      { return v.tag == TagNull }
func (v Value) IsNullOrUndefined() bool {
	return v.tag == TagNull || v.tag == TagUndefined
}
func (v Value) IsBool() bool   { return v.tag == TagBool }
func (v Value) IsObject() bool { return v.tag == TagObject }
func (v Value) IsString() bool { return v.tag == TagString }
func (v Value) IsNumber() bool { return v.tag == TagU32 || v.tag == TagI32 || v.tag == TagF64 }
func (v Value) IsSymbol() bool { return v.tag == TagSymbol }

// IsCallable reports whether v is a Function or BoundFunction object.
func (v Value) IsCallable() bool {
	if v.tag != TagObject {
		return false
	}
	c := v.AsObject().Class
	return c == ClassFunction || c == ClassBoundFunction
}

// ToFloat64 coerces a numeric-tagged Value to float64 without running
// the full ToNumber algorithm (callers that already know v IsNumber).
func (v Value) ToFloat64() float64 {
	switch v.tag {
	case TagU32:
		return float64(v.AsU32())
	case TagI32:
		return float64(v.AsI32())
	case TagF64:
		return v.AsF64()
	default:
		panic("heap: ToFloat64 called on a non-numeric Value")
	}
}

// TypeOf implements the `typeof` opcode's classification (spec.md §4.2).
func (v Value) TypeOf() string {
	switch v.tag {
	case TagUndefined, TagUninitialized:
		return "undefined"
	case TagNull:
		return "object"
	case TagBool:
		return "boolean"
	case TagU32, TagI32, TagF64:
		return "number"
	case TagString:
		return "string"
	case TagSymbol:
		return "symbol"
	case TagObject:
		if v.IsCallable() {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

// StrictEquals implements `===` (spec.md §8: reflexive on non-NaN
// values, symmetric).
func StrictEquals(a, b Value) bool {
	if a.tag != b.tag {
		// number subtags compare cross-representation
		if a.IsNumber() && b.IsNumber() {
			return numericStrictEqual(a, b)
		}
		return false
	}
	switch a.tag {
	case TagUndefined, TagUninitialized, TagNull:
		return true
	case TagBool:
		return a.bits == b.bits
	case TagU32, TagI32, TagF64:
		return numericStrictEqual(a, b)
	case TagAtom, TagSymbol, TagProcMeta:
		return a.bits == b.bits
	case TagString:
		return a.AsString().Equal(b.AsString().PrimString)
	case TagObject:
		return a.ref.(*Object) == b.ref.(*Object)
	case TagHeapCell:
		return a.ref.(*HeapCell) == b.ref.(*HeapCell)
	case TagHeapArray:
		return a.ref.(*HeapArray) == b.ref.(*HeapArray)
	case TagValueHandle:
		return a.ref.(*Value) == b.ref.(*Value)
	default:
		return false
	}
}

func numericStrictEqual(a, b Value) bool {
	af, bf := a.ToFloat64(), b.ToFloat64()
	return af == bf
}

// SameValue implements the SameValue algorithm (spec.md §8: NaN equals
// itself; +0 and -0 are distinct).
func SameValue(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.ToFloat64(), b.ToFloat64()
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		if af == 0 && bf == 0 {
			return math.Signbit(af) == math.Signbit(bf)
		}
		return af == bf
	}
	return StrictEquals(a, b)
}
