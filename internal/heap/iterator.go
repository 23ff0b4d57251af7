// Iterator object kinds backing for-in/for-of, grounded on
// original_source/njs/basic_types/JSArrayIterator.h and the teacher's
// for-loop desugaring idiom. The array keys/entries kinds are handled by
// the interpreter's iterator step, but no built-in creates them:
// Array.prototype.entries/keys/values are not installed.
package heap

import "ecmalite/internal/atom"

// IterKind distinguishes what an iterator object walks and what shape
// of result it yields.
type IterKind uint8

const (
	IterArrayValues IterKind = iota
	IterArrayKeys
	IterArrayEntries
	IterForIn
	IterStringCodePoints
)

// IteratorExt is the Ext payload for ClassArrayIterator,
// ClassForInIterator, and ClassStringIterator objects: a cursor over
// Target, whose meaning depends on Kind.
type IteratorExt struct {
	Kind   IterKind
	Target Value
	Index  int

	// Keys snapshots the enumerable-string-key set at for-in creation
	// time (spec.md §4.2's for_in_init), since later property
	// deletions/additions on Target must not affect an in-flight loop.
	Keys []atom.Atom
}

// NewArrayIteratorExt builds an iterator over an array's dense values,
// keys, or index/value entries.
func NewArrayIteratorExt(kind IterKind, target Value) *IteratorExt {
	return &IteratorExt{Kind: kind, Target: target}
}

// NewForInIteratorExt snapshots target's enumerable own string keys for
// a for-in loop.
func NewForInIteratorExt(target Value, keys []atom.Atom) *IteratorExt {
	return &IteratorExt{Kind: IterForIn, Target: target, Keys: keys}
}
