// Function object state: the immutable metadata shared across every
// instance of a given compiled function versus the per-instance
// captured-cells/bound-this state (spec.md §3.5), and bound-function
// chaining (§4.6). Grounded on original_source/njs/basic_types/JSFunction.h
// and the teacher's closure-over-captures idiom in vm.go.
package heap

import "ecmalite/internal/bytecode"

// Caller invokes a callable Value from within a NativeFunc, used by
// built-ins that take a callback argument (Array.prototype.map, sort's
// comparator, Promise combinators). internal/interp supplies the real
// implementation (a thin wrapper over its own Call); this package
// cannot implement it directly without importing interp, which would
// cycle back to heap.
type Caller func(fn Value, this Value, args []Value) (result Value, thrown Value, didThrow bool)

// NativeFunc is a builtin implemented in Go rather than compiled
// bytecode. It receives the callee's `this`, its arguments, the Heap
// for allocation, and a Caller for invoking any callback argument, and
// returns either a result or a thrown value (internal/interp's call
// opcode checks didThrow first).
type NativeFunc func(h *Heap, this Value, args []Value, call Caller) (result Value, thrown Value, didThrow bool)

// FunctionMeta is the immutable, instance-independent description of a
// function (spec.md §3.5): either a compiled bytecode body or a native
// implementation, never both. Every Function object created from the
// same `function` expression/declaration or the same builtin shares one
// FunctionMeta.
type FunctionMeta struct {
	Record *bytecode.FunctionMetaRecord // nil for a native function
	Native NativeFunc                   // nil for a compiled function
}

// FunctionExt is the Ext payload for ClassFunction objects: the
// per-instance state that differs even between two Function objects
// sharing the same FunctionMeta (spec.md §3.5).
type FunctionExt struct {
	Meta *FunctionMeta

	// Captures holds this closure's cell array, one entry per
	// FunctionMeta.Record.Captures slot. Nil for a function with no
	// free variables or for a native function.
	Captures *HeapArray

	// HomeObject is the [[HomeObject]] slot used by `super` property
	// lookups inside a method (spec.md §4.2's get_prop_atom note on
	// method calls); Undefined for ordinary functions.
	HomeObject Value

	// BoundThis and IsArrow together resolve the `this` binding an
	// invocation uses: an arrow function's call opcode must use the
	// enclosing scope's `this` (BoundThis, IsArrow true) rather than
	// whatever receiver the call expression supplies.
	BoundThis Value
	IsArrow   bool
}

// NewFunctionExt builds the extension for a fresh Function instance.
func NewFunctionExt(meta *FunctionMeta, captures *HeapArray) *FunctionExt {
	return &FunctionExt{Meta: meta, Captures: captures, HomeObject: Undefined(), BoundThis: Undefined()}
}

// BoundFunctionExt is the Ext payload for ClassBoundFunction objects
// produced by Function.prototype.bind (spec.md §4.6): a target
// callable plus a fixed `this` and a prefix of arguments, chainable
// (Target may itself be a BoundFunction).
type BoundFunctionExt struct {
	Target    Value // the wrapped callable (Function or BoundFunction)
	BoundThis Value
	BoundArgs []Value
}

// Resolve walks a bind chain down to the innermost non-bound target.
// Each [[Call]] in the chain discards the `this` passed to it and uses
// its own BoundThis, so the effective receiver is the BoundThis closest
// to the target, not b's own; bound arguments concatenate in the order
// each bind was applied (outermost bind's args innermost in the final
// list), per spec.md §4.6's chaining rule.
func (b *BoundFunctionExt) Resolve() (target Value, boundThis Value, args []Value) {
	this := b.BoundThis
	prefix := append([]Value(nil), b.BoundArgs...)
	cur := b.Target
	for cur.IsObject() && cur.AsObject().Class == ClassBoundFunction {
		next := cur.AsObject().Ext.(*BoundFunctionExt)
		prefix = append(append([]Value(nil), next.BoundArgs...), prefix...)
		this = next.BoundThis
		cur = next.Target
	}
	return cur, this, prefix
}
