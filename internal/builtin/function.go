package builtin

import "ecmalite/internal/heap"

// InstallFunctionPrototype attaches Function.prototype.call/apply/bind
// (SPEC_FULL.md §C), grounded on
// original_source/njs/basic_types/JSFunction.cpp's bind-chain
// construction and heap.BoundFunctionExt.Resolve, which these three
// methods are the only way user code reaches.
func (r *Registry) InstallFunctionPrototype(proto *heap.Object) {
	r.defineMethod(proto, "call", r.functionCall)
	r.defineMethod(proto, "apply", r.functionApply)
	r.defineMethod(proto, "bind", r.functionBind)
}

func (r *Registry) functionCall(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if !this.IsCallable() {
		return heap.Value{}, r.typeErrorValue(h, "call requires a callable this"), true
	}
	callThis := heap.Undefined()
	var rest []heap.Value
	if len(args) > 0 {
		callThis = args[0]
		rest = args[1:]
	}
	rv, thrownVal, did := call(this, callThis, rest)
	return rv, thrownVal, did
}

func (r *Registry) functionApply(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if !this.IsCallable() {
		return heap.Value{}, r.typeErrorValue(h, "apply requires a callable this"), true
	}
	callThis := heap.Undefined()
	if len(args) > 0 {
		callThis = args[0]
	}
	var rest []heap.Value
	if len(args) > 1 {
		if _, ext, ok := thisArray(args[1]); ok {
			rest = append([]heap.Value(nil), ext.Dense...)
		}
	}
	rv, thrownVal, did := call(this, callThis, rest)
	return rv, thrownVal, did
}

func (r *Registry) functionBind(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if !this.IsCallable() {
		return heap.Value{}, r.typeErrorValue(h, "bind requires a callable this"), true
	}
	boundThis := heap.Undefined()
	var prefix []heap.Value
	if len(args) > 0 {
		boundThis = args[0]
		prefix = append([]heap.Value(nil), args[1:]...)
	}
	bo := h.NewObject(heap.ClassBoundFunction, heap.Null())
	bo.Ext = &heap.BoundFunctionExt{Target: this, BoundThis: boundThis, BoundArgs: prefix}
	return heap.ObjectVal(bo), heap.Value{}, false
}
