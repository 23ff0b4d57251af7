// Async function driving (spec.md §4.5): an async call always returns
// a Promise immediately and runs its body up to the first await,
// resuming through the same suspend/resume machinery
// Generator.prototype.next uses (generator.go), chained onto whatever
// value was awaited via the ordinary Promise reaction path (promise.go)
// rather than a separate continuation mechanism. Grounded on
// original_source/njs/vm/NjsVM.cpp's await-as-
// generator-yield desugaring.
package interp

import "ecmalite/internal/heap"

// callAsync starts ext's body running and returns the Promise that
// settles with its eventual return value or thrown exception.
func (it *Interp) callAsync(ext *heap.FunctionExt, this heap.Value, args []heap.Value) (heap.Value, error) {
	p := it.NewPromise()
	frame := NewFrame(ext.Meta.Record, ext, this, args)
	it.stepAsync(p, ext, frame, nil)
	return heap.ObjectVal(p), nil
}

// stepAsync runs frame until it returns, awaits, or throws, settling p
// or chaining the next step off the awaited value's resolution.
func (it *Interp) stepAsync(p *heap.Object, ext *heap.FunctionExt, frame *Frame, inject *heap.Value) {
	result, err := it.runFrom(frame, inject)
	if err != nil {
		if sv, ok := AsSuspended(err); ok {
			it.awaitValue(p, ext, frame.This, sv)
			return
		}
		if tv, ok := AsThrown(err); ok {
			it.RejectPromise(p, tv)
			return
		}
		it.RejectPromise(p, heap.StringVal(it.H.NewString(err.Error())))
		return
	}
	it.ResolvePromise(p, result)
}

// awaitValue adopts sv.Value's eventual state (wrapping a non-thenable
// in a resolved helper Promise costs nothing extra and keeps the two
// code paths identical) and resumes the async body from sv.State once
// it settles.
func (it *Interp) awaitValue(p *heap.Object, ext *heap.FunctionExt, this heap.Value, sv Suspended) {
	helper := it.NewPromise()
	it.ResolvePromise(helper, sv.Value)
	state := sv.State

	onFulfilled := it.nativeClosure(func(h *heap.Heap, _ heap.Value, cbArgs []heap.Value, _ heap.Caller) (heap.Value, heap.Value, bool) {
		next := resumeFrame(ext.Meta.Record, ext, this, state)
		next.push(firstArg(cbArgs))
		it.stepAsync(p, ext, next, nil)
		return heap.Undefined(), heap.Value{}, false
	})
	onRejected := it.nativeClosure(func(h *heap.Heap, _ heap.Value, cbArgs []heap.Value, _ heap.Caller) (heap.Value, heap.Value, bool) {
		reason := firstArg(cbArgs)
		next := resumeFrame(ext.Meta.Record, ext, this, state)
		it.stepAsync(p, ext, next, &reason)
		return heap.Undefined(), heap.Value{}, false
	})
	it.Then(helper, onFulfilled, onRejected)
}

func firstArg(args []heap.Value) heap.Value {
	if len(args) == 0 {
		return heap.Undefined()
	}
	return args[0]
}

// nativeClosure wraps fn as a bare callable Function object, for
// continuations that need to pass a Go closure where JS expects a
// callable Value (paralleling internal/builtin's WrapNative, which this
// package cannot call without importing builtin and cycling back).
func (it *Interp) nativeClosure(fn heap.NativeFunc) heap.Value {
	o := it.H.NewObject(heap.ClassFunction, it.lookupGlobalProto("Function"))
	o.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: fn}, nil)
	return heap.ObjectVal(o)
}
