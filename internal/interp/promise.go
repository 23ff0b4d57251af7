// Promise resolution and reaction scheduling (spec.md §4.4). The state
// machine itself (heap.PromiseExt.Settle/AddReaction) is pure data;
// this file supplies the calling convention Settle/AddReaction defer to
// their caller — invoking a reaction function and enqueueing the result
// as a microtask on internal/eventloop, which heap cannot do without
// importing both interp and eventloop.
package interp

import (
	"ecmalite/internal/heap"
	"ecmalite/internal/jserror"
)

// NewPromise allocates a fresh pending Promise object.
func (it *Interp) NewPromise() *heap.Object {
	o := it.H.NewObject(heap.ClassPromise, it.promiseProto())
	o.Ext = heap.NewPromiseExt()
	return o
}

func (it *Interp) promiseProto() heap.Value {
	return it.lookupGlobalProto("Promise")
}

// ResolvePromise settles p as fulfilled with value, per spec.md §4.4's
// resolution procedure: if value is itself a thenable, p instead adopts
// its eventual state rather than fulfilling with the thenable object.
// Resolving p with itself is a TypeError, not a same-value fulfillment.
func (it *Interp) ResolvePromise(p *heap.Object, value heap.Value) {
	if value.IsObject() && value.AsObject() == p {
		reason := jserror.New(it.H, it.Atoms, &it.Statics, it.Protos, jserror.TypeError, "chaining cycle: promise resolved with itself", it.stackFrames())
		it.RejectPromise(p, reason)
		return
	}
	if value.IsObject() {
		if thenV := it.getProp(value, it.Atoms.Atomize("then")); thenV.IsCallable() {
			it.Loop.EnqueueMicrotask(func() {
				_, thrownVal, did := it.nativeCaller(thenV, value, []heap.Value{
					it.ResolveFunc(p), it.RejectFunc(p),
				})
				if did {
					it.RejectPromise(p, thrownVal)
				}
			})
			return
		}
	}
	it.settlePromise(p, true, value)
}

// RejectPromise settles p as rejected with reason.
func (it *Interp) RejectPromise(p *heap.Object, reason heap.Value) {
	it.settlePromise(p, false, reason)
}

func (it *Interp) settlePromise(p *heap.Object, fulfilled bool, result heap.Value) {
	ext := p.Ext.(*heap.PromiseExt)
	records, ok := ext.Settle(fulfilled, result)
	if !ok {
		return
	}
	for _, r := range records {
		it.scheduleReaction(r, fulfilled, result)
	}
}

// scheduleReaction enqueues one then-record's handler as a microtask
// (spec.md §4.4: reactions run as microtasks, never synchronously).
func (it *Interp) scheduleReaction(r heap.ThenRecord, fulfilled bool, result heap.Value) {
	it.Loop.EnqueueMicrotask(func() {
		handler := r.OnRejected
		if fulfilled {
			handler = r.OnFulfilled
		}
		if !handler.IsCallable() {
			// Pass-through: no handler of this kind, propagate the
			// settlement unchanged to the chained promise.
			if fulfilled {
				it.resolveNext(r.NextResolve, result)
			} else {
				it.resolveNext(r.NextReject, result)
			}
			return
		}
		rv, thrownVal, did := it.nativeCaller(handler, heap.Undefined(), []heap.Value{result})
		if did {
			it.resolveNext(r.NextReject, thrownVal)
			return
		}
		it.resolveNext(r.NextResolve, rv)
	})
}

func (it *Interp) resolveNext(fn heap.Value, v heap.Value) {
	if fn.IsCallable() {
		it.nativeCaller(fn, heap.Undefined(), []heap.Value{v})
	}
}

// Then implements Promise.prototype.then: registers a reaction pair and
// returns the chained promise (spec.md §4.4).
func (it *Interp) Then(p *heap.Object, onFulfilled, onRejected heap.Value) *heap.Object {
	next := it.NewPromise()
	record := heap.ThenRecord{
		OnFulfilled: onFulfilled,
		OnRejected:  onRejected,
		NextResolve: it.ResolveFunc(next),
		NextReject:  it.RejectFunc(next),
	}
	ext := p.Ext.(*heap.PromiseExt)
	if immediate, ready := ext.AddReaction(record); ready {
		it.scheduleReaction(immediate, ext.State == heap.PromiseFulfilled, ext.Result)
	}
	return next
}

// ResolveFunc/RejectFunc wrap settlePromise as a one-argument native
// callable, the shape a `then` callback or executor expects to receive.
func (it *Interp) ResolveFunc(p *heap.Object) heap.Value {
	meta := &heap.FunctionMeta{Native: func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		it.ResolvePromise(p, callbackArgOrUndefined(args))
		return heap.Undefined(), heap.Value{}, false
	}}
	o := it.H.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(meta, nil)
	return heap.ObjectVal(o)
}

func (it *Interp) RejectFunc(p *heap.Object) heap.Value {
	meta := &heap.FunctionMeta{Native: func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		it.RejectPromise(p, callbackArgOrUndefined(args))
		return heap.Undefined(), heap.Value{}, false
	}}
	o := it.H.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(meta, nil)
	return heap.ObjectVal(o)
}

func callbackArgOrUndefined(args []heap.Value) heap.Value {
	if len(args) == 0 {
		return heap.Undefined()
	}
	return args[0]
}
