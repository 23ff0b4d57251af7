// Promise constructor and the static combinators (all/allSettled/race/
// any), spec.md §4.4 plus SPEC_FULL.md §C's supplemented Promise
// surface. These live in internal/runtime rather than internal/builtin
// because every one of them needs internal/interp's settle/reaction
// machinery (internal/interp/promise.go), not just a heap.Caller.
package runtime

import (
	"ecmalite/internal/heap"
	"ecmalite/internal/jserror"
)

func (e *Engine) installPromiseCtor() {
	ctor := e.nativeCtor("Promise", e.promiseProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		if !this.IsObject() {
			return heap.Value{}, e.typeError("Promise constructor requires new"), true
		}
		self := this.AsObject()
		self.Class = heap.ClassPromise
		self.Ext = heap.NewPromiseExt()
		if len(args) == 0 || !args[0].IsCallable() {
			return heap.Value{}, e.typeError("Promise resolver is not a function"), true
		}
		resolve := e.Interp.ResolveFunc(self)
		reject := e.Interp.RejectFunc(self)
		_, thrownVal, did := call(args[0], heap.Undefined(), []heap.Value{resolve, reject})
		if did {
			e.Interp.RejectPromise(self, thrownVal)
		}
		return heap.Undefined(), heap.Value{}, false
	})

	e.reg.DefineNative(e.promiseProto, "then", e.promiseThen)
	e.reg.DefineNative(e.promiseProto, "catch", e.promiseCatch)
	e.reg.DefineNative(e.promiseProto, "finally", e.promiseFinally)

	e.reg.DefineNative(ctor, "resolve", e.promiseResolveStatic)
	e.reg.DefineNative(ctor, "reject", e.promiseRejectStatic)
	e.reg.DefineNative(ctor, "all", e.promiseAll)
	e.reg.DefineNative(ctor, "allSettled", e.promiseAllSettled)
	e.reg.DefineNative(ctor, "race", e.promiseRace)
	e.reg.DefineNative(ctor, "any", e.promiseAny)
}

func (e *Engine) typeError(msg string) heap.Value {
	return jserror.New(e.Heap, e.Atoms, &e.Statics, e.Protos, jserror.TypeError, msg, nil)
}

func asPromise(v heap.Value) (*heap.Object, bool) {
	if !v.IsObject() || v.AsObject().Class != heap.ClassPromise {
		return nil, false
	}
	return v.AsObject(), true
}

func (e *Engine) promiseThen(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	p, ok := asPromise(this)
	if !ok {
		return heap.Value{}, e.typeError("then called on a non-Promise"), true
	}
	onF, onR := callbackOrUndef(args, 0), callbackOrUndef(args, 1)
	next := e.Interp.Then(p, onF, onR)
	return heap.ObjectVal(next), heap.Value{}, false
}

func (e *Engine) promiseCatch(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	p, ok := asPromise(this)
	if !ok {
		return heap.Value{}, e.typeError("catch called on a non-Promise"), true
	}
	next := e.Interp.Then(p, heap.Undefined(), callbackOrUndef(args, 0))
	return heap.ObjectVal(next), heap.Value{}, false
}

func (e *Engine) promiseFinally(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	p, ok := asPromise(this)
	if !ok {
		return heap.Value{}, e.typeError("finally called on a non-Promise"), true
	}
	cb := callbackOrUndef(args, 0)
	wrap := func(h *heap.Heap, _ heap.Value, cbArgs []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		if cb.IsCallable() {
			call(cb, heap.Undefined(), nil)
		}
		return callbackOrUndef(cbArgs, 0), heap.Value{}, false
	}
	next := e.Interp.Then(p, e.reg.WrapNative(wrap), e.reg.WrapNative(wrap))
	return heap.ObjectVal(next), heap.Value{}, false
}

func callbackOrUndef(args []heap.Value, i int) heap.Value {
	if i < len(args) {
		return args[i]
	}
	return heap.Undefined()
}

func (e *Engine) promiseResolveStatic(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	v := callbackOrUndef(args, 0)
	if p, ok := asPromise(v); ok {
		return heap.ObjectVal(p), heap.Value{}, false
	}
	p := e.Interp.NewPromise()
	e.Interp.ResolvePromise(p, v)
	return heap.ObjectVal(p), heap.Value{}, false
}

func (e *Engine) promiseRejectStatic(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	p := e.Interp.NewPromise()
	e.Interp.RejectPromise(p, callbackOrUndef(args, 0))
	return heap.ObjectVal(p), heap.Value{}, false
}

func iterableValues(v heap.Value) ([]heap.Value, bool) {
	if !v.IsObject() {
		return nil, false
	}
	ext, ok := v.AsObject().Ext.(*heap.ArrayExt)
	if !ok {
		return nil, false
	}
	return ext.Dense, true
}

// promiseAll implements Promise.all: settles once every input settles
// fulfilled, with results in input order, or rejects with the first
// rejection reason seen (spec.md's supplemented combinator set,
// SPEC_FULL.md §C).
func (e *Engine) promiseAll(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	items, ok := iterableValues(callbackOrUndef(args, 0))
	result := e.Interp.NewPromise()
	if !ok {
		e.Interp.ResolvePromise(result, heap.ObjectVal(h.NewArray(heap.ObjectVal(e.arrayProto))))
		return heap.ObjectVal(result), heap.Value{}, false
	}
	out := h.NewArray(heap.ObjectVal(e.arrayProto))
	outExt := out.Ext.(*heap.ArrayExt)
	outExt.SetLength(uint32(len(items)))
	remaining := len(items)
	if remaining == 0 {
		e.Interp.ResolvePromise(result, heap.ObjectVal(out))
		return heap.ObjectVal(result), heap.Value{}, false
	}
	settled := false
	for i, item := range items {
		idx := i
		e.chainSettled(item,
			func(v heap.Value) {
				if settled {
					return
				}
				outExt.Dense[idx] = v
				h.WriteBarrier(out, v)
				remaining--
				if remaining == 0 {
					settled = true
					e.Interp.ResolvePromise(result, heap.ObjectVal(out))
				}
			},
			func(reason heap.Value) {
				if settled {
					return
				}
				settled = true
				e.Interp.RejectPromise(result, reason)
			},
		)
	}
	return heap.ObjectVal(result), heap.Value{}, false
}

func (e *Engine) promiseAllSettled(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	items, ok := iterableValues(callbackOrUndef(args, 0))
	result := e.Interp.NewPromise()
	if !ok {
		e.Interp.ResolvePromise(result, heap.ObjectVal(h.NewArray(heap.ObjectVal(e.arrayProto))))
		return heap.ObjectVal(result), heap.Value{}, false
	}
	out := h.NewArray(heap.ObjectVal(e.arrayProto))
	outExt := out.Ext.(*heap.ArrayExt)
	outExt.SetLength(uint32(len(items)))
	remaining := len(items)
	if remaining == 0 {
		e.Interp.ResolvePromise(result, heap.ObjectVal(out))
		return heap.ObjectVal(result), heap.Value{}, false
	}
	finish := func(idx int, status string, key string, v heap.Value) {
		entry := h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
		entry.DefineOwn(h, e.Atoms.Atomize("status"), heap.DataDesc(heap.StringVal(h.NewString(status))))
		entry.DefineOwn(h, e.Atoms.Atomize(key), heap.DataDesc(v))
		outExt.Dense[idx] = heap.ObjectVal(entry)
		h.WriteBarrier(out, heap.ObjectVal(entry))
		remaining--
		if remaining == 0 {
			e.Interp.ResolvePromise(result, heap.ObjectVal(out))
		}
	}
	for i, item := range items {
		idx := i
		e.chainSettled(item,
			func(v heap.Value) { finish(idx, "fulfilled", "value", v) },
			func(reason heap.Value) { finish(idx, "rejected", "reason", reason) },
		)
	}
	return heap.ObjectVal(result), heap.Value{}, false
}

func (e *Engine) promiseRace(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	items, ok := iterableValues(callbackOrUndef(args, 0))
	result := e.Interp.NewPromise()
	if !ok {
		return heap.ObjectVal(result), heap.Value{}, false
	}
	settled := false
	for _, item := range items {
		e.chainSettled(item,
			func(v heap.Value) {
				if !settled {
					settled = true
					e.Interp.ResolvePromise(result, v)
				}
			},
			func(reason heap.Value) {
				if !settled {
					settled = true
					e.Interp.RejectPromise(result, reason)
				}
			},
		)
	}
	return heap.ObjectVal(result), heap.Value{}, false
}

func (e *Engine) promiseAny(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	items, ok := iterableValues(callbackOrUndef(args, 0))
	result := e.Interp.NewPromise()
	if !ok || len(items) == 0 {
		e.Interp.RejectPromise(result, e.typeError("All promises were rejected"))
		return heap.ObjectVal(result), heap.Value{}, false
	}
	remaining := len(items)
	settled := false
	errs := h.NewArray(heap.ObjectVal(e.arrayProto))
	errsExt := errs.Ext.(*heap.ArrayExt)
	errsExt.SetLength(uint32(len(items)))
	for i, item := range items {
		idx := i
		e.chainSettled(item,
			func(v heap.Value) {
				if !settled {
					settled = true
					e.Interp.ResolvePromise(result, v)
				}
			},
			func(reason heap.Value) {
				errsExt.Dense[idx] = reason
				h.WriteBarrier(errs, reason)
				remaining--
				if remaining == 0 && !settled {
					settled = true
					agg := e.typeError("All promises were rejected")
					agg.AsObject().DefineOwn(h, e.Atoms.Atomize("errors"), heap.DataDesc(heap.ObjectVal(errs)))
					e.Interp.RejectPromise(result, agg)
				}
			},
		)
	}
	return heap.ObjectVal(result), heap.Value{}, false
}

// chainSettled invokes onFulfilled/onRejected once v (a plain value or
// a promise) settles, wrapping a plain value as an immediate
// fulfillment.
func (e *Engine) chainSettled(v heap.Value, onFulfilled, onRejected func(heap.Value)) {
	p, ok := asPromise(v)
	if !ok {
		onFulfilled(v)
		return
	}
	fulfilled := e.reg.WrapNative(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		onFulfilled(callbackOrUndef(args, 0))
		return heap.Undefined(), heap.Value{}, false
	})
	rejected := e.reg.WrapNative(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		onRejected(callbackOrUndef(args, 0))
		return heap.Undefined(), heap.Value{}, false
	})
	e.Interp.Then(p, fulfilled, rejected)
}
