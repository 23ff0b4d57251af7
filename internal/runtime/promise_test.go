package runtime_test

import (
	"testing"

	"ecmalite/internal/heap"
	"ecmalite/internal/runtime"

	"github.com/stretchr/testify/require"
)

func newPromiseCtor(t *testing.T, engine *runtime.Engine) heap.Value {
	t.Helper()
	_, d, ok := engine.Global.Lookup(engine.Heap, engine.Atoms.Atomize("Promise"))
	require.True(t, ok)
	return d.Value
}

func nativeFn(h *heap.Heap, fn heap.NativeFunc) heap.Value {
	o := h.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: fn}, nil)
	return heap.ObjectVal(o)
}

func TestPromiseResolvesSynchronousExecutorValue(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)

	executor := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		resolve := args[0]
		call(resolve, heap.Undefined(), []heap.Value{heap.F64(42)})
		return heap.Undefined(), heap.Value{}, false
	})

	// Run the constructor the way `new Promise(executor)` does: on a
	// freshly allocated this object, which becomes the promise.
	self := engine.Heap.NewObject(heap.ClassPlainObject, heap.Null())
	_, err := engine.Interp.Call(ctor, heap.ObjectVal(self), []heap.Value{executor})
	require.NoError(t, err)
	p := heap.ObjectVal(self)
	require.True(t, p.IsObject())
	require.Equal(t, heap.ClassPromise, p.AsObject().Class)

	var observed heap.Value
	onFulfilled := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		observed = args[0]
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(p.AsObject(), onFulfilled, heap.Undefined())

	engine.Loop.Run()
	require.Equal(t, float64(42), observed.ToFloat64())
}

func TestPromiseRejectionPropagatesToRejectionHandler(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)

	executor := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		reject := args[1]
		call(reject, heap.Undefined(), []heap.Value{heap.StringVal(h.NewString("boom"))})
		return heap.Undefined(), heap.Value{}, false
	})

	self := engine.Heap.NewObject(heap.ClassPlainObject, heap.Null())
	_, err := engine.Interp.Call(ctor, heap.ObjectVal(self), []heap.Value{executor})
	require.NoError(t, err)
	p := heap.ObjectVal(self)

	var reason heap.Value
	onRejected := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		reason = args[0]
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(p.AsObject(), heap.Undefined(), onRejected)

	engine.Loop.Run()
	require.Equal(t, "boom", reason.AsString().Go())
}
