package runtime_test

import (
	"testing"

	"ecmalite/internal/heap"
	"ecmalite/internal/runtime"

	"github.com/stretchr/testify/require"
)

func lookupMethod(t *testing.T, engine *runtime.Engine, owner heap.Value, name string) heap.Value {
	t.Helper()
	require.True(t, owner.IsObject())
	_, d, ok := owner.AsObject().Lookup(engine.Heap, engine.Atoms.Atomize(name))
	require.True(t, ok)
	return d.Value
}

func resolvedPromise(t *testing.T, engine *runtime.Engine, v heap.Value) heap.Value {
	t.Helper()
	p := engine.Interp.NewPromise()
	engine.Interp.ResolvePromise(p, v)
	return heap.ObjectVal(p)
}

func rejectedPromise(t *testing.T, engine *runtime.Engine, reason heap.Value) heap.Value {
	t.Helper()
	p := engine.Interp.NewPromise()
	engine.Interp.RejectPromise(p, reason)
	return heap.ObjectVal(p)
}

func newValueArray(engine *runtime.Engine, values ...heap.Value) heap.Value {
	out := engine.Heap.NewArray(heap.Undefined())
	ext := out.Ext.(*heap.ArrayExt)
	for _, v := range values {
		ext.Push(engine.Heap, out, v)
	}
	return heap.ObjectVal(out)
}

func observeSettle(engine *runtime.Engine, p heap.Value) (fulfilled *heap.Value, rejected *heap.Value) {
	onFulfilled := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		v := args[0]
		fulfilled = &v
		return heap.Undefined(), heap.Value{}, false
	})
	onRejected := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		v := args[0]
		rejected = &v
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(p.AsObject(), onFulfilled, onRejected)
	return
}

func TestPromiseAllResolvesWithResultsInInputOrder(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	all := lookupMethod(t, engine, ctor, "all")

	items := newValueArray(engine, resolvedPromise(t, engine, heap.F64(1)), resolvedPromise(t, engine, heap.F64(2)))
	result, err := engine.Interp.Call(all, ctor, []heap.Value{items})
	require.NoError(t, err)

	var fulfilled *heap.Value
	fulfilled, _ = observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, fulfilled)
	arr := fulfilled.AsObject().Ext.(*heap.ArrayExt)
	require.Equal(t, uint32(2), arr.Length())
	require.Equal(t, float64(1), arr.Dense[0].ToFloat64())
	require.Equal(t, float64(2), arr.Dense[1].ToFloat64())
}

func TestPromiseAllRejectsOnFirstRejection(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	all := lookupMethod(t, engine, ctor, "all")

	items := newValueArray(engine, resolvedPromise(t, engine, heap.F64(1)), rejectedPromise(t, engine, heap.StringVal(engine.Heap.NewString("nope"))))
	result, err := engine.Interp.Call(all, ctor, []heap.Value{items})
	require.NoError(t, err)

	_, rejected := observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, rejected)
	require.Equal(t, "nope", rejected.AsString().Go())
}

func TestPromiseRaceSettlesWithFirstSettledInput(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	race := lookupMethod(t, engine, ctor, "race")

	items := newValueArray(engine, resolvedPromise(t, engine, heap.F64(1)), resolvedPromise(t, engine, heap.F64(2)))
	result, err := engine.Interp.Call(race, ctor, []heap.Value{items})
	require.NoError(t, err)

	fulfilled, _ := observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, fulfilled)
	require.Equal(t, float64(1), fulfilled.ToFloat64())
}

func TestPromiseAnyResolvesWithFirstFulfillmentIgnoringEarlierRejections(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	any := lookupMethod(t, engine, ctor, "any")

	items := newValueArray(engine,
		rejectedPromise(t, engine, heap.StringVal(engine.Heap.NewString("e1"))),
		resolvedPromise(t, engine, heap.F64(9)),
	)
	result, err := engine.Interp.Call(any, ctor, []heap.Value{items})
	require.NoError(t, err)

	fulfilled, _ := observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, fulfilled)
	require.Equal(t, float64(9), fulfilled.ToFloat64())
}

func TestPromiseAnyRejectsWhenEveryInputRejects(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	any := lookupMethod(t, engine, ctor, "any")

	items := newValueArray(engine,
		rejectedPromise(t, engine, heap.StringVal(engine.Heap.NewString("e1"))),
		rejectedPromise(t, engine, heap.StringVal(engine.Heap.NewString("e2"))),
	)
	result, err := engine.Interp.Call(any, ctor, []heap.Value{items})
	require.NoError(t, err)

	_, rejected := observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, rejected)
}

func TestPromiseAllSettledReportsStatusForEachInput(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := newPromiseCtor(t, engine)
	allSettled := lookupMethod(t, engine, ctor, "allSettled")

	items := newValueArray(engine,
		resolvedPromise(t, engine, heap.F64(1)),
		rejectedPromise(t, engine, heap.StringVal(engine.Heap.NewString("nope"))),
	)
	result, err := engine.Interp.Call(allSettled, ctor, []heap.Value{items})
	require.NoError(t, err)

	fulfilled, _ := observeSettle(engine, result)
	engine.Loop.Run()

	require.NotNil(t, fulfilled)
	arr := fulfilled.AsObject().Ext.(*heap.ArrayExt)
	require.Equal(t, uint32(2), arr.Length())

	_, _, ok := arr.Dense[0].AsObject().Lookup(engine.Heap, engine.Atoms.Atomize("status"))
	require.True(t, ok)
}

func TestPromiseFinallyRunsCallbackRegardlessOfOutcome(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	p := resolvedPromise(t, engine, heap.F64(5))
	finallyFn := lookupMethod(t, engine, p, "finally")

	ran := false
	cb := nativeFn(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		ran = true
		return heap.Undefined(), heap.Value{}, false
	})
	next, err := engine.Interp.Call(finallyFn, p, []heap.Value{cb})
	require.NoError(t, err)

	fulfilled, _ := observeSettle(engine, next)
	engine.Loop.Run()

	require.True(t, ran)
	require.NotNil(t, fulfilled)
	require.Equal(t, float64(5), fulfilled.ToFloat64())
}
