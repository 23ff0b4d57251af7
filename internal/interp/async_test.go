package interp_test

import (
	"testing"

	"ecmalite/internal/bytecode"
	"ecmalite/internal/heap"
	"ecmalite/internal/runtime"

	"github.com/stretchr/testify/require"
)

// buildAsyncModule wraps rec (with IsAsync already set) as the module
// entry; calling the returned entry value starts rec's body running and
// returns a Promise immediately (interp.Call's IsAsync interception).
func buildAsyncModule(rec *bytecode.FunctionMetaRecord) *bytecode.Module {
	rec.IsAsync = true
	return &bytecode.Module{Functions: []*bytecode.FunctionMetaRecord{rec}, Entry: 0}
}

func nativeCallback(h *heap.Heap, fn heap.NativeFunc) heap.Value {
	o := h.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: fn}, nil)
	return heap.ObjectVal(o)
}

func TestAsyncFunctionWithNoAwaitResolvesImmediately(t *testing.T) {
	// async function f() { return 7; }
	b := bytecode.NewBuilder(0, 0)
	b.Op1(bytecode.OpPushI32, 7)
	b.Op0(bytecode.OpReturn)
	b.SetMaxStack(1)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildAsyncModule(b.Record()))
	require.NoError(t, err)

	result, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	require.True(t, result.IsObject())
	require.Equal(t, heap.ClassPromise, result.AsObject().Class)

	var observed heap.Value
	onFulfilled := nativeCallback(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		observed = args[0]
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(result.AsObject(), onFulfilled, heap.Undefined())
	engine.Loop.Run()

	require.Equal(t, int32(7), observed.AsI32())
}

func TestAsyncFunctionAwaitsResolvedValueAndContinues(t *testing.T) {
	// async function f() { const x = await somePromise; return x + 1; }
	// The awaited value arrives on the stack (OpSuspend's operand) and
	// the resolved value is read back the same way GeneratorNext's
	// sendValue lands after a yield.
	b := bytecode.NewBuilder(1, 1)
	b.Op1(bytecode.OpGetArg, 0) // the value being "awaited" is passed in as arg 0
	b.Op0(bytecode.OpSuspend)
	b.Op1(bytecode.OpSetLocal, 0)
	b.Op1(bytecode.OpGetLocal, 0)
	b.Op1(bytecode.OpPushI32, 1)
	b.Op0(bytecode.OpAdd)
	b.Op0(bytecode.OpReturn)
	b.SetMaxStack(2)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildAsyncModule(b.Record()))
	require.NoError(t, err)

	result, err := engine.Interp.Call(entry, heap.Undefined(), []heap.Value{heap.F64(41)})
	require.NoError(t, err)
	require.True(t, result.IsObject())
	require.Equal(t, heap.ClassPromise, result.AsObject().Class)

	var observed heap.Value
	onFulfilled := nativeCallback(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		observed = args[0]
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(result.AsObject(), onFulfilled, heap.Undefined())
	engine.Loop.Run()

	require.Equal(t, float64(42), observed.ToFloat64())
}

func TestAsyncFunctionThrowRejectsReturnedPromise(t *testing.T) {
	// async function f() { throw true; }
	b := bytecode.NewBuilder(0, 0)
	b.Op0(bytecode.OpPushTrue)
	b.Op0(bytecode.OpThrow)
	b.SetMaxStack(1)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildAsyncModule(b.Record()))
	require.NoError(t, err)

	result, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	require.True(t, result.IsObject())
	require.Equal(t, heap.ClassPromise, result.AsObject().Class)

	var reason heap.Value
	onRejected := nativeCallback(engine.Heap, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		reason = args[0]
		return heap.Undefined(), heap.Value{}, false
	})
	engine.Interp.Then(result.AsObject(), heap.Undefined(), onRejected)
	engine.Loop.Run()

	require.True(t, reason.AsBool())
}
