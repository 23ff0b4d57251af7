package runtime_test

import (
	"testing"

	"ecmalite/internal/heap"
	"ecmalite/internal/runtime"

	"github.com/stretchr/testify/require"
)

func TestNumberCalledWithoutNewCoercesToPrimitive(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := lookupGlobal(t, engine, "Number")

	result, err := engine.Interp.Call(ctor, heap.Undefined(), []heap.Value{heap.StringVal(engine.Heap.NewString("42"))})
	require.NoError(t, err)
	require.True(t, result.IsNumber())
	require.Equal(t, float64(42), result.ToFloat64())
}

func TestBooleanCalledWithNewProducesWrapperObject(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := lookupGlobal(t, engine, "Boolean")

	this := engine.Heap.NewObject(heap.ClassPlainObject, heap.ObjectVal(engine.Heap.NewObject(heap.ClassPlainObject, heap.Null())))
	fn := ctor.AsObject().Ext.(*heap.FunctionExt).Meta.Native
	result, thrownVal, did := fn(engine.Heap, heap.ObjectVal(this), []heap.Value{heap.Bool(true)}, func(fn, this heap.Value, args []heap.Value) (heap.Value, heap.Value, bool) {
		return heap.Undefined(), heap.Value{}, false
	})
	require.False(t, did, thrownVal)
	require.Equal(t, heap.ClassBooleanObject, result.AsObject().Class)
	require.True(t, result.AsObject().Ext.(*heap.WrapperExt).Prim.AsBool())
}

func TestStringCalledWithoutArgumentsYieldsEmptyString(t *testing.T) {
	engine := runtime.New(runtime.Options{})
	ctor := lookupGlobal(t, engine, "String")

	result, err := engine.Interp.Call(ctor, heap.Undefined(), nil)
	require.NoError(t, err)
	require.Equal(t, "", result.AsString().Go())
}
