package builtin_test

import (
	"testing"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func addAllCallback(h *heap.Heap) heap.Value {
	fx := &fixture{h: h}
	return fx.wrapCallback(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		sum := this.ToFloat64()
		for _, a := range args {
			sum += a.ToFloat64()
		}
		return heap.F64(sum), heap.Value{}, false
	})
}

func TestFunctionCallInvokesWithExplicitThisAndArgs(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallFunctionPrototype(proto)

	target := addAllCallback(fx.h)
	call := fx.method(proto, "call")
	result, thrownVal, did := call(fx.h, target, []heap.Value{heap.F64(10), heap.F64(5)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(15), result.ToFloat64())
}

func TestFunctionApplySpreadsArrayArguments(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallFunctionPrototype(proto)

	target := addAllCallback(fx.h)
	args := fx.newArray(heap.F64(1), heap.F64(2), heap.F64(3))

	apply := fx.method(proto, "apply")
	result, thrownVal, did := apply(fx.h, target, []heap.Value{heap.F64(100), heap.ObjectVal(args)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(106), result.ToFloat64())
}

func TestFunctionBindProducesCallableBoundFunction(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallFunctionPrototype(proto)

	target := addAllCallback(fx.h)
	bind := fx.method(proto, "bind")
	bound, thrownVal, did := bind(fx.h, target, []heap.Value{heap.F64(1000)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.True(t, bound.IsObject())
	require.Equal(t, heap.ClassBoundFunction, bound.AsObject().Class)

	ext := bound.AsObject().Ext.(*heap.BoundFunctionExt)
	require.True(t, ext.Target.AsObject() == target.AsObject())
	require.Equal(t, float64(1000), ext.BoundThis.ToFloat64())
}

func TestFunctionCallOnNonCallableThisThrows(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallFunctionPrototype(proto)

	call := fx.method(proto, "call")
	_, thrownVal, did := call(fx.h, heap.F64(1), nil, syncCaller(fx.h))
	require.True(t, did)
	require.True(t, thrownVal.IsObject())
}
