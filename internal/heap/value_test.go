package heap_test

import (
	"math"
	"testing"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func TestNeedsGCPartitionsInlineFromHeapTags(t *testing.T) {
	require.False(t, heap.Undefined().NeedsGC())
	require.False(t, heap.Bool(true).NeedsGC())
	require.False(t, heap.I32(7).NeedsGC())
	require.True(t, heap.ObjectVal(heap.NewObject(heap.ClassPlainObject, heap.Null())).NeedsGC())
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, "undefined", heap.Undefined().TypeOf())
	require.Equal(t, "object", heap.Null().TypeOf())
	require.Equal(t, "boolean", heap.Bool(false).TypeOf())
	require.Equal(t, "number", heap.F64(1.5).TypeOf())
	require.Equal(t, "object", heap.ObjectVal(heap.NewObject(heap.ClassPlainObject, heap.Null())).TypeOf())

	fn := heap.NewObject(heap.ClassFunction, heap.Null())
	fn.Ext = heap.NewFunctionExt(&heap.FunctionMeta{}, nil)
	require.Equal(t, "function", heap.ObjectVal(fn).TypeOf())
}

func TestStrictEqualsCrossNumericTags(t *testing.T) {
	require.True(t, heap.StrictEquals(heap.I32(3), heap.F64(3.0)))
	require.True(t, heap.StrictEquals(heap.U32(3), heap.I32(3)))
	require.False(t, heap.StrictEquals(heap.I32(3), heap.I32(4)))
	require.False(t, heap.StrictEquals(heap.Undefined(), heap.Null()))
}

func TestStrictEqualsObjectIdentity(t *testing.T) {
	a := heap.NewObject(heap.ClassPlainObject, heap.Null())
	b := heap.NewObject(heap.ClassPlainObject, heap.Null())
	require.True(t, heap.StrictEquals(heap.ObjectVal(a), heap.ObjectVal(a)))
	require.False(t, heap.StrictEquals(heap.ObjectVal(a), heap.ObjectVal(b)))
}

func TestSameValueNaNAndSignedZero(t *testing.T) {
	nan := heap.F64(math.NaN())
	require.True(t, heap.SameValue(nan, nan))
	require.False(t, heap.SameValue(heap.F64(0), heap.F64(math.Copysign(0, -1))))
	require.True(t, heap.StrictEquals(heap.F64(0), heap.F64(math.Copysign(0, -1))))
}
