package builtin_test

import (
	"testing"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func TestStringSliceExtractsSubstring(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallStringPrototype(proto)

	this := heap.StringVal(fx.h.NewString("hello world"))
	slice := fx.method(proto, "slice")
	result, thrownVal, did := slice(fx.h, this, []heap.Value{heap.F64(6)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "world", result.AsString().Go())
}

func TestStringSplitOnSeparator(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallStringPrototype(proto)

	this := heap.StringVal(fx.h.NewString("a,b,c"))
	split := fx.method(proto, "split")
	result, thrownVal, did := split(fx.h, this, []heap.Value{heap.StringVal(fx.h.NewString(","))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)

	ext := result.AsObject().Ext.(*heap.ArrayExt)
	require.Equal(t, uint32(3), ext.Length())
	require.Equal(t, "a", ext.Dense[0].AsString().Go())
	require.Equal(t, "c", ext.Dense[2].AsString().Go())
}

func TestStringReplaceWithCallbackUsesReturnValue(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallStringPrototype(proto)

	this := heap.StringVal(fx.h.NewString("hello world"))
	shout := fx.wrapCallback(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.StringVal(h.NewString("HELLO")), heap.Value{}, false
	})

	replace := fx.method(proto, "replace")
	result, thrownVal, did := replace(fx.h, this, []heap.Value{heap.StringVal(fx.h.NewString("hello")), shout}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "HELLO world", result.AsString().Go())
}

func TestStringRepeatWithNegativeCountThrows(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallStringPrototype(proto)

	this := heap.StringVal(fx.h.NewString("x"))
	repeat := fx.method(proto, "repeat")
	_, thrownVal, did := repeat(fx.h, this, []heap.Value{heap.F64(-1)}, syncCaller(fx.h))
	require.True(t, did)
	require.True(t, thrownVal.IsObject())
}
