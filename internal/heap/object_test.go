package heap_test

import (
	"testing"

	"ecmalite/internal/atom"
	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func TestSetCreatesOwnDataPropertyWhenMissing(t *testing.T) {
	tbl := atom.New()
	o := heap.NewObject(heap.ClassPlainObject, heap.Null())
	key := tbl.Atomize("x")
	setter, needsCall := o.Set(nil, key, heap.I32(1))
	require.False(t, needsCall)
	require.True(t, setter.IsUndefined())

	d, ok := o.OwnProperty(key)
	require.True(t, ok)
	require.True(t, d.Flags.Writable && d.Flags.Enumerable && d.Flags.Configurable)
	require.Equal(t, int32(1), d.Value.AsI32())
}

func TestSetRespectsNonWritable(t *testing.T) {
	o := heap.NewObject(heap.ClassPlainObject, heap.Null())
	tbl := atom.New()
	key := tbl.Atomize("frozen")
	o.DefineOwn(nil, key, heap.PropDesc{
		Flags: heap.PropFlags{Enumerable: true, Configurable: false, Writable: false},
		Value: heap.I32(1),
	})
	_, needsCall := o.Set(nil, key, heap.I32(2))
	require.False(t, needsCall)
	d, _ := o.OwnProperty(key)
	require.Equal(t, int32(1), d.Value.AsI32())
}

func TestLookupWalksPrototypeChain(t *testing.T) {
	tbl := atom.New()
	key := tbl.Atomize("greet")
	proto := heap.NewObject(heap.ClassPlainObject, heap.Null())
	proto.DefineOwn(nil, key, heap.DataDesc(heap.I32(42)))

	child := heap.NewObject(heap.ClassPlainObject, heap.ObjectVal(proto))
	owner, d, ok := child.Lookup(nil, key)
	require.True(t, ok)
	require.Same(t, proto, owner)
	require.Equal(t, int32(42), d.Value.AsI32())

	require.True(t, child.Has(nil, key))
}

func TestDeleteHonorsConfigurable(t *testing.T) {
	tbl := atom.New()
	o := heap.NewObject(heap.ClassPlainObject, heap.Null())
	key := tbl.Atomize("k")
	o.DefineOwn(nil, key, heap.PropDesc{
		Flags: heap.PropFlags{Configurable: false},
		Value: heap.I32(1),
	})
	require.False(t, o.Delete(key))
	_, ok := o.OwnProperty(key)
	require.True(t, ok)
}

func TestOwnKeysPreservesInsertionOrder(t *testing.T) {
	tbl := atom.New()
	o := heap.NewObject(heap.ClassPlainObject, heap.Null())
	keys := []string{"b", "a", "c"}
	for _, k := range keys {
		o.DefineOwn(nil, tbl.Atomize(k), heap.DataDesc(heap.Undefined()))
	}
	got := o.OwnKeys()
	require.Len(t, got, 3)
	for i, k := range keys {
		require.Equal(t, tbl.Atomize(k), got[i])
	}
}

func TestArraySetElementDenseThenSparseAbort(t *testing.T) {
	a := heap.NewArrayExt()
	ok := a.SetElement(nil, nil, 0, heap.I32(1))
	require.True(t, ok)
	ok = a.SetElement(nil, nil, 1, heap.I32(2))
	require.True(t, ok)
	require.Equal(t, uint32(2), a.Length())

	ok = a.SetElement(nil, nil, 100000, heap.I32(3))
	require.False(t, ok)
	require.True(t, a.Sparse)
}

func TestBoundFunctionChainResolvesInnermostThis(t *testing.T) {
	target := heap.NewObject(heap.ClassFunction, heap.Null())
	target.Ext = heap.NewFunctionExt(&heap.FunctionMeta{}, nil)

	t1 := heap.ObjectVal(heap.NewObject(heap.ClassPlainObject, heap.Null()))
	t2 := heap.ObjectVal(heap.NewObject(heap.ClassPlainObject, heap.Null()))

	g := heap.NewObject(heap.ClassBoundFunction, heap.Null())
	g.Ext = &heap.BoundFunctionExt{Target: heap.ObjectVal(target), BoundThis: t1, BoundArgs: []heap.Value{heap.I32(1)}}

	hObj := heap.NewObject(heap.ClassBoundFunction, heap.Null())
	hObj.Ext = &heap.BoundFunctionExt{Target: heap.ObjectVal(g), BoundThis: t2, BoundArgs: []heap.Value{heap.I32(2)}}

	resolvedTarget, resolvedThis, args := hObj.Ext.(*heap.BoundFunctionExt).Resolve()
	require.Same(t, target, resolvedTarget.AsObject())
	require.True(t, heap.StrictEquals(t1, resolvedThis))
	require.Len(t, args, 2)
	require.Equal(t, int32(1), args[0].AsI32())
	require.Equal(t, int32(2), args[1].AsI32())
}
