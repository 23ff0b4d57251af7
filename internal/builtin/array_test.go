package builtin_test

import (
	"testing"

	"ecmalite/internal/atom"
	"ecmalite/internal/builtin"
	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

// syncCaller invokes a heap.NativeFunc-wrapped callback directly,
// standing in for internal/interp's real Call for tests that only
// exercise synchronous built-ins (no microtask scheduling involved).
func syncCaller(h *heap.Heap) heap.Caller {
	return func(fn heap.Value, this heap.Value, args []heap.Value) (heap.Value, heap.Value, bool) {
		ext := fn.AsObject().Ext.(*heap.FunctionExt)
		return ext.Meta.Native(h, this, args, syncCaller(h))
	}
}

type fixture struct {
	h   *heap.Heap
	tbl *atom.Table
	reg *builtin.Registry
}

func newFixture() *fixture {
	tbl := atom.New()
	statics := atom.NewStaticAtoms(tbl)
	h := heap.New(tbl, statics)
	return &fixture{h: h, tbl: tbl, reg: builtin.New(h, tbl, statics)}
}

func (fx *fixture) method(proto *heap.Object, name string) heap.NativeFunc {
	d, ok := proto.OwnProperty(fx.tbl.Atomize(name))
	if !ok {
		panic("no such method: " + name)
	}
	return d.Value.AsObject().Ext.(*heap.FunctionExt).Meta.Native
}

func (fx *fixture) newArray(vals ...heap.Value) *heap.Object {
	arr := fx.h.NewArray(heap.Null())
	ext := arr.Ext.(*heap.ArrayExt)
	for _, v := range vals {
		ext.Push(fx.h, arr, v)
	}
	return arr
}

func (fx *fixture) wrapCallback(fn heap.NativeFunc) heap.Value {
	o := fx.h.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: fn}, nil)
	return heap.ObjectVal(o)
}

func TestArrayPushIncreasesLength(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallArrayPrototype(proto)

	arr := fx.newArray()
	push := fx.method(proto, "push")
	result, thrownVal, did := push(fx.h, heap.ObjectVal(arr), []heap.Value{heap.F64(1), heap.F64(2)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(2), result.ToFloat64())
	require.Equal(t, uint32(2), arr.Ext.(*heap.ArrayExt).Length())
}

func TestArrayMapAppliesCallbackToEachElement(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallArrayPrototype(proto)

	arr := fx.newArray(heap.F64(1), heap.F64(2), heap.F64(3))
	double := fx.wrapCallback(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.F64(args[0].ToFloat64() * 2), heap.Value{}, false
	})

	mapFn := fx.method(proto, "map")
	result, thrownVal, did := mapFn(fx.h, heap.ObjectVal(arr), []heap.Value{double}, syncCaller(fx.h))
	require.False(t, did, thrownVal)

	outExt := result.AsObject().Ext.(*heap.ArrayExt)
	require.Equal(t, []float64{2, 4, 6}, toFloats(outExt.Dense))
}

func TestArrayReduceWithoutInitialValueUsesFirstElement(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallArrayPrototype(proto)

	arr := fx.newArray(heap.F64(10), heap.F64(20), heap.F64(30))
	sum := fx.wrapCallback(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.F64(args[0].ToFloat64() + args[1].ToFloat64()), heap.Value{}, false
	})

	reduceFn := fx.method(proto, "reduce")
	result, thrownVal, did := reduceFn(fx.h, heap.ObjectVal(arr), []heap.Value{sum}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(60), result.ToFloat64())
}

func TestArrayReduceOnEmptyArrayWithNoInitialValueThrows(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallArrayPrototype(proto)

	arr := fx.newArray()
	noop := fx.wrapCallback(func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.Undefined(), heap.Value{}, false
	})

	reduceFn := fx.method(proto, "reduce")
	_, thrownVal, did := reduceFn(fx.h, heap.ObjectVal(arr), []heap.Value{noop}, syncCaller(fx.h))
	require.True(t, did)
	require.True(t, thrownVal.IsObject())
}

func toFloats(vs []heap.Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.ToFloat64()
	}
	return out
}
