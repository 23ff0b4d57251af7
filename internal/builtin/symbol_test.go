package builtin_test

import (
	"testing"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func TestSymbolConstructorMintsDistinctAtomsForSameDescription(t *testing.T) {
	fx := newFixture()

	a, thrownVal, did := fx.reg.SymbolConstructor(fx.h, heap.Undefined(), []heap.Value{heap.StringVal(fx.h.NewString("tag"))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	b, thrownVal, did := fx.reg.SymbolConstructor(fx.h, heap.Undefined(), []heap.Value{heap.StringVal(fx.h.NewString("tag"))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)

	require.True(t, a.IsSymbol())
	require.True(t, b.IsSymbol())
	require.NotEqual(t, a.AsAtom(), b.AsAtom())
}

func TestInstallSymbolWellKnownAttachesIteratorSymbol(t *testing.T) {
	fx := newFixture()
	symbolFn := fx.h.NewObject(heap.ClassFunction, heap.Null())
	fx.reg.InstallSymbolWellKnown(symbolFn)

	d, ok := symbolFn.OwnProperty(fx.tbl.Atomize("iterator"))
	require.True(t, ok)
	require.True(t, d.Value.IsSymbol())
}
