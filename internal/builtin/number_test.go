package builtin_test

import (
	"testing"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func TestNumberToStringDefaultsToBaseTen(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallNumberPrototype(proto)

	toString := fx.method(proto, "toString")
	result, thrownVal, did := toString(fx.h, heap.F64(255), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "255", result.AsString().Go())
}

func TestNumberToStringWithRadixFormatsAsHex(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallNumberPrototype(proto)

	toString := fx.method(proto, "toString")
	result, thrownVal, did := toString(fx.h, heap.F64(255), []heap.Value{heap.F64(16)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "ff", result.AsString().Go())
}

func TestNumberToFixedPadsDecimalPlaces(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallNumberPrototype(proto)

	toFixed := fx.method(proto, "toFixed")
	result, thrownVal, did := toFixed(fx.h, heap.F64(3.1), []heap.Value{heap.F64(2)}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "3.10", result.AsString().Go())
}

func TestNumberToStringOnNonNumberThisThrows(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallNumberPrototype(proto)

	toString := fx.method(proto, "toString")
	_, thrownVal, did := toString(fx.h, heap.StringVal(fx.h.NewString("nope")), nil, syncCaller(fx.h))
	require.True(t, did)
	require.True(t, thrownVal.IsObject())
}
