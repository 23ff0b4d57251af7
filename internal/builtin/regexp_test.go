package builtin_test

import (
	"testing"

	"ecmalite/internal/heap"
	"ecmalite/internal/regexpengine"

	"github.com/stretchr/testify/require"
)

func (fx *fixture) newRegExp(source, flagStr string) *heap.Object {
	flags, err := regexpengine.ParseFlags(flagStr)
	if err != nil {
		panic(err)
	}
	prog, err := regexpengine.Compile(source, flags)
	if err != nil {
		panic(err)
	}
	o := fx.h.NewObject(heap.ClassRegExp, heap.Null())
	o.Ext = &heap.RegExpExt{
		Source:   fx.h.NewString(source),
		Flags:    fx.h.NewString(flagStr),
		Compiled: prog,
	}
	return o
}

func TestRegExpExecReturnsMatchWithIndex(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallRegExpPrototype(proto)

	re := fx.newRegExp("wor(l)d", "")
	exec := fx.method(proto, "exec")
	result, thrownVal, did := exec(fx.h, heap.ObjectVal(re), []heap.Value{heap.StringVal(fx.h.NewString("hello world"))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.True(t, result.IsObject())

	arrExt := result.AsObject().Ext.(*heap.ArrayExt)
	require.Equal(t, "world", arrExt.Dense[0].AsString().Go())
	require.Equal(t, "l", arrExt.Dense[1].AsString().Go())

	idxDesc, ok := result.AsObject().OwnProperty(fx.tbl.Atomize("index"))
	require.True(t, ok)
	require.Equal(t, float64(6), idxDesc.Value.ToFloat64())
}

func TestRegExpExecWithNoMatchReturnsNull(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallRegExpPrototype(proto)

	re := fx.newRegExp("xyz", "")
	exec := fx.method(proto, "exec")
	result, thrownVal, did := exec(fx.h, heap.ObjectVal(re), []heap.Value{heap.StringVal(fx.h.NewString("hello world"))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.True(t, result.IsNull())
}

func TestRegExpTestReportsBooleanMatch(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallRegExpPrototype(proto)

	re := fx.newRegExp("hello", "")
	test := fx.method(proto, "test")
	result, thrownVal, did := test(fx.h, heap.ObjectVal(re), []heap.Value{heap.StringVal(fx.h.NewString("hello world"))}, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.True(t, result.AsBool())
}

func TestRegExpToStringFormatsSourceAndFlags(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallRegExpPrototype(proto)

	re := fx.newRegExp("ab+c", "gi")
	toString := fx.method(proto, "toString")
	result, thrownVal, did := toString(fx.h, heap.ObjectVal(re), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "/ab+c/gi", result.AsString().Go())
}
