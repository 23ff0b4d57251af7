package builtin_test

import (
	"math"
	"testing"
	"time"

	"ecmalite/internal/heap"

	"github.com/stretchr/testify/require"
)

func (fx *fixture) newDate(epochMillis float64) *heap.Object {
	o := fx.h.NewObject(heap.ClassDate, heap.Null())
	o.Ext = &heap.DateExt{EpochMillis: epochMillis}
	return o
}

func TestDateGetTimeReturnsEpochMillis(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallDatePrototype(proto)

	d := fx.newDate(1000)
	getTime := fx.method(proto, "getTime")
	result, thrownVal, did := getTime(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(1000), result.ToFloat64())
}

func TestDateGettersDecodeCalendarFields(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallDatePrototype(proto)

	ts := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	d := fx.newDate(float64(ts.UnixMilli()))

	getFullYear := fx.method(proto, "getFullYear")
	year, thrownVal, did := getFullYear(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(2024), year.ToFloat64())

	getMonth := fx.method(proto, "getMonth")
	month, thrownVal, did := getMonth(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(2), month.ToFloat64())

	getDate := fx.method(proto, "getDate")
	day, thrownVal, did := getDate(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, float64(15), day.ToFloat64())
}

func TestDateGetterOnInvalidDateYieldsNaN(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallDatePrototype(proto)

	d := fx.newDate(math.NaN())
	getHours := fx.method(proto, "getHours")
	result, thrownVal, did := getHours(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.True(t, math.IsNaN(result.ToFloat64()))
}

func TestDateToISOStringFormatsUTCTimestamp(t *testing.T) {
	fx := newFixture()
	proto := fx.h.NewObject(heap.ClassPlainObject, heap.Null())
	fx.reg.InstallDatePrototype(proto)

	ts := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	d := fx.newDate(float64(ts.UnixMilli()))

	toISOString := fx.method(proto, "toISOString")
	result, thrownVal, did := toISOString(fx.h, heap.ObjectVal(d), nil, syncCaller(fx.h))
	require.False(t, did, thrownVal)
	require.Equal(t, "2024-03-15T10:30:00.000Z", result.AsString().Go())
}
