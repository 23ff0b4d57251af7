// Date.prototype methods (SPEC_FULL.md §C's supplemented Date surface).
// heap.DateExt stores epoch milliseconds as a float64 so `NaN` doubles
// as the ECMAScript "Invalid Date" sentinel. Grounded on
// original_source/njs/basic_types/JSDatePrototype.h for the getter set.
package builtin

import (
	"math"
	"time"

	"ecmalite/internal/heap"
)

// InstallDatePrototype attaches the getter methods every Date instance
// needs (full calendar arithmetic and setters are left for a later
// pass; spec.md's supplemented feature set only requires reading back
// what the constructor stored).
func (r *Registry) InstallDatePrototype(proto *heap.Object) {
	r.defineMethod(proto, "getTime", r.dateGetTime)
	r.defineMethod(proto, "valueOf", r.dateGetTime)
	r.defineMethod(proto, "getFullYear", r.dateGetFullYear)
	r.defineMethod(proto, "getMonth", r.dateGetMonth)
	r.defineMethod(proto, "getDate", r.dateGetDate)
	r.defineMethod(proto, "getDay", r.dateGetDay)
	r.defineMethod(proto, "getHours", r.dateGetHours)
	r.defineMethod(proto, "getMinutes", r.dateGetMinutes)
	r.defineMethod(proto, "getSeconds", r.dateGetSeconds)
	r.defineMethod(proto, "toISOString", r.dateToISOString)
	r.defineMethod(proto, "toString", r.dateToISOString)
}

func thisDate(this heap.Value) (*heap.DateExt, bool) {
	if !this.IsObject() {
		return nil, false
	}
	ext, ok := this.AsObject().Ext.(*heap.DateExt)
	return ext, ok
}

func (r *Registry) dateGetTime(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	ext, ok := thisDate(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "getTime called on a non-Date"), true
	}
	return heap.F64(ext.EpochMillis), heap.Value{}, false
}

func (r *Registry) dateComponent(h *heap.Heap, this heap.Value, get func(time.Time) float64) (heap.Value, heap.Value, bool) {
	ext, ok := thisDate(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "method called on a non-Date"), true
	}
	if math.IsNaN(ext.EpochMillis) {
		return heap.F64(math.NaN()), heap.Value{}, false
	}
	t := time.UnixMilli(int64(ext.EpochMillis)).UTC()
	return heap.F64(get(t)), heap.Value{}, false
}

func (r *Registry) dateGetFullYear(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(t.Year()) })
}

func (r *Registry) dateGetMonth(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(int(t.Month()) - 1) })
}

func (r *Registry) dateGetDate(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(t.Day()) })
}

func (r *Registry) dateGetDay(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(int(t.Weekday())) })
}

func (r *Registry) dateGetHours(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(t.Hour()) })
}

func (r *Registry) dateGetMinutes(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(t.Minute()) })
}

func (r *Registry) dateGetSeconds(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	return r.dateComponent(h, this, func(t time.Time) float64 { return float64(t.Second()) })
}

func (r *Registry) dateToISOString(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	ext, ok := thisDate(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "toISOString called on a non-Date"), true
	}
	if math.IsNaN(ext.EpochMillis) {
		return heap.StringVal(h.NewString("Invalid Date")), heap.Value{}, false
	}
	t := time.UnixMilli(int64(ext.EpochMillis)).UTC()
	return heap.StringVal(h.NewString(t.Format("2006-01-02T15:04:05.000Z"))), heap.Value{}, false
}
