package builtin

import (
	"math"
	"strconv"

	"ecmalite/internal/heap"
)

// formatNumber renders f as a string (spec.md §4.2's to_string on a
// number), special-casing NaN/Infinity
// since Go's strconv spells those differently than ECMAScript.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// InstallNumberPrototype attaches Number.prototype.toString/toFixed
// (SPEC_FULL.md §C), grounded on
// original_source/njs/basic_types/JSNumberPrototype.h.
func (r *Registry) InstallNumberPrototype(proto *heap.Object) {
	r.defineMethod(proto, "toString", r.numberToString)
	r.defineMethod(proto, "toFixed", r.numberToFixed)
}

func thisNumber(this heap.Value) (float64, bool) {
	if this.IsNumber() {
		return this.ToFloat64(), true
	}
	if this.IsObject() {
		if w, ok := this.AsObject().Ext.(*heap.WrapperExt); ok && w.Prim.IsNumber() {
			return w.Prim.ToFloat64(), true
		}
	}
	return 0, false
}

func (r *Registry) numberToString(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	f, ok := thisNumber(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "Number.prototype.toString requires a number"), true
	}
	radix := 10
	if len(args) > 0 && args[0].IsNumber() {
		radix = int(args[0].ToFloat64())
	}
	if radix == 10 {
		return heap.StringVal(h.NewString(formatNumber(f))), heap.Value{}, false
	}
	return heap.StringVal(h.NewString(strconv.FormatInt(int64(f), radix))), heap.Value{}, false
}

func (r *Registry) numberToFixed(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	f, ok := thisNumber(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "Number.prototype.toFixed requires a number"), true
	}
	digits := 0
	if len(args) > 0 && args[0].IsNumber() {
		digits = int(args[0].ToFloat64())
	}
	return heap.StringVal(h.NewString(strconv.FormatFloat(f, 'f', digits, 64))), heap.Value{}, false
}
