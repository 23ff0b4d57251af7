// Number, String, and Boolean constructors (SPEC_FULL.md §C's
// supplemented primitive-wrapper surface). Called without `new` each
// coerces its argument to the bare primitive; called with `new` (this
// arrives as the generically-allocated object construct() hands back)
// each reclasses this into the matching wrapper class around a boxed
// primitive, the same pattern installRegExpCtor and installDateCtor
// use for their own `this` reclassing.
package runtime

import (
	"math"
	"strconv"

	"ecmalite/internal/heap"
)

// numberToString renders f as a string, mirroring internal/builtin's own unexported formatNumber since the
// two packages can't share it directly.
func numberToString(f float64) string {
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

func (e *Engine) installNumberCtor() {
	e.nativeCtor("Number", e.numberProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		n := 0.0
		if len(args) > 0 {
			switch a := args[0]; {
			case a.IsNumber():
				n = a.ToFloat64()
			case a.IsString():
				if f, err := strconv.ParseFloat(a.AsString().Go(), 64); err == nil {
					n = f
				} else if a.AsString().Len() > 0 {
					n = math.NaN()
				}
			case a.IsBool() && a.AsBool():
				n = 1
			case !a.IsBool() && !a.IsNull():
				n = math.NaN()
			}
		}
		if !this.IsObject() {
			return heap.F64(n), heap.Value{}, false
		}
		self := this.AsObject()
		self.Class = heap.ClassNumberObject
		self.Ext = heap.NewWrapperExt(heap.F64(n))
		return this, heap.Value{}, false
	})
}

func (e *Engine) installStringCtor() {
	e.nativeCtor("String", e.stringProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		s := ""
		if len(args) > 0 {
			if args[0].IsString() {
				s = args[0].AsString().Go()
			} else if args[0].IsNumber() {
				s = numberToString(args[0].ToFloat64())
			} else {
				s = e.displayValue(args[0])
			}
		}
		sv := heap.StringVal(h.NewString(s))
		if !this.IsObject() {
			return sv, heap.Value{}, false
		}
		self := this.AsObject()
		self.Class = heap.ClassStringObject
		self.Ext = heap.NewWrapperExt(sv)
		return this, heap.Value{}, false
	})
}

func (e *Engine) installBooleanCtor() {
	e.nativeCtor("Boolean", e.booleanProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		b := false
		if len(args) > 0 {
			b = truthy(args[0])
		}
		if !this.IsObject() {
			return heap.Bool(b), heap.Value{}, false
		}
		self := this.AsObject()
		self.Class = heap.ClassBooleanObject
		self.Ext = heap.NewWrapperExt(heap.Bool(b))
		return this, heap.Value{}, false
	})
}

func truthy(v heap.Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull():
		return false
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		f := v.ToFloat64()
		return f != 0 && !math.IsNaN(f)
	case v.IsString():
		return v.AsString().Go() != ""
	default:
		return true
	}
}
