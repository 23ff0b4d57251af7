// RegExp and Date constructors (SPEC_FULL.md §C's supplemented
// built-ins). Both reclass the generically-allocated `this` object
// construct() hands back, the same pattern installPromiseCtor uses.
package runtime

import (
	"time"

	"ecmalite/internal/heap"
	"ecmalite/internal/regexpengine"
)

func (e *Engine) installRegExpCtor() {
	e.reg.InstallRegExpPrototype(e.regexpProto)
	e.nativeCtor("RegExp", e.regexpProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		source, flagStr := "", ""
		if len(args) > 0 {
			if args[0].IsObject() && args[0].AsObject().Class == heap.ClassRegExp {
				src := args[0].AsObject().Ext.(*heap.RegExpExt)
				source, flagStr = src.Source.Go(), src.Flags.Go()
			} else if args[0].IsString() {
				source = args[0].AsString().Go()
			}
		}
		if len(args) > 1 && args[1].IsString() {
			flagStr = args[1].AsString().Go()
		}
		flags, err := regexpengine.ParseFlags(flagStr)
		if err != nil {
			return heap.Value{}, e.typeError(err.Error()), true
		}
		prog, err := regexpengine.Compile(source, flags)
		if err != nil {
			return heap.Value{}, e.typeError(err.Error()), true
		}
		sourceStr, flagsStr := h.NewString(source), h.NewString(flagStr)
		self := this.AsObject()
		self.Class = heap.ClassRegExp
		self.Ext = &heap.RegExpExt{Source: sourceStr, Flags: flagsStr, Compiled: prog}
		self.DefineOwn(h, e.Atoms.Atomize("source"), heap.DataDesc(heap.StringVal(sourceStr)))
		self.DefineOwn(h, e.Atoms.Atomize("flags"), heap.DataDesc(heap.StringVal(flagsStr)))
		self.DefineOwn(h, e.Atoms.Atomize("global"), heap.DataDesc(heap.Bool(flags.Global)))
		return this, heap.Value{}, false
	})
}

func (e *Engine) installDateCtor() {
	e.reg.InstallDatePrototype(e.dateProto)
	ctor := e.nativeCtor("Date", e.dateProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		millis := float64(time.Now().UnixMilli())
		if len(args) == 1 && args[0].IsNumber() {
			millis = args[0].ToFloat64()
		}
		if !this.IsObject() {
			return heap.F64(millis), heap.Value{}, false
		}
		self := this.AsObject()
		self.Class = heap.ClassDate
		self.Ext = &heap.DateExt{EpochMillis: millis}
		return this, heap.Value{}, false
	})
	e.reg.DefineNative(ctor, "now", func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.F64(float64(time.Now().UnixMilli())), heap.Value{}, false
	})
}
