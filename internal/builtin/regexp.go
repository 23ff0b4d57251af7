// RegExp.prototype methods (SPEC_FULL.md §C's supplemented RegExp
// surface). The compiled program lives behind heap.RegExpExt.Compiled
// as `any` to keep heap a dependency leaf (see wrapper.go's doc
// comment); this package, which already depends on internal/regexpengine
// for internal/runtime's constructor body, performs the type assertion
// here on every method call. Grounded on
// original_source/njs/basic_types/JSRegExpPrototype.h.
package builtin

import (
	"ecmalite/internal/heap"
	"ecmalite/internal/regexpengine"
)

// InstallRegExpPrototype attaches exec/test/toString onto proto.
func (r *Registry) InstallRegExpPrototype(proto *heap.Object) {
	r.defineMethod(proto, "exec", r.regexpExec)
	r.defineMethod(proto, "test", r.regexpTest)
	r.defineMethod(proto, "toString", r.regexpToString)
}

func thisRegExp(this heap.Value) (*heap.RegExpExt, *heap.Object, bool) {
	if !this.IsObject() {
		return nil, nil, false
	}
	o := this.AsObject()
	ext, ok := o.Ext.(*heap.RegExpExt)
	return ext, o, ok
}

func (r *Registry) regexpExec(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	ext, _, ok := thisRegExp(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "exec called on a non-RegExp"), true
	}
	prog, ok := ext.Compiled.(*regexpengine.Program)
	if !ok {
		return heap.Null(), heap.Value{}, false
	}
	input := args0(args)
	s := ""
	if input.IsString() {
		s = input.AsString().Go()
	}
	from := 0
	if prog.Flags.Global || prog.Flags.Sticky {
		from = int(ext.LastIndex)
	}
	m, err := prog.Exec(s, from)
	if err != nil || m == nil {
		ext.LastIndex = 0
		return heap.Null(), heap.Value{}, false
	}
	if prog.Flags.Global || prog.Flags.Sticky {
		ext.LastIndex = uint32(m.Index + len(m.Groups[0].Value))
	}
	arr := h.NewArray(heap.Null())
	arrExt := arr.Ext.(*heap.ArrayExt)
	for _, g := range m.Groups {
		if !g.Matched {
			arrExt.Push(h, arr, heap.Undefined())
			continue
		}
		arrExt.Push(h, arr, heap.StringVal(h.NewString(g.Value)))
	}
	arr.DefineOwn(h, r.tbl.Atomize("index"), heap.DataDesc(heap.F64(float64(m.Index))))
	arr.DefineOwn(h, r.tbl.Atomize("input"), heap.DataDesc(input))
	return heap.ObjectVal(arr), heap.Value{}, false
}

func (r *Registry) regexpTest(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	result, thrownVal, did := r.regexpExec(h, this, args, call)
	if did {
		return heap.Value{}, thrownVal, true
	}
	return heap.Bool(!result.IsNull()), heap.Value{}, false
}

func (r *Registry) regexpToString(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	ext, _, ok := thisRegExp(this)
	if !ok {
		return heap.Value{}, r.typeErrorValue(h, "toString called on a non-RegExp"), true
	}
	s := "/" + ext.Source.Go() + "/" + ext.Flags.Go()
	return heap.StringVal(h.NewString(s)), heap.Value{}, false
}
