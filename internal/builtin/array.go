package builtin

import (
	"sort"

	"ecmalite/internal/heap"
)

// InstallArrayPrototype attaches the Array.prototype methods this
// engine supports (SPEC_FULL.md §C), grounded on
// original_source/njs/basic_types/JSArrayPrototype.h for each method's
// exact return/mutation semantics.
func (r *Registry) InstallArrayPrototype(proto *heap.Object) {
	r.defineMethod(proto, "push", r.arrayPush)
	r.defineMethod(proto, "pop", r.arrayPop)
	r.defineMethod(proto, "join", r.arrayJoin)
	r.defineMethod(proto, "slice", r.arraySlice)
	r.defineMethod(proto, "indexOf", r.arrayIndexOf)
	r.defineMethod(proto, "includes", r.arrayIncludes)
	r.defineMethod(proto, "forEach", r.arrayForEach)
	r.defineMethod(proto, "map", r.arrayMap)
	r.defineMethod(proto, "filter", r.arrayFilter)
	r.defineMethod(proto, "reduce", r.arrayReduce)
	r.defineMethod(proto, "some", r.arraySome)
	r.defineMethod(proto, "every", r.arrayEvery)
	r.defineMethod(proto, "find", r.arrayFind)
	r.defineMethod(proto, "sort", r.arraySort)
	r.defineMethod(proto, "reverse", r.arrayReverse)
	r.defineMethod(proto, "concat", r.arrayConcat)
}

func thisArray(this heap.Value) (*heap.Object, *heap.ArrayExt, bool) {
	if !this.IsObject() {
		return nil, nil, false
	}
	o := this.AsObject()
	ext, ok := o.Ext.(*heap.ArrayExt)
	return o, ext, ok
}

func (r *Registry) arrayPush(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ext, ok := thisArray(this)
	if !ok {
		return heap.Undefined(), heap.Value{}, false
	}
	for _, a := range args {
		ext.Push(h, o, a)
	}
	return heap.U32(ext.Length()), heap.Value{}, false
}

func (r *Registry) arrayPop(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Undefined(), heap.Value{}, false
	}
	v, found := ext.Pop()
	if !found {
		return heap.Undefined(), heap.Value{}, false
	}
	return v, heap.Value{}, false
}

func (r *Registry) arrayJoin(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.StringVal(h.NewString("")), heap.Value{}, false
	}
	sep := ","
	if len(args) > 0 && args[0].IsString() {
		sep = args[0].AsString().Go()
	}
	parts := make([]string, len(ext.Dense))
	for i, v := range ext.Dense {
		if v.IsNullOrUndefined() {
			parts[i] = ""
			continue
		}
		parts[i] = r.toDisplayString(v)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return heap.StringVal(h.NewString(out)), heap.Value{}, false
}

func (r *Registry) toDisplayString(v heap.Value) string {
	if v.IsString() {
		return v.AsString().Go()
	}
	if v.IsNumber() {
		return formatNumber(v.ToFloat64())
	}
	if v.IsBool() {
		if v.AsBool() {
			return "true"
		}
		return "false"
	}
	return v.TypeOf()
}

func (r *Registry) arraySlice(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	out := h.NewArray(this)
	outExt := out.Ext.(*heap.ArrayExt)
	if !ok {
		return heap.ObjectVal(out), heap.Value{}, false
	}
	n := int(ext.Length())
	start, end := sliceBounds(args, n)
	for i := start; i < end; i++ {
		outExt.Push(h, out, ext.Dense[i])
	}
	return heap.ObjectVal(out), heap.Value{}, false
}

func sliceBounds(args []heap.Value, n int) (int, int) {
	start, end := 0, n
	if len(args) > 0 && args[0].IsNumber() {
		start = normalizeIndex(int(args[0].ToFloat64()), n)
	}
	if len(args) > 1 && args[1].IsNumber() {
		end = normalizeIndex(int(args[1].ToFloat64()), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func (r *Registry) arrayIndexOf(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok || len(args) == 0 {
		return heap.I32(-1), heap.Value{}, false
	}
	for i, v := range ext.Dense {
		if heap.StrictEquals(v, args[0]) {
			return heap.I32(int32(i)), heap.Value{}, false
		}
	}
	return heap.I32(-1), heap.Value{}, false
}

func (r *Registry) arrayIncludes(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok || len(args) == 0 {
		return heap.Bool(false), heap.Value{}, false
	}
	for _, v := range ext.Dense {
		if heap.SameValue(v, args[0]) {
			return heap.Bool(true), heap.Value{}, false
		}
	}
	return heap.Bool(false), heap.Value{}, false
}

func callbackArg(args []heap.Value) heap.Value {
	if len(args) == 0 {
		return heap.Undefined()
	}
	return args[0]
}

func (r *Registry) arrayForEach(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Undefined(), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		_, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
	}
	return heap.Undefined(), heap.Value{}, false
}

func (r *Registry) arrayMap(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	out := h.NewArray(this)
	outExt := out.Ext.(*heap.ArrayExt)
	if !ok {
		return heap.ObjectVal(out), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		outExt.Push(h, out, rv)
	}
	return heap.ObjectVal(out), heap.Value{}, false
}

func (r *Registry) arrayFilter(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	out := h.NewArray(this)
	outExt := out.Ext.(*heap.ArrayExt)
	if !ok {
		return heap.ObjectVal(out), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		if truthy(rv) {
			outExt.Push(h, out, v)
		}
	}
	return heap.ObjectVal(out), heap.Value{}, false
}

func (r *Registry) arrayReduce(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Undefined(), heap.Value{}, false
	}
	cb := callbackArg(args)
	start := 0
	var acc heap.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(ext.Dense) == 0 {
			return heap.Value{}, r.typeErrorValue(h, "Reduce of empty array with no initial value"), true
		}
		acc = ext.Dense[0]
		start = 1
	}
	for i := start; i < len(ext.Dense); i++ {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{acc, ext.Dense[i], heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		acc = rv
	}
	return acc, heap.Value{}, false
}

func (r *Registry) arraySome(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Bool(false), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		if truthy(rv) {
			return heap.Bool(true), heap.Value{}, false
		}
	}
	return heap.Bool(false), heap.Value{}, false
}

func (r *Registry) arrayEvery(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Bool(true), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		if !truthy(rv) {
			return heap.Bool(false), heap.Value{}, false
		}
	}
	return heap.Bool(true), heap.Value{}, false
}

func (r *Registry) arrayFind(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return heap.Undefined(), heap.Value{}, false
	}
	cb := callbackArg(args)
	for i, v := range ext.Dense {
		rv, thrownVal, did := call(cb, heap.Undefined(), []heap.Value{v, heap.U32(uint32(i)), this})
		if did {
			return heap.Value{}, thrownVal, true
		}
		if truthy(rv) {
			return v, heap.Value{}, false
		}
	}
	return heap.Undefined(), heap.Value{}, false
}

func (r *Registry) arraySort(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ext, ok := thisArray(this)
	if !ok {
		return this, heap.Value{}, false
	}
	var cmp heap.Value
	hasCmp := len(args) > 0 && args[0].IsCallable()
	if hasCmp {
		cmp = args[0]
	}
	var thrownVal heap.Value
	var failed bool
	sort.SliceStable(ext.Dense, func(i, j int) bool {
		if failed {
			return false
		}
		if hasCmp {
			rv, tv, did := call(cmp, heap.Undefined(), []heap.Value{ext.Dense[i], ext.Dense[j]})
			if did {
				thrownVal, failed = tv, true
				return false
			}
			if rv.IsNumber() {
				return rv.ToFloat64() < 0
			}
			return false
		}
		return toStringForSort(ext.Dense[i]) < toStringForSort(ext.Dense[j])
	})
	if failed {
		return heap.Value{}, thrownVal, true
	}
	for _, v := range ext.Dense {
		h.WriteBarrier(o, v)
	}
	return this, heap.Value{}, false
}

func (r *Registry) arrayReverse(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	if !ok {
		return this, heap.Value{}, false
	}
	for i, j := 0, len(ext.Dense)-1; i < j; i, j = i+1, j-1 {
		ext.Dense[i], ext.Dense[j] = ext.Dense[j], ext.Dense[i]
	}
	return this, heap.Value{}, false
}

func (r *Registry) arrayConcat(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	_, ext, ok := thisArray(this)
	out := h.NewArray(this)
	outExt := out.Ext.(*heap.ArrayExt)
	if ok {
		for _, v := range ext.Dense {
			outExt.Push(h, out, v)
		}
	}
	for _, a := range args {
		if _, aExt, aOk := thisArray(a); aOk {
			for _, v := range aExt.Dense {
				outExt.Push(h, out, v)
			}
			continue
		}
		outExt.Push(h, out, a)
	}
	return heap.ObjectVal(out), heap.Value{}, false
}

func truthy(v heap.Value) bool {
	switch {
	case v.IsUndefined(), v.IsNull(), v.IsUninitialized():
		return false
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		f := v.ToFloat64()
		return f != 0 && f == f
	case v.IsString():
		return v.AsString().Go() != ""
	default:
		return true
	}
}

func (r *Registry) typeErrorValue(h *heap.Heap, msg string) heap.Value {
	o := h.NewObject(heap.ClassError, heap.Null())
	o.DefineOwn(h, r.statics.Message, heap.DataDesc(heap.StringVal(h.NewString(msg))))
	return heap.ObjectVal(o)
}
