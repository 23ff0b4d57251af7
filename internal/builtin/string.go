package builtin

import (
	"strings"

	"ecmalite/internal/heap"
	"ecmalite/internal/primstring"
)

// InstallStringPrototype attaches the String.prototype methods this
// engine supports (SPEC_FULL.md §C), grounded on
// original_source/njs/basic_types/JSStringPrototype.h.
func (r *Registry) InstallStringPrototype(proto *heap.Object) {
	r.defineMethod(proto, "charAt", r.stringCharAt)
	r.defineMethod(proto, "charCodeAt", r.stringCharCodeAt)
	r.defineMethod(proto, "indexOf", r.stringIndexOf)
	r.defineMethod(proto, "includes", r.stringIncludes)
	r.defineMethod(proto, "slice", r.stringSlice)
	r.defineMethod(proto, "split", r.stringSplit)
	r.defineMethod(proto, "toUpperCase", r.stringToUpperCase)
	r.defineMethod(proto, "toLowerCase", r.stringToLowerCase)
	r.defineMethod(proto, "trim", r.stringTrim)
	r.defineMethod(proto, "replace", r.stringReplace)
	r.defineMethod(proto, "repeat", r.stringRepeat)
	r.defineMethod(proto, "startsWith", r.stringStartsWith)
	r.defineMethod(proto, "endsWith", r.stringEndsWith)
	r.defineMethod(proto, "concat", r.stringConcat)
}

func thisString(this heap.Value) (string, bool) {
	if this.IsString() {
		return this.AsString().Go(), true
	}
	if this.IsObject() {
		if w, ok := this.AsObject().Ext.(*heap.WrapperExt); ok && w.Prim.IsString() {
			return w.Prim.AsString().Go(), true
		}
	}
	return "", false
}

func runesOf(s string) []rune { return []rune(s) }

func (r *Registry) stringCharAt(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok {
		return heap.StringVal(h.NewString("")), heap.Value{}, false
	}
	runes := runesOf(s)
	idx := 0
	if len(args) > 0 && args[0].IsNumber() {
		idx = int(args[0].ToFloat64())
	}
	if idx < 0 || idx >= len(runes) {
		return heap.StringVal(h.NewString("")), heap.Value{}, false
	}
	return heap.StringVal(h.NewString(string(runes[idx]))), heap.Value{}, false
}

func (r *Registry) stringCharCodeAt(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok {
		return heap.F64(numNaN()), heap.Value{}, false
	}
	units := primstring.New(s).Units()
	idx := 0
	if len(args) > 0 && args[0].IsNumber() {
		idx = int(args[0].ToFloat64())
	}
	if idx < 0 || idx >= len(units) {
		return heap.F64(numNaN()), heap.Value{}, false
	}
	return heap.U32(uint32(units[idx])), heap.Value{}, false
}

func numNaN() float64 { var z float64; return z / z }

func (r *Registry) stringIndexOf(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok || len(args) == 0 || !args[0].IsString() {
		return heap.I32(-1), heap.Value{}, false
	}
	idx := strings.Index(s, args[0].AsString().Go())
	if idx < 0 {
		return heap.I32(-1), heap.Value{}, false
	}
	return heap.I32(int32(len(runesOf(s[:idx])))), heap.Value{}, false
}

func (r *Registry) stringIncludes(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok || len(args) == 0 || !args[0].IsString() {
		return heap.Bool(false), heap.Value{}, false
	}
	return heap.Bool(strings.Contains(s, args[0].AsString().Go())), heap.Value{}, false
}

func (r *Registry) stringSlice(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok {
		return heap.StringVal(h.NewString("")), heap.Value{}, false
	}
	runes := runesOf(s)
	start, end := sliceBounds(args, len(runes))
	return heap.StringVal(h.NewString(string(runes[start:end]))), heap.Value{}, false
}

func (r *Registry) stringSplit(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	arr := h.NewArray(heap.Null())
	ext := arr.Ext.(*heap.ArrayExt)
	if !ok {
		return heap.ObjectVal(arr), heap.Value{}, false
	}
	if len(args) == 0 || args[0].IsUndefined() {
		ext.Push(h, arr, heap.StringVal(h.NewString(s)))
		return heap.ObjectVal(arr), heap.Value{}, false
	}
	sep := ""
	if args[0].IsString() {
		sep = args[0].AsString().Go()
	}
	var parts []string
	if sep == "" {
		for _, ru := range s {
			parts = append(parts, string(ru))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	for _, p := range parts {
		ext.Push(h, arr, heap.StringVal(h.NewString(p)))
	}
	return heap.ObjectVal(arr), heap.Value{}, false
}

func (r *Registry) stringToUpperCase(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, _ := thisString(this)
	return heap.StringVal(h.NewString(strings.ToUpper(s))), heap.Value{}, false
}

func (r *Registry) stringToLowerCase(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, _ := thisString(this)
	return heap.StringVal(h.NewString(strings.ToLower(s))), heap.Value{}, false
}

func (r *Registry) stringTrim(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, _ := thisString(this)
	return heap.StringVal(h.NewString(strings.TrimSpace(s))), heap.Value{}, false
}

func (r *Registry) stringReplace(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok || len(args) < 2 || !args[0].IsString() {
		return heap.StringVal(h.NewString(s)), heap.Value{}, false
	}
	old := args[0].AsString().Go()
	if args[1].IsCallable() {
		idx := strings.Index(s, old)
		if idx < 0 {
			return heap.StringVal(h.NewString(s)), heap.Value{}, false
		}
		rv, thrownVal, did := call(args[1], heap.Undefined(), []heap.Value{
			heap.StringVal(h.NewString(old)), heap.U32(uint32(idx)), heap.StringVal(h.NewString(s)),
		})
		if did {
			return heap.Value{}, thrownVal, true
		}
		replacement := ""
		if rv.IsString() {
			replacement = rv.AsString().Go()
		}
		return heap.StringVal(h.NewString(strings.Replace(s, old, replacement, 1))), heap.Value{}, false
	}
	replacement := ""
	if args[1].IsString() {
		replacement = args[1].AsString().Go()
	}
	return heap.StringVal(h.NewString(strings.Replace(s, old, replacement, 1))), heap.Value{}, false
}

func (r *Registry) stringRepeat(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok {
		return heap.StringVal(h.NewString("")), heap.Value{}, false
	}
	n := 0
	if len(args) > 0 && args[0].IsNumber() {
		n = int(args[0].ToFloat64())
	}
	if n < 0 {
		return heap.Value{}, r.typeErrorValue(h, "Invalid count value"), true
	}
	return heap.StringVal(h.NewString(strings.Repeat(s, n))), heap.Value{}, false
}

func (r *Registry) stringStartsWith(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok || len(args) == 0 || !args[0].IsString() {
		return heap.Bool(false), heap.Value{}, false
	}
	return heap.Bool(strings.HasPrefix(s, args[0].AsString().Go())), heap.Value{}, false
}

func (r *Registry) stringEndsWith(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, ok := thisString(this)
	if !ok || len(args) == 0 || !args[0].IsString() {
		return heap.Bool(false), heap.Value{}, false
	}
	return heap.Bool(strings.HasSuffix(s, args[0].AsString().Go())), heap.Value{}, false
}

func (r *Registry) stringConcat(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	s, _ := thisString(this)
	var b strings.Builder
	b.WriteString(s)
	for _, a := range args {
		if a.IsString() {
			b.WriteString(a.AsString().Go())
		}
	}
	return heap.StringVal(h.NewString(b.String())), heap.Value{}, false
}
