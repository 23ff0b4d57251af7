// Package builtin implements the native prototype methods supplementing
// the distilled spec (SPEC_FULL.md §C): Object/Array/String statics and
// instance methods and the well-known Symbol registry (the Promise
// combinators live in internal/runtime). Grounded on original_source/njs/basic_types/*Prototype.h for each
// method's exact semantics and on the teacher's config.go pattern of
// building a table of named entries once at startup.
package builtin

import (
	"sort"
	"strings"

	"ecmalite/internal/atom"
	"ecmalite/internal/heap"
)

// Registry wires every native function this package provides into a
// heap.FunctionMeta the runtime can hang off a prototype object.
type Registry struct {
	h       *heap.Heap
	tbl     *atom.Table
	statics atom.StaticAtoms
}

// New builds a Registry bound to the given heap and atom table.
func New(h *heap.Heap, tbl *atom.Table, statics atom.StaticAtoms) *Registry {
	return &Registry{h: h, tbl: tbl, statics: statics}
}

// native wraps fn as a callable Function object with no own captures,
// for attaching to a prototype via DefineOwn.
func (r *Registry) native(name string, fn heap.NativeFunc) heap.Value {
	meta := &heap.FunctionMeta{Native: fn}
	o := r.h.NewObject(heap.ClassFunction, heap.Null())
	o.Ext = heap.NewFunctionExt(meta, nil)
	_ = name // retained on FunctionMeta by the caller via DefineOwn's key, not stored redundantly here
	return heap.ObjectVal(o)
}

// DefineNative attaches fn under name on target (a prototype or a
// constructor function object) as a non-enumerable, writable,
// configurable property — the exported form of defineMethod for
// internal/runtime, which builds several prototypes' methods (Promise,
// RegExp, Date) outside this package's own Install* helpers.
func (r *Registry) DefineNative(target *heap.Object, name string, fn heap.NativeFunc) {
	r.defineMethod(target, name, fn)
}

// WrapNative builds a bare callable Function object around fn, for
// callers (internal/runtime's Promise combinators) that need to pass a
// Go closure where JS expects a callable Value but have no named
// prototype slot to hang it from.
func (r *Registry) WrapNative(fn heap.NativeFunc) heap.Value {
	return r.native("", fn)
}

func method(flags heap.PropFlags) heap.PropFlags {
	flags.Configurable = true
	return flags
}

var nonEnumerableWritable = heap.PropFlags{Writable: true, Configurable: true}

// defineMethod attaches fn under name on proto as a standard
// non-enumerable, writable, configurable method (the shape every
// built-in prototype method uses in real engines, so that `for...in`
// over a plain object never iterates inherited methods).
func (r *Registry) defineMethod(proto *heap.Object, name string, fn heap.NativeFunc) {
	proto.DefineOwn(r.h, r.tbl.Atomize(name), heap.PropDesc{
		Flags: method(nonEnumerableWritable),
		Value: r.native(name, fn),
	})
}

// InstallObjectStatics attaches Object.keys/values/entries/assign/
// freeze/seal/create/defineProperty/getOwnPropertyDescriptor onto the
// Object constructor function object (SPEC_FULL.md §C).
func (r *Registry) InstallObjectStatics(ctor *heap.Object) {
	r.defineMethod(ctor, "keys", r.objectKeys)
	r.defineMethod(ctor, "values", r.objectValues)
	r.defineMethod(ctor, "entries", r.objectEntries)
	r.defineMethod(ctor, "assign", r.objectAssign)
	r.defineMethod(ctor, "freeze", r.objectFreeze)
	r.defineMethod(ctor, "seal", r.objectSeal)
	r.defineMethod(ctor, "create", r.objectCreate)
	r.defineMethod(ctor, "defineProperty", r.objectDefineProperty)
	r.defineMethod(ctor, "getOwnPropertyDescriptor", r.objectGetOwnPropertyDescriptor)
}

func (r *Registry) firstArgObject(args []heap.Value) (*heap.Object, bool) {
	if len(args) == 0 || !args[0].IsObject() {
		return nil, false
	}
	return args[0].AsObject(), true
}

func (r *Registry) objectKeys(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	if !ok {
		return heap.ObjectVal(h.NewArray(heap.Null())), heap.Value{}, false
	}
	keys := o.OwnEnumerableStringKeys(r.tbl)
	arr := h.NewArray(heap.Null())
	ext := arr.Ext.(*heap.ArrayExt)
	for _, k := range keys {
		ext.Push(h, arr, heap.StringVal(h.NewString(r.tbl.GetString(k))))
	}
	return heap.ObjectVal(arr), heap.Value{}, false
}

func (r *Registry) objectValues(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	arr := h.NewArray(heap.Null())
	if !ok {
		return heap.ObjectVal(arr), heap.Value{}, false
	}
	ext := arr.Ext.(*heap.ArrayExt)
	for _, k := range o.OwnEnumerableStringKeys(r.tbl) {
		d, _ := o.OwnProperty(k)
		ext.Push(h, arr, d.Value)
	}
	return heap.ObjectVal(arr), heap.Value{}, false
}

func (r *Registry) objectEntries(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	arr := h.NewArray(heap.Null())
	if !ok {
		return heap.ObjectVal(arr), heap.Value{}, false
	}
	ext := arr.Ext.(*heap.ArrayExt)
	for _, k := range o.OwnEnumerableStringKeys(r.tbl) {
		d, _ := o.OwnProperty(k)
		entry := h.NewArray(heap.Null())
		eExt := entry.Ext.(*heap.ArrayExt)
		eExt.Push(h, entry, heap.StringVal(h.NewString(r.tbl.GetString(k))))
		eExt.Push(h, entry, d.Value)
		ext.Push(h, arr, heap.ObjectVal(entry))
	}
	return heap.ObjectVal(arr), heap.Value{}, false
}

func (r *Registry) objectAssign(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if len(args) == 0 || !args[0].IsObject() {
		return heap.Undefined(), heap.Value{}, false
	}
	target := args[0].AsObject()
	for _, src := range args[1:] {
		if !src.IsObject() {
			continue
		}
		so := src.AsObject()
		for _, k := range so.OwnEnumerableStringKeys(r.tbl) {
			d, _ := so.OwnProperty(k)
			target.Set(h, k, d.Value)
		}
	}
	return args[0], heap.Value{}, false
}

func (r *Registry) objectFreeze(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	if !ok {
		return args0(args), heap.Value{}, false
	}
	o.Extensible = false
	for _, k := range o.OwnKeys() {
		d, _ := o.OwnProperty(k)
		d.Flags.Writable = false
		d.Flags.Configurable = false
		o.DefineOwn(h, k, d)
	}
	return args[0], heap.Value{}, false
}

func (r *Registry) objectSeal(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	if !ok {
		return args0(args), heap.Value{}, false
	}
	o.Extensible = false
	for _, k := range o.OwnKeys() {
		d, _ := o.OwnProperty(k)
		d.Flags.Configurable = false
		o.DefineOwn(h, k, d)
	}
	return args[0], heap.Value{}, false
}

func (r *Registry) objectCreate(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	proto := heap.Null()
	if len(args) > 0 && (args[0].IsObject() || args[0].IsNull()) {
		proto = args[0]
	}
	o := h.NewObject(heap.ClassPlainObject, proto)
	if len(args) > 1 && args[1].IsObject() {
		r.applyPropertyDescriptors(o, args[1].AsObject())
	}
	return heap.ObjectVal(o), heap.Value{}, false
}

func (r *Registry) objectDefineProperty(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if len(args) < 3 || !args[0].IsObject() || !args[2].IsObject() {
		return heap.Undefined(), heap.Value{}, false
	}
	o := args[0].AsObject()
	key := r.valueToKey(args[1])
	d := descriptorFromPlainObject(r, args[2].AsObject())
	o.DefineOwn(h, key, d)
	return args[0], heap.Value{}, false
}

func (r *Registry) objectGetOwnPropertyDescriptor(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	o, ok := r.firstArgObject(args)
	if !ok || len(args) < 2 {
		return heap.Undefined(), heap.Value{}, false
	}
	key := r.valueToKey(args[1])
	d, found := o.OwnProperty(key)
	if !found {
		return heap.Undefined(), heap.Value{}, false
	}
	out := h.NewObject(heap.ClassPlainObject, heap.Null())
	if d.Flags.IsAccessor {
		out.DefineOwn(h, r.tbl.Atomize("get"), heap.DataDesc(d.Getter))
		out.DefineOwn(h, r.tbl.Atomize("set"), heap.DataDesc(d.Setter))
	} else {
		out.DefineOwn(h, r.statics.Value, heap.DataDesc(d.Value))
		out.DefineOwn(h, r.tbl.Atomize("writable"), heap.DataDesc(heap.Bool(d.Flags.Writable)))
	}
	out.DefineOwn(h, r.tbl.Atomize("enumerable"), heap.DataDesc(heap.Bool(d.Flags.Enumerable)))
	out.DefineOwn(h, r.tbl.Atomize("configurable"), heap.DataDesc(heap.Bool(d.Flags.Configurable)))
	return heap.ObjectVal(out), heap.Value{}, false
}

func (r *Registry) applyPropertyDescriptors(target *heap.Object, descs *heap.Object) {
	for _, k := range descs.OwnEnumerableStringKeys(r.tbl) {
		d, _ := descs.OwnProperty(k)
		if !d.Value.IsObject() {
			continue
		}
		target.DefineOwn(r.h, k, descriptorFromPlainObject(r, d.Value.AsObject()))
	}
}

func descriptorFromPlainObject(r *Registry, spec *heap.Object) heap.PropDesc {
	d := heap.PropDesc{}
	if vd, ok := spec.OwnProperty(r.statics.Value); ok {
		d.Value = vd.Value
	}
	if gd, ok := spec.OwnProperty(r.tbl.Atomize("get")); ok {
		d.Flags.IsAccessor = true
		d.Getter = gd.Value
	}
	if sd, ok := spec.OwnProperty(r.tbl.Atomize("set")); ok {
		d.Flags.IsAccessor = true
		d.Setter = sd.Value
	}
	if wd, ok := spec.OwnProperty(r.tbl.Atomize("writable")); ok && wd.Value.IsBool() {
		d.Flags.Writable = wd.Value.AsBool()
	}
	if ed, ok := spec.OwnProperty(r.tbl.Atomize("enumerable")); ok && ed.Value.IsBool() {
		d.Flags.Enumerable = ed.Value.AsBool()
	}
	if cd, ok := spec.OwnProperty(r.tbl.Atomize("configurable")); ok && cd.Value.IsBool() {
		d.Flags.Configurable = cd.Value.AsBool()
	}
	return d
}

func (r *Registry) valueToKey(v heap.Value) atom.Atom {
	if v.IsSymbol() {
		return atom.Atom(v.AsAtom())
	}
	if v.IsString() {
		return r.tbl.Atomize(v.AsString().Go())
	}
	return r.tbl.Atomize(v.TypeOf())
}

func args0(args []heap.Value) heap.Value {
	if len(args) == 0 {
		return heap.Undefined()
	}
	return args[0]
}

// sortedCopy returns a stably sorted copy of vals. No code calls it:
// Array.prototype.sort (arraySort in array.go) sorts on its own.
func sortedCopy(vals []heap.Value, less func(a, b heap.Value) bool) []heap.Value {
	out := append([]heap.Value(nil), vals...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func defaultLess(a, b heap.Value) bool {
	as, bs := toStringForSort(a), toStringForSort(b)
	return strings.Compare(as, bs) < 0
}

func toStringForSort(v heap.Value) string {
	if v.IsString() {
		return v.AsString().Go()
	}
	return ""
}
