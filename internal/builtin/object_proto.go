package builtin

import "ecmalite/internal/heap"

// InstallObjectPrototype attaches the handful of Object.prototype
// methods user code reaches even without any static-method call
// (SPEC_FULL.md §C), grounded on
// original_source/njs/basic_types/JSObjectPrototype.cpp.
func (r *Registry) InstallObjectPrototype(proto *heap.Object) {
	r.defineMethod(proto, "hasOwnProperty", r.objectHasOwnProperty)
	r.defineMethod(proto, "toString", r.objectToString)
	r.defineMethod(proto, "valueOf", r.objectValueOf)
	r.defineMethod(proto, "isPrototypeOf", r.objectIsPrototypeOf)
}

func (r *Registry) objectHasOwnProperty(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if !this.IsObject() || len(args) == 0 {
		return heap.Bool(false), heap.Value{}, false
	}
	key := r.valueToKey(args[0])
	_, found := this.AsObject().OwnProperty(key)
	return heap.Bool(found), heap.Value{}, false
}

func (r *Registry) objectToString(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	tag := "Object"
	if this.IsObject() {
		switch this.AsObject().Class {
		case heap.ClassArray:
			tag = "Array"
		case heap.ClassFunction, heap.ClassBoundFunction:
			tag = "Function"
		case heap.ClassError:
			tag = "Error"
		case heap.ClassDate:
			tag = "Date"
		case heap.ClassRegExp:
			tag = "RegExp"
		}
	}
	return heap.StringVal(h.NewString("[object " + tag + "]")), heap.Value{}, false
}

func (r *Registry) objectValueOf(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if this.IsObject() {
		if w, ok := this.AsObject().Ext.(*heap.WrapperExt); ok {
			return w.Prim, heap.Value{}, false
		}
	}
	return this, heap.Value{}, false
}

func (r *Registry) objectIsPrototypeOf(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	if !this.IsObject() || len(args) == 0 || !args[0].IsObject() {
		return heap.Bool(false), heap.Value{}, false
	}
	target := this.AsObject()
	cur := args[0].AsObject().Proto
	for cur.IsObject() {
		if cur.AsObject() == target {
			return heap.Bool(true), heap.Value{}, false
		}
		cur = cur.AsObject().Proto
	}
	return heap.Bool(false), heap.Value{}, false
}
