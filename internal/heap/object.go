// Object model: the property map, prototype chain, and get/set/has/
// delete algorithm of spec.md §3.4 and §4.3. Grounded on
// original_source/njs/basic_types/JSObject.h/.cpp for the descriptor
// shape, and on mna-nenuphar's github.com/dolthub/swiss dependency for
// the key->slot index (kept alongside an ordered key slice, since §3.4
// requires insertion-ordered enumeration and a swiss map alone is
// unordered).
package heap

import (
	"ecmalite/internal/atom"

	"github.com/dolthub/swiss"
)

// ClassTag distinguishes the built-in object kinds that all share the
// Object layout, per spec.md §9's "one Object data layout plus a small
// class-tag enum" design note.
type ClassTag uint8

const (
	ClassPlainObject ClassTag = iota
	ClassArray
	ClassFunction
	ClassBoundFunction
	ClassError
	ClassDate
	ClassRegExp
	ClassPromise
	ClassGenerator
	ClassArrayIterator
	ClassForInIterator
	ClassStringIterator
	ClassNumberObject
	ClassStringObject
	ClassBooleanObject
)

// LazyKind names a property whose value is computed on first access and
// then cached in place (spec.md §4.3 step 4), e.g. a prototype object's
// `constructor` back-reference wired up by runtime setup instead of at
// every object's construction time.
type LazyKind uint8

const (
	LazyNone LazyKind = iota
	LazyPrototype
)

// LazyResolver materializes a lazy property's value the first time it
// is read. Registered per LazyKind on the Heap (internal/runtime wires
// these during prototype-graph construction).
type LazyResolver func(h *Heap, owner *Object, key atom.Atom) Value

// PropFlags carries the four ECMAScript property attributes plus the
// lazy-materialization tag (spec.md §3.4).
type PropFlags struct {
	Enumerable   bool
	Configurable bool
	Writable     bool
	IsAccessor   bool
	LazyKind     LazyKind
}

// PropDesc is a property descriptor: either a data slot (Value) or an
// accessor pair (Getter/Setter), per spec.md §3.4.
type PropDesc struct {
	Flags  PropFlags
	Value  Value
	Getter Value
	Setter Value
}

// DataDesc builds the default descriptor created for a plain assignment
// to a missing property (spec.md §4.3: "{writable, enumerable,
// configurable} true").
func DataDesc(v Value) PropDesc {
	return PropDesc{
		Flags: PropFlags{Enumerable: true, Configurable: true, Writable: true},
		Value: v,
	}
}

// Object is the shared layout for every built-in object kind (spec.md
// §3.4, §9). Kind-specific state lives in Ext, reached by a tagged
// downcast on Class.
type Object struct {
	gcHeader
	Class      ClassTag
	Proto      Value // ClassPlainObject/.../object value, or Null()
	Extensible bool

	keys  []atom.Atom
	index *swiss.Map[atom.Atom, int]
	descs []PropDesc

	// Ext holds the kind-specific extension struct: *ArrayExt,
	// *FunctionExt, *BoundFunctionExt, *PromiseExt, *GeneratorExt,
	// *IteratorExt, *WrapperExt, *RegExpExt, *DateExt, or nil for a
	// plain object / Error.
	Ext any
}

// NewObject allocates a bare extensible object with the given prototype
// and class tag. Heap.NewObject is the normal entry point; this
// constructor is exported for tests and for runtime's bootstrap of the
// very first prototype objects (which predate any Heap instance needing
// them as roots).
func NewObject(class ClassTag, proto Value) *Object {
	return &Object{
		Class:      class,
		Proto:      proto,
		Extensible: true,
		index:      swiss.NewMap[atom.Atom, int](8),
	}
}

func (o *Object) gcHead() *gcHeader { return &o.gcHeader }

func (o *Object) scanRefs(visit func(Value)) {
	visit(o.Proto)
	for _, d := range o.descs {
		if d.Flags.IsAccessor {
			visit(d.Getter)
			visit(d.Setter)
		} else {
			visit(d.Value)
		}
	}
	switch ext := o.Ext.(type) {
	case *ArrayExt:
		for _, v := range ext.Dense {
			visit(v)
		}
	case *FunctionExt:
		if ext.Captures != nil {
			visit(HeapArrayVal(ext.Captures))
		}
		visit(ext.BoundThis)
	case *BoundFunctionExt:
		visit(ext.Target)
		visit(ext.BoundThis)
		for _, v := range ext.BoundArgs {
			visit(v)
		}
	case *PromiseExt:
		visit(ext.Result)
		for _, r := range ext.Records {
			visit(r.OnFulfilled)
			visit(r.OnRejected)
			visit(r.NextResolve)
			visit(r.NextReject)
		}
	case *GeneratorExt:
		if ext.Closure != nil && ext.Closure.Captures != nil {
			visit(HeapArrayVal(ext.Closure.Captures))
		}
		visit(ext.This)
		for _, v := range ext.Args {
			visit(v)
		}
		if ext.State != nil {
			ext.State.scanRefs(visit)
		}
	case *IteratorExt:
		visit(ext.Target)
	case *WrapperExt:
		visit(ext.Prim)
	case *RegExpExt:
		if ext.Source != nil {
			visit(StringVal(ext.Source))
		}
		if ext.Flags != nil {
			visit(StringVal(ext.Flags))
		}
	}
}

// OwnProperty looks up key in o's own property map only.
func (o *Object) OwnProperty(key atom.Atom) (PropDesc, bool) {
	idx, ok := o.index.Get(key)
	if !ok {
		return PropDesc{}, false
	}
	return o.descs[idx], true
}

// Lookup walks the prototype chain starting at o, returning the
// descriptor, the object that owns it, and whether it was found
// (spec.md §4.3 steps 2-3). It does not invoke getters/setters or
// lazy resolvers that require interpreter calling convention — callers
// in internal/interp do that themselves once they see IsAccessor.
func (o *Object) Lookup(h *Heap, key atom.Atom) (owner *Object, desc PropDesc, ok bool) {
	cur := o
	for {
		if d, found := cur.OwnProperty(key); found {
			if d.Flags.LazyKind != LazyNone && h != nil {
				d.Value = h.resolveLazy(d.Flags.LazyKind, cur, key)
				d.Flags.LazyKind = LazyNone
				cur.setOwnDesc(key, d)
			}
			return cur, d, true
		}
		if cur.Proto.IsNull() || cur.Proto.IsUndefined() {
			return nil, PropDesc{}, false
		}
		cur = cur.Proto.AsObject()
	}
}

// Has implements the `in` operator (spec.md §4.2): true if key is found
// anywhere on the prototype chain.
func (o *Object) Has(h *Heap, key atom.Atom) bool {
	_, _, ok := o.Lookup(h, key)
	return ok
}

// DefineOwn creates or overwrites an own property descriptor,
// regardless of the extensibility/writability rules a plain assignment
// would apply (used by Object.defineProperty and by object/array
// literal construction opcodes). The write barrier fires for both the
// new value and any accessor functions.
func (o *Object) DefineOwn(h *Heap, key atom.Atom, d PropDesc) {
	o.setOwnDesc(key, d)
	if h != nil {
		if d.Flags.IsAccessor {
			h.WriteBarrier(o, d.Getter)
			h.WriteBarrier(o, d.Setter)
		} else {
			h.WriteBarrier(o, d.Value)
		}
	}
}

func (o *Object) setOwnDesc(key atom.Atom, d PropDesc) {
	if idx, ok := o.index.Get(key); ok {
		o.descs[idx] = d
		return
	}
	idx := len(o.descs)
	o.descs = append(o.descs, d)
	o.keys = append(o.keys, key)
	o.index.Put(key, idx)
}

// Set implements a plain property assignment (spec.md §4.3): respects
// an existing data descriptor's Writable flag; if the property is
// missing, creates a fresh enumerable/configurable/writable descriptor
// provided the object is extensible, and otherwise fails silently
// (strict-mode throw is out of scope per spec.md §1). Returns whether a
// setter needs to be invoked by the caller (accessor dispatch, like
// getters, belongs to internal/interp's calling convention) and that
// setter's Value.
func (o *Object) Set(h *Heap, key atom.Atom, v Value) (setter Value, needsSetterCall bool) {
	owner, d, found := o.Lookup(h, key)
	if found {
		if d.Flags.IsAccessor {
			if d.Setter.IsUndefined() {
				return Value{}, false
			}
			return d.Setter, true
		}
		if owner == o {
			if !d.Flags.Writable {
				return Value{}, false
			}
			d.Value = v
			o.setOwnDesc(key, d)
			h.WriteBarrier(o, v)
			return Value{}, false
		}
		// Inherited data property: shadow it on the receiver, same
		// rule as a missing property (own-property creation), unless
		// the inherited descriptor says non-writable.
		if !d.Flags.Writable {
			return Value{}, false
		}
	}
	if !o.Extensible {
		return Value{}, false
	}
	o.DefineOwn(h, key, DataDesc(v))
	return Value{}, false
}

// Delete removes an own property, honoring Configurable (spec.md §3.4).
// Returns false if the property exists but is non-configurable.
func (o *Object) Delete(key atom.Atom) bool {
	idx, ok := o.index.Get(key)
	if !ok {
		return true
	}
	if !o.descs[idx].Flags.Configurable {
		return false
	}
	o.index.Delete(key)
	o.descs = append(o.descs[:idx], o.descs[idx+1:]...)
	o.keys = append(o.keys[:idx], o.keys[idx+1:]...)
	// Re-index everything after the removed slot.
	for i := idx; i < len(o.keys); i++ {
		o.index.Put(o.keys[i], i)
	}
	return true
}

// OwnKeys returns the object's own enumerable-or-not keys in insertion
// order (spec.md §3.4: "insertion-ordered mapping").
func (o *Object) OwnKeys() []atom.Atom {
	out := make([]atom.Atom, len(o.keys))
	copy(out, o.keys)
	return out
}

// OwnEnumerableStringKeys returns own enumerable string-keyed (not
// symbol-keyed) property names in insertion order, the set for-in and
// Object.keys/values/entries iterate (spec.md §4.2's for_in_init).
func (o *Object) OwnEnumerableStringKeys(tbl *atom.Table) []atom.Atom {
	var out []atom.Atom
	for i, k := range o.keys {
		if !o.descs[i].Flags.Enumerable {
			continue
		}
		if tbl.IsSymbol(k) {
			continue
		}
		out = append(out, k)
	}
	return out
}
