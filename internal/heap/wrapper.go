// Primitive wrapper objects (`new Number(...)`, `new String(...)`,
// `new Boolean(...)`) and the RegExp/Date extension shapes
// (SPEC_FULL.md §C supplemented features), grounded on
// original_source/njs/basic_types/PrimitiveWrapper.h.
package heap

// WrapperExt is the Ext payload for ClassNumberObject, ClassStringObject,
// and ClassBooleanObject: a boxed primitive value distinct from its
// Class-less primitive-tagged Value counterpart.
type WrapperExt struct {
	Prim Value
}

// NewWrapperExt boxes a primitive Value.
func NewWrapperExt(v Value) *WrapperExt { return &WrapperExt{Prim: v} }

// RegExpExt is the Ext payload for ClassRegExp objects. Compiled is
// typed any rather than a concrete *regexpengine.Program so that heap
// stays a dependency leaf: internal/regexpengine would otherwise need
// to import heap for Value, and heap would import regexpengine for the
// compiled type, an import cycle. internal/builtin's RegExp.prototype
// methods perform the type assertion.
type RegExpExt struct {
	Source  *GCString
	Flags   *GCString
	Compiled any
	LastIndex uint32
}

// DateExt is the Ext payload for ClassDate objects: a single
// milliseconds-since-epoch field, stored as float64 to represent the
// ECMAScript `NaN` "Invalid Date" sentinel (SPEC_FULL.md §C).
type DateExt struct {
	EpochMillis float64
}
