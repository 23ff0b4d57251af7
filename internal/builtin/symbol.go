package builtin

import "ecmalite/internal/heap"

// SymbolConstructor returns the native `Symbol(description)` callable:
// each invocation mints a fresh, never-interned symbol atom (atom.Atom
// design note in atom.go: "two calls with the same description produce
// two distinct atoms"), matching original_source/njs/basic_types/JSSymbol.h.
func (r *Registry) SymbolConstructor(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
	desc := ""
	if len(args) > 0 && args[0].IsString() {
		desc = args[0].AsString().Go()
	}
	a := r.tbl.AtomizeSymbolDesc(desc)
	return heap.SymbolVal(uint32(a)), heap.Value{}, false
}

// InstallSymbolWellKnown attaches the well-known symbols already
// allocated in atom.StaticAtoms (iterator, asyncIterator, toPrimitive)
// onto the Symbol function object, so user code can write
// `obj[Symbol.iterator]` (SPEC_FULL.md §C).
func (r *Registry) InstallSymbolWellKnown(symbolFn *heap.Object) {
	symbolFn.DefineOwn(r.h, r.tbl.Atomize("iterator"), heap.DataDesc(heap.SymbolVal(uint32(r.statics.SymbolIterator))))
	symbolFn.DefineOwn(r.h, r.tbl.Atomize("asyncIterator"), heap.DataDesc(heap.SymbolVal(uint32(r.statics.SymbolAsyncIter))))
	symbolFn.DefineOwn(r.h, r.tbl.Atomize("toPrimitive"), heap.DataDesc(heap.SymbolVal(uint32(r.statics.SymbolToPrim))))
}
