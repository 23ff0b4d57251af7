// Generator.prototype's user-visible next/return/throw (SPEC_FULL.md
// §C's supplemented generator surface, spec.md §4.5). Lives in
// internal/runtime rather than internal/builtin because each call
// drives internal/interp's GeneratorNext/GeneratorThrow/GeneratorReturn
// directly, the same reason installPromiseCtor sits here instead of
// alongside the other prototype installs. Grounded on
// original_source/njs/basic_types/JSGeneratorPrototype.h's next/return/
// throw trio.
package runtime

import (
	"ecmalite/internal/heap"
	"ecmalite/internal/interp"
)

func (e *Engine) installGeneratorPrototype() {
	e.reg.DefineNative(e.generatorProto, "next", func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		g, ok := thisGenerator(this)
		if !ok {
			return heap.Value{}, e.typeError("next called on a non-generator"), true
		}
		value, done, err := e.Interp.GeneratorNext(g, args0(args))
		return e.generatorStepResult(h, value, done, err)
	})
	e.reg.DefineNative(e.generatorProto, "throw", func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		g, ok := thisGenerator(this)
		if !ok {
			return heap.Value{}, e.typeError("throw called on a non-generator"), true
		}
		value, done, err := e.Interp.GeneratorThrow(g, args0(args))
		return e.generatorStepResult(h, value, done, err)
	})
	e.reg.DefineNative(e.generatorProto, "return", func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		g, ok := thisGenerator(this)
		if !ok {
			return heap.Value{}, e.typeError("return called on a non-generator"), true
		}
		value, done, err := e.Interp.GeneratorReturn(g, args0(args))
		return e.generatorStepResult(h, value, done, err)
	})
}

func thisGenerator(this heap.Value) (*heap.Object, bool) {
	if !this.IsObject() || this.AsObject().Class != heap.ClassGenerator {
		return nil, false
	}
	return this.AsObject(), true
}

func args0(args []heap.Value) heap.Value {
	if len(args) == 0 {
		return heap.Undefined()
	}
	return args[0]
}

// generatorStepResult turns GeneratorNext/Throw/Return's three-value
// return into either a thrown value or a `{value, done}` iterator
// result object (spec.md §4.5).
func (e *Engine) generatorStepResult(h *heap.Heap, value heap.Value, done bool, err error) (heap.Value, heap.Value, bool) {
	if err != nil {
		if tv, ok := interp.AsThrown(err); ok {
			return heap.Value{}, tv, true
		}
		return heap.Value{}, e.typeError(err.Error()), true
	}
	o := h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	o.DefineOwn(h, e.Atoms.Atomize("value"), heap.DataDesc(value))
	o.DefineOwn(h, e.Atoms.Atomize("done"), heap.DataDesc(heap.Bool(done)))
	return heap.ObjectVal(o), heap.Value{}, false
}
