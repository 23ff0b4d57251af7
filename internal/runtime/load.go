// Module loading and top-level execution: the last step tying
// internal/bytecode's compiled output to a running Engine (spec.md §6's
// "the VM executes a compiled module" entrypoint). Grounded on the
// teacher's cmd/langlang Compile-then-Run split, collapsed here into a
// single Engine since this spec's front end is out of scope and a
// caller hands Engine an already-compiled bytecode.Module.
package runtime

import (
	"fmt"

	"ecmalite/internal/bytecode"
	"ecmalite/internal/heap"
	"ecmalite/internal/interp"
)

// Load populates the interpreter's function pool from mod, wrapping
// each record in a FunctionMeta so OpNewFunction can address it, and
// returns the top-level script function ready to Call.
func (e *Engine) Load(mod *bytecode.Module) (heap.Value, error) {
	if mod.Entry < 0 || mod.Entry >= len(mod.Functions) {
		return heap.Value{}, fmt.Errorf("runtime: entry index %d out of range (%d functions)", mod.Entry, len(mod.Functions))
	}
	e.Interp.MetaPool = make([]*heap.FunctionMeta, len(mod.Functions))
	for i, rec := range mod.Functions {
		e.Interp.MetaPool[i] = &heap.FunctionMeta{Record: rec}
	}
	entry := e.Heap.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
	entry.Ext = heap.NewFunctionExt(e.Interp.MetaPool[mod.Entry], nil)
	return heap.ObjectVal(entry), nil
}

// Run calls the top-level script function to completion, then drains
// the event loop (microtasks, timers, worker results) until quiescent,
// per spec.md §4.7. A top-level uncaught throw is returned as an error;
// the caller (cmd/ecmalite) formats and prints it.
func (e *Engine) Run(entry heap.Value) error {
	_, err := e.Interp.Call(entry, heap.Undefined(), nil)
	if err != nil {
		if tv, ok := interp.AsThrown(err); ok {
			return fmt.Errorf("uncaught %s", e.displayValue(tv))
		}
		return err
	}
	e.Loop.Run()
	return nil
}
