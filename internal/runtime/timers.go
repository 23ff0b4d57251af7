// setTimeout/setInterval/clearTimeout/clearInterval: the event-loop
// facing globals (spec.md §4.7) every script expects, implemented as
// thin adapters from heap.Value arguments onto internal/eventloop's
// Loop API. Grounded on original_source/njs/utils/Timer.cpp for the
// delay-clamping and handle-table behavior.
package runtime

import (
	"time"

	"ecmalite/internal/eventloop"
	"ecmalite/internal/heap"
)

func (e *Engine) installTimers() {
	h := e.Heap

	install := func(name string, interval bool) {
		fn := func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
			return e.scheduleTimer(args, call, interval), heap.Value{}, false
		}
		meta := &heap.FunctionMeta{Native: fn}
		o := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
		o.Ext = heap.NewFunctionExt(meta, nil)
		e.Global.DefineOwn(h, e.Atoms.Atomize(name), heap.DataDesc(heap.ObjectVal(o)))
	}
	install("setTimeout", false)
	install("setInterval", true)

	clear := func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		if len(args) == 0 || !args[0].IsNumber() {
			return heap.Undefined(), heap.Value{}, false
		}
		id := uint32(args[0].ToFloat64())
		if handle, ok := e.timerHandles[id]; ok {
			e.Loop.ClearTimer(handle)
			delete(e.timerHandles, id)
		}
		return heap.Undefined(), heap.Value{}, false
	}
	for _, name := range []string{"clearTimeout", "clearInterval"} {
		meta := &heap.FunctionMeta{Native: clear}
		o := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
		o.Ext = heap.NewFunctionExt(meta, nil)
		e.Global.DefineOwn(h, e.Atoms.Atomize(name), heap.DataDesc(heap.ObjectVal(o)))
	}
}

func (e *Engine) scheduleTimer(args []heap.Value, call heap.Caller, interval bool) heap.Value {
	if len(args) == 0 || !args[0].IsCallable() {
		return heap.Undefined()
	}
	fn := args[0]
	delay := time.Duration(0)
	if len(args) > 1 && args[1].IsNumber() {
		if ms := args[1].ToFloat64(); ms > 0 {
			delay = time.Duration(ms) * time.Millisecond
		}
	}
	extra := append([]heap.Value(nil), args[2:]...)
	run := func() { call(fn, heap.Undefined(), extra) }

	var handle eventloop.TimerHandle
	if interval {
		handle = e.Loop.SetInterval(delay, run)
	} else {
		handle = e.Loop.SetTimeout(delay, run)
	}
	e.nextTimerID++
	id := e.nextTimerID
	e.timerHandles[id] = handle
	return heap.U32(id)
}
