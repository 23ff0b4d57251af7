// Generator.prototype.next/return/throw driving (spec.md §4.5): the
// calling-convention half of the generator protocol, paired with
// heap.GeneratorExt's pure state (Run/State) the same way promise.go
// pairs with heap.PromiseExt. Lives here rather than internal/builtin
// because resuming a suspended frame needs run/resumeFrame, both
// unexported to this package. Grounded on
// original_source/njs/basic_types/JSGeneratorPrototype.h's next/return/throw
// trio.
package interp

import "ecmalite/internal/heap"

// GeneratorNext drives a generator object to its next yield or
// completion, sending sendValue in as the result of the yield
// expression that suspended it (ignored on the very first call, per
// spec.md §4.5). It returns the yielded/returned value, whether the
// generator is now done, and any thrown value as a Go error the caller
// unwraps with AsThrown.
func (it *Interp) GeneratorNext(g *heap.Object, sendValue heap.Value) (heap.Value, bool, error) {
	ext, ok := g.Ext.(*heap.GeneratorExt)
	if !ok {
		return heap.Value{}, true, it.throwType("next called on a non-generator")
	}
	switch ext.Run {
	case heap.GenCompleted:
		return heap.Undefined(), true, nil
	case heap.GenExecuting:
		return heap.Value{}, true, it.throwType("generator is already running")
	}

	starting := ext.Run == heap.GenSuspendedStart
	ext.Run = heap.GenExecuting

	var frame *Frame
	if starting {
		frame = NewFrame(ext.Closure.Meta.Record, ext.Closure, ext.This, ext.Args)
	} else {
		frame = resumeFrame(ext.Closure.Meta.Record, ext.Closure, ext.This, ext.State)
		frame.push(sendValue)
	}
	return it.driveGenerator(ext, frame, nil)
}

// GeneratorThrow re-enters a suspended generator as if the throw
// expression had happened exactly where it last yielded, letting the
// body's own try/catch (if any) observe it (spec.md §4.5). A generator
// that never started, or has already completed, simply propagates the
// throw to the caller without running any body code.
func (it *Interp) GeneratorThrow(g *heap.Object, thrownValue heap.Value) (heap.Value, bool, error) {
	ext, ok := g.Ext.(*heap.GeneratorExt)
	if !ok {
		return heap.Value{}, true, it.throwType("throw called on a non-generator")
	}
	if ext.Run == heap.GenSuspendedStart || ext.Run == heap.GenCompleted {
		ext.Run = heap.GenCompleted
		return heap.Value{}, true, thrown{thrownValue}
	}
	if ext.Run == heap.GenExecuting {
		return heap.Value{}, true, it.throwType("generator is already running")
	}

	ext.Run = heap.GenExecuting
	frame := resumeFrame(ext.Closure.Meta.Record, ext.Closure, ext.This, ext.State)
	return it.driveGenerator(ext, frame, &thrownValue)
}

// GeneratorReturn forces early completion, the way a `return` inside a
// for-of loop body unwinds an iterator it no longer needs. Running any
// pending finally blocks at the suspension point is left as a gap: the
// generator simply completes with the supplied value.
func (it *Interp) GeneratorReturn(g *heap.Object, returnValue heap.Value) (heap.Value, bool, error) {
	ext, ok := g.Ext.(*heap.GeneratorExt)
	if !ok {
		return heap.Value{}, true, it.throwType("return called on a non-generator")
	}
	ext.Run = heap.GenCompleted
	ext.State = nil
	return returnValue, true, nil
}

func (it *Interp) driveGenerator(ext *heap.GeneratorExt, frame *Frame, inject *heap.Value) (heap.Value, bool, error) {
	result, err := it.runFrom(frame, inject)
	if err != nil {
		if sv, ok := AsSuspended(err); ok {
			ext.Run = heap.GenSuspendedYield
			ext.State = sv.State
			return sv.Value, false, nil
		}
		ext.Run = heap.GenCompleted
		ext.State = nil
		return heap.Value{}, true, err
	}
	ext.Run = heap.GenCompleted
	ext.State = nil
	return result, true, nil
}
