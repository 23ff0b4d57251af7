// Call frame layout: args|locals|operand stack, per spec.md §4.2's
// frame-layout note. Grounded on the teacher's vm_stack.go register
// window idiom, generalized from a single flat register file to the
// three-region frame the spec's catch-table unwinding needs (a
// handler must know how far to pop the operand stack independent of
// how many locals the function declares).
package interp

import (
	"ecmalite/internal/bytecode"
	"ecmalite/internal/heap"
)

// Frame is one activation record.
type Frame struct {
	Meta       *bytecode.FunctionMetaRecord
	FuncExt    *heap.FunctionExt
	This       heap.Value
	Args       []heap.Value
	Locals     []heap.Value
	Stack      []heap.Value
	PC         uint32
	NewTarget  heap.Value
	FromResume *heap.ResumableState // non-nil when re-entering a suspended generator/async call
}

// NewFrame builds a fresh frame for a call to meta with this/args bound
// and locals zero-initialized to Undefined (TDZ slots are then marked
// Uninitialized by OpInitLocalTDZ as the compiler emits it ahead of
// each let/const declaration, per spec.md §4.2).
func NewFrame(meta *bytecode.FunctionMetaRecord, ext *heap.FunctionExt, this heap.Value, args []heap.Value) *Frame {
	locals := make([]heap.Value, meta.NumLocals)
	for i := range locals {
		locals[i] = heap.Undefined()
	}
	return &Frame{
		Meta:    meta,
		FuncExt: ext,
		This:    this,
		Args:    args,
		Locals:  locals,
		Stack:   make([]heap.Value, 0, meta.MaxStack),
	}
}

func (f *Frame) push(v heap.Value) { f.Stack = append(f.Stack, v) }

func (f *Frame) pop() heap.Value {
	n := len(f.Stack)
	v := f.Stack[n-1]
	f.Stack = f.Stack[:n-1]
	return v
}

func (f *Frame) top() heap.Value { return f.Stack[len(f.Stack)-1] }

// arg returns the ith argument, or Undefined if the call supplied
// fewer arguments than the function declares (spec.md §4.2).
func (f *Frame) arg(i int32) heap.Value {
	if int(i) < len(f.Args) {
		return f.Args[i]
	}
	return heap.Undefined()
}

// captureCell resolves a free-variable reference into a HeapCell, boxing
// the parent frame's local in place the first time it is captured
// (spec.md §4.2's make_func note on promoting a plain local into a
// cell on first capture).
func captureCell(parent *Frame, d bytecode.CaptureDesc) *heap.HeapCell {
	if d.FromParentCell {
		return parent.Locals[d.ParentIndex].AsHeapCell()
	}
	existing := parent.Locals[d.ParentIndex]
	if existing.Tag() == heap.TagHeapCell {
		return existing.AsHeapCell()
	}
	cell := heap.NewHeapCell(existing)
	parent.Locals[d.ParentIndex] = heap.HeapCellVal(cell)
	return cell
}

// snapshot captures this frame's live state into a ResumableState for a
// suspend opcode (spec.md §3.6, §4.5).
func (f *Frame) snapshot(h *heap.Heap) *heap.ResumableState {
	rs := &heap.ResumableState{
		PC:           f.PC,
		Locals:       append([]heap.Value(nil), f.Locals...),
		OperandStack: append([]heap.Value(nil), f.Stack...),
	}
	if f.FuncExt != nil {
		rs.Captures = f.FuncExt.Captures
	}
	return rs
}

// resumeFrame rebuilds a Frame from a previously captured
// ResumableState, for re-entering a suspended generator/async call.
func resumeFrame(meta *bytecode.FunctionMetaRecord, ext *heap.FunctionExt, this heap.Value, rs *heap.ResumableState) *Frame {
	return &Frame{
		Meta:       meta,
		FuncExt:    ext,
		This:       this,
		Locals:     append([]heap.Value(nil), rs.Locals...),
		Stack:      append([]heap.Value(nil), rs.OperandStack...),
		PC:         rs.PC,
		FromResume: rs,
	}
}
