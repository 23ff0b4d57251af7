// Resumable frame state: the heap-captured snapshot of a suspended
// generator or async function body (spec.md §3.6), grounded on
// original_source/njs/basic_types/JSGenerator.h.
package heap

// ResumableState is everything internal/interp needs to re-enter a
// suspended function body at exactly the point it called yield/await:
// its locals, its live operand stack, and the program counter to
// resume at. Captured out of the interpreter's frame the moment a
// suspend opcode runs, and scanned by the GC like any other heap
// object for as long as the generator/async object referencing it is
// reachable.
type ResumableState struct {
	PC           uint32
	Locals       []Value
	OperandStack []Value
	Captures     *HeapArray
	Finished     bool
}

// NewResumableState allocates a resumable snapshot sized for a
// function with the given local/stack budget (from its
// FunctionMetaRecord).
func NewResumableState(numLocals, maxStack int) *ResumableState {
	return &ResumableState{
		Locals:       make([]Value, numLocals),
		OperandStack: make([]Value, 0, maxStack),
	}
}

func (r *ResumableState) scanRefs(visit func(Value)) {
	for _, v := range r.Locals {
		visit(v)
	}
	for _, v := range r.OperandStack {
		visit(v)
	}
	if r.Captures != nil {
		visit(HeapArrayVal(r.Captures))
	}
}
