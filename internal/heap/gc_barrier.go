// Write barrier and remembered set (spec.md §4.1, §5): whenever an
// old-generation object is made to point at a nursery/survivor object,
// the old object is recorded so a minor collection can treat it as an
// extra root without having to trace the entire old generation.
// Grounded on original_source/njs/gc/GCHeap.cpp's `rememberObject`.
package heap

// WriteBarrier must be called after every mutation that stores v into a
// field reachable from holder (property writes, array element writes,
// cell writes, capture-array writes). Every GC-tracked v has its
// reference-count hint bumped (spec.md §3.7); holder is added to the
// remembered set only when it is in the old generation and v is a young
// (nursery/survivor) heap reference, matching spec.md §4.1's "the
// barrier only needs to catch old-to-young pointers" note.
func (h *Heap) WriteBarrier(holder gcObject, v Value) {
	if h == nil || holder == nil {
		return
	}
	if !v.NeedsGC() {
		return
	}
	ref, ok := refObject(v)
	if !ok {
		return
	}
	ref.gcHead().bumpHint()
	hh := holder.gcHead()
	if hh.gen != GenOld {
		return
	}
	if ref.gcHead().gen == GenOld {
		return
	}
	if hh.remembered {
		return
	}
	hh.remembered = true
	h.remembered = append(h.remembered, holder)
}

// refObject extracts the gcObject behind a GC-tracked Value, if any.
// ValueHandle is deliberately excluded: it is a non-owning pointer into
// a frame's own stack slot, already traced as part of that frame.
func refObject(v Value) (gcObject, bool) {
	switch v.Tag() {
	case TagString:
		return v.AsString(), true
	case TagHeapCell:
		return v.AsHeapCell(), true
	case TagHeapArray:
		return v.AsHeapArray(), true
	case TagObject:
		return v.AsObject(), true
	default:
		return nil, false
	}
}

// SetCell writes through a HeapCell with the write barrier applied;
// internal/interp must use this (rather than writing c.V directly) for
// every set_cell opcode once c may have been promoted to the old
// generation.
func (h *Heap) SetCell(c *HeapCell, v Value) {
	c.V = v
	h.WriteBarrier(c, v)
}
