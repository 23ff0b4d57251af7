// Major (mark-sweep) collection over the old generation (spec.md §4.1
// step 3, §5). Grounded on original_source/njs/gc/GCHeap.cpp's
// `collectMajor`.
package heap

// MajorGC traces the entire live object graph from roots (young
// generations included, since an old object can point back into a
// young one between minor collections) and sweeps every old-generation
// object that was not marked. As with MinorGC, mark and sweep both run
// with the mutator paused (mu held); only the optional trace line is
// printed from a separate goroutine. Go's runtime reclaims the swept
// objects' actual memory once this package drops its last reference.
func (h *Heap) MajorGC() {
	h.mu.Lock()

	visited := make(map[gcObject]bool)
	var trace func(v Value)
	trace = func(v Value) {
		ref, ok := refObject(v)
		if !ok || ref == nil || visited[ref] {
			return
		}
		visited[ref] = true
		ref.scanRefs(trace)
	}

	h.walkAllRoots(trace)
	for _, o := range h.nursery {
		o.scanRefs(trace)
	}
	for _, s := range h.survivors[h.activeSurv] {
		s.scanRefs(trace)
	}

	var live []gcObject
	reclaimed := 0
	for _, o := range h.oldGen {
		if visited[o] {
			live = append(live, o)
		} else {
			o.gcHead().remembered = false
			reclaimed++
		}
	}
	h.oldGen = live

	keptRemembered := h.remembered[:0]
	for _, holder := range h.remembered {
		if visited[holder] {
			keptRemembered = append(keptRemembered, holder)
		}
	}
	h.remembered = keptRemembered

	h.Stats.MajorCollections++
	h.Stats.Reclaimed += reclaimed
	trace_ := h.TraceGC
	h.mu.Unlock()

	if trace_ {
		go h.trace("major: live=%d reclaimed=%d", len(live), reclaimed)
	}
}

// MaybeMajorGC runs a major collection if the old generation has grown
// past its budget (spec.md §4.1's major-GC trigger condition).
func (h *Heap) MaybeMajorGC() {
	h.mu.Lock()
	need := len(h.oldGen) >= h.oldGenBudget
	h.mu.Unlock()
	if need {
		h.MajorGC()
	}
}
