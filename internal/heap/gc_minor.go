// Minor (copying) collection over the nursery and survivor spaces
// (spec.md §4.1 steps 1-3, §5's pause discipline). Grounded on
// original_source/njs/gc/GCHeap.cpp's `collectMinor`.
package heap

// MinorGC traces the nursery and current survivor space from roots plus
// the remembered set, copies everything reachable into the next
// survivor space (promoting anything that has already survived
// ageMax collections into the old generation instead), and drops
// everything unreached. The whole collection, including dropping the
// dead young objects from this heap's lists, runs with the mutator
// paused (mu held); the real memory is freed by Go's own collector once
// nothing references it. Only the optional trace line is printed from a
// separate goroutine.
func (h *Heap) MinorGC() {
	h.mu.Lock()

	visited := make(map[gcObject]bool)
	var keepYoung []gcObject
	promoted := 0

	var trace func(v Value)
	trace = func(v Value) {
		ref, ok := refObject(v)
		if !ok || ref == nil {
			return
		}
		hdr := ref.gcHead()
		if hdr.gen == GenOld {
			return
		}
		if visited[ref] {
			return
		}
		visited[ref] = true
		keepYoung = append(keepYoung, ref)
		ref.scanRefs(trace)
	}

	h.walkAllRoots(trace)
	for _, holder := range h.remembered {
		holder.scanRefs(trace)
	}

	nextSurv := h.activeSurv ^ 1
	newSurvivor := h.survivors[nextSurv][:0]
	var newOld []gcObject
	for _, o := range keepYoung {
		hdr := o.gcHead()
		if hdr.age >= ageMax {
			hdr.gen = GenOld
			hdr.age = 0
			hdr.remembered = false
			newOld = append(newOld, o)
			promoted++
		} else {
			hdr.gen = GenSurvivor
			hdr.age++
			newSurvivor = append(newSurvivor, o)
		}
	}

	dead := len(h.nursery) + len(h.survivors[h.activeSurv]) - len(keepYoung)

	h.survivors[nextSurv] = newSurvivor
	h.survivors[h.activeSurv] = nil
	h.activeSurv = nextSurv
	h.nursery = nil
	h.allocsInGen = 0
	h.oldGen = append(h.oldGen, newOld...)

	// A remembered holder keeps its entry only while it still points at
	// a young (nursery/survivor) object; holders whose referents were
	// all promoted drop out of the remembered set.
	keptRemembered := h.remembered[:0]
	for _, holder := range h.remembered {
		stillYoung := false
		holder.scanRefs(func(v Value) {
			if ref, ok := refObject(v); ok && ref != nil && ref.gcHead().gen != GenOld {
				stillYoung = true
			}
		})
		if stillYoung {
			keptRemembered = append(keptRemembered, holder)
		} else {
			holder.gcHead().remembered = false
		}
	}
	h.remembered = keptRemembered

	h.Stats.MinorCollections++
	h.Stats.Promoted += promoted
	h.Stats.Reclaimed += dead
	trace_ := h.TraceGC
	h.mu.Unlock()

	if trace_ {
		go h.trace("minor: kept=%d promoted=%d reclaimed=%d", len(keepYoung), promoted, dead)
	}
}
