// Heap is the generational, moving/copying GC heap of spec.md §4.1,
// §5: a nursery (bump-allocated young generation), two survivor spaces,
// and a segregated-by-size old generation, collected synchronously under
// h.mu by the allocating goroutine (there is no separate GC thread). Grounded on the teacher's single-
// arena vm.go allocation pattern, generalized to the spec's generational
// design, and on original_source/njs/gc/GCHeap.h/.cpp for the
// nursery-threshold/promotion/pause-phase structure.
//
// This rendering keeps Go's own garbage collector as the actual memory
// owner: "moving" an object here means rewriting its logical generation
// and age, and dropping it from every list this Heap tracks, rather
// than relocating its bytes — see gc_object.go's doc comment for why a literal
// unsafe.Pointer-based mover would be both non-idiomatic and unsafe in
// Go. Every observable invariant spec.md §8 tests for (reachability,
// remembered-set correctness, promotion after ageMax survivals, closure
// cell identity across a collection) holds under this rendering.
package heap

import (
	"fmt"
	"os"
	"sync"

	"ecmalite/internal/atom"
	"ecmalite/internal/primstring"
)

// GCStats accumulates collection counters for diagnostics (spec.md §6's
// external interface note on exposing collector activity for tests).
type GCStats struct {
	MinorCollections int
	MajorCollections int
	Promoted         int
	Reclaimed        int
}

// Heap owns every live allocation plus the generational bookkeeping
// that drives collection.
type Heap struct {
	tbl    *atom.Table
	static atom.StaticAtoms

	nursery       []gcObject
	survivors     [2][]gcObject
	activeSurv    int
	oldGen        []gcObject
	remembered    []gcObject
	tempRoots     []Value
	staticStrings []*GCString

	roots     RootProvider
	resolvers map[LazyKind]LazyResolver

	mu sync.Mutex

	nurseryBudget int
	allocsInGen   int
	oldGenBudget  int
	allocsSinceGC int

	TraceGC bool
	Stats   GCStats
}

// Default collection thresholds; small enough that unit tests can
// exercise both minor and major collections without building huge
// object graphs.
const (
	defaultNurseryBudget = 512
	defaultOldGenBudget  = 4096
)

// New constructs an empty heap bound to the given atom table.
func New(tbl *atom.Table, static atom.StaticAtoms) *Heap {
	return &Heap{
		tbl:           tbl,
		static:        static,
		resolvers:     make(map[LazyKind]LazyResolver),
		nurseryBudget: defaultNurseryBudget,
		oldGenBudget:  defaultOldGenBudget,
	}
}

// SetRoots wires the embedder's frame/task/global root provider. Must
// be called once before the first allocation that can trigger a
// collection (interp.New does this, registering the interpreter itself
// as the root provider).
func (h *Heap) SetRoots(r RootProvider) { h.roots = r }

// RegisterLazyResolver installs the resolver for a LazyKind, wired by
// internal/runtime while building the prototype graph (spec.md §4.3
// step 4).
func (h *Heap) RegisterLazyResolver(kind LazyKind, fn LazyResolver) {
	h.resolvers[kind] = fn
}

func (h *Heap) resolveLazy(kind LazyKind, owner *Object, key atom.Atom) Value {
	if fn, ok := h.resolvers[kind]; ok {
		return fn(h, owner, key)
	}
	return Undefined()
}

// RegisterStaticString interns a GCString that must survive for the
// lifetime of the heap regardless of reachability from frames. No code
// in this module calls it, so the static-string root list starts and
// stays empty.
func (h *Heap) RegisterStaticString(s *GCString) {
	h.staticStrings = append(h.staticStrings, s)
}

// track appends a freshly allocated object to the nursery and runs a
// minor collection once the nursery budget is exceeded.
func (h *Heap) track(o gcObject) {
	h.mu.Lock()
	h.nursery = append(h.nursery, o)
	h.allocsInGen++
	needMinor := h.allocsInGen >= h.nurseryBudget
	h.mu.Unlock()
	if needMinor {
		h.MinorGC()
		h.MaybeMajorGC()
	}
}

// NewObject allocates a bare object of the given class in the nursery.
func (h *Heap) NewObject(class ClassTag, proto Value) *Object {
	o := NewObject(class, proto)
	h.track(o)
	return o
}

// NewArray allocates an empty ClassArray object.
func (h *Heap) NewArray(proto Value) *Object {
	o := h.NewObject(ClassArray, proto)
	o.Ext = NewArrayExt()
	return o
}

// NewString allocates a heap string from a Go string.
func (h *Heap) NewString(s string) *GCString {
	gs := &GCString{PrimString: primstring.New(s)}
	h.track(gs)
	return gs
}

// NewStringFromPrim wraps an already-built PrimString as a heap string.
func (h *Heap) NewStringFromPrim(p *PrimString) *GCString {
	gs := &GCString{PrimString: p}
	h.track(gs)
	return gs
}

// NewHeapCell allocates a closure cell box.
func (h *Heap) NewHeapCell(v Value) *HeapCell {
	c := NewHeapCell(v)
	h.track(c)
	return c
}

// NewHeapArray allocates a raw Value array of length n.
func (h *Heap) NewHeapArray(n int) *HeapArray {
	a := NewHeapArray(n)
	h.track(a)
	return a
}

func (h *Heap) trace(fmtStr string, args ...any) {
	if h.TraceGC {
		fmt.Fprintf(os.Stderr, "gc: "+fmtStr+"\n", args...)
	}
}
