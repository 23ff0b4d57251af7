// Package atom implements the interned string/symbol table described in
// spec.md §3.2. An Atom is a u32: integer atoms (high bit set) carry an
// array index directly; string/symbol atoms (high bit clear) index into
// the pool.
package atom

import (
	"strconv"

	"github.com/dolthub/swiss"
)

// Atom is a u32 identifier. See the package doc comment for its two
// disjoint encodings.
type Atom uint32

const integerBit = uint32(1) << 31

// MaxIndex is the largest array index representable by an integer atom.
const MaxIndex = int64(integerBit - 1)

// IsIndex reports whether a is an integer (array-index) atom.
func (a Atom) IsIndex() bool { return uint32(a)&integerBit != 0 }

// Index returns the array-index value of an integer atom. Only valid
// when IsIndex() is true.
func (a Atom) Index() uint32 { return uint32(a) &^ integerBit }

// NewIndexAtom builds an integer atom directly from an array index,
// bypassing the pool and the intern table.
func NewIndexAtom(i uint32) Atom { return Atom(i | integerBit) }

type recordKind uint8

const (
	kindString recordKind = iota
	kindSymbol
)

type record struct {
	kind recordKind
	str  string // UTF-16 copied as Go string payload, see primstring for char16 views
	desc string // optional symbol description
}

// Table is the atom pool plus the intern lookup table. The zero Table
// is not usable; construct with New.
type Table struct {
	records []record
	intern  *swiss.Map[string, Atom]
	nextSym uint32
}

// New creates an empty atom table. Static atoms should be registered
// immediately afterward via Atomize so their indices are stable and
// known to both codegen and runtime, per spec.md §3.2.
func New() *Table {
	return &Table{
		records: make([]record, 0, 256),
		intern:  swiss.NewMap[string, Atom](256),
	}
}

// Atomize interns s as a string atom, first attempting to parse it as a
// canonical base-10 integer in [0, 2^31-1]; on success it returns the
// integer atom without touching the pool, per spec.md §3.2.
func (t *Table) Atomize(s string) Atom {
	if a, ok := parseCanonicalIndex(s); ok {
		return a
	}
	return t.AtomizeNoUint(s)
}

// AtomizeNoUint forces a pool entry even when s looks like an integer;
// used by codegen/runtime paths that need a stable string atom for a
// numeric-looking property key (spec.md §6).
func (t *Table) AtomizeNoUint(s string) Atom {
	if a, ok := t.intern.Get(s); ok {
		return a
	}
	id := Atom(len(t.records))
	t.records = append(t.records, record{kind: kindString, str: s})
	t.intern.Put(s, id)
	return id
}

// AtomizeSymbol allocates a fresh, always-unique symbol atom. Symbols
// are never interned: two calls with the same description produce two
// distinct atoms, per spec.md §3.1 ("Symbol(u32) (unique per creation)").
func (t *Table) AtomizeSymbol() Atom {
	return t.AtomizeSymbolDesc("")
}

// AtomizeSymbolDesc allocates a fresh symbol atom carrying an optional
// description string (surfaced as Symbol.prototype.description).
func (t *Table) AtomizeSymbolDesc(desc string) Atom {
	id := Atom(len(t.records))
	t.records = append(t.records, record{kind: kindSymbol, desc: desc})
	t.nextSym++
	return id
}

// GetString returns the interned string for a string atom, or the
// decimal spelling of an integer atom's index. Panics if a is a symbol
// atom: callers are expected to check IsSymbol first, matching the
// teacher's "programming error" panics in config.go.
func (t *Table) GetString(a Atom) string {
	if a.IsIndex() {
		return strconv.FormatUint(uint64(a.Index()), 10)
	}
	r := t.record(a)
	if r.kind != kindString {
		panic("atom: GetString called on a symbol atom")
	}
	return r.str
}

// IsSymbol reports whether a refers to a symbol record.
func (t *Table) IsSymbol(a Atom) bool {
	if a.IsIndex() {
		return false
	}
	return t.record(a).kind == kindSymbol
}

// Description returns a symbol atom's optional description.
func (t *Table) Description(a Atom) string {
	r := t.record(a)
	if r.kind != kindSymbol {
		panic("atom: Description called on a non-symbol atom")
	}
	return r.desc
}

func (t *Table) record(a Atom) record {
	idx := int(a)
	if idx < 0 || idx >= len(t.records) {
		panic("atom: out of range atom index")
	}
	return t.records[idx]
}

// parseCanonicalIndex parses s as a canonical (no leading zero, no sign,
// except "0" itself) base-10 integer fitting in 31 bits.
func parseCanonicalIndex(s string) (Atom, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return NewIndexAtom(0), true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > MaxIndex {
		return 0, false
	}
	// Reject non-canonical forms like "01" that ParseInt would still
	// accept as "1" in some bases; base-10 ParseInt already rejects
	// leading zeros past the first digit check above.
	if strconv.FormatInt(n, 10) != s {
		return 0, false
	}
	return NewIndexAtom(uint32(n)), true
}

// Static well-known atoms, allocated by NewStaticAtoms right after Table
// construction so their
// indices are compile-time known to both codegen and runtime, per
// spec.md §3.2 ("Static atoms... are allocated at initialization").
type StaticAtoms struct {
	Length          Atom
	Prototype       Atom
	Constructor     Atom
	Proto           Atom // "__proto__"
	Name            Atom
	Message         Atom
	Stack           Atom
	Value           Atom
	Done            Atom
	Next            Atom
	SymbolIterator  Atom
	SymbolAsyncIter Atom
	SymbolToPrim    Atom
}

// NewStaticAtoms registers the fixed set of static atoms used by the
// runtime and returns their indices. Call exactly once per Table,
// before any user atomization, so indices line up with codegen's own
// static-atom table (spec.md §6).
func NewStaticAtoms(t *Table) StaticAtoms {
	return StaticAtoms{
		Length:          t.AtomizeNoUint("length"),
		Prototype:       t.AtomizeNoUint("prototype"),
		Constructor:     t.AtomizeNoUint("constructor"),
		Proto:           t.AtomizeNoUint("__proto__"),
		Name:            t.AtomizeNoUint("name"),
		Message:         t.AtomizeNoUint("message"),
		Stack:           t.AtomizeNoUint("stack"),
		Value:           t.AtomizeNoUint("value"),
		Done:            t.AtomizeNoUint("done"),
		Next:            t.AtomizeNoUint("next"),
		SymbolIterator:  t.AtomizeSymbolDesc("Symbol.iterator"),
		SymbolAsyncIter: t.AtomizeSymbolDesc("Symbol.asyncIterator"),
		SymbolToPrim:    t.AtomizeSymbolDesc("Symbol.toPrimitive"),
	}
}
