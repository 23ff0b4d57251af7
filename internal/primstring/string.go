// Package primstring implements the immutable, growable UTF-16 string
// buffer described in spec.md §3.3, grounded on
// original_source/njs/basic_types/PrimitiveString.h and the teacher's
// value.go String type.
package primstring

import (
	"unicode/utf16"
)

// String is a length-prefixed UTF-16 (char16) buffer with a capacity
// field. It is semantically immutable per Value: Append only mutates
// in place when the caller has established (via RefHint, see
// spec.md §3.7) that no other Value shares this buffer.
type String struct {
	units []uint16
}

// New copies s (interpreted as UTF-8) into a fresh char16 buffer.
func New(s string) *String {
	return &String{units: utf16.Encode([]rune(s))}
}

// NewFromUnits takes ownership of units without copying.
func NewFromUnits(units []uint16) *String {
	return &String{units: units}
}

// Len returns the length in UTF-16 code units. Per spec.md §3.3, length
// must fit in u32; this implementation additionally trusts Go's int.
func (s *String) Len() int { return len(s.units) }

// Units returns the raw UTF-16 code units. Callers must not mutate the
// returned slice.
func (s *String) Units() []uint16 { return s.units }

// Go renders the buffer as a Go (UTF-8) string, replacing any unpaired
// surrogate with the Unicode replacement character.
func (s *String) Go() string {
	return string(utf16.Decode(s.units))
}

// Concat returns a brand-new buffer holding s followed by other.
func (s *String) Concat(other *String) *String {
	out := make([]uint16, 0, len(s.units)+len(other.units))
	out = append(out, s.units...)
	out = append(out, other.units...)
	return &String{units: out}
}

// Append extends s in place with other's contents and returns s. The
// caller is responsible for checking the reference-count hint (§3.7)
// before calling this: Append must only be used when s's hint count is
// 1, i.e. no other Value aliases this buffer. Violating that corrupts
// any other Value still pointing at the old contents.
func (s *String) Append(other *String) *String {
	s.units = append(s.units, other.units...)
	return s
}

// Substr returns the code units in [start, end) as a new buffer. Start
// and end are clamped to the valid range.
func (s *String) Substr(start, end int) *String {
	start = clamp(start, 0, len(s.units))
	end = clamp(end, start, len(s.units))
	out := make([]uint16, end-start)
	copy(out, s.units[start:end])
	return &String{units: out}
}

// CharAt returns a one-code-unit string for a valid index, or nil
// otherwise (callers map nil to `undefined`, per spec.md §4.3's string
// fast path).
func (s *String) CharAt(index int) *String {
	if index < 0 || index >= len(s.units) {
		return nil
	}
	return &String{units: []uint16{s.units[index]}}
}

// Find returns the index of the first occurrence of needle at or after
// from, or -1.
func (s *String) Find(needle *String, from int) int {
	return indexOf(s.units, needle.units, from)
}

// RFind returns the index of the last occurrence of needle at or before
// from (inclusive), or -1.
func (s *String) RFind(needle *String, from int) int {
	if from > len(s.units)-len(needle.units) {
		from = len(s.units) - len(needle.units)
	}
	for i := from; i >= 0; i-- {
		if unitsEqual(s.units[i:i+len(needle.units)], needle.units) {
			return i
		}
	}
	return -1
}

// Replace returns a new buffer with the first occurrence of old
// replaced by replacement.
func (s *String) Replace(old, replacement *String) *String {
	i := s.Find(old, 0)
	if i < 0 {
		return &String{units: append([]uint16(nil), s.units...)}
	}
	out := make([]uint16, 0, len(s.units)-len(old.units)+len(replacement.units))
	out = append(out, s.units[:i]...)
	out = append(out, replacement.units...)
	out = append(out, s.units[i+len(old.units):]...)
	return &String{units: out}
}

// Compare implements the ordering used by the interpreter's <, <=, >,
// >= opcodes when both operands are strings (spec.md §4.2): lexical
// comparison over UTF-16 code units.
func (s *String) Compare(other *String) int {
	n := len(s.units)
	if len(other.units) < n {
		n = len(other.units)
	}
	for i := 0; i < n; i++ {
		if s.units[i] != other.units[i] {
			if s.units[i] < other.units[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(s.units) < len(other.units):
		return -1
	case len(s.units) > len(other.units):
		return 1
	default:
		return 0
	}
}

// Equal reports whether two buffers hold identical contents.
func (s *String) Equal(other *String) bool {
	return unitsEqual(s.units, other.units)
}

func unitsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func indexOf(haystack, needle []uint16, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 {
		if from > len(haystack) {
			return -1
		}
		return from
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		if unitsEqual(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Repeat builds a new buffer holding s repeated n times.
func (s *String) Repeat(n int) *String {
	out := make([]uint16, 0, len(s.units)*n)
	for i := 0; i < n; i++ {
		out = append(out, s.units...)
	}
	return &String{units: out}
}
