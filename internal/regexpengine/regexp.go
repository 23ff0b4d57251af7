// Package regexpengine wraps github.com/dlclark/regexp2 as the RegExp
// backend (SPEC_FULL.md §B): regexp2 implements backtracking,
// ECMAScript-flavored semantics (backreferences, lookaround) that the
// standard library's RE2-derived regexp package deliberately does not
// support, and that original_source/njs/basic_types/JSRegExp.h requires.
package regexpengine

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Flags is the parsed form of a RegExp's flag string.
type Flags struct {
	Global     bool
	IgnoreCase bool
	Multiline  bool
	DotAll     bool
	Unicode    bool
	Sticky     bool
}

// ParseFlags validates and decodes a flag string (spec.md's supported
// flag set, SPEC_FULL.md §B), rejecting duplicates and unknown letters.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	seen := make(map[rune]bool)
	for _, r := range s {
		if seen[r] {
			return Flags{}, fmt.Errorf("regexpengine: duplicate flag %q", r)
		}
		seen[r] = true
		switch r {
		case 'g':
			f.Global = true
		case 'i':
			f.IgnoreCase = true
		case 'm':
			f.Multiline = true
		case 's':
			f.DotAll = true
		case 'u':
			f.Unicode = true
		case 'y':
			f.Sticky = true
		default:
			return Flags{}, fmt.Errorf("regexpengine: unknown flag %q", r)
		}
	}
	return f, nil
}

func (f Flags) String() string {
	var b strings.Builder
	if f.Global {
		b.WriteByte('g')
	}
	if f.IgnoreCase {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if f.Unicode {
		b.WriteByte('u')
	}
	if f.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

func (f Flags) regexp2Options() regexp2.RegexOptions {
	opts := regexp2.RE2
	if f.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if f.Multiline {
		opts |= regexp2.Multiline
	}
	if f.DotAll {
		opts |= regexp2.Singleline
	}
	return opts
}

// Program is a compiled regular expression, the Compiled payload behind
// a heap.RegExpExt.
type Program struct {
	re    *regexp2.Regexp
	Flags Flags
}

// Compile parses and compiles source with flags. Source and the match
// input are always UTF-16 code points represented as Go runes, matching
// the teacher's pattern of pushing character-class decisions onto the
// backing regex engine rather than hand-rolling one (spec.md §3.3's
// char16 string model feeds regexp2 through Go string conversion at the
// interp boundary, not in this package).
func Compile(source string, flags Flags) (*Program, error) {
	re, err := regexp2.Compile(source, flags.regexp2Options())
	if err != nil {
		return nil, fmt.Errorf("regexpengine: compile: %w", err)
	}
	if flags.Sticky || flags.Global {
		re.RightToLeft = false
	}
	return &Program{re: re, Flags: flags}, nil
}

// MatchResult is one successful match, with capture groups in
// declaration order (index 0 is the whole match).
type MatchResult struct {
	Index  int
	Groups []Group
}

// Group is one capture group; Matched is false for an unmatched
// optional group (spec.md's exec() result must report undefined for
// those, not an empty string).
type Group struct {
	Name    string
	Value   string
	Start   int
	Matched bool
}

// Exec runs the pattern against input starting at rune index from
// (regexp2's FindStringMatchStartingAt counts positions in runes),
// implementing RegExp.prototype.exec's
// lastIndex-driven search for the g/y flags (SPEC_FULL.md §B).
func (p *Program) Exec(input string, from int) (*MatchResult, error) {
	m, err := p.re.FindStringMatchStartingAt(input, from)
	if err != nil {
		return nil, fmt.Errorf("regexpengine: exec: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	groups := m.Groups()
	out := make([]Group, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			out[i] = Group{Name: g.Name, Matched: false}
			continue
		}
		c := g.Captures[len(g.Captures)-1]
		out[i] = Group{Name: g.Name, Value: c.String(), Start: c.Index, Matched: true}
	}
	return &MatchResult{Index: m.Index, Groups: out}, nil
}

// Test reports only whether the pattern matches anywhere at or after
// from, for RegExp.prototype.test without building capture groups.
func (p *Program) Test(input string, from int) (bool, error) {
	res, err := p.Exec(input, from)
	return res != nil, err
}
