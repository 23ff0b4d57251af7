// Package jserror builds native Error objects and formats stack traces
// by walking the live interpreter frame chain (spec.md §7's error
// handling design). Grounded on original_source/njs/basic_types/JSErrorPrototype.h
// for the nine native error kinds and the teacher's errors.go for the
// "one Go type carrying a kind tag" idiom.
package jserror

import (
	"fmt"
	"strings"

	"ecmalite/internal/atom"
	"ecmalite/internal/heap"
)

// Kind enumerates the native error constructors spec.md and its
// supplemented features (SPEC_FULL.md §C) require.
type Kind uint8

const (
	Error Kind = iota
	EvalError
	RangeError
	ReferenceError
	SyntaxError
	TypeError
	URIError
	InternalError
	AggregateError
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "Error"
	case EvalError:
		return "EvalError"
	case RangeError:
		return "RangeError"
	case ReferenceError:
		return "ReferenceError"
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case URIError:
		return "URIError"
	case InternalError:
		return "InternalError"
	case AggregateError:
		return "AggregateError"
	default:
		return "Error"
	}
}

// Prototypes holds the nine native error prototype objects, wired by
// internal/runtime during startup; New below looks up the right one by
// Kind to set a fresh error instance's [[Prototype]].
type Prototypes struct {
	protos [9]*heap.Object
}

// Set registers the prototype object for kind.
func (p *Prototypes) Set(kind Kind, proto *heap.Object) { p.protos[kind] = proto }

// Get returns the prototype object for kind, or nil if unregistered.
func (p *Prototypes) Get(kind Kind) *heap.Object { return p.protos[kind] }

// StackFrame is one entry of a captured stack trace (spec.md §7:
// "errors report the call chain active at throw time").
type StackFrame struct {
	FunctionName string
	PC           uint32
}

// FrameWalker is implemented by internal/interp's call-frame stack so
// this package can format a trace without importing interp (which
// itself must import heap, and would create a cycle if interp also
// needed to import jserror's error-construction helpers... which it
// does, for the throw/call opcodes. jserror stays a heap-only leaf and
// receives frames already captured by the caller instead).
type FrameWalker interface {
	Frames() []StackFrame
}

// New constructs a fresh Error object: own `message` (if msg != ""),
// `name`, and `stack` properties, prototype taken from protos, per
// spec.md §7.
func New(h *heap.Heap, tbl *atom.Table, statics *atom.StaticAtoms, protos *Prototypes, kind Kind, msg string, frames []StackFrame) heap.Value {
	proto := protos.Get(kind)
	var protoVal heap.Value
	if proto != nil {
		protoVal = heap.ObjectVal(proto)
	} else {
		protoVal = heap.Null()
	}
	o := h.NewObject(heap.ClassError, protoVal)

	messageAtom := tbl.Atomize("message")
	nameAtom := statics.Name
	stackAtom := statics.Stack

	if msg != "" {
		o.DefineOwn(h, messageAtom, heap.PropDesc{
			Flags: heap.PropFlags{Writable: true, Configurable: true},
			Value: heap.StringVal(h.NewString(msg)),
		})
	}
	o.DefineOwn(h, nameAtom, heap.PropDesc{
		Flags: heap.PropFlags{Writable: true, Configurable: true},
		Value: heap.StringVal(h.NewString(kind.String())),
	})
	o.DefineOwn(h, stackAtom, heap.PropDesc{
		Flags: heap.PropFlags{Writable: true, Configurable: true},
		Value: heap.StringVal(h.NewString(FormatStack(kind, msg, frames))),
	})
	return heap.ObjectVal(o)
}

// FormatStack renders a V8-style stack trace header plus one line per
// frame (SPEC_FULL.md §A's diagnostics section).
func FormatStack(kind Kind, msg string, frames []StackFrame) string {
	var b strings.Builder
	if msg != "" {
		fmt.Fprintf(&b, "%s: %s\n", kind, msg)
	} else {
		fmt.Fprintf(&b, "%s\n", kind)
	}
	for _, f := range frames {
		name := f.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&b, "    at %s (pc %d)\n", name, f.PC)
	}
	return strings.TrimRight(b.String(), "\n")
}

// IsError reports whether v is an Error-class object, for the
// `instanceof Error` fast path and for internal/interp deciding whether
// an uncaught throw should print a stack trace.
func IsError(v heap.Value) bool {
	return v.IsObject() && v.AsObject().Class == heap.ClassError
}
