// Package runtime wires together internal/heap, internal/bytecode,
// internal/interp, internal/eventloop, internal/jserror, and
// internal/builtin into a runnable engine: it builds the atom table,
// the prototype graph (Object/Array/Function/.../the nine native error
// kinds), installs every native method internal/builtin provides, loads
// a compiled bytecode module into the interpreter's MetaPool, and
// drives the event loop to completion. Grounded on the teacher's
// cmd/langlang top-level Compile/Run split and config.go's plain-struct
// options idiom (SPEC_FULL.md §A.4: a plain Options struct, not the
// teacher's string-keyed Config map, since every option here is known
// and typed at compile time).
package runtime

import (
	"fmt"

	"ecmalite/internal/atom"
	"ecmalite/internal/builtin"
	"ecmalite/internal/bytecode"
	"ecmalite/internal/eventloop"
	"ecmalite/internal/heap"
	"ecmalite/internal/interp"
	"ecmalite/internal/jserror"
)

// Options configures a fresh Engine. Every field has a documented zero
// value so New(Options{}) builds a usable engine.
type Options struct {
	// MaxWorkers bounds the event loop's background worker pool
	// (spec.md §4.7, §6). Zero defaults to 4.
	MaxWorkers int64

	// TraceGC mirrors Heap.TraceGC, logging each minor/major collection
	// to stderr (spec.md §6's diagnostics note).
	TraceGC bool

	// NurseryBudget/OldGenBudget are accepted but not applied: New
	// always builds the heap with heap.New's default collection
	// thresholds, whatever these hold.
	NurseryBudget int
	OldGenBudget  int
}

// Engine owns every long-lived piece needed to load and run a compiled
// module: the heap, atom table, interpreter, event loop, and the
// installed prototype graph.
type Engine struct {
	Heap    *heap.Heap
	Atoms   *atom.Table
	Statics atom.StaticAtoms
	Loop    *eventloop.Loop
	Protos  *jserror.Prototypes
	Interp  *interp.Interp
	Global  *heap.Object

	reg *builtin.Registry

	objectProto   *heap.Object
	arrayProto    *heap.Object
	functionProto *heap.Object
	promiseProto  *heap.Object
	regexpProto   *heap.Object
	dateProto     *heap.Object
	numberProto   *heap.Object
	stringProto   *heap.Object
	booleanProto  *heap.Object
	generatorProto *heap.Object

	timerHandles map[uint32]eventloop.TimerHandle
	nextTimerID  uint32
}

// New builds an Engine with an empty global object and a fully wired
// prototype graph, ready to accept a compiled module via Load.
func New(opts Options) *Engine {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}

	tbl := atom.New()
	statics := atom.NewStaticAtoms(tbl)
	h := heap.New(tbl, statics)
	h.TraceGC = opts.TraceGC

	loop := eventloop.New(opts.MaxWorkers)
	protos := &jserror.Prototypes{}

	// The global object predates any prototype, so its own [[Prototype]]
	// is wired to Object.prototype once that exists, a few lines below.
	global := heap.NewObject(heap.ClassPlainObject, heap.Null())

	it := interp.New(h, tbl, statics, loop, protos, global)

	e := &Engine{
		Heap: h, Atoms: tbl, Statics: statics, Loop: loop, Protos: protos, Interp: it, Global: global,
		timerHandles: make(map[uint32]eventloop.TimerHandle),
	}
	e.reg = builtin.New(h, tbl, statics)
	e.buildPrototypeGraph()
	e.installErrorKinds()
	e.installGlobals()
	return e
}

// buildPrototypeGraph constructs Object/Array/Function/Promise/RegExp/
// Date/Number/String/Boolean.prototype and wires each one's native
// methods via internal/builtin (spec.md §9's "one Object layout"
// design note applies equally to prototypes: they are plain
// ClassPlainObject instances, distinguished only by which methods they
// carry).
func (e *Engine) buildPrototypeGraph() {
	h := e.Heap

	e.objectProto = h.NewObject(heap.ClassPlainObject, heap.Null())
	e.Global.Proto = heap.ObjectVal(e.objectProto)

	e.functionProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.arrayProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.promiseProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.regexpProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.dateProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.numberProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.stringProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.booleanProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.generatorProto = h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))

	e.reg.InstallObjectPrototype(e.objectProto)
	e.reg.InstallFunctionPrototype(e.functionProto)
	e.reg.InstallArrayPrototype(e.arrayProto)
	e.reg.InstallNumberPrototype(e.numberProto)
	e.reg.InstallStringPrototype(e.stringProto)

	e.definePrototypeLink("Object", e.objectProto)
	e.definePrototypeLink("Function", e.functionProto)
	e.definePrototypeLink("Array", e.arrayProto)
	e.definePrototypeLink("Promise", e.promiseProto)
	e.definePrototypeLink("RegExp", e.regexpProto)
	e.definePrototypeLink("Date", e.dateProto)
	e.definePrototypeLink("Number", e.numberProto)
	e.definePrototypeLink("String", e.stringProto)
	e.definePrototypeLink("Boolean", e.booleanProto)
	e.definePrototypeLink("Generator", e.generatorProto)
	e.installGeneratorPrototype()

	e.installObjectCtor()
	e.installArrayCtor()
	e.installSymbolCtor()
	e.installPromiseCtor()
	e.installRegExpCtor()
	e.installDateCtor()
	e.installNumberCtor()
	e.installStringCtor()
	e.installBooleanCtor()
}

// nativeCtor builds a constructor Function object backed by fn, with
// its `prototype` property set to proto and proto's `constructor`
// pointed back (the mutual back-reference every ECMAScript constructor/
// prototype pair carries).
func (e *Engine) nativeCtor(name string, proto *heap.Object, fn heap.NativeFunc) *heap.Object {
	h := e.Heap
	meta := &heap.FunctionMeta{Native: fn}
	ctor := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
	ctor.Ext = heap.NewFunctionExt(meta, nil)
	ctor.DefineOwn(h, e.Statics.Name, heap.DataDesc(heap.StringVal(h.NewString(name))))
	if proto != nil {
		ctor.DefineOwn(h, e.Statics.Prototype, heap.PropDesc{
			Flags: heap.PropFlags{Writable: false, Enumerable: false, Configurable: false},
			Value: heap.ObjectVal(proto),
		})
		proto.DefineOwn(h, e.Statics.Constructor, heap.PropDesc{
			Flags: heap.PropFlags{Writable: true, Configurable: true},
			Value: heap.ObjectVal(ctor),
		})
	}
	e.Global.DefineOwn(h, e.Atoms.Atomize(name), heap.PropDesc{
		Flags: heap.PropFlags{Writable: true, Configurable: true},
		Value: heap.ObjectVal(ctor),
	})
	return ctor
}

// definePrototypeLink registers name's constructor/prototype pair for
// a built-in that (at this point in setup) has no constructor function
// yet of its own besides the shared prototype object; installObjectCtor
// et al. fill in the constructor itself afterward via nativeCtor, which
// overwrites this placeholder with the real back-reference. Function and
// Generator get no nativeCtor call, so their global binding stays this
// placeholder, which returns undefined when called.
func (e *Engine) definePrototypeLink(name string, proto *heap.Object) {
	// Placeholder global binding so lookupGlobalProto(name) finds a
	// prototype even before the constructor function is installed; a
	// later nativeCtor call for the same name, where there is one,
	// replaces this entry.
	h := e.Heap
	stub := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
	stub.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		return heap.Undefined(), heap.Value{}, false
	}}, nil)
	stub.DefineOwn(h, e.Statics.Prototype, heap.DataDesc(heap.ObjectVal(proto)))
	e.Global.DefineOwn(h, e.Atoms.Atomize(name), heap.DataDesc(heap.ObjectVal(stub)))
}

func (e *Engine) installObjectCtor() {
	ctor := e.nativeCtor("Object", e.objectProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		if len(args) > 0 && args[0].IsObject() {
			return args[0], heap.Value{}, false
		}
		return heap.ObjectVal(h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))), heap.Value{}, false
	})
	e.reg.InstallObjectStatics(ctor)
}

func (e *Engine) installArrayCtor() {
	e.nativeCtor("Array", e.arrayProto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		arr := h.NewArray(heap.ObjectVal(e.arrayProto))
		ext := arr.Ext.(*heap.ArrayExt)
		if len(args) == 1 && args[0].IsNumber() {
			ext.SetLength(uint32(args[0].ToFloat64()))
		} else {
			for _, a := range args {
				ext.Push(h, arr, a)
			}
		}
		return heap.ObjectVal(arr), heap.Value{}, false
	})
}

func (e *Engine) installSymbolCtor() {
	h := e.Heap
	ctor := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
	ctor.Ext = heap.NewFunctionExt(&heap.FunctionMeta{Native: e.reg.SymbolConstructor}, nil)
	ctor.DefineOwn(h, e.Statics.Name, heap.DataDesc(heap.StringVal(h.NewString("Symbol"))))
	e.reg.InstallSymbolWellKnown(ctor)
	e.Global.DefineOwn(h, e.Atoms.Atomize("Symbol"), heap.DataDesc(heap.ObjectVal(ctor)))
}

// installErrorKinds builds the nine native error prototypes and
// constructors (spec.md §7), chaining each specific kind's prototype
// under Error.prototype the way
// original_source/njs/basic_types/JSErrorPrototype.h/.cpp does, so
// `instanceof Error` holds for every subtype.
func (e *Engine) installErrorKinds() {
	h := e.Heap
	kinds := []jserror.Kind{
		jserror.Error, jserror.EvalError, jserror.RangeError, jserror.ReferenceError,
		jserror.SyntaxError, jserror.TypeError, jserror.URIError, jserror.InternalError,
		jserror.AggregateError,
	}
	baseProto := h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	e.reg.InstallObjectPrototype(baseProto)
	e.Protos.Set(jserror.Error, baseProto)
	e.definePrototypeLink("Error", baseProto)
	e.installErrorCtor(jserror.Error, baseProto)

	for _, k := range kinds {
		if k == jserror.Error {
			continue
		}
		proto := h.NewObject(heap.ClassPlainObject, heap.ObjectVal(baseProto))
		e.Protos.Set(k, proto)
		e.definePrototypeLink(k.String(), proto)
		e.installErrorCtor(k, proto)
	}
}

func (e *Engine) installErrorCtor(kind jserror.Kind, proto *heap.Object) {
	e.nativeCtor(kind.String(), proto, func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		msg := ""
		if len(args) > 0 && args[0].IsString() {
			msg = args[0].AsString().Go()
		}
		v := jserror.New(h, e.Atoms, &e.Statics, e.Protos, kind, msg, nil)
		if this.IsObject() && this.AsObject() != e.Global {
			self := this.AsObject()
			self.Class = heap.ClassError
			src := v.AsObject()
			for _, k := range src.OwnKeys() {
				d, _ := src.OwnProperty(k)
				self.DefineOwn(h, k, d)
			}
			return this, heap.Value{}, false
		}
		return v, heap.Value{}, false
	})
}

// installGlobals attaches the free functions and globals every program
// expects outside any prototype (console.log as a thin stderr/stdout
// shim, setTimeout/clearTimeout wired to the event loop, and the
// globalThis self-reference), per SPEC_FULL.md §C.
func (e *Engine) installGlobals() {
	h := e.Heap
	e.Global.DefineOwn(h, e.Atoms.Atomize("globalThis"), heap.DataDesc(heap.ObjectVal(e.Global)))

	console := h.NewObject(heap.ClassPlainObject, heap.ObjectVal(e.objectProto))
	logFn := func(h *heap.Heap, this heap.Value, args []heap.Value, call heap.Caller) (heap.Value, heap.Value, bool) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = e.displayValue(a)
		}
		line := ""
		for i, p := range parts {
			if i > 0 {
				line += " "
			}
			line += p
		}
		fmt.Println(line)
		return heap.Undefined(), heap.Value{}, false
	}
	consoleMeta := &heap.FunctionMeta{Native: logFn}
	consoleFnObj := h.NewObject(heap.ClassFunction, heap.ObjectVal(e.functionProto))
	consoleFnObj.Ext = heap.NewFunctionExt(consoleMeta, nil)
	console.DefineOwn(h, e.Atoms.Atomize("log"), heap.DataDesc(heap.ObjectVal(consoleFnObj)))
	e.Global.DefineOwn(h, e.Atoms.Atomize("console"), heap.DataDesc(heap.ObjectVal(console)))

	e.installTimers()
}

func (e *Engine) displayValue(v heap.Value) string {
	switch {
	case v.IsString():
		return v.AsString().Go()
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsNumber():
		return formatDisplayNumber(v.ToFloat64())
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsObject() && v.AsObject().Class == heap.ClassError:
		if d, ok := v.AsObject().OwnProperty(e.Statics.Stack); ok && d.Value.IsString() {
			return d.Value.AsString().Go()
		}
		return "Error"
	default:
		return v.TypeOf()
	}
}
