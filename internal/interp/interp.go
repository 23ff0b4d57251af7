// Package interp implements the stack-based bytecode interpreter of
// spec.md §4.2: opcode dispatch, the call/return protocol, catch-table
// exception unwinding, and the generator/async suspend-resume protocol
// built on top of it (§4.5). Grounded on the teacher's vm.go dispatch
// loop (a switch over an Op byte, operand reads, explicit PC
// management) generalized from langlang's PEG opcode family to the
// ECMAScript-subset family bytecode.go declares.
package interp

import (
	"fmt"
	"math"

	"ecmalite/internal/atom"
	"ecmalite/internal/bytecode"
	"ecmalite/internal/eventloop"
	"ecmalite/internal/heap"
	"ecmalite/internal/jserror"
	"ecmalite/internal/regexpengine"
)

// Interp owns the live call-frame stack, the heap, and the global
// object graph; it also implements heap.RootProvider so the GC can
// trace every value a running program can currently reach.
type Interp struct {
	H       *heap.Heap
	Atoms   *atom.Table
	Statics atom.StaticAtoms
	Loop    *eventloop.Loop
	Protos  *jserror.Prototypes
	Global  *heap.Object

	// MetaPool holds every compiled function's FunctionMeta, indexed by
	// the operand OpNewFunction addresses; internal/runtime populates
	// it once from the loaded bytecode module.
	MetaPool []*heap.FunctionMeta

	frames      []*Frame
	pendingArgs []heap.Value // args of not-yet-run event-loop callbacks, rooted between enqueue and run
}

// New builds an interpreter over an already-constructed heap and global
// object; internal/runtime wires prototypes and static atoms before the
// first Run.
func New(h *heap.Heap, tbl *atom.Table, statics atom.StaticAtoms, loop *eventloop.Loop, protos *jserror.Prototypes, global *heap.Object) *Interp {
	it := &Interp{H: h, Atoms: tbl, Statics: statics, Loop: loop, Protos: protos, Global: global}
	h.SetRoots(it)
	return it
}

// WalkRoots implements heap.RootProvider.
func (it *Interp) WalkRoots(visit func(heap.Value)) {
	visit(heap.ObjectVal(it.Global))
	for _, f := range it.frames {
		visit(f.This)
		visit(f.NewTarget)
		for _, v := range f.Args {
			visit(v)
		}
		for _, v := range f.Locals {
			visit(v)
		}
		for _, v := range f.Stack {
			visit(v)
		}
		if f.FuncExt != nil && f.FuncExt.Captures != nil {
			visit(heap.HeapArrayVal(f.FuncExt.Captures))
		}
	}
	for _, v := range it.pendingArgs {
		visit(v)
	}
}

// thrown carries a JS-visible exception value up out of run/runFrom
// and Call as a Go error, kept distinct from suspendSignal and from
// other Go errors; AsThrown unwraps it (spec.md §7's error-handling
// design).
type thrown struct{ v heap.Value }

func (thrown) Error() string { return "interp: uncaught JS exception (see .Value)" }

// Suspended is what runFrom reports, wrapped in a suspendSignal error,
// when a generator/async frame hits a suspend opcode instead of
// returning; this package's GeneratorNext/GeneratorThrow and stepAsync
// read Value as the yielded/awaited operand and State as the snapshot
// to resume from.
type Suspended struct {
	Value heap.Value
	State *heap.ResumableState
}

// Call invokes a Function or BoundFunction object with the given this
// and arguments, running its bytecode body (or native implementation)
// to completion. It returns either a normal result (a fresh Generator
// object for a generator function, a Promise for an async function), or
// propagates a thrown value as a Go error the caller can type-assert
// with AsThrown.
func (it *Interp) Call(callee heap.Value, this heap.Value, args []heap.Value) (heap.Value, error) {
	if !callee.IsCallable() {
		return heap.Value{}, it.throwType("value is not a function")
	}
	o := callee.AsObject()
	if o.Class == heap.ClassBoundFunction {
		target, boundThis, prefix := o.Ext.(*heap.BoundFunctionExt).Resolve()
		return it.Call(target, boundThis, append(append([]heap.Value(nil), prefix...), args...))
	}
	ext := o.Ext.(*heap.FunctionExt)
	if ext.IsArrow {
		this = ext.BoundThis
	}
	if ext.Meta.Native != nil {
		result, thrownVal, did := ext.Meta.Native(it.H, this, args, it.nativeCaller)
		if did {
			return heap.Value{}, thrown{thrownVal}
		}
		return result, nil
	}
	// Calling a generator function never runs its body: it allocates a
	// Generator object holding this/args until the first next() call
	// (spec.md §4.5's "suspended at the start" state), same as
	// original_source/njs/basic_types/JSGenerator.h's construction
	// on call.
	if ext.Meta.Record.IsGenerator {
		g := it.H.NewObject(heap.ClassGenerator, it.lookupGlobalProto("Generator"))
		g.Ext = heap.NewGeneratorExt(ext, this, args)
		return heap.ObjectVal(g), nil
	}
	// An async function body runs synchronously up to its first await
	// (or to completion) and always hands the caller a Promise rather
	// than its eventual result (spec.md §4.5's note that await desugars
	// onto the same suspend/resume machinery as yield).
	if ext.Meta.Record.IsAsync {
		return it.callAsync(ext, this, args)
	}
	frame := NewFrame(ext.Meta.Record, ext, this, args)
	return it.run(frame)
}

// nativeCaller adapts Call to the heap.Caller shape a NativeFunc
// receives, so a built-in (Array.prototype.map, Promise.all, ...) can
// invoke a JS callback without this package needing to expose Call's
// Go-error return convention to internal/builtin.
func (it *Interp) nativeCaller(fn heap.Value, this heap.Value, args []heap.Value) (heap.Value, heap.Value, bool) {
	rv, err := it.Call(fn, this, args)
	if err == nil {
		return rv, heap.Value{}, false
	}
	if tv, ok := AsThrown(err); ok {
		return heap.Value{}, tv, true
	}
	return heap.Value{}, heap.Value{}, true
}

// AsThrown unwraps an error returned by Call/Resume into the thrown JS
// value, if that is what it is.
func AsThrown(err error) (heap.Value, bool) {
	t, ok := err.(thrown)
	return t.v, ok
}

// newRegExpObject compiles source/flags via internal/regexpengine and
// wraps the result in a ClassRegExp object (SPEC_FULL.md §C). The
// compiled program is stored as `any` on heap.RegExpExt precisely so
// heap need not import regexpengine (see wrapper.go's doc comment);
// this package, which already depends on both, performs the type
// assertion on read.
func (it *Interp) newRegExpObject(source, flagStr string) (*heap.Object, error) {
	flags, err := regexpengine.ParseFlags(flagStr)
	if err != nil {
		return nil, it.throwSyntax(err.Error())
	}
	prog, err := regexpengine.Compile(source, flags)
	if err != nil {
		return nil, it.throwSyntax(err.Error())
	}
	o := it.H.NewObject(heap.ClassRegExp, it.lookupGlobalProto("RegExp"))
	o.Ext = &heap.RegExpExt{
		Source:   it.H.NewString(source),
		Flags:    it.H.NewString(flagStr),
		Compiled: prog,
	}
	return o, nil
}

func (it *Interp) throwSyntax(msg string) error {
	v := jserror.New(it.H, it.Atoms, &it.Statics, it.Protos, jserror.SyntaxError, msg, it.stackFrames())
	return thrown{v}
}

func (it *Interp) throwType(msg string) error {
	frames := it.stackFrames()
	v := jserror.New(it.H, it.Atoms, &it.Statics, it.Protos, jserror.TypeError, msg, frames)
	return thrown{v}
}

func (it *Interp) stackFrames() []jserror.StackFrame {
	out := make([]jserror.StackFrame, 0, len(it.frames))
	for i := len(it.frames) - 1; i >= 0; i-- {
		f := it.frames[i]
		name := ""
		if f.Meta != nil {
			name = it.Atoms.GetString(f.Meta.Name)
		}
		out = append(out, jserror.StackFrame{FunctionName: name, PC: f.PC})
	}
	return out
}

// run pushes frame onto the live call stack (rooting it for GC) and
// dispatches its bytecode until it returns, suspends, or an exception
// escapes every catch entry in scope.
func (it *Interp) run(frame *Frame) (heap.Value, error) {
	return it.runFrom(frame, nil)
}

// runFrom is run's general form: when inject is non-nil, it is treated
// as a throw landing at frame's current PC before any instruction
// there executes, the same way Generator.prototype.throw re-enters a
// suspended body (spec.md §4.5) — frame.PC already sits just past the
// yield that suspended it, so the resumed throw is caught by whatever
// catch entry covers that PC, exactly as if the throw had happened
// inline.
func (it *Interp) runFrom(frame *Frame, inject *heap.Value) (heap.Value, error) {
	it.frames = append(it.frames, frame)
	defer func() { it.frames = it.frames[:len(it.frames)-1] }()

	if inject != nil {
		handled, _, herr := it.handleThrow(frame, *inject)
		if herr != nil {
			return heap.Value{}, herr
		}
		if !handled {
			return heap.Value{}, thrown{*inject}
		}
	}

	for {
		if int(frame.PC) >= len(frame.Meta.Code) {
			return heap.Undefined(), nil
		}
		ins := frame.Meta.Code[frame.PC]
		result, flow, err := it.step(frame, ins)
		if err != nil {
			if tv, ok := AsThrown(err); ok {
				if handled, _, herr := it.handleThrow(frame, tv); handled {
					if herr != nil {
						return heap.Value{}, herr
					}
					continue
				}
			}
			return heap.Value{}, err
		}
		switch flow {
		case flowReturn:
			return result, nil
		case flowSuspend:
			// Advance past the suspend point before snapshotting, so
			// resuming continues with the next instruction reading the
			// sent/resolved value GeneratorNext/stepAsync pushes, rather
			// than re-executing the same OpSuspend.
			frame.PC++
			return heap.Value{}, &suspendSignal{Suspended{Value: result, State: frame.snapshot(it.H)}}
		default:
			frame.PC++
		}
	}
}

type flowKind uint8

const (
	flowNext flowKind = iota
	flowReturn
	flowSuspend
)

// suspendSignal lets a suspend opcode unwind out of run via the normal
// error-return path without being mistaken for a JS-visible throw.
type suspendSignal struct{ Suspended }

func (s *suspendSignal) Error() string { return "interp: generator/async suspend" }

// AsSuspended unwraps a suspend signal, for this package's generator
// .next()/async-call drivers.
func AsSuspended(err error) (Suspended, bool) {
	s, ok := err.(*suspendSignal)
	if !ok {
		return Suspended{}, false
	}
	return s.Suspended, true
}

// handleThrow searches frame's catch table for an entry covering the
// current PC, unwinds the operand stack to that entry's recorded depth,
// pushes the thrown value, and jumps to the handler (spec.md §4.2's
// catch-table-based unwinding). If no entry covers the current PC, the
// exception is not handled here and must propagate to the caller.
func (it *Interp) handleThrow(frame *Frame, v heap.Value) (handled bool, _ heap.Value, err error) {
	for _, c := range frame.Meta.Catches {
		if frame.PC >= c.StartPC && frame.PC < c.EndPC {
			if int(c.StackDepth) <= len(frame.Stack) {
				frame.Stack = frame.Stack[:c.StackDepth]
			} else {
				frame.Stack = frame.Stack[:0]
			}
			frame.push(v)
			frame.PC = c.HandlerPC
			return true, heap.Value{}, nil
		}
	}
	return false, heap.Value{}, nil
}

// step executes one instruction and reports how control should flow
// next (advance, return, or suspend).
func (it *Interp) step(f *Frame, ins bytecode.Instruction) (heap.Value, flowKind, error) {
	switch ins.Op {
	case bytecode.OpNop:
	case bytecode.OpHalt:
		return heap.Undefined(), flowReturn, nil

	case bytecode.OpPushUndefined:
		f.push(heap.Undefined())
	case bytecode.OpPushNull:
		f.push(heap.Null())
	case bytecode.OpPushTrue:
		f.push(heap.Bool(true))
	case bytecode.OpPushFalse:
		f.push(heap.Bool(false))
	case bytecode.OpPushI32:
		f.push(heap.I32(ins.A))
	case bytecode.OpPushF64:
		f.push(heap.F64(f.Meta.Floats[ins.A]))
	case bytecode.OpPushAtomConst:
		f.push(heap.AtomVal(uint32(ins.A)))
	case bytecode.OpPushStringConst:
		// Operand A is the string constant's atom; each push allocates
		// a fresh heap string from the atom table's text.
		f.push(heap.StringVal(it.H.NewString(it.Atoms.GetString(atom.Atom(ins.A)))))
	case bytecode.OpPop:
		f.pop()
	case bytecode.OpDup:
		f.push(f.top())
	case bytecode.OpSwap:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-2] = f.Stack[n-2], f.Stack[n-1]

	case bytecode.OpGetLocal:
		v := f.Locals[ins.A]
		if v.Tag() == heap.TagHeapCell {
			v = v.AsHeapCell().V
		}
		f.push(v)
	case bytecode.OpSetLocal:
		v := f.pop()
		if cur := f.Locals[ins.A]; cur.Tag() == heap.TagHeapCell {
			it.H.SetCell(cur.AsHeapCell(), v)
		} else {
			f.Locals[ins.A] = v
		}
	case bytecode.OpInitLocalTDZ:
		f.Locals[ins.A] = heap.Uninitialized()
	case bytecode.OpGetArg:
		f.push(f.arg(ins.A))
	case bytecode.OpSetArg:
		v := f.pop()
		if int(ins.A) < len(f.Args) {
			f.Args[ins.A] = v
		}
	case bytecode.OpGetCell:
		cell := f.FuncExt.Captures.Items[ins.A].AsHeapCell()
		f.push(cell.V)
	case bytecode.OpSetCell:
		v := f.pop()
		cell := f.FuncExt.Captures.Items[ins.A].AsHeapCell()
		it.H.SetCell(cell, v)
	case bytecode.OpGetGlobal:
		_, d, ok := it.Global.Lookup(it.H, atom.Atom(ins.A))
		if !ok {
			return heap.Value{}, flowNext, it.throwReference("variable is not defined")
		}
		f.push(d.Value)
	case bytecode.OpSetGlobal:
		v := f.pop()
		it.Global.Set(it.H, atom.Atom(ins.A), v)

	case bytecode.OpAdd:
		b, a := f.pop(), f.pop()
		f.push(arithAdd(it.H, a, b))
	case bytecode.OpSub:
		b, a := f.pop(), f.pop()
		f.push(heap.F64(a.ToFloat64() - b.ToFloat64()))
	case bytecode.OpMul:
		b, a := f.pop(), f.pop()
		f.push(heap.F64(a.ToFloat64() * b.ToFloat64()))
	case bytecode.OpDiv:
		b, a := f.pop(), f.pop()
		f.push(heap.F64(a.ToFloat64() / b.ToFloat64()))
	case bytecode.OpMod:
		b, a := f.pop(), f.pop()
		f.push(heap.F64(math.Mod(a.ToFloat64(), b.ToFloat64())))
	case bytecode.OpPow:
		b, a := f.pop(), f.pop()
		f.push(heap.F64(math.Pow(a.ToFloat64(), b.ToFloat64())))
	case bytecode.OpNeg:
		a := f.pop()
		f.push(heap.F64(-a.ToFloat64()))
	case bytecode.OpInc:
		a := f.pop()
		f.push(heap.F64(a.ToFloat64() + 1))
	case bytecode.OpDec:
		a := f.pop()
		f.push(heap.F64(a.ToFloat64() - 1))

	case bytecode.OpBitAnd:
		b, a := f.pop(), f.pop()
		f.push(heap.I32(toI32(a) & toI32(b)))
	case bytecode.OpBitOr:
		b, a := f.pop(), f.pop()
		f.push(heap.I32(toI32(a) | toI32(b)))
	case bytecode.OpBitXor:
		b, a := f.pop(), f.pop()
		f.push(heap.I32(toI32(a) ^ toI32(b)))
	case bytecode.OpBitNot:
		a := f.pop()
		f.push(heap.I32(^toI32(a)))
	case bytecode.OpShl:
		b, a := f.pop(), f.pop()
		f.push(heap.I32(toI32(a) << (uint32(toI32(b)) & 31)))
	case bytecode.OpShr:
		b, a := f.pop(), f.pop()
		f.push(heap.I32(toI32(a) >> (uint32(toI32(b)) & 31)))
	case bytecode.OpUShr:
		b, a := f.pop(), f.pop()
		f.push(heap.U32(uint32(toI32(a)) >> (uint32(toI32(b)) & 31)))

	case bytecode.OpCmpEq:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(looseEquals(a, b)))
	case bytecode.OpCmpNe:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(!looseEquals(a, b)))
	case bytecode.OpCmpStrictEq:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(heap.StrictEquals(a, b)))
	case bytecode.OpCmpStrictNe:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(!heap.StrictEquals(a, b)))
	case bytecode.OpCmpLt:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(compare(a, b) < 0))
	case bytecode.OpCmpLe:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(compare(a, b) <= 0))
	case bytecode.OpCmpGt:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(compare(a, b) > 0))
	case bytecode.OpCmpGe:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(compare(a, b) >= 0))

	case bytecode.OpNot:
		a := f.pop()
		f.push(heap.Bool(!toBool(a)))
	case bytecode.OpToBool:
		a := f.pop()
		f.push(heap.Bool(toBool(a)))
	case bytecode.OpToNumber:
		a := f.pop()
		f.push(heap.F64(a.ToFloat64()))
	case bytecode.OpTypeOf:
		a := f.pop()
		f.push(heap.StringVal(it.H.NewString(a.TypeOf())))
	case bytecode.OpInstanceOf:
		b, a := f.pop(), f.pop()
		f.push(heap.Bool(it.instanceOf(a, b)))
	case bytecode.OpIn:
		b, a := f.pop(), f.pop()
		key := toPropertyKey(it, a)
		f.push(heap.Bool(b.AsObject().Has(it.H, key)))

	case bytecode.OpJump:
		f.PC = uint32(ins.A)
		return heap.Value{}, flowNext, nil
	case bytecode.OpJumpIfFalse:
		v := f.pop()
		if !toBool(v) {
			f.PC = uint32(ins.A)
			return heap.Value{}, flowNext, nil
		}
	case bytecode.OpJumpIfTrue:
		v := f.pop()
		if toBool(v) {
			f.PC = uint32(ins.A)
			return heap.Value{}, flowNext, nil
		}
	case bytecode.OpThrow:
		return heap.Value{}, flowNext, thrown{f.pop()}
	case bytecode.OpEnterCatch, bytecode.OpLeaveCatch:
		// No-ops at normal-flow time; these markers exist only for
		// tooling (--print-bytecode) since the catch table already
		// drives unwinding.

	case bytecode.OpNewObject:
		f.push(heap.ObjectVal(it.H.NewObject(heap.ClassPlainObject, it.objectProto())))
	case bytecode.OpNewArray:
		f.push(heap.ObjectVal(it.H.NewArray(it.arrayProto())))
	case bytecode.OpNewFunction:
		f.push(heap.ObjectVal(it.newFunctionObject(f, int(ins.A))))
	case bytecode.OpNewRegExp:
		reObj, err := it.newRegExpObject(it.Atoms.GetString(atom.Atom(ins.A)), it.Atoms.GetString(atom.Atom(ins.B)))
		if err != nil {
			return heap.Value{}, flowNext, err
		}
		f.push(heap.ObjectVal(reObj))

	case bytecode.OpGetPropSymbolIterator:
		obj := f.pop()
		f.push(it.getProp(obj, it.Statics.SymbolIterator))

	case bytecode.OpForInInit:
		obj := f.pop()
		var keys []atom.Atom
		if obj.IsObject() {
			keys = forInKeys(obj.AsObject(), it.Atoms)
		}
		iter := it.H.NewObject(heap.ClassForInIterator, heap.Null())
		iter.Ext = heap.NewForInIteratorExt(obj, keys)
		f.push(heap.ObjectVal(iter))
	case bytecode.OpForInNext:
		ext := f.top().AsObject().Ext.(*heap.IteratorExt)
		if ext.Index >= len(ext.Keys) {
			f.pop()
			f.PC = uint32(ins.A)
			return heap.Value{}, flowNext, nil
		}
		key := ext.Keys[ext.Index]
		ext.Index++
		f.push(heap.StringVal(it.H.NewString(it.Atoms.GetString(key))))

	case bytecode.OpForOfInit:
		obj := f.pop()
		iterExt, err := it.newValueIterator(obj)
		if err != nil {
			return heap.Value{}, flowNext, err
		}
		iter := it.H.NewObject(heap.ClassArrayIterator, heap.Null())
		iter.Ext = iterExt
		f.push(heap.ObjectVal(iter))
	case bytecode.OpForOfNext:
		ext := f.top().AsObject().Ext.(*heap.IteratorExt)
		v, ok := it.iteratorAdvance(ext)
		if !ok {
			f.pop()
			f.PC = uint32(ins.A)
			return heap.Value{}, flowNext, nil
		}
		f.push(v)
	case bytecode.OpGetPropAtom:
		obj := f.pop()
		f.push(it.getProp(obj, atom.Atom(ins.A)))
	case bytecode.OpSetPropAtom:
		v, obj := f.pop(), f.pop()
		it.setProp(obj, atom.Atom(ins.A), v)
		f.push(v)
	case bytecode.OpGetPropDyn:
		key, obj := f.pop(), f.pop()
		f.push(it.getProp(obj, toPropertyKey(it, key)))
	case bytecode.OpSetPropDyn:
		v, key, obj := f.pop(), f.pop(), f.pop()
		it.setProp(obj, toPropertyKey(it, key), v)
		f.push(v)
	case bytecode.OpDeleteProp:
		key, obj := f.pop(), f.pop()
		f.push(heap.Bool(obj.AsObject().Delete(toPropertyKey(it, key))))

	case bytecode.OpCall:
		argc := int(ins.B)
		args := append([]heap.Value(nil), f.Stack[len(f.Stack)-argc:]...)
		f.Stack = f.Stack[:len(f.Stack)-argc]
		callee := f.pop()
		this := f.pop()
		result, err := it.Call(callee, this, args)
		if err != nil {
			return heap.Value{}, flowNext, err
		}
		f.push(result)
	case bytecode.OpCallMethod:
		argc := int(ins.B)
		args := append([]heap.Value(nil), f.Stack[len(f.Stack)-argc:]...)
		f.Stack = f.Stack[:len(f.Stack)-argc]
		method := f.pop()
		this := f.pop()
		result, err := it.Call(method, this, args)
		if err != nil {
			return heap.Value{}, flowNext, err
		}
		f.push(result)
	case bytecode.OpNewCall:
		argc := int(ins.B)
		args := append([]heap.Value(nil), f.Stack[len(f.Stack)-argc:]...)
		f.Stack = f.Stack[:len(f.Stack)-argc]
		ctor := f.pop()
		result, err := it.construct(ctor, args)
		if err != nil {
			return heap.Value{}, flowNext, err
		}
		f.push(result)
	case bytecode.OpReturn:
		v := heap.Undefined()
		if len(f.Stack) > 0 {
			v = f.pop()
		}
		return v, flowReturn, nil
	case bytecode.OpSuspend:
		v := f.pop()
		return v, flowSuspend, nil

	default:
		return heap.Value{}, flowNext, fmt.Errorf("interp: unimplemented opcode %v", ins.Op)
	}
	return heap.Value{}, flowNext, nil
}

// construct implements the `new` operator (spec.md §4.2's new_call):
// allocate a fresh object whose prototype is ctor.prototype, invoke
// ctor with that object as `this`, and use ctor's return value instead
// if it returned an object (the ordinary ECMAScript [[Construct]]
// rule).
func (it *Interp) construct(ctor heap.Value, args []heap.Value) (heap.Value, error) {
	if !ctor.IsCallable() {
		return heap.Value{}, it.throwType("value is not a constructor")
	}
	if ext, ok := ctor.AsObject().Ext.(*heap.FunctionExt); ok && ext.Meta != nil && ext.Meta.Record != nil {
		if ext.Meta.Record.IsGenerator || ext.Meta.Record.IsAsync {
			return heap.Value{}, it.throwType("generator and async functions are not constructors")
		}
	}
	proto := it.objectProto()
	if _, d, ok := ctor.AsObject().Lookup(it.H, it.Statics.Prototype); ok && d.Value.IsObject() {
		proto = d.Value
	}
	self := it.H.NewObject(heap.ClassPlainObject, proto)
	result, err := it.Call(ctor, heap.ObjectVal(self), args)
	if err != nil {
		return heap.Value{}, err
	}
	if result.IsObject() {
		return result, nil
	}
	return heap.ObjectVal(self), nil
}

func (it *Interp) throwReference(msg string) error {
	v := jserror.New(it.H, it.Atoms, &it.Statics, it.Protos, jserror.ReferenceError, msg, it.stackFrames())
	return thrown{v}
}

func (it *Interp) objectProto() heap.Value   { return it.lookupGlobalProto("Object") }
func (it *Interp) arrayProto() heap.Value    { return it.lookupGlobalProto("Array") }
func (it *Interp) functionProto() heap.Value { return it.lookupGlobalProto("Function") }

// newFunctionObject builds a fresh Function instance from the pool-th
// FunctionMeta, snapshotting its captures out of the enclosing frame
// (spec.md §4.2's make_func / §3.5).
func (it *Interp) newFunctionObject(f *Frame, pool int) *heap.Object {
	meta := it.MetaPool[pool]
	var captures *heap.HeapArray
	if meta.Record != nil && len(meta.Record.Captures) > 0 {
		captures = it.H.NewHeapArray(len(meta.Record.Captures))
		for i, cd := range meta.Record.Captures {
			cell := captureCell(f, cd)
			captures.Items[i] = heap.HeapCellVal(cell)
		}
	}
	ext := heap.NewFunctionExt(meta, captures)
	obj := it.H.NewObject(heap.ClassFunction, it.functionProto())
	obj.Ext = ext
	return obj
}

// newValueIterator builds the iterator extension for-of drives over
// obj: the array dense-vector fast path for ClassArray, and a
// code-point walk for strings. Any other value is not iterable in this
// implementation (the general Symbol.iterator protocol for
// user-defined iterables is not implemented).
func (it *Interp) newValueIterator(obj heap.Value) (*heap.IteratorExt, error) {
	switch {
	case obj.IsObject() && obj.AsObject().Class == heap.ClassArray:
		return heap.NewArrayIteratorExt(heap.IterArrayValues, obj), nil
	case obj.IsString():
		return heap.NewArrayIteratorExt(heap.IterStringCodePoints, obj), nil
	default:
		return nil, it.throwType("value is not iterable")
	}
}

// iteratorAdvance returns the next value for ext, or (_, false) once
// exhausted.
func (it *Interp) iteratorAdvance(ext *heap.IteratorExt) (heap.Value, bool) {
	switch ext.Kind {
	case heap.IterArrayValues, heap.IterArrayKeys, heap.IterArrayEntries:
		arrExt := ext.Target.AsObject().Ext.(*heap.ArrayExt)
		if ext.Index >= len(arrExt.Dense) {
			return heap.Value{}, false
		}
		v := arrExt.Dense[ext.Index]
		if v.IsUninitialized() {
			v = heap.Undefined()
		}
		idx := ext.Index
		ext.Index++
		switch ext.Kind {
		case heap.IterArrayKeys:
			return heap.F64(float64(idx)), true
		case heap.IterArrayEntries:
			entry := it.H.NewArray(it.arrayProto())
			entryExt := entry.Ext.(*heap.ArrayExt)
			entryExt.Push(it.H, entry, heap.F64(float64(idx)))
			entryExt.Push(it.H, entry, v)
			return heap.ObjectVal(entry), true
		default:
			return v, true
		}
	case heap.IterStringCodePoints:
		s := ext.Target.AsString()
		if ext.Index >= s.Len() {
			return heap.Value{}, false
		}
		// A surrogate pair is one code point and yields one string.
		units := s.Units()
		end := ext.Index + 1
		if u := units[ext.Index]; u >= 0xD800 && u <= 0xDBFF && end < len(units) && units[end] >= 0xDC00 && units[end] <= 0xDFFF {
			end++
		}
		c := s.Substr(ext.Index, end)
		ext.Index = end
		return heap.StringVal(it.H.NewStringFromPrim(c)), true
	default:
		return heap.Value{}, false
	}
}

func (it *Interp) lookupGlobalProto(ctorName string) heap.Value {
	_, d, ok := it.Global.Lookup(it.H, it.Atoms.Atomize(ctorName))
	if !ok || !d.Value.IsObject() {
		return heap.Null()
	}
	ctor := d.Value.AsObject()
	_, protoDesc, ok := ctor.Lookup(it.H, it.Statics.Prototype)
	if !ok {
		return heap.Null()
	}
	return protoDesc.Value
}

func (it *Interp) getProp(recv heap.Value, key atom.Atom) heap.Value {
	if recv.IsString() {
		if key == it.Statics.Length {
			return heap.F64(float64(recv.AsString().Len()))
		}
	}
	if !recv.IsObject() {
		return heap.Undefined()
	}
	o := recv.AsObject()
	if o.Class == heap.ClassArray {
		if idx, ok := parseIndex(key); ok {
			if ext, ok := o.Ext.(*heap.ArrayExt); ok {
				if v, ok := ext.GetElement(idx); ok {
					return v
				}
			}
		}
	}
	_, d, ok := recv.AsObject().Lookup(it.H, key)
	if !ok {
		return heap.Undefined()
	}
	if d.Flags.IsAccessor {
		if d.Getter.IsUndefined() {
			return heap.Undefined()
		}
		result, _ := it.Call(d.Getter, recv, nil)
		return result
	}
	return d.Value
}

func (it *Interp) setProp(recv heap.Value, key atom.Atom, v heap.Value) {
	if !recv.IsObject() {
		return
	}
	o := recv.AsObject()
	if o.Class == heap.ClassArray {
		ext := o.Ext.(*heap.ArrayExt)
		if idx, ok := parseIndex(key); ok {
			if ext.SetElement(it.H, o, idx, v) {
				return
			}
		}
	}
	setter, needsCall := o.Set(it.H, key, v)
	if needsCall {
		it.Call(setter, recv, []heap.Value{v})
	}
}

// forInKeys collects the enumerable, string-keyed property names of obj
// and its prototype chain (spec.md §4.2), in chain order, skipping any
// key already seen on a more-derived object so an inherited property
// shadowed by an own one is yielded only once.
func forInKeys(obj *heap.Object, atoms *atom.Table) []atom.Atom {
	var keys []atom.Atom
	seen := make(map[atom.Atom]bool)
	for cur := obj; cur != nil; {
		for _, k := range cur.OwnEnumerableStringKeys(atoms) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		if cur.Proto.IsNull() || cur.Proto.IsUndefined() {
			break
		}
		cur = cur.Proto.AsObject()
	}
	return keys
}

func parseIndex(key atom.Atom) (uint32, bool) {
	if !key.IsIndex() {
		return 0, false
	}
	return key.Index(), true
}

func toPropertyKey(it *Interp, v heap.Value) atom.Atom {
	switch {
	case v.IsSymbol():
		return atom.Atom(v.AsAtom())
	case v.IsString():
		return it.Atoms.Atomize(v.AsString().Go())
	case v.IsNumber():
		return it.Atoms.Atomize(fmt.Sprintf("%v", v.ToFloat64()))
	default:
		return it.Atoms.Atomize(toDisplayString(v))
	}
}

func toDisplayString(v heap.Value) string {
	switch v.TypeOf() {
	case "undefined":
		return "undefined"
	case "boolean":
		return fmt.Sprintf("%v", v.AsBool())
	default:
		return "[object Object]"
	}
}

func arithAdd(h *heap.Heap, a, b heap.Value) heap.Value {
	if a.IsString() || b.IsString() {
		return heap.StringVal(h.NewStringFromPrim(toStringPrim(h, a).Concat(toStringPrim(h, b).PrimString)))
	}
	return heap.F64(a.ToFloat64() + b.ToFloat64())
}

func toStringPrim(h *heap.Heap, v heap.Value) *heap.GCString {
	if v.IsString() {
		return v.AsString()
	}
	return h.NewString(toDisplayString(v))
}

func toI32(v heap.Value) int32 {
	if v.IsNumber() {
		f := v.ToFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int32(int64(f))
	}
	return 0
}

func toBool(v heap.Value) bool {
	switch v.TypeOf() {
	case "undefined":
		return false
	case "boolean":
		return v.AsBool()
	case "number":
		f := v.ToFloat64()
		return f != 0 && !math.IsNaN(f)
	case "string":
		return v.AsString().Len() > 0
	default:
		return !v.IsNull()
	}
}

func looseEquals(a, b heap.Value) bool {
	if a.Tag() == b.Tag() {
		return heap.StrictEquals(a, b)
	}
	if a.IsNullOrUndefined() && b.IsNullOrUndefined() {
		return true
	}
	if a.IsNumber() && b.IsString() {
		return numStrEq(a, b)
	}
	if a.IsString() && b.IsNumber() {
		return numStrEq(b, a)
	}
	return false
}

func numStrEq(num, str heap.Value) bool {
	var f float64
	_, err := fmt.Sscanf(str.AsString().Go(), "%g", &f)
	if err != nil {
		return false
	}
	return num.ToFloat64() == f
}

func compare(a, b heap.Value) int {
	if a.IsString() && b.IsString() {
		return a.AsString().Compare(b.AsString().PrimString)
	}
	af, bf := a.ToFloat64(), b.ToFloat64()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// instanceOf implements the `instanceof` operator (spec.md §4.2): walk
// v's prototype chain looking for ctor's own `.prototype` object.
func (it *Interp) instanceOf(v, ctor heap.Value) bool {
	if !v.IsObject() || !ctor.IsCallable() {
		return false
	}
	_, protoDesc, ok := ctor.AsObject().Lookup(it.H, it.Statics.Prototype)
	if !ok || !protoDesc.Value.IsObject() {
		return false
	}
	target := protoDesc.Value.AsObject()
	cur := v.AsObject().Proto
	for cur.IsObject() {
		if cur.AsObject() == target {
			return true
		}
		cur = cur.AsObject().Proto
	}
	return false
}
