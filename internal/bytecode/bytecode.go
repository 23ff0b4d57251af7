// Package bytecode defines the wire format the interpreter executes:
// the opcode set of spec.md §4.2 grouped into the same families the
// spec enumerates, instruction encoding, and the per-function metadata
// record (capture list, catch table, constant pool) a function's
// compiled body carries. This package holds no Value and no execution
// state — it is pure data, generalized from the teacher's PEG opcode
// set (vm_instructions.go) to the ECMAScript-subset opcode family.
package bytecode

import "ecmalite/internal/atom"

// Op is a single bytecode opcode.
type Op uint8

const (
	// Stack and constants
	OpPushUndefined Op = iota
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushI32
	OpPushF64
	OpPushAtomConst
	OpPushStringConst
	OpPop
	OpDup
	OpSwap

	// Variable access
	OpGetLocal
	OpSetLocal
	OpGetArg
	OpSetArg
	OpGetCell
	OpSetCell
	OpGetGlobal
	OpSetGlobal
	OpInitLocalTDZ // marks a let/const slot Uninitialized until its declaration executes

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpNeg
	OpInc
	OpDec

	// Bitwise
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
	OpUShr

	// Comparisons
	OpCmpEq
	OpCmpNe
	OpCmpStrictEq
	OpCmpStrictNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe

	// Logical / conversions
	OpNot
	OpToBool
	OpToNumber
	OpTypeOf
	OpInstanceOf
	OpIn

	// Control
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpThrow
	OpEnterCatch
	OpLeaveCatch

	// Objects
	OpNewObject
	OpNewArray
	OpNewFunction // operand: FunctionMeta pool index
	OpNewRegExp

	// Properties
	OpGetPropAtom
	OpSetPropAtom
	OpGetPropDyn
	OpSetPropDyn
	OpDeleteProp
	OpGetPropSymbolIterator

	// Calls
	OpCall
	OpCallMethod
	OpNewCall // `new` operator
	OpReturn
	OpSuspend // yield / await desugaring target

	// Iteration
	OpForInInit
	OpForInNext
	OpForOfInit
	OpForOfNext

	// Misc
	OpNop
	OpHalt
)

// Instruction is one bytecode instruction. FunctionMetaRecord.Code holds
// a slice of them directly, as built by the assembler in asm.go;
// serialize.go gob-encodes whole modules for the on-disk format.
type Instruction struct {
	Op  Op
	A   int32 // first operand: local/arg/cell index, jump target, pool index
	B   int32 // second operand, opcode-dependent (e.g. call argc)
}

// CatchEntry describes one protected region of a function's bytecode,
// mirroring spec.md §4.2's catch-table-based unwinding design.
type CatchEntry struct {
	StartPC   uint32
	EndPC     uint32
	HandlerPC uint32
	// StackDepth is the operand-stack depth to restore to before
	// jumping to HandlerPC, since an exception can be thrown with an
	// arbitrary number of operands pushed.
	StackDepth uint32
}

// CaptureDesc says where a function's Nth capture slot is sourced from
// in its enclosing frame, built by the compiler and used by OpNewFunction
// to snapshot the closure's HeapArray of cells (spec.md §4.2's
// make_func note).
type CaptureDesc struct {
	// FromParentCell is true if the parent frame already boxed this
	// variable in a HeapCell (it was itself captured further up);
	// false if this function is the first to capture a parent local,
	// in which case the parent promotes that local to a HeapCell on
	// the spot.
	FromParentCell bool
	ParentIndex    int32
}

// FunctionMetaRecord is the immutable, shared-across-instances
// compiled-function metadata of spec.md §3.5: the bytecode body, stack
// budget, capture list and catch table. It carries no heap.Value and no
// native callback, keeping bytecode free of any heap import; heap's
// FunctionMeta wraps one of these alongside an optional native
// implementation.
type FunctionMetaRecord struct {
	Name        atom.Atom
	NumArgs     int
	NumLocals   int
	MaxStack    int
	Code        []Instruction
	Captures    []CaptureDesc
	Catches     []CatchEntry
	// Floats is the constant pool OpPushF64's operand indexes into; a
	// float64 bit pattern does not fit Instruction's int32 operand.
	Floats      []float64
	IsGenerator bool
	IsAsync     bool
	IsArrow     bool // arrow functions capture `this` lexically, never rebind it
}

// Module is a complete compiled program: every function's metadata
// record, addressed by OpNewFunction's pool index, plus the index of
// the top-level script body internal/runtime calls first.
type Module struct {
	Functions []*FunctionMetaRecord
	Entry     int
}
