package bytecode

import "ecmalite/internal/atom"

// Builder assembles a FunctionMetaRecord instruction-by-instruction.
// Parsing and code generation from ECMAScript source text are out of
// scope (spec.md §1's Non-goals); Builder exists so cmd/ecmalite and
// tests can hand-assemble a bytecode module the same way the teacher's
// vmgen package hand-assembles PEG programs, without a front end.
type Builder struct {
	rec *FunctionMetaRecord
}

// NewBuilder starts a function body with the given argument/local
// counts; Name defaults to the anonymous atom and can be set directly
// on the returned Builder's Record().
func NewBuilder(numArgs, numLocals int) *Builder {
	return &Builder{rec: &FunctionMetaRecord{NumArgs: numArgs, NumLocals: numLocals}}
}

// Emit appends one instruction and returns its index (a jump target).
func (b *Builder) Emit(op Op, a, bOperand int32) int {
	b.rec.Code = append(b.rec.Code, Instruction{Op: op, A: a, B: bOperand})
	return len(b.rec.Code) - 1
}

// Op0 emits an instruction with no operands.
func (b *Builder) Op0(op Op) int { return b.Emit(op, 0, 0) }

// Op1 emits an instruction with one operand in A.
func (b *Builder) Op1(op Op, a int32) int { return b.Emit(op, a, 0) }

// PatchA rewrites instruction i's A operand, for back-patching a
// forward jump once its target address is known.
func (b *Builder) PatchA(i int, a int32) { b.rec.Code[i].A = a }

// Here returns the address the next Emit call will use.
func (b *Builder) Here() int32 { return int32(len(b.rec.Code)) }

// SetMaxStack records the function's peak operand-stack depth;
// NewBuilder leaves MaxStack at 0 until this is called.
func (b *Builder) SetMaxStack(n int) { b.rec.MaxStack = n }

// AddFloatConst interns f in the function's float constant pool and
// returns its index, for an OpPushF64 operand.
func (b *Builder) AddFloatConst(f float64) int32 {
	b.rec.Floats = append(b.rec.Floats, f)
	return int32(len(b.rec.Floats) - 1)
}

// AddCapture appends one capture descriptor and returns its index.
func (b *Builder) AddCapture(d CaptureDesc) int {
	b.rec.Captures = append(b.rec.Captures, d)
	return len(b.rec.Captures) - 1
}

// AddCatch appends one catch-table entry.
func (b *Builder) AddCatch(c CatchEntry) { b.rec.Catches = append(b.rec.Catches, c) }

// SetName sets the function's display name atom.
func (b *Builder) SetName(a atom.Atom) { b.rec.Name = a }

// SetFlags marks the function generator/async/arrow, per spec.md §3.5.
func (b *Builder) SetFlags(generator, async, arrow bool) {
	b.rec.IsGenerator = generator
	b.rec.IsAsync = async
	b.rec.IsArrow = arrow
}

// Record returns the built record. When MaxStack (set via SetMaxStack)
// is below the function's true peak stack depth, NewFrame
// under-allocates the operand stack's backing array, which then grows
// via append: MaxStack is a performance hint, not a correctness
// requirement.
func (b *Builder) Record() *FunctionMetaRecord { return b.rec }
