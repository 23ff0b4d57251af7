package interp_test

import (
	"testing"

	"ecmalite/internal/bytecode"
	"ecmalite/internal/heap"
	"ecmalite/internal/interp"
	"ecmalite/internal/runtime"

	"github.com/stretchr/testify/require"
)

// buildGeneratorModule wraps rec (with IsGenerator already set) as the
// module entry; calling the returned entry value yields a generator
// object rather than running rec's body (interp.Call's IsGenerator
// interception).
func buildGeneratorModule(rec *bytecode.FunctionMetaRecord) *bytecode.Module {
	rec.IsGenerator = true
	return &bytecode.Module{Functions: []*bytecode.FunctionMetaRecord{rec}, Entry: 0}
}

func TestGeneratorYieldsThenCompletes(t *testing.T) {
	// function* g() { yield 1; yield 2; return 3; }
	b := bytecode.NewBuilder(0, 0)
	b.Op1(bytecode.OpPushI32, 1)
	b.Op0(bytecode.OpSuspend)
	b.Op0(bytecode.OpPop)
	b.Op1(bytecode.OpPushI32, 2)
	b.Op0(bytecode.OpSuspend)
	b.Op0(bytecode.OpPop)
	b.Op1(bytecode.OpPushI32, 3)
	b.Op0(bytecode.OpReturn)
	b.SetMaxStack(2)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildGeneratorModule(b.Record()))
	require.NoError(t, err)

	genVal, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	require.True(t, genVal.IsObject())
	require.Equal(t, heap.ClassGenerator, genVal.AsObject().Class)

	v1, done1, err := engine.Interp.GeneratorNext(genVal.AsObject(), heap.Undefined())
	require.NoError(t, err)
	require.False(t, done1)
	require.Equal(t, int32(1), v1.AsI32())

	v2, done2, err := engine.Interp.GeneratorNext(genVal.AsObject(), heap.Undefined())
	require.NoError(t, err)
	require.False(t, done2)
	require.Equal(t, int32(2), v2.AsI32())

	v3, done3, err := engine.Interp.GeneratorNext(genVal.AsObject(), heap.Undefined())
	require.NoError(t, err)
	require.True(t, done3)
	require.Equal(t, int32(3), v3.AsI32())

	v4, done4, err := engine.Interp.GeneratorNext(genVal.AsObject(), heap.Undefined())
	require.NoError(t, err)
	require.True(t, done4)
	require.True(t, v4.IsUndefined())
}

func TestGeneratorNextSendsValueBackIntoYieldExpression(t *testing.T) {
	// function* g() { const x = yield 1; return x + 100; }
	b := bytecode.NewBuilder(0, 1)
	b.Op1(bytecode.OpPushI32, 1)
	b.Op0(bytecode.OpSuspend)
	b.Op1(bytecode.OpSetLocal, 0)
	b.Op1(bytecode.OpGetLocal, 0)
	b.Op1(bytecode.OpPushI32, 100)
	b.Op0(bytecode.OpAdd)
	b.Op0(bytecode.OpReturn)
	b.SetMaxStack(2)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildGeneratorModule(b.Record()))
	require.NoError(t, err)

	genVal, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	g := genVal.AsObject()

	v1, done1, err := engine.Interp.GeneratorNext(g, heap.Undefined())
	require.NoError(t, err)
	require.False(t, done1)
	require.Equal(t, int32(1), v1.AsI32())

	v2, done2, err := engine.Interp.GeneratorNext(g, heap.F64(5))
	require.NoError(t, err)
	require.True(t, done2)
	require.Equal(t, float64(105), v2.ToFloat64())
}

func TestGeneratorThrowIsCaughtByBodyTryCatch(t *testing.T) {
	// function* g() { try { yield 1; } catch (e) { return e; } }
	b := bytecode.NewBuilder(0, 0)
	b.Op1(bytecode.OpPushI32, 1)
	suspendPC := b.Op0(bytecode.OpSuspend)
	b.Op0(bytecode.OpPop)
	b.Op0(bytecode.OpReturn)
	handlerPC := b.Op0(bytecode.OpReturn) // handler: return the thrown value straight off the stack
	b.AddCatch(bytecode.CatchEntry{
		StartPC:    uint32(suspendPC),
		EndPC:      uint32(suspendPC + 2),
		HandlerPC:  uint32(handlerPC),
		StackDepth: 0,
	})
	b.SetMaxStack(2)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildGeneratorModule(b.Record()))
	require.NoError(t, err)

	genVal, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	g := genVal.AsObject()

	_, done1, err := engine.Interp.GeneratorNext(g, heap.Undefined())
	require.NoError(t, err)
	require.False(t, done1)

	thrown := heap.StringVal(engine.Heap.NewString("boom"))
	result, done2, err := engine.Interp.GeneratorThrow(g, thrown)
	require.NoError(t, err)
	require.True(t, done2)
	require.Equal(t, "boom", result.AsString().Go())
}

func TestGeneratorThrowOnUnstartedGeneratorPropagates(t *testing.T) {
	b := bytecode.NewBuilder(0, 0)
	b.Op0(bytecode.OpReturn)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildGeneratorModule(b.Record()))
	require.NoError(t, err)

	genVal, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)

	_, _, err = engine.Interp.GeneratorThrow(genVal.AsObject(), heap.StringVal(engine.Heap.NewString("nope")))
	require.Error(t, err)
	tv, ok := interp.AsThrown(err)
	require.True(t, ok)
	require.Equal(t, "nope", tv.AsString().Go())
}

func TestGeneratorReturnForcesImmediateCompletion(t *testing.T) {
	b := bytecode.NewBuilder(0, 0)
	b.Op1(bytecode.OpPushI32, 1)
	b.Op0(bytecode.OpSuspend)
	b.Op0(bytecode.OpReturn)
	b.SetMaxStack(1)

	engine := runtime.New(runtime.Options{})
	entry, err := engine.Load(buildGeneratorModule(b.Record()))
	require.NoError(t, err)

	genVal, err := engine.Interp.Call(entry, heap.Undefined(), nil)
	require.NoError(t, err)
	g := genVal.AsObject()

	_, done1, err := engine.Interp.GeneratorNext(g, heap.Undefined())
	require.NoError(t, err)
	require.False(t, done1)

	v, done2, err := engine.Interp.GeneratorReturn(g, heap.F64(42))
	require.NoError(t, err)
	require.True(t, done2)
	require.Equal(t, float64(42), v.ToFloat64())

	v2, done3, err := engine.Interp.GeneratorNext(g, heap.Undefined())
	require.NoError(t, err)
	require.True(t, done3)
	require.True(t, v2.IsUndefined())
}
