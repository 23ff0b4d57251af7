package jserror_test

import (
	"strings"
	"testing"

	"ecmalite/internal/atom"
	"ecmalite/internal/heap"
	"ecmalite/internal/jserror"

	"github.com/stretchr/testify/require"
)

func TestNewErrorSetsNameMessageStack(t *testing.T) {
	tbl := atom.New()
	statics := atom.NewStaticAtoms(tbl)
	h := heap.New(tbl, statics)
	var protos jserror.Prototypes

	v := jserror.New(h, tbl, &statics, &protos, jserror.TypeError, "not a function", []jserror.StackFrame{
		{FunctionName: "main", PC: 42},
	})

	require.True(t, v.IsObject())
	o := v.AsObject()
	_, nameOK := o.OwnProperty(statics.Name)
	require.True(t, nameOK)

	msgDesc, msgOK := o.OwnProperty(tbl.Atomize("message"))
	require.True(t, msgOK)
	require.Equal(t, "not a function", msgDesc.Value.AsString().Go())

	stackDesc, stackOK := o.OwnProperty(statics.Stack)
	require.True(t, stackOK)
	require.True(t, strings.Contains(stackDesc.Value.AsString().Go(), "TypeError: not a function"))
	require.True(t, strings.Contains(stackDesc.Value.AsString().Go(), "main"))
}

func TestIsError(t *testing.T) {
	tbl := atom.New()
	statics := atom.NewStaticAtoms(tbl)
	h := heap.New(tbl, statics)
	plain := heap.ObjectVal(h.NewObject(heap.ClassPlainObject, heap.Null()))
	require.False(t, jserror.IsError(plain))

	var protos jserror.Prototypes
	errVal := jserror.New(h, tbl, &statics, &protos, jserror.RangeError, "oops", nil)
	require.True(t, jserror.IsError(errVal))
}
