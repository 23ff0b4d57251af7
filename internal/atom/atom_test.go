package atom_test

import (
	"strconv"
	"testing"

	"ecmalite/internal/atom"

	"github.com/stretchr/testify/require"
)

func TestAtomizeInterning(t *testing.T) {
	tbl := atom.New()
	a := tbl.Atomize("hello")
	b := tbl.Atomize("hello")
	require.Equal(t, a, b)
	require.Equal(t, "hello", tbl.GetString(a))
}

func TestAtomizeCanonicalInteger(t *testing.T) {
	tbl := atom.New()
	for _, n := range []int64{0, 1, 7, 42, 1000, atom.MaxIndex} {
		s := strconv.FormatInt(n, 10)
		a := tbl.Atomize(s)
		require.True(t, a.IsIndex(), "expected %q to atomize as an index", s)
		require.Equal(t, uint32(n), a.Index())
		require.Equal(t, s, tbl.GetString(a))
	}
}

func TestAtomizeRejectsNonCanonicalIntegerLookingStrings(t *testing.T) {
	tbl := atom.New()
	for _, s := range []string{"01", "-1", "1.0", "+1", ""} {
		a := tbl.Atomize(s)
		require.False(t, a.IsIndex(), "expected %q to NOT atomize as an index", s)
	}
}

func TestAtomizeNoUintForcesPoolEntry(t *testing.T) {
	tbl := atom.New()
	a := tbl.AtomizeNoUint("42")
	require.False(t, a.IsIndex())
	require.Equal(t, "42", tbl.GetString(a))
}

func TestSymbolsAreAlwaysUnique(t *testing.T) {
	tbl := atom.New()
	a := tbl.AtomizeSymbolDesc("x")
	b := tbl.AtomizeSymbolDesc("x")
	require.NotEqual(t, a, b)
	require.True(t, tbl.IsSymbol(a))
	require.Equal(t, "x", tbl.Description(a))
}

func TestStaticAtomsAreStable(t *testing.T) {
	tbl := atom.New()
	sa := atom.NewStaticAtoms(tbl)
	require.Equal(t, "length", tbl.GetString(sa.Length))
	require.Equal(t, "__proto__", tbl.GetString(sa.Proto))
	require.True(t, tbl.IsSymbol(sa.SymbolIterator))
}
