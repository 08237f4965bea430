package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddDerivedLength(t *testing.T) {
	in := []Record{
		{Text: "abc", Class: "F"},
		{Text: "", Class: "F"},
		{Text: "añadir", Class: "SE"},
	}

	once := AddDerivedLength(in)
	assert.Equal(t, []int{3, 0, 6}, Lengths(once))
	for _, r := range once {
		assert.True(t, r.HasLength)
	}
	assert.False(t, in[0].HasLength, "input must not be mutated")

	twice := AddDerivedLength(once)
	assert.Equal(t, once, twice)
}

func TestAddDerivedLengthKeepsExistingLength(t *testing.T) {
	in := []Record{{Text: "abcdef", Length: 2, HasLength: true}}
	assert.Equal(t, 2, AddDerivedLength(in)[0].Length)
}

func TestLookupLabel(t *testing.T) {
	for _, s := range []string{"SE", "se", " Security ", "security"} {
		l, ok := LookupLabel(s)
		assert.True(t, ok, s)
		assert.Equal(t, "SE", l.Code, s)
	}
	for _, s := range []string{"look-and-feel", "Look & Feel", "LF"} {
		l, ok := LookupLabel(s)
		assert.True(t, ok, s)
		assert.Equal(t, "LF", l.Code, s)
	}
	l, ok := LookupLabel("fault_tolerance")
	assert.True(t, ok)
	assert.Equal(t, "FT", l.Code)

	_, ok = LookupLabel("alpha")
	assert.False(t, ok)
}

func TestLabelReferenceTotals(t *testing.T) {
	total := 0
	for _, l := range Labels {
		total += l.Reference
	}
	assert.Equal(t, ReferenceTotal, total)
	assert.Len(t, Labels, 12)
	assert.Equal(t, "Functional (F)", DisplayClass("F"))
	assert.Equal(t, "XX", DisplayClass("XX"))
}

func TestLabelReferenceSizes(t *testing.T) {
	sizes := make(map[string]int, len(Labels))
	for _, l := range Labels {
		assert.Positive(t, l.Size, l.Code)
		sizes[l.Code] = l.Size
	}
	assert.Equal(t, 20, sizes["F"])
	assert.Equal(t, 28, sizes["MN"])
	assert.Equal(t, 14, sizes["PO"])
	assert.Equal(t, 22, sizes["US"])
}
