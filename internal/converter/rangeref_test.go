package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Range
	}{
		{"Default range", "A1:DN500", Range{MinCol: 1, MinRow: 1, MaxCol: 118, MaxRow: 500}},
		{"Lowercase", "b2:c3", Range{MinCol: 2, MinRow: 2, MaxCol: 3, MaxRow: 3}},
		{"Anchored", "$A$1:$B$2", Range{MinCol: 1, MinRow: 1, MaxCol: 2, MaxRow: 2}},
		{"Whitespace", "  A1:A1 ", Range{MinCol: 1, MinRow: 1, MaxCol: 1, MaxRow: 1}},
		{"Wide columns", "AA10:ZZ20", Range{MinCol: 27, MinRow: 10, MaxCol: 702, MaxRow: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Single cell", "A1"},
		{"Wrong separator", "A1-B2"},
		{"Missing end", "A1:"},
		{"Digits first", "1A:B2"},
		{"Inverted rows", "A5:A1"},
		{"Inverted columns", "C1:A1"},
		{"Three parts", "A1:B2:C3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRange(tt.input)
			require.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestRange_String(t *testing.T) {
	r, err := ParseRange("$a$1:dn500")
	require.NoError(t, err)
	assert.Equal(t, "A1:DN500", r.String())
	assert.Equal(t, 118*500, r.CellCount())
	assert.Equal(t, 118, r.Cols())
}

func TestRange_ContainsIntersectUnion(t *testing.T) {
	a := Range{MinCol: 1, MinRow: 1, MaxCol: 4, MaxRow: 4}
	b := Range{MinCol: 3, MinRow: 2, MaxCol: 6, MaxRow: 8}

	assert.True(t, a.Contains(4, 4))
	assert.False(t, a.Contains(5, 1))

	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, Range{MinCol: 3, MinRow: 2, MaxCol: 4, MaxRow: 4}, got)

	_, ok = a.Intersect(Range{MinCol: 10, MinRow: 10, MaxCol: 11, MaxRow: 11})
	assert.False(t, ok)

	assert.Equal(t, Range{MinCol: 1, MinRow: 1, MaxCol: 6, MaxRow: 8}, a.Union(b))
}

func TestIsUsedRange(t *testing.T) {
	assert.True(t, IsUsedRange(""))
	assert.True(t, IsUsedRange(" USED "))
	assert.False(t, IsUsedRange("A1:B2"))
}
