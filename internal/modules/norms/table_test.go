package norms

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Testdata(t *testing.T) {
	f, err := os.Open("testdata/trotter_norms.csv")
	require.NoError(t, err)
	defer f.Close()

	table, err := Parse(f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 5, table.Len())

	norm, ok := table.Lookup(Key{Molecule: "no4a_monomer", D: 16, Modes: 19, Scheme: "original"})
	require.True(t, ok)
	assert.InDelta(t, 0.8732, norm, 1e-12)

	norm, ok = table.Lookup(Key{Molecule: "NO4A_Monomer", D: 16, Modes: 19, Scheme: "mode_based"})
	require.True(t, ok)
	assert.InDelta(t, 0.4121, norm, 1e-12)
}

func TestLookup_Miss(t *testing.T) {
	table, err := Parse(strings.NewReader("molecule,d,modes,scheme,norm\nfoo,16,3,original,1.5\n"), zerolog.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		key  Key
	}{
		{"unknown molecule", Key{"bar", 16, 3, "original"}},
		{"wrong d", Key{"foo", 8, 3, "original"}},
		{"wrong modes", Key{"foo", 16, 4, "original"}},
		{"wrong scheme", Key{"foo", 16, 3, "modebased"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := table.Lookup(tt.key)
			assert.False(t, ok)

			_, err := table.Get(tt.key)
			assert.True(t, errors.Is(err, ErrNormNotFound))
		})
	}
}

func TestParse_ColumnOrderAndCaseAreFree(t *testing.T) {
	csv := "NORM, Scheme ,Modes,D,Molecule\n2.25,ModeBased,4,8,pyrazine\n"
	table, err := Parse(strings.NewReader(csv), zerolog.Nop())
	require.NoError(t, err)

	norm, err := table.Get(Key{Molecule: "pyrazine", D: 8, Modes: 4, Scheme: "modebased"})
	require.NoError(t, err)
	assert.Equal(t, 2.25, norm)
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	csv := strings.Join([]string{
		"molecule,d,modes,scheme,norm",
		"good,16,3,original,1.0",
		"bad_d,x,3,original,1.0",
		"bad_norm,16,3,original,-2",
		"short,16",
		",16,3,original,1.0",
		"nan,16,3,original,NaN",
	}, "\n")

	table, err := Parse(strings.NewReader(csv), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []Key{{Molecule: "good", D: 16, Modes: 3, Scheme: "original"}}, table.Keys())
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("molecule,d,modes,norm\nfoo,16,3,1\n"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")

	_, err = Parse(strings.NewReader(""), zerolog.Nop())
	assert.Error(t, err)
}

func TestNormalizeScheme(t *testing.T) {
	assert.Equal(t, "modebased", NormalizeScheme(" Mode-Based "))
	assert.Equal(t, "original", NormalizeScheme("ORIGINAL"))
}
