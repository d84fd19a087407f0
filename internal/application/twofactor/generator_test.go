package twofactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerator_CodeShape(t *testing.T) {
	for _, length := range []int{4, 6, 8, 10} {
		g := NewGenerator(length)
		for i := 0; i < 200; i++ {
			code, err := g.Generate()
			require.NoError(t, err)
			require.Len(t, code, length)
			for _, c := range code {
				require.True(t, c >= '0' && c <= '9', "non-digit %q in %q", c, code)
			}
		}
	}
}

func TestGenerator_DefaultLength(t *testing.T) {
	code, err := NewGenerator(0).Generate()
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
}

func TestGenerator_DigitDistribution(t *testing.T) {
	const samples = 10000
	g := NewGenerator(6)
	var counts [10]int
	for i := 0; i < samples; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		for _, c := range code {
			counts[c-'0']++
		}
	}

	// 60000 digits, expected 6000 per bucket. Chi-square with 9 degrees of
	// freedom stays far below 40 for a uniform source.
	expected := float64(samples*6) / 10
	var chi2 float64
	for d, n := range counts {
		assert.Greater(t, n, 0, "digit %d never produced", d)
		diff := float64(n) - expected
		chi2 += diff * diff / expected
	}
	assert.Less(t, chi2, 40.0, "digit counts %v", counts)
}

func TestGenerator_FirstDigitCanBeZero(t *testing.T) {
	g := NewGenerator(6)
	for i := 0; i < 5000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		if code[0] == '0' {
			return
		}
	}
	t.Fatal("no code with a leading zero in 5000 samples")
}

func TestGenerator_SourceFailure(t *testing.T) {
	g := NewGenerator(6)
	g.source = failingReader{}

	code, err := g.Generate()
	require.Error(t, err)
	assert.Empty(t, code)
}
