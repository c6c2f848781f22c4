package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanVariance(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 5.0, Mean(x), 1e-12)
	assert.InDelta(t, 4.0, Variance(x), 1e-12)
	assert.InDelta(t, 2.0, Std(x), 1e-12)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Variance(nil))
}

func TestMeanIgnoringNaN(t *testing.T) {
	m, n := MeanIgnoringNaN([]float64{1, math.NaN(), 3})
	assert.Equal(t, 2.0, m)
	assert.Equal(t, 2, n)

	m, n = MeanIgnoringNaN([]float64{math.NaN()})
	assert.Equal(t, 0.0, m)
	assert.Equal(t, 0, n)
}

func TestModeString(t *testing.T) {
	isEmpty := func(s string) bool { return s == "" }

	mode, ok := ModeString([]string{"b", "a", "", "b", "a", ""}, isEmpty)
	require.True(t, ok)
	assert.Equal(t, "a", mode, "ties resolve to the smallest value")

	mode, ok = ModeString([]string{"x", "y", "y"}, isEmpty)
	require.True(t, ok)
	assert.Equal(t, "y", mode)

	_, ok = ModeString([]string{"", ""}, isEmpty)
	assert.False(t, ok)
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s := NewStandardScaler()
	Y, err := s.FitTransform(X)
	require.NoError(t, err)

	col := []float64{Y[0][0], Y[1][0], Y[2][0]}
	assert.InDelta(t, 0, Mean(col), 1e-12)
	assert.InDelta(t, 1, Std(col), 1e-12)
	for i := range Y {
		assert.Equal(t, 0.0, Y[i][1], "constant column is centred only")
	}
	assert.Equal(t, 1.0, X[0][0], "input is not modified")

	_, err = NewStandardScaler().FitTransform(nil)
	assert.Error(t, err)
}
