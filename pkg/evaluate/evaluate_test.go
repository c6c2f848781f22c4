package evaluate

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadhilajas/ML-Studio/pkg/model"
)

func TestClassificationMetrics(t *testing.T) {
	yTrue := []float64{0, 0, 0, 1, 1, 2}
	yPred := []float64{0, 0, 1, 1, 1, 1}
	m, err := Evaluate(yTrue, yPred, model.Classification, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{Accuracy, Precision, Recall, F1}, keys(m))

	assert.InDelta(t, 4.0/6, m[Accuracy], 1e-12)
	// class 0: p=1 r=2/3; class 1: p=2/4 r=1; class 2: p=0 r=0.
	wantP := 3.0/6*1 + 2.0/6*0.5
	wantR := 3.0/6*(2.0/3) + 2.0/6*1
	wantF := 3.0/6*0.8 + 2.0/6*(2.0/3)
	assert.InDelta(t, wantP, m[Precision], 1e-12)
	assert.InDelta(t, wantR, m[Recall], 1e-12)
	assert.InDelta(t, wantF, m[F1], 1e-12)
}

func TestClassificationZeroDivisionIsZero(t *testing.T) {
	m := Classify([]float64{0, 0}, []float64{1, 1})
	assert.Equal(t, 0.0, m[Accuracy])
	assert.Equal(t, 0.0, m[Precision])
	assert.Equal(t, 0.0, m[F1])
}

func TestRegressionMetrics(t *testing.T) {
	m, err := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 5}, model.Regression, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{MAE, MSE, RMSE, R2}, keys(m))
	assert.InDelta(t, 2.0/3, m[MAE], 1e-12)
	assert.InDelta(t, 4.0/3, m[MSE], 1e-12)
	assert.Equal(t, math.Sqrt(m[MSE]), m[RMSE])
	assert.InDelta(t, -1.0, m[R2], 1e-12)
}

func TestSilhouette(t *testing.T) {
	X := [][]float64{{0}, {1}, {10}, {11}}
	s, err := SilhouetteScore(X, []int{0, 0, 1, 1})
	require.NoError(t, err)
	// Each row: a=1, b≈10 on average.
	want := ((9.5-1)/9.5*2 + (10.5-1)/10.5*2) / 4
	assert.InDelta(t, want, s, 1e-12)
}

func TestSilhouetteSingletonClusterScoresZero(t *testing.T) {
	X := [][]float64{{0}, {1}, {10}}
	s, err := SilhouetteScore(X, []int{0, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, ((10-1)/10.0+(9-1)/9.0)/3, s, 1e-12)
}

func TestDegenerateSilhouetteUsesSentinel(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}}
	_, err := SilhouetteScore(X, []int{4, 4, 4})
	assert.True(t, errors.Is(err, ErrDegenerateMetric))

	_, err = SilhouetteScore(X, []int{0, 1, 2})
	assert.True(t, errors.Is(err, ErrDegenerateMetric), "one label per row is undefined too")

	m, err := Evaluate(nil, []float64{4, 4, 4}, model.Clustering, X)
	require.NoError(t, err)
	assert.Equal(t, Metrics{Silhouette: SilhouetteSentinel}, m)
}

func TestNoiseCountsAsLabel(t *testing.T) {
	X := [][]float64{{0}, {0.1}, {5}, {5.1}}
	m := Cluster(X, []int{0, 0, model.Noise, model.Noise})
	assert.Greater(t, m[Silhouette], 0.9)
}

func TestEvaluateShapeMismatch(t *testing.T) {
	_, err := Evaluate([]float64{1}, []float64{1, 2}, model.Regression, nil)
	assert.ErrorIs(t, err, model.ErrShape)
}

func TestConfusionMatrix(t *testing.T) {
	labels, counts := ConfusionMatrix([]float64{1, 0, 1, 2}, []float64{1, 1, 0, 2})
	assert.Equal(t, []float64{0, 1, 2}, labels)
	assert.Equal(t, [][]int{{0, 1, 0}, {1, 1, 0}, {0, 0, 1}}, counts)
}

func keys(m Metrics) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
