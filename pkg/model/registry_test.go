package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsEveryRegisteredPair(t *testing.T) {
	for _, task := range Tasks {
		names := Names(task)
		require.NotEmpty(t, names, task.String())
		for _, name := range names {
			e, err := New(task, name, nil, 7)
			require.NoError(t, err, "%s/%s", task, name)
			assert.Equal(t, task, e.Task)
			assert.Equal(t, name, e.Name)
			if task.Supervised() {
				assert.NotNil(t, e.Supervised)
				assert.Nil(t, e.Unsupervised)
			} else {
				assert.Nil(t, e.Supervised)
				assert.NotNil(t, e.Unsupervised)
			}
		}
	}
}

func TestRegistryEnumeration(t *testing.T) {
	assert.Equal(t, []string{"KNN", "Logistic Regression", "Random Forest", "SVM"}, Names(Classification))
	assert.Equal(t, []string{"Gradient Boosting", "Linear Regression", "Random Forest Regressor"}, Names(Regression))
	assert.Equal(t, []string{"Agglomerative Clustering", "DBSCAN", "KMeans"}, Names(Clustering))
}

func TestUnsupportedPair(t *testing.T) {
	_, err := New(Classification, "KMeans", nil, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedModel))

	var ue *UnsupportedModelError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, Classification, ue.Task)
	assert.Equal(t, "KMeans", ue.Name)
	assert.False(t, Supports(Classification, "KMeans"))
	assert.True(t, Supports(Clustering, "KMeans"))
}

func TestNewReturnsIndependentInstances(t *testing.T) {
	a, err := New(Classification, "KNN", nil, 0)
	require.NoError(t, err)
	b, err := New(Classification, "KNN", nil, 0)
	require.NoError(t, err)
	assert.NotSame(t, a.Supervised, b.Supervised)
}

func TestParamsOverrideDefaults(t *testing.T) {
	e, err := New(Classification, "KNN", Params{"n_neighbors": 3, "bogus": 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Supervised.(*KNN).K)

	e, err = New(Clustering, "KMeans", nil, 11)
	require.NoError(t, err)
	km := e.Unsupervised.(*KMeans)
	assert.Equal(t, 8, km.K)
	assert.Equal(t, int64(11), km.RandomState)
}

func TestEstimatorImportancesProbe(t *testing.T) {
	e, err := New(Classification, "KNN", nil, 0)
	require.NoError(t, err)
	_, ok := e.Importances()
	assert.False(t, ok)

	e, err = New(Regression, "Linear Regression", nil, 0)
	require.NoError(t, err)
	_, ok = e.Importances()
	assert.False(t, ok, "unfitted model has nothing to report")
}

func TestMetrics(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, R2(y, y), 1e-12)
	assert.InDelta(t, 0.0, R2(y, []float64{2.5, 2.5, 2.5, 2.5}), 1e-12)
	assert.Equal(t, 1.0, R2([]float64{5, 5}, []float64{5, 5}))
	assert.Equal(t, 0.0, R2([]float64{5, 5}, []float64{5, 6}))
	assert.InDelta(t, 0.5, MSE([]float64{0, 0}, []float64{1, 0}), 1e-12)
	assert.InDelta(t, 1.5, MAE([]float64{0, 0}, []float64{1, -2}), 1e-12)
	assert.InDelta(t, 0.75, Accuracy([]float64{0, 1, 1, 0}, []float64{0, 1, 0, 0}), 1e-12)
}

func TestTaskRoundTrip(t *testing.T) {
	for _, task := range Tasks {
		got, err := ParseTask(task.String())
		require.NoError(t, err)
		assert.Equal(t, task, got)
	}
	_, err := ParseTask("Ranking")
	assert.True(t, errors.Is(err, ErrUnknownTask))
}

func TestTreeParamsReachEnsembles(t *testing.T) {
	e, err := New(Classification, "Random Forest", Params{"min_samples_leaf": 4, "bootstrap": 0, "n_estimators": 3}, 1)
	require.NoError(t, err)
	rf := e.Supervised.(*RandomForest)
	assert.Equal(t, 4, rf.MinSamplesLeaf)
	assert.False(t, rf.Bootstrap)
	assert.Equal(t, 3, rf.NEstimators)

	e, err = New(Regression, "Random Forest Regressor", nil, 1)
	require.NoError(t, err)
	rf = e.Supervised.(*RandomForest)
	assert.Equal(t, 1, rf.MinSamplesLeaf)
	assert.True(t, rf.Bootstrap)

	e, err = New(Regression, "Gradient Boosting", Params{"min_samples_leaf": 7}, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, e.Supervised.(*GradientBoosting).MinSamplesLeaf)
}
