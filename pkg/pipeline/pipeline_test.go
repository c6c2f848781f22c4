package pipeline

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadhilajas/ML-Studio/pkg/config"
	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/evaluate"
	"github.com/aadhilajas/ML-Studio/pkg/model"
	"github.com/aadhilajas/ML-Studio/pkg/parallel"
	"github.com/aadhilajas/ML-Studio/pkg/store"
	"github.com/aadhilajas/ML-Studio/pkg/viz"
)

// people builds 100 rows where label is "high" iff income > 50, plus an
// unrelated category and a noisy regression target.
func people(t *testing.T) *data.Dataset {
	t.Helper()
	n := 100
	age := make([]float64, n)
	income := make([]float64, n)
	city := make([]string, n)
	label := make([]string, n)
	spend := make([]float64, n)
	cities := []string{"Paris", "Berlin", "Rome"}
	for i := range n {
		age[i] = float64(20 + i%40)
		income[i] = float64((i * 37) % 100)
		city[i] = cities[i%3]
		label[i] = "low"
		if income[i] > 50 {
			label[i] = "high"
		}
		spend[i] = 2*income[i] + 0.5*age[i] + math.Sin(float64(i))
	}
	ds, err := data.New("people.csv",
		data.NumericColumn("age", age),
		data.NumericColumn("income", income),
		data.CategoricalColumn("city", city),
		data.CategoricalColumn("label", label),
		data.NumericColumn("spend", spend),
	)
	require.NoError(t, err)
	return ds
}

func newOrchestrator(t *testing.T) (*Orchestrator, *store.MemStore) {
	t.Helper()
	sink := store.NewMemStore()
	o := New(data.MapSource{"people.csv": people(t)}, sink,
		WithIDGenerator(func() string { return "run-1" }),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return o, sink
}

func keys(m evaluate.Metrics) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRunClassification(t *testing.T) {
	o, sink := newOrchestrator(t)
	res, err := o.Run(NewRequest("people.csv", model.Classification, "Logistic Regression", "label"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"accuracy", "precision", "recall", "f1", "train_score", "test_score"}, keys(res.Metrics))
	assert.Greater(t, res.Metrics[evaluate.Accuracy], 0.8)
	assert.Equal(t, []viz.Kind{viz.ConfusionMatrix, viz.FeatureImportance}, res.Visualizations.Kinds())
	assert.True(t, strings.HasPrefix(res.Explanation, "The model correctly predicts outcomes "))
	assert.Equal(t, "run-1", res.ModelID)

	cm := res.Visualizations[viz.ConfusionMatrix]
	assert.Len(t, cm.YTrue, 20)
	assert.Equal(t, []string{"low", "high"}, cm.ClassNames)
	fi := res.Visualizations[viz.FeatureImportance]
	assert.Len(t, fi.Importances, len(fi.FeatureNames))

	a, err := store.Load(sink, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.Classification, a.Task)
	assert.Equal(t, "Logistic Regression", a.ModelName)
	assert.Equal(t, "label", a.TargetColumn)
	assert.Equal(t, []string{"low", "high"}, a.ClassNames)
	assert.Equal(t, map[string]float64(res.Metrics), a.Metrics)
	assert.NotContains(t, a.FeatureNames, "label")
	_, ok := a.Model.(*model.LogisticRegression)
	assert.True(t, ok)
}

func TestRunRegressionWithCrossValidation(t *testing.T) {
	o, _ := newOrchestrator(t)
	req := NewRequest("people.csv", model.Regression, "Linear Regression", "spend")
	req.UseCrossValidation = true
	res, err := o.Run(req)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"mae", "mse", "rmse", "r2", "train_score", "test_score", "cv_mean", "cv_std"}, keys(res.Metrics))
	assert.Greater(t, res.Metrics[evaluate.R2], 0.95)
	assert.Greater(t, res.Metrics[evaluate.CVMean], 0.95)
	assert.GreaterOrEqual(t, res.Metrics[evaluate.CVStd], 0.0)
	assert.InDelta(t, math.Sqrt(res.Metrics[evaluate.MSE]), res.Metrics[evaluate.RMSE], 1e-12)
	assert.Equal(t, []viz.Kind{viz.FeatureImportance, viz.ResidualPlot}, res.Visualizations.Kinds())
	assert.Contains(t, res.Explanation, "It captures the underlying trends very well.")
}

func TestRunClustering(t *testing.T) {
	o, sink := newOrchestrator(t)
	req := NewRequest("people.csv", model.Clustering, "KMeans", "")
	req.Params = model.Params{"n_clusters": 3}
	res, err := o.Run(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"silhouette"}, keys(res.Metrics))
	assert.Equal(t, []viz.Kind{viz.ClusterPlot}, res.Visualizations.Kinds())
	cp := res.Visualizations[viz.ClusterPlot]
	assert.Len(t, cp.Labels, 100)
	assert.Len(t, cp.Points, 100)
	assert.True(t, strings.HasPrefix(res.Explanation, "The Silhouette Score is "))
	assert.Equal(t, 1, sink.Len())
}

func TestRunClusteringDropsTarget(t *testing.T) {
	o, sink := newOrchestrator(t)
	_, err := o.Run(NewRequest("people.csv", model.Clustering, "KMeans", "label"))
	require.NoError(t, err)
	a, err := store.Load(sink, "run-1")
	require.NoError(t, err)
	for _, name := range a.FeatureNames {
		assert.False(t, strings.HasPrefix(name, "label"), name)
	}
	assert.Nil(t, a.ClassNames)
}

func TestUnsupportedModelFailsBeforeLoad(t *testing.T) {
	sink := store.NewMemStore()
	o := New(data.MapSource{}, sink)
	_, err := o.Run(NewRequest("missing.csv", model.Regression, "Logistic Regression", "y"))
	require.Error(t, err)

	assert.True(t, errors.Is(err, model.ErrUnsupportedModel))
	assert.False(t, errors.Is(err, data.ErrDatasetNotFound))
	assert.True(t, IsClientError(err))
	stage, ok := StageOf(err)
	require.True(t, ok)
	assert.Equal(t, StageValidated, stage)
	assert.Equal(t, 0, sink.Len())
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func() Request
		target error
		stage  Stage
	}{
		{
			name:   "dataset not found",
			req:    func() Request { return NewRequest("nope.csv", model.Classification, "KNN", "label") },
			target: data.ErrDatasetNotFound,
			stage:  StageLoaded,
		},
		{
			name:   "target column absent",
			req:    func() Request { return NewRequest("people.csv", model.Classification, "KNN", "colour") },
			target: ErrInvalidTargetColumn,
			stage:  StageLoaded,
		},
		{
			name:   "supervised without target",
			req:    func() Request { return NewRequest("people.csv", model.Regression, "Gradient Boosting", "") },
			target: ErrInvalidTargetColumn,
			stage:  StageValidated,
		},
		{
			name:   "categorical regression target",
			req:    func() Request { return NewRequest("people.csv", model.Regression, "Linear Regression", "city") },
			target: ErrInvalidTargetColumn,
			stage:  StageFeatureEncoded,
		},
		{
			name: "test size out of range",
			req: func() Request {
				r := NewRequest("people.csv", model.Classification, "SVM", "label")
				r.TestSize = 1
				return r
			},
			target: ErrInvalidRequest,
			stage:  StageValidated,
		},
		{
			name:   "unknown task",
			req:    func() Request { return NewRequest("people.csv", model.Task(99), "KNN", "label") },
			target: ErrInvalidRequest,
			stage:  StageValidated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, sink := newOrchestrator(t)
			_, err := o.Run(tt.req())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.True(t, IsClientError(err))
			assert.False(t, errors.Is(err, ErrInternal))
			stage, _ := StageOf(err)
			assert.Equal(t, tt.stage, stage)
			assert.Equal(t, 0, sink.Len())
		})
	}
}

type failingSink struct{}

func (failingSink) Persist(string, []byte) error { return errors.New("disk full") }

func TestPersistFailureIsInternal(t *testing.T) {
	o := New(data.MapSource{"people.csv": people(t)}, failingSink{})
	_, err := o.Run(NewRequest("people.csv", model.Classification, "KNN", "label"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal))
	assert.False(t, IsClientError(err))
	stage, _ := StageOf(err)
	assert.Equal(t, StagePersisted, stage)
	assert.Contains(t, err.Error(), "disk full")
}

type panicSource struct{}

func (panicSource) Load(string) (*data.Dataset, error) { panic("boom") }

func TestPanicBecomesInternalError(t *testing.T) {
	o := New(panicSource{}, store.NewMemStore())
	_, err := o.Run(NewRequest("people.csv", model.Classification, "KNN", "label"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Contains(t, err.Error(), "boom")
}

func TestRunIsReproducible(t *testing.T) {
	req := NewRequest("people.csv", model.Classification, "Random Forest", "label")
	req.Params = model.Params{"n_estimators": 10}
	o1, _ := newOrchestrator(t)
	o2, _ := newOrchestrator(t)
	r1, err := o1.Run(req)
	require.NoError(t, err)
	r2, err := o2.Run(req)
	require.NoError(t, err)
	assert.Equal(t, r1.Metrics, r2.Metrics)
	assert.Equal(t, r1.Visualizations, r2.Visualizations)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	sink := store.NewMemStore()
	o := New(data.MapSource{"people.csv": people(t)}, sink)
	req := NewRequest("people.csv", model.Clustering, "KMeans", "")
	r1, err := o.Run(req)
	require.NoError(t, err)
	r2, err := o.Run(req)
	require.NoError(t, err)
	assert.NotEqual(t, r1.ModelID, r2.ModelID)
	assert.Equal(t, 2, sink.Len())
}

func TestColumns(t *testing.T) {
	o, _ := newOrchestrator(t)
	s, err := o.Columns("people.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "income", "city", "label", "spend"}, s.Columns)
	assert.Equal(t, "object", s.DTypes["city"])

	_, err = o.Columns("nope.csv")
	assert.True(t, errors.Is(err, data.ErrDatasetNotFound))
}

func TestFromConfigUsesDirectories(t *testing.T) {
	dir := t.TempDir()
	c := config.Default()
	c.DatasetDir = filepath.Join(dir, "uploads")
	c.ModelDir = filepath.Join(dir, "models")
	require.NoError(t, c.Init())

	csv := "x,y\n"
	for i := range 30 {
		csv += strconv.Itoa(i) + "," + strconv.Itoa(3*i) + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(c.DatasetDir, "line.csv"), []byte(csv), 0o644))

	o := FromConfig(c)
	res, err := o.Run(NewRequest("line.csv", model.Regression, "Linear Regression", "y"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Metrics[evaluate.R2], 1e-9)

	_, err = os.Stat(filepath.Join(c.ModelDir, res.ModelID+store.Ext))
	assert.NoError(t, err)
}

func TestRequestAndResultJSON(t *testing.T) {
	req := NewRequest("people.csv", model.Clustering, "DBSCAN", "")
	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"task_type":"Clustering"`)
	assert.NotContains(t, string(b), "target_column")

	var back Request
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, req, back)

	o, _ := newOrchestrator(t)
	res, err := o.Run(req)
	require.NoError(t, err)
	b, err = json.Marshal(res)
	require.NoError(t, err)
	for _, k := range []string{`"metrics"`, `"explanation"`, `"visualizations"`, `"model_id":"run-1"`, `"cluster_plot"`} {
		assert.Contains(t, string(b), k)
	}
}

func TestStageErrorFormatting(t *testing.T) {
	err := &StageError{Stage: StageTrained, Err: errors.New("fit: singular")}
	assert.Equal(t, "pipeline Trained: fit: singular", err.Error())
	assert.Equal(t, "fit: singular", errors.Cause(err).Error())
}

func TestInfiniteFeatureIsRequestError(t *testing.T) {
	ds, err := data.ReadCSV("inf.csv", strings.NewReader("a,b,y\n1,2,3\ninf,3,4\n2,4,5\n3,5,6\n4,6,7\n5,7,8\n"))
	require.NoError(t, err)
	sink := store.NewMemStore()
	o := New(data.MapSource{"inf.csv": ds}, sink)
	_, err = o.Run(NewRequest("inf.csv", model.Regression, "Linear Regression", "y"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
	assert.True(t, IsClientError(err))
	stage, _ := StageOf(err)
	assert.Equal(t, StageFeatureEncoded, stage)
	assert.Equal(t, 0, sink.Len())
}

func TestInfiniteTargetIsTargetError(t *testing.T) {
	ds, err := data.ReadCSV("inf.csv", strings.NewReader("a,y\n1,3\n2,inf\n3,5\n4,6\n5,7\n"))
	require.NoError(t, err)
	o := New(data.MapSource{"inf.csv": ds}, store.NewMemStore())
	_, err = o.Run(NewRequest("inf.csv", model.Regression, "Linear Regression", "y"))
	assert.True(t, errors.Is(err, ErrInvalidTargetColumn), "got %v", err)
}

func TestGuardRecoversWorkerPanics(t *testing.T) {
	err := guard(func() error {
		parallel.ForChunks(100, func(start, end int) {
			if start == 0 {
				panic("worker failed")
			}
		})
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker failed")
}
