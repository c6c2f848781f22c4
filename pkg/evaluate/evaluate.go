// Package evaluate computes the metrics map for a finished run.
package evaluate

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/model"
	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// Metric keys. These names are part of the result contract.
const (
	Accuracy   = "accuracy"
	Precision  = "precision"
	Recall     = "recall"
	F1         = "f1"
	MAE        = "mae"
	MSE        = "mse"
	RMSE       = "rmse"
	R2         = "r2"
	Silhouette = "silhouette"
	TrainScore = "train_score"
	TestScore  = "test_score"
	CVMean     = "cv_mean"
	CVStd      = "cv_std"
)

// SilhouetteSentinel replaces the silhouette score when it is undefined.
const SilhouetteSentinel = -1.0

// ErrDegenerateMetric reports a metric that is undefined for its input.
// Evaluate resolves it with a sentinel and never returns it.
var ErrDegenerateMetric = errors.New("evaluate: degenerate metric")

// Metrics maps metric keys to values.
type Metrics map[string]float64

// Evaluate scores a run. Supervised tasks compare yTrue against yPred;
// clustering reads labels from yPred and ignores yTrue.
func Evaluate(yTrue, yPred []float64, task model.Task, X [][]float64) (Metrics, error) {
	switch task {
	case model.Classification:
		if len(yTrue) != len(yPred) {
			return nil, errors.Wrapf(model.ErrShape, "%d targets, %d predictions", len(yTrue), len(yPred))
		}
		return Classify(yTrue, yPred), nil
	case model.Regression:
		if len(yTrue) != len(yPred) {
			return nil, errors.Wrapf(model.ErrShape, "%d targets, %d predictions", len(yTrue), len(yPred))
		}
		return Regress(yTrue, yPred), nil
	case model.Clustering:
		if len(X) != len(yPred) {
			return nil, errors.Wrapf(model.ErrShape, "%d rows, %d labels", len(X), len(yPred))
		}
		labels := make([]int, len(yPred))
		for i, v := range yPred {
			labels[i] = int(v)
		}
		return Cluster(X, labels), nil
	}
	return nil, errors.Wrapf(model.ErrUnknownTask, "%v", task)
}

// Classify returns accuracy and support-weighted precision, recall and F1.
// A class with no predictions or no support scores 0 rather than failing.
func Classify(yTrue, yPred []float64) Metrics {
	type counts struct{ tp, fp, fn, support int }
	per := map[float64]*counts{}
	get := func(l float64) *counts {
		c, ok := per[l]
		if !ok {
			c = &counts{}
			per[l] = c
		}
		return c
	}
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		get(t).support++
		if t == p {
			get(t).tp++
		} else {
			get(p).fp++
			get(t).fn++
		}
	}

	m := Metrics{Accuracy: model.Accuracy(yTrue, yPred), Precision: 0, Recall: 0, F1: 0}
	n := float64(len(yTrue))
	if n == 0 {
		return m
	}
	for _, c := range per {
		w := float64(c.support) / n
		p := ratio(c.tp, c.tp+c.fp)
		r := ratio(c.tp, c.tp+c.fn)
		f := 0.0
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		m[Precision] += w * p
		m[Recall] += w * r
		m[F1] += w * f
	}
	return m
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Regress returns MAE, MSE, RMSE (derived from MSE) and R².
func Regress(yTrue, yPred []float64) Metrics {
	mse := model.MSE(yTrue, yPred)
	return Metrics{
		MAE:  model.MAE(yTrue, yPred),
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   model.R2(yTrue, yPred),
	}
}

// Cluster returns the silhouette, or the sentinel when it is undefined.
func Cluster(X [][]float64, labels []int) Metrics {
	s, err := SilhouetteScore(X, labels)
	if err != nil {
		s = SilhouetteSentinel
	}
	return Metrics{Silhouette: s}
}

// SilhouetteScore is the mean silhouette coefficient over all rows. Every
// distinct label, including DBSCAN noise, counts as a cluster. It needs
// between 2 and n-1 distinct labels.
func SilhouetteScore(X [][]float64, labels []int) (float64, error) {
	n := len(labels)
	if len(X) != n {
		return 0, errors.Wrapf(model.ErrShape, "%d rows, %d labels", len(X), n)
	}
	ids := map[int]int{}
	for _, l := range labels {
		if _, ok := ids[l]; !ok {
			ids[l] = len(ids)
		}
	}
	k := len(ids)
	if k < 2 || k > n-1 {
		return 0, errors.Wrapf(ErrDegenerateMetric, "silhouette needs 2..%d labels, got %d", n-1, k)
	}
	cl := make([]int, n)
	size := make([]int, k)
	for i, l := range labels {
		cl[i] = ids[l]
		size[cl[i]]++
	}

	s := make([]float64, n)
	parallel.ForEach(n, func(i int) {
		if size[cl[i]] == 1 {
			return
		}
		sum := make([]float64, k)
		for j := range X {
			if j == i {
				continue
			}
			sum[cl[j]] += dist(X[i], X[j])
		}
		a := sum[cl[i]] / float64(size[cl[i]]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c != cl[i] {
				b = math.Min(b, sum[c]/float64(size[c]))
			}
		}
		if d := math.Max(a, b); d > 0 {
			s[i] = (b - a) / d
		}
	})
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total / float64(n), nil
}

func dist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ConfusionMatrix counts (true, predicted) pairs over the sorted union of
// labels. counts[i][j] is the number of rows of class labels[i] predicted as
// labels[j].
func ConfusionMatrix(yTrue, yPred []float64) (labels []float64, counts [][]int) {
	seen := map[float64]struct{}{}
	for _, v := range append(append([]float64(nil), yTrue...), yPred...) {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			labels = append(labels, v)
		}
	}
	sort.Float64s(labels)
	pos := make(map[float64]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	counts = make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		counts[pos[yTrue[i]]][pos[yPred[i]]]++
	}
	return labels, counts
}
