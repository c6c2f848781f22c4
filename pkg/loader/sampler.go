// Package loader caps, splits and folds feature matrices before training.
package loader

import (
	"io"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/model"
)

const (
	DefaultMaxRows        = 50000
	DefaultReducedMaxRows = 10000
)

// DefaultExpensiveModels are the algorithms whose training cost grows
// superlinearly with rows; they get the reduced budget.
var DefaultExpensiveModels = []string{"SVM", "KNN", "DBSCAN", "Agglomerative Clustering"}

// ErrStratify is the condition under which stratified subsampling gives way to
// uniform subsampling. It never reaches the caller.
var ErrStratify = errors.New("loader: cannot stratify")

// Budget decides how many rows a model may train on.
type Budget struct {
	MaxRows         int
	ReducedMaxRows  int
	ExpensiveModels []string
}

func DefaultBudget() Budget {
	return Budget{
		MaxRows:         DefaultMaxRows,
		ReducedMaxRows:  DefaultReducedMaxRows,
		ExpensiveModels: DefaultExpensiveModels,
	}
}

// For returns the row budget of the named model.
func (b Budget) For(modelName string) int {
	for _, m := range b.ExpensiveModels {
		if m == modelName {
			return b.ReducedMaxRows
		}
	}
	return b.MaxRows
}

// Sampler enforces a row budget on a feature matrix and its target.
type Sampler struct {
	Budget Budget
	Seed   int64
	Logger *slog.Logger
}

func NewSampler(b Budget, seed int64, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{Budget: b, Seed: seed, Logger: logger}
}

// Cap returns X and y unchanged when they fit the model's budget. Otherwise it
// subsamples exactly budget rows without replacement: label-stratified for
// classification with a target, uniform in every other case and whenever
// stratification is impossible. X and y are always re-indexed together.
func (s *Sampler) Cap(X [][]float64, y []float64, task model.Task, modelName string) ([][]float64, []float64, error) {
	if y != nil && len(y) != len(X) {
		return nil, nil, errors.Errorf("loader: %d rows but %d targets", len(X), len(y))
	}
	budget := s.Budget.For(modelName)
	n := len(X)
	if budget <= 0 || n <= budget {
		return X, y, nil
	}

	rng := rand.New(rand.NewSource(s.Seed))
	var idx []int
	switch task {
	case model.Classification:
		if y != nil {
			var err error
			idx, err = stratifiedIndices(y, budget, rng)
			if err != nil {
				s.Logger.Warn("stratified sampling failed, using uniform sampling",
					"model", modelName, "rows", n, "budget", budget, "reason", err.Error())
				idx = nil
				rng = rand.New(rand.NewSource(s.Seed))
			}
		}
	case model.Regression, model.Clustering:
	default:
		return nil, nil, errors.Wrapf(model.ErrUnknownTask, "%v", task)
	}
	if idx == nil {
		idx = rng.Perm(n)[:budget]
	}

	s.Logger.Debug("downsampled dataset", "model", modelName, "rows", n, "budget", budget)
	Xs, ys := Take(X, y, idx)
	return Xs, ys, nil
}

// Take gathers the rows at idx from X and, when non-nil, y.
func Take(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	Xs := make([][]float64, len(idx))
	var ys []float64
	if y != nil {
		ys = make([]float64, len(idx))
	}
	for i, j := range idx {
		Xs[i] = X[j]
		if y != nil {
			ys[i] = y[j]
		}
	}
	return Xs, ys
}

// stratifiedIndices draws size rows so that each class keeps its share of the
// rows as closely as integer rounding allows. Every class needs at least two
// members, and both the drawn and the left-over part must be able to hold one
// row per class.
func stratifiedIndices(y []float64, size int, rng *rand.Rand) ([]int, error) {
	n := len(y)
	byClass := map[float64][]int{}
	for i, v := range y {
		byClass[v] = append(byClass[v], i)
	}
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	for _, c := range classes {
		if len(byClass[c]) < 2 {
			return nil, errors.Wrapf(ErrStratify, "class %v has only %d member", c, len(byClass[c]))
		}
	}
	if size < len(classes) {
		return nil, errors.Wrapf(ErrStratify, "sample size %d is smaller than %d classes", size, len(classes))
	}
	if n-size < len(classes) {
		return nil, errors.Wrapf(ErrStratify, "remainder %d is smaller than %d classes", n-size, len(classes))
	}

	alloc := make([]int, len(classes))
	type rem struct {
		class int
		frac  float64
	}
	rems := make([]rem, len(classes))
	taken := 0
	for k, c := range classes {
		exact := float64(size) * float64(len(byClass[c])) / float64(n)
		alloc[k] = int(exact)
		rems[k] = rem{k, exact - float64(alloc[k])}
		taken += alloc[k]
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; taken < size; i = (i + 1) % len(rems) {
		k := rems[i].class
		if alloc[k] < len(byClass[classes[k]]) {
			alloc[k]++
			taken++
		}
	}

	out := make([]int, 0, size)
	for k, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
		out = append(out, members[:alloc[k]]...)
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out, nil
}
