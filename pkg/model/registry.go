package model

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrUnsupportedModel matches every UnsupportedModelError.
var ErrUnsupportedModel = errors.New("unsupported model")

// UnsupportedModelError names a (task, model) pair the registry cannot build.
type UnsupportedModelError struct {
	Task Task
	Name string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model %q is not supported for task %s (supported: %v)", e.Name, e.Task, Names(e.Task))
}

func (e *UnsupportedModelError) Is(target error) bool { return target == ErrUnsupportedModel }

// Params overrides default hyperparameters. Unknown keys are ignored.
type Params map[string]float64

func (p Params) intOr(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

func (p Params) floatOr(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

type builder struct {
	supervised   func(p Params, seed int64) Supervised
	unsupervised func(p Params, seed int64) Unsupervised
}

var registry = map[Task]map[string]builder{
	Classification: {
		"Logistic Regression": {supervised: func(p Params, _ int64) Supervised {
			m := NewLogisticRegression()
			m.C = p.floatOr("C", m.C)
			m.Lr = p.floatOr("learning_rate", m.Lr)
			m.MaxIter = p.intOr("max_iter", m.MaxIter)
			return m
		}},
		"Random Forest": {supervised: func(p Params, seed int64) Supervised {
			return NewRandomForestClassifier(forestParams(p, seed)...)
		}},
		"SVM": {supervised: func(p Params, seed int64) Supervised {
			m := NewSVM()
			m.C = p.floatOr("C", m.C)
			m.Epochs = p.intOr("max_iter", m.Epochs)
			m.RandomState = seed
			return m
		}},
		"KNN": {supervised: func(p Params, _ int64) Supervised {
			return NewKNN(p.intOr("n_neighbors", 5))
		}},
	},
	Regression: {
		"Linear Regression": {supervised: func(Params, int64) Supervised {
			return NewLinearRegression()
		}},
		"Random Forest Regressor": {supervised: func(p Params, seed int64) Supervised {
			return NewRandomForestRegressor(forestParams(p, seed)...)
		}},
		"Gradient Boosting": {supervised: func(p Params, seed int64) Supervised {
			m := NewGradientBoosting()
			m.NEstimators = p.intOr("n_estimators", m.NEstimators)
			m.LearningRate = p.floatOr("learning_rate", m.LearningRate)
			m.MaxDepth = p.intOr("max_depth", m.MaxDepth)
			m.MinSamplesLeaf = p.intOr("min_samples_leaf", m.MinSamplesLeaf)
			m.RandomState = seed
			return m
		}},
	},
	Clustering: {
		"KMeans": {unsupervised: func(p Params, seed int64) Unsupervised {
			m := NewKMeans(p.intOr("n_clusters", 8), p.intOr("max_iter", 300))
			m.RandomState = seed
			return m
		}},
		"DBSCAN": {unsupervised: func(p Params, _ int64) Unsupervised {
			return NewDBSCAN(p.floatOr("eps", 0.5), p.intOr("min_samples", 5))
		}},
		"Agglomerative Clustering": {unsupervised: func(p Params, _ int64) Unsupervised {
			return NewAgglomerative(p.intOr("n_clusters", 2))
		}},
	},
}

func forestParams(p Params, seed int64) []ForestOption {
	return []ForestOption{
		WithNEstimators(p.intOr("n_estimators", 100)),
		WithForestDepth(p.intOr("max_depth", 0)),
		WithForestFeatures(p.intOr("max_features", 0)),
		WithForestMinLeaf(p.intOr("min_samples_leaf", 1)),
		WithBootstrap(p.intOr("bootstrap", 1) != 0),
		WithForestSeed(seed),
	}
}

// Supports reports whether New would succeed for the pair.
func Supports(task Task, name string) bool {
	_, ok := registry[task][name]
	return ok
}

// Names lists the models available for a task in sorted order.
func Names(task Task) []string {
	names := make([]string, 0, len(registry[task]))
	for n := range registry[task] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds a fresh, untrained model. Every call returns an independent
// instance seeded from seed.
func New(task Task, name string, params Params, seed int64) (Estimator, error) {
	b, ok := registry[task][name]
	if !ok {
		return Estimator{}, &UnsupportedModelError{Task: task, Name: name}
	}
	e := Estimator{Task: task, Name: name}
	switch task {
	case Classification, Regression:
		e.Supervised = b.supervised(params, seed)
	case Clustering:
		e.Unsupervised = b.unsupervised(params, seed)
	default:
		return Estimator{}, &UnsupportedModelError{Task: task, Name: name}
	}
	return e, nil
}
