package model

import (
	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// GradientBoosting is least-squares gradient boosting of shallow regression
// trees: each stage fits the residuals of the running prediction.
type GradientBoosting struct {
	NEstimators    int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	RandomState    int64

	Init      float64
	Trees     []*DecisionTree
	NFeatures int
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 100, LearningRate: 0.1, MaxDepth: 3, MinSamplesLeaf: 1}
}

func (m *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if m.NEstimators < 1 {
		return errors.New("gboost: n_estimators must be positive")
	}
	n := len(X)
	m.NFeatures = len(X[0])
	m.Init = 0
	for _, v := range y {
		m.Init += v
	}
	m.Init /= float64(n)

	F := make([]float64, n)
	for i := range F {
		F[i] = m.Init
	}
	resid := make([]float64, n)
	m.Trees = make([]*DecisionTree, 0, m.NEstimators)
	for s := 0; s < m.NEstimators; s++ {
		for i := range resid {
			resid[i] = y[i] - F[i]
		}
		tree := NewDecisionTree(
			WithRegression(),
			WithMaxDepth(m.MaxDepth),
			WithMinSamplesLeaf(max(1, m.MinSamplesLeaf)),
			WithRandomState(m.RandomState+int64(s)),
		)
		if err := tree.Fit(X, resid); err != nil {
			return errors.Wrapf(err, "gboost: stage %d", s)
		}
		m.Trees = append(m.Trees, tree)
		parallel.ForEach(n, func(i int) {
			F[i] += m.LearningRate * tree.leaf(X[i]).Value[0]
		})
	}
	return nil
}

func (m *GradientBoosting) Predict(X [][]float64) ([]float64, error) {
	if m.Trees == nil {
		return nil, errors.New("gboost: not fitted")
	}
	if err := checkWidth(X, m.NFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	parallel.ForEach(len(X), func(i int) {
		v := m.Init
		for _, t := range m.Trees {
			v += m.LearningRate * t.leaf(X[i]).Value[0]
		}
		out[i] = v
	})
	return out, nil
}

func (m *GradientBoosting) Score(X [][]float64, y []float64) (float64, error) {
	return regressorScore(m, X, y)
}

func (m *GradientBoosting) Importances() ([]float64, bool) {
	if len(m.Trees) == 0 {
		return nil, false
	}
	sum := make([]float64, m.NFeatures)
	for _, t := range m.Trees {
		imp, _ := t.Importances()
		for j, v := range imp {
			sum[j] += v
		}
	}
	return normalise(sum), true
}
