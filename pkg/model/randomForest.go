package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// RandomForest is a bagged ensemble of decision trees. Classification
// averages the trees' class probabilities; regression averages their outputs.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => sqrt(p) for classification, p for regression
	Bootstrap       bool
	RandomState     int64
	Regression      bool

	Trees     []*DecisionTree
	Classes   []float64
	NFeatures int
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

func WithNEstimators(n int) ForestOption   { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) ForestOption    { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestDepth(d int) ForestOption   { return func(rf *RandomForest) { rf.MaxDepth = d } }
func WithForestFeatures(k int) ForestOption { return func(rf *RandomForest) { rf.MaxFeatures = k } }
func WithForestSeed(s int64) ForestOption  { return func(rf *RandomForest) { rf.RandomState = s } }
func WithForestMinLeaf(n int) ForestOption  { return func(rf *RandomForest) { rf.MinSamplesLeaf = n } }

func newForest(regression bool, opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Regression:      regression,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

func NewRandomForestClassifier(opts ...ForestOption) *RandomForest { return newForest(false, opts...) }

func NewRandomForestRegressor(opts ...ForestOption) *RandomForest { return newForest(true, opts...) }

// Fit grows NEstimators trees concurrently, each on its own bootstrap sample
// and random stream derived from RandomState.
func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if rf.NEstimators < 1 {
		return errors.New("randomforest: n_estimators must be positive")
	}
	n := len(X)
	rf.NFeatures = len(X[0])
	if !rf.Regression {
		rf.Classes = uniqueSorted(y)
	}
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = rf.NFeatures
		if !rf.Regression {
			maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(rf.NFeatures)))))
		}
	}

	rf.Trees = make([]*DecisionTree, rf.NEstimators)
	var g parallel.Group
	errCh := make(chan error, rf.NEstimators)
	for k := 0; k < rf.NEstimators; k++ {
		g.Go(func() {
			seed := rf.RandomState + int64(k)
			r := rand.New(rand.NewSource(seed))
			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = r.Intn(n)
				} else {
					sample[j] = j
				}
			}
			opts := []Option{
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(max(1, rf.MinSamplesLeaf)),
				WithMaxFeatures(maxFeatures),
				WithRandomState(seed),
			}
			if rf.Regression {
				opts = append(opts, WithRegression())
			}
			tree := NewDecisionTree(opts...)
			if err := tree.fitIndices(X, y, sample, rf.Classes); err != nil {
				errCh <- err
				return
			}
			rf.Trees[k] = tree
		})
	}
	g.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return errors.Wrap(err, "randomforest")
	}
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, errors.New("randomforest: not fitted")
	}
	if err := checkWidth(X, rf.NFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	parallel.ForEach(len(X), func(i int) {
		if rf.Regression {
			s := 0.0
			for _, t := range rf.Trees {
				s += t.leaf(X[i]).Value[0]
			}
			out[i] = s / float64(len(rf.Trees))
			return
		}
		acc := make([]float64, len(rf.Classes))
		for _, t := range rf.Trees {
			for k, p := range t.leaf(X[i]).Value {
				acc[k] += p
			}
		}
		out[i] = rf.Classes[argmax(acc)]
	})
	return out, nil
}

func (rf *RandomForest) Score(X [][]float64, y []float64) (float64, error) {
	if rf.Regression {
		return regressorScore(rf, X, y)
	}
	return classifierScore(rf, X, y)
}

// Importances is the mean of the trees' normalised importances.
func (rf *RandomForest) Importances() ([]float64, bool) {
	if len(rf.Trees) == 0 {
		return nil, false
	}
	sum := make([]float64, rf.NFeatures)
	for _, t := range rf.Trees {
		imp, _ := t.Importances()
		for j, v := range imp {
			sum[j] += v
		}
	}
	return normalise(sum), true
}
