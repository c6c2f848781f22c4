package loader

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// ErrTooFewRows is returned when a split would leave a partition empty.
var ErrTooFewRows = errors.New("loader: too few rows to split")

// TrainTestSplit shuffles rows with the given seed and holds out
// ceil(testRatio*n) of them for testing.
func TrainTestSplit(X [][]float64, Y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64, err error) {
	n := len(X)
	if len(Y) != n {
		return nil, nil, nil, nil, errors.Errorf("loader: %d rows but %d targets", n, len(Y))
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, errors.Errorf("loader: test ratio %v outside (0,1)", testRatio)
	}
	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, nil, nil, errors.Wrapf(ErrTooFewRows, "%d rows with test ratio %v", n, testRatio)
	}

	indices := rand.New(rand.NewSource(seed)).Perm(n)
	XTest, YTest = Take(X, Y, indices[:nTest])
	XTrain, YTrain = Take(X, Y, indices[nTest:])
	return XTrain, XTest, YTrain, YTest, nil
}

// KFoldSplit deals a seeded permutation of n row indices into k folds.
func KFoldSplit(n, k int, seed int64) ([][]int, error) {
	if k < 2 || n < k {
		return nil, errors.Wrapf(ErrTooFewRows, "%d rows for %d folds", n, k)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	return folds, nil
}

// FoldComplement returns every index in [0, n) not in fold, in ascending order.
func FoldComplement(n int, fold []int) []int {
	in := make([]bool, n)
	for _, i := range fold {
		in[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := range n {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}
