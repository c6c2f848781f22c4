package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrShape is returned when inputs disagree in length or width.
var ErrShape = errors.New("model: shape mismatch")

func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

// R2 is the coefficient of determination. For a constant target it is 1 when
// the predictions are exact and 0 otherwise.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	m := 0.0
	for _, v := range yTrue {
		m += v
	}
	m /= float64(len(yTrue))
	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - m
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// Accuracy is the fraction of exact matches.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

func checkXY(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.Wrap(ErrShape, "empty X")
	}
	if y != nil && len(y) != len(X) {
		return errors.Wrapf(ErrShape, "%d rows but %d targets", len(X), len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.Wrapf(ErrShape, "row %d has %d features, want %d", i, len(X[i]), p)
		}
	}
	return nil
}

func checkWidth(X [][]float64, p int) error {
	for i := range X {
		if len(X[i]) != p {
			return errors.Wrapf(ErrShape, "row %d has %d features, model expects %d", i, len(X[i]), p)
		}
	}
	return nil
}

func classifierScore(m Supervised, X [][]float64, y []float64) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return Accuracy(y, pred), nil
}

func regressorScore(m Supervised, X [][]float64, y []float64) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return R2(y, pred), nil
}

// uniqueSorted returns the distinct values of y in ascending order.
func uniqueSorted(y []float64) []float64 {
	seen := map[float64]struct{}{}
	var out []float64
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// euclidSquared is the squared Euclidean distance.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
