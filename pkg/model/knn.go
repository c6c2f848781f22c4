package model

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// KNN is a k-nearest-neighbours classifier with uniform votes.
// Ties go to the smallest class label.
type KNN struct {
	K int
	X [][]float64
	Y []float64
}

func NewKNN(k int) *KNN { return &KNN{K: k} }

// Fit stores the training rows.
func (m *KNN) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if m.K < 1 {
		return errors.Errorf("knn: k must be positive, got %d", m.K)
	}
	m.X = X
	m.Y = y
	return nil
}

func (m *KNN) Predict(X [][]float64) ([]float64, error) {
	if m.X == nil {
		return nil, errors.New("knn: not fitted")
	}
	if err := checkWidth(X, len(m.X[0])); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	parallel.ForChunks(len(X), func(s, e int) {
		for i := s; i < e; i++ {
			out[i] = m.predictSingle(X[i])
		}
	})
	return out, nil
}

func (m *KNN) Score(X [][]float64, y []float64) (float64, error) {
	return classifierScore(m, X, y)
}

type neighbour struct {
	d float64
	v float64
}

// predictSingle keeps a small sorted slice of the k closest rows seen so far.
func (m *KNN) predictSingle(xi []float64) float64 {
	k := min(m.K, len(m.X))
	nbrs := make([]neighbour, 0, k)
	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		if len(nbrs) == k {
			if d >= nbrs[k-1].d {
				continue
			}
			nbrs = nbrs[:k-1]
		}
		pos := sort.Search(len(nbrs), func(a int) bool { return nbrs[a].d > d })
		nbrs = append(nbrs, neighbour{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = neighbour{d: d, v: m.Y[j]}
	}

	votes := make(map[float64]int, k)
	for _, n := range nbrs {
		votes[n.v]++
	}
	best, bestCount := 0.0, -1
	for label, c := range votes {
		if c > bestCount || (c == bestCount && label < best) {
			best, bestCount = label, c
		}
	}
	return best
}
