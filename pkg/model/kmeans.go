package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// KMeans partitions rows into K clusters with Lloyd iterations from a
// seeded k-means++ start. K is clamped to the number of rows.
type KMeans struct {
	K           int
	MaxIter     int
	Tol         float64
	RandomState int64

	Centroids [][]float64
	Inertia   float64
}

func NewKMeans(k, maxIter int) *KMeans {
	return &KMeans{K: k, MaxIter: maxIter, Tol: 1e-4}
}

func (m *KMeans) FitPredict(X [][]float64) ([]int, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Predict(X)
}

func (m *KMeans) Fit(X [][]float64) error {
	if err := checkXY(X, nil); err != nil {
		return err
	}
	if m.K < 1 {
		return errors.Errorf("kmeans: k must be positive, got %d", m.K)
	}
	n, p := len(X), len(X[0])
	k := min(m.K, n)

	rnd := rand.New(rand.NewSource(m.RandomState))
	m.Centroids = initCenters(X, k, rnd)
	assign := make([]int, n)
	dist := make([]float64, n)

	for it := 0; it < m.MaxIter; it++ {
		m.assign(X, assign, dist)

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, p)
		}
		for i, c := range assign {
			counts[c]++
			for j, v := range X[i] {
				sums[c][j] += v
			}
		}
		shift := 0.0
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			shift += euclidSquared(sums[c], m.Centroids[c])
			m.Centroids[c] = sums[c]
		}
		if shift <= m.Tol*m.Tol {
			break
		}
	}
	m.assign(X, assign, dist)
	m.Inertia = 0
	for _, d := range dist {
		m.Inertia += d
	}
	return nil
}

// assign writes the nearest centroid index and squared distance per row.
// Chunks are disjoint, so no locking is needed.
func (m *KMeans) assign(X [][]float64, assign []int, dist []float64) {
	parallel.ForChunks(len(X), func(s, e int) {
		for i := s; i < e; i++ {
			best, bestD := 0, math.MaxFloat64
			for c, ctr := range m.Centroids {
				if d := euclidSquared(X[i], ctr); d < bestD {
					best, bestD = c, d
				}
			}
			assign[i] = best
			dist[i] = bestD
		}
	})
}

// Predict labels rows by their nearest centroid.
func (m *KMeans) Predict(X [][]float64) ([]int, error) {
	if len(m.Centroids) == 0 {
		return nil, errors.New("kmeans: not fitted")
	}
	if err := checkWidth(X, len(m.Centroids[0])); err != nil {
		return nil, err
	}
	assign := make([]int, len(X))
	m.assign(X, assign, make([]float64, len(X)))
	return assign, nil
}

// initCenters is k-means++: each new centre is drawn with probability
// proportional to its squared distance from the nearest chosen centre.
func initCenters(X [][]float64, k int, rnd *rand.Rand) [][]float64 {
	n := len(X)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), X[rnd.Intn(n)]...))

	distSq := make([]float64, n)
	for i, x := range X {
		distSq[i] = euclidSquared(x, centers[0])
	}
	for len(centers) < k {
		total := 0.0
		for _, d := range distSq {
			total += d
		}
		next := rnd.Intn(n)
		if total > 0 {
			r := rnd.Float64() * total
			cum := 0.0
			for i, d := range distSq {
				cum += d
				if cum >= r && d > 0 {
					next = i
					break
				}
			}
		}
		c := append([]float64(nil), X[next]...)
		centers = append(centers, c)
		for i, x := range X {
			if d := euclidSquared(x, c); d < distSq[i] {
				distSq[i] = d
			}
		}
	}
	return centers
}
