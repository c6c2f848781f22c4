package model

import (
	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// Noise is the label DBSCAN gives to rows outside every cluster.
const Noise = -1

// DBSCAN is density-based clustering over Euclidean distance. A row is a
// core point when at least MinSamples rows, itself included, lie within Eps.
type DBSCAN struct {
	Eps        float64
	MinSamples int

	Labels []int
}

func NewDBSCAN(eps float64, minSamples int) *DBSCAN {
	return &DBSCAN{Eps: eps, MinSamples: minSamples}
}

func (m *DBSCAN) FitPredict(X [][]float64) ([]int, error) {
	if err := checkXY(X, nil); err != nil {
		return nil, err
	}
	if m.Eps <= 0 || m.MinSamples < 1 {
		return nil, errors.Errorf("dbscan: invalid eps=%v min_samples=%d", m.Eps, m.MinSamples)
	}
	n := len(X)
	eps2 := m.Eps * m.Eps

	core := make([]bool, n)
	parallel.ForEach(n, func(i int) {
		c := 0
		for j := range X {
			if euclidSquared(X[i], X[j]) <= eps2 {
				c++
				if c >= m.MinSamples {
					core[i] = true
					return
				}
			}
		}
	})

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)
	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] || !core[i] {
			continue
		}
		visited[i] = true
		labels[i] = cluster
		queue := []int{i}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for q := range X {
				if euclidSquared(X[p], X[q]) > eps2 {
					continue
				}
				if labels[q] == Noise {
					labels[q] = cluster
				}
				if !visited[q] && core[q] {
					visited[q] = true
					queue = append(queue, q)
				}
			}
		}
		cluster++
	}
	m.Labels = labels
	return labels, nil
}
