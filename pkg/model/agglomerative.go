package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// Agglomerative is bottom-up Ward clustering cut at NClusters. Merges are
// found with the nearest-neighbour chain over cluster centroids, which keeps
// memory linear in the number of rows.
type Agglomerative struct {
	NClusters int

	Labels []int
	Merges []Merge
}

// Merge records two clusters joined at a Ward distance. Ids below the row
// count are single rows; each merge creates id rows+position.
type Merge struct {
	A, B     int
	Distance float64
}

func NewAgglomerative(k int) *Agglomerative { return &Agglomerative{NClusters: k} }

type wardCluster struct {
	centroid []float64
	size     float64
}

// parallelChainRows is the active-cluster count above which the
// nearest-neighbour scan is split across cores.
const parallelChainRows = 4096

func (m *Agglomerative) FitPredict(X [][]float64) ([]int, error) {
	if err := checkXY(X, nil); err != nil {
		return nil, err
	}
	if m.NClusters < 1 {
		return nil, errors.Errorf("agglomerative: n_clusters must be positive, got %d", m.NClusters)
	}
	n := len(X)
	clusters := make([]*wardCluster, n, 2*n)
	active := make([]int, n)
	for i, row := range X {
		clusters[i] = &wardCluster{centroid: append([]float64(nil), row...), size: 1}
		active[i] = i
	}
	m.Merges = m.Merges[:0]

	chain := make([]int, 0, n)
	for len(active) > 1 {
		if len(chain) == 0 {
			chain = append(chain, active[0])
		}
		top := chain[len(chain)-1]
		prev := -1
		if len(chain) > 1 {
			prev = chain[len(chain)-2]
		}
		nn, d := nearestWard(clusters, active, top, prev)
		if nn != prev {
			chain = append(chain, nn)
			continue
		}

		chain = chain[:len(chain)-2]
		a, b := clusters[top], clusters[prev]
		size := a.size + b.size
		c := make([]float64, len(a.centroid))
		for j := range c {
			c[j] = (a.centroid[j]*a.size + b.centroid[j]*b.size) / size
		}
		id := len(clusters)
		clusters = append(clusters, &wardCluster{centroid: c, size: size})
		clusters[top], clusters[prev] = nil, nil
		m.Merges = append(m.Merges, Merge{A: min(top, prev), B: max(top, prev), Distance: d})

		kept := active[:0]
		for _, x := range active {
			if x != top && x != prev {
				kept = append(kept, x)
			}
		}
		active = append(kept, id)
	}

	m.Labels = cutTree(n, m.Merges, min(m.NClusters, n))
	return m.Labels, nil
}

// nearestWard returns the active cluster closest to top. prev wins ties so
// that the chain always terminates.
func nearestWard(clusters []*wardCluster, active []int, top, prev int) (int, float64) {
	t := clusters[top]
	dist := func(id int) float64 {
		o := clusters[id]
		return math.Sqrt(2 * t.size * o.size / (t.size + o.size) * euclidSquared(t.centroid, o.centroid))
	}
	scan := func(ids []int) (int, float64) {
		best, bestD := -1, math.Inf(1)
		for _, id := range ids {
			if id == top {
				continue
			}
			d := dist(id)
			if d < bestD || (d == bestD && id == prev) {
				best, bestD = id, d
			}
		}
		return best, bestD
	}
	if len(active) < parallelChainRows {
		best, bestD := scan(active)
		if prev >= 0 && dist(prev) == bestD {
			return prev, bestD
		}
		return best, bestD
	}

	type cand struct {
		id int
		d  float64
	}
	parts := make(chan cand, parallel.Workers())
	parallel.ForChunks(len(active), func(s, e int) {
		id, d := scan(active[s:e])
		parts <- cand{id, d}
	})
	close(parts)
	best := cand{-1, math.Inf(1)}
	for c := range parts {
		if c.id >= 0 && (c.d < best.d || (c.d == best.d && c.id < best.id)) {
			best = c
		}
	}
	if prev >= 0 && dist(prev) == best.d {
		return prev, best.d
	}
	return best.id, best.d
}

// cutTree applies the n-k smallest merges and labels rows by component,
// numbering clusters in order of their first row.
func cutTree(n int, merges []Merge, k int) []int {
	order := make([]int, len(merges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return merges[order[a]].Distance < merges[order[b]].Distance })

	parent := make([]int, n+len(merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, mi := range order[:n-k] {
		mg := merges[mi]
		id := n + mi
		parent[find(mg.A)] = id
		parent[find(mg.B)] = id
	}

	labels := make([]int, n)
	seen := map[int]int{}
	for i := 0; i < n; i++ {
		r := find(i)
		l, ok := seen[r]
		if !ok {
			l = len(seen)
			seen[r] = l
		}
		labels[i] = l
	}
	return labels
}
