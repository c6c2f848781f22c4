package model

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// DecisionTree is a CART tree. With Regression unset it splits on Gini
// impurity and leaves hold class probabilities aligned with Classes;
// otherwise it splits on variance and leaves hold the mean target.
type DecisionTree struct {
	MaxDepth        int // 0 => no limit
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
	RandomState     int64
	Regression      bool

	Classes   []float64
	Root      *Node
	NFeatures int
	// Gain holds the unnormalised impurity decrease credited to each feature.
	Gain []float64
}

// Node is a tree node. Exported so that fitted trees survive gob encoding.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x <= Threshold goes left
	Left      *Node
	Right     *Node
	Samples   int
	Value     []float64
}

// Option configures a DecisionTree.
type Option func(*DecisionTree)

func WithMaxDepth(d int) Option         { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option  { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) Option   { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithMaxFeatures(k int) Option      { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithRandomState(seed int64) Option { return func(t *DecisionTree) { t.RandomState = seed } }
func WithRegression() Option            { return func(t *DecisionTree) { t.Regression = true } }

// NewDecisionTree returns a classification tree unless WithRegression is given.
func NewDecisionTree(opts ...Option) *DecisionTree {
	t := &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	var classes []float64
	if !t.Regression {
		classes = uniqueSorted(y)
	}
	return t.fitIndices(X, y, idx, classes)
}

// fitIndices grows the tree on the rows named by idx, which may repeat.
// classes fixes the probability layout so that forest members agree.
func (t *DecisionTree) fitIndices(X [][]float64, y []float64, idx []int, classes []float64) error {
	if len(idx) == 0 {
		return errors.Wrap(ErrShape, "no rows to fit")
	}
	t.NFeatures = len(X[0])
	t.Classes = classes
	t.Gain = make([]float64, t.NFeatures)
	b := &treeBuilder{
		t:   t,
		X:   X,
		y:   y,
		rnd: rand.New(rand.NewSource(t.RandomState)),
	}
	if !t.Regression {
		b.classOf = make([]int, len(y))
		pos := make(map[float64]int, len(classes))
		for i, c := range classes {
			pos[c] = i
		}
		for i, v := range y {
			k, ok := pos[v]
			if !ok {
				k = -1
			}
			b.classOf[i] = k
		}
		for _, i := range idx {
			if b.classOf[i] < 0 {
				return errors.Errorf("dtree: label %v not among classes", y[i])
			}
		}
	}
	t.Root = b.build(idx, 0)
	return nil
}

// Predict returns class labels or regression values.
func (t *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if t.Root == nil {
		return nil, errors.New("dtree: not fitted")
	}
	if err := checkWidth(X, t.NFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		v := t.leaf(row).Value
		if t.Regression {
			out[i] = v[0]
		} else {
			out[i] = t.Classes[argmax(v)]
		}
	}
	return out, nil
}

// PredictProba returns per-class probabilities aligned with Classes.
func (t *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	if t.Root == nil || t.Regression {
		return nil, errors.New("dtree: no probabilities available")
	}
	if err := checkWidth(X, t.NFeatures); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = t.leaf(row).Value
	}
	return out, nil
}

func (t *DecisionTree) Score(X [][]float64, y []float64) (float64, error) {
	if t.Regression {
		return regressorScore(t, X, y)
	}
	return classifierScore(t, X, y)
}

// Importances returns the normalised impurity decrease per feature.
func (t *DecisionTree) Importances() ([]float64, bool) {
	if t.Root == nil {
		return nil, false
	}
	return normalise(t.Gain), true
}

func (t *DecisionTree) leaf(row []float64) *Node {
	n := t.Root
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

type treeBuilder struct {
	t       *DecisionTree
	X       [][]float64
	y       []float64
	classOf []int
	rnd     *rand.Rand
}

// splitResult is the best split found on a single feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	pos       int
	order     []int
}

type pair struct {
	v float64
	i int
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	t := b.t
	node := &Node{Samples: len(idx)}
	node.Value, node.Leaf = b.leafValue(idx)
	imp := b.impurity(idx)
	if node.Leaf || imp <= 1e-12 || len(idx) < t.MinSamplesSplit || len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) {
		node.Leaf = true
		return node
	}

	p := t.NFeatures
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		for i := 0; i < t.MaxFeatures; i++ {
			j := i + b.rnd.Intn(p-i)
			feats[i], feats[j] = feats[j], feats[i]
		}
		feats = feats[:t.MaxFeatures]
	}

	results := make(chan splitResult, len(feats))
	if len(idx) >= parallelSplitRows {
		var g parallel.Group
		for _, f := range feats {
			g.Go(func() { results <- b.bestSplit(idx, f, imp) })
		}
		g.Wait()
	} else {
		for _, f := range feats {
			results <- b.bestSplit(idx, f, imp)
		}
	}
	close(results)

	best := splitResult{feature: -1}
	for r := range results {
		if r.feature < 0 {
			continue
		}
		if best.feature < 0 || r.gain > best.gain || (r.gain == best.gain && r.feature < best.feature) {
			best = r
		}
	}
	if best.feature < 0 || best.gain <= 0 {
		node.Leaf = true
		return node
	}

	t.Gain[best.feature] += best.gain * float64(len(idx))
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = b.build(best.order[:best.pos], depth+1)
	node.Right = b.build(best.order[best.pos:], depth+1)
	node.Value = nil
	return node
}

// parallelSplitRows is the node size above which features are searched
// concurrently.
const parallelSplitRows = 2048

// leafValue computes a node's prediction. The boolean reports a pure
// classification node.
func (b *treeBuilder) leafValue(idx []int) ([]float64, bool) {
	if b.t.Regression {
		s := 0.0
		for _, i := range idx {
			s += b.y[i]
		}
		return []float64{s / float64(len(idx))}, false
	}
	counts := make([]float64, len(b.t.Classes))
	for _, i := range idx {
		counts[b.classOf[i]]++
	}
	nonzero := 0
	for k := range counts {
		if counts[k] > 0 {
			nonzero++
		}
		counts[k] /= float64(len(idx))
	}
	return counts, nonzero == 1
}

func (b *treeBuilder) impurity(idx []int) float64 {
	if b.t.Regression {
		s, ss := 0.0, 0.0
		for _, i := range idx {
			s += b.y[i]
			ss += b.y[i] * b.y[i]
		}
		n := float64(len(idx))
		return math.Max(ss/n-(s/n)*(s/n), 0)
	}
	counts := make([]int, len(b.t.Classes))
	for _, i := range idx {
		counts[b.classOf[i]]++
	}
	return gini(counts, len(idx))
}

// bestSplit scans the sorted values of feature f once, maintaining running
// statistics for the left partition.
func (b *treeBuilder) bestSplit(idx []int, f int, parent float64) splitResult {
	res := splitResult{feature: -1}
	ps := make([]pair, len(idx))
	for k, i := range idx {
		ps[k] = pair{b.X[i][f], i}
	}
	sort.Slice(ps, func(a, c int) bool { return ps[a].v < ps[c].v })
	if ps[0].v == ps[len(ps)-1].v {
		return res
	}

	n := len(ps)
	minLeaf := b.t.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}
	var (
		bestGain = 0.0
		bestPos  = -1
	)
	if b.t.Regression {
		totS, totSS := 0.0, 0.0
		for _, p := range ps {
			totS += b.y[p.i]
			totSS += b.y[p.i] * b.y[p.i]
		}
		ls, lss := 0.0, 0.0
		for k := 1; k < n; k++ {
			v := b.y[ps[k-1].i]
			ls += v
			lss += v * v
			if ps[k].v == ps[k-1].v || k < minLeaf || n-k < minLeaf {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			rs, rss := totS-ls, totSS-lss
			varL := math.Max(lss/nl-(ls/nl)*(ls/nl), 0)
			varR := math.Max(rss/nr-(rs/nr)*(rs/nr), 0)
			gain := parent - (nl*varL+nr*varR)/float64(n)
			if gain > bestGain {
				bestGain, bestPos = gain, k
			}
		}
	} else {
		nc := len(b.t.Classes)
		left := make([]int, nc)
		right := make([]int, nc)
		for _, p := range ps {
			right[b.classOf[p.i]]++
		}
		for k := 1; k < n; k++ {
			c := b.classOf[ps[k-1].i]
			left[c]++
			right[c]--
			if ps[k].v == ps[k-1].v || k < minLeaf || n-k < minLeaf {
				continue
			}
			gl, gr := gini(left, k), gini(right, n-k)
			gain := parent - (float64(k)*gl+float64(n-k)*gr)/float64(n)
			if gain > bestGain {
				bestGain, bestPos = gain, k
			}
		}
	}
	if bestPos < 0 {
		return res
	}
	order := make([]int, n)
	for k := range ps {
		order[k] = ps[k].i
	}
	thr := (ps[bestPos-1].v + ps[bestPos].v) / 2
	if thr >= ps[bestPos].v {
		thr = ps[bestPos-1].v
	}
	return splitResult{
		gain:      bestGain,
		feature:   f,
		threshold: thr,
		pos:       bestPos,
		order:     order,
	}
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		s -= p * p
	}
	return s
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// normalise scales v to sum to one. A zero vector is returned unchanged.
func normalise(v []float64) []float64 {
	out := make([]float64, len(v))
	s := 0.0
	for _, x := range v {
		s += x
	}
	if s == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / s
	}
	return out
}
