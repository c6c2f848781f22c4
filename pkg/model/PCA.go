package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// PCA projects rows onto their top K principal directions. Each component's
// sign is fixed so that its largest loading is positive.
type PCA struct {
	K          int
	Means      []float64
	Components [][]float64 // K x p unit vectors
	Explained  []float64   // component variances
}

func NewPCA(k int) *PCA { return &PCA{K: k} }

func (pca *PCA) Fit(X [][]float64) error {
	if err := checkXY(X, nil); err != nil {
		return err
	}
	n, d := len(X), len(X[0])
	if n < 2 || d == 0 {
		return errors.Errorf("pca: need at least 2 rows and 1 feature, got %dx%d", n, d)
	}
	k := min(pca.K, d, n)

	A := mat.NewDense(n, d, nil)
	for i, row := range X {
		A.SetRow(i, row)
	}
	pca.Means = make([]float64, d)
	for j := 0; j < d; j++ {
		pca.Means[j] = stat.Mean(mat.Col(nil, j, A), nil)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(A, nil) {
		return errors.New("pca: decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	pca.Components = make([][]float64, k)
	pca.Explained = make([]float64, k)
	for c := 0; c < k; c++ {
		v := mat.Col(nil, c, &vecs)
		big := 0
		for j := range v {
			if math.Abs(v[j]) > math.Abs(v[big]) {
				big = j
			}
		}
		if v[big] < 0 {
			for j := range v {
				v[j] = -v[j]
			}
		}
		pca.Components[c] = v
		pca.Explained[c] = vars[c]
	}
	return nil
}

// Transform centres X on the training means and projects it.
func (pca *PCA) Transform(X [][]float64) ([][]float64, error) {
	if pca.Components == nil {
		return nil, errors.New("pca: not fitted")
	}
	if err := checkWidth(X, len(pca.Means)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	parallel.ForChunks(len(X), func(s, e int) {
		for i := s; i < e; i++ {
			t := make([]float64, len(pca.Components))
			for c, comp := range pca.Components {
				for j, v := range X[i] {
					t[c] += (v - pca.Means[j]) * comp[j]
				}
			}
			out[i] = t
		}
	})
	return out, nil
}

func (pca *PCA) FitTransform(X [][]float64) ([][]float64, error) {
	if err := pca.Fit(X); err != nil {
		return nil, err
	}
	return pca.Transform(X)
}
