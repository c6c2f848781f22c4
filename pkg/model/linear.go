package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// LinearRegression is ordinary least squares. Coefficients are the minimum
// norm solution on centred data, so collinear one-hot blocks are tolerated.
type LinearRegression struct {
	Coef      []float64
	Intercept float64
	NFeatures int
}

// rcond is the relative singular value below which directions are treated
// as null.
const rcond = 1e-12

func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

func (m *LinearRegression) Fit(X [][]float64, y []float64) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	n, p := len(X), len(X[0])
	m.NFeatures = p
	m.Coef = make([]float64, p)

	xMean := make([]float64, p)
	for _, row := range X {
		floats.Add(xMean, row)
	}
	floats.Scale(1/float64(n), xMean)
	yMean := floats.Sum(y) / float64(n)
	m.Intercept = yMean
	if p == 0 {
		return nil
	}

	A := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			A.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if !svd.Factorize(A, mat.SVDThin) {
		return errors.New("linear: SVD did not converge")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return nil
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, b, rank)
	for j := 0; j < p; j++ {
		m.Coef[j] = beta.AtVec(j)
	}
	m.Intercept = yMean - floats.Dot(xMean, m.Coef)
	return nil
}

// Predict evaluates the fitted hyperplane, splitting rows across cores.
func (m *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if m.Coef == nil {
		return nil, errors.New("linear: not fitted")
	}
	if err := checkWidth(X, m.NFeatures); err != nil {
		return nil, err
	}
	pred := make([]float64, len(X))
	parallel.ForChunks(len(X), func(s, e int) {
		for i := s; i < e; i++ {
			pred[i] = m.Intercept + floats.Dot(m.Coef, X[i])
		}
	})
	return pred, nil
}

func (m *LinearRegression) Score(X [][]float64, y []float64) (float64, error) {
	return regressorScore(m, X, y)
}

// Importances reports coefficient magnitudes.
func (m *LinearRegression) Importances() ([]float64, bool) {
	if m.Coef == nil {
		return nil, false
	}
	out := make([]float64, len(m.Coef))
	for j, c := range m.Coef {
		out[j] = math.Abs(c)
	}
	return out, true
}
