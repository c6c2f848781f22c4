package model

import (
	"math/rand"

	"github.com/aadhilajas/ML-Studio/pkg/optim"
	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// SVM is a linear support vector classifier trained with the Pegasos
// stochastic sub-gradient method, one-vs-rest for more than two classes.
// The bias is learned as the weight of a constant feature.
type SVM struct {
	C           float64
	Epochs      int
	RandomState int64

	LinearOvR
}

func NewSVM() *SVM { return &SVM{C: 1, Epochs: 50} }

func (m *SVM) Fit(X [][]float64, y []float64) error {
	Xs, probs, err := m.setup(X, y)
	if err != nil {
		return err
	}
	var g parallel.Group
	for _, pr := range probs {
		g.Go(func() { m.pegasos(Xs, pr) })
	}
	g.Wait()
	return nil
}

func (m *SVM) pegasos(Xs [][]float64, pr binaryProblem) {
	n := len(Xs)
	lambda := 1 / (m.C * float64(n))
	w := m.W[pr.k]
	b := 0.0
	r := rand.New(rand.NewSource(m.RandomState + int64(pr.k)))
	t := 0
	for ep := 0; ep < m.Epochs; ep++ {
		for _, i := range r.Perm(n) {
			t++
			eta := 1 / (lambda * float64(t))
			yi := 2*pr.target[i] - 1
			f := b
			for j, v := range Xs[i] {
				f += w[j] * v
			}
			shrink := 1 - eta*lambda
			for j := range w {
				w[j] *= shrink
			}
			b *= shrink
			if optim.Hinge(yi, f) > 0 {
				for j, v := range Xs[i] {
					w[j] += eta * yi * v
				}
				b += eta * yi
			}
		}
	}
	m.B[pr.k] = b
}

func (m *SVM) Predict(X [][]float64) ([]float64, error) { return m.predict(X) }

func (m *SVM) Score(X [][]float64, y []float64) (float64, error) {
	return classifierScore(m, X, y)
}

func (m *SVM) Importances() ([]float64, bool) { return m.importances() }
