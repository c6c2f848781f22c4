package model

import (
	"math"

	"github.com/aadhilajas/ML-Studio/pkg/optim"
	"github.com/aadhilajas/ML-Studio/pkg/parallel"
)

// LogisticRegression is an L2-regularised one-vs-rest logistic classifier
// trained by full-batch gradient descent.
type LogisticRegression struct {
	C       float64 // inverse regularisation strength
	Lr      float64
	MaxIter int
	Tol     float64

	LinearOvR
}

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1, Lr: 0.1, MaxIter: 1000, Tol: 1e-4}
}

func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	Xs, probs, err := m.setup(X, y)
	if err != nil {
		return err
	}
	decay := 0.0
	if m.C > 0 {
		decay = 1 / (m.C * float64(len(Xs)))
	}
	var g parallel.Group
	for _, pr := range probs {
		g.Go(func() { m.descend(Xs, pr, decay) })
	}
	g.Wait()
	return nil
}

func (m *LogisticRegression) descend(Xs [][]float64, pr binaryProblem, decay float64) {
	w := m.W[pr.k]
	b := &m.B[pr.k]
	opt := optim.NewSGD(m.Lr)
	opt.WeightDecay = decay
	p := make([]float64, len(Xs))
	for it := 0; it < m.MaxIter; it++ {
		parallel.ForChunks(len(Xs), func(s, e int) {
			for i := s; i < e; i++ {
				z := *b
				for j, v := range Xs[i] {
					z += w[j] * v
				}
				p[i] = optim.Sigmoid(z)
			}
		})
		_, dz := optim.BCE(pr.target, p)
		gW := make([]float64, len(w))
		gb := 0.0
		for i, row := range Xs {
			d := dz[i]
			if d == 0 {
				continue
			}
			for j, v := range row {
				gW[j] += d * v
			}
			gb += d
		}
		worst := math.Abs(gb)
		for j := range gW {
			worst = math.Max(worst, math.Abs(gW[j]+decay*w[j]))
		}
		if worst < m.Tol {
			return
		}
		opt.Step(w, gW)
		opt.StepScalar(b, gb)
	}
}

func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) { return m.predict(X) }

func (m *LogisticRegression) Score(X [][]float64, y []float64) (float64, error) {
	return classifierScore(m, X, y)
}

func (m *LogisticRegression) Importances() ([]float64, bool) { return m.importances() }
