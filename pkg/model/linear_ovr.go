package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/aadhilajas/ML-Studio/pkg/parallel"
	"github.com/aadhilajas/ML-Studio/pkg/stats"
)

// LinearOvR is the fitted state shared by the linear classifiers: one
// hyperplane per class (a single one for binary problems) over internally
// standardised features.
type LinearOvR struct {
	Classes   []float64
	W         [][]float64
	B         []float64
	Scaler    *stats.StandardScaler
	NFeatures int
}

// binaryProblem is one positive-vs-rest target vector over the scaled rows.
type binaryProblem struct {
	k      int
	target []float64 // 1 for the positive class, 0 otherwise
}

// setup scales X and returns one binary problem per hyperplane.
func (l *LinearOvR) setup(X [][]float64, y []float64) ([][]float64, []binaryProblem, error) {
	if err := checkXY(X, y); err != nil {
		return nil, nil, err
	}
	l.NFeatures = len(X[0])
	l.Classes = uniqueSorted(y)
	l.Scaler = stats.NewStandardScaler()
	Xs, err := l.Scaler.FitTransform(X)
	if err != nil {
		return nil, nil, err
	}

	var positives []float64
	switch len(l.Classes) {
	case 1:
		positives = nil
	case 2:
		positives = l.Classes[1:]
	default:
		positives = l.Classes
	}
	l.W = make([][]float64, len(positives))
	l.B = make([]float64, len(positives))
	probs := make([]binaryProblem, len(positives))
	for k, c := range positives {
		l.W[k] = make([]float64, l.NFeatures)
		t := make([]float64, len(y))
		for i, v := range y {
			if v == c {
				t[i] = 1
			}
		}
		probs[k] = binaryProblem{k: k, target: t}
	}
	return Xs, probs, nil
}

func (l *LinearOvR) decision(X [][]float64) ([][]float64, error) {
	if l.Scaler == nil {
		return nil, errors.New("linear classifier: not fitted")
	}
	if err := checkWidth(X, l.NFeatures); err != nil {
		return nil, err
	}
	Xs := l.Scaler.Transform(X)
	out := make([][]float64, len(Xs))
	parallel.ForChunks(len(Xs), func(s, e int) {
		for i := s; i < e; i++ {
			row := make([]float64, len(l.W))
			for k, w := range l.W {
				row[k] = floats.Dot(w, Xs[i]) + l.B[k]
			}
			out[i] = row
		}
	})
	return out, nil
}

func (l *LinearOvR) predict(X [][]float64) ([]float64, error) {
	dec, err := l.decision(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dec))
	for i, d := range dec {
		switch len(l.W) {
		case 0:
			out[i] = l.Classes[0]
		case 1:
			if d[0] >= 0 {
				out[i] = l.Classes[1]
			} else {
				out[i] = l.Classes[0]
			}
		default:
			out[i] = l.Classes[argmax(d)]
		}
	}
	return out, nil
}

// importances is the mean absolute coefficient per feature, expressed in the
// caller's feature units.
func (l *LinearOvR) importances() ([]float64, bool) {
	if len(l.W) == 0 {
		return nil, false
	}
	out := make([]float64, l.NFeatures)
	for _, w := range l.W {
		for j, v := range w {
			out[j] += math.Abs(v / l.Scaler.Std[j])
		}
	}
	floats.Scale(1/float64(len(l.W)), out)
	return out, true
}
