package optim

import "math"

// BCE returns the binary cross-entropy of probabilities p against 0/1 targets
// and its gradient with respect to the pre-sigmoid logits, averaged over samples.
func BCE(yTrue, p []float64) (float64, []float64) {
	n := len(yTrue)
	s := 0.0
	grad := make([]float64, n)
	for i := range n {
		q := math.Min(math.Max(p[i], 1e-12), 1-1e-12)
		y := yTrue[i]
		s += -(y*math.Log(q) + (1-y)*math.Log(1-q))
		grad[i] = (p[i] - y) / float64(n)
	}
	return s / float64(n), grad
}

// Hinge returns max(0, 1 - y*f) for a label y in {-1, +1} and a margin f.
func Hinge(y, f float64) float64 {
	return math.Max(0, 1-y*f)
}
