package optim

// SGD is a plain gradient descent optimizer with a fixed learning rate and
// optional L2 weight decay.
type SGD struct {
	LearningRate float64
	WeightDecay  float64
}

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

// Step updates weights in place: w -= lr * (g + decay*w).
func (o *SGD) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * (grads[i] + o.WeightDecay*weights[i])
	}
}

// StepScalar updates a single unregularised parameter such as a bias.
func (o *SGD) StepScalar(w *float64, grad float64) {
	*w -= o.LearningRate * grad
}
