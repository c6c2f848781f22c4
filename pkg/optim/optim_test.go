package optim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.InDelta(t, 1, Sigmoid(800), 1e-12)
	assert.InDelta(t, 0, Sigmoid(-800), 1e-12)
	assert.False(t, math.IsNaN(Sigmoid(-1e6)))
}

func TestSGDStep(t *testing.T) {
	o := &SGD{LearningRate: 0.5, WeightDecay: 0.1}
	w := []float64{1, -2}
	o.Step(w, []float64{1, 1})
	assert.InDelta(t, 1-0.5*(1+0.1), w[0], 1e-12)
	assert.InDelta(t, -2-0.5*(1-0.2), w[1], 1e-12)

	b := 1.0
	o.StepScalar(&b, 2)
	assert.Equal(t, 0.0, b)
}

func TestBCEGradientSign(t *testing.T) {
	loss, grad := BCE([]float64{1, 0}, []float64{0.9, 0.9})
	assert.Greater(t, loss, 0.0)
	assert.Less(t, grad[0], 0.0)
	assert.Greater(t, grad[1], 0.0)
}

func TestHinge(t *testing.T) {
	assert.Equal(t, 0.0, Hinge(1, 2))
	assert.Equal(t, 2.0, Hinge(-1, 1))
}

func TestNewSGDHasNoDecay(t *testing.T) {
	o := NewSGD(0.1)
	w := []float64{2}
	o.Step(w, []float64{1})
	assert.InDelta(t, 1.9, w[0], 1e-12)
	assert.Zero(t, o.WeightDecay)
}
