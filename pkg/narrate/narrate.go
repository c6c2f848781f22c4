// Package narrate turns a metrics map into a plain-language explanation.
package narrate

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aadhilajas/ML-Studio/pkg/evaluate"
	"github.com/aadhilajas/ML-Studio/pkg/model"
)

// OverfitWarning is appended when the train score exceeds the test score by
// more than the overfit gap.
const OverfitWarning = " Warning: The model shows signs of overfitting (high train score, low test score)."

// BiasNote is appended when F1 trails accuracy by more than the bias gap.
const BiasNote = " Note: The F1 score is notably lower than accuracy, suggesting the model may be biased towards the majority class (imbalanced dataset)."

// Undefined stands in for a metric value that is NaN or infinite.
const Undefined = "undefined"

// Thresholds are the bucket bounds. Every comparison is strict, so a value
// equal to a bound falls into the lower bucket.
type Thresholds struct {
	AccuracyExcellent  float64 `yaml:"accuracy_excellent"`
	AccuracyStrong     float64 `yaml:"accuracy_strong"`
	AccuracyDecent     float64 `yaml:"accuracy_decent"`
	R2Strong           float64 `yaml:"r2_strong"`
	R2Moderate         float64 `yaml:"r2_moderate"`
	SilhouetteDense    float64 `yaml:"silhouette_dense"`
	SilhouetteDistinct float64 `yaml:"silhouette_distinct"`
	BiasGap            float64 `yaml:"bias_gap"`
	OverfitGap         float64 `yaml:"overfit_gap"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AccuracyExcellent:  0.90,
		AccuracyStrong:     0.80,
		AccuracyDecent:     0.70,
		R2Strong:           0.8,
		R2Moderate:         0.5,
		SilhouetteDense:    0.7,
		SilhouetteDistinct: 0.5,
		BiasGap:            0.15,
		OverfitGap:         0.15,
	}
}

// Narrator explains metrics. It holds no state beyond its thresholds and is
// safe for concurrent use.
type Narrator struct {
	T Thresholds
}

func New(t Thresholds) *Narrator { return &Narrator{T: t} }

// Explain renders the explanation for a task. Missing metrics read as 0.
func (n *Narrator) Explain(m evaluate.Metrics, task model.Task) string {
	var b strings.Builder
	switch task {
	case model.Classification:
		acc, f1 := m[evaluate.Accuracy], m[evaluate.F1]
		b.WriteString("The model correctly predicts outcomes " + percent(acc) + " of the time. ")
		switch {
		case acc > n.T.AccuracyExcellent:
			b.WriteString("This is excellent performance, suitable for critical applications.")
		case acc > n.T.AccuracyStrong:
			b.WriteString("This indicates strong performance and is reliable.")
		case acc > n.T.AccuracyDecent:
			b.WriteString("This is a decent performance, but there is room for optimization.")
		default:
			b.WriteString("The model is struggling to generalize. Consider feature engineering or trying a different model.")
		}
		if f1 < acc-n.T.BiasGap {
			b.WriteString(BiasNote)
		}
	case model.Regression:
		r2 := m[evaluate.R2]
		b.WriteString("The model explains " + percent(r2) + " of the variance in the target variable. ")
		switch {
		case r2 > n.T.R2Strong:
			b.WriteString("It captures the underlying trends very well.")
		case r2 > n.T.R2Moderate:
			b.WriteString("It has moderate predictive power but misses some patterns.")
		default:
			b.WriteString("The model fails to capture the significant trends. Try non-linear models or adding more features.")
		}
	case model.Clustering:
		sil := m[evaluate.Silhouette]
		b.WriteString("The Silhouette Score is " + fixed(sil, 2) + ". ")
		switch {
		case sil > n.T.SilhouetteDense:
			b.WriteString("The clusters are dense and well-separated.")
		case sil > n.T.SilhouetteDistinct:
			b.WriteString("The clusters are reasonably distinct.")
		default:
			b.WriteString("The clusters are overlapping or not well-defined. The data might not have clear groupings.")
		}
	}
	if task.Supervised() && m[evaluate.TrainScore] > m[evaluate.TestScore]+n.T.OverfitGap {
		b.WriteString(OverfitWarning)
	}
	return b.String()
}

// Explain uses the default thresholds.
func Explain(m evaluate.Metrics, task model.Task) string {
	return New(DefaultThresholds()).Explain(m, task)
}

// percent formats a fraction as a percentage with one decimal, rounding
// half to even.
func percent(v float64) string {
	if !finite(v) {
		return Undefined
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixedBank(1) + "%"
}

func fixed(v float64, places int32) string {
	if !finite(v) {
		return Undefined
	}
	return decimal.NewFromFloat(v).StringFixedBank(places)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
