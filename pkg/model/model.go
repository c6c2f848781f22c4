// Package model holds the learning algorithms and the registry that builds
// them by task type and name.
package model

// Supervised is a model trained against a target vector. Classification
// targets are integer class codes stored as float64.
type Supervised interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
	// Score is the model's native quality measure: accuracy for classifiers,
	// R² for regressors.
	Score(X [][]float64, y []float64) (float64, error)
}

// Unsupervised is a clustering model that labels the rows it is fitted on.
type Unsupervised interface {
	FitPredict(X [][]float64) ([]int, error)
}

// Importancer is implemented by models that can rank features. The boolean is
// false when the model has nothing to report, which is not an error.
type Importancer interface {
	Importances() ([]float64, bool)
}

// Estimator is an untrained model tagged by task. Exactly one of Supervised
// and Unsupervised is set, matching Task.
type Estimator struct {
	Task         Task
	Name         string
	Supervised   Supervised
	Unsupervised Unsupervised
}

// Model returns the underlying model value.
func (e Estimator) Model() any {
	if e.Supervised != nil {
		return e.Supervised
	}
	return e.Unsupervised
}

// Importances probes the underlying model for a feature ranking.
func (e Estimator) Importances() ([]float64, bool) {
	if imp, ok := e.Model().(Importancer); ok {
		return imp.Importances()
	}
	return nil, false
}
