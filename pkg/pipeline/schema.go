package pipeline

import (
	"github.com/aadhilajas/ML-Studio/pkg/evaluate"
	"github.com/aadhilajas/ML-Studio/pkg/model"
	"github.com/aadhilajas/ML-Studio/pkg/viz"
)

// Request describes one training run.
type Request struct {
	DatasetName  string     `json:"dataset_name"`
	TaskType     model.Task `json:"task_type"`
	ModelName    string     `json:"model_name"`
	TargetColumn string     `json:"target_column,omitempty"`
	// TestSize is the held-out fraction, in (0, 1). Ignored for clustering.
	TestSize    float64 `json:"test_size"`
	RandomState int64   `json:"random_state"`
	UseScaling  bool    `json:"use_scaling"`
	// UseCrossValidation adds k-fold scores over the training partition.
	UseCrossValidation bool `json:"use_cross_validation"`
	// Params overrides model defaults; nil keeps them.
	Params model.Params `json:"params,omitempty"`
}

// NewRequest fills the defaults a client would otherwise omit.
func NewRequest(dataset string, task model.Task, modelName, target string) Request {
	return Request{
		DatasetName:  dataset,
		TaskType:     task,
		ModelName:    modelName,
		TargetColumn: target,
		TestSize:     0.2,
		RandomState:  42,
		UseScaling:   true,
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Metrics        evaluate.Metrics `json:"metrics"`
	Explanation    string           `json:"explanation"`
	Visualizations viz.Set          `json:"visualizations"`
	ModelID        string           `json:"model_id"`
}
