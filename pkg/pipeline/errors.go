package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/model"
)

var (
	// ErrInvalidTargetColumn is returned when the target column is absent,
	// unset for a supervised task, or unusable for the task.
	ErrInvalidTargetColumn = errors.New("invalid target column")
	// ErrInvalidRequest covers other malformed requests: unknown task,
	// test size outside (0,1), or data too small to train on.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInternal matches every failure that is not the caller's fault.
	ErrInternal = errors.New("internal failure")
)

// Stage is a pipeline state. A StageError names the state the run was
// trying to reach.
type Stage string

const (
	StageValidated               Stage = "Validated"
	StageLoaded                  Stage = "Loaded"
	StageFeatureEncoded          Stage = "FeatureEncoded"
	StageSampled                 Stage = "Sampled"
	StageSplit                   Stage = "Split"
	StageTrained                 Stage = "Trained"
	StageEvaluated               Stage = "Evaluated"
	StageExplained               Stage = "Explained"
	StageVisualizationsRequested Stage = "VisualizationsRequested"
	StagePersisted               Stage = "Persisted"
	StageDone                    Stage = "Done"
)

// StageError reports the stage at which a run failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Cause supports github.com/pkg/errors.Cause.
func (e *StageError) Cause() error { return e.Err }

// Is makes every non-client failure match ErrInternal.
func (e *StageError) Is(target error) bool {
	return target == ErrInternal && !IsClientError(e.Err)
}

// IsClientError reports whether err was caused by the request rather than
// by the system.
func IsClientError(err error) bool {
	for _, c := range []error{data.ErrDatasetNotFound, ErrInvalidTargetColumn, model.ErrUnsupportedModel, ErrInvalidRequest} {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}

// StageOf returns the failing stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
