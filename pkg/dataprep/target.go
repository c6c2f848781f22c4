package dataprep

import (
	"math"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/model"
)

var (
	// ErrMissingTarget is returned when the target column has missing entries.
	ErrMissingTarget = errors.New("dataprep: target column has missing values")
	// ErrNonNumericTarget is returned for a regression target that is not numeric.
	ErrNonNumericTarget = errors.New("dataprep: regression target must be numeric")
	// ErrNonFiniteTarget is returned for a regression target holding ±Inf.
	ErrNonFiniteTarget = errors.New("dataprep: regression target has infinite values")
)

// Target is an encoded target vector. Classes decodes classification codes
// and is nil for regression.
type Target struct {
	Y       []float64
	Classes []string
}

// EncodeTarget converts the target column for a supervised task. Classification
// labels become first-appearance integer codes; regression values pass through.
func EncodeTarget(col *data.Column, task model.Task) (Target, error) {
	if n := col.NullCount(); n > 0 {
		return Target{}, errors.Wrapf(ErrMissingTarget, "column %q has %d missing", col.Name, n)
	}
	switch task {
	case model.Classification:
		codes, classes := LabelEncode(col)
		y := make([]float64, len(codes))
		for i, c := range codes {
			y[i] = float64(c)
		}
		return Target{Y: y, Classes: classes}, nil
	case model.Regression:
		if col.Kind != data.Numeric {
			return Target{}, errors.Wrapf(ErrNonNumericTarget, "column %q", col.Name)
		}
		for i, v := range col.Numbers {
			if math.IsInf(v, 0) {
				return Target{}, errors.Wrapf(ErrNonFiniteTarget, "column %q row %d", col.Name, i)
			}
		}
		return Target{Y: append([]float64(nil), col.Numbers...)}, nil
	case model.Clustering:
		return Target{}, errors.Errorf("dataprep: clustering has no target")
	}
	return Target{}, errors.Wrapf(model.ErrUnknownTask, "%v", task)
}
