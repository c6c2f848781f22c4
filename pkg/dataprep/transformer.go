// Package dataprep turns raw dataset columns into a numeric feature matrix and
// a target vector.
package dataprep

import (
	"math"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/stats"
)

// ErrFeatureShape reports a feature-name vector that does not line up with
// the encoded matrix. It is an internal invariant violation.
var ErrFeatureShape = errors.New("dataprep: feature names do not match matrix columns")

// FallbackSuffix names the single placeholder column emitted for a categorical
// column whose encoder learned no categories (only possible on zero rows).
const FallbackSuffix = "_encoded"

// ErrNonFiniteFeature reports a numeric feature cell holding ±Inf. NaN is
// read as missing and imputed instead.
var ErrNonFiniteFeature = errors.New("dataprep: feature column has infinite values")

type numericStep struct {
	name    string
	imputer MeanImputer
}

type categoricalStep struct {
	name     string
	imputer  ModeImputer
	encoder  OneHotEncoder
	fallback bool
}

// FeatureTransformer imputes, optionally scales, and one-hot encodes feature
// columns. Numeric columns come first in their original order, followed by
// the indicator columns of each categorical column.
type FeatureTransformer struct {
	Scale bool

	numeric     []numericStep
	categorical []categoricalStep
	scaler      *stats.StandardScaler
	names       []string
}

func NewFeatureTransformer(scale bool) *FeatureTransformer {
	return &FeatureTransformer{Scale: scale}
}

// FitTransform fits on every column of ds except target (which may be empty)
// and returns the encoded matrix with its feature names.
func (t *FeatureTransformer) FitTransform(ds *data.Dataset, target string) ([][]float64, []string, error) {
	cols := ds.Without(target)
	if err := t.Fit(cols); err != nil {
		return nil, nil, err
	}
	X, err := t.Transform(cols)
	if err != nil {
		return nil, nil, err
	}
	return X, t.FeatureNames(), nil
}

// Fit learns imputation values, scaling parameters and category sets. The
// partition into numeric and categorical columns uses the column kind only.
func (t *FeatureTransformer) Fit(cols []data.Column) error {
	t.numeric, t.categorical, t.names, t.scaler = nil, nil, nil, nil

	for i := range cols {
		col := &cols[i]
		switch col.Kind {
		case data.Numeric:
			if err := checkFinite(col); err != nil {
				return err
			}
			step := numericStep{name: col.Name}
			step.imputer.Fit(col)
			t.numeric = append(t.numeric, step)
			t.names = append(t.names, col.Name)
		case data.Categorical:
		default:
			return errors.Errorf("dataprep: column %q has unknown kind %d", col.Name, col.Kind)
		}
	}
	for i := range cols {
		col := &cols[i]
		if col.Kind != data.Categorical {
			continue
		}
		step := categoricalStep{name: col.Name}
		step.imputer.Fit(col)
		step.encoder.Fit(step.imputer.Transform(col))
		if step.encoder.Width() == 0 {
			step.fallback = true
			t.names = append(t.names, col.Name+FallbackSuffix)
		} else {
			for _, c := range step.encoder.Categories {
				t.names = append(t.names, col.Name+"_"+c)
			}
		}
		t.categorical = append(t.categorical, step)
	}

	if t.Scale && len(t.numeric) > 0 {
		imputed, err := t.imputeNumeric(cols)
		if err != nil {
			return err
		}
		if len(imputed) > 0 {
			t.scaler = stats.NewStandardScaler()
			if err := t.scaler.Fit(imputed); err != nil {
				return err
			}
		}
	}
	return nil
}

// Transform encodes cols with the fitted state. Columns are matched by name.
func (t *FeatureTransformer) Transform(cols []data.Column) ([][]float64, error) {
	byName := make(map[string]*data.Column, len(cols))
	rows := 0
	for i := range cols {
		byName[cols[i].Name] = &cols[i]
		rows = cols[i].Len()
	}

	numeric, err := t.imputeNumeric(cols)
	if err != nil {
		return nil, err
	}
	if t.scaler != nil {
		numeric = t.scaler.Transform(numeric)
	}

	width := len(t.names)
	X := make([][]float64, rows)
	for r := range X {
		X[r] = make([]float64, width)
		if numeric != nil {
			copy(X[r], numeric[r])
		}
	}

	offset := len(t.numeric)
	for _, step := range t.categorical {
		col, ok := byName[step.name]
		if !ok {
			return nil, errors.Errorf("dataprep: column %q missing at transform", step.name)
		}
		if step.fallback {
			offset++
			continue
		}
		values := step.imputer.Transform(col)
		w := step.encoder.Width()
		for r, v := range values {
			step.encoder.EncodeInto(X[r][offset:offset+w], v)
		}
		offset += w
	}

	if offset != width {
		return nil, errors.Wrapf(ErrFeatureShape, "%d names, %d columns", width, offset)
	}
	return X, nil
}

// FeatureNames returns one name per encoded column.
func (t *FeatureTransformer) FeatureNames() []string {
	return append([]string(nil), t.names...)
}

// imputeNumeric returns the imputed numeric block as rows, or nil when there
// are no numeric columns.
func (t *FeatureTransformer) imputeNumeric(cols []data.Column) ([][]float64, error) {
	if len(t.numeric) == 0 {
		return nil, nil
	}
	byName := make(map[string]*data.Column, len(cols))
	for i := range cols {
		byName[cols[i].Name] = &cols[i]
	}
	var out [][]float64
	for j, step := range t.numeric {
		col, ok := byName[step.name]
		if !ok {
			return nil, errors.Errorf("dataprep: column %q missing at transform", step.name)
		}
		values := step.imputer.Transform(col)
		if out == nil {
			out = make([][]float64, len(values))
			for r := range out {
				out[r] = make([]float64, len(t.numeric))
			}
		}
		for r, v := range values {
			out[r][j] = v
		}
	}
	return out, nil
}

func checkFinite(col *data.Column) error {
	for i, v := range col.Numbers {
		if math.IsInf(v, 0) {
			return errors.Wrapf(ErrNonFiniteFeature, "column %q row %d", col.Name, i)
		}
	}
	return nil
}
