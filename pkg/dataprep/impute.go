package dataprep

import (
	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/stats"
)

// UnknownCategory fills a categorical column that has no observed values.
const UnknownCategory = "Unknown"

// MeanImputer replaces missing numeric values with the mean of the observed ones.
type MeanImputer struct {
	Mean float64
}

// Fit computes the mean over non-missing values. A column with no observed
// values imputes 0.
func (m *MeanImputer) Fit(col *data.Column) {
	m.Mean, _ = stats.MeanIgnoringNaN(col.Numbers)
}

// Transform returns a copy of the column with missing entries filled.
func (m *MeanImputer) Transform(col *data.Column) []float64 {
	out := make([]float64, col.Len())
	for i := range out {
		if col.IsNull(i) {
			out[i] = m.Mean
		} else {
			out[i] = col.Numbers[i]
		}
	}
	return out
}

// ModeImputer replaces missing categorical values with the most frequent one.
type ModeImputer struct {
	Mode string
}

// Fit finds the most frequent observed value, falling back to UnknownCategory.
func (m *ModeImputer) Fit(col *data.Column) {
	observed := make([]string, 0, col.Len())
	for i, v := range col.Values {
		if !col.IsNull(i) {
			observed = append(observed, v)
		}
	}
	mode, ok := stats.ModeString(observed, nil)
	if !ok {
		mode = UnknownCategory
	}
	m.Mode = mode
}

// Transform returns the column values with missing entries filled.
func (m *ModeImputer) Transform(col *data.Column) []string {
	out := make([]string, col.Len())
	for i := range out {
		if col.IsNull(i) {
			out[i] = m.Mode
		} else {
			out[i] = col.Values[i]
		}
	}
	return out
}
