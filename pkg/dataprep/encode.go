package dataprep

import (
	"math"
	"strconv"

	"github.com/aadhilajas/ML-Studio/pkg/data"
)

// OneHotEncoder maps each category to an indicator column. Categories are kept
// in the order they were first seen during Fit. Values not seen during Fit
// encode as an all-zero row.
type OneHotEncoder struct {
	Categories []string
	index      map[string]int
}

func (e *OneHotEncoder) Fit(values []string) {
	e.Categories = nil
	e.index = make(map[string]int)
	for _, v := range values {
		if _, ok := e.index[v]; !ok {
			e.index[v] = len(e.Categories)
			e.Categories = append(e.Categories, v)
		}
	}
}

// Width is the number of indicator columns the encoder produces.
func (e *OneHotEncoder) Width() int { return len(e.Categories) }

// EncodeInto writes the indicator vector for v into dst, which must be Width long.
func (e *OneHotEncoder) EncodeInto(dst []float64, v string) {
	for i := range dst {
		dst[i] = 0
	}
	if k, ok := e.index[v]; ok {
		dst[k] = 1
	}
}

// LabelEncode assigns integer codes to labels by order of first appearance.
// It returns the codes and the labels in code order. Missing entries of the
// column are encoded like any other value, so callers reject them first.
func LabelEncode(col *data.Column) ([]int, []string) {
	codes := make([]int, col.Len())
	index := map[string]int{}
	var classes []string
	for i := range codes {
		key := labelKey(col, i)
		k, ok := index[key]
		if !ok {
			k = len(classes)
			index[key] = k
			classes = append(classes, key)
		}
		codes[i] = k
	}
	return codes, classes
}

func labelKey(col *data.Column, i int) string {
	if col.Kind == data.Numeric {
		v := col.Numbers[i]
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return col.Values[i]
}
