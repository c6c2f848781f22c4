package data

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// missingMarkers are the cell values read as missing.
var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// IsMissing reports whether a raw cell value denotes a missing entry.
func IsMissing(v string) bool {
	_, ok := missingMarkers[strings.TrimSpace(v)]
	return ok
}

// ReadCSV parses a CSV stream with a header row. A column is numeric when every
// non-missing cell parses as a float (a column with no values at all is numeric),
// otherwise it is categorical.
func ReadCSV(name string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformedDataset, "empty file")
	}
	if err != nil {
		return nil, errors.Wrap(ErrMalformedDataset, err.Error())
	}

	cells := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrMalformedDataset, err.Error())
		}
		for j, v := range rec {
			cells[j] = append(cells[j], v)
		}
	}

	cols := make([]Column, len(header))
	for j, h := range header {
		cols[j] = inferColumn(strings.TrimSpace(h), cells[j])
	}
	return New(name, cols...)
}

func inferColumn(name string, raw []string) Column {
	nums := make([]float64, len(raw))
	for i, v := range raw {
		if IsMissing(v) {
			nums[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return CategoricalColumn(name, raw)
		}
		nums[i] = f
	}
	return NumericColumn(name, nums)
}
