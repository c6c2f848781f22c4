package data

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `age,income,city,target
25,50000,Paris,yes
,62000,,no
40,NA,Berlin,yes
31,58000,Paris,no
`

func TestReadCSVInfersKinds(t *testing.T) {
	ds, err := ReadCSV("sample.csv", strings.NewReader(sample))
	require.NoError(t, err)
	require.Equal(t, 4, ds.Rows())

	age, ok := ds.Column("age")
	require.True(t, ok)
	assert.Equal(t, Numeric, age.Kind)
	assert.True(t, math.IsNaN(age.Numbers[1]))
	assert.Equal(t, 1, age.NullCount())

	income, _ := ds.Column("income")
	assert.Equal(t, Numeric, income.Kind)
	assert.True(t, income.IsNull(2))

	city, _ := ds.Column("city")
	assert.Equal(t, Categorical, city.Kind)
	assert.True(t, city.IsNull(1))
	assert.False(t, city.IsNull(0))

	target, _ := ds.Column("target")
	assert.Equal(t, Categorical, target.Kind)
}

func TestReadCSVAllMissingColumnIsNumeric(t *testing.T) {
	ds, err := ReadCSV("x", strings.NewReader("a,b\n,1\n,2\n"))
	require.NoError(t, err)
	a, _ := ds.Column("a")
	assert.Equal(t, Numeric, a.Kind)
	assert.Equal(t, 2, a.NullCount())
}

func TestReadCSVRejectsRaggedRows(t *testing.T) {
	_, err := ReadCSV("x", strings.NewReader("a,b\n1,2\n3\n"))
	assert.True(t, errors.Is(err, ErrMalformedDataset))

	_, err = ReadCSV("x", strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrMalformedDataset))
}

func TestNewValidatesShape(t *testing.T) {
	_, err := New("x", NumericColumn("a", []float64{1, 2}), NumericColumn("b", []float64{1}))
	assert.True(t, errors.Is(err, ErrMalformedDataset))

	_, err = New("x", NumericColumn("a", []float64{1}), NumericColumn("a", []float64{1}))
	assert.True(t, errors.Is(err, ErrMalformedDataset))
}

func TestWithoutKeepsOrder(t *testing.T) {
	ds, err := New("x",
		NumericColumn("a", []float64{1}),
		NumericColumn("t", []float64{1}),
		CategoricalColumn("c", []string{"u"}),
	)
	require.NoError(t, err)
	cols := ds.Without("t")
	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, "c", cols[1].Name)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.csv"), []byte(sample), 0o644))
	src := NewDirSource(dir)

	ds, err := src.Load("s.csv")
	require.NoError(t, err)
	assert.Equal(t, "s.csv", ds.Name)

	for _, name := range []string{"missing.csv", "../s.csv", "", "sub/s.csv"} {
		_, err := src.Load(name)
		assert.True(t, errors.Is(err, ErrDatasetNotFound), name)
	}
}

func TestSchemaOf(t *testing.T) {
	ds, err := ReadCSV("sample.csv", strings.NewReader(sample))
	require.NoError(t, err)
	s := SchemaOf(ds)
	assert.Equal(t, []string{"age", "income", "city", "target"}, s.Columns)
	assert.Equal(t, "float64", s.DTypes["age"])
	assert.Equal(t, "object", s.DTypes["city"])
}

func TestMapSource(t *testing.T) {
	ds, _ := New("m", NumericColumn("a", []float64{1}))
	src := MapSource{"m": ds}
	got, err := src.Load("m")
	require.NoError(t, err)
	assert.Same(t, ds, got)
	_, err = src.Load("nope")
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
}

func TestReadCSVKeepsInfinityNumeric(t *testing.T) {
	ds, err := ReadCSV("inf.csv", strings.NewReader("a,b\n1,x\ninf,y\n-Infinity,z\n"))
	require.NoError(t, err)
	a, _ := ds.Column("a")
	require.Equal(t, Numeric, a.Kind)
	assert.True(t, math.IsInf(a.Numbers[1], 1))
	assert.True(t, math.IsInf(a.Numbers[2], -1))
	assert.Equal(t, 0, a.NullCount())
}
