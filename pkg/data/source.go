package data

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	// ErrDatasetNotFound is returned when a dataset name cannot be resolved.
	ErrDatasetNotFound = errors.New("data: dataset not found")
	// ErrMalformedDataset is returned when a dataset cannot be parsed.
	ErrMalformedDataset = errors.New("data: malformed dataset")
)

// Source resolves a dataset by name.
type Source interface {
	Load(name string) (*Dataset, error)
}

// DirSource loads CSV files from a single directory.
type DirSource struct {
	Root string
}

func NewDirSource(root string) *DirSource { return &DirSource{Root: root} }

// Load reads <Root>/<name>. Names containing path separators never resolve.
func (s *DirSource) Load(name string) (*Dataset, error) {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return nil, errors.Wrapf(ErrDatasetNotFound, "dataset %q", name)
	}
	f, err := os.Open(filepath.Join(s.Root, name))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrDatasetNotFound, "dataset %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %q", name)
	}
	defer f.Close()

	ds, err := ReadCSV(name, f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset %q", name)
	}
	return ds, nil
}

// MapSource serves datasets held in memory.
type MapSource map[string]*Dataset

func (m MapSource) Load(name string) (*Dataset, error) {
	ds, ok := m[name]
	if !ok {
		return nil, errors.Wrapf(ErrDatasetNotFound, "dataset %q", name)
	}
	return ds, nil
}
