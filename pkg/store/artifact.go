// Package store persists fitted models as opaque artifacts keyed by model id.
package store

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/model"
)

// ErrArtifactNotFound is returned when no artifact exists for an id.
var ErrArtifactNotFound = errors.New("store: artifact not found")

func init() {
	gob.Register(&model.LogisticRegression{})
	gob.Register(&model.RandomForest{})
	gob.Register(&model.SVM{})
	gob.Register(&model.KNN{})
	gob.Register(&model.LinearRegression{})
	gob.Register(&model.GradientBoosting{})
	gob.Register(&model.KMeans{})
	gob.Register(&model.DBSCAN{})
	gob.Register(&model.Agglomerative{})
}

// Artifact is a fitted model with the metadata needed to interpret it.
type Artifact struct {
	ID           string
	Task         model.Task
	ModelName    string
	Dataset      string
	TargetColumn string
	FeatureNames []string
	ClassNames   []string
	Metrics      map[string]float64
	CreatedAt    time.Time
	Model        any
}

// Sink receives serialised artifacts.
type Sink interface {
	Persist(id string, b []byte) error
}

// Fetcher returns previously persisted bytes.
type Fetcher interface {
	Fetch(id string) ([]byte, error)
}

// Store is both ends.
type Store interface {
	Sink
	Fetcher
}

func Encode(a *Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, errors.Wrapf(err, "store: encode %s", a.ID)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (*Artifact, error) {
	var a Artifact
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&a); err != nil {
		return nil, errors.Wrap(err, "store: decode")
	}
	return &a, nil
}

// Load fetches and decodes the artifact for id.
func Load(f Fetcher, id string) (*Artifact, error) {
	b, err := f.Fetch(id)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}
