// Package config loads the YAML settings shared by the CLI and the pipeline.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/aadhilajas/ML-Studio/pkg/loader"
	"github.com/aadhilajas/ML-Studio/pkg/narrate"
)

// Sampling mirrors loader.Budget.
type Sampling struct {
	MaxRows         int      `yaml:"max_rows"`
	ReducedMaxRows  int      `yaml:"reduced_max_rows"`
	ExpensiveModels []string `yaml:"expensive_models"`
}

func (s Sampling) Budget() loader.Budget {
	return loader.Budget{
		MaxRows:         s.MaxRows,
		ReducedMaxRows:  s.ReducedMaxRows,
		ExpensiveModels: s.ExpensiveModels,
	}
}

type Config struct {
	DatasetDir string             `yaml:"dataset_dir"`
	ModelDir   string             `yaml:"model_dir"`
	CVFolds    int                `yaml:"cv_folds"`
	Sampling   Sampling           `yaml:"sampling"`
	Narration  narrate.Thresholds `yaml:"narration"`
}

func Default() Config {
	b := loader.DefaultBudget()
	return Config{
		DatasetDir: "uploads",
		ModelDir:   "models_saved",
		CVFolds:    5,
		Sampling: Sampling{
			MaxRows:         b.MaxRows,
			ReducedMaxRows:  b.ReducedMaxRows,
			ExpensiveModels: append([]string(nil), b.ExpensiveModels...),
		},
		Narration: narrate.DefaultThresholds(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: open")
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.DatasetDir == "":
		return errors.New("config: dataset_dir is empty")
	case c.ModelDir == "":
		return errors.New("config: model_dir is empty")
	case c.Sampling.MaxRows < 1 || c.Sampling.ReducedMaxRows < 1:
		return errors.New("config: sampling budgets must be positive")
	case c.CVFolds < 2:
		return errors.Errorf("config: cv_folds must be at least 2, got %d", c.CVFolds)
	}
	return nil
}

// Init creates the dataset and model directories.
func (c Config) Init() error {
	for _, dir := range []string{c.DatasetDir, c.ModelDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "config: create %s", dir)
		}
	}
	return nil
}
