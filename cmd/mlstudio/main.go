package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/config"
	"github.com/aadhilajas/ML-Studio/pkg/model"
	"github.com/aadhilajas/ML-Studio/pkg/pipeline"
	"github.com/aadhilajas/ML-Studio/pkg/store"
	"github.com/aadhilajas/ML-Studio/pkg/viz"
)

var (
	name    = "mlstudio"
	version = "0.3.0"
)

type trainCmd struct {
	Dataset  string   `arg:"positional,required" help:"dataset file name inside the dataset directory"`
	Task     string   `arg:"-t,required" help:"Classification, Regression or Clustering"`
	Model    string   `arg:"-m,required" help:"model name, e.g. \"Random Forest\""`
	Target   string   `arg:"-y" help:"target column (supervised tasks)"`
	TestSize float64  `arg:"--test-size" default:"0.2" help:"held-out fraction"`
	Seed     int64    `arg:"--seed" default:"42" help:"random state"`
	NoScale  bool     `arg:"--no-scale" help:"skip feature standardisation"`
	CV       bool     `arg:"--cv" help:"add k-fold cross-validation scores"`
	Params   []string `arg:"-p,separate" help:"model parameter as key=value, repeatable"`
	Plots    string   `arg:"--plots" help:"write PNG plots into this directory"`
	JSON     bool     `arg:"--json" help:"print the result as JSON"`
}

type columnsCmd struct {
	Dataset string `arg:"positional,required"`
}

type inspectCmd struct {
	ModelID string `arg:"positional,required"`
}

type modelsCmd struct{}

type args struct {
	Train   *trainCmd   `arg:"subcommand:train" help:"train and persist a model"`
	Columns *columnsCmd `arg:"subcommand:columns" help:"list a dataset's columns and types"`
	Inspect *inspectCmd `arg:"subcommand:inspect" help:"show a persisted model's metadata"`
	Models  *modelsCmd  `arg:"subcommand:models" help:"list supported models per task"`
	Config  string      `arg:"-c,--config,env:MLSTUDIO_CONFIG" help:"YAML config file"`
	Verbose bool        `arg:"-v" help:"log pipeline stages to stderr"`
}

func (args) Version() string { return name + " " + version }

func (args) Description() string {
	return "Trains tabular models on CSV datasets and explains the results."
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}

	level := slog.LevelWarn
	if a.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.Config)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fail(err)
	}

	switch {
	case a.Models != nil:
		listModels()
		return
	case a.Inspect != nil:
		err = inspect(cfg, a.Inspect.ModelID)
	default:
		if err = cfg.Init(); err != nil {
			break
		}
		o := pipeline.FromConfig(cfg, pipeline.WithLogger(logger))
		if a.Columns != nil {
			err = columns(o, a.Columns.Dataset)
		} else {
			err = train(o, a.Train)
		}
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	kind := "error"
	if pipeline.IsClientError(err) {
		kind = "request error"
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red(kind), err)
	os.Exit(1)
}

func parseParams(kv []string) (model.Params, error) {
	if len(kv) == 0 {
		return nil, nil
	}
	out := make(model.Params, len(kv))
	for _, s := range kv {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errors.Errorf("parameter %q is not key=value", s)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", k)
		}
		out[k] = f
	}
	return out, nil
}

func train(o *pipeline.Orchestrator, c *trainCmd) error {
	task, err := model.ParseTask(c.Task)
	if err != nil {
		return errors.Wrapf(pipeline.ErrInvalidRequest, "%v", err)
	}
	params, err := parseParams(c.Params)
	if err != nil {
		return errors.Wrapf(pipeline.ErrInvalidRequest, "%v", err)
	}
	req := pipeline.NewRequest(c.Dataset, task, c.Model, c.Target)
	req.TestSize = c.TestSize
	req.RandomState = c.Seed
	req.UseScaling = !c.NoScale
	req.UseCrossValidation = c.CV
	req.Params = params

	res, err := o.Run(req)
	if err != nil {
		return err
	}
	if c.Plots != "" {
		if err := writePlots(c.Plots, res); err != nil {
			return err
		}
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("%s %s\n", cyan("model"), res.ModelID)
	printMetrics(res.Metrics)
	fmt.Println()
	fmt.Println(res.Explanation)
	return nil
}

func printMetrics(m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %s\n", k, green(strconv.FormatFloat(m[k], 'f', 4, 64)))
	}
}

func writePlots(dir string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "plots")
	}
	imgs, err := viz.NewRenderer().RenderAll(res.Visualizations)
	if err != nil {
		return err
	}
	for _, k := range res.Visualizations.Kinds() {
		png, ok := imgs[k]
		if !ok {
			fmt.Printf("%s %s has nothing to draw\n", yellow("skip"), k)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", res.ModelID, k))
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return errors.Wrap(err, "plots")
		}
		fmt.Printf("%s %s\n", cyan("plot"), path)
	}
	return nil
}

func columns(o *pipeline.Orchestrator, dataset string) error {
	s, err := o.Columns(dataset)
	if err != nil {
		return err
	}
	for _, c := range s.Columns {
		fmt.Printf("  %-24s %s\n", c, yellow(s.DTypes[c]))
	}
	return nil
}

func inspect(cfg config.Config, id string) error {
	a, err := store.Load(store.NewDiskStore(cfg.ModelDir), id)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", cyan("model"), a.ID)
	fmt.Printf("  %-12s %s\n", "task", a.Task)
	fmt.Printf("  %-12s %s\n", "algorithm", a.ModelName)
	fmt.Printf("  %-12s %s\n", "dataset", a.Dataset)
	if a.TargetColumn != "" {
		fmt.Printf("  %-12s %s\n", "target", a.TargetColumn)
	}
	if len(a.ClassNames) > 0 {
		fmt.Printf("  %-12s %s\n", "classes", strings.Join(a.ClassNames, ", "))
	}
	fmt.Printf("  %-12s %d\n", "features", len(a.FeatureNames))
	fmt.Printf("  %-12s %s\n", "created", a.CreatedAt.Format("2006-01-02 15:04:05Z07:00"))
	printMetrics(a.Metrics)
	return nil
}

func listModels() {
	for _, t := range model.Tasks {
		fmt.Println(cyan(t.String()))
		for _, n := range model.Names(t) {
			fmt.Printf("  %s\n", n)
		}
	}
}
