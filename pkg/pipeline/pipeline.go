// Package pipeline runs a training request end to end: load, encode, sample,
// split, train, evaluate, explain, request plots and persist.
package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aadhilajas/ML-Studio/pkg/config"
	"github.com/aadhilajas/ML-Studio/pkg/data"
	"github.com/aadhilajas/ML-Studio/pkg/dataprep"
	"github.com/aadhilajas/ML-Studio/pkg/evaluate"
	"github.com/aadhilajas/ML-Studio/pkg/loader"
	"github.com/aadhilajas/ML-Studio/pkg/model"
	"github.com/aadhilajas/ML-Studio/pkg/narrate"
	"github.com/aadhilajas/ML-Studio/pkg/stats"
	"github.com/aadhilajas/ML-Studio/pkg/store"
	"github.com/aadhilajas/ML-Studio/pkg/viz"
)

// DefaultCVFolds is the fold count used when cross-validation is requested.
const DefaultCVFolds = 5

// Orchestrator runs training requests. It keeps no per-run state, so one
// value may serve concurrent runs.
type Orchestrator struct {
	source   data.Source
	sink     store.Sink
	budget   loader.Budget
	narrator *narrate.Narrator
	cvFolds  int
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option        { return func(o *Orchestrator) { o.logger = l } }
func WithBudget(b loader.Budget) Option       { return func(o *Orchestrator) { o.budget = b } }
func WithNarrator(n *narrate.Narrator) Option { return func(o *Orchestrator) { o.narrator = n } }
func WithCVFolds(k int) Option                { return func(o *Orchestrator) { o.cvFolds = k } }
func WithIDGenerator(f func() string) Option  { return func(o *Orchestrator) { o.newID = f } }
func WithClock(f func() time.Time) Option     { return func(o *Orchestrator) { o.now = f } }

func New(source data.Source, sink store.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		sink:     sink,
		budget:   loader.DefaultBudget(),
		narrator: narrate.New(narrate.DefaultThresholds()),
		cvFolds:  DefaultCVFolds,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FromConfig wires a directory dataset source and an on-disk artifact store.
func FromConfig(c config.Config, opts ...Option) *Orchestrator {
	base := []Option{
		WithBudget(c.Sampling.Budget()),
		WithNarrator(narrate.New(c.Narration)),
		WithCVFolds(c.CVFolds),
	}
	return New(data.NewDirSource(c.DatasetDir), store.NewDiskStore(c.ModelDir), append(base, opts...)...)
}

// Columns lists a dataset's columns and inferred types.
func (o *Orchestrator) Columns(name string) (data.Schema, error) {
	ds, err := o.source.Load(name)
	if err != nil {
		return data.Schema{}, err
	}
	return data.SchemaOf(ds), nil
}

// run carries one request through the stages.
type run struct {
	req    Request
	est    model.Estimator
	log    *slog.Logger
	ds     *data.Dataset
	X      [][]float64
	y      []float64
	names  []string
	labels []string

	xTrain, xTest [][]float64
	yTrain, yTest []float64
	pred          []float64
	trainScore    float64
	testScore     float64

	metrics evaluate.Metrics
	text    string
	plots   viz.Set
	id      string
}

// Run executes req. Request errors (unknown task, unsupported model, bad
// target column, missing dataset) are reported before any training starts.
func (o *Orchestrator) Run(req Request) (*Result, error) {
	r := &run{req: req}
	r.log = o.logger.With("dataset", req.DatasetName, "task", req.TaskType.String(), "model", req.ModelName)

	steps := []struct {
		stage Stage
		fn    func(*run) error
		skip  bool
	}{
		{StageValidated, o.validate, false},
		{StageLoaded, o.load, false},
		{StageFeatureEncoded, o.encode, false},
		{StageSampled, o.sample, false},
		{StageSplit, o.split, !req.TaskType.Supervised()},
		{StageTrained, o.train, false},
		{StageEvaluated, o.evaluate, false},
		{StageExplained, o.explain, false},
		{StageVisualizationsRequested, o.visualize, false},
		{StagePersisted, o.persist, false},
	}
	for _, s := range steps {
		if s.skip {
			continue
		}
		if err := guard(func() error { return s.fn(r) }); err != nil {
			r.log.Debug("stage failed", "stage", string(s.stage), "err", err)
			return nil, &StageError{Stage: s.stage, Err: err}
		}
		r.log.Debug("stage complete", "stage", string(s.stage))
	}
	r.log.Debug("stage complete", "stage", string(StageDone), "model_id", r.id)
	return &Result{
		Metrics:        r.metrics,
		Explanation:    r.text,
		Visualizations: r.plots,
		ModelID:        r.id,
	}, nil
}

// guard turns a panic inside a stage into an error. Model goroutines started
// through parallel.Group or parallel.ForChunks re-raise their panics here;
// a goroutine started any other way is out of its reach.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %v", p)
		}
	}()
	return fn()
}

func (o *Orchestrator) validate(r *run) error {
	req := r.req
	switch req.TaskType {
	case model.Classification, model.Regression:
		if req.TargetColumn == "" {
			return errors.Wrapf(ErrInvalidTargetColumn, "task %s needs a target column", req.TaskType)
		}
		if !(req.TestSize > 0 && req.TestSize < 1) {
			return errors.Wrapf(ErrInvalidRequest, "test_size %v outside (0,1)", req.TestSize)
		}
	case model.Clustering:
	default:
		return errors.Wrapf(ErrInvalidRequest, "unknown task type %v", req.TaskType)
	}
	est, err := model.New(req.TaskType, req.ModelName, req.Params, req.RandomState)
	if err != nil {
		return err
	}
	r.est = est
	return nil
}

func (o *Orchestrator) load(r *run) error {
	ds, err := o.source.Load(r.req.DatasetName)
	if err != nil {
		return err
	}
	if t := r.req.TargetColumn; t != "" {
		if _, ok := ds.Column(t); !ok {
			return errors.Wrapf(ErrInvalidTargetColumn, "column %q not in dataset %q", t, ds.Name)
		}
	}
	if ds.Rows() == 0 {
		return errors.Wrapf(ErrInvalidRequest, "dataset %q has no rows", ds.Name)
	}
	r.ds = ds
	return nil
}

func (o *Orchestrator) encode(r *run) error {
	ft := dataprep.NewFeatureTransformer(r.req.UseScaling)
	X, names, err := ft.FitTransform(r.ds, r.req.TargetColumn)
	if errors.Is(err, dataprep.ErrNonFiniteFeature) {
		return errors.Wrapf(ErrInvalidRequest, "%v", err)
	}
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.Wrapf(ErrInvalidRequest, "dataset %q has no feature columns", r.ds.Name)
	}
	r.X, r.names = X, names

	if r.req.TaskType.Supervised() {
		col, _ := r.ds.Column(r.req.TargetColumn)
		tg, err := dataprep.EncodeTarget(col, r.req.TaskType)
		if err != nil {
			return errors.Wrapf(ErrInvalidTargetColumn, "%v", err)
		}
		r.y, r.labels = tg.Y, tg.Classes
	}
	return nil
}

func (o *Orchestrator) sample(r *run) error {
	s := loader.NewSampler(o.budget, r.req.RandomState, r.log)
	X, y, err := s.Cap(r.X, r.y, r.req.TaskType, r.req.ModelName)
	if err != nil {
		return err
	}
	r.X, r.y = X, y
	return nil
}

func (o *Orchestrator) split(r *run) error {
	var err error
	r.xTrain, r.xTest, r.yTrain, r.yTest, err = loader.TrainTestSplit(r.X, r.y, r.req.TestSize, r.req.RandomState)
	if errors.Is(err, loader.ErrTooFewRows) {
		return errors.Wrapf(ErrInvalidRequest, "%v", err)
	}
	return err
}

func (o *Orchestrator) train(r *run) error {
	if !r.req.TaskType.Supervised() {
		labels, err := r.est.Unsupervised.FitPredict(r.X)
		if err != nil {
			return errors.Wrap(err, "fit")
		}
		r.pred = make([]float64, len(labels))
		for i, l := range labels {
			r.pred[i] = float64(l)
		}
		return nil
	}

	m := r.est.Supervised
	if err := m.Fit(r.xTrain, r.yTrain); err != nil {
		return errors.Wrap(err, "fit")
	}
	var err error
	if r.pred, err = m.Predict(r.xTest); err != nil {
		return errors.Wrap(err, "predict")
	}
	if r.trainScore, err = m.Score(r.xTrain, r.yTrain); err != nil {
		return errors.Wrap(err, "score train")
	}
	if r.testScore, err = m.Score(r.xTest, r.yTest); err != nil {
		return errors.Wrap(err, "score test")
	}
	return nil
}

func (o *Orchestrator) evaluate(r *run) error {
	var (
		m   evaluate.Metrics
		err error
	)
	if r.req.TaskType.Supervised() {
		m, err = evaluate.Evaluate(r.yTest, r.pred, r.req.TaskType, nil)
	} else {
		m, err = evaluate.Evaluate(nil, r.pred, r.req.TaskType, r.X)
	}
	if err != nil {
		return err
	}
	if r.req.TaskType.Supervised() {
		m[evaluate.TrainScore] = r.trainScore
		m[evaluate.TestScore] = r.testScore
		if r.req.UseCrossValidation {
			mean, std, err := o.crossValidate(r)
			if err != nil {
				return errors.Wrap(err, "cross-validation")
			}
			m[evaluate.CVMean], m[evaluate.CVStd] = mean, std
		}
	} else if m[evaluate.Silhouette] == evaluate.SilhouetteSentinel {
		r.log.Debug("silhouette undefined, using sentinel", "err", evaluate.ErrDegenerateMetric)
	}
	r.metrics = m
	return nil
}

// crossValidate scores fresh models on k folds of the training partition.
func (o *Orchestrator) crossValidate(r *run) (float64, float64, error) {
	k := min(o.cvFolds, len(r.xTrain))
	folds, err := loader.KFoldSplit(len(r.xTrain), k, r.req.RandomState)
	if errors.Is(err, loader.ErrTooFewRows) {
		return 0, 0, errors.Wrapf(ErrInvalidRequest, "%v", err)
	}
	if err != nil {
		return 0, 0, err
	}
	scores := make([]float64, 0, len(folds))
	for i, fold := range folds {
		est, err := model.New(r.req.TaskType, r.req.ModelName, r.req.Params, r.req.RandomState)
		if err != nil {
			return 0, 0, err
		}
		xf, yf := loader.Take(r.xTrain, r.yTrain, loader.FoldComplement(len(r.xTrain), fold))
		xv, yv := loader.Take(r.xTrain, r.yTrain, fold)
		if err := est.Supervised.Fit(xf, yf); err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d", i)
		}
		s, err := est.Supervised.Score(xv, yv)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d", i)
		}
		scores = append(scores, s)
	}
	return stats.Mean(scores), stats.Std(scores), nil
}

func (o *Orchestrator) explain(r *run) error {
	r.text = o.narrator.Explain(r.metrics, r.req.TaskType)
	return nil
}

func (o *Orchestrator) visualize(r *run) error {
	switch r.req.TaskType {
	case model.Classification:
		r.plots = viz.ForClassification(r.yTest, r.pred, r.labels, r.names, r.importances())
	case model.Regression:
		r.plots = viz.ForRegression(r.yTest, r.pred, r.names, r.importances())
	case model.Clustering:
		labels := make([]int, len(r.pred))
		for i, v := range r.pred {
			labels[i] = int(v)
		}
		r.plots = viz.ForClustering(r.X, labels)
	default:
		return errors.Errorf("no plots for task %v", r.req.TaskType)
	}
	return nil
}

// importances probes the fitted model. A vector that does not line up with
// the feature names is dropped.
func (r *run) importances() []float64 {
	imp, ok := r.est.Importances()
	if !ok || len(imp) != len(r.names) {
		return nil
	}
	return imp
}

func (o *Orchestrator) persist(r *run) error {
	id := o.newID()
	b, err := store.Encode(&store.Artifact{
		ID:           id,
		Task:         r.req.TaskType,
		ModelName:    r.req.ModelName,
		Dataset:      r.req.DatasetName,
		TargetColumn: r.req.TargetColumn,
		FeatureNames: r.names,
		ClassNames:   r.labels,
		Metrics:      r.metrics,
		CreatedAt:    o.now().UTC(),
		Model:        r.est.Model(),
	})
	if err != nil {
		return err
	}
	if err := o.sink.Persist(id, b); err != nil {
		return errors.Wrapf(err, "persist %s", id)
	}
	r.id = id
	return nil
}
