// Package anneal implements the two simulated annealing optimizers: a
// single-objective annealer over a scalar error and a dominance-based
// multi-objective annealer backed by a Pareto archive.
package anneal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// Kind names an optimizer variant.
type Kind string

const (
	KindSingleObjective Kind = "simulated_annealing"
	KindDominance       Kind = "dominance_based_multiobjective_simulated_annealing"
)

// StopReason explains why an epoch ended.
type StopReason string

const (
	StopScheduleExhausted StopReason = "schedule_exhausted"
	StopThreshold         StopReason = "threshold"
	StopStalled           StopReason = "stalled"
)

var (
	// ErrUnknownAlgorithm is returned for algorithm names no variant handles.
	ErrUnknownAlgorithm = errors.New("unknown optimization algorithm")

	// ErrUnsupportedEvaluator is returned when the evaluator cannot score
	// the way the selected variant requires.
	ErrUnsupportedEvaluator = errors.New("evaluator does not support algorithm")
)

// Optimizer is the capability set shared by both annealers.
type Optimizer interface {
	Kind() Kind
	// RunEpoch runs one pass over the cooling schedule.
	RunEpoch(ctx context.Context) (*EpochResult, error)
	// SaveParameters persists the optimizer's result under dir.
	SaveParameters(dir string) error
	// SaveErrors writes the recorded trial trace under dir.
	SaveErrors(dir string) error
}

// EpochResult summarizes one epoch.
type EpochResult struct {
	Epoch      int
	Trials     int
	Accepted   int
	StopReason StopReason
	// InitialError is the scalar error the single-objective epoch started
	// from; InitialFitness the per-objective fitness a dominance epoch
	// started from.
	InitialError   *float64
	InitialFitness map[string]float64
	BestError      *float64
	ArchiveSize    *int
	Removed        []string
}

// Option configures an optimizer.
type Option func(*base)

// WithRand sets the random source driving perturbations and acceptance.
func WithRand(r *utils.RandSource) Option {
	return func(b *base) { b.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.logger = l }
}

// WithCollector sets the metrics collector receiving trial records.
func WithCollector(c *metrics.Collector) Option {
	return func(b *base) { b.collector = c }
}

// New selects the variant named by cfg.Name. A name mentioning dominance
// selects the multi-objective annealer, any other simulated_annealing name
// the single-objective one.
func New(cfg config.Algorithm, params *forcefield.Set, ev evaluator.Evaluator, opts ...Option) (Optimizer, error) {
	switch {
	case strings.Contains(cfg.Name, "dominance"):
		vev, ok := ev.(evaluator.VectorEvaluator)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs per-objective scores", ErrUnsupportedEvaluator, cfg.Name)
		}
		return NewDominance(cfg, params, vev, opts...), nil
	case strings.Contains(cfg.Name, string(KindSingleObjective)):
		sev, ok := ev.(evaluator.ScalarEvaluator)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a scalar score", ErrUnsupportedEvaluator, cfg.Name)
		}
		return NewSingleObjective(cfg, params, sev, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Name)
	}
}

// Run executes epochs in order and returns the last result, carrying the
// initial error and fitness of the first epoch so that it spans the run. It
// stops at the first error, returning the result of the failing epoch
// alongside it.
func Run(ctx context.Context, opt Optimizer, epochs int) (*EpochResult, error) {
	var first, last *EpochResult
	finish := func() *EpochResult {
		if first != nil && last != first {
			last.InitialError = first.InitialError
			last.InitialFitness = first.InitialFitness
		}
		return last
	}
	for i := 0; i < epochs; i++ {
		res, err := opt.RunEpoch(ctx)
		if res != nil {
			if first == nil {
				first = res
			}
			last = res
		}
		if err != nil {
			return finish(), fmt.Errorf("epoch %d: %w", i, err)
		}
	}
	return finish(), nil
}

// base carries the state both variants share.
type base struct {
	cfg        config.Algorithm
	params     *forcefield.Set
	rng        *utils.RandSource
	logger     *slog.Logger
	collector  *metrics.Collector
	acceptance *Acceptance
	epoch      int
	trace      []models.TrialRecord
}

func newBase(kind Kind, cfg config.Algorithm, params *forcefield.Set, opts []Option) base {
	b := base{cfg: cfg, params: params}
	for _, opt := range opts {
		opt(&b)
	}
	if b.rng == nil {
		b.rng = utils.NewRandSource(0)
	}
	if b.logger == nil {
		b.logger = logger.Default
	}
	if b.collector == nil {
		b.collector = metrics.NewCollector()
	}
	b.logger = b.logger.With("algorithm", string(kind))
	b.acceptance = NewAcceptance(cfg.AcceptanceProbability, cfg.InitialTemperature, b.rng)
	return b
}

// Parameters returns the live parameter set.
func (b *base) Parameters() *forcefield.Set { return b.params }

// Acceptance returns the Metropolis model, shared across epochs.
func (b *base) Acceptance() *Acceptance { return b.acceptance }

// Epochs returns how many epochs have started.
func (b *base) Epochs() int { return b.epoch }

// Trace returns the recorded trial records.
func (b *base) Trace() []models.TrialRecord { return b.trace }

// perturbation draws u in [-1, 1).
func (b *base) perturbation() float64 {
	return b.rng.UniformFloat64(-1, 1)
}

func (b *base) record(rec models.TrialRecord) {
	b.trace = append(b.trace, rec)
	b.collector.RecordTrial(rec)
}

// calibrate runs after a rung while beta is still unset.
func (b *base) calibrate(trials int) {
	if !b.acceptance.NeedsCalibration() {
		return
	}
	if b.acceptance.Calibrate(trials) {
		metrics.RecordBeta(b.collector, b.acceptance.Beta())
		b.logger.Debug("calibrated acceptance", "beta", b.acceptance.Beta(), "trials", trials)
	}
}
