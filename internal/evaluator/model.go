package evaluator

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/expression"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/workerpool"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
)

// pointVariable is bound to each sample coordinate of an observable.
const pointVariable = "x"

type observable struct {
	name      string
	objective string
	expr      *expression.Expr
	points    []float64
	reference []float64
	weight    float64
	active    bool
}

type system struct {
	name        string
	observables []*observable
	active      bool
}

// Model evaluates observables given by compiled closed-form expressions.
// Systems are independent sub-plans and are evaluated concurrently through
// a worker pool, locally or on remote workers.
type Model struct {
	mu        sync.RWMutex
	systems   []*system
	byName    map[string]*system
	paramVars []string
	errorFunc fitness.ErrorFunc
	tolerance float64

	runner      Runner
	pool        *workerpool.Pool
	instruments *metrics.Instruments
	logger      *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithRunner evaluates systems through r instead of in-process.
func WithRunner(r Runner) Option {
	return func(m *Model) { m.runner = r }
}

// WithPool sets the pool used to fan out system evaluations.
func WithPool(p *workerpool.Pool) Option {
	return func(m *Model) { m.pool = p }
}

// WithInstruments records evaluation counts and latency.
func WithInstruments(ins *metrics.Instruments) Option {
	return func(m *Model) { m.instruments = ins }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// NewModel compiles every observable of cfg. Expressions may reference any
// parameter and the sample coordinate x.
func NewModel(cfg *config.Config, opts ...Option) (*Model, error) {
	m := &Model{
		byName:    make(map[string]*system, len(cfg.Systems)),
		errorFunc: fitness.LookupErrorFunc(cfg.Evaluation.ErrorFunction),
		tolerance: cfg.Evaluation.Tolerance,
		logger:    logger.Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pool == nil {
		m.pool = workerpool.New(cfg.Evaluation.Workers)
	}
	if m.runner == nil {
		m.runner = m
	}

	for _, p := range cfg.Parameters {
		if p.Name == pointVariable {
			return nil, fmt.Errorf("parameter name %q is reserved for sample points", p.Name)
		}
		m.paramVars = append(m.paramVars, p.Name)
	}
	vars := append(slices.Clone(m.paramVars), pointVariable)
	objectives := make(map[string]bool)

	for _, sc := range cfg.Systems {
		if _, ok := m.byName[sc.Name]; ok {
			return nil, fmt.Errorf("duplicate system %s", sc.Name)
		}
		s := &system{name: sc.Name, active: true}
		for _, oc := range sc.Observables {
			expr, err := expression.Compile(oc.Expression, vars)
			if err != nil {
				return nil, fmt.Errorf("system %s observable %s: %w", sc.Name, oc.Name, err)
			}
			objective := ObjectiveName(sc.Name, oc.Name)
			if objectives[objective] {
				return nil, fmt.Errorf("%w: %s", fitness.ErrDuplicateObjective, objective)
			}
			objectives[objective] = true
			weight := oc.Weight
			if weight == 0 {
				weight = 1
			}
			s.observables = append(s.observables, &observable{
				name:      oc.Name,
				objective: objective,
				expr:      expr,
				points:    slices.Clone(oc.Points),
				reference: slices.Clone(oc.Reference),
				weight:    weight,
				active:    true,
			})
		}
		m.systems = append(m.systems, s)
		m.byName[s.name] = s
	}
	return m, nil
}

// Moves yields one move per parameter with a non-zero step.
func (m *Model) Moves(params *forcefield.Set) iter.Seq[forcefield.Move] {
	return params.Moves()
}

// Equal compares parameter sets within the configured tolerance.
func (m *Model) Equal(a, b *forcefield.Set) bool {
	return forcefield.Equal(a, b, m.tolerance)
}

// WriteParameters writes params in the ffield format.
func (m *Model) WriteParameters(params *forcefield.Set, path string) error {
	return params.WriteFile(path)
}

// Systems returns the names of the systems still being evaluated.
func (m *Model) Systems() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, s := range m.systems {
		if s.active {
			names = append(names, s.name)
		}
	}
	return names
}

// Objectives returns the objective names still being scored, in order.
func (m *Model) Objectives() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, s := range m.systems {
		for _, o := range s.observables {
			if o.active {
				names = append(names, o.objective)
			}
		}
	}
	return names
}

// Evaluate runs every active system through the runner and merges the
// results once all of them have returned.
func (m *Model) Evaluate(ctx context.Context, params *forcefield.Set) (Values, error) {
	systems := m.Systems()
	paramMap := params.Map()

	results, err := workerpool.Map(ctx, m.pool, systems, func(ctx context.Context, _ int, name string) (map[string][]float64, error) {
		start := time.Now()
		out, err := m.runner.RunSystem(ctx, name, paramMap)
		if m.instruments != nil {
			m.instruments.ObserveEvaluation(name, time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("system %s: %w", name, err)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	values := make(Values)
	for i, name := range systems {
		for obs, series := range results[i] {
			values[ObjectiveName(name, obs)] = series
		}
	}
	return values, nil
}

// RunSystem evaluates every observable of the named system in-process.
func (m *Model) RunSystem(ctx context.Context, name string, params map[string]float64) (map[string][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	s, ok := m.byName[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSystem, name)
	}

	env := make([]float64, len(m.paramVars)+1)
	for i, p := range m.paramVars {
		v, ok := params[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, p)
		}
		env[i] = v
	}
	xSlot := len(m.paramVars)

	out := make(map[string][]float64, len(s.observables))
	for _, o := range s.observables {
		if len(o.points) == 0 {
			env[xSlot] = 0
			out[o.name] = []float64{o.expr.Eval(env)}
			continue
		}
		series := make([]float64, len(o.points))
		for i, x := range o.points {
			env[xSlot] = x
			series[i] = o.expr.Eval(env)
		}
		out[o.name] = series
	}
	return out, nil
}

// ScoreScalar returns the weighted sum of the per-objective errors.
func (m *Model) ScoreScalar(values Values) (float64, error) {
	_, errs, err := m.score(values)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range errs {
		total += e
	}
	return total, nil
}

// ScoreVector returns the weighted error of every active objective.
func (m *Model) ScoreVector(values Values) (*fitness.Vector, error) {
	names, errs, err := m.score(values)
	if err != nil {
		return nil, err
	}
	return fitness.NewVector(names, errs)
}

func (m *Model) score(values Values) ([]string, []float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	var errs []float64
	for _, s := range m.systems {
		for _, o := range s.observables {
			if !o.active {
				continue
			}
			calculated, ok := values[o.objective]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s", ErrMissingObjective, o.objective)
			}
			e, err := fitness.ComputeError(m.errorFunc, calculated, o.reference)
			if err != nil {
				return nil, nil, fmt.Errorf("objective %s: %w", o.objective, err)
			}
			if err := CheckFinite(o.objective, e*o.weight); err != nil {
				return nil, nil, err
			}
			names = append(names, o.objective)
			errs = append(errs, e*o.weight)
		}
	}
	return names, errs, nil
}

// DropObjectives stops scoring the named objectives. A system whose
// objectives are all dropped is no longer evaluated; the names of such
// systems are returned in model order.
func (m *Model) DropObjectives(names []string) []string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var dropped []string
	for _, s := range m.systems {
		if !s.active {
			continue
		}
		remaining := 0
		for _, o := range s.observables {
			if drop[o.objective] && o.active {
				o.active = false
				m.logger.Info("objective dropped", "objective", o.objective)
			}
			if o.active {
				remaining++
			}
		}
		if remaining == 0 {
			s.active = false
			dropped = append(dropped, s.name)
			m.logger.Info("system dropped from evaluation", "system", s.name)
		}
	}
	return dropped
}
