package anneal

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/archive"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
)

// Dominance is the dominance-based multi-objective annealer. The energy of
// a fitness vector is the number of archive members dominating it, so a
// move is scored by how much it changes that count relative to the archive
// size. Non-dominated accepted solutions enter the archive.
//
// The live parameters are never modified: every epoch restarts from them
// and the result is the archive.
type Dominance struct {
	base
	ev      evaluator.VectorEvaluator
	archive *archive.Archive
	filled  bool
	removed []string
	dropped []string
}

// NewDominance creates a dominance-based annealer over params. The archive
// is filled lazily by the first epoch, or explicitly by Fill.
func NewDominance(cfg config.Algorithm, params *forcefield.Set, ev evaluator.VectorEvaluator, opts ...Option) *Dominance {
	d := &Dominance{
		base: newBase(KindDominance, cfg, params, opts),
		ev:   ev,
	}
	d.archive = archive.New(cfg.ArchiveSize,
		archive.WithRand(d.rng.Split()),
		archive.WithMaxIter(cfg.AttainmentMaxIter),
		archive.WithWorkers(cfg.AttainmentWorkers),
		archive.WithLogger(d.logger),
	)
	return d
}

// Kind implements Optimizer.
func (d *Dominance) Kind() Kind { return KindDominance }

// Archive returns the Pareto archive.
func (d *Dominance) Archive() *archive.Archive { return d.archive }

// Removed returns the objectives dropped by dimension reduction.
func (d *Dominance) Removed() []string { return d.removed }

// DroppedSystems returns the systems that no longer contribute any
// objective after dimension reduction.
func (d *Dominance) DroppedSystems() []string { return d.dropped }

func (d *Dominance) evaluate(ctx context.Context, params *forcefield.Set) (*fitness.Vector, error) {
	values, err := d.ev.Evaluate(ctx, params)
	if err != nil {
		return nil, err
	}
	f, err := d.ev.ScoreVector(values)
	if err != nil {
		return nil, err
	}
	for i, v := range f.Values() {
		if err := evaluator.CheckFinite(f.Names()[i], v); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Fill seeds the archive. Starting from a copy of the live parameters it
// runs FillSteps sweeps in which every move is kept without an acceptance
// test, archiving each resulting set. When reduction is configured, the
// archive's objectives are then reduced and the evaluator stops scoring
// the removed ones. Fill runs once; later calls do nothing.
func (d *Dominance) Fill(ctx context.Context) error {
	if d.filled {
		return nil
	}
	d.logger.Info("filling archive", "fill_steps", d.cfg.FillSteps)

	params := d.params.Clone()
	for sweep := 0; sweep < d.cfg.FillSteps; sweep++ {
		for move := range d.ev.Moves(params) {
			if err := ctx.Err(); err != nil {
				return err
			}
			move.Perturb(d.perturbation())
			f, err := d.evaluate(ctx, params)
			if err != nil {
				return fmt.Errorf("fill archive: %w", err)
			}
			if err := d.archive.Push(archive.Solution{Parameters: params.Clone(), Fitness: f}); err != nil {
				return fmt.Errorf("fill archive: %w", err)
			}
		}
		d.logger.Debug("fill sweep finished", "sweep", sweep, "archive_size", d.archive.Len())
	}

	if red := d.cfg.Reduction; red.Enabled() {
		for i := 0; i < red.Repeat; i++ {
			removed, err := d.archive.DimensionReduction(red.Mode)
			if err != nil {
				return fmt.Errorf("dimension reduction: %w", err)
			}
			if len(removed) == 0 {
				continue
			}
			d.removed = append(d.removed, removed...)
			dropped := d.ev.DropObjectives(removed)
			d.dropped = append(d.dropped, dropped...)
			d.logger.Info("objectives removed", "round", i, "objectives", removed, "dropped_systems", dropped)
		}
	}

	d.filled = true
	metrics.RecordArchiveSize(d.collector, d.archive.Len())
	d.logger.Info("archive filled", "archive_size", d.archive.Len(), "objectives", d.archive.ObjectiveNames())
	return nil
}

func fitnessMap(f *fitness.Vector) map[string]float64 {
	m := make(map[string]float64, f.Len())
	for i, n := range f.Names() {
		m[n] = f.Values()[i]
	}
	return m
}

// energy counts the archive members dominating f.
func (d *Dominance) energy(f *fitness.Vector) (int, error) {
	return d.archive.CountDominators(f)
}

// RunEpoch implements Optimizer.
func (d *Dominance) RunEpoch(ctx context.Context) (*EpochResult, error) {
	if err := d.Fill(ctx); err != nil {
		return nil, err
	}
	epoch := d.epoch
	d.epoch++

	current := d.params.Clone()
	currentFitness, err := d.evaluate(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("evaluate initial parameters: %w", err)
	}
	d.logger.Info("epoch started", "epoch", epoch, "fitness", currentFitness.String())

	res := &EpochResult{
		Epoch:          epoch,
		StopReason:     StopScheduleExhausted,
		InitialFitness: fitnessMap(currentFitness),
		Removed:        d.removed,
	}
	defer func() {
		size := d.archive.Len()
		res.ArchiveSize = &size
		metrics.RecordArchiveSize(d.collector, size)
		d.logger.Info("epoch finished", "epoch", epoch, "archive_size", size,
			"stop_reason", res.StopReason, "trials", res.Trials, "accepted", res.Accepted)
	}()

	consecutive := 0
	for temperature, step := range Schedule(d.cfg.InitialTemperature, d.cfg.FinalTemperature, d.cfg.CoolingRate, d.cfg.NumberOfSteps) {
		trials, accepted := 0, 0
		for move := range d.ev.Moves(current) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			trials++

			out, err := d.move(ctx, current, currentFitness, move, temperature)
			if err != nil {
				return res, fmt.Errorf("trial %d at temperature %g: %w", trials, temperature, err)
			}
			currentFitness = out.fitness
			if out.accepted {
				accepted++
			}
			d.record(models.TrialRecord{
				Epoch:       epoch,
				Step:        step,
				Trial:       trials,
				Temperature: temperature,
				Energy:      out.energy,
				Accepted:    out.accepted,
			})
			d.logger.Debug("trial", "temperature", temperature, "step", step, "trial", trials,
				"accepted", out.accepted, "fitness", currentFitness.String())
		}
		res.Trials += trials
		res.Accepted += accepted
		metrics.RecordAcceptedPerRung(d.collector, epoch, accepted)

		if accepted == 0 {
			consecutive++
			d.logger.Debug("rung without acceptance", "consecutive", consecutive, "allowed", d.cfg.NumberOfStops)
			if consecutive > d.cfg.NumberOfStops {
				res.StopReason = StopStalled
				break
			}
		} else {
			consecutive = 0
		}
		d.calibrate(trials)
	}
	return res, nil
}

// outcome is the decision on one trial move. fitness is the fitness held
// after the decision and energy its pseudo-energy.
type outcome struct {
	accepted bool
	fitness  *fitness.Vector
	energy   float64
}

// move perturbs one parameter of current and decides on it, restoring the
// parameter when the move is rejected or fails.
func (d *Dominance) move(ctx context.Context, current *forcefield.Set, currentFitness *fitness.Vector, move forcefield.Move, temperature float64) (outcome, error) {
	rejected := outcome{fitness: currentFitness}
	old := move.Perturb(d.perturbation())
	newFitness, err := d.evaluate(ctx, current)
	if err != nil {
		move.Restore(old)
		return rejected, err
	}

	currentEnergy, err := d.energy(currentFitness)
	if err != nil {
		move.Restore(old)
		return rejected, err
	}
	newEnergy, err := d.energy(newFitness)
	if err != nil {
		move.Restore(old)
		return rejected, err
	}

	delta := float64(newEnergy - currentEnergy)
	if size := d.archive.Len(); size > 0 {
		delta /= float64(size)
	}

	ok := d.acceptance.Accept(delta, temperature)
	d.acceptance.Record(delta)
	if !ok {
		move.Restore(old)
		rejected.energy = float64(currentEnergy)
		return rejected, nil
	}

	out := outcome{accepted: true, fitness: newFitness, energy: float64(newEnergy)}
	if newEnergy > 0 {
		return out, nil
	}
	s := archive.Solution{Parameters: current.Clone(), Fitness: newFitness}
	if _, err := d.archive.PopDominated(s); err != nil {
		return out, err
	}
	if err := d.archive.Push(s); err != nil {
		return out, err
	}
	if _, err := d.archive.GenerateAttainmentSurface(ctx, d.archive.Capacity()); err != nil {
		return out, err
	}
	metrics.RecordArchiveSize(d.collector, d.archive.Len())
	return out, nil
}

// SaveParameters dumps every archived parameter set under dir/save_<n>.
func (d *Dominance) SaveParameters(dir string) error {
	_, err := d.archive.Dump(dir, d.ev)
	return err
}

// SaveErrors writes the pseudo-energy trace to dir/errors_dbmosa_<timestamp>.
func (d *Dominance) SaveErrors(dir string) error {
	_, err := writeTrace(dir, "errors_dbmosa", d.trace)
	return err
}
