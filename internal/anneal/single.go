package anneal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
)

// ParametersFile is the file the single-objective annealer writes its best
// parameters to.
const ParametersFile = "ffield_out"

// SingleObjective anneals a scalar error. Each epoch starts from the live
// parameters and leaves the best set found in them.
type SingleObjective struct {
	base
	ev        evaluator.ScalarEvaluator
	bestError *float64
}

// NewSingleObjective creates a single-objective annealer over params.
func NewSingleObjective(cfg config.Algorithm, params *forcefield.Set, ev evaluator.ScalarEvaluator, opts ...Option) *SingleObjective {
	return &SingleObjective{
		base: newBase(KindSingleObjective, cfg, params, opts),
		ev:   ev,
	}
}

// Kind implements Optimizer.
func (s *SingleObjective) Kind() Kind { return KindSingleObjective }

// BestError returns the best error of the last epoch, if any ran.
func (s *SingleObjective) BestError() (float64, bool) {
	if s.bestError == nil {
		return 0, false
	}
	return *s.bestError, true
}

func (s *SingleObjective) evaluate(ctx context.Context, params *forcefield.Set) (float64, error) {
	values, err := s.ev.Evaluate(ctx, params)
	if err != nil {
		return 0, err
	}
	e, err := s.ev.ScoreScalar(values)
	if err != nil {
		return 0, err
	}
	if err := evaluator.CheckFinite("error", e); err != nil {
		return 0, err
	}
	return e, nil
}

// RunEpoch implements Optimizer. Whatever way the epoch ends, the live
// parameters hold the best set seen during it.
func (s *SingleObjective) RunEpoch(ctx context.Context) (res *EpochResult, err error) {
	epoch := s.epoch
	s.epoch++

	current := s.params.Clone()
	currentError, err := s.evaluate(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("evaluate initial parameters: %w", err)
	}
	s.logger.Info("epoch started", "epoch", epoch, "initial_error", currentError)

	best := current.Clone()
	bestError := currentError
	initialError := currentError
	res = &EpochResult{Epoch: epoch, StopReason: StopScheduleExhausted, InitialError: &initialError}

	defer func() {
		s.params.CopyFrom(best)
		s.bestError = &bestError
		res.BestError = &bestError
		metrics.RecordBestError(s.collector, epoch, bestError)
		s.logger.Info("epoch finished", "epoch", epoch, "best_error", bestError,
			"stop_reason", res.StopReason, "trials", res.Trials, "accepted", res.Accepted)
	}()

rungs:
	for temperature, step := range Schedule(s.cfg.InitialTemperature, s.cfg.FinalTemperature, s.cfg.CoolingRate, s.cfg.NumberOfSteps) {
		trials, accepted := 0, 0
		for move := range s.ev.Moves(current) {
			if bestError < s.cfg.Threshold {
				res.StopReason = StopThreshold
				break rungs
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
			trials++

			old := move.Perturb(s.perturbation())
			newError, err := s.evaluate(ctx, current)
			if err != nil {
				move.Restore(old)
				return res, fmt.Errorf("evaluate trial %d at temperature %g: %w", trials, temperature, err)
			}

			delta := newError - currentError
			ok := s.acceptance.Accept(delta, temperature)
			s.acceptance.Record(delta)
			if ok {
				currentError = newError
				accepted++
				if currentError < bestError {
					best.CopyFrom(current)
					bestError = currentError
				}
			} else {
				move.Restore(old)
			}

			s.record(models.TrialRecord{
				Epoch:       epoch,
				Step:        step,
				Trial:       trials,
				Temperature: temperature,
				Energy:      currentError,
				Accepted:    ok,
			})
			s.logger.Debug("trial", "temperature", temperature, "step", step, "trial", trials, "error", currentError)
		}
		res.Trials += trials
		res.Accepted += accepted
		metrics.RecordAcceptedPerRung(s.collector, epoch, accepted)
		s.calibrate(trials)
	}
	return res, nil
}

// SaveParameters writes the live parameters to dir/ffield_out.
func (s *SingleObjective) SaveParameters(dir string) error {
	return s.ev.WriteParameters(s.params, filepath.Join(dir, ParametersFile))
}

// SaveErrors writes the trial trace to dir/errors_sa_<timestamp>.
func (s *SingleObjective) SaveErrors(dir string) error {
	_, err := writeTrace(dir, "errors_sa", s.trace)
	return err
}
