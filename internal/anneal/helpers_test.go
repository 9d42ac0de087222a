package anneal

import (
	"context"
	"errors"
	"io"
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

var errEvaluation = errors.New("evaluation failed")

func quietLogger() Option {
	return WithLogger(logger.NewText("error", io.Discard))
}

func testOptions(seed int64) []Option {
	return []Option{WithRand(utils.NewRandSource(seed)), quietLogger()}
}

func paramSet(t *testing.T, params ...config.Parameter) *forcefield.Set {
	t.Helper()
	s, err := forcefield.NewSet(params)
	require.NoError(t, err)
	return s
}

// quadratic scores a parameter set by its squared distance to target.
// Evaluations fail once failAfter calls have succeeded, if failAfter > 0,
// and call nanAt yields NaN values.
type quadratic struct {
	target    []float64
	calls     int
	failAfter int
	nanAt     int
}

func (q *quadratic) Moves(params *forcefield.Set) iter.Seq[forcefield.Move] { return params.Moves() }

func (q *quadratic) Evaluate(_ context.Context, params *forcefield.Set) (evaluator.Values, error) {
	q.calls++
	if q.failAfter > 0 && q.calls > q.failAfter {
		return nil, errEvaluation
	}
	if q.calls == q.nanAt {
		return evaluator.Values{"x": {math.NaN(), math.NaN(), math.NaN()}}, nil
	}
	return evaluator.Values{"x": slices.Clone(params.Values)}, nil
}

func (q *quadratic) Equal(a, b *forcefield.Set) bool { return forcefield.Equal(a, b, 1e-8) }

func (q *quadratic) WriteParameters(params *forcefield.Set, path string) error {
	return params.WriteFile(path)
}

func (q *quadratic) ScoreScalar(values evaluator.Values) (float64, error) {
	sum := 0.0
	for i, v := range values["x"] {
		d := v - q.target[i]
		sum += d * d
	}
	return sum, nil
}

// scripted returns fitness vectors chosen by a function of the call count.
// Evaluations fail once failAfter calls have succeeded, if failAfter > 0.
type scripted struct {
	names     []string
	next      func(call int) []float64
	calls     int
	failAfter int
	dropped   []string
}

func (s *scripted) Moves(params *forcefield.Set) iter.Seq[forcefield.Move] { return params.Moves() }

func (s *scripted) Evaluate(context.Context, *forcefield.Set) (evaluator.Values, error) {
	s.calls++
	if s.failAfter > 0 && s.calls > s.failAfter {
		return nil, errEvaluation
	}
	return evaluator.Values{"f": s.next(s.calls)}, nil
}

func (s *scripted) Equal(a, b *forcefield.Set) bool { return forcefield.Equal(a, b, 1e-8) }

func (s *scripted) WriteParameters(params *forcefield.Set, path string) error {
	return params.WriteFile(path)
}

func (s *scripted) ScoreVector(values evaluator.Values) (*fitness.Vector, error) {
	return fitness.NewVector(s.names, values["f"])
}

func (s *scripted) DropObjectives(names []string) []string {
	s.dropped = append(s.dropped, names...)
	return nil
}
