package anneal

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
)

func singleConfig() config.Algorithm {
	return config.Algorithm{
		Name:                  string(KindSingleObjective),
		InitialTemperature:    1,
		FinalTemperature:      0.1,
		CoolingRate:           0.8,
		NumberOfSteps:         5,
		AcceptanceProbability: 0.5,
	}
}

func singleParams(t *testing.T) *forcefield.Set {
	return paramSet(t,
		config.Parameter{Name: "u", Value: 2, Step: 0.3, Lower: -5, Upper: 5},
		config.Parameter{Name: "v", Value: -1, Step: 0.3, Lower: -5, Upper: 5},
		config.Parameter{Name: "fixed", Value: 1, Step: 0, Lower: 1, Upper: 1},
	)
}

func score(t *testing.T, q *quadratic, params *forcefield.Set) float64 {
	t.Helper()
	values, err := q.Evaluate(context.Background(), params)
	require.NoError(t, err)
	e, err := q.ScoreScalar(values)
	require.NoError(t, err)
	return e
}

func TestSingleObjectiveLeavesBestParameters(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	params := singleParams(t)
	initial := score(t, q, params)

	s := NewSingleObjective(singleConfig(), params, q, testOptions(3)...)
	res, err := s.RunEpoch(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.InitialError)
	assert.Equal(t, initial, *res.InitialError)
	require.NotNil(t, res.BestError)
	assert.LessOrEqual(t, *res.BestError, initial)
	assert.InDelta(t, *res.BestError, score(t, q, s.Parameters()), 1e-12)
	assert.Equal(t, StopScheduleExhausted, res.StopReason)
	// two movable parameters per rung, 11 temperatures of 5 steps
	assert.Equal(t, 2*11*5, res.Trials)
	assert.Len(t, s.Trace(), res.Trials)
	assert.Equal(t, 1.0, s.Parameters().Values[2])

	best, ok := s.BestError()
	require.True(t, ok)
	assert.Equal(t, *res.BestError, best)
}

func TestSingleObjectiveThresholdStops(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	params := singleParams(t)
	before := params.Clone()

	cfg := singleConfig()
	cfg.Threshold = 1e9
	s := NewSingleObjective(cfg, params, q, testOptions(1)...)
	res, err := s.RunEpoch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StopThreshold, res.StopReason)
	assert.Zero(t, res.Trials)
	assert.Equal(t, before.Values, params.Values)
}

func TestSingleObjectiveEvaluationErrorKeepsBest(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}, failAfter: 8}
	params := singleParams(t)
	initial := score(t, &quadratic{target: q.target}, params)

	s := NewSingleObjective(singleConfig(), params, q, testOptions(5)...)
	res, err := s.RunEpoch(context.Background())
	require.ErrorIs(t, err, errEvaluation)

	require.NotNil(t, res)
	require.NotNil(t, res.BestError)
	assert.LessOrEqual(t, *res.BestError, initial)
	assert.Len(t, s.Trace(), 7, "one initial evaluation and seven trials succeed")
	assert.Equal(t, 6, res.Trials, "three complete rungs")
	assert.InDelta(t, *res.BestError, score(t, &quadratic{target: q.target}, params), 1e-12)
}

func TestSingleObjectiveNonFiniteScoreFails(t *testing.T) {
	// the initial evaluation succeeds, the first trial scores NaN
	q := &quadratic{target: []float64{0.5, 0.5, 1}, nanAt: 2}
	params := singleParams(t)
	before := params.Clone()

	s := NewSingleObjective(singleConfig(), params, q, testOptions(5)...)
	res, err := s.RunEpoch(context.Background())
	require.ErrorIs(t, err, evaluator.ErrNonFiniteScore)

	require.NotNil(t, res.BestError)
	assert.InDelta(t, score(t, &quadratic{target: q.target}, before), *res.BestError, 1e-12)
	assert.Equal(t, before.Values, params.Values, "the perturbed value is restored")
	assert.Empty(t, s.Trace())
	assert.True(t, s.Acceptance().NeedsCalibration())
}

func TestSingleObjectiveCancelled(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSingleObjective(singleConfig(), singleParams(t), q, testOptions(1)...)
	_, err := s.RunEpoch(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSingleObjectiveEpochsContinueFromBest(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	s := NewSingleObjective(singleConfig(), singleParams(t), q, testOptions(11)...)

	first, err := s.RunEpoch(context.Background())
	require.NoError(t, err)
	second, err := s.RunEpoch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, first.Epoch)
	assert.Equal(t, 1, second.Epoch)
	assert.LessOrEqual(t, *second.BestError, *first.BestError)
	assert.Equal(t, 2, s.Epochs())
}

func TestSingleObjectiveRecordsMetrics(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	c := metrics.NewCollector()
	opts := append(testOptions(2), WithCollector(c))
	s := NewSingleObjective(singleConfig(), singleParams(t), q, opts...)

	res, err := s.RunEpoch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, res.Trials, c.TrialCount())
	best, ok := c.Last(metrics.MetricBestError, nil)
	require.True(t, ok)
	assert.Equal(t, *res.BestError, best)
}

func TestSingleObjectiveSaveFiles(t *testing.T) {
	q := &quadratic{target: []float64{0.5, 0.5, 1}}
	s := NewSingleObjective(singleConfig(), singleParams(t), q, testOptions(4)...)
	res, err := s.RunEpoch(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, s.SaveParameters(dir))
	saved, err := forcefield.ReadFile(filepath.Join(dir, ParametersFile))
	require.NoError(t, err)
	assert.True(t, forcefield.Equal(saved, s.Parameters(), 1e-12))

	require.NoError(t, s.SaveErrors(dir))
	matches, err := filepath.Glob(filepath.Join(dir, "errors_sa_*"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := os.Open(matches[0])
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, strings.TrimSpace(traceHeader), lines[0])
	assert.Len(t, lines, res.Trials+1)
	assert.Len(t, strings.Fields(lines[1]), 5)
}
