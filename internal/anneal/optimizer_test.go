package anneal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
)

func TestNewSelectsVariant(t *testing.T) {
	cfg, err := config.LoadConfig("../../config/config.yaml")
	require.NoError(t, err)
	model, err := evaluator.NewModel(cfg)
	require.NoError(t, err)
	params, err := forcefield.NewSet(cfg.Parameters)
	require.NoError(t, err)

	tests := []struct {
		name string
		want Kind
	}{
		{"simulated_annealing", KindSingleObjective},
		{"dominance_based_multiobjective_simulated_annealing", KindDominance},
		{"dominance_based_simulated_annealing", KindDominance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg := cfg.Algorithm
			alg.Name = tt.name
			opt, err := New(alg, params, model, quietLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, opt.Kind())
		})
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	q := &quadratic{target: []float64{0}}
	_, err := New(config.Algorithm{Name: "genetic"}, paramSet(t, config.Parameter{Name: "x", Step: 0.1, Lower: -1, Upper: 1}), q)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestNewRejectsUnsupportedEvaluator(t *testing.T) {
	params := paramSet(t, config.Parameter{Name: "x", Step: 0.1, Lower: -1, Upper: 1})

	_, err := New(config.Algorithm{Name: string(KindDominance)}, params, &quadratic{target: []float64{0}})
	assert.ErrorIs(t, err, ErrUnsupportedEvaluator)

	_, err = New(config.Algorithm{Name: string(KindSingleObjective)}, params, twoObjectives())
	assert.ErrorIs(t, err, ErrUnsupportedEvaluator)
}

func TestRunWithModel(t *testing.T) {
	cfg, err := config.LoadConfig("../../config/config.yaml")
	require.NoError(t, err)
	cfg.Algorithm.InitialTemperature = 1
	cfg.Algorithm.FinalTemperature = 0.3
	cfg.Algorithm.CoolingRate = 0.5
	cfg.Algorithm.NumberOfSteps = 2
	cfg.Algorithm.FillSteps = 2

	for _, name := range []Kind{KindSingleObjective, KindDominance} {
		t.Run(string(name), func(t *testing.T) {
			model, err := evaluator.NewModel(cfg)
			require.NoError(t, err)
			params, err := forcefield.NewSet(cfg.Parameters)
			require.NoError(t, err)

			alg := cfg.Algorithm
			alg.Name = string(name)
			opt, err := New(alg, params, model, testOptions(cfg.Seed)...)
			require.NoError(t, err)

			values, err := model.Evaluate(context.Background(), params)
			require.NoError(t, err)

			res, err := Run(context.Background(), opt, 2)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, 1, res.Epoch)
			switch name {
			case KindSingleObjective:
				assert.NotNil(t, res.BestError)
				start, err := model.ScoreScalar(values)
				require.NoError(t, err)
				require.NotNil(t, res.InitialError)
				assert.Equal(t, start, *res.InitialError, "initial error of the first epoch")
			case KindDominance:
				require.NotNil(t, res.ArchiveSize)
				assert.Positive(t, *res.ArchiveSize)
			}

			dir := t.TempDir()
			require.NoError(t, opt.SaveParameters(dir))
			require.NoError(t, opt.SaveErrors(dir))
		})
	}
}
