// Package evaluator defines the collaborator the annealers use to score
// parameter sets, and an analytic Model implementing it.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
)

var (
	// ErrUnknownSystem is returned when a system name is not part of the model.
	ErrUnknownSystem = errors.New("unknown system")

	// ErrMissingParameter is returned when a parameter map lacks a value the model needs.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrMissingObjective is returned when calculated values lack an objective being scored.
	ErrMissingObjective = errors.New("missing calculated values for objective")

	// ErrNonFiniteScore is returned when an objective scores NaN or an infinity.
	ErrNonFiniteScore = errors.New("non-finite score")
)

// Values maps objective name to its calculated series.
type Values map[string][]float64

// Evaluator turns parameter sets into calculated values. Evaluate blocks
// until every sub-evaluation has returned; partial results are never exposed.
type Evaluator interface {
	// Moves yields the trial moves over params, one per movable parameter.
	Moves(params *forcefield.Set) iter.Seq[forcefield.Move]
	// Evaluate computes the calculated values for params.
	Evaluate(ctx context.Context, params *forcefield.Set) (Values, error)
	// Equal reports whether two parameter sets are equal within tolerance.
	Equal(a, b *forcefield.Set) bool
	// WriteParameters serializes params to path.
	WriteParameters(params *forcefield.Set, path string) error
}

// ScalarEvaluator scores calculated values into a single error.
type ScalarEvaluator interface {
	Evaluator
	ScoreScalar(values Values) (float64, error)
}

// VectorEvaluator scores calculated values into one error per objective.
type VectorEvaluator interface {
	Evaluator
	ScoreVector(values Values) (*fitness.Vector, error)
	// DropObjectives stops scoring the named objectives and returns the
	// evaluation sub-plans that no longer contribute any objective.
	DropObjectives(names []string) []string
}

// Runner evaluates one system's observables for a parameter map.
type Runner interface {
	RunSystem(ctx context.Context, system string, params map[string]float64) (map[string][]float64, error)
}

// CheckFinite returns ErrNonFiniteScore, naming the objective, when value
// is NaN or infinite.
func CheckFinite(objective string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s = %g", ErrNonFiniteScore, objective, value)
	}
	return nil
}

// ObjectiveName joins a system and observable into an objective name.
func ObjectiveName(system, observable string) string {
	return system + "_" + observable
}
