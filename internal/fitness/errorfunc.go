package fitness

import (
	"errors"
	"fmt"
	"math"
)

// ErrShapeMismatch is returned when calculated and reference series differ in length.
var ErrShapeMismatch = errors.New("calculated and reference values differ in length")

// ErrorFunc reduces a calculated series and its reference to a scalar error.
type ErrorFunc func(calculated, reference []float64) float64

var builtinErrorFuncs = map[string]ErrorFunc{
	"mae":   MeanAbsoluteError,
	"mase":  MeanAbsoluteScaledError,
	"rmse":  RootMeanSquareError,
	"nrmse": NormalizedRootMeanSquareError,
}

// LookupErrorFunc returns the named builtin error function, falling back to
// RootMeanSquareError for unknown names.
func LookupErrorFunc(name string) ErrorFunc {
	if f, ok := builtinErrorFuncs[name]; ok {
		return f
	}
	return RootMeanSquareError
}

// ComputeError checks shapes and applies f.
func ComputeError(f ErrorFunc, calculated, reference []float64) (float64, error) {
	if len(calculated) != len(reference) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(calculated), len(reference))
	}
	if len(calculated) == 0 {
		return 0, nil
	}
	return f(calculated, reference), nil
}

// MeanAbsoluteError is mean(|c - r|).
func MeanAbsoluteError(calculated, reference []float64) float64 {
	sum := 0.0
	for i := range calculated {
		sum += math.Abs(calculated[i] - reference[i])
	}
	return sum / float64(len(calculated))
}

// MeanAbsoluteScaledError scales the MAE by the mean absolute first
// difference of the reference series, when that is non-zero.
func MeanAbsoluteScaledError(calculated, reference []float64) float64 {
	mae := MeanAbsoluteError(calculated, reference)
	denominator := 1.0
	if n := len(reference); n > 1 {
		diff := 0.0
		for i := 1; i < n; i++ {
			diff += math.Abs(reference[i] - reference[i-1])
		}
		denominator = diff / float64(n-1)
	}
	if denominator != 0 {
		mae /= denominator
	}
	return mae
}

// RootMeanSquareError is sqrt(mean((c - r)^2)).
func RootMeanSquareError(calculated, reference []float64) float64 {
	sum := 0.0
	for i := range calculated {
		d := calculated[i] - reference[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(calculated)))
}

// NormalizedRootMeanSquareError divides the RMSE by the reference range, when non-zero.
func NormalizedRootMeanSquareError(calculated, reference []float64) float64 {
	rmse := RootMeanSquareError(calculated, reference)
	lo, hi := reference[0], reference[0]
	for _, r := range reference[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	if span := hi - lo; span != 0 {
		rmse /= span
	}
	return rmse
}
