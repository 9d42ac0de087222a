// Package fitness holds named multi-objective values and the scalar error
// functions used to turn calculated observables into objective values.
package fitness

import (
	"errors"
	"fmt"
	"slices"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// Decimals is the rounding applied to objective values before comparison.
const Decimals = 8

var (
	// ErrObjectiveMismatch is returned when two vectors with different
	// objective name sequences are compared.
	ErrObjectiveMismatch = errors.New("objective names mismatch")

	// ErrDuplicateObjective is returned when a vector is built with a
	// repeated objective name.
	ErrDuplicateObjective = errors.New("duplicate objective name")

	// ErrLengthMismatch is returned when names and values differ in length.
	ErrLengthMismatch = errors.New("names and values differ in length")
)

// Vector is an ordered set of named objective values. names[i] pairs with
// values[i]; the pairing survives PopObjectives.
type Vector struct {
	names  []string
	values []float64
}

// NewVector builds a vector from copies of names and values.
func NewVector(names []string, values []float64) (*Vector, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names, %d values", ErrLengthMismatch, len(names), len(values))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateObjective, n)
		}
		seen[n] = struct{}{}
	}
	return &Vector{names: slices.Clone(names), values: slices.Clone(values)}, nil
}

// MustVector is NewVector for literals known to be valid.
func MustVector(names []string, values []float64) *Vector {
	v, err := NewVector(names, values)
	if err != nil {
		panic(err)
	}
	return v
}

// Names returns the objective names. The slice must not be modified.
func (v *Vector) Names() []string { return v.names }

// Values returns the objective values. The slice must not be modified.
func (v *Vector) Values() []float64 { return v.values }

// Len returns the number of objectives.
func (v *Vector) Len() int { return len(v.names) }

// Value returns the value of the named objective.
func (v *Vector) Value(name string) (float64, bool) {
	i := slices.Index(v.names, name)
	if i < 0 {
		return 0, false
	}
	return v.values[i], true
}

// Clone returns a deep copy.
func (v *Vector) Clone() *Vector {
	return &Vector{names: slices.Clone(v.names), values: slices.Clone(v.values)}
}

// PopObjectives removes the named objectives, keeping the order of the rest.
// Unknown names are ignored.
func (v *Vector) PopObjectives(names []string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keptNames := v.names[:0]
	keptValues := v.values[:0]
	for i, n := range v.names {
		if _, ok := drop[n]; ok {
			continue
		}
		keptNames = append(keptNames, n)
		keptValues = append(keptValues, v.values[i])
	}
	v.names = keptNames
	v.values = keptValues
}

// SameObjectives reports whether both vectors carry the same name sequence.
func (v *Vector) SameObjectives(o *Vector) bool {
	return slices.Equal(v.names, o.names)
}

// Dominates reports whether v Pareto-dominates o: no worse on every
// objective and strictly better on at least one, after rounding both to
// Decimals places.
func (v *Vector) Dominates(o *Vector) (bool, error) {
	if !v.SameObjectives(o) {
		return false, fmt.Errorf("%w: %v vs %v", ErrObjectiveMismatch, v.names, o.names)
	}
	better := false
	for i := range v.values {
		a := utils.Round(v.values[i], Decimals)
		b := utils.Round(o.values[i], Decimals)
		if a > b {
			return false, nil
		}
		if a < b {
			better = true
		}
	}
	return better, nil
}

func (v *Vector) String() string {
	return fmt.Sprintf("%v=%v", v.names, v.values)
}
