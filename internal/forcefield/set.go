// Package forcefield holds the live parameter vector under optimization:
// move iteration, in-place perturbation with single-slot rollback,
// tolerance equality and the ffield text format.
package forcefield

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// ErrInvalidParameter is returned for malformed parameter definitions.
var ErrInvalidParameter = errors.New("invalid parameter")

// RelativeTolerance is added on top of the absolute tolerance in Equal.
const RelativeTolerance = 1e-5

// Set is a parameter vector with per-parameter step sizes and bounds.
// All slices share the same length and index.
type Set struct {
	Names  []string
	Values []float64
	Steps  []float64
	Lower  []float64
	Upper  []float64

	index map[string]int
}

// NewSet builds a Set from configured parameters.
func NewSet(params []config.Parameter) (*Set, error) {
	s := &Set{
		Names:  make([]string, 0, len(params)),
		Values: make([]float64, 0, len(params)),
		Steps:  make([]float64, 0, len(params)),
		Lower:  make([]float64, 0, len(params)),
		Upper:  make([]float64, 0, len(params)),
	}
	for _, p := range params {
		s.Names = append(s.Names, p.Name)
		s.Values = append(s.Values, p.Value)
		s.Steps = append(s.Steps, p.Step)
		s.Lower = append(s.Lower, p.Lower)
		s.Upper = append(s.Upper, p.Upper)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) validate() error {
	n := len(s.Names)
	if len(s.Values) != n || len(s.Steps) != n || len(s.Lower) != n || len(s.Upper) != n {
		return fmt.Errorf("%w: column lengths differ", ErrInvalidParameter)
	}
	s.index = make(map[string]int, n)
	for i, name := range s.Names {
		if name == "" {
			return fmt.Errorf("%w: empty name at index %d", ErrInvalidParameter, i)
		}
		if _, ok := s.index[name]; ok {
			return fmt.Errorf("%w: duplicate name %s", ErrInvalidParameter, name)
		}
		s.index[name] = i
		if s.Steps[i] < 0 {
			return fmt.Errorf("%w: %s has negative step %g", ErrInvalidParameter, name, s.Steps[i])
		}
		if s.Lower[i] > s.Upper[i] {
			return fmt.Errorf("%w: %s has lower %g above upper %g", ErrInvalidParameter, name, s.Lower[i], s.Upper[i])
		}
		if s.Values[i] < s.Lower[i] || s.Values[i] > s.Upper[i] {
			return fmt.Errorf("%w: %s value %g outside [%g, %g]", ErrInvalidParameter, name, s.Values[i], s.Lower[i], s.Upper[i])
		}
	}
	return nil
}

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.Names) }

// Index returns the position of the named parameter.
func (s *Set) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Clone returns a deep copy. Names, steps and bounds never change during a
// run and are shared.
func (s *Set) Clone() *Set {
	return &Set{
		Names:  s.Names,
		Values: slices.Clone(s.Values),
		Steps:  s.Steps,
		Lower:  s.Lower,
		Upper:  s.Upper,
		index:  s.index,
	}
}

// CopyFrom overwrites the values of s with those of o.
func (s *Set) CopyFrom(o *Set) {
	copy(s.Values, o.Values)
}

// Map returns name -> value.
func (s *Set) Map() map[string]float64 {
	m := make(map[string]float64, len(s.Names))
	for i, n := range s.Names {
		m[n] = s.Values[i]
	}
	return m
}

// Move is one trial perturbation of a single parameter. Values aliases the
// live vector so Perturb and Restore act in place.
type Move struct {
	Index    int
	Values   []float64
	StepSize float64
	Lower    float64
	Upper    float64
}

// Perturb sets the value to clamp(old*(1+u*step), lower, upper) and returns
// old for Restore. u is expected in [-1, 1).
func (m Move) Perturb(u float64) float64 {
	old := m.Values[m.Index]
	m.Values[m.Index] = utils.ClampFloat64(old*(1+u*m.StepSize), m.Lower, m.Upper)
	return old
}

// Restore writes back the value captured by Perturb.
func (m Move) Restore(old float64) {
	m.Values[m.Index] = old
}

// Moves yields one Move per parameter with a non-zero step, in order.
func (s *Set) Moves() iter.Seq[Move] {
	return func(yield func(Move) bool) {
		for i := range s.Values {
			if s.Steps[i] == 0 {
				continue
			}
			m := Move{Index: i, Values: s.Values, StepSize: s.Steps[i], Lower: s.Lower[i], Upper: s.Upper[i]}
			if !yield(m) {
				return
			}
		}
	}
}

// MovableCount returns the number of parameters Moves yields.
func (s *Set) MovableCount() int {
	n := 0
	for _, st := range s.Steps {
		if st != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether a and b hold the same values within
// atol + RelativeTolerance*|b| per element.
func Equal(a, b *Set, atol float64) bool {
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if math.Abs(a.Values[i]-b.Values[i]) > atol+RelativeTolerance*math.Abs(b.Values[i]) {
			return false
		}
	}
	return true
}
