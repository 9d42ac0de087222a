// Package archive keeps the non-dominated solutions found by the
// multi-objective annealer.
//
// Capacity is a soft bound: dominated members are pruned only when an
// insertion finds the archive already above capacity, and the insertion
// itself always succeeds. The archive has a single writer and no locking.
package archive

import (
	"log/slog"
	"slices"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// DefaultMaxIter bounds the snapping rounds per synthesized surface point.
const DefaultMaxIter = 20

// Solution is an archived fitness vector. Parameters is set only for
// solutions found by the search; synthesized surface points leave it nil
// and are never persisted.
type Solution struct {
	Parameters *forcefield.Set
	Fitness    *fitness.Vector
}

// Archive is an ordered collection of solutions with a soft capacity.
type Archive struct {
	capacity  int
	solutions []Solution
	saves     int

	rng     *utils.RandSource
	maxIter int
	workers int
	logger  *slog.Logger
}

// Option configures an Archive.
type Option func(*Archive)

// WithRand sets the random source used for surface synthesis.
func WithRand(r *utils.RandSource) Option {
	return func(a *Archive) { a.rng = r }
}

// WithMaxIter sets the snapping rounds per synthesized point.
func WithMaxIter(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.maxIter = n
		}
	}
}

// WithWorkers sets how many surface points are synthesized concurrently.
func WithWorkers(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) { a.logger = l }
}

// New creates an empty archive.
func New(capacity int, opts ...Option) *Archive {
	a := &Archive{
		capacity: capacity,
		maxIter:  DefaultMaxIter,
		workers:  1,
		logger:   logger.Default,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = utils.NewRandSource(0)
	}
	return a
}

// Capacity returns the soft capacity.
func (a *Archive) Capacity() int { return a.capacity }

// Len returns the number of archived solutions, synthesized points included.
func (a *Archive) Len() int { return len(a.solutions) }

// Saves returns how many times the archive has been dumped.
func (a *Archive) Saves() int { return a.saves }

// Solutions returns a shallow copy of the archived solutions.
func (a *Archive) Solutions() []Solution { return slices.Clone(a.solutions) }

// ObjectiveNames returns the objective names of the archived vectors, or
// nil when the archive is empty.
func (a *Archive) ObjectiveNames() []string {
	if len(a.solutions) == 0 {
		return nil
	}
	return slices.Clone(a.solutions[0].Fitness.Names())
}

// Push appends s, first removing the members s dominates when the archive
// is above capacity.
func (a *Archive) Push(s Solution) error {
	if len(a.solutions) > a.capacity {
		if _, err := a.PopDominated(s); err != nil {
			return err
		}
	}
	a.solutions = append(a.solutions, s)
	return nil
}

// PopDominated removes every member whose fitness is dominated by s and
// returns how many were removed. Members are not compared with each other.
func (a *Archive) PopDominated(s Solution) (int, error) {
	dominated := make([]bool, len(a.solutions))
	for i, member := range a.solutions {
		d, err := s.Fitness.Dominates(member.Fitness)
		if err != nil {
			return 0, err
		}
		dominated[i] = d
	}

	kept := a.solutions[:0]
	for i, member := range a.solutions {
		if !dominated[i] {
			kept = append(kept, member)
		}
	}
	removed := len(a.solutions) - len(kept)
	clear(a.solutions[len(kept):])
	a.solutions = kept
	return removed, nil
}

// CountDominators returns how many members dominate f.
func (a *Archive) CountDominators(f *fitness.Vector) (int, error) {
	return countDominators(a.solutions, f)
}

func countDominators(solutions []Solution, f *fitness.Vector) (int, error) {
	count := 0
	for _, member := range solutions {
		d, err := member.Fitness.Dominates(f)
		if err != nil {
			return 0, err
		}
		if d {
			count++
		}
	}
	return count, nil
}

// IsInside reports whether any member with a parameter snapshot is equal
// to params under equal.
func (a *Archive) IsInside(params *forcefield.Set, equal func(a, b *forcefield.Set) bool) bool {
	for _, member := range a.solutions {
		if member.Parameters != nil && equal(member.Parameters, params) {
			return true
		}
	}
	return false
}

func (a *Archive) popObjectives(names []string) {
	if len(names) == 0 {
		return
	}
	for _, member := range a.solutions {
		member.Fitness.PopObjectives(names)
	}
}
