package archive

import (
	"context"
	"slices"
	"sort"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/workerpool"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

// surface is a read-only snapshot of the archive used to synthesize
// attainment-surface points.
type surface struct {
	names   []string
	members []Solution
	sorted  [][]float64 // per objective, ascending
	lower   []float64
	upper   []float64
	maxIter int
}

// GenerateAttainmentSurface appends target-Len() synthesized points that
// sit on the boundary of the archived front. It returns the number added.
// Nothing happens when the archive is empty or already holds target members.
// Points are synthesized concurrently from a snapshot and appended only
// after all of them are done.
func (a *Archive) GenerateAttainmentSurface(ctx context.Context, target int) (int, error) {
	if len(a.solutions) == 0 {
		return 0, nil
	}
	required := target - len(a.solutions)
	if required <= 0 {
		return 0, nil
	}

	snap := a.snapshot()
	rngs := make([]*utils.RandSource, required)
	for i := range rngs {
		rngs[i] = a.rng.Split()
	}

	a.logger.Debug("generating attainment surface", "required", required, "workers", a.workers)
	points, err := workerpool.Map(ctx, workerpool.New(a.workers), rngs,
		func(ctx context.Context, _ int, rng *utils.RandSource) (*fitness.Vector, error) {
			return snap.synthesize(rng)
		})
	if err != nil {
		return 0, err
	}

	for _, p := range points {
		a.solutions = append(a.solutions, Solution{Fitness: p})
	}
	a.logger.Debug("attainment surface generated", "added", len(points), "archive_size", len(a.solutions))
	return len(points), nil
}

func (a *Archive) snapshot() *surface {
	names := a.solutions[0].Fitness.Names()
	m := len(names)
	s := &surface{
		names:   slices.Clone(names),
		members: slices.Clone(a.solutions),
		sorted:  make([][]float64, m),
		lower:   make([]float64, m),
		upper:   make([]float64, m),
		maxIter: a.maxIter,
	}
	for d := 0; d < m; d++ {
		col := make([]float64, len(a.solutions))
		for i, member := range a.solutions {
			col[i] = member.Fitness.Values()[d]
		}
		sort.Float64s(col)
		s.sorted[d] = col
		s.lower[d] = col[0]
		s.upper[d] = col[len(col)-1]
	}
	return s
}

// synthesize draws a uniform point inside the archive's bounding box and
// snaps it axis by axis, in random order, onto archived values at or above
// it until some member dominates it. It falls back to the per-objective
// maximum vector.
func (s *surface) synthesize(rng *utils.RandSource) (*fitness.Vector, error) {
	m := len(s.names)
	candidate := make([]float64, m)
	for d := range candidate {
		candidate[d] = rng.UniformFloat64(s.lower[d], s.upper[d])
	}

	for iter := 0; iter < s.maxIter; iter++ {
		for _, d := range rng.Perm(m) {
			col := s.sorted[d]
			idx := sort.SearchFloat64s(col, candidate[d])
			if idx >= len(col) {
				return fitness.NewVector(s.names, s.upper)
			}
			candidate[d] = col[idx]

			v, err := fitness.NewVector(s.names, candidate)
			if err != nil {
				return nil, err
			}
			n, err := countDominators(s.members, v)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				return v, nil
			}
		}
	}
	return fitness.NewVector(s.names, s.upper)
}
