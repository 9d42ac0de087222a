package archive

import (
	"errors"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Cumulative eigenvalue mass after which no further principal components
// are inspected.
const (
	cutoffPCA  = 0.95
	cutoffLPCA = 0.997
	// cumulative mass defining the two-sigma component count of the
	// reduced-correlation-matrix analysis
	twoSigmaMass = 0.954
)

// ErrEigenFailed is returned when the correlation eigendecomposition does not converge.
var ErrEigenFailed = errors.New("eigendecomposition failed")

// DimensionReduction removes redundant objectives from every archived
// vector and returns the removed names. A principal component analysis of
// the objective correlation matrix runs first; modes containing "LPCA"
// follow it with a reduced-correlation-matrix clustering of what remains.
// Archives with fewer than two members or two objectives are left as is.
func (a *Archive) DimensionReduction(mode string) ([]string, error) {
	if len(a.solutions) < 2 || len(a.ObjectiveNames()) < 2 {
		return nil, nil
	}
	lpca := strings.Contains(mode, "LPCA")

	removed, err := a.pcaAnalysis(lpca)
	if err != nil {
		return nil, err
	}
	a.popObjectives(removed)
	a.logger.Info("principal component analysis", "removed", removed)

	if lpca && len(a.ObjectiveNames()) >= 2 {
		rcm, err := a.reducedCorrelationAnalysis()
		if err != nil {
			return nil, err
		}
		a.popObjectives(rcm)
		a.logger.Info("reduced correlation matrix analysis", "removed", rcm)
		removed = append(removed, rcm...)
	}
	return removed, nil
}

func (a *Archive) pcaAnalysis(lpca bool) ([]string, error) {
	names := a.ObjectiveNames()
	corr := a.correlationMatrix()
	values, vectors, order, err := eigen(corr)
	if err != nil {
		return nil, err
	}

	cutoff := cutoffPCA
	if lpca {
		cutoff = cutoffLPCA
	}
	total := 0.0
	for _, v := range values {
		total += v
	}

	keep := make(map[int]bool)
	cumulative := 0.0
	for _, k := range order {
		if cumulative > cutoff {
			break
		}
		cumulative += values[k] / total
		loadings := mat.Col(nil, k, vectors)
		for _, idx := range representatives(loadings, lpca) {
			keep[idx] = true
		}
	}

	var removed []string
	for i, n := range names {
		if !keep[i] {
			removed = append(removed, n)
		}
	}
	return removed, nil
}

// representatives picks the objectives that stand for one principal
// component, from the signs of its loadings:
//   - all non-negative: the two largest loadings
//   - all non-positive: the two smallest loadings
//   - mixed, LPCA: every loading on the side with the larger extreme,
//     plus the extreme of the opposite side
//   - mixed otherwise: the largest and the smallest loading
func representatives(loadings []float64, lpca bool) []int {
	m := len(loadings)
	desc := make([]int, m)
	for i := range desc {
		desc[i] = i
	}
	sort.SliceStable(desc, func(i, j int) bool { return loadings[desc[i]] > loadings[desc[j]] })

	nonNeg, nonPos := true, true
	for _, v := range loadings {
		if v < 0 {
			nonNeg = false
		}
		if v > 0 {
			nonPos = false
		}
	}

	switch {
	case nonNeg:
		return []int{desc[0], desc[1]}
	case nonPos:
		return []int{desc[m-1], desc[m-2]}
	case !lpca:
		return []int{desc[0], desc[m-1]}
	}

	top, bottom := desc[0], desc[m-1]
	var out []int
	if loadings[top] >= math.Abs(loadings[bottom]) {
		for i, v := range loadings {
			if v > 0 {
				out = append(out, i)
			}
		}
		return append(out, bottom)
	}
	for i, v := range loadings {
		if v < 0 {
			out = append(out, i)
		}
	}
	return append(out, top)
}

func (a *Archive) reducedCorrelationAnalysis() ([]string, error) {
	names := a.ObjectiveNames()
	corr := a.correlationMatrix()
	values, vectors, order, err := eigen(corr)
	if err != nil {
		return nil, err
	}
	m := len(names)

	total := 0.0
	for _, v := range values {
		total += v
	}
	twoSigma := 0
	cumulative := 0.0
	for _, k := range order {
		cumulative += values[k] / total
		if cumulative < twoSigmaMass {
			twoSigma++
		}
	}
	threshold := 1 - values[order[0]]*(1-float64(twoSigma))/float64(m)
	a.logger.Debug("correlation threshold", "threshold", threshold, "two_sigma", twoSigma)

	var subsets [][]int
	appeared := make([]bool, m)
	for i := 0; i < m; i++ {
		var sub []int
		for j := 0; j < m; j++ {
			if appeared[j] {
				continue
			}
			if i == j || (sameSigns(corr, i, j) && threshold <= corr.At(i, j)) {
				sub = append(sub, j)
				appeared[j] = true
			}
		}
		if len(sub) > 0 {
			subsets = append(subsets, sub)
		}
		if allTrue(appeared) {
			break
		}
	}

	remove := make(map[int]bool)
	for _, sub := range subsets {
		best, bestContribution := -1, math.Inf(-1)
		for _, k := range sub {
			c := 0.0
			for i, lambda := range values {
				c += lambda * math.Abs(vectors.At(k, i))
			}
			if c > bestContribution {
				best, bestContribution = k, c
			}
		}
		for _, k := range sub {
			if k != best {
				remove[k] = true
			}
		}
	}

	var removed []string
	for i, n := range names {
		if remove[i] {
			removed = append(removed, n)
		}
	}
	return removed, nil
}

// correlationMatrix returns the Pearson correlation between the archived
// objective columns. Undefined correlations of constant columns are 0.
func (a *Archive) correlationMatrix() *mat.SymDense {
	m := len(a.ObjectiveNames())
	cols := make([][]float64, m)
	for d := range cols {
		cols[d] = make([]float64, len(a.solutions))
		for i, s := range a.solutions {
			cols[d][i] = s.Fitness.Values()[d]
		}
	}

	corr := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		corr.SetSym(i, i, 1)
		for j := i + 1; j < m; j++ {
			c := stat.Correlation(cols[i], cols[j], nil)
			if math.IsNaN(c) {
				c = 0
			}
			corr.SetSym(i, j, c)
		}
	}
	return corr
}

// eigen decomposes corr*corr^T/m and returns its eigenvalues, the
// eigenvectors as columns and the eigenvalue indices in descending order.
func eigen(corr *mat.SymDense) ([]float64, *mat.Dense, []int, error) {
	m, _ := corr.Dims()
	var prod mat.Dense
	prod.Mul(corr, corr.T())
	sym := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			sym.SetSym(i, j, (prod.At(i, j)+prod.At(j, i))/2/float64(m))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return nil, nil, nil, ErrEigenFailed
	}
	values := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] > values[order[j]] })
	return values, &vectors, order, nil
}

func sameSigns(corr *mat.SymDense, i, j int) bool {
	m, _ := corr.Dims()
	for k := 0; k < m; k++ {
		if sign(corr.At(i, k)) != sign(corr.At(j, k)) {
			return false
		}
	}
	return true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func allTrue(b []bool) bool {
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}
