package archive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
)

// ParameterWriter serializes a parameter set to a file.
type ParameterWriter interface {
	WriteParameters(params *forcefield.Set, path string) error
}

// Dump writes the members carrying a parameter snapshot that no other such
// member dominates into dir/save_<n>, as ffield_<k> through w plus a
// fitness_<k> text record, and advances the save counter. The archive itself
// is not pruned. It returns the number of members written.
func (a *Archive) Dump(dir string, w ParameterWriter) (int, error) {
	front, err := a.parameterFront()
	if err != nil {
		return 0, err
	}
	saveDir := filepath.Join(dir, fmt.Sprintf("save_%d", a.saves))
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create save directory %s: %w", saveDir, err)
	}

	count := 0
	for _, s := range front {
		paramPath := filepath.Join(saveDir, fmt.Sprintf("ffield_%d", count))
		if err := w.WriteParameters(s.Parameters, paramPath); err != nil {
			return count, fmt.Errorf("failed to save parameters %s: %w", paramPath, err)
		}
		fitnessPath := filepath.Join(saveDir, fmt.Sprintf("fitness_%d", count))
		if err := writeFitness(fitnessPath, s); err != nil {
			return count, err
		}
		count++
	}

	a.saves++
	a.logger.Info("archive saved", "directory", saveDir, "solutions", count)
	return count, nil
}

// parameterFront returns the parameter-bearing members not dominated by
// another parameter-bearing member.
func (a *Archive) parameterFront() ([]Solution, error) {
	var withParams []Solution
	for _, s := range a.solutions {
		if s.Parameters != nil {
			withParams = append(withParams, s)
		}
	}
	var front []Solution
	for i, s := range withParams {
		dominated := false
		for j, o := range withParams {
			if i == j {
				continue
			}
			d, err := o.Fitness.Dominates(s.Fitness)
			if err != nil {
				return nil, err
			}
			if d {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, s)
		}
	}
	return front, nil
}

func writeFitness(path string, s Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create fitness file %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	fmt.Fprintln(bw, strings.Join(s.Fitness.Names(), " "))
	values := make([]string, s.Fitness.Len())
	for i, v := range s.Fitness.Values() {
		values[i] = fmt.Sprintf("%8.6f", v)
	}
	fmt.Fprintln(bw, strings.Join(values, " "))
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write fitness file %s: %w", path, err)
	}
	return f.Close()
}
