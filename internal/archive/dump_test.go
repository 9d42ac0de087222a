package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/fitness"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
)

type fileWriter struct{}

func (fileWriter) WriteParameters(params *forcefield.Set, path string) error {
	return params.WriteFile(path)
}

func TestDump(t *testing.T) {
	params, err := forcefield.NewSet([]config.Parameter{{Name: "De", Value: 4, Step: 0.1, Lower: 1, Upper: 8}})
	require.NoError(t, err)

	a := New(10)
	require.NoError(t, a.Push(Solution{Parameters: params.Clone(), Fitness: fitness.MustVector(ab, []float64{1, 2.5})}))
	require.NoError(t, a.Push(sol(3, 3)))
	require.NoError(t, a.Push(Solution{Parameters: params.Clone(), Fitness: fitness.MustVector(ab, []float64{0.25, 12})}))

	dir := t.TempDir()
	n, err := a.Dump(dir, fileWriter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, a.Saves())

	data, err := os.ReadFile(filepath.Join(dir, "save_0", "fitness_1"))
	require.NoError(t, err)
	assert.Equal(t, "a b\n0.250000 12.000000\n", string(data))

	back, err := forcefield.ReadFile(filepath.Join(dir, "save_0", "ffield_0"))
	require.NoError(t, err)
	assert.True(t, forcefield.Equal(params, back, 0))

	_, err = os.Stat(filepath.Join(dir, "save_0", "ffield_2"))
	assert.True(t, os.IsNotExist(err))

	_, err = a.Dump(dir, fileWriter{})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "save_1", "fitness_0"))
	assert.NoError(t, err)
	assert.Equal(t, 3, a.Len(), "dumping never prunes")
}

func TestDumpSkipsDominatedSnapshots(t *testing.T) {
	params, err := forcefield.NewSet([]config.Parameter{{Name: "De", Value: 4, Step: 0.1, Lower: 1, Upper: 8}})
	require.NoError(t, err)

	a := New(10)
	require.NoError(t, a.Push(Solution{Parameters: params.Clone(), Fitness: fitness.MustVector(ab, []float64{2, 3})}))
	require.NoError(t, a.Push(Solution{Parameters: params.Clone(), Fitness: fitness.MustVector(ab, []float64{1, 2.5})}))
	// a synthesized point dominates both but carries no parameters
	require.NoError(t, a.Push(sol(0, 0)))

	dir := t.TempDir()
	n, err := a.Dump(dir, fileWriter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(filepath.Join(dir, "save_0", "fitness_0"))
	require.NoError(t, err)
	assert.Equal(t, "a b\n1.000000 2.500000\n", string(data))
	_, err = os.Stat(filepath.Join(dir, "save_0", "ffield_1"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 3, a.Len())
}
