package fitness

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ab = []string{"a", "b"}

func TestNewVectorValidation(t *testing.T) {
	_, err := NewVector([]string{"a", "a"}, []float64{1, 2})
	require.ErrorIs(t, err, ErrDuplicateObjective)

	_, err = NewVector([]string{"a"}, []float64{1, 2})
	require.ErrorIs(t, err, ErrLengthMismatch)

	names := []string{"a", "b"}
	values := []float64{1, 2}
	v, err := NewVector(names, values)
	require.NoError(t, err)
	names[0] = "z"
	values[0] = 9
	assert.Equal(t, []string{"a", "b"}, v.Names())
	assert.Equal(t, []float64{1, 2}, v.Values())
}

func TestDominatesScenario(t *testing.T) {
	x := MustVector(ab, []float64{1, 5})
	y := MustVector(ab, []float64{2, 4})
	z := MustVector(ab, []float64{1, 4})

	for _, pair := range [][2]*Vector{{x, y}, {y, x}} {
		d, err := pair[0].Dominates(pair[1])
		require.NoError(t, err)
		assert.False(t, d, "%v should not dominate %v", pair[0], pair[1])
	}
	for _, other := range []*Vector{x, y} {
		d, err := z.Dominates(other)
		require.NoError(t, err)
		assert.True(t, d, "%v should dominate %v", z, other)
	}
}

func TestDominatesIrreflexive(t *testing.T) {
	v := MustVector(ab, []float64{3, 3})
	d, err := v.Dominates(v.Clone())
	require.NoError(t, err)
	assert.False(t, d)
}

func TestDominatesRoundsBeforeComparing(t *testing.T) {
	v := MustVector(ab, []float64{1.000000001, 2})
	w := MustVector(ab, []float64{1.000000004, 2})
	d, err := v.Dominates(w)
	require.NoError(t, err)
	assert.False(t, d, "differences below 1e-8 must not produce strict dominance")

	w2 := MustVector(ab, []float64{1.00000002, 2})
	d, err = v.Dominates(w2)
	require.NoError(t, err)
	assert.True(t, d)
}

func TestDominatesAsymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"a", "b", "c"}
	for i := 0; i < 500; i++ {
		a := MustVector(names, []float64{float64(rng.Intn(4)), float64(rng.Intn(4)), float64(rng.Intn(4))})
		b := MustVector(names, []float64{float64(rng.Intn(4)), float64(rng.Intn(4)), float64(rng.Intn(4))})
		aDomB, err := a.Dominates(b)
		require.NoError(t, err)
		ba, err := b.Dominates(a)
		require.NoError(t, err)
		if aDomB {
			assert.False(t, ba, "%v and %v dominate each other", a, b)
		}
	}
}

func TestDominatesObjectiveMismatch(t *testing.T) {
	v := MustVector(ab, []float64{1, 2})
	tests := []struct {
		name  string
		other *Vector
	}{
		{"different order", MustVector([]string{"b", "a"}, []float64{1, 2})},
		{"different set", MustVector([]string{"a", "c"}, []float64{1, 2})},
		{"different length", MustVector([]string{"a"}, []float64{1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Dominates(tt.other)
			assert.ErrorIs(t, err, ErrObjectiveMismatch)
		})
	}
}

func TestPopObjectivesKeepsPairing(t *testing.T) {
	v := MustVector([]string{"a", "b", "c", "d"}, []float64{1, 2, 3, 4})
	v.PopObjectives([]string{"c", "a", "missing"})

	if diff := cmp.Diff([]string{"b", "d"}, v.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 4}, v.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	got, ok := v.Value("d")
	assert.True(t, ok)
	assert.Equal(t, 4.0, got)
}

func TestCloneIsIndependent(t *testing.T) {
	v := MustVector(ab, []float64{1, 2})
	c := v.Clone()
	c.PopObjectives([]string{"a"})
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, 1, c.Len())
}
