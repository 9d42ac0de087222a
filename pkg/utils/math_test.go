package utils

import (
	"math"
	"testing"
)

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{5.5, 0, 10, 5.5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := ClampFloat64(tt.value, tt.min, tt.max); got != tt.expected {
			t.Errorf("ClampFloat64(%f, %f, %f) = %f, expected %f", tt.value, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestMeanAndSum(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	if Sum(values) != 10 {
		t.Errorf("Sum = %f, expected 10", Sum(values))
	}
	if Mean(values) != 2.5 {
		t.Errorf("Mean = %f, expected 2.5", Mean(values))
	}
	if Mean(nil) != 0 {
		t.Error("Mean of empty slice should be 0")
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	if got := Percentile(values, 50); got != 30 {
		t.Errorf("P50 = %f, expected 30", got)
	}
	if got := Percentile(values, 25); got != 20 {
		t.Errorf("P25 = %f, expected 20", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile of empty slice = %f, expected 0", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		expected float64
	}{
		{1.23456789, 2, 1.23},
		{1.000000004, 8, 1.0},
		{1.000000006, 8, 1.00000001},
	}

	for _, tt := range tests {
		if got := Round(tt.value, tt.decimals); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Round(%v, %d) = %v, expected %v", tt.value, tt.decimals, got, tt.expected)
		}
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{3, -1, 7, 2})
	if min != -1 || max != 7 {
		t.Errorf("MinMax = (%f, %f), expected (-1, 7)", min, max)
	}
	min, max = MinMax(nil)
	if min != 0 || max != 0 {
		t.Errorf("MinMax(nil) = (%f, %f), expected (0, 0)", min, max)
	}
}
