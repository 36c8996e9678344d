package analyzer

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.9, 0},
		{"single", []float64{42}, 0.9, 42},
		{"median of even count interpolates", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90 of 1..10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"p90 unsorted input", []float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5}, 0.9, 9.1},
		{"q0 is min", []float64{5, 1, 3}, 0, 1},
		{"q1 is max", []float64{5, 1, 3}, 1, 5},
		{"identical values", []float64{7, 7, 7, 7}, 0.9, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := percentile(tc.values, tc.q); !almostEqual(got, tc.want) {
				t.Errorf("percentile(%v, %v) = %v, want %v", tc.values, tc.q, got, tc.want)
			}
		})
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); !almostEqual(got, 2) {
		t.Errorf("odd median = %v", got)
	}
	if got := median([]float64{1, 2, 3, 4}); !almostEqual(got, 2.5) {
		t.Errorf("even median = %v", got)
	}
	if got := median(nil); got != 0 {
		t.Errorf("empty median = %v", got)
	}
}

func TestMeanAndMax(t *testing.T) {
	if got := mean([]float64{1, 2, 3}); !almostEqual(got, 2) {
		t.Errorf("mean = %v", got)
	}
	if got := maxOf([]float64{2, 9, 4}); !almostEqual(got, 9) {
		t.Errorf("max = %v", got)
	}
	if got := maxOf(nil); got != 0 {
		t.Errorf("max of empty = %v", got)
	}
}
