package ml

import (
	"math"
	"testing"
)

func TestDBSCANSeparatesDenseClumps(t *testing.T) {
	var X [][]float64
	// Two clumps of 6 points inside a 0.2 box, one far-away point.
	for i := 0; i < 6; i++ {
		d := 0.03 * float64(i)
		X = append(X, []float64{d, 0.2 - d})
	}
	for i := 0; i < 6; i++ {
		d := 0.03 * float64(i)
		X = append(X, []float64{40 + d, 40.2 - d})
	}
	X = append(X, []float64{1000, 1000})

	db := NewDBSCAN(0.5, 5)
	if err := db.Fit(X); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if got := db.NClusters(); got != 2 {
		t.Errorf("expected 2 clusters, got %d", got)
	}
	if got := db.NoiseCount(); got != 1 {
		t.Errorf("expected 1 noise point, got %d", got)
	}
	if db.Labels[len(X)-1] != NoiseLabel {
		t.Errorf("isolated point must be noise, got label %d", db.Labels[len(X)-1])
	}
	if db.Labels[0] == db.Labels[6] {
		t.Error("the two clumps must not share a label")
	}
}

func TestDBSCANAllNoiseWhenSparse(t *testing.T) {
	X := [][]float64{{0, 0}, {10, 10}, {20, 20}, {30, 30}, {40, 40}}
	db := NewDBSCAN(0.5, 5)
	if err := db.Fit(X); err != nil {
		t.Fatal(err)
	}
	if db.NClusters() != 0 || db.NoiseCount() != len(X) {
		t.Errorf("sparse points must all be noise: clusters=%d noise=%d", db.NClusters(), db.NoiseCount())
	}
}

func TestDBSCANRejectsBadInput(t *testing.T) {
	if err := NewDBSCAN(0.5, 5).Fit(nil); err == nil {
		t.Error("empty input must fail")
	}
	if err := NewDBSCAN(0, 5).Fit([][]float64{{1}}); err == nil {
		t.Error("non-positive eps must fail")
	}
}

func TestMeanFillColumns(t *testing.T) {
	cols := [][]float64{
		{1, math.NaN(), 3},  // mean of present values = 2
		{10, 20, math.NaN()}, // mean = 15
	}
	X := MeanFillColumns(cols)

	if len(X) != 3 || len(X[0]) != 2 {
		t.Fatalf("expected 3x2 matrix, got %dx%d", len(X), len(X[0]))
	}
	if X[1][0] != 2 {
		t.Errorf("NaN in column 0 must become 2, got %v", X[1][0])
	}
	if X[2][1] != 15 {
		t.Errorf("NaN in column 1 must become 15, got %v", X[2][1])
	}
	if X[0][0] != 1 || X[0][1] != 10 {
		t.Errorf("present values must pass through unchanged")
	}
}
