package ml

import (
	"math"
	"testing"
)

func TestAccuracy(t *testing.T) {
	yTrue := []float64{0, 1, 1, 0}
	yPred := []float64{0, 1, 0, 0}
	if got := Accuracy(yTrue, yPred); got != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
	if got := Accuracy(nil, nil); got != 0 {
		t.Errorf("empty accuracy = %v, want 0", got)
	}
}

func TestClassificationReport(t *testing.T) {
	// Class 0: 2 true, both predicted 0, plus one false positive.
	yTrue := []float64{0, 0, 1, 1}
	yPred := []float64{0, 0, 0, 1}

	report := ClassificationReport(yTrue, yPred, 2)

	c0 := report[0]
	if c0.Precision != 2.0/3.0 {
		t.Errorf("class 0 precision = %v", c0.Precision)
	}
	if c0.Recall != 1 {
		t.Errorf("class 0 recall = %v", c0.Recall)
	}
	if c0.Support != 2 {
		t.Errorf("class 0 support = %d", c0.Support)
	}

	c1 := report[1]
	if c1.Precision != 1 || c1.Recall != 0.5 {
		t.Errorf("class 1 precision/recall = %v/%v", c1.Precision, c1.Recall)
	}
	wantF1 := 2 * 1 * 0.5 / 1.5
	if math.Abs(c1.F1-wantF1) > 1e-12 {
		t.Errorf("class 1 F1 = %v, want %v", c1.F1, wantF1)
	}
}

func TestRegressionMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 2, 3, 4}
	if MSE(yTrue, yPred) != 0 || RMSE(yTrue, yPred) != 0 {
		t.Error("perfect predictions must give zero error")
	}
	if R2(yTrue, yPred) != 1 {
		t.Error("perfect predictions must give R2 of 1")
	}

	off := []float64{2, 3, 4, 5}
	if got := MSE(yTrue, off); got != 1 {
		t.Errorf("MSE = %v, want 1", got)
	}
	if got := RMSE(yTrue, off); got != 1 {
		t.Errorf("RMSE = %v, want 1", got)
	}

	// Constant truth: R2 is defined as 1 only for an exact fit.
	flat := []float64{5, 5, 5}
	if got := R2(flat, []float64{5, 5, 5}); got != 1 {
		t.Errorf("R2 on exact constant fit = %v", got)
	}
	if got := R2(flat, []float64{4, 5, 6}); got != 0 {
		t.Errorf("R2 on missed constant = %v", got)
	}
}
