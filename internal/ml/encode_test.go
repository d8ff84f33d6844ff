package ml

import (
	"testing"
)

func TestOneHotDropsFirstLevel(t *testing.T) {
	labels := []string{"b", "a", "c", "a", "b", ""}
	cols, names := OneHot(labels, "city")

	// Levels sort to a, b, c; "a" is the dropped reference and "" is missing.
	if len(names) != 2 || names[0] != "city_b" || names[1] != "city_c" {
		t.Fatalf("unexpected dummy names: %v", names)
	}

	wantB := []float64{1, 0, 0, 0, 1, 0}
	wantC := []float64{0, 0, 1, 0, 0, 0}
	for i := range labels {
		if cols[0][i] != wantB[i] {
			t.Errorf("city_b row %d = %v, want %v", i, cols[0][i], wantB[i])
		}
		if cols[1][i] != wantC[i] {
			t.Errorf("city_c row %d = %v, want %v", i, cols[1][i], wantC[i])
		}
	}
}

func TestOneHotDegenerateLevels(t *testing.T) {
	if cols, _ := OneHot([]string{"x", "x", "x"}, "p"); cols != nil {
		t.Error("a single level has no dummies after dropping the reference")
	}
	if cols, _ := OneHot([]string{"", ""}, "p"); cols != nil {
		t.Error("all-missing labels produce no dummies")
	}
}

func TestLabelEncode(t *testing.T) {
	encoded, classes := LabelEncode([]string{"red", "blue", "red", "", "green"})

	if len(classes) != 3 || classes[0] != "blue" || classes[1] != "green" || classes[2] != "red" {
		t.Fatalf("classes must be sorted: %v", classes)
	}
	want := []float64{2, 0, 2, -1, 1}
	for i := range want {
		if encoded[i] != want[i] {
			t.Errorf("encoded[%d] = %v, want %v", i, encoded[i], want[i])
		}
	}
}
