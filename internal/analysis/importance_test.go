package analysis

import (
	"errors"
	"strings"
	"testing"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/config"
	"goeda/internal/ml"
	"goeda/internal/testkit"
)

func TestImportanceMissingTarget(t *testing.T) {
	ds := testkit.MustDataset("empty-target",
		testkit.Numeric("x", []float64{1, 2, 3}),
	)
	result := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig()).Analyze(ds, "y", "")
	if !result.IsError() {
		t.Fatal("expected an error result for a missing target")
	}
	if !strings.Contains(result.Err.Reason, "not found") {
		t.Errorf("unexpected reason: %s", result.Err.Reason)
	}
}

func TestInferTask(t *testing.T) {
	distinct := func(n int) []float64 {
		out := make([]float64, 50)
		for i := range out {
			out[i] = float64(i % n)
		}
		return out
	}

	tests := []struct {
		name string
		col  dataset.Column
		want domain.TaskType
	}{
		{"categorical target", testkit.Categorical("t", testkit.Labels(50, "a", "b")), domain.TaskClassification},
		{"nine distinct values", testkit.Numeric("t", distinct(9)), domain.TaskClassification},
		{"ten distinct values", testkit.Numeric("t", distinct(10)), domain.TaskRegression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferTask(tt.col); got != tt.want {
				t.Errorf("inferTask = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportanceClassification(t *testing.T) {
	g := testkit.NewGenerator(23)
	n := 200
	x := g.Uniform(n, 0, 10)
	noise := g.Uniform(n, 0, 10)
	labels := make([]string, n)
	for i := range labels {
		if x[i] > 5 {
			labels[i] = "high"
		} else {
			labels[i] = "low"
		}
	}

	ds := testkit.MustDataset("classify",
		testkit.Numeric("x", x),
		testkit.Numeric("noise", noise),
		testkit.Categorical("target", labels),
	)

	result := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig()).Analyze(ds, "target", "")
	if result.IsError() {
		t.Fatalf("unexpected error: %s", result.Err.Reason)
	}

	imp := result.Importance
	if imp.TaskType != domain.TaskClassification {
		t.Errorf("expected classification, got %q", imp.TaskType)
	}
	if imp.Performance.Accuracy < 0.8 {
		t.Errorf("a threshold rule should be easy to learn, accuracy=%v", imp.Performance.Accuracy)
	}
	if len(imp.Performance.ClassificationReport) != 2 {
		t.Errorf("expected per-class metrics for 2 classes, got %d", len(imp.Performance.ClassificationReport))
	}
	if imp.FeatureImportance[0].Feature != "x" {
		t.Errorf("x must dominate the ranking, got %q", imp.FeatureImportance[0].Feature)
	}
	if imp.ShapSource != domain.ShapFromAttribution {
		t.Errorf("attribution should succeed, got %q", imp.ShapSource)
	}
	if len(imp.TopFeatures) == 0 || imp.TopFeatures[0] != "x" {
		t.Errorf("top features must lead with x, got %v", imp.TopFeatures)
	}
}

func TestImportanceRegression(t *testing.T) {
	g := testkit.NewGenerator(29)
	n := 200
	x := g.Uniform(n, 0, 10)
	y := g.Linear(x, 3, 2, 0.5)
	z := g.Uniform(n, 0, 10)

	ds := testkit.MustDataset("regress",
		testkit.Numeric("x", x),
		testkit.Numeric("z", z),
		testkit.Numeric("y", y),
	)

	result := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig()).Analyze(ds, "y", "")
	if result.IsError() {
		t.Fatalf("unexpected error: %s", result.Err.Reason)
	}

	imp := result.Importance
	if imp.TaskType != domain.TaskRegression {
		t.Errorf("expected regression, got %q", imp.TaskType)
	}
	if imp.Performance.R2 < 0.5 {
		t.Errorf("a linear relation should be learnable, r2=%v", imp.Performance.R2)
	}
	if imp.Performance.RMSE <= 0 {
		t.Errorf("rmse must be positive with noisy data, got %v", imp.Performance.RMSE)
	}
	if imp.FeatureImportance[0].Feature != "x" {
		t.Errorf("x must dominate, got %q", imp.FeatureImportance[0].Feature)
	}
}

func TestImportanceOneHotEncodesCategoricals(t *testing.T) {
	g := testkit.NewGenerator(31)
	n := 120
	y := g.Uniform(n, 0, 100)

	ds := testkit.MustDataset("mixed",
		testkit.Categorical("city", testkit.Labels(n, "austin", "boston", "chicago")),
		testkit.Numeric("x", g.Uniform(n, 0, 10)),
		testkit.Numeric("y", y),
	)

	result := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig()).Analyze(ds, "y", "")
	if result.IsError() {
		t.Fatalf("unexpected error: %s", result.Err.Reason)
	}

	names := make(map[string]bool)
	for _, fi := range result.Importance.FeatureImportance {
		names[fi.Feature] = true
	}
	// First level is the dropped reference.
	if names["city_austin"] {
		t.Error("reference level must be dropped from the encoding")
	}
	if !names["city_boston"] || !names["city_chicago"] {
		t.Errorf("expected dummy columns for boston and chicago, got %v", names)
	}
}

func TestImportanceAttributionFallback(t *testing.T) {
	g := testkit.NewGenerator(37)
	n := 100
	x := g.Uniform(n, 0, 10)
	y := g.Linear(x, 2, 0, 0.5)

	ds := testkit.MustDataset("fallback",
		testkit.Numeric("x", x),
		testkit.Numeric("y", y),
	)

	analyzer := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig())
	analyzer.attribute = func(*ml.Forest, [][]float64) ([]float64, error) {
		return nil, errors.New("attribution exploded")
	}

	result := analyzer.Analyze(ds, "y", "")
	if result.IsError() {
		t.Fatalf("attribution failure must not fail the analysis: %s", result.Err.Reason)
	}

	imp := result.Importance
	if imp.ShapSource != domain.ShapFromNativeFailure {
		t.Fatalf("expected the fallback marker, got %q", imp.ShapSource)
	}
	if len(imp.ShapImportance) != len(imp.FeatureImportance) {
		t.Fatal("fallback must mirror the native ranking")
	}
	for i := range imp.ShapImportance {
		if imp.ShapImportance[i].Feature != imp.FeatureImportance[i].Feature ||
			imp.ShapImportance[i].ShapImportance != imp.FeatureImportance[i].Importance {
			t.Errorf("fallback entry %d diverges from the native ranking", i)
		}
	}
}

func TestImportanceTaskOverride(t *testing.T) {
	g := testkit.NewGenerator(41)
	n := 100
	x := g.Uniform(n, 0, 10)
	// A binary numeric target would infer classification; force regression.
	y := make([]float64, n)
	for i := range y {
		if x[i] > 5 {
			y[i] = 1
		}
	}

	ds := testkit.MustDataset("override",
		testkit.Numeric("x", x),
		testkit.Numeric("y", y),
	)

	result := NewFeatureImportanceAnalyzer(config.DefaultAnalysisConfig()).Analyze(ds, "y", domain.TaskRegression)
	if result.IsError() {
		t.Fatalf("unexpected error: %s", result.Err.Reason)
	}
	if result.Importance.TaskType != domain.TaskRegression {
		t.Errorf("override ignored, got %q", result.Importance.TaskType)
	}
}
