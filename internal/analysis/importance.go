package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/config"
	"goeda/internal/ml"
)

// AttributionFunc computes per-feature attribution magnitudes for a fitted
// forest over sample rows. Pluggable so tests can force the fallback path.
type AttributionFunc func(f *ml.Forest, X [][]float64) ([]float64, error)

// FeatureImportanceAnalyzer fits a random forest against a target column and
// ranks the remaining columns as predictors, two ways: by the forest's own
// impurity-decrease statistics and by additive tree attribution.
type FeatureImportanceAnalyzer struct {
	cfg       config.AnalysisConfig
	attribute AttributionFunc
}

func NewFeatureImportanceAnalyzer(cfg config.AnalysisConfig) *FeatureImportanceAnalyzer {
	return &FeatureImportanceAnalyzer{
		cfg: cfg,
		attribute: func(f *ml.Forest, X [][]float64) ([]float64, error) {
			return f.Attribution(X)
		},
	}
}

// Analyze ranks predictors of target. override forces the task when
// non-empty; otherwise the task is inferred from the target column. The
// attribution step may fail; when it does, the native ranking is substituted
// and the result says so instead of the whole analysis failing.
func (a *FeatureImportanceAnalyzer) Analyze(ds *dataset.Dataset, target string, override domain.TaskType) domain.Result {
	targetCol, ok := ds.Column(target)
	if !ok {
		return domain.Errorf(domain.OpFeatureImportance, fmt.Sprintf("Target column '%s' not found in dataset", target))
	}
	if targetCol.Kind == dataset.KindTemporal {
		return domain.Errorf(domain.OpFeatureImportance, fmt.Sprintf("Target column '%s' must be numeric or categorical", target))
	}

	featureCols, featureNames := a.designMatrix(ds, target)
	if len(featureCols) == 0 {
		return domain.Errorf(domain.OpFeatureImportance, "No usable feature columns besides the target")
	}

	task := override
	if task == "" {
		task = inferTask(targetCol)
	}

	y, classes, keep := encodeTarget(targetCol, task)
	if len(keep) < 5 {
		return domain.Errorf(domain.OpFeatureImportance, "Not enough rows with a target value to fit a model")
	}

	X := designRows(featureCols, keep)

	trainIdx, testIdx, err := ml.TrainTestSplit(len(X), a.cfg.TestFraction, a.cfg.Seed)
	if err != nil {
		return domain.Errorf(domain.OpFeatureImportance, err.Error())
	}

	forest, err := a.fitForest(task, X, y, trainIdx, len(classes))
	if err != nil {
		return domain.Errorf(domain.OpFeatureImportance, err.Error())
	}

	Xtest := subsetRows(X, testIdx)
	ytest := subsetVals(y, testIdx)
	pred, err := forest.Predict(Xtest)
	if err != nil {
		return domain.Errorf(domain.OpFeatureImportance, err.Error())
	}

	result := &domain.FeatureImportanceResult{
		TaskType:    task,
		Performance: performance(task, ytest, pred, classes),
	}

	native, err := forest.FeatureImportances()
	if err != nil {
		return domain.Errorf(domain.OpFeatureImportance, err.Error())
	}
	result.FeatureImportance = rankNative(featureNames, native)

	result.ShapImportance, result.ShapSource = a.shapRanking(forest, Xtest, featureNames, result.FeatureImportance)

	top := a.cfg.TopFeatures
	if top > len(result.FeatureImportance) {
		top = len(result.FeatureImportance)
	}
	result.TopFeatures = make([]string, top)
	for i := 0; i < top; i++ {
		result.TopFeatures[i] = result.FeatureImportance[i].Feature
	}

	return domain.Result{Operation: domain.OpFeatureImportance, Importance: result}
}

// designMatrix builds column-major features from everything but the target:
// numeric columns as-is, categorical columns one-hot encoded with the first
// level dropped, temporal columns skipped.
func (a *FeatureImportanceAnalyzer) designMatrix(ds *dataset.Dataset, target string) (cols [][]float64, names []string) {
	for _, col := range ds.Columns() {
		if col.Name == target {
			continue
		}
		switch col.Kind {
		case dataset.KindNumeric:
			cols = append(cols, col.Floats)
			names = append(names, col.Name)
		case dataset.KindCategorical:
			dummies, dummyNames := ml.OneHot(col.Labels, col.Name)
			cols = append(cols, dummies...)
			names = append(names, dummyNames...)
		}
	}
	return cols, names
}

// inferTask treats a categorical target, or a numeric one with fewer than 10
// distinct values, as classification.
func inferTask(col dataset.Column) domain.TaskType {
	if col.Kind == dataset.KindCategorical {
		return domain.TaskClassification
	}
	if col.DistinctCount() < 10 {
		return domain.TaskClassification
	}
	return domain.TaskRegression
}

// encodeTarget converts the target column into model labels, dropping rows
// with a missing target. classes is nil for regression.
func encodeTarget(col dataset.Column, task domain.TaskType) (y []float64, classes []string, keep []int) {
	if task == domain.TaskRegression {
		for i, v := range col.Floats {
			if math.IsNaN(v) {
				continue
			}
			y = append(y, v)
			keep = append(keep, i)
		}
		return y, nil, keep
	}

	labels := col.Labels
	if col.Kind == dataset.KindNumeric {
		labels = make([]string, col.Len())
		for i, v := range col.Floats {
			if math.IsNaN(v) {
				continue
			}
			labels[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}

	encoded, classes := ml.LabelEncode(labels)
	for i, v := range encoded {
		if v < 0 {
			continue
		}
		y = append(y, v)
		keep = append(keep, i)
	}
	return y, classes, keep
}

// designRows turns column-major features into mean-filled row-major order,
// restricted to the kept row indices.
func designRows(cols [][]float64, keep []int) [][]float64 {
	kept := make([][]float64, len(cols))
	for c, col := range cols {
		kept[c] = make([]float64, len(keep))
		for i, row := range keep {
			kept[c][i] = col[row]
		}
	}
	return ml.MeanFillColumns(kept)
}

func (a *FeatureImportanceAnalyzer) fitForest(task domain.TaskType, X [][]float64, y []float64, trainIdx []int, nClasses int) (*ml.Forest, error) {
	mlTask := ml.TaskRegress
	if task == domain.TaskClassification {
		mlTask = ml.TaskClassify
	}

	forest := ml.NewForest(mlTask, a.cfg.Seed)
	forest.NTrees = a.cfg.ForestTrees
	forest.NClasses = nClasses

	return forest, forest.Fit(subsetRows(X, trainIdx), subsetVals(y, trainIdx))
}

func performance(task domain.TaskType, yTrue, yPred []float64, classes []string) domain.Performance {
	if task == domain.TaskClassification {
		report := make(map[string]domain.ClassMetrics, len(classes))
		for idx, stats := range ml.ClassificationReport(yTrue, yPred, len(classes)) {
			report[classes[idx]] = domain.ClassMetrics{
				Precision: stats.Precision,
				Recall:    stats.Recall,
				F1:        stats.F1,
				Support:   stats.Support,
			}
		}
		return domain.Performance{
			Accuracy:             ml.Accuracy(yTrue, yPred),
			ClassificationReport: report,
		}
	}
	return domain.Performance{
		MSE:  ml.MSE(yTrue, yPred),
		RMSE: ml.RMSE(yTrue, yPred),
		R2:   ml.R2(yTrue, yPred),
	}
}

func rankNative(names []string, importances []float64) []domain.FeatureImportance {
	ranked := make([]domain.FeatureImportance, len(names))
	for i, name := range names {
		ranked[i] = domain.FeatureImportance{Feature: name, Importance: importances[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}

// shapRanking runs additive attribution over a capped slice of held-out rows.
// When the attribution fails the native ranking stands in, and ShapSource
// records which path was taken.
func (a *FeatureImportanceAnalyzer) shapRanking(forest *ml.Forest, Xtest [][]float64, names []string, native []domain.FeatureImportance) ([]domain.ShapImportance, domain.ShapSource) {
	sample := Xtest
	if len(sample) > a.cfg.AttributionCap {
		sample = sample[:a.cfg.AttributionCap]
	}

	attr, err := a.attribute(forest, sample)
	if err != nil {
		fallback := make([]domain.ShapImportance, len(native))
		for i, fi := range native {
			fallback[i] = domain.ShapImportance{Feature: fi.Feature, ShapImportance: fi.Importance}
		}
		return fallback, domain.ShapFromNativeFailure
	}

	ranked := make([]domain.ShapImportance, len(names))
	for i, name := range names {
		ranked[i] = domain.ShapImportance{Feature: name, ShapImportance: attr[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ShapImportance > ranked[j].ShapImportance
	})
	return ranked, domain.ShapFromAttribution
}

func subsetRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func subsetVals(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
