package insights

import (
	"fmt"
	"sort"
	"strings"

	"goeda/domain/analysis"
	"goeda/domain/dataset"
)

// Priority orders recommendations for display.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation is one actionable follow-up derived from the accumulated
// analysis results.
type Recommendation struct {
	Category       string `json:"category"`
	Priority       string `json:"priority"`
	Recommendation string `json:"recommendation"`
	Action         string `json:"action"`
}

// Report is the narrative layer over a session: plain-language findings
// grouped by theme, plus an executive summary paragraph.
type Report struct {
	DatasetName      string           `json:"dataset_name"`
	Overview         []string         `json:"overview"`
	KeyFindings      []string         `json:"key_findings"`
	Patterns         []string         `json:"patterns"`
	DataQuality      []string         `json:"data_quality"`
	Recommendations  []Recommendation `json:"recommendations"`
	ExecutiveSummary string           `json:"executive_summary"`
}

// Generator turns raw analysis results into human-readable insights. It only
// reads the session; sections whose analyses never ran are left empty.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the full report for a dataset and its session.
func (g *Generator) Generate(ds *dataset.Dataset, results map[analysis.Operation]analysis.Result) *Report {
	report := &Report{DatasetName: ds.Name}

	report.Overview = g.overview(ds)
	report.DataQuality = g.dataQuality(ds)

	if r, ok := results[analysis.OpStatistical]; ok && !r.IsError() {
		report.KeyFindings = append(report.KeyFindings, g.statisticalFindings(r.Statistical)...)
	}
	if r, ok := results[analysis.OpClustering]; ok && !r.IsError() {
		report.Patterns = append(report.Patterns, g.clusteringPatterns(r.Clustering)...)
	}
	if r, ok := results[analysis.OpFeatureImportance]; ok && !r.IsError() {
		report.Patterns = append(report.Patterns, g.importancePatterns(r.Importance)...)
	}
	if r, ok := results[analysis.OpTimeSeries]; ok && !r.IsError() {
		report.KeyFindings = append(report.KeyFindings, g.timeSeriesFindings(r.TimeSeries)...)
	}

	report.Recommendations = g.recommend(ds, results)
	report.ExecutiveSummary = g.executiveSummary(ds, report)
	return report
}

func (g *Generator) overview(ds *dataset.Dataset) []string {
	out := []string{
		fmt.Sprintf("Dataset contains %d rows and %d columns.", ds.Rows(), len(ds.Columns())),
		fmt.Sprintf("Column types: %d numeric, %d categorical, %d temporal.",
			len(ds.NumericColumns()), len(ds.CategoricalColumns()), len(ds.TemporalColumns())),
	}
	if rate := ds.MissingRate(); rate > 0 {
		out = append(out, fmt.Sprintf("%.1f%% of all cells are missing.", rate*100))
	}
	return out
}

func (g *Generator) dataQuality(ds *dataset.Dataset) []string {
	var out []string
	for _, col := range ds.Columns() {
		if col.Len() == 0 {
			continue
		}
		rate := float64(col.MissingCount()) / float64(col.Len())
		if rate > 0.2 {
			out = append(out, fmt.Sprintf("Column '%s' is missing %.0f%% of its values.", col.Name, rate*100))
		}
	}
	for _, col := range ds.Columns() {
		if col.DistinctCount() == 1 && col.Len() > 1 {
			out = append(out, fmt.Sprintf("Column '%s' is constant and carries no information.", col.Name))
		}
	}
	return out
}

func (g *Generator) statisticalFindings(r *analysis.StatisticalResult) []string {
	var out []string

	if r.Correlations != nil {
		for _, pair := range r.Correlations.StrongCorrelations {
			out = append(out, fmt.Sprintf("%s correlation between '%s' and '%s' (r=%.2f).",
				capitalize(string(pair.Strength)), pair.Variable1, pair.Variable2, pair.Correlation))
		}
	}

	var nonNormal []string
	for name, test := range r.DistributionTests {
		if !test.IsNormal {
			nonNormal = append(nonNormal, name)
		}
	}
	sort.Strings(nonNormal)
	if len(nonNormal) > 0 {
		out = append(out, fmt.Sprintf("Columns not normally distributed: %s.", strings.Join(nonNormal, ", ")))
	}

	var significant []string
	for pair, outcome := range r.HypothesisTests {
		if outcome.Significant {
			significant = append(significant, pair)
		}
	}
	sort.Strings(significant)
	for _, pair := range significant {
		outcome := r.HypothesisTests[pair]
		out = append(out, fmt.Sprintf("Significant group difference for %s (%s, p=%.4f).",
			pair, outcome.Test, outcome.PValue))
	}

	return out
}

func (g *Generator) clusteringPatterns(r *analysis.ClusteringResult) []string {
	out := []string{
		fmt.Sprintf("K-means found %d natural groupings in the numeric data.", r.KMeans.NClusters),
	}
	if r.DBSCAN.NNoisePoints > 0 {
		total := len(r.DBSCAN.Labels)
		out = append(out, fmt.Sprintf("DBSCAN flagged %d of %d points (%.0f%%) as outliers.",
			r.DBSCAN.NNoisePoints, total, 100*float64(r.DBSCAN.NNoisePoints)/float64(total)))
	}
	return out
}

func (g *Generator) importancePatterns(r *analysis.FeatureImportanceResult) []string {
	if len(r.TopFeatures) == 0 {
		return nil
	}
	n := len(r.TopFeatures)
	if n > 3 {
		n = 3
	}
	return []string{
		fmt.Sprintf("Top predictors (%s): %s.", r.TaskType, strings.Join(r.TopFeatures[:n], ", ")),
	}
}

func (g *Generator) timeSeriesFindings(r *analysis.TimeSeriesResult) []string {
	out := []string{
		fmt.Sprintf("Series of %d points is %s overall.", r.BasicStats.DataPoints, r.BasicStats.Trend),
	}
	if r.Seasonality != nil {
		if r.Seasonality.HasWeeklyPattern {
			out = append(out, "The series shows a weekly seasonal pattern.")
		}
		if r.Seasonality.HasMonthlyPattern {
			out = append(out, "The series shows a monthly seasonal pattern.")
		}
	}
	if r.Stationarity != nil && !r.Stationarity.IsStationary {
		out = append(out, "Variance shifts over time: the series is not stationary.")
	}
	return out
}

func (g *Generator) recommend(ds *dataset.Dataset, results map[analysis.Operation]analysis.Result) []Recommendation {
	var recs []Recommendation

	if rate := ds.MissingRate(); rate > 0.1 {
		recs = append(recs, Recommendation{
			Category:       "data_quality",
			Priority:       PriorityHigh,
			Recommendation: fmt.Sprintf("Address the %.0f%% missing data before modeling.", rate*100),
			Action:         "Impute or drop columns with heavy missingness.",
		})
	}

	if r, ok := results[analysis.OpStatistical]; ok && !r.IsError() && r.Statistical.Correlations != nil {
		for _, pair := range r.Statistical.Correlations.StrongCorrelations {
			if pair.Strength == analysis.StrengthVeryStrong {
				recs = append(recs, Recommendation{
					Category:       "modeling",
					Priority:       PriorityMedium,
					Recommendation: fmt.Sprintf("'%s' and '%s' are nearly collinear (r=%.2f).", pair.Variable1, pair.Variable2, pair.Correlation),
					Action:         "Drop one of the pair or combine them before fitting linear models.",
				})
				break
			}
		}
	}

	if r, ok := results[analysis.OpClustering]; ok && !r.IsError() {
		total := len(r.Clustering.DBSCAN.Labels)
		if total > 0 && float64(r.Clustering.DBSCAN.NNoisePoints)/float64(total) > 0.1 {
			recs = append(recs, Recommendation{
				Category:       "data_quality",
				Priority:       PriorityMedium,
				Recommendation: "A large share of points sit outside any dense region.",
				Action:         "Inspect the DBSCAN noise points for data entry errors or genuine outliers.",
			})
		}
	}

	if r, ok := results[analysis.OpFeatureImportance]; ok && !r.IsError() && r.Importance.ShapSource == analysis.ShapFromNativeFailure {
		recs = append(recs, Recommendation{
			Category:       "explainability",
			Priority:       PriorityLow,
			Recommendation: "Attribution-based importances were unavailable for this fit.",
			Action:         "Rankings fall back to impurity importances; interpret with care.",
		})
	}

	return recs
}

func (g *Generator) executiveSummary(ds *dataset.Dataset, report *Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis of '%s' (%d rows, %d columns).", ds.Name, ds.Rows(), len(ds.Columns()))
	if len(report.KeyFindings) > 0 {
		fmt.Fprintf(&sb, " %d key findings surfaced; the strongest: %s", len(report.KeyFindings), report.KeyFindings[0])
	}
	if len(report.Patterns) > 0 {
		fmt.Fprintf(&sb, " %s", report.Patterns[0])
	}
	if len(report.Recommendations) > 0 {
		fmt.Fprintf(&sb, " %d recommendations follow.", len(report.Recommendations))
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// AskQuestion answers simple natural-language questions against the dataset
// and accumulated results by keyword matching.
func (g *Generator) AskQuestion(ds *dataset.Dataset, results map[analysis.Operation]analysis.Result, question string) string {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "correlat"):
		if r, ok := results[analysis.OpStatistical]; ok && !r.IsError() && r.Statistical.Correlations != nil {
			pairs := r.Statistical.Correlations.StrongCorrelations
			if len(pairs) == 0 {
				return "No strong correlations were found between numeric columns."
			}
			top := pairs[0]
			return fmt.Sprintf("The strongest correlation is between '%s' and '%s' (r=%.2f, %s).",
				top.Variable1, top.Variable2, top.Correlation, top.Strength)
		}
		return "Run the statistical analysis first to inspect correlations."

	case strings.Contains(q, "cluster") || strings.Contains(q, "group"):
		if r, ok := results[analysis.OpClustering]; ok && !r.IsError() {
			return fmt.Sprintf("The data splits into %d clusters; %d points were flagged as noise.",
				r.Clustering.KMeans.NClusters, r.Clustering.DBSCAN.NNoisePoints)
		}
		return "Run the clustering analysis first to inspect groupings."

	case strings.Contains(q, "important") || strings.Contains(q, "predict") || strings.Contains(q, "driver"):
		if r, ok := results[analysis.OpFeatureImportance]; ok && !r.IsError() && len(r.Importance.TopFeatures) > 0 {
			return fmt.Sprintf("The most important predictor is '%s'.", r.Importance.TopFeatures[0])
		}
		return "Run the feature importance analysis first to rank predictors."

	case strings.Contains(q, "missing") || strings.Contains(q, "quality"):
		return fmt.Sprintf("%.1f%% of all cells are missing.", ds.MissingRate()*100)

	case strings.Contains(q, "row") || strings.Contains(q, "size") || strings.Contains(q, "shape"):
		return fmt.Sprintf("The dataset has %d rows and %d columns.", ds.Rows(), len(ds.Columns()))
	}

	return "I can answer questions about correlations, clusters, predictors, missing data and dataset size."
}
