package analysis

// Operation names every analysis the engine can perform. Results are keyed by
// operation in the session accumulator.
type Operation string

const (
	OpStatistical       Operation = "statistical"
	OpClustering        Operation = "clustering"
	OpFeatureImportance Operation = "feature_importance"
	OpTimeSeries        Operation = "time_series"
)

// Result is a tagged union: exactly one of the variant pointers is set.
// Recoverable failures are carried as an ErrorResult value rather than a Go
// error so multi-step orchestrations can skip a step and continue.
type Result struct {
	Operation   Operation                `json:"operation"`
	Statistical *StatisticalResult       `json:"statistical,omitempty"`
	Clustering  *ClusteringResult        `json:"clustering,omitempty"`
	Importance  *FeatureImportanceResult `json:"feature_importance,omitempty"`
	TimeSeries  *TimeSeriesResult        `json:"time_series,omitempty"`
	Err         *ErrorResult             `json:"error,omitempty"`
}

// IsError reports whether the result is the recoverable-failure variant.
func (r Result) IsError() bool { return r.Err != nil }

// ErrorResult marks a recoverable failure with a human-readable reason.
type ErrorResult struct {
	Reason string `json:"error"`
}

// Errorf builds an error-variant result for an operation.
func Errorf(op Operation, reason string) Result {
	return Result{Operation: op, Err: &ErrorResult{Reason: reason}}
}

// ---------------------------------------------------------------------------
// Statistical analysis
// ---------------------------------------------------------------------------

// DescriptiveStats is the standard per-column numeric summary.
type DescriptiveStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// NormalityTest records the distribution shape of one numeric column.
type NormalityTest struct {
	Test      string  `json:"test"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	IsNormal  bool    `json:"is_normal"`
	Skewness  float64 `json:"skewness"`
	Kurtosis  float64 `json:"kurtosis"`
}

// CorrelationStrength labels how strong an absolute correlation is.
type CorrelationStrength string

const (
	StrengthStrong     CorrelationStrength = "strong"
	StrengthVeryStrong CorrelationStrength = "very strong"
)

// StrongCorrelation is one unordered column pair with |r| above threshold.
type StrongCorrelation struct {
	Variable1   string              `json:"variable1"`
	Variable2   string              `json:"variable2"`
	Correlation float64             `json:"correlation"`
	Strength    CorrelationStrength `json:"strength"`
}

// CorrelationSummary carries the full matrix plus the ranked strong pairs.
type CorrelationSummary struct {
	Matrix             map[string]map[string]float64 `json:"correlation_matrix"`
	StrongCorrelations []StrongCorrelation           `json:"strong_correlations"`
}

// HypothesisOutcome is the result of one categorical-vs-numeric test. When the
// computation failed for the pair, Error is set and the other fields are zero.
type HypothesisOutcome struct {
	Test        string  `json:"test,omitempty"`
	Statistic   float64 `json:"statistic,omitempty"`
	PValue      float64 `json:"p_value,omitempty"`
	Significant bool    `json:"significant,omitempty"`
	GroupsCount int     `json:"groups_count,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// StatisticalResult bundles the statistical analysis sub-sections. Sections
// whose preconditions failed are omitted rather than reported as errors.
type StatisticalResult struct {
	Descriptive       map[string]DescriptiveStats  `json:"descriptive_stats"`
	DistributionTests map[string]NormalityTest     `json:"distribution_tests"`
	Correlations      *CorrelationSummary          `json:"correlations,omitempty"`
	HypothesisTests   map[string]HypothesisOutcome `json:"hypothesis_tests"`
}

// ---------------------------------------------------------------------------
// Clustering analysis
// ---------------------------------------------------------------------------

// KMeansResult reports the centroid-based clustering outcome.
type KMeansResult struct {
	NClusters    int         `json:"n_clusters"`
	Labels       []int       `json:"labels"`
	Centroids    [][]float64 `json:"centroids"`
	Inertia      float64     `json:"inertia"`
	ClusterSizes map[int]int `json:"cluster_sizes"`
}

// DBSCANResult reports the density-based clustering outcome. NoiseLabel marks
// points not assigned to any cluster; ClusterSizes excludes them.
type DBSCANResult struct {
	Labels       []int       `json:"labels"`
	NClusters    int         `json:"n_clusters"`
	NNoisePoints int         `json:"n_noise_points"`
	ClusterSizes map[int]int `json:"cluster_sizes"`
}

// ClusteringResult carries both clustering outcomes over the same matrix.
type ClusteringResult struct {
	KMeans KMeansResult `json:"kmeans"`
	DBSCAN DBSCANResult `json:"dbscan"`
}

// ---------------------------------------------------------------------------
// Feature importance analysis
// ---------------------------------------------------------------------------

// TaskType is the inferred or caller-supplied supervised task.
type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskRegression     TaskType = "regression"
)

// FeatureImportance is one feature's native (ensemble-derived) importance.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ShapImportance is one feature's explainability-attribution importance.
type ShapImportance struct {
	Feature        string  `json:"feature"`
	ShapImportance float64 `json:"shap_importance"`
}

// ShapSource records which path produced the explainability numbers.
type ShapSource string

const (
	ShapFromAttribution   ShapSource = "tree_attribution"
	ShapFromNativeFailure ShapSource = "native_fallback"
)

// ClassMetrics is one class's row of the classification report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Performance carries held-out metrics. Classification populates Accuracy and
// ClassificationReport; regression populates MSE, RMSE and R2.
type Performance struct {
	Accuracy             float64                 `json:"accuracy,omitempty"`
	ClassificationReport map[string]ClassMetrics `json:"classification_report,omitempty"`
	MSE                  float64                 `json:"mse,omitempty"`
	RMSE                 float64                 `json:"rmse,omitempty"`
	R2                   float64                 `json:"r2_score,omitempty"`
}

// FeatureImportanceResult ranks predictors of a target column two ways: by the
// fitted ensemble's own statistics and by additive attribution. ShapSource
// says whether the attribution ran or the native ranking was substituted.
type FeatureImportanceResult struct {
	TaskType          TaskType            `json:"task_type"`
	Performance       Performance         `json:"performance"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	ShapImportance    []ShapImportance    `json:"shap_importance"`
	ShapSource        ShapSource          `json:"shap_source"`
	TopFeatures       []string            `json:"top_features"`
}

// ---------------------------------------------------------------------------
// Time series analysis
// ---------------------------------------------------------------------------

// TimeSeriesBasics summarizes the aligned, time-sorted series.
type TimeSeriesBasics struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	DataPoints int     `json:"data_points"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Trend      string  `json:"trend"` // "increasing" or "decreasing"
}

// Seasonality reports weekday and month level variation.
type Seasonality struct {
	WeeklyVariation   float64             `json:"weekly_variation_coefficient"`
	MonthlyVariation  float64             `json:"monthly_variation_coefficient"`
	HasWeeklyPattern  bool                `json:"has_weekly_pattern"`
	HasMonthlyPattern bool                `json:"has_monthly_pattern"`
	WeeklyPattern     map[string]float64  `json:"weekly_pattern"`
	MonthlyPattern    map[string]float64  `json:"monthly_pattern"`
}

// Stationarity reports a variance-based stationarity check.
type Stationarity struct {
	Test         string  `json:"test"`
	Statistic    float64 `json:"statistic"`
	PValue       float64 `json:"p_value"`
	IsStationary bool    `json:"is_stationary"`
}

// TimeSeriesResult bundles the temporal analysis sub-sections.
type TimeSeriesResult struct {
	BasicStats   TimeSeriesBasics `json:"basic_stats"`
	Seasonality  *Seasonality     `json:"seasonality,omitempty"`
	Stationarity *Stationarity    `json:"stationarity,omitempty"`
}
