package analysis

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/config"
)

// StatisticalAnalyzer produces the descriptive, distributional, correlation
// and hypothesis-testing view of a dataset.
type StatisticalAnalyzer struct {
	cfg  config.AnalysisConfig
	corr *CorrelationAnalyzer
	hyp  *HypothesisTestDispatcher
}

func NewStatisticalAnalyzer(cfg config.AnalysisConfig) *StatisticalAnalyzer {
	return &StatisticalAnalyzer{
		cfg:  cfg,
		corr: NewCorrelationAnalyzer(cfg.StrongCorrelation, cfg.VeryStrong),
		hyp:  NewHypothesisTestDispatcher(cfg.Alpha),
	}
}

// Analyze never fails as a whole: degenerate columns are skipped and
// degenerate tests surface as per-pair error entries.
func (a *StatisticalAnalyzer) Analyze(ds *dataset.Dataset) domain.Result {
	result := &domain.StatisticalResult{
		Descriptive:       make(map[string]domain.DescriptiveStats),
		DistributionTests: make(map[string]domain.NormalityTest),
	}

	numeric := ds.NumericColumns()
	for _, col := range numeric {
		values := col.NonMissingFloats()
		if len(values) == 0 {
			continue
		}
		result.Descriptive[col.Name] = describe(values)

		if col.DistinctCount() > 1 {
			if test, ok := a.testNormality(values); ok {
				result.DistributionTests[col.Name] = test
			}
		}
	}

	if len(numeric) >= 2 {
		names := make([]string, len(numeric))
		for i, col := range numeric {
			names[i] = col.Name
		}
		matrix := correlationMatrix(numeric)
		result.Correlations = &domain.CorrelationSummary{
			Matrix:             matrix,
			StrongCorrelations: a.corr.StrongPairs(names, matrix),
		}
	}

	if tests := a.hyp.Dispatch(ds); len(tests) > 0 {
		result.HypothesisTests = tests
	}

	return domain.Result{Operation: domain.OpStatistical, Statistical: result}
}

func describe(values []float64) domain.DescriptiveStats {
	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviationSample(values)
	if math.IsNaN(std) {
		std = 0
	}
	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	q25, _ := stats.Percentile(values, 25)
	median, _ := stats.Median(values)
	q75, _ := stats.Percentile(values, 75)

	return domain.DescriptiveStats{
		Count:  len(values),
		Mean:   mean,
		Std:    std,
		Min:    minV,
		Q25:    q25,
		Median: median,
		Q75:    q75,
		Max:    maxV,
	}
}

// testNormality subsamples large columns to a fixed cap before testing, with
// a pinned seed so repeated runs agree.
func (a *StatisticalAnalyzer) testNormality(values []float64) (domain.NormalityTest, bool) {
	if len(values) < 3 {
		return domain.NormalityTest{}, false
	}

	sample := values
	if len(sample) > a.cfg.NormalitySampleCap {
		rng := rand.New(rand.NewSource(a.cfg.Seed))
		perm := rng.Perm(len(sample))
		sub := make([]float64, a.cfg.NormalitySampleCap)
		for i := range sub {
			sub[i] = sample[perm[i]]
		}
		sample = sub
	}

	mean, _ := stats.Mean(sample)
	std, _ := stats.StandardDeviationSample(sample)
	if std == 0 || math.IsNaN(std) {
		return domain.NormalityTest{}, false
	}

	skew := sampleSkewness(sample, mean, std)
	kurt := sampleExcessKurtosis(sample, mean, std)

	var statistic, pValue float64
	var isNormal, ok bool
	if len(sample) >= 8 {
		statistic, pValue, isNormal, ok = dagostinoK2(sample, mean, std)
	} else {
		statistic, pValue, isNormal, ok = smallSampleNormality(skew, kurt)
	}
	if !ok {
		return domain.NormalityTest{}, false
	}

	return domain.NormalityTest{
		Test:      "dagostino_k2",
		Statistic: statistic,
		PValue:    pValue,
		IsNormal:  isNormal,
		Skewness:  skew,
		Kurtosis:  kurt,
	}, true
}

// sampleSkewness is the adjusted Fisher-Pearson coefficient.
func sampleSkewness(data []float64, mean, std float64) float64 {
	if len(data) < 3 || std == 0 {
		return 0
	}
	n := float64(len(data))
	var sum float64
	for _, x := range data {
		d := (x - mean) / std
		sum += d * d * d
	}
	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleExcessKurtosis is the bias-adjusted excess kurtosis G2, computed from
// the biased central moments (0 for a normal distribution, -1.2 for uniform).
func sampleExcessKurtosis(data []float64, mean, std float64) float64 {
	if len(data) < 4 || std == 0 {
		return 0
	}
	n := float64(len(data))
	var m2, m4 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	g2 := m4/(m2*m2) - 3
	return (n - 1) / ((n - 2) * (n - 3)) * ((n+1)*g2 + 6)
}

// dagostinoK2 combines the D'Agostino skewness transform and the
// Anscombe-Glynn kurtosis transform into the K^2 omnibus statistic.
func dagostinoK2(data []float64, mean, std float64) (k2, pValue float64, isNormal, ok bool) {
	n := float64(len(data))
	g1 := sampleSkewness(data, mean, std)
	g2 := sampleExcessKurtosis(data, mean, std) + 3

	// Skewness transform to Z1.
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := (3 * (n*n + 27*n - 70) * (n + 1) * (n + 3)) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 0 {
		return 0, 0, false, false
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2 over total kurtosis.
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	if v <= 0 {
		return 0, 0, false, false
	}
	x := (g2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return 0, 0, false, false
	}

	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	if den <= 0 {
		return math.Inf(1), 0, false, true
	}
	z2 := (term - math.Pow((1-2/a)/den, 1.0/3.0)) / math.Sqrt(2/(9*a))

	k2 = z1*z1 + z2*z2
	chi2 := distuv.ChiSquared{K: 2}
	pValue = chi2.Survival(k2)
	return k2, pValue, pValue > 0.05, true
}

// smallSampleNormality is a conservative skewness+kurtosis approximation for
// samples too small for the K^2 transforms.
func smallSampleNormality(skew, excessKurtosis float64) (statistic, pValue float64, isNormal, ok bool) {
	statistic = math.Abs(skew) + math.Abs(excessKurtosis)/2
	chi2 := distuv.ChiSquared{K: 2}
	pValue = chi2.Survival(statistic * statistic)
	return statistic, pValue, pValue > 0.05, true
}

// correlationMatrix computes pairwise-complete Pearson correlations over the
// numeric columns. Pairs where r is undefined (fewer than two complete
// observations, or a constant column) are left out of the matrix so the
// result stays JSON-serializable.
func correlationMatrix(cols []dataset.Column) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64, len(cols))
	for _, col := range cols {
		matrix[col.Name] = make(map[string]float64, len(cols))
		matrix[col.Name][col.Name] = 1
	}

	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			a := cols[i].Floats
			b := cols[j].Floats

			var xs, ys []float64
			for k := 0; k < len(a) && k < len(b); k++ {
				if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
					continue
				}
				xs = append(xs, a[k])
				ys = append(ys, b[k])
			}

			if len(xs) < 2 {
				continue
			}
			r := stat.Correlation(xs, ys, nil)
			if math.IsNaN(r) {
				continue
			}
			matrix[cols[i].Name][cols[j].Name] = r
			matrix[cols[j].Name][cols[i].Name] = r
		}
	}
	return matrix
}
