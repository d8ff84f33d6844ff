package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/config"
)

// TimeSeriesAnalyzer summarizes a value column indexed by a temporal column:
// basic statistics and trend, calendar seasonality, and a variance-based
// stationarity check.
type TimeSeriesAnalyzer struct {
	cfg config.AnalysisConfig
}

func NewTimeSeriesAnalyzer(cfg config.AnalysisConfig) *TimeSeriesAnalyzer {
	return &TimeSeriesAnalyzer{cfg: cfg}
}

type observation struct {
	at    time.Time
	value float64
}

// Analyze aligns dateCol with valueCol, dropping incomplete pairs, and sorts
// by time before analyzing.
func (a *TimeSeriesAnalyzer) Analyze(ds *dataset.Dataset, dateCol, valueCol string) domain.Result {
	dates, haveDates := ds.Column(dateCol)
	values, haveValues := ds.Column(valueCol)
	if !haveDates || !haveValues {
		return domain.Errorf(domain.OpTimeSeries, fmt.Sprintf("Date column '%s' or value column '%s' not found in dataset", dateCol, valueCol))
	}
	if dates.Kind != dataset.KindTemporal {
		return domain.Errorf(domain.OpTimeSeries, fmt.Sprintf("Column '%s' is not a date column", dateCol))
	}
	if values.Kind != dataset.KindNumeric {
		return domain.Errorf(domain.OpTimeSeries, fmt.Sprintf("Column '%s' is not a numeric column", valueCol))
	}

	series := alignSeries(dates, values)
	if len(series) < 10 {
		return domain.Errorf(domain.OpTimeSeries, "Not enough data points for time series analysis")
	}

	result := &domain.TimeSeriesResult{BasicStats: basicStats(series)}
	if len(series) >= 24 {
		result.Seasonality = seasonality(series)
	}
	result.Stationarity = stationarity(series)

	return domain.Result{Operation: domain.OpTimeSeries, TimeSeries: result}
}

func alignSeries(dates, values dataset.Column) []observation {
	n := dates.Len()
	if values.Len() < n {
		n = values.Len()
	}
	series := make([]observation, 0, n)
	for i := 0; i < n; i++ {
		if dates.Times[i].IsZero() || math.IsNaN(values.Floats[i]) {
			continue
		}
		series = append(series, observation{at: dates.Times[i], value: values.Floats[i]})
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].at.Before(series[j].at)
	})
	return series
}

func basicStats(series []observation) domain.TimeSeriesBasics {
	vals := make([]float64, len(series))
	for i, obs := range series {
		vals[i] = obs.value
	}
	mean, _ := stats.Mean(vals)
	std, _ := stats.StandardDeviationSample(vals)

	trend := "decreasing"
	if vals[len(vals)-1] > vals[0] {
		trend = "increasing"
	}

	return domain.TimeSeriesBasics{
		StartDate:  series[0].at.Format(time.RFC3339),
		EndDate:    series[len(series)-1].at.Format(time.RFC3339),
		DataPoints: len(series),
		Mean:       mean,
		Std:        std,
		Trend:      trend,
	}
}

// seasonality compares calendar-bucket means. A bucket family shows a pattern
// when the coefficient of variation of its means exceeds 0.1.
func seasonality(series []observation) *domain.Seasonality {
	byWeekday := make(map[string][]float64)
	byMonth := make(map[string][]float64)
	for _, obs := range series {
		byWeekday[obs.at.Weekday().String()] = append(byWeekday[obs.at.Weekday().String()], obs.value)
		byMonth[obs.at.Month().String()] = append(byMonth[obs.at.Month().String()], obs.value)
	}

	weeklyPattern, weeklyCV := bucketVariation(byWeekday)
	monthlyPattern, monthlyCV := bucketVariation(byMonth)

	return &domain.Seasonality{
		WeeklyVariation:   weeklyCV,
		MonthlyVariation:  monthlyCV,
		HasWeeklyPattern:  weeklyCV > 0.1,
		HasMonthlyPattern: monthlyCV > 0.1,
		WeeklyPattern:     weeklyPattern,
		MonthlyPattern:    monthlyPattern,
	}
}

func bucketVariation(buckets map[string][]float64) (map[string]float64, float64) {
	pattern := make(map[string]float64, len(buckets))
	means := make([]float64, 0, len(buckets))
	for name, vals := range buckets {
		mean, _ := stats.Mean(vals)
		pattern[name] = mean
		means = append(means, mean)
	}

	grand, _ := stats.Mean(means)
	if grand == 0 {
		return pattern, 0
	}
	spread, _ := stats.StandardDeviation(means)
	return pattern, math.Abs(spread / grand)
}

// stationarity is a two-sided F-test for equal variance between the first
// and second halves of the series.
func stationarity(series []observation) *domain.Stationarity {
	half := len(series) / 2
	first := make([]float64, half)
	second := make([]float64, len(series)-half)
	for i, obs := range series[:half] {
		first[i] = obs.value
	}
	for i, obs := range series[half:] {
		second[i] = obs.value
	}

	var1, _ := stats.Variance(first)
	var2, _ := stats.Variance(second)
	if var2 <= 0 {
		return &domain.Stationarity{Test: "variance_f", PValue: 1, IsStationary: false}
	}

	f := var1 / var2
	dist := distuv.F{D1: float64(len(first) - 1), D2: float64(len(second) - 1)}
	cdf := dist.CDF(f)
	p := 2 * math.Min(cdf, 1-cdf)
	if p > 1 {
		p = 1
	}

	return &domain.Stationarity{
		Test:         "variance_f",
		Statistic:    f,
		PValue:       p,
		IsStationary: p > 0.05,
	}
}
