package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
)

// HypothesisTestDispatcher runs the appropriate group-comparison test for
// each categorical x numeric column pair: a two-sample t-test when the
// categorical column has exactly two usable groups, a one-way ANOVA when it
// has three or more.
type HypothesisTestDispatcher struct {
	Alpha float64
}

func NewHypothesisTestDispatcher(alpha float64) *HypothesisTestDispatcher {
	return &HypothesisTestDispatcher{Alpha: alpha}
}

// Dispatch tests every categorical x numeric pair in the dataset. Pairs with
// fewer than two usable groups are skipped entirely; pairs whose test
// degenerates produce an entry with the Error field set instead of failing
// the whole pass.
func (d *HypothesisTestDispatcher) Dispatch(ds *dataset.Dataset) map[string]domain.HypothesisOutcome {
	outcomes := make(map[string]domain.HypothesisOutcome)

	for _, cat := range ds.CategoricalColumns() {
		for _, num := range ds.NumericColumns() {
			groups := partitionGroups(cat, num)
			if len(groups) < 2 {
				continue
			}

			key := fmt.Sprintf("%s_vs_%s", cat.Name, num.Name)
			outcome, err := d.testGroups(groups)
			if err != nil {
				outcomes[key] = domain.HypothesisOutcome{Error: err.Error()}
				continue
			}
			outcomes[key] = outcome
		}
	}
	return outcomes
}

// partitionGroups splits the numeric column by categorical label, dropping
// missing values and any group with fewer than two observations. Groups come
// back in sorted label order so results are deterministic.
func partitionGroups(cat, num dataset.Column) [][]float64 {
	byLabel := make(map[string][]float64)
	n := cat.Len()
	if num.Len() < n {
		n = num.Len()
	}
	for i := 0; i < n; i++ {
		label := cat.Labels[i]
		v := num.Floats[i]
		if label == "" || math.IsNaN(v) {
			continue
		}
		byLabel[label] = append(byLabel[label], v)
	}

	labels := make([]string, 0, len(byLabel))
	for label, vals := range byLabel {
		if len(vals) >= 2 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)

	groups := make([][]float64, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, byLabel[label])
	}
	return groups
}

func (d *HypothesisTestDispatcher) testGroups(groups [][]float64) (domain.HypothesisOutcome, error) {
	if len(groups) == 2 {
		t, p, err := twoSampleTTest(groups[0], groups[1])
		if err != nil {
			return domain.HypothesisOutcome{}, err
		}
		return domain.HypothesisOutcome{
			Test:        "t-test",
			Statistic:   t,
			PValue:      p,
			Significant: p < d.Alpha,
			GroupsCount: 2,
		}, nil
	}

	f, p, err := oneWayANOVA(groups)
	if err != nil {
		return domain.HypothesisOutcome{}, err
	}
	return domain.HypothesisOutcome{
		Test:        "anova",
		Statistic:   f,
		PValue:      p,
		Significant: p < d.Alpha,
		GroupsCount: len(groups),
	}, nil
}

// twoSampleTTest is the pooled-variance Student's t-test with a two-sided
// p-value.
func twoSampleTTest(a, b []float64) (tStat, pValue float64, err error) {
	n1, n2 := float64(len(a)), float64(len(b))
	mean1, var1 := stat.MeanVariance(a, nil)
	mean2, var2 := stat.MeanVariance(b, nil)

	pooled := ((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)
	if pooled == 0 || math.IsNaN(pooled) {
		return 0, 0, fmt.Errorf("zero variance within groups")
	}

	se := math.Sqrt(pooled * (1/n1 + 1/n2))
	tStat = (mean1 - mean2) / se
	if math.IsNaN(tStat) || math.IsInf(tStat, 0) {
		return 0, 0, fmt.Errorf("degenerate t statistic")
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n1 + n2 - 2}
	pValue = 2 * dist.Survival(math.Abs(tStat))
	return tStat, pValue, nil
}

// oneWayANOVA computes the classic between/within F ratio across all groups.
func oneWayANOVA(groups [][]float64) (fStat, pValue float64, err error) {
	var grandSum float64
	var grandN int
	for _, g := range groups {
		for _, v := range g {
			grandSum += v
		}
		grandN += len(g)
	}
	grandMean := grandSum / float64(grandN)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (mean - grandMean) * (mean - grandMean)
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := float64(len(groups) - 1)
	dfWithin := float64(grandN - len(groups))
	if dfWithin <= 0 || ssWithin == 0 {
		return 0, 0, fmt.Errorf("zero variance within groups")
	}

	fStat = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	if math.IsNaN(fStat) || math.IsInf(fStat, 0) {
		return 0, 0, fmt.Errorf("degenerate F statistic")
	}

	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	pValue = dist.Survival(fStat)
	return fStat, pValue, nil
}
