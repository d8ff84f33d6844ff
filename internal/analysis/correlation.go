package analysis

import (
	"math"
	"sort"

	domain "goeda/domain/analysis"
)

// CorrelationAnalyzer classifies pairwise correlation strength and surfaces
// the pairs worth reporting.
type CorrelationAnalyzer struct {
	Threshold  float64 // minimum |r| for a pair to be reported
	VeryStrong float64 // |r| at which a pair is labeled "very strong"
}

// NewCorrelationAnalyzer returns an analyzer with the given thresholds.
func NewCorrelationAnalyzer(threshold, veryStrong float64) *CorrelationAnalyzer {
	return &CorrelationAnalyzer{Threshold: threshold, VeryStrong: veryStrong}
}

// StrongPairs extracts every unordered pair (i < j) whose absolute correlation
// meets the threshold, sorted by descending |r|. Column order follows names.
func (a *CorrelationAnalyzer) StrongPairs(names []string, matrix map[string]map[string]float64) []domain.StrongCorrelation {
	pairs := []domain.StrongCorrelation{}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			r := matrix[names[i]][names[j]]
			if math.IsNaN(r) || math.Abs(r) < a.Threshold {
				continue
			}
			strength := domain.StrengthStrong
			if math.Abs(r) >= a.VeryStrong {
				strength = domain.StrengthVeryStrong
			}
			pairs = append(pairs, domain.StrongCorrelation{
				Variable1:   names[i],
				Variable2:   names[j],
				Correlation: r,
				Strength:    strength,
			})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
	})
	return pairs
}
