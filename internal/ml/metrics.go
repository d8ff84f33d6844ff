package ml

import "math"

// ClassStats is one class's precision/recall/F1 row.
type ClassStats struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Accuracy returns the fraction of exact matches between yTrue and yPred.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// ClassificationReport computes per-class precision, recall and F1 for class
// indices 0..nClasses-1.
func ClassificationReport(yTrue, yPred []float64, nClasses int) map[int]ClassStats {
	tp := make([]int, nClasses)
	fp := make([]int, nClasses)
	fn := make([]int, nClasses)
	support := make([]int, nClasses)

	for i := range yTrue {
		actual := int(yTrue[i])
		predicted := int(yPred[i])
		support[actual]++
		if actual == predicted {
			tp[actual]++
		} else {
			fp[predicted]++
			fn[actual]++
		}
	}

	report := make(map[int]ClassStats, nClasses)
	for c := 0; c < nClasses; c++ {
		precision := safeDiv(float64(tp[c]), float64(tp[c]+fp[c]))
		recall := safeDiv(float64(tp[c]), float64(tp[c]+fn[c]))
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[c] = ClassStats{Precision: precision, Recall: recall, F1: f1, Support: support[c]}
	}
	return report
}

// MSE returns the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return sum / float64(len(yTrue))
}

// RMSE returns the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 {
	return math.Sqrt(MSE(yTrue, yPred))
}

// R2 returns the coefficient of determination.
func R2(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	ssRes, ssTot := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		m := yTrue[i] - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
