package ml

import (
	"errors"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Forest is a random forest over CART trees, supporting both tasks. Trees are
// fitted concurrently on bootstrap samples; every randomized step derives from
// Seed so repeated fits are identical.
type Forest struct {
	Task        Task
	NTrees      int
	MaxDepth    int
	MaxFeatures int // 0 => sqrt(p) for classification, p/3 for regression
	Seed        int64
	NClasses    int

	trees     []*Tree
	nFeatures int
}

// NewForest returns a forest with the conventional 100 trees.
func NewForest(task Task, seed int64) *Forest {
	return &Forest{Task: task, NTrees: 100, Seed: seed}
}

// Fit trains the forest on X and y. For classification y holds class indices
// and NClasses must be set.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("forest: empty X")
	}
	if len(y) != len(X) {
		return errors.New("forest: X and y length mismatch")
	}
	if f.NTrees < 1 {
		return errors.New("forest: NTrees must be >= 1")
	}

	n := len(X)
	f.nFeatures = len(X[0])
	f.trees = make([]*Tree, f.NTrees)

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = autoMaxFeatures(f.Task, f.nFeatures)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < f.NTrees; i++ {
		g.Go(func() error {
			// Per-tree source keeps bootstrap draws independent of
			// scheduling order.
			rng := rand.New(rand.NewSource(f.Seed + int64(i)))
			sample := make([]int, n)
			for j := range sample {
				sample[j] = rng.Intn(n)
			}

			tree := NewTree(f.Task, f.Seed+int64(i))
			tree.MaxDepth = f.MaxDepth
			tree.MaxFeatures = maxFeatures
			tree.NClasses = f.NClasses
			if err := tree.Fit(X, y, sample); err != nil {
				return err
			}
			f.trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

func autoMaxFeatures(task Task, p int) int {
	var m int
	if task == TaskClassify {
		m = intSqrt(p)
	} else {
		m = p / 3
	}
	if m < 1 {
		m = 1
	}
	return m
}

func intSqrt(p int) int {
	m := 0
	for (m+1)*(m+1) <= p {
		m++
	}
	return m
}

// Predict returns per-row predictions: the majority class index for
// classification, the tree mean for regression.
func (f *Forest) Predict(X [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, errors.New("forest: not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if f.Task == TaskClassify {
			votes := make([]int, f.NClasses)
			for _, t := range f.trees {
				votes[int(t.Predict(row))]++
			}
			best, bestVotes := 0, -1
			for c, v := range votes {
				if v > bestVotes {
					bestVotes = v
					best = c
				}
			}
			out[i] = float64(best)
			continue
		}
		sum := 0.0
		for _, t := range f.trees {
			sum += t.Predict(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// FeatureImportances returns the forest's mean impurity-decrease importances,
// normalized to sum to one when any split occurred.
func (f *Forest) FeatureImportances() ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, errors.New("forest: not fitted")
	}
	importances := make([]float64, f.nFeatures)
	for _, t := range f.trees {
		for j, v := range t.Importances() {
			importances[j] += v
		}
	}
	total := 0.0
	for j := range importances {
		importances[j] /= float64(len(f.trees))
		total += importances[j]
	}
	if total > 0 {
		for j := range importances {
			importances[j] /= total
		}
	}
	return importances, nil
}

// NFeatures returns the width of the fitted design matrix.
func (f *Forest) NFeatures() int { return f.nFeatures }
