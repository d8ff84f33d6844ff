package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Task selects between classification and regression fitting.
type Task string

const (
	TaskClassify Task = "classification"
	TaskRegress  Task = "regression"
)

// Tree is a CART-style decision tree usable for both tasks. For
// classification the targets in y are class indices in [0, NClasses);
// for regression they are raw values.
type Tree struct {
	Task            Task
	MaxDepth        int // 0 => no explicit limit
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => consider all features at each split
	Seed            int64
	NClasses        int

	root        *treeNode
	nFeatures   int
	importances []float64
}

// treeNode holds one split or leaf. Value is the node's mean target for
// regression; Probs is the class distribution for classification. Both are
// kept on internal nodes too, so attribution can diff parent and child.
type treeNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode

	n     int
	value float64
	probs []float64
	pred  float64
}

// NewTree returns a tree with forest-friendly defaults.
func NewTree(task Task, seed int64) *Tree {
	return &Tree{
		Task:            task,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            seed,
	}
}

// Fit grows the tree on the rows of X named by idx. Passing nil for idx uses
// every row, which keeps bootstrap sampling allocation-free for callers.
func (t *Tree) Fit(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 {
		return errors.New("tree: empty X")
	}
	if len(y) != len(X) {
		return errors.New("tree: X and y length mismatch")
	}
	if t.Task == TaskClassify && t.NClasses < 1 {
		return errors.New("tree: NClasses must be set for classification")
	}

	t.nFeatures = len(X[0])
	t.importances = make([]float64, t.nFeatures)

	if idx == nil {
		idx = make([]int, len(X))
		for i := range idx {
			idx[i] = i
		}
	}

	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.grow(X, y, idx, 0, len(idx), rng)
	return nil
}

// grow recursively builds a node from the sample indices.
func (t *Tree) grow(X [][]float64, y []float64, idx []int, depth, nTotal int, rng *rand.Rand) *treeNode {
	node := t.summarize(y, idx)

	if len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) || t.isPure(node) {
		node.isLeaf = true
		return node
	}

	feature, threshold, gain, ok := t.bestSplit(X, y, idx, rng)
	if !ok {
		node.isLeaf = true
		return node
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		v := X[i][feature]
		if !math.IsNaN(v) && v <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) < t.MinSamplesLeaf || len(rightIdx) < t.MinSamplesLeaf {
		node.isLeaf = true
		return node
	}

	// Mean decrease in impurity, weighted by the node's share of samples.
	t.importances[feature] += float64(len(idx)) / float64(nTotal) * gain

	node.feature = feature
	node.threshold = threshold
	node.left = t.grow(X, y, leftIdx, depth+1, nTotal, rng)
	node.right = t.grow(X, y, rightIdx, depth+1, nTotal, rng)
	return node
}

// summarize computes the node statistics for the given sample.
func (t *Tree) summarize(y []float64, idx []int) *treeNode {
	node := &treeNode{n: len(idx)}
	if t.Task == TaskClassify {
		counts := make([]float64, t.NClasses)
		for _, i := range idx {
			counts[int(y[i])]++
		}
		probs := make([]float64, t.NClasses)
		best, bestCount := 0, -1.0
		for c, cnt := range counts {
			probs[c] = cnt / float64(len(idx))
			if cnt > bestCount {
				bestCount = cnt
				best = c
			}
		}
		node.probs = probs
		node.pred = float64(best)
		node.value = probs[0] // first-class probability, used by attribution
		return node
	}

	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))
	node.value = mean
	node.pred = mean
	return node
}

func (t *Tree) isPure(node *treeNode) bool {
	if t.Task == TaskClassify {
		for _, p := range node.probs {
			if p == 1 {
				return true
			}
		}
		return false
	}
	return false
}

// bestSplit scans a feature subset for the threshold with the largest
// impurity decrease per sample.
func (t *Tree) bestSplit(X [][]float64, y []float64, idx []int, rng *rand.Rand) (feature int, threshold, gain float64, ok bool) {
	features := t.candidateFeatures(rng)
	parentImp := t.impurity(y, idx)
	n := float64(len(idx))

	bestGain := 1e-12
	for _, f := range features {
		thr, g, found := t.bestThreshold(X, y, idx, f, parentImp, n)
		if found && g > bestGain {
			bestGain = g
			feature = f
			threshold = thr
			ok = true
		}
	}
	return feature, threshold, bestGain, ok
}

func (t *Tree) candidateFeatures(rng *rand.Rand) []int {
	if t.MaxFeatures <= 0 || t.MaxFeatures >= t.nFeatures {
		all := make([]int, t.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return rng.Perm(t.nFeatures)[:t.MaxFeatures]
}

// bestThreshold finds the best cut point on one feature by a single sorted
// scan with incremental statistics.
func (t *Tree) bestThreshold(X [][]float64, y []float64, idx []int, f int, parentImp, n float64) (float64, float64, bool) {
	type pair struct{ x, y float64 }
	pairs := make([]pair, 0, len(idx))
	for _, i := range idx {
		v := X[i][f]
		if math.IsNaN(v) {
			continue
		}
		pairs = append(pairs, pair{v, y[i]})
	}
	if len(pairs) < 2 {
		return 0, 0, false
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].x < pairs[b].x })

	var (
		bestThr  float64
		bestGain float64
		found    bool
	)

	if t.Task == TaskClassify {
		leftCounts := make([]float64, t.NClasses)
		rightCounts := make([]float64, t.NClasses)
		for _, p := range pairs {
			rightCounts[int(p.y)]++
		}
		nL := 0.0
		nR := float64(len(pairs))
		for i := 0; i < len(pairs)-1; i++ {
			c := int(pairs[i].y)
			leftCounts[c]++
			rightCounts[c]--
			nL++
			nR--
			if pairs[i].x == pairs[i+1].x {
				continue
			}
			g := parentImp - (nL*gini(leftCounts, nL)+nR*gini(rightCounts, nR))/n
			if g > bestGain {
				bestGain = g
				bestThr = (pairs[i].x + pairs[i+1].x) / 2
				found = true
			}
		}
		return bestThr, bestGain, found
	}

	// Regression: variance reduction via running sums.
	sumR, sqSumR := 0.0, 0.0
	for _, p := range pairs {
		sumR += p.y
		sqSumR += p.y * p.y
	}
	sumL, sqSumL := 0.0, 0.0
	nL := 0.0
	nR := float64(len(pairs))
	for i := 0; i < len(pairs)-1; i++ {
		v := pairs[i].y
		sumL += v
		sqSumL += v * v
		sumR -= v
		sqSumR -= v * v
		nL++
		nR--
		if pairs[i].x == pairs[i+1].x {
			continue
		}
		impL := sqSumL/nL - (sumL/nL)*(sumL/nL)
		impR := sqSumR/nR - (sumR/nR)*(sumR/nR)
		g := parentImp - (nL*impL+nR*impR)/n
		if g > bestGain {
			bestGain = g
			bestThr = (pairs[i].x + pairs[i+1].x) / 2
			found = true
		}
	}
	return bestThr, bestGain, found
}

// impurity is Gini for classification and variance for regression.
func (t *Tree) impurity(y []float64, idx []int) float64 {
	if t.Task == TaskClassify {
		counts := make([]float64, t.NClasses)
		for _, i := range idx {
			counts[int(y[i])]++
		}
		return gini(counts, float64(len(idx)))
	}
	sum, sqSum := 0.0, 0.0
	for _, i := range idx {
		sum += y[i]
		sqSum += y[i] * y[i]
	}
	n := float64(len(idx))
	mean := sum / n
	return sqSum/n - mean*mean
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := c / n
		sumSq += p * p
	}
	return 1 - sumSq
}

// Predict returns the tree's prediction for one row: a class index for
// classification, a value for regression.
func (t *Tree) Predict(row []float64) float64 {
	return t.leafFor(row).pred
}

// PredictProbs returns the class distribution at the reached leaf.
func (t *Tree) PredictProbs(row []float64) []float64 {
	return t.leafFor(row).probs
}

func (t *Tree) leafFor(row []float64) *treeNode {
	node := t.root
	for !node.isLeaf {
		v := row[node.feature]
		if !math.IsNaN(v) && v <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

// Importances returns the tree's accumulated impurity decreases per feature.
func (t *Tree) Importances() []float64 {
	return t.importances
}
