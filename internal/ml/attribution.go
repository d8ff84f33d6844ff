package ml

import (
	"errors"
	"math"
)

// Attribution computes additive per-feature prediction contributions by
// walking each tree from root to leaf and crediting every split's value change
// to the split feature (the node-value decomposition used for tree ensembles).
// The returned slice is the mean absolute contribution per feature over the
// given rows. For classification the decomposition tracks the first class's
// probability.
//
// This is the possibly-failing explainability subroutine: callers must treat
// an error as a signal to fall back, not as a fatal condition.
func (f *Forest) Attribution(X [][]float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, errors.New("attribution: forest not fitted")
	}
	if len(X) == 0 {
		return nil, errors.New("attribution: no rows to attribute")
	}
	if f.nFeatures == 0 {
		return nil, errors.New("attribution: fitted on zero features")
	}

	totals := make([]float64, f.nFeatures)
	contrib := make([]float64, f.nFeatures)
	for _, row := range X {
		if len(row) != f.nFeatures {
			return nil, errors.New("attribution: row width mismatch")
		}
		for j := range contrib {
			contrib[j] = 0
		}
		for _, t := range f.trees {
			if err := t.attributeRow(row, contrib); err != nil {
				return nil, err
			}
		}
		for j := range contrib {
			v := contrib[j] / float64(len(f.trees))
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New("attribution: unstable contribution")
			}
			totals[j] += math.Abs(v)
		}
	}

	for j := range totals {
		totals[j] /= float64(len(X))
	}
	return totals, nil
}

// attributeRow adds this tree's root-to-leaf value deltas into contrib.
func (t *Tree) attributeRow(row []float64, contrib []float64) error {
	node := t.root
	if node == nil {
		return errors.New("attribution: tree not fitted")
	}
	for !node.isLeaf {
		v := row[node.feature]
		var next *treeNode
		if !math.IsNaN(v) && v <= node.threshold {
			next = node.left
		} else {
			next = node.right
		}
		contrib[node.feature] += next.value - node.value
		node = next
	}
	return nil
}
