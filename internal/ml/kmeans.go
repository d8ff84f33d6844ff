package ml

import (
	"errors"
	"math"
	"math/rand"
)

// KMeans partitions data points into K clusters by Lloyd iterations. NInit
// restarts are run from different seeded initializations and the fit with the
// lowest inertia wins.
type KMeans struct {
	K       int
	MaxIter int
	NInit   int
	Seed    int64

	Centroids [][]float64
	Labels    []int
	Inertia   float64 // sum of squared distances to the nearest centroid
}

// NewKMeans creates a KMeans model with the given cluster count and seed.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, MaxIter: 300, NInit: 10, Seed: seed}
}

// Fit clusters X (n rows, p features). Rows must be free of NaN.
func (m *KMeans) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("kmeans: empty input")
	}
	if m.K < 1 {
		return errors.New("kmeans: K must be >= 1")
	}
	if n < m.K {
		return errors.New("kmeans: fewer points than clusters")
	}

	rng := rand.New(rand.NewSource(m.Seed))
	best := math.MaxFloat64
	for restart := 0; restart < m.NInit; restart++ {
		centroids, labels, inertia := m.runOnce(X, rng)
		if inertia < best {
			best = inertia
			m.Centroids = centroids
			m.Labels = labels
			m.Inertia = inertia
		}
	}
	return nil
}

// runOnce performs one seeded initialization plus Lloyd iterations.
func (m *KMeans) runOnce(X [][]float64, rng *rand.Rand) ([][]float64, []int, float64) {
	n, p := len(X), len(X[0])

	// Initialize centroids from K distinct data points.
	perm := rng.Perm(n)
	centroids := make([][]float64, m.K)
	for k := 0; k < m.K; k++ {
		c := make([]float64, p)
		copy(c, X[perm[k]])
		centroids[k] = c
	}

	labels := make([]int, n)
	for it := 0; it < m.MaxIter; it++ {
		changed := false

		// Assignment step.
		for i := 0; i < n; i++ {
			best, bestDist := 0, math.MaxFloat64
			for k := 0; k < m.K; k++ {
				d := euclidSquared(X[i], centroids[k])
				if d < bestDist {
					bestDist = d
					best = k
				}
			}
			if labels[i] != best {
				changed = true
				labels[i] = best
			}
		}

		// Update step.
		sums := make([][]float64, m.K)
		counts := make([]int, m.K)
		for k := range sums {
			sums[k] = make([]float64, p)
		}
		for i := 0; i < n; i++ {
			k := labels[i]
			counts[k]++
			for j := 0; j < p; j++ {
				sums[k][j] += X[i][j]
			}
		}
		for k := 0; k < m.K; k++ {
			if counts[k] == 0 {
				// Re-seed an empty cluster from a random point.
				copy(centroids[k], X[rng.Intn(n)])
				continue
			}
			for j := 0; j < p; j++ {
				centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}

		if !changed && it > 0 {
			break
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		inertia += euclidSquared(X[i], centroids[labels[i]])
	}
	return centroids, labels, inertia
}

// euclidSquared returns the squared Euclidean distance between two points.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
