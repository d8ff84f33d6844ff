package ml

import (
	"errors"
	"math"
)

// NoiseLabel marks points not assigned to any density-based cluster.
const NoiseLabel = -1

// DBSCAN groups points that are density-reachable within Eps, requiring at
// least MinPts neighbors (the point itself included) to seed a cluster. It
// operates on the raw feature scale.
type DBSCAN struct {
	Eps    float64
	MinPts int

	Labels []int
}

// NewDBSCAN creates a DBSCAN model with the given neighborhood parameters.
func NewDBSCAN(eps float64, minPts int) *DBSCAN {
	return &DBSCAN{Eps: eps, MinPts: minPts}
}

// Fit labels every row of X with a cluster id, or NoiseLabel if the point is
// not density-reachable from any core point.
func (m *DBSCAN) Fit(X [][]float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("dbscan: empty input")
	}
	if m.Eps <= 0 {
		return errors.New("dbscan: eps must be positive")
	}

	const unvisited = -2
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	epsSquared := m.Eps * m.Eps
	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := m.regionQuery(X, i, epsSquared)
		if len(neighbors) < m.MinPts {
			labels[i] = NoiseLabel
			continue
		}

		labels[i] = cluster
		// Expand the cluster through the neighbor frontier. Border points
		// claimed as noise earlier are absorbed but never expanded.
		for q := 0; q < len(neighbors); q++ {
			j := neighbors[q]
			if labels[j] == NoiseLabel {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			more := m.regionQuery(X, j, epsSquared)
			if len(more) >= m.MinPts {
				neighbors = append(neighbors, more...)
			}
		}
		cluster++
	}

	m.Labels = labels
	return nil
}

// NClusters returns the number of genuine clusters, excluding noise.
func (m *DBSCAN) NClusters() int {
	seen := make(map[int]struct{})
	for _, l := range m.Labels {
		if l != NoiseLabel {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}

// NoiseCount returns the number of points labeled as noise.
func (m *DBSCAN) NoiseCount() int {
	n := 0
	for _, l := range m.Labels {
		if l == NoiseLabel {
			n++
		}
	}
	return n
}

// regionQuery returns the indices of all points within Eps of point i,
// including i itself.
func (m *DBSCAN) regionQuery(X [][]float64, i int, epsSquared float64) []int {
	var neighbors []int
	for j := range X {
		if dist := euclidSquared(X[i], X[j]); dist <= epsSquared+1e-12 {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// MeanFillColumns assembles a row-major matrix from numeric columns,
// replacing NaN with the column mean.
func MeanFillColumns(cols [][]float64) [][]float64 {
	if len(cols) == 0 {
		return nil
	}
	p := len(cols)
	n := len(cols[0])

	means := make([]float64, p)
	for j, col := range cols {
		sum, count := 0.0, 0
		for _, v := range col {
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count > 0 {
			means[j] = sum / float64(count)
		}
	}

	X := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, p)
		for j := 0; j < p; j++ {
			v := cols[j][i]
			if math.IsNaN(v) {
				v = means[j]
			}
			row[j] = v
		}
		X[i] = row
	}
	return X
}
