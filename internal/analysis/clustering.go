package analysis

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/config"
	"goeda/internal/ml"
)

// ClusterAnalyzer runs k-means (with automatic cluster-count selection) and
// DBSCAN over the numeric portion of a dataset.
type ClusterAnalyzer struct {
	cfg config.AnalysisConfig
}

func NewClusterAnalyzer(cfg config.AnalysisConfig) *ClusterAnalyzer {
	return &ClusterAnalyzer{cfg: cfg}
}

// Analyze clusters the numeric columns. nClusters <= 0 triggers the elbow
// sweep; an explicit positive value is used as-is. Missing values are
// replaced by their column mean before clustering.
func (a *ClusterAnalyzer) Analyze(ds *dataset.Dataset, nClusters int) domain.Result {
	numeric := ds.NumericColumns()
	if len(numeric) < 2 {
		return domain.Errorf(domain.OpClustering, "Need at least 2 numerical columns for clustering")
	}

	cols := make([][]float64, len(numeric))
	for i, col := range numeric {
		cols[i] = col.Floats
	}
	X := ml.MeanFillColumns(cols)
	if len(X) < 2 {
		return domain.Errorf(domain.OpClustering, "Need at least 2 rows for clustering")
	}

	k := nClusters
	if k <= 0 {
		chosen, err := a.elbowSweep(X)
		if err != nil {
			return domain.Errorf(domain.OpClustering, err.Error())
		}
		k = chosen
	}

	km := ml.NewKMeans(k, a.cfg.Seed)
	km.MaxIter = a.cfg.KMeansMaxIter
	km.NInit = a.cfg.KMeansRestarts
	if err := km.Fit(X); err != nil {
		return domain.Errorf(domain.OpClustering, err.Error())
	}

	kmeansSizes := make(map[int]int)
	for _, label := range km.Labels {
		kmeansSizes[label]++
	}

	db := ml.NewDBSCAN(a.cfg.DBSCANEps, a.cfg.DBSCANMinPts)
	if err := db.Fit(X); err != nil {
		return domain.Errorf(domain.OpClustering, err.Error())
	}

	dbscanSizes := make(map[int]int)
	for _, label := range db.Labels {
		if label != ml.NoiseLabel {
			dbscanSizes[label]++
		}
	}

	return domain.Result{
		Operation: domain.OpClustering,
		Clustering: &domain.ClusteringResult{
			KMeans: domain.KMeansResult{
				NClusters:    k,
				Labels:       km.Labels,
				Centroids:    km.Centroids,
				Inertia:      km.Inertia,
				ClusterSizes: kmeansSizes,
			},
			DBSCAN: domain.DBSCANResult{
				Labels:       db.Labels,
				NClusters:    db.NClusters(),
				NNoisePoints: db.NoiseCount(),
				ClusterSizes: dbscanSizes,
			},
		},
	}
}

// elbowSweep fits k-means for every candidate cluster count and picks the
// elbow of the inertia curve: the point of maximum curvature by second
// difference. Candidate fits run concurrently, each with its own seeded RNG.
func (a *ClusterAnalyzer) elbowSweep(X [][]float64) (int, error) {
	kMax := a.cfg.MaxSweepK
	if len(X) < kMax {
		kMax = len(X)
	}
	candidates := make([]int, 0, kMax-1)
	for k := 2; k <= kMax; k++ {
		candidates = append(candidates, k)
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidate cluster counts for %d rows", len(X))
	}

	inertias := make([]float64, len(candidates))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, k := range candidates {
		g.Go(func() error {
			km := ml.NewKMeans(k, a.cfg.Seed)
			km.MaxIter = a.cfg.KMeansMaxIter
			km.NInit = a.cfg.KMeansRestarts
			if err := km.Fit(X); err != nil {
				return err
			}
			inertias[i] = km.Inertia
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	return candidates[elbowIndex(inertias)], nil
}

// elbowIndex locates the elbow in a decreasing inertia curve. With fewer
// than three points there is no curvature to measure, so it falls back to
// the first candidate for a single point and the middle otherwise.
func elbowIndex(inertias []float64) int {
	if len(inertias) < 3 {
		if len(inertias) == 1 {
			return 0
		}
		return len(inertias) / 2
	}

	diffs := make([]float64, len(inertias)-1)
	for i := range diffs {
		diffs[i] = inertias[i+1] - inertias[i]
	}
	second := make([]float64, len(diffs)-1)
	for i := range second {
		second[i] = diffs[i+1] - diffs[i]
	}

	best := 0
	for i, v := range second {
		if v > second[best] {
			best = i
		}
	}

	idx := best + 2
	if idx > len(inertias)-1 {
		idx = len(inertias) - 1
	}
	return idx
}
