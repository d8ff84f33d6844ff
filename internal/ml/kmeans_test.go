package ml

import (
	"math"
	"testing"
)

func blobs(centers []float64, perCluster int) [][]float64 {
	var X [][]float64
	for _, c := range centers {
		for i := 0; i < perCluster; i++ {
			// Small deterministic jitter keeps points distinct without RNG.
			d := 0.01 * float64(i)
			X = append(X, []float64{c + d, c - d})
		}
	}
	return X
}

func TestKMeansRecoversSeparatedClusters(t *testing.T) {
	X := blobs([]float64{0, 100, 200}, 10)

	km := NewKMeans(3, 42)
	if err := km.Fit(X); err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if len(km.Labels) != 30 {
		t.Fatalf("expected 30 labels, got %d", len(km.Labels))
	}
	sizes := map[int]int{}
	for _, l := range km.Labels {
		sizes[l]++
	}
	if len(sizes) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(sizes))
	}
	for label, size := range sizes {
		if size != 10 {
			t.Errorf("cluster %d has %d points, want 10", label, size)
		}
	}

	// Each blob must map to a single label.
	for c := 0; c < 3; c++ {
		first := km.Labels[c*10]
		for i := 1; i < 10; i++ {
			if km.Labels[c*10+i] != first {
				t.Errorf("blob %d split across labels", c)
				break
			}
		}
	}
}

func TestKMeansDeterministicForSeed(t *testing.T) {
	X := blobs([]float64{0, 50}, 8)

	a := NewKMeans(2, 7)
	b := NewKMeans(2, 7)
	if err := a.Fit(X); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X); err != nil {
		t.Fatal(err)
	}
	if a.Inertia != b.Inertia {
		t.Errorf("same seed must give same inertia: %v vs %v", a.Inertia, b.Inertia)
	}
	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] {
			t.Fatalf("labels diverge at row %d", i)
		}
	}
}

func TestKMeansInertiaDecreasesWithK(t *testing.T) {
	X := blobs([]float64{0, 30, 60, 90}, 10)

	var prev float64 = math.Inf(1)
	for k := 1; k <= 4; k++ {
		km := NewKMeans(k, 1)
		if err := km.Fit(X); err != nil {
			t.Fatal(err)
		}
		if km.Inertia > prev {
			t.Errorf("inertia rose from %v to %v at k=%d", prev, km.Inertia, k)
		}
		prev = km.Inertia
	}
}

func TestKMeansRejectsBadInput(t *testing.T) {
	if err := NewKMeans(2, 1).Fit(nil); err == nil {
		t.Error("empty input must fail")
	}
	if err := NewKMeans(5, 1).Fit([][]float64{{1}, {2}}); err == nil {
		t.Error("k greater than n must fail")
	}
}
