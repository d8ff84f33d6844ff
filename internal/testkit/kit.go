package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"goeda/domain/dataset"
)

// Generator builds synthetic datasets with known structure so analysis tests
// can assert on outcomes instead of eyeballing numbers. All randomness flows
// from the seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Normal returns n draws from N(mean, std).
func (g *Generator) Normal(n int, mean, std float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + std*g.rng.NormFloat64()
	}
	return out
}

// Uniform returns n draws from [lo, hi).
func (g *Generator) Uniform(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*g.rng.Float64()
	}
	return out
}

// Linear returns y = slope*x + intercept + N(0, noise) for each x.
func (g *Generator) Linear(x []float64, slope, intercept, noise float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = slope*v + intercept + noise*g.rng.NormFloat64()
	}
	return out
}

// Labels cycles through the given levels for n rows.
func Labels(n int, levels ...string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = levels[i%len(levels)]
	}
	return out
}

// Days returns n consecutive daily timestamps starting at start.
func Days(n int, start time.Time) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Blobs returns rows forming k well-separated Gaussian clusters across dims
// feature columns, column-major. Cluster centers sit on a widely spaced grid
// so any sensible clustering recovers them.
func (g *Generator) Blobs(rowsPerCluster, k, dims int) [][]float64 {
	n := rowsPerCluster * k
	cols := make([][]float64, dims)
	for d := range cols {
		cols[d] = make([]float64, n)
	}
	for c := 0; c < k; c++ {
		center := float64(c) * 20
		for i := 0; i < rowsPerCluster; i++ {
			row := c*rowsPerCluster + i
			for d := 0; d < dims; d++ {
				cols[d][row] = center + g.rng.NormFloat64()
			}
		}
	}
	return cols
}

// MustDataset assembles a dataset from columns, panicking on builder misuse.
// Tests construct datasets they know to be well-formed.
func MustDataset(name string, cols ...dataset.Column) *dataset.Dataset {
	ds := dataset.New(name)
	for _, col := range cols {
		if err := ds.AddColumn(col); err != nil {
			panic(fmt.Sprintf("testkit: %v", err))
		}
	}
	return ds
}

// Numeric wraps values as a numeric column.
func Numeric(name string, values []float64) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: values}
}

// Categorical wraps labels as a categorical column.
func Categorical(name string, labels []string) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.KindCategorical, Labels: labels}
}

// Temporal wraps timestamps as a temporal column.
func Temporal(name string, times []time.Time) dataset.Column {
	return dataset.Column{Name: name, Kind: dataset.KindTemporal, Times: times}
}

// WithMissing returns a copy of values with every stride-th entry set to NaN.
func WithMissing(values []float64, stride int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	for i := 0; i < len(out); i += stride {
		out[i] = math.NaN()
	}
	return out
}

// RetailDataset builds the kit's standard mixed-type fixture: a seasonal
// sales series with a categorical region driving the mean, a price column
// correlated with sales, and an independent noise column.
func RetailDataset(seed int64, n int) *dataset.Dataset {
	g := NewGenerator(seed)

	regions := Labels(n, "north", "south")
	sales := make([]float64, n)
	for i := range sales {
		base := 100.0
		if regions[i] == "south" {
			base = 140.0
		}
		sales[i] = base + 5*g.rng.NormFloat64()
	}
	price := g.Linear(sales, 0.5, 10, 1)
	noise := g.Uniform(n, 0, 1)

	return MustDataset("retail",
		Temporal("date", Days(n, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		Categorical("region", regions),
		Numeric("sales", sales),
		Numeric("price", price),
		Numeric("noise", noise),
	)
}
