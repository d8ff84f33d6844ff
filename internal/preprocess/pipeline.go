package preprocess

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"goeda/domain/dataset"
	"goeda/internal/errors"
	"goeda/internal/ml"
)

// Strategy names accepted by Options. Empty means "skip that step".
const (
	OutliersIQR    = "iqr"
	OutliersZScore = "zscore"

	ImputeAuto   = "auto"
	ImputeMean   = "mean"
	ImputeMedian = "median"
	ImputeMode   = "mode"

	EncodeOneHot = "onehot"
	EncodeLabel  = "label"

	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
)

// Options selects which cleaning steps run and how.
type Options struct {
	DropDuplicates  bool
	Outliers        string
	Impute          string
	Encode          string
	Scale           string
	MaxOneHotLevels int // categorical cardinality ceiling for one-hot; above it, label encoding
}

// DefaultOptions is the conservative full pipeline.
func DefaultOptions() Options {
	return Options{
		DropDuplicates:  true,
		Outliers:        OutliersIQR,
		Impute:          ImputeAuto,
		MaxOneHotLevels: 10,
	}
}

// Pipeline applies cleaning steps in a fixed order: deduplicate, outliers,
// impute, encode, scale. The input dataset is never mutated; every run
// returns a fresh dataset plus a log of the transformations applied.
type Pipeline struct {
	opts Options
}

func New(opts Options) *Pipeline {
	if opts.MaxOneHotLevels <= 0 {
		opts.MaxOneHotLevels = 10
	}
	return &Pipeline{opts: opts}
}

// Run executes the configured steps and returns the transformed dataset.
func (p *Pipeline) Run(ds *dataset.Dataset) (*dataset.Dataset, []string, error) {
	if err := validateOptions(p.opts); err != nil {
		return nil, nil, err
	}

	var log []string
	cols := cloneColumns(ds.Columns())

	if p.opts.DropDuplicates {
		var dropped int
		cols, dropped = dropDuplicateRows(cols)
		if dropped > 0 {
			log = append(log, fmt.Sprintf("removed %d duplicate rows", dropped))
		}
	}

	if p.opts.Outliers != "" {
		log = append(log, treatOutliers(cols, p.opts.Outliers)...)
	}

	if p.opts.Impute != "" {
		log = append(log, impute(cols, p.opts.Impute)...)
	}

	if p.opts.Encode != "" {
		var encodeLog []string
		cols, encodeLog = encode(cols, p.opts.Encode, p.opts.MaxOneHotLevels)
		log = append(log, encodeLog...)
	}

	if p.opts.Scale != "" {
		log = append(log, scale(cols, p.opts.Scale)...)
	}

	out := dataset.New(ds.Name)
	for _, col := range cols {
		if err := out.AddColumn(col); err != nil {
			return nil, nil, errors.DatasetInvalid(fmt.Sprintf("preprocessing produced an invalid dataset: %v", err))
		}
	}
	return out, log, nil
}

func validateOptions(opts Options) error {
	valid := func(v string, allowed ...string) bool {
		if v == "" {
			return true
		}
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
	if !valid(opts.Outliers, OutliersIQR, OutliersZScore) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown outlier strategy %q", opts.Outliers))
	}
	if !valid(opts.Impute, ImputeAuto, ImputeMean, ImputeMedian, ImputeMode) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown imputation strategy %q", opts.Impute))
	}
	if !valid(opts.Encode, EncodeOneHot, EncodeLabel) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown encoding strategy %q", opts.Encode))
	}
	if !valid(opts.Scale, ScaleStandard, ScaleMinMax) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown scaling strategy %q", opts.Scale))
	}
	return nil
}

func cloneColumns(cols []dataset.Column) []dataset.Column {
	out := make([]dataset.Column, len(cols))
	for i, col := range cols {
		clone := col
		if col.Floats != nil {
			clone.Floats = append([]float64(nil), col.Floats...)
		}
		if col.Labels != nil {
			clone.Labels = append([]string(nil), col.Labels...)
		}
		if col.Times != nil {
			clone.Times = append(col.Times[:0:0], col.Times...)
		}
		out[i] = clone
	}
	return out
}

// dropDuplicateRows keeps the first occurrence of every identical row.
func dropDuplicateRows(cols []dataset.Column) ([]dataset.Column, int) {
	if len(cols) == 0 {
		return cols, 0
	}
	rows := cols[0].Len()

	seen := make(map[string]struct{}, rows)
	var keep []int
	var sig strings.Builder
	for i := 0; i < rows; i++ {
		sig.Reset()
		for _, col := range cols {
			switch col.Kind {
			case dataset.KindNumeric:
				sig.WriteString(strconv.FormatFloat(col.Floats[i], 'g', -1, 64))
			case dataset.KindCategorical:
				sig.WriteString(col.Labels[i])
			case dataset.KindTemporal:
				sig.WriteString(strconv.FormatInt(col.Times[i].UnixNano(), 36))
			}
			sig.WriteByte('|')
		}
		key := sig.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	if len(keep) == rows {
		return cols, 0
	}
	for c := range cols {
		cols[c] = selectRows(cols[c], keep)
	}
	return cols, rows - len(keep)
}

func selectRows(col dataset.Column, keep []int) dataset.Column {
	switch col.Kind {
	case dataset.KindNumeric:
		vals := make([]float64, len(keep))
		for i, r := range keep {
			vals[i] = col.Floats[r]
		}
		col.Floats = vals
	case dataset.KindCategorical:
		vals := make([]string, len(keep))
		for i, r := range keep {
			vals[i] = col.Labels[r]
		}
		col.Labels = vals
	case dataset.KindTemporal:
		vals := make([]time.Time, len(keep))
		for i, r := range keep {
			vals[i] = col.Times[r]
		}
		col.Times = vals
	}
	return col
}

// treatOutliers caps numeric values outside the IQR fences, or replaces
// |z| > 3 points with the median under the zscore strategy.
func treatOutliers(cols []dataset.Column, strategy string) []string {
	var log []string
	for c := range cols {
		col := &cols[c]
		if col.Kind != dataset.KindNumeric {
			continue
		}
		present := col.NonMissingFloats()
		if len(present) < 4 {
			continue
		}

		touched := 0
		switch strategy {
		case OutliersIQR:
			q1, _ := stats.Percentile(present, 25)
			q3, _ := stats.Percentile(present, 75)
			iqr := q3 - q1
			lo, hi := q1-1.5*iqr, q3+1.5*iqr
			for i, v := range col.Floats {
				if math.IsNaN(v) {
					continue
				}
				if v < lo {
					col.Floats[i] = lo
					touched++
				} else if v > hi {
					col.Floats[i] = hi
					touched++
				}
			}
		case OutliersZScore:
			mean, _ := stats.Mean(present)
			std, _ := stats.StandardDeviationSample(present)
			if std == 0 {
				continue
			}
			median, _ := stats.Median(present)
			for i, v := range col.Floats {
				if math.IsNaN(v) {
					continue
				}
				if math.Abs((v-mean)/std) > 3 {
					col.Floats[i] = median
					touched++
				}
			}
		}
		if touched > 0 {
			log = append(log, fmt.Sprintf("%s outlier treatment adjusted %d values in '%s'", strategy, touched, col.Name))
		}
	}
	return log
}

func impute(cols []dataset.Column, strategy string) []string {
	var log []string
	for c := range cols {
		col := &cols[c]
		missing := col.MissingCount()
		if missing == 0 {
			continue
		}

		switch col.Kind {
		case dataset.KindNumeric:
			s := strategy
			if s == ImputeAuto {
				s = ImputeMedian
			}
			if s == ImputeMode {
				continue // mode imputation only applies to categoricals
			}
			present := col.NonMissingFloats()
			if len(present) == 0 {
				continue
			}
			var fill float64
			if s == ImputeMean {
				fill, _ = stats.Mean(present)
			} else {
				fill, _ = stats.Median(present)
			}
			for i, v := range col.Floats {
				if math.IsNaN(v) {
					col.Floats[i] = fill
				}
			}
			log = append(log, fmt.Sprintf("imputed %d missing values in '%s' with the %s", missing, col.Name, s))

		case dataset.KindCategorical:
			if strategy != ImputeAuto && strategy != ImputeMode {
				continue
			}
			mode := labelMode(col.Labels)
			if mode == "" {
				continue
			}
			for i, l := range col.Labels {
				if l == "" {
					col.Labels[i] = mode
				}
			}
			log = append(log, fmt.Sprintf("imputed %d missing values in '%s' with the mode", missing, col.Name))
		}
	}
	return log
}

func labelMode(labels []string) string {
	counts := make(map[string]int)
	for _, l := range labels {
		if l != "" {
			counts[l]++
		}
	}
	best, bestCount := "", 0
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l < best) {
			best, bestCount = l, c
		}
	}
	return best
}

// encode replaces categorical columns with numeric ones. Low-cardinality
// columns get one-hot dummies under the onehot strategy; everything else is
// label encoded.
func encode(cols []dataset.Column, strategy string, maxOneHot int) ([]dataset.Column, []string) {
	var out []dataset.Column
	var log []string

	for _, col := range cols {
		if col.Kind != dataset.KindCategorical {
			out = append(out, col)
			continue
		}

		if strategy == EncodeOneHot && col.DistinctCount() <= maxOneHot {
			dummies, names := ml.OneHot(col.Labels, col.Name)
			for i := range dummies {
				out = append(out, dataset.Column{Name: names[i], Kind: dataset.KindNumeric, Floats: dummies[i]})
			}
			log = append(log, fmt.Sprintf("one-hot encoded '%s' into %d columns", col.Name, len(dummies)))
			continue
		}

		encoded, _ := ml.LabelEncode(col.Labels)
		for i, v := range encoded {
			if v < 0 {
				encoded[i] = math.NaN()
			}
		}
		out = append(out, dataset.Column{Name: col.Name, Kind: dataset.KindNumeric, Floats: encoded})
		log = append(log, fmt.Sprintf("label encoded '%s'", col.Name))
	}
	return out, log
}

func scale(cols []dataset.Column, strategy string) []string {
	var log []string
	for c := range cols {
		col := &cols[c]
		if col.Kind != dataset.KindNumeric {
			continue
		}
		present := col.NonMissingFloats()
		if len(present) < 2 {
			continue
		}

		switch strategy {
		case ScaleStandard:
			mean, _ := stats.Mean(present)
			std, _ := stats.StandardDeviationSample(present)
			if std == 0 {
				continue
			}
			for i, v := range col.Floats {
				if !math.IsNaN(v) {
					col.Floats[i] = (v - mean) / std
				}
			}
		case ScaleMinMax:
			lo, _ := stats.Min(present)
			hi, _ := stats.Max(present)
			if hi == lo {
				continue
			}
			for i, v := range col.Floats {
				if !math.IsNaN(v) {
					col.Floats[i] = (v - lo) / (hi - lo)
				}
			}
		}
		log = append(log, fmt.Sprintf("%s scaled '%s'", strategy, col.Name))
	}
	return log
}
