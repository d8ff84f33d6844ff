package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goeda/domain/dataset"
	"goeda/internal/errors"
)

// RecordSet is a raw table before typing: a header plus string cells. Every
// source adapter reduces its input to this shape.
type RecordSet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// InferenceConfig holds the thresholds for column type inference: the share
// of non-missing cells that must parse for a column to take that type.
type InferenceConfig struct {
	NumericThreshold   float64
	TimestampThreshold float64
}

// DefaultInferenceConfig mirrors the usual 80% rule.
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{NumericThreshold: 0.8, TimestampThreshold: 0.8}
}

// timestampLayouts are tried in order when parsing temporal cells.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// BuildDataset types each column by majority parse and assembles a dataset.
// Numeric wins over temporal when both clear their thresholds. Cells that do
// not parse under the chosen type become missing values.
func BuildDataset(rs RecordSet, cfg InferenceConfig) (*dataset.Dataset, error) {
	if len(rs.Header) == 0 {
		return nil, errors.DatasetInvalid("no header row")
	}

	ds := dataset.New(rs.Name)
	for c, name := range rs.Header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(c+1)
		}

		cells := make([]string, len(rs.Rows))
		for r, row := range rs.Rows {
			if c < len(row) {
				cells[r] = strings.TrimSpace(row[c])
			}
		}

		if err := ds.AddColumn(inferColumn(name, cells, cfg)); err != nil {
			return nil, errors.DatasetInvalid(err.Error())
		}
	}
	return ds, nil
}

func inferColumn(name string, cells []string, cfg InferenceConfig) dataset.Column {
	present, numeric, temporal := 0, 0, 0
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		present++
		if _, ok := parseNumeric(cell); ok {
			numeric++
		}
		if _, ok := parseTimestamp(cell); ok {
			temporal++
		}
	}

	if present > 0 && float64(numeric)/float64(present) >= cfg.NumericThreshold {
		floats := make([]float64, len(cells))
		for i, cell := range cells {
			if v, ok := parseNumeric(cell); ok {
				floats[i] = v
			} else {
				floats[i] = math.NaN()
			}
		}
		return dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: floats}
	}

	if present > 0 && float64(temporal)/float64(present) >= cfg.TimestampThreshold {
		times := make([]time.Time, len(cells))
		for i, cell := range cells {
			if t, ok := parseTimestamp(cell); ok {
				times[i] = t
			}
		}
		return dataset.Column{Name: name, Kind: dataset.KindTemporal, Times: times}
	}

	labels := make([]string, len(cells))
	copy(labels, cells)
	return dataset.Column{Name: name, Kind: dataset.KindCategorical, Labels: labels}
}

// parseNumeric accepts plain floats plus the common spreadsheet decorations:
// thousands separators, currency symbols, and parentheses for negatives.
func parseNumeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.Trim(s, "$€£%"))
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
