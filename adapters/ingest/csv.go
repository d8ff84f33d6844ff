package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goeda/domain/dataset"
	"goeda/internal/errors"
)

// CSVReader reads a comma-separated file with a header row.
type CSVReader struct {
	path string
	cfg  InferenceConfig
}

func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path, cfg: DefaultInferenceConfig()}
}

func (r *CSVReader) Source() string { return r.path }

// Read parses the whole file and infers column types.
func (r *CSVReader) Read(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("open %s: %v", r.path, err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; missing cells become missing values

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("parse %s: %v", r.path, err))
	}
	if len(records) == 0 {
		return nil, errors.DatasetInvalid(fmt.Sprintf("%s is empty", r.path))
	}

	rs := RecordSet{
		Name:   datasetName(r.path),
		Header: records[0],
		Rows:   records[1:],
	}
	return BuildDataset(rs, r.cfg)
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteCSV serializes a dataset back to CSV with a header row. Missing
// values become empty cells regardless of column kind.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := ds.Columns()
	record := make([]string, len(cols))
	for i := 0; i < ds.Rows(); i++ {
		for j, col := range cols {
			record[j] = cellText(col, i)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func cellText(col dataset.Column, row int) string {
	switch col.Kind {
	case dataset.KindNumeric:
		v := col.Floats[row]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case dataset.KindCategorical:
		return col.Labels[row]
	case dataset.KindTemporal:
		t := col.Times[row]
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}
	return ""
}
