package ingest

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"goeda/domain/dataset"
	"goeda/internal/errors"
)

// ExcelReader reads one sheet of an .xlsx workbook with a header row.
type ExcelReader struct {
	path  string
	sheet string
	cfg   InferenceConfig
}

// NewExcelReader reads from the named sheet, defaulting to Sheet1.
func NewExcelReader(path, sheet string) *ExcelReader {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &ExcelReader{path: path, sheet: sheet, cfg: DefaultInferenceConfig()}
}

func (r *ExcelReader) Source() string { return fmt.Sprintf("%s#%s", r.path, r.sheet) }

func (r *ExcelReader) Read(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("open %s: %v", r.path, err))
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("read sheet %s: %v", r.sheet, err))
	}
	if len(rows) == 0 {
		return nil, errors.DatasetInvalid(fmt.Sprintf("sheet %s is empty", r.sheet))
	}

	rs := RecordSet{
		Name:   datasetName(r.path),
		Header: rows[0],
		Rows:   rows[1:],
	}
	return BuildDataset(rs, r.cfg)
}
