package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goeda/domain/dataset"
	"goeda/internal/errors"
)

// SQLReader runs a query against a database and ingests the result set.
type SQLReader struct {
	db    *sqlx.DB
	query string
	name  string
	cfg   InferenceConfig
}

// OpenPostgres connects and pings a PostgreSQL database.
func OpenPostgres(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("connect to database: %v", err))
	}
	return db, nil
}

// NewSQLReader ingests the result of query, naming the dataset name.
func NewSQLReader(db *sqlx.DB, name, query string) *SQLReader {
	return &SQLReader{db: db, query: query, name: name, cfg: DefaultInferenceConfig()}
}

func (r *SQLReader) Source() string { return "sql:" + r.name }

func (r *SQLReader) Read(ctx context.Context) (*dataset.Dataset, error) {
	rows, err := r.db.QueryxContext(ctx, r.query)
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("query %s: %v", r.name, err))
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("columns for %s: %v", r.name, err))
	}

	var raw [][]string
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, errors.SourceRead(fmt.Sprintf("scan %s: %v", r.name, err))
		}
		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = cellString(cell)
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.SourceRead(fmt.Sprintf("iterate %s: %v", r.name, err))
	}

	rs := RecordSet{Name: r.name, Header: header, Rows: raw}
	return BuildDataset(rs, r.cfg)
}

// cellString renders a scanned database value the way the type inferencer
// expects: NULL becomes missing, timestamps keep a parseable layout.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
