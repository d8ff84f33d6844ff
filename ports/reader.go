package ports

import (
	"context"

	"goeda/domain/dataset"
)

// DataReader loads a raw table from some source into a typed dataset.
// Implementations own source-specific parsing; column typing is shared and
// happens during ingestion.
type DataReader interface {
	// Read loads the full table. Implementations respect ctx cancellation
	// where the underlying source supports it.
	Read(ctx context.Context) (*dataset.Dataset, error)

	// Source describes where the data comes from, for logs and errors.
	Source() string
}
