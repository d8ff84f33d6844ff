package ingest

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"goeda/domain/dataset"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := dataset.New("export")
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(ds.AddColumn(dataset.Column{Name: "amount", Kind: dataset.KindNumeric, Floats: []float64{10.5, math.NaN(), 1200}}))
	must(ds.AddColumn(dataset.Column{Name: "city", Kind: dataset.KindCategorical, Labels: []string{"austin", "", "boston"}}))
	must(ds.AddColumn(dataset.Column{Name: "seen_at", Kind: dataset.KindTemporal, Times: []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		{},
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}}))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	back, err := NewCSVReader(path).Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if back.Rows() != 3 {
		t.Fatalf("expected 3 rows back, got %d", back.Rows())
	}
	amount, _ := back.Column("amount")
	if amount.Kind != dataset.KindNumeric {
		t.Fatalf("amount came back as %q", amount.Kind)
	}
	if amount.Floats[0] != 10.5 || !math.IsNaN(amount.Floats[1]) || amount.Floats[2] != 1200 {
		t.Errorf("amount round trip gave %v", amount.Floats)
	}
	city, _ := back.Column("city")
	if city.Labels[1] != "" || city.Labels[2] != "boston" {
		t.Errorf("city round trip gave %v", city.Labels)
	}
	seen, _ := back.Column("seen_at")
	if seen.Kind != dataset.KindTemporal {
		t.Fatalf("seen_at came back as %q", seen.Kind)
	}
	if !seen.Times[1].IsZero() || seen.Times[2].IsZero() {
		t.Errorf("seen_at round trip gave %v", seen.Times)
	}
}

func TestWriteCSVEmptyDataset(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, dataset.New("empty")); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\n" {
		t.Errorf("empty dataset should serialize to a bare newline, got %q", got)
	}
}
