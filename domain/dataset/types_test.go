package dataset

import (
	"math"
	"testing"
	"time"
)

func TestAddColumnEnforcesInvariants(t *testing.T) {
	ds := New("orders")

	if err := ds.AddColumn(Column{Name: "amount", Kind: KindNumeric, Floats: []float64{1, 2, 3}}); err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 3 {
		t.Errorf("rows = %d, want 3", ds.Rows())
	}

	if err := ds.AddColumn(Column{Name: "amount", Kind: KindNumeric, Floats: []float64{4, 5, 6}}); err == nil {
		t.Error("duplicate column name must fail")
	}
	if err := ds.AddColumn(Column{Name: "short", Kind: KindNumeric, Floats: []float64{1}}); err == nil {
		t.Error("row count mismatch must fail")
	}
	if err := ds.AddColumn(Column{Kind: KindNumeric, Floats: []float64{1, 2, 3}}); err == nil {
		t.Error("empty column name must fail")
	}

	if err := ds.AddColumn(Column{Name: "city", Kind: KindCategorical, Labels: []string{"a", "b", "a"}}); err != nil {
		t.Fatal(err)
	}
	if len(ds.Columns()) != 2 {
		t.Errorf("expected 2 columns, got %d", len(ds.Columns()))
	}
}

func TestColumnKindAccessors(t *testing.T) {
	ds := New("mixed")
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(ds.AddColumn(Column{Name: "n", Kind: KindNumeric, Floats: []float64{1, 2}}))
	must(ds.AddColumn(Column{Name: "c", Kind: KindCategorical, Labels: []string{"x", "y"}}))
	must(ds.AddColumn(Column{Name: "t", Kind: KindTemporal, Times: make([]time.Time, 2)}))

	if len(ds.NumericColumns()) != 1 || len(ds.CategoricalColumns()) != 1 || len(ds.TemporalColumns()) != 1 {
		t.Error("kind accessors must partition the columns")
	}
	if !ds.HasColumn("n") || ds.HasColumn("missing") {
		t.Error("HasColumn broken")
	}
	names := ds.ColumnNames()
	if len(names) != 3 || names[0] != "n" || names[2] != "t" {
		t.Errorf("insertion order not preserved: %v", names)
	}
}

func TestColumnMissingConventions(t *testing.T) {
	num := Column{Name: "n", Kind: KindNumeric, Floats: []float64{1, math.NaN(), 3}}
	if num.MissingCount() != 1 {
		t.Errorf("NaN is the numeric missing marker")
	}
	if got := num.NonMissingFloats(); len(got) != 2 {
		t.Errorf("NonMissingFloats = %v", got)
	}
	if num.DistinctCount() != 2 {
		t.Errorf("distinct = %d, want 2", num.DistinctCount())
	}

	cat := Column{Name: "c", Kind: KindCategorical, Labels: []string{"a", "", "a"}}
	if cat.MissingCount() != 1 || cat.DistinctCount() != 1 {
		t.Error("empty string is the categorical missing marker")
	}

	tm := Column{Name: "t", Kind: KindTemporal, Times: []time.Time{{}, time.Now()}}
	if tm.MissingCount() != 1 {
		t.Error("zero time is the temporal missing marker")
	}
}

func TestMissingRate(t *testing.T) {
	ds := New("gaps")
	if err := ds.AddColumn(Column{Name: "a", Kind: KindNumeric, Floats: []float64{1, math.NaN()}}); err != nil {
		t.Fatal(err)
	}
	if err := ds.AddColumn(Column{Name: "b", Kind: KindCategorical, Labels: []string{"x", "y"}}); err != nil {
		t.Fatal(err)
	}
	if got := ds.MissingRate(); got != 0.25 {
		t.Errorf("missing rate = %v, want 0.25", got)
	}
	if New("empty").MissingRate() != 0 {
		t.Error("empty dataset has zero missing rate")
	}
}
