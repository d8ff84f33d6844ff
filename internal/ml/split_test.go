package ml

import "testing"

func TestTrainTestSplitPartitions(t *testing.T) {
	train, test, err := TrainTestSplit(100, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(test) != 20 || len(train) != 80 {
		t.Errorf("expected 80/20, got %d/%d", len(train), len(test))
	}

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
	if len(seen) != 100 {
		t.Errorf("partitions must cover all rows, got %d", len(seen))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	_, a, err := TrainTestSplit(50, 0.3, 7)
	if err != nil {
		t.Fatal(err)
	}
	_, b, err := TrainTestSplit(50, 0.3, 7)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must give the same split")
		}
	}
}

func TestTrainTestSplitRoundsUpButKeepsTraining(t *testing.T) {
	// ceil(3 * 0.2) = 1 test row.
	train, test, err := TrainTestSplit(3, 0.2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(test) != 1 || len(train) != 2 {
		t.Errorf("got %d/%d", len(train), len(test))
	}

	// A huge fraction still leaves at least one training row.
	train, test, err = TrainTestSplit(2, 0.99, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(train) != 1 || len(test) != 1 {
		t.Errorf("got %d/%d", len(train), len(test))
	}
}

func TestTrainTestSplitRejectsBadInput(t *testing.T) {
	if _, _, err := TrainTestSplit(1, 0.2, 1); err == nil {
		t.Error("single row must fail")
	}
	if _, _, err := TrainTestSplit(10, 0, 1); err == nil {
		t.Error("zero fraction must fail")
	}
	if _, _, err := TrainTestSplit(10, 1, 1); err == nil {
		t.Error("fraction of 1 must fail")
	}
}
