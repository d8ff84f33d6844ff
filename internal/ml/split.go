package ml

import (
	"errors"
	"math"
	"math/rand"
)

// TrainTestSplit shuffles row indices with a seeded source and returns the
// train and held-out partitions. The same seed always produces the same split.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, errors.New("split: need at least 2 rows")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.New("split: test fraction must be in (0, 1)")
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = perm[:nTest]
	train = perm[nTest:]
	return train, test, nil
}
