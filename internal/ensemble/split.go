package ensemble

// Split fraction defaults
const (
	DefaultTestFraction = 0.1
	DefaultValFraction  = 0.1
)

// chronoSplit partitions n time-ordered rows into train, validation, and
// test index ranges without shuffling: the trailing testFraction becomes the
// test set, then the trailing valFraction/(1-testFraction) of the remainder
// becomes validation, so the three sets stay in chronological order and no
// future data leaks into training.
func chronoSplit(n int, testFraction, valFraction float64) (train, val, test []int) {
	nTest := int(float64(n) * testFraction)
	nRemain := n - nTest
	nVal := int(float64(nRemain) * (valFraction / (1 - testFraction)))
	nTrain := nRemain - nVal

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx[:nTrain], idx[nTrain:nRemain], idx[nRemain:]
}
