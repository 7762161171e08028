package engine

import (
	"math/rand"
	"sort"
)

// regressionTree is a CART-style tree fitted by greedy variance reduction.
// It is the shared building block of the random-forest and gradient-boosting
// families.
type regressionTree struct {
	maxDepth    int
	minLeafSize int
	maxFeatures int // number of features sampled per split; 0 means all
	root        *treeNode
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *regressionTree) Fit(x [][]float64, y []float64, idx []int, rng *rand.Rand) {
	if idx == nil {
		idx = make([]int, len(y))
		for i := range idx {
			idx[i] = i
		}
	}
	t.root = t.grow(x, y, idx, 0, rng)
}

func (t *regressionTree) Predict(sample []float64) float64 {
	node := t.root
	for !node.leaf {
		if sample[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func (t *regressionTree) grow(x [][]float64, y []float64, idx []int, depth int, rng *rand.Rand) *treeNode {
	if depth >= t.maxDepth || len(idx) <= t.minLeafSize {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	feature, threshold, ok := t.bestSplit(x, y, idx, rng)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(x, y, left, depth+1, rng),
		right:     t.grow(x, y, right, depth+1, rng),
	}
}

// bestSplit scans candidate features for the threshold with the largest
// squared-error reduction, using prefix sums over the sorted column.
func (t *regressionTree) bestSplit(x [][]float64, y []float64, idx []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	numFeatures := len(x[idx[0]])
	candidates := featureCandidates(numFeatures, t.maxFeatures, rng)

	total, totalSq := 0.0, 0.0
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	n := float64(len(idx))
	baseSSE := totalSq - total*total/n
	bestGain := 0.0

	sorted := make([]int, len(idx))
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		leftSum, leftSq := 0.0, 0.0
		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// No valid threshold between equal feature values.
			if x[i][f] == x[sorted[pos+1]][f] {
				continue
			}

			nl := float64(pos + 1)
			nr := n - nl
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if gain := baseSSE - sse; gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (x[i][f] + x[sorted[pos+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// featureCandidates returns the feature indices considered at a split. With
// maxFeatures 0 (or >= total) all features are scanned; otherwise a random
// subset is drawn, as in a random forest.
func featureCandidates(numFeatures, maxFeatures int, rng *rand.Rand) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if maxFeatures <= 0 || maxFeatures >= numFeatures || rng == nil {
		return all
	}
	rng.Shuffle(numFeatures, func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:maxFeatures]
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
