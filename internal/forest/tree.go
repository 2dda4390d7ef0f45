package forest

import (
	"math/rand"
	"sort"
)

// Node is one split or leaf of a regression tree. Fields stay exported so
// gob can round-trip a fitted model.
type Node struct {
	Feature   int // -1 marks a leaf
	Threshold float64
	Left      int // child indices into Tree.Nodes
	Right     int
	Value     float64 // leaf prediction
}

// Tree is a CART regression tree stored as a flat node slice, root first.
type Tree struct {
	Nodes []Node
}

// predict walks the tree for one feature row.
func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows one tree on a bootstrap sample and accumulates each
// split's sum-of-squared-error reduction per feature for importances.
type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minSplit int
	gains    []float64 // SSE reduction per feature
}

// grow builds the tree over the given sample indices (duplicates allowed,
// as produced by bootstrap draws).
func (b *treeBuilder) grow(sample []int) Tree {
	t := Tree{}
	b.node(&t, sample, 0)
	return t
}

// node appends the subtree for sample and returns its node index.
func (b *treeBuilder) node(t *Tree, sample []int, depth int) int {
	sum, sqSum := 0.0, 0.0
	for _, i := range sample {
		sum += b.y[i]
		sqSum += b.y[i] * b.y[i]
	}
	n := float64(len(sample))
	mean := sum / n
	sse := sqSum - sum*sum/n

	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: -1, Value: mean})
	if depth >= b.maxDepth || len(sample) < b.minSplit || sse <= 0 {
		return idx
	}

	feature, threshold, gain, ok := b.bestSplit(sample, sse)
	if !ok {
		return idx
	}
	b.gains[feature] += gain

	var left, right []int
	for _, i := range sample {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	t.Nodes[idx].Feature = feature
	t.Nodes[idx].Threshold = threshold
	t.Nodes[idx].Left = b.node(t, left, depth+1)
	t.Nodes[idx].Right = b.node(t, right, depth+1)
	return idx
}

// bestSplit scans every feature for the threshold minimizing the summed
// child SSE. Returns ok=false when no split separates the sample.
func (b *treeBuilder) bestSplit(sample []int, parentSSE float64) (feature int, threshold, gain float64, ok bool) {
	order := make([]int, len(sample))
	bestGain := 0.0

	for f := range b.x[0] {
		copy(order, sample)
		sort.Slice(order, func(i, j int) bool { return b.x[order[i]][f] < b.x[order[j]][f] })

		// prefix sums over the sorted order
		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		n := float64(len(order))
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftSum += b.y[i]
			leftSq += b.y[i] * b.y[i]

			// can't split between equal feature values
			if b.x[order[k]][f] == b.x[order[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := n - nl
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sseL := leftSq - leftSum*leftSum/nl
			sseR := rightSq - rightSum*rightSum/nr

			if g := parentSSE - sseL - sseR; g > bestGain {
				bestGain = g
				feature = f
				threshold = (b.x[order[k]][f] + b.x[order[k+1]][f]) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

// bootstrap draws n sample indices with replacement.
func bootstrap(rnd *rand.Rand, n int) []int {
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rnd.Intn(n)
	}
	return sample
}
