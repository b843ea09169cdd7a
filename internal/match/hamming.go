package match

import "math/bits"

// hammingDistance counts differing bits between two descriptors.
func hammingDistance(a, b descriptor) int {
	dist := 0
	for i := range a {
		dist += bits.OnesCount8(a[i] ^ b[i])
	}
	return dist
}

// countCrossMatches brute-force matches descriptors both ways and counts
// pairs that are mutual nearest neighbors.
func countCrossMatches(descA, descB []descriptor) int {
	bestForA := nearestNeighbors(descA, descB)
	bestForB := nearestNeighbors(descB, descA)

	matches := 0
	for i, j := range bestForA {
		if j >= 0 && bestForB[j] == i {
			matches++
		}
	}
	return matches
}

// nearestNeighbors returns, for each descriptor in from, the index of its
// nearest descriptor in to (-1 when to is empty).
func nearestNeighbors(from, to []descriptor) []int {
	out := make([]int, len(from))
	for i, d := range from {
		best := -1
		bestDist := descriptorBits + 1
		for j, e := range to {
			dist := hammingDistance(d, e)
			if dist < bestDist {
				bestDist = dist
				best = j
			}
		}
		out[i] = best
	}
	return out
}
