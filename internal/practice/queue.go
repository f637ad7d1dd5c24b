package practice

import "sort"

// unseenErrorRate is used for cards with no recorded attempts.
const unseenErrorRate = 0.5

// ErrorRate returns incorrect/(correct+incorrect), or 0.5 for an unseen card.
func ErrorRate(correct, incorrect int) float64 {
	total := correct + incorrect
	if total <= 0 {
		return unseenErrorRate
	}
	return float64(incorrect) / float64(total)
}

// CardWeight ranks a card for review. Harder and more error-prone cards
// weigh more.
func CardWeight(difficulty, correct, incorrect int) float64 {
	return float64(difficulty) * (1 + ErrorRate(correct, incorrect))
}

// InitialQueue is the identity order [0..n-1].
func InitialQueue(n int) []int {
	q := make([]int, n)
	for i := range q {
		q[i] = i
	}
	return q
}

// RankQueue returns a copy of queue sorted by descending weight. Entries of
// equal weight keep their relative order, and the multiset of indices is
// unchanged.
func RankQueue(queue []int, weight func(idx int) float64) []int {
	ranked := make([]int, len(queue))
	copy(ranked, queue)

	weights := make(map[int]float64, len(ranked))
	for _, idx := range ranked {
		if _, ok := weights[idx]; !ok {
			weights[idx] = weight(idx)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return weights[ranked[i]] > weights[ranked[j]]
	})
	return ranked
}
