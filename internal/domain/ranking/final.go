package ranking

import "sort"

// assignFinalRanks turns each result's RankSum into a FinalRank in place.
// A lower rank sum places better. Participants with identical rank sums
// form a group; groups are numbered with competition (skip-rank) counting
// under MethodSpearman and densely under MethodGeneral.
func assignFinalRanks(results []Result, method Method) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return results[order[a]].RankSum < results[order[b]].RankSum
	})

	dense := method == MethodGeneral
	nextDense := 0
	for start := 0; start < len(order); {
		end := start
		for end < len(order) && results[order[end]].RankSum == results[order[start]].RankSum {
			end++
		}
		rank := start + 1
		if dense {
			nextDense++
			rank = nextDense
		}
		for i := start; i < end; i++ {
			results[order[i]].FinalRank = rank
		}
		start = end
	}
}
