package ranking

import "sort"

// perJudgeRanks computes, for every judge present in scores, the rank each
// scored participant holds within that judge's own scores. Higher score is
// better; rank 1 is best. Participants with exactly equal values form a tie
// group occupying positions p..p+k-1 and receive either the mean of those
// positions (fractional=true, the Spearman mid-rank rule) or position p for
// the whole group (fractional=false, competition skip-ranking).
func perJudgeRanks(scores []Score, fractional bool) map[string]map[string]float64 {
	byJudge := make(map[string][]Score)
	for _, s := range scores {
		byJudge[s.JudgeID] = append(byJudge[s.JudgeID], s)
	}

	out := make(map[string]map[string]float64, len(byJudge))
	for judgeID, judgeScores := range byJudge {
		out[judgeID] = rankOneJudge(judgeScores, fractional)
	}
	return out
}

// rankOneJudge ranks a single judge's scores. A judge with no scores yields
// an empty map rather than an error.
func rankOneJudge(scores []Score, fractional bool) map[string]float64 {
	sorted := make([]Score, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].StudentID < sorted[j].StudentID
	})

	ranks := make(map[string]float64, len(sorted))
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].Value == sorted[start].Value {
			end++
		}
		// Tie group occupies 1-indexed positions start+1 .. end.
		rank := float64(start + 1)
		if fractional {
			rank = float64(start+1+end) / 2
		}
		for i := start; i < end; i++ {
			ranks[sorted[i].StudentID] = rank
		}
		start = end
	}
	return ranks
}
