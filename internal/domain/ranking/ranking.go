// Package ranking computes final placements from raw judge scores.
//
// The package is a pure function of its inputs: no I/O, no retained state,
// no mutation of the caller's slices. Two rank-aggregation methods are
// supported, selected by Method; both share the same score aggregation.
package ranking

import "sort"

// Participant identifies one ranked subject. ID is the identity; Name is
// display-only and passed through to results untouched.
type Participant struct {
	ID   string
	Name string
}

// Score is one judge's score for one participant.
type Score struct {
	StudentID string
	JudgeID   string
	Value     float64
}

// PerJudgeRank is the rank one judge's scores imply for a participant,
// relative to the other participants that judge scored. Rank may be
// fractional under the mid-rank tie rule.
type PerJudgeRank struct {
	JudgeID string
	Rank    float64
}

// Result is the computed standing of a single participant.
type Result struct {
	Participant   Participant
	TotalScore    float64
	AverageScore  float64
	PerJudgeRanks []PerJudgeRank
	RankSum       float64
	FinalRank     int
}

// Compute ranks participants from scores using the given method and returns
// one Result per participant, ordered by FinalRank ascending with ties
// broken by participant ID.
//
// Input handling rules:
//   - Duplicate (StudentID, JudgeID) pairs: the last score in the slice wins.
//   - Scores whose StudentID matches no participant are ignored.
//   - A participant with no scores gets zero totals, no per-judge ranks and
//     a rank sum of 0; it still receives a final rank.
//   - A judge never contributes a rank for a participant it did not score,
//     so partial judge coverage leaves that judge out of the participant's
//     rank sum rather than penalizing it.
func Compute(participants []Participant, scores []Score, method Method) []Result {
	if len(participants) == 0 {
		return []Result{}
	}

	known := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		known[p.ID] = struct{}{}
	}
	effective := dedupeScores(scores, known)

	results := make([]Result, len(participants))
	for i, p := range participants {
		total, average := aggregateScores(p.ID, effective)
		results[i] = Result{
			Participant:   p,
			TotalScore:    total,
			AverageScore:  average,
			PerJudgeRanks: []PerJudgeRank{},
		}
	}

	fractional := method != MethodGeneral
	ranksByJudge := perJudgeRanks(effective, fractional)

	judgeIDs := make([]string, 0, len(ranksByJudge))
	for id := range ranksByJudge {
		judgeIDs = append(judgeIDs, id)
	}
	sort.Strings(judgeIDs)

	for i := range results {
		id := results[i].Participant.ID
		for _, judgeID := range judgeIDs {
			rank, ok := ranksByJudge[judgeID][id]
			if !ok {
				continue
			}
			results[i].PerJudgeRanks = append(results[i].PerJudgeRanks, PerJudgeRank{
				JudgeID: judgeID,
				Rank:    rank,
			})
			results[i].RankSum += rank
		}
	}

	assignFinalRanks(results, method)

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalRank != results[j].FinalRank {
			return results[i].FinalRank < results[j].FinalRank
		}
		return results[i].Participant.ID < results[j].Participant.ID
	})
	return results
}

// dedupeScores resolves duplicate (StudentID, JudgeID) pairs in favor of the
// last occurrence and drops scores for unknown participants. The returned
// slice preserves first-occurrence ordering of the surviving pairs.
func dedupeScores(scores []Score, known map[string]struct{}) []Score {
	type key struct{ student, judge string }
	index := make(map[key]int, len(scores))
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		if _, ok := known[s.StudentID]; !ok {
			continue
		}
		k := key{s.StudentID, s.JudgeID}
		if i, seen := index[k]; seen {
			out[i] = s
			continue
		}
		index[k] = len(out)
		out = append(out, s)
	}
	return out
}
