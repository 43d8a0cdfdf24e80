package ranking

// aggregateScores sums the scores recorded for one participant and returns
// the total alongside the average. The average is 0 when no scores exist.
func aggregateScores(participantID string, scores []Score) (total, average float64) {
	count := 0
	for _, s := range scores {
		if s.StudentID != participantID {
			continue
		}
		total += s.Value
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return total, total / float64(count)
}
