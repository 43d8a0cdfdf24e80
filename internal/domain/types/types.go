// Package types contains common types used across the application
package types

// JudgeRank is one judge's rank for a participant, with the judge's display
// name attached for rendering.
type JudgeRank struct {
	JudgeID   string  `json:"judge_id"`
	JudgeName string  `json:"judge_name,omitempty"`
	Rank      float64 `json:"rank"`
}

// Row represents one line of a computed ranking table.
type Row struct {
	FinalRank     int         `json:"final_rank"`
	ParticipantID string      `json:"participant_id"`
	Name          string      `json:"name"`
	TotalScore    float64     `json:"total_score"`
	AverageScore  float64     `json:"average_score"`
	RankSum       float64     `json:"rank_sum"`
	PerJudgeRanks []JudgeRank `json:"per_judge_ranks"`
}
