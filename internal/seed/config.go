package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL      string        // Base URL of the service
	EventID      string        // Event to create and seed (generated when empty)
	Participants int           // Number of participants to register
	Judges       int           // Number of judges to register
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Method       string        // Ranking method to verify with ("" for server default)
	OutputFile   string        // Output file for generated submissions
	LogFile      string        // Log file for seeding output
	Verbose      bool          // Enable verbose logging
}

// memberPayload is the wire shape for participant and judge registration.
type memberPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// scorePayload is the wire shape for score submissions.
type scorePayload struct {
	SubmissionID string  `json:"submission_id"`
	EventID      string  `json:"event_id"`
	StudentID    string  `json:"student_id"`
	JudgeID      string  `json:"judge_id"`
	Value        float64 `json:"value"`
}

// ackPayload is the response from score submission.
type ackPayload struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// rankingRow is one line of the computed ranking table.
type rankingRow struct {
	FinalRank     int     `json:"final_rank"`
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	TotalScore    float64 `json:"total_score"`
	AverageScore  float64 `json:"average_score"`
	RankSum       float64 `json:"rank_sum"`
}

// Stats holds seeding statistics.
type Stats struct {
	ScoresGenerated  int
	ScoresSubmitted  int
	ScoresSuccessful int
	ScoresDuplicate  int
	ScoresFailed     int
	RankingRows      int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
