package seed

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/rostrumhq/rostrum/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	scoreClassDivisor  = 8
)

// Constants for score generation ranges.
const (
	avgScoreMin    = 30.0
	avgScoreRange  = 40.0
	highScoreMin   = 70.0
	highScoreRange = 20.0
	lowScoreMin    = 1.0
	lowScoreRange  = 29.0
	topScoreMin    = 90.0
	topScoreRange  = 10.0
	floorScoreMin  = 1.0
	floorScoreRang = 9.0
	midHighMin     = 60.0
	midHighRange   = 20.0
	midLowMin      = 20.0
	midLowRange    = 20.0
	wideScoreMin   = 1.0
	wideScoreRange = 99.0
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateRoster creates n participants with unique IDs.
func generateRoster(ctx context.Context, n int) []memberPayload {
	logger.Get().Info(ctx, "generating roster", logger.Int("participants", n))

	roster := make([]memberPayload, n)
	for i := range roster {
		roster[i] = memberPayload{
			ID:   uuid.NewString(),
			Name: "participant-" + strconv.Itoa(i+1),
		}
	}
	return roster
}

// generatePanel creates n judges with unique IDs.
func generatePanel(ctx context.Context, n int) []memberPayload {
	logger.Get().Info(ctx, "generating panel", logger.Int("judges", n))

	panel := make([]memberPayload, n)
	for i := range panel {
		panel[i] = memberPayload{
			ID:   uuid.NewString(),
			Name: "judge-" + strconv.Itoa(i+1),
		}
	}
	return panel
}

// generateSubmissions creates one score per (participant, judge) pair with a
// varied value distribution so the resulting ranking has realistic ties and
// spread.
func generateSubmissions(ctx context.Context, config *Config, roster, panel []memberPayload, stats *Stats) []scorePayload {
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("participants", len(roster)),
		logger.Int("judges", len(panel)))

	submissions := make([]scorePayload, 0, len(roster)*len(panel))
	for _, p := range roster {
		for _, j := range panel {
			submissions = append(submissions, scorePayload{
				SubmissionID: uuid.NewString(),
				EventID:      config.EventID,
				StudentID:    p.ID,
				JudgeID:      j.ID,
				Value:        generateVariedScore(),
			})
		}
	}

	stats.ScoresGenerated = len(submissions)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(submissions)))
	return submissions
}

// generateVariedScore creates a score with varied distribution.
func generateVariedScore() float64 {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(scoreClassDivisor))
	switch randNum.Int64() {
	case 0:
		// Average performers (30 - 70) - most common
		return avgScoreMin + getRandomFloat()*avgScoreRange
	case 1:
		// High performers (70 - 90)
		return highScoreMin + getRandomFloat()*highScoreRange
	case 2:
		// Low performers (1 - 30)
		return lowScoreMin + getRandomFloat()*lowScoreRange
	case 3:
		// Top performers (90 - 100) - rare
		return topScoreMin + getRandomFloat()*topScoreRange
	case 4:
		// Floor performers (1 - 10) - rare
		return floorScoreMin + getRandomFloat()*floorScoreRang
	case 5:
		// Mid-high performers (60 - 80)
		return midHighMin + getRandomFloat()*midHighRange
	case 6:
		// Mid-low performers (20 - 40)
		return midLowMin + getRandomFloat()*midLowRange
	default:
		// Random across full range (1 - 100)
		return wideScoreMin + getRandomFloat()*wideScoreRange
	}
}
