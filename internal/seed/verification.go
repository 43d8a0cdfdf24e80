package seed

import (
	"fmt"
	"log"
)

// verifyRanking checks structural invariants of the returned ranking table:
// one row per registered participant, final ranks starting at 1 and never
// decreasing, and rank sums ordered consistently with the final ranks.
func verifyRanking(config *Config, roster []memberPayload, rows []rankingRow) error {
	log.Println("🔍 Verifying ranking...")

	if len(rows) == 0 {
		return fmt.Errorf("no ranking rows to verify")
	}
	if len(rows) != len(roster) {
		return fmt.Errorf("ranking has %d rows, expected %d registered participants", len(rows), len(roster))
	}

	known := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		known[p.ID] = struct{}{}
	}
	for _, row := range rows {
		if _, ok := known[row.ParticipantID]; !ok {
			return fmt.Errorf("ranking contains unknown participant %s", row.ParticipantID)
		}
	}

	if rows[0].FinalRank != 1 {
		return fmt.Errorf("first row has final rank %d, expected 1", rows[0].FinalRank)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].FinalRank < rows[i-1].FinalRank {
			return fmt.Errorf("ranking not sorted: row %d has rank %d after rank %d",
				i, rows[i].FinalRank, rows[i-1].FinalRank)
		}
		if rows[i].RankSum < rows[i-1].RankSum {
			return fmt.Errorf("rank sums out of order: row %d has sum %.3f after %.3f",
				i, rows[i].RankSum, rows[i-1].RankSum)
		}
	}

	displayTopRows(rows, config.Verbose)

	log.Println("✅ Ranking verification completed")
	return nil
}

// displayTopRows shows the head of the ranking table.
func displayTopRows(rows []rankingRow, verbose bool) {
	topN := 10
	if len(rows) < topN {
		topN = len(rows)
	}

	log.Printf("🥇 Top %d of the ranking:", topN)
	for i := 0; i < topN; i++ {
		row := rows[i]
		log.Printf("   %d. %s - rank sum: %.2f, avg score: %.2f", row.FinalRank, row.Name, row.RankSum, row.AverageScore)
	}

	if verbose && len(rows) > 0 {
		sum := 0.0
		for _, row := range rows {
			sum += row.AverageScore
		}
		log.Printf(`📊 Score statistics:
   Mean of averages: %.3f
   Leader average: %.3f
   Last place average: %.3f
`, sum/float64(len(rows)), rows[0].AverageScore, rows[len(rows)-1].AverageScore)
	}
}
