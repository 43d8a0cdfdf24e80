package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/rostrumhq/rostrum/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Runner configuration constants.
const (
	drainPollInterval = 500 * time.Millisecond
	drainTimeout      = 2 * time.Minute
)

// Run executes a complete seeding pass: create the event, register the
// roster and panel, submit scores, wait for the queue to drain, then fetch
// and verify the ranking.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	if config.EventID == "" {
		config.EventID = "seed-" + uuid.NewString()
	}

	logger.Get().Info(ctx, "starting rostrum seeding run",
		logger.String("baseURL", config.BaseURL),
		logger.String("eventID", config.EventID),
		logger.Int("participants", config.Participants),
		logger.Int("judges", config.Judges),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("method", config.Method),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create the event and register members
	if err := createEvent(ctx, config); err != nil {
		return fmt.Errorf("event creation failed: %w", err)
	}
	roster := generateRoster(ctx, config.Participants)
	panel := generatePanel(ctx, config.Judges)
	if err := registerMembers(ctx, config, "participants", roster); err != nil {
		return fmt.Errorf("roster registration failed: %w", err)
	}
	if err := registerMembers(ctx, config, "judges", panel); err != nil {
		return fmt.Errorf("panel registration failed: %w", err)
	}

	// Step 3: Generate and submit scores
	submissions := generateSubmissions(ctx, config, roster, panel, stats)
	if err := submitScores(ctx, config, submissions, stats); err != nil {
		return fmt.Errorf("score submission failed: %w", err)
	}

	// Step 4: Wait for the queue to drain
	if err := waitForDrain(ctx, config); err != nil {
		return fmt.Errorf("queue drain wait failed: %w", err)
	}

	// Step 5: Fetch and verify the ranking
	rows, err := fetchRanking(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("ranking retrieval failed: %w", err)
	}
	if err := verifyRanking(config, roster, rows); err != nil {
		return fmt.Errorf("ranking verification failed: %w", err)
	}

	// Step 6: Save submissions to file
	if err := saveSubmissionsToFile(ctx, config, submissions); err != nil {
		logger.Get().Warn(ctx, "failed to save submissions to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForDrain polls /stats until the queue reports empty so the ranking
// reflects every accepted submission.
func waitForDrain(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "waiting for the queue to drain")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"
	deadline := time.Now().Add(drainTimeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(drainPollInterval):
		}

		resp, err := client.Get(ctx, url)
		if err != nil {
			continue
		}
		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != statusOK {
			continue
		}

		var snapshot struct {
			QueueLength int `json:"queueLength"`
		}
		if err := json.Unmarshal(body, &snapshot); err != nil {
			continue
		}
		if snapshot.QueueLength == 0 {
			logger.Get().Info(ctx, "queue drained")
			return nil
		}
	}
	return fmt.Errorf("queue did not drain within %s", drainTimeout)
}

// saveSubmissionsToFile saves the generated submissions to a JSON file.
func saveSubmissionsToFile(ctx context.Context, config *Config, submissions []scorePayload) error {
	if len(submissions) == 0 {
		return fmt.Errorf("no submissions to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "seed_submissions_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	if err := writeSubmissionsJSON(file, submissions); err != nil {
		return err
	}

	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// writeSubmissionsJSON streams the submissions to w as a JSON array, one
// element per line.
func writeSubmissionsJSON(w io.Writer, submissions []scorePayload) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return fmt.Errorf("failed to write opening bracket: %w", err)
	}
	for i, sub := range submissions {
		jsonData, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("failed to marshal submission %d: %w", i, err)
		}
		if _, err := w.Write(jsonData); err != nil {
			return fmt.Errorf("failed to write submission %d: %w", i, err)
		}
		if i < len(submissions)-1 {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	if _, err := io.WriteString(w, "]\n"); err != nil {
		return fmt.Errorf("failed to write closing bracket: %w", err)
	}
	return nil
}

// displayFinalStats prints the final seeding statistics.
func displayFinalStats(stats *Stats) {
	var successRate, scoresPerSecond float64

	if stats.ScoresSubmitted > 0 {
		successRate = float64(stats.ScoresSuccessful) / float64(stats.ScoresSubmitted) * 100
	}
	if stats.Duration > 0 {
		scoresPerSecond = float64(stats.ScoresSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("scoresGenerated", stats.ScoresGenerated),
		logger.Int("scoresSubmitted", stats.ScoresSubmitted),
		logger.Int("scoresSuccessful", stats.ScoresSuccessful),
		logger.Int("scoresDuplicate", stats.ScoresDuplicate),
		logger.Int("scoresFailed", stats.ScoresFailed),
		logger.Int("rankingRows", stats.RankingRows),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("scoresPerSecond", scoresPerSecond))
}
