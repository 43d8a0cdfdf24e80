package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/rostrumhq/rostrum/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Rostrum Seeding Tool
====================

A concurrent tool for seeding and smoke-testing a running rostrum service:
it creates an event, registers a roster and a judging panel, floods the
scores endpoint, then fetches and verifies the computed ranking.

Usage:
  go run cmd/seed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -event string
        Event ID to create and seed (default: generated)
  -participants int
        Number of participants to register (default 500)
  -judges int
        Number of judges to register (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -method string
        Ranking method to verify with: "spearman" or "general" (default: server default)
  -output string
        Output file for generated submissions (default: seed_submissions_TIMESTAMP.json)
  -log string
        Log file for seeding output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed/main.go

  # Seed a large event with a bigger panel
  go run cmd/seed/main.go -participants 5000 -judges 25 -workers 16

  # Verify the general method against a remote service
  go run cmd/seed/main.go -url http://rostrum:9080 -method general
`)
}
