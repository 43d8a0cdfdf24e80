package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/rostrumhq/rostrum/internal/seed"
)

// Default configuration constants.
const (
	defaultParticipants = 500
	defaultJudges       = 10
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		eventID      = flag.String("event", "", "Event ID to create and seed (default: generated)")
		participants = flag.Int("participants", defaultParticipants, "Number of participants to register")
		judges       = flag.Int("judges", defaultJudges, "Number of judges to register")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		method       = flag.String("method", "", "Ranking method to verify with (default: server default)")
		outputFile   = flag.String("output", "", "Output file for generated submissions (default: seed_submissions_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for seeding output (default: seed_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := seed.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seed.Config{
		BaseURL:      *baseURL,
		EventID:      *eventID,
		Participants: *participants,
		Judges:       *judges,
		Workers:      *workers,
		Timeout:      *timeout,
		Method:       *method,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	if err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
