package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTP status code constants.
const (
	statusOK       = 200
	statusAccepted = 202
	statusCreated  = 201
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitScores submits score payloads concurrently using a worker pool.
func submitScores(ctx context.Context, config *Config, submissions []scorePayload, stats *Stats) error {
	log.Printf("📤 Submitting %d scores with %d workers...", len(submissions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/scores"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	scoreChan := make(chan scorePayload, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for sub := range scoreChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleScore(ctx, client, url, sub)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("📊 Progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(submissions), succ, dup, fail)
						} else {
							fmt.Printf("\r📤 Submitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(submissions), succ, dup, fail)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(scoreChan)
		for _, sub := range submissions {
			select {
			case <-ctx.Done():
				return
			case scoreChan <- sub:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println() // New line after progress indicator
	}

	stats.ScoresSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ScoresSuccessful = int(atomic.LoadInt64(&successful))
	stats.ScoresDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ScoresFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Score submission completed:
   Successful: %d
   Duplicate: %d
   Failed: %d
`, stats.ScoresSuccessful, stats.ScoresDuplicate, stats.ScoresFailed)

	return nil
}

// submitSingleScore submits a single score; backpressure responses are
// retried with a short backoff before giving up.
func submitSingleScore(ctx context.Context, client *HTTPClient, url string, sub scorePayload) string {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := client.Post(ctx, url, sub)
		if err != nil {
			return "failed"
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return "failed"
		}

		switch resp.StatusCode {
		case statusAccepted:
			return "success"
		case statusOK:
			var ack ackPayload
			if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
				return "duplicate"
			}
			return "duplicate"
		case http.StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return "failed"
			case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
			}
		default:
			return "failed"
		}
	}
	return "failed"
}
