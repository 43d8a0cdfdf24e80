package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
)

// createEvent registers the event the run seeds into.
func createEvent(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	payload := map[string]string{
		"event_id": config.EventID,
		"name":     "Seeded event " + config.EventID,
	}
	resp, err := client.Post(ctx, config.BaseURL+"/events", payload)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != statusCreated {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("🎪 Created event %s", config.EventID)
	return nil
}

// registerMembers registers roster or panel members concurrently. path is
// the subresource under the event ("participants" or "judges").
func registerMembers(ctx context.Context, config *Config, path string, members []memberPayload) error {
	log.Printf("📝 Registering %d %s with %d workers...", len(members), path, config.Workers)

	client := newHTTPClient(config.Timeout)
	target := config.BaseURL + "/events/" + url.PathEscape(config.EventID) + "/" + path

	var failed int64
	memberChan := make(chan memberPayload, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range memberChan {
				select {
				case <-ctx.Done():
					return
				default:
					resp, err := client.Post(ctx, target, m)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						continue
					}
					body, err := readResponseBody(resp)
					if err != nil || resp.StatusCode != statusCreated {
						atomic.AddInt64(&failed, 1)
						if config.Verbose && err == nil {
							log.Printf("⚠️  Failed to register %s: HTTP %d: %s", m.ID, resp.StatusCode, string(body))
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(memberChan)
		for _, m := range members {
			select {
			case <-ctx.Done():
				return
			case memberChan <- m:
			}
		}
	}()

	wg.Wait()

	if n := atomic.LoadInt64(&failed); n > 0 {
		return fmt.Errorf("failed to register %d of %d %s", n, len(members), path)
	}
	log.Printf("✅ Registered %d %s", len(members), path)
	return nil
}

// fetchRanking retrieves the computed ranking table for the seeded event.
func fetchRanking(ctx context.Context, config *Config, stats *Stats) ([]rankingRow, error) {
	log.Printf("🏆 Fetching ranking for event %s...", config.EventID)

	client := newHTTPClient(config.Timeout)
	target := config.BaseURL + "/events/" + url.PathEscape(config.EventID) + "/ranking"
	if config.Method != "" {
		target += "?method=" + url.QueryEscape(config.Method)
	}

	resp, err := client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rows []rankingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.RankingRows = len(rows)
	log.Printf("✅ Retrieved %d ranking rows", len(rows))
	return rows, nil
}
