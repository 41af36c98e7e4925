package loadtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/skillnav/pkg/logger"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// ErrVerification is returned when the service broke an allocation invariant.
var ErrVerification = errors.New("verification failed")

// Run executes the complete load test and returns the collected statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Candidates <= 0 {
		return nil, errors.New("candidates must be positive")
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting candidate load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("candidates", config.Candidates),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Read the configured capacity
	var serviceStats struct {
		BatchCapacity int `json:"batch_capacity"`
	}
	if err := client.getJSON(ctx, "/stats", &serviceStats); err != nil {
		return nil, fmt.Errorf("stats retrieval failed: %w", err)
	}
	stats.Capacity = serviceStats.BatchCapacity

	// Step 3: Generate and submit candidates concurrently
	subs := generateSubmissions(ctx, config.Candidates, stats)
	results := submitAll(ctx, config, client, subs, stats)

	// Step 4: List batches
	var batches map[string][]Listed
	if err := client.getJSON(ctx, "/batches", &batches); err != nil {
		return nil, fmt.Errorf("batch listing failed: %w", err)
	}

	// Step 5: Verify results
	verifyErr := verifyResults(results, batches, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	logger.Get().Info(ctx, "test completed successfully")
	return stats, nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var allocationRate, perSecond float64
	if stats.Submitted > 0 {
		allocationRate = float64(stats.Allocated) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("allocated", stats.Allocated),
		logger.Int("batchFull", stats.BatchFull),
		logger.Int("noMatch", stats.NoMatch),
		logger.Int("failed", stats.Failed),
		logger.Int("listed", stats.Listed),
		logger.Int("capacity", stats.Capacity),
		logger.Any("batches", stats.BatchCounts),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("allocationRate", allocationRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
