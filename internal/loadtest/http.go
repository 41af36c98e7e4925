package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillnav/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// getJSON performs a GET request and decodes the JSON body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// submit registers one candidate and classifies the response.
func (c *HTTPClient) submit(ctx context.Context, s Submission) Result {
	form := url.Values{
		"name":           {s.Name},
		"email":          {s.Email},
		"degree":         {"B.Tech"},
		"specialization": {"Computer Science"},
		"phone_number":   {"9000000000"},
		"certifications": {strings.Join(s.Certifications, ",")},
	}
	res := Result{Email: s.Email, Outcome: OutcomeFailed}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit_candidate_info", strings.NewReader(form.Encode()))
	if err != nil {
		res.Message = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		res.Message = err.Error()
		return res
	}
	defer func() { _ = resp.Body.Close() }()
	res.Status = resp.StatusCode

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Batch   string `json:"batch"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		res.Message = "decode: " + err.Error()
		return res
	}
	res.Message = body.Message

	switch {
	case resp.StatusCode == http.StatusOK:
		res.Outcome = OutcomeAllocated
		res.Batch = body.Batch
	case body.Code == string(OutcomeBatchFull):
		res.Outcome = OutcomeBatchFull
	case body.Code == string(OutcomeNoMatch):
		res.Outcome = OutcomeNoMatch
	}
	return res
}

// submitAll registers submissions concurrently using a worker pool.
func submitAll(ctx context.Context, config *Config, client *HTTPClient, subs []Submission, stats *Stats) []Result {
	logger.Get().Info(ctx, "submitting candidates", logger.Int("candidates", len(subs)), logger.Int("workers", config.Workers))

	results := make([]Result, len(subs))
	var submitted int64

	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = client.submit(ctx, subs[idx])
				atomic.AddInt64(&submitted, 1)
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range subs {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	for _, r := range results {
		if r.Email == "" {
			continue
		}
		switch r.Outcome {
		case OutcomeAllocated:
			stats.Allocated++
		case OutcomeBatchFull:
			stats.BatchFull++
		case OutcomeNoMatch:
			stats.NoMatch++
		default:
			stats.Failed++
			if config.Verbose {
				logger.Get().Warn(ctx, "registration failed",
					logger.String("email", r.Email),
					logger.Int("status", r.Status),
					logger.String("message", r.Message))
			}
		}
	}

	logger.Get().Info(ctx, "candidate submission completed",
		logger.Int("allocated", stats.Allocated),
		logger.Int("batchFull", stats.BatchFull),
		logger.Int("noMatch", stats.NoMatch),
		logger.Int("failed", stats.Failed))
	return results
}
