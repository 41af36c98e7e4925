// Package loadtest drives concurrent registrations against a running
// candidates service and verifies the allocation invariants afterwards.
package loadtest

import "time"

// Config holds configuration for the load test
type Config struct {
	BaseURL    string        // Base URL of the candidates service
	Candidates int           // Number of candidates to register
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every rejection
}

// Submission is one generated registration.
type Submission struct {
	Name           string
	Email          string
	Certifications []string
}

// Outcome classifies a registration response.
type Outcome string

// Registration outcomes.
const (
	OutcomeAllocated Outcome = "allocated"
	OutcomeBatchFull Outcome = "batch_full"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeFailed    Outcome = "failed"
)

// Result is the response to one Submission.
type Result struct {
	Email   string
	Outcome Outcome
	Batch   string
	Status  int
	Message string
}

// Listed is the part of a listed candidate the verifier reads.
type Listed struct {
	Email     string  `json:"email"`
	BatchName *string `json:"batch_name"`
}

// Stats holds test statistics
type Stats struct {
	Generated   int
	Submitted   int
	Allocated   int
	BatchFull   int
	NoMatch     int
	Failed      int
	Listed      int
	Capacity    int
	BatchCounts map[string]int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
