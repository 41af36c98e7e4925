package loadtest

import (
	"errors"
	"fmt"
)

// verifyResults checks the allocation invariants against the listing:
// no batch exceeds capacity, every allocated candidate is listed exactly
// once in the batch it was told, no rejected candidate is listed, and
// every rejection was BatchFull or NoMatch. Candidates registered outside
// this run only count towards capacity.
func verifyResults(results []Result, batches map[string][]Listed, stats *Stats) error {
	var problems []error

	allocated := make(map[string]string, len(results))
	ours := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Email != "" {
			ours[r.Email] = true
		}
		switch r.Outcome {
		case OutcomeAllocated:
			allocated[r.Email] = r.Batch
		case OutcomeFailed:
			if r.Email != "" {
				problems = append(problems, fmt.Errorf("%s: unexpected rejection %d %q", r.Email, r.Status, r.Message))
			}
		}
	}

	stats.BatchCounts = make(map[string]int, len(batches))
	seen := make(map[string]bool)
	for batch, list := range batches {
		stats.BatchCounts[batch] = len(list)
		stats.Listed += len(list)
		if stats.Capacity > 0 && len(list) > stats.Capacity {
			problems = append(problems, fmt.Errorf("batch %s holds %d candidates, capacity %d", batch, len(list), stats.Capacity))
		}
		for _, c := range list {
			if !ours[c.Email] {
				continue
			}
			if seen[c.Email] {
				problems = append(problems, fmt.Errorf("%s listed twice", c.Email))
			}
			seen[c.Email] = true

			want, ok := allocated[c.Email]
			switch {
			case !ok:
				problems = append(problems, fmt.Errorf("%s listed in %s but was rejected", c.Email, batch))
			case want != batch:
				problems = append(problems, fmt.Errorf("%s allocated to %s but listed in %s", c.Email, want, batch))
			case c.BatchName == nil || *c.BatchName != batch:
				problems = append(problems, fmt.Errorf("%s listed in %s with a different batch_name", c.Email, batch))
			}
		}
	}

	for email := range allocated {
		if !seen[email] {
			problems = append(problems, fmt.Errorf("%s allocated but not listed", email))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(problems...))
	}
	return nil
}
