// Package repository holds the candidate registry and its errors.
package repository

import (
	"context"

	model "github.com/okian/skillnav/internal/domain/model"
)

// DefaultCapacity is the seat limit of a batch.
const DefaultCapacity = 30

// Registry provides read/write access to enrolled candidates. Every method
// returns copies; callers never share state with the registry.
type Registry interface {
	// Enroll appends c to batch after checking email uniqueness and capacity
	// as one step. It returns ErrDuplicateCandidate or an *allocation.Error
	// wrapping ErrBatchFull.
	Enroll(ctx context.Context, c model.Candidate, batch model.Batch) (model.Candidate, error)

	// Update applies fn to the stored candidate. An error from fn, or
	// ErrNotFound, leaves the candidate untouched.
	Update(ctx context.Context, email string, fn func(*model.Candidate) error) (model.Candidate, error)

	// Get returns the candidate registered under email.
	Get(ctx context.Context, email string) (model.Candidate, error)

	// Batches returns every batch with its candidates in enrollment order.
	Batches(ctx context.Context) map[model.Batch][]model.Candidate

	// Size returns the number of candidates in batch.
	Size(ctx context.Context, batch model.Batch) int

	// Count returns the number of enrolled candidates.
	Count(ctx context.Context) int

	// Capacity returns the per-batch seat limit.
	Capacity() int
}
