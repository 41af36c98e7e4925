package repository

import (
	"context"
	"sync"

	allocation "github.com/okian/skillnav/internal/domain/allocation"
	model "github.com/okian/skillnav/internal/domain/model"
	"github.com/okian/skillnav/pkg/metrics"
)

// InMemoryRegistry implements Registry behind a single lock.
//
// One coarse lock covers the email index and every batch so the
// duplicate check, capacity check and append happen together.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	capacity int
	byEmail  map[string]*model.Candidate
	batches  map[model.Batch][]string // emails in enrollment order
}

// NewInMemoryRegistry constructs an empty registry.
func NewInMemoryRegistry(opts ...Option) *InMemoryRegistry {
	r := &InMemoryRegistry{
		capacity: DefaultCapacity,
		byEmail:  make(map[string]*model.Candidate),
		batches:  make(map[model.Batch][]string, len(model.Batches())),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, b := range model.Batches() {
		r.batches[b] = nil
		metrics.UpdateBatchSize(b.String(), 0)
	}
	return r
}

// Capacity implements Registry.Capacity.
func (r *InMemoryRegistry) Capacity() int { return r.capacity }

// Enroll implements Registry.Enroll.
func (r *InMemoryRegistry) Enroll(ctx context.Context, c model.Candidate, batch model.Batch) (model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return model.Candidate{}, err
	}
	if !batch.Valid() {
		metrics.RecordAllocation(batch.String(), "unknown_batch")
		return model.Candidate{}, ErrUnknownBatch
	}

	key := model.NormalizeEmail(c.Email)
	stored := c.Clone()
	stored.Email = key
	b := batch
	stored.BatchName = &b

	r.mu.Lock()
	if _, ok := r.byEmail[key]; ok {
		r.mu.Unlock()
		metrics.RecordAllocation(batch.String(), "duplicate")
		return model.Candidate{}, ErrDuplicateCandidate
	}
	members := r.batches[batch]
	if len(members) >= r.capacity {
		r.mu.Unlock()
		metrics.RecordAllocation(batch.String(), "batch_full")
		return model.Candidate{}, allocation.Full(batch)
	}
	r.batches[batch] = append(members, key)
	r.byEmail[key] = &stored
	size, total := len(r.batches[batch]), len(r.byEmail)
	out := stored.Clone()
	r.mu.Unlock()

	// Update metrics outside lock
	metrics.RecordAllocation(batch.String(), "allocated")
	metrics.UpdateBatchSize(batch.String(), size)
	metrics.UpdateTotalCandidates(total)
	return out, nil
}

// Update implements Registry.Update.
func (r *InMemoryRegistry) Update(ctx context.Context, email string, fn func(*model.Candidate) error) (model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return model.Candidate{}, err
	}
	key := model.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byEmail[key]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	// Work on a copy so a failing fn cannot leave partial changes.
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return model.Candidate{}, err
	}
	// Identity and batch are fixed after enrollment.
	next.Email = cur.Email
	next.BatchName = cur.BatchName
	*cur = next
	return cur.Clone(), nil
}

// Get implements Registry.Get.
func (r *InMemoryRegistry) Get(ctx context.Context, email string) (model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return model.Candidate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byEmail[model.NormalizeEmail(email)]
	if !ok {
		return model.Candidate{}, ErrNotFound
	}
	return c.Clone(), nil
}

// Batches implements Registry.Batches. Every known batch is present, empty
// ones with a non-nil slice.
func (r *InMemoryRegistry) Batches(_ context.Context) map[model.Batch][]model.Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[model.Batch][]model.Candidate, len(r.batches))
	for b, emails := range r.batches {
		list := make([]model.Candidate, 0, len(emails))
		for _, e := range emails {
			list = append(list, r.byEmail[e].Clone())
		}
		out[b] = list
	}
	return out
}

// Size implements Registry.Size.
func (r *InMemoryRegistry) Size(_ context.Context, batch model.Batch) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches[batch])
}

// Count implements Registry.Count.
func (r *InMemoryRegistry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
