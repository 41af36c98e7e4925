package queue

import (
	"context"
	"time"
)

// Job is a unit of work submitted on behalf of one request.
type Job struct {
	ID       string
	Enqueued time.Time

	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// NewJob wraps run. ctx is the submitter's context; cancelling it cancels
// the job whether it is waiting or running.
func NewJob(ctx context.Context, id string, run func(ctx context.Context) error) *Job {
	return &Job{
		ID:   id,
		ctx:  ctx,
		run:  run,
		done: make(chan error, 1),
	}
}

// Context returns the submitter's context.
func (j *Job) Context() context.Context { return j.ctx }

// Run executes the job function.
func (j *Job) Run(ctx context.Context) error { return j.run(ctx) }

// Complete publishes the outcome. Only the first call counts.
func (j *Job) Complete(err error) {
	select {
	case j.done <- err:
	default:
	}
}

// Done yields the outcome once the job finished.
func (j *Job) Done() <-chan error { return j.done }
