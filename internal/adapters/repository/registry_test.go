package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	allocation "github.com/okian/skillnav/internal/domain/allocation"
	model "github.com/okian/skillnav/internal/domain/model"
)

func candidate(email string) model.Candidate {
	return model.Candidate{
		Name:           "Candidate " + email,
		Email:          email,
		Certifications: []string{"AWS"},
	}
}

func TestInMemoryRegistry_EnrollAndGet(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry()

	if got := reg.Capacity(); got != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, got)
	}

	stored, err := reg.Enroll(ctx, candidate(" Asha@Example.com "), model.BatchJava)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.BatchName == nil || *stored.BatchName != model.BatchJava {
		t.Fatalf("expected batch Java, got %v", stored.BatchName)
	}
	if stored.Email != "asha@example.com" {
		t.Errorf("expected normalized email, got %q", stored.Email)
	}

	got, err := reg.Get(ctx, "ASHA@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != stored.Name {
		t.Errorf("expected %q, got %q", stored.Name, got.Name)
	}

	if _, err := reg.Get(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if n := reg.Count(ctx); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
	if n := reg.Size(ctx, model.BatchJava); n != 1 {
		t.Errorf("expected Java size 1, got %d", n)
	}
}

func TestInMemoryRegistry_RejectsDuplicateAndUnknown(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry()

	if _, err := reg.Enroll(ctx, candidate("a@example.com"), model.BatchJava); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A duplicate is rejected even when aimed at another batch.
	if _, err := reg.Enroll(ctx, candidate("A@example.com"), model.BatchDotNet); !errors.Is(err, ErrDuplicateCandidate) {
		t.Errorf("expected ErrDuplicateCandidate, got %v", err)
	}
	if _, err := reg.Enroll(ctx, candidate("b@example.com"), model.Batch("Go")); !errors.Is(err, ErrUnknownBatch) {
		t.Errorf("expected ErrUnknownBatch, got %v", err)
	}
	if n := reg.Size(ctx, model.BatchDotNet); n != 0 {
		t.Errorf("expected .NET untouched, got size %d", n)
	}
}

func TestInMemoryRegistry_BatchFull(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry(WithCapacity(2))

	for i := 0; i < 2; i++ {
		if _, err := reg.Enroll(ctx, candidate(fmt.Sprintf("c%d@example.com", i)), model.BatchJava); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, err := reg.Enroll(ctx, candidate("late@example.com"), model.BatchJava)
	if !errors.Is(err, ErrBatchFull) {
		t.Fatalf("expected ErrBatchFull, got %v", err)
	}
	var aerr *allocation.Error
	if !errors.As(err, &aerr) || aerr.Batch != model.BatchJava {
		t.Errorf("expected allocation error for Java, got %v", err)
	}
	if err.Error() != "Java batch is full. Cannot allocate at this time" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if n := reg.Size(ctx, model.BatchJava); n != 2 {
		t.Errorf("expected Java size to stay 2, got %d", n)
	}
	if _, err := reg.Get(ctx, "late@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected candidate must not be stored, got %v", err)
	}
	// Other batches keep their own seats.
	if _, err := reg.Enroll(ctx, candidate("py@example.com"), model.BatchDataEngineering); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInMemoryRegistry_Update(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry()
	if _, err := reg.Enroll(ctx, candidate("a@example.com"), model.BatchJava); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := reg.Update(ctx, "a@example.com", func(c *model.Candidate) error {
		c.TrainingProgress.CourseCompletion = 55
		c.TrainingProgress.McqScores = append(c.TrainingProgress.McqScores, model.McqScore{Score: 7, Total: 10})
		other := model.BatchDotNet
		c.BatchName = &other // ignored
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.TrainingProgress.CourseCompletion != 55 || len(updated.TrainingProgress.McqScores) != 1 {
		t.Errorf("update not applied: %+v", updated.TrainingProgress)
	}
	if *updated.BatchName != model.BatchJava {
		t.Errorf("batch must not change, got %v", *updated.BatchName)
	}

	boom := errors.New("boom")
	_, err = reg.Update(ctx, "a@example.com", func(c *model.Candidate) error {
		c.TrainingProgress.CourseCompletion = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := reg.Get(ctx, "a@example.com")
	if got.TrainingProgress.CourseCompletion != 55 {
		t.Errorf("failed update leaked, completion=%v", got.TrainingProgress.CourseCompletion)
	}

	called := false
	_, err = reg.Update(ctx, "ghost@example.com", func(*model.Candidate) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrNotFound) || called {
		t.Errorf("expected ErrNotFound without calling fn, got %v (called=%v)", err, called)
	}
}

func TestInMemoryRegistry_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry()
	if _, err := reg.Enroll(ctx, candidate("a@example.com"), model.BatchJava); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := reg.Get(ctx, "a@example.com")
	got.Certifications[0] = "tampered"
	listed := reg.Batches(ctx)
	listed[model.BatchJava][0].Name = "tampered"

	again, _ := reg.Get(ctx, "a@example.com")
	if again.Certifications[0] != "AWS" || again.Name == "tampered" {
		t.Errorf("registry state was mutated through a returned value: %+v", again)
	}
}

func TestInMemoryRegistry_BatchesOrder(t *testing.T) {
	ctx := context.Background()
	reg := NewInMemoryRegistry()
	emails := []string{"x@example.com", "y@example.com", "z@example.com"}
	for _, e := range emails {
		if _, err := reg.Enroll(ctx, candidate(e), model.BatchDotNet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	batches := reg.Batches(ctx)
	if len(batches) != len(model.Batches()) {
		t.Fatalf("expected every batch listed, got %d", len(batches))
	}
	if batches[model.BatchJava] == nil || len(batches[model.BatchJava]) != 0 {
		t.Errorf("expected empty non-nil Java batch, got %v", batches[model.BatchJava])
	}
	for i, c := range batches[model.BatchDotNet] {
		if c.Email != emails[i] {
			t.Errorf("position %d: expected %s, got %s", i, emails[i], c.Email)
		}
	}
}

func TestInMemoryRegistry_ConcurrentEnroll(t *testing.T) {
	ctx := context.Background()
	const (
		seats      = 7
		goroutines = 64
	)
	reg := NewInMemoryRegistry(WithCapacity(seats))

	var (
		wg        sync.WaitGroup
		successes atomic.Int64
		full      atomic.Int64
	)
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := reg.Enroll(ctx, candidate(fmt.Sprintf("c%d@example.com", i)), model.BatchJava)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrBatchFull):
				full.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes.Load() != seats {
		t.Errorf("expected exactly %d successes, got %d", seats, successes.Load())
	}
	if full.Load() != goroutines-seats {
		t.Errorf("expected %d BatchFull rejections, got %d", goroutines-seats, full.Load())
	}
	if n := reg.Size(ctx, model.BatchJava); n != seats {
		t.Errorf("expected batch size %d, got %d", seats, n)
	}
}

func TestInMemoryRegistry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reg := NewInMemoryRegistry()
	if _, err := reg.Enroll(ctx, candidate("a@example.com"), model.BatchJava); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
