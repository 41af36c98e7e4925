package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/skillnav/internal/adapters/mq/queue"
	worker "github.com/okian/skillnav/internal/adapters/mq/worker"
	logging "github.com/okian/skillnav/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	convey.Convey("Given a started worker pool", t, func() {
		_ = logging.Init()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		pool := worker.NewPool(2, q, worker.WithJobTimeout(50*time.Millisecond))
		pool.Start(ctx)
		defer func() { _ = pool.Shutdown(context.Background()) }()

		convey.Convey("When a job succeeds", func() {
			ran := false
			err := pool.Submit(ctx, "ok", func(context.Context) error {
				ran = true
				return nil
			})

			convey.Convey("Then Submit returns nil after it ran", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ran, convey.ShouldBeTrue)
				convey.So(pool.Size(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a job fails", func() {
			boom := errors.New("boom")
			err := pool.Submit(ctx, "fail", func(context.Context) error { return boom })

			convey.Convey("Then the error reaches the submitter", func() {
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a job outlives the timeout", func() {
			err := pool.Submit(ctx, "slow", func(jobCtx context.Context) error {
				<-jobCtx.Done()
				return jobCtx.Err()
			})

			convey.Convey("Then it is cancelled with a deadline error", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a job panics", func() {
			err := pool.Submit(ctx, "panic", func(context.Context) error { panic("bad") })

			convey.Convey("Then the worker survives and reports an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(pool.Submit(ctx, "after", func(context.Context) error { return nil }), convey.ShouldBeNil)
			})
		})

		convey.Convey("When many jobs run concurrently", func() {
			var count atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					for {
						err := pool.Submit(ctx, fmt.Sprintf("job-%d", i), func(context.Context) error {
							count.Add(1)
							return nil
						})
						if !errors.Is(err, worker.ErrBackpressure) {
							return
						}
						time.Sleep(time.Millisecond)
					}
				}(i)
			}
			wg.Wait()

			convey.Convey("Then every job runs exactly once", func() {
				convey.So(count.Load(), convey.ShouldEqual, 20)
			})
		})
	})
}

func TestPoolBackpressure(t *testing.T) {
	convey.Convey("Given a pool whose queue is full", t, func() {
		_ = logging.Init()
		ctx := context.Background()

		// Workers are not started so the queued job stays put.
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		pool := worker.NewPool(1, q)
		convey.So(q.Enqueue(ctx, queue.NewJob(ctx, "waiting", func(context.Context) error { return nil })), convey.ShouldBeNil)

		convey.Convey("When another job is submitted", func() {
			err := pool.Submit(ctx, "rejected", func(context.Context) error { return nil })

			convey.Convey("Then it is rejected with backpressure", func() {
				convey.So(errors.Is(err, worker.ErrBackpressure), convey.ShouldBeTrue)
				convey.So(errors.Is(err, queue.ErrFull), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the pool is shut down", func() {
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
			err := pool.Submit(ctx, "late", func(context.Context) error { return nil })

			convey.Convey("Then submissions are refused", func() {
				convey.So(errors.Is(err, worker.ErrStopped), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPoolCanceledSubmitter(t *testing.T) {
	convey.Convey("A job whose submitter already gave up is not run", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		ran := false
		job := queue.NewJob(ctx, "stale", func(context.Context) error {
			ran = true
			return nil
		})
		convey.So(q.Enqueue(context.Background(), job), convey.ShouldBeNil)
		cancel()

		runCtx, stop := context.WithCancel(context.Background())
		go w.Run(runCtx)

		err := <-job.Done()
		convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		convey.So(ran, convey.ShouldBeFalse)

		stop()
		convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}
