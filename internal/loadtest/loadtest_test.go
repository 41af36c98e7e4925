package loadtest

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillnav/internal/adapters/http/api"
	repository "github.com/okian/skillnav/internal/adapters/repository"
	"github.com/okian/skillnav/internal/app/enrollment"
	"github.com/okian/skillnav/pkg/logger"
)

func strPtr(s string) *string { return &s }

func TestRun(t *testing.T) {
	Convey("Given a running candidates service with small batches", t, func() {
		_ = logger.Init()
		registry := repository.NewInMemoryRegistry(repository.WithCapacity(5))
		svc := enrollment.New(registry, enrollment.WithLogger(logger.Nop()))
		srv := httptest.NewServer(api.NewCandidatesRouter(svc, svc, api.WithLogger(logger.Nop())))
		defer srv.Close()

		Convey("When many candidates register concurrently", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:    srv.URL,
				Candidates: 60,
				Workers:    8,
				Timeout:    5 * time.Second,
			})

			Convey("Then every invariant holds", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 60)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Capacity, ShouldEqual, 5)
				So(stats.Allocated, ShouldBeLessThanOrEqualTo, 15)
				So(stats.Listed, ShouldEqual, stats.Allocated)
				So(stats.Allocated+stats.BatchFull+stats.NoMatch, ShouldEqual, 60)
				for _, n := range stats.BatchCounts {
					So(n, ShouldBeLessThanOrEqualTo, 5)
				}
			})
		})
	})

	Convey("Given an unreachable service", t, func() {
		_ = logger.Init()

		Convey("Then Run fails the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: "http://127.0.0.1:1", Candidates: 1, Workers: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifyResults(t *testing.T) {
	Convey("Given results and a listing", t, func() {
		results := []Result{
			{Email: "a@x", Outcome: OutcomeAllocated, Batch: "Java"},
			{Email: "b@x", Outcome: OutcomeAllocated, Batch: "Java"},
			{Email: "c@x", Outcome: OutcomeNoMatch},
		}
		batches := map[string][]Listed{
			"Java":             {{Email: "a@x", BatchName: strPtr("Java")}, {Email: "b@x", BatchName: strPtr("Java")}, {Email: "old@x", BatchName: strPtr("Java")}},
			".NET":             {},
			"Data Engineering": {},
		}

		Convey("When the listing is consistent", func() {
			stats := &Stats{Capacity: 3}
			err := verifyResults(results, batches, stats)

			Convey("Then verification passes and foreign candidates only count", func() {
				So(err, ShouldBeNil)
				So(stats.Listed, ShouldEqual, 3)
				So(stats.BatchCounts["Java"], ShouldEqual, 3)
			})
		})

		Convey("When a batch is over capacity", func() {
			err := verifyResults(results, batches, &Stats{Capacity: 2})

			Convey("Then verification fails", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "capacity 2")
			})
		})

		Convey("When an allocated candidate is missing or misplaced", func() {
			moved := map[string][]Listed{
				"Java": {{Email: "a@x", BatchName: strPtr("Java")}},
				".NET": {{Email: "b@x", BatchName: strPtr(".NET")}},
			}
			err := verifyResults(results, moved, &Stats{Capacity: 3})

			Convey("Then verification names it", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "b@x allocated to Java but listed in .NET")
			})
		})

		Convey("When a rejection was unexpected", func() {
			failed := append([]Result{{Email: "d@x", Outcome: OutcomeFailed, Status: 500, Message: "boom"}}, results...)
			err := verifyResults(failed, batches, &Stats{Capacity: 3})

			Convey("Then verification fails", func() {
				So(err.Error(), ShouldContainSubstring, "unexpected rejection 500")
			})
		})
	})

	Convey("Given generated submissions", t, func() {
		_ = logger.Init()
		stats := &Stats{}
		subs := generateSubmissions(context.Background(), 20, stats)

		Convey("Then emails are unique and certifications non-empty", func() {
			So(stats.Generated, ShouldEqual, 20)
			seen := map[string]bool{}
			for _, s := range subs {
				So(seen[s.Email], ShouldBeFalse)
				seen[s.Email] = true
				So(len(s.Certifications), ShouldBeBetweenOrEqual, 1, maxCertifications)
			}
		})
	})
}
