package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	workerpool "github.com/okian/skillnav/internal/adapters/mq/worker"
	repository "github.com/okian/skillnav/internal/adapters/repository"
	"github.com/okian/skillnav/internal/app/reporting"
	allocation "github.com/okian/skillnav/internal/domain/allocation"
	model "github.com/okian/skillnav/internal/domain/model"
	"github.com/okian/skillnav/internal/domain/sentiment"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrNoMatch         = errors.New("no match")
	ErrBatchFull       = errors.New("batch full")
	ErrDuplicate       = errors.New("duplicate")
	ErrNotFound        = errors.New("not found")
	ErrBackpressure    = errors.New("backpressure")
	ErrTimeout         = errors.New("timeout")
	ErrExternalService = errors.New("external service failure")
	ErrInternal        = errors.New("internal error")
)

const notFoundMessage = "Candidate Not Found"

// Error is an API failure: the operation, its kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap classifies err and tags it with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

// WrapKind tags err with op and an explicit kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind returns an error carrying only a kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// kindOf maps domain and adapter errors to API kinds. Order matters: a
// timed out generation also wraps the external service error.
func kindOf(err error) error {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind != nil {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return ErrBadRequest
	case errors.Is(err, allocation.ErrNoMatch):
		return ErrNoMatch
	case errors.Is(err, allocation.ErrBatchFull):
		return ErrBatchFull
	case errors.Is(err, repository.ErrDuplicateCandidate):
		return ErrDuplicate
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, workerpool.ErrBackpressure):
		return ErrBackpressure
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, reporting.ErrExternalService),
		errors.Is(err, sentiment.ErrModelNotLoaded),
		errors.Is(err, workerpool.ErrStopped),
		errors.Is(err, reporting.ErrNotStarted):
		return ErrExternalService
	}
	return ErrInternal
}

type errorStatus struct {
	kind   error
	status int
	code   string
}

var errorStatuses = []errorStatus{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrNoMatch, http.StatusBadRequest, "no_match"},
	{ErrBatchFull, http.StatusBadRequest, "batch_full"},
	{ErrDuplicate, http.StatusConflict, "duplicate"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
	{ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{ErrExternalService, http.StatusInternalServerError, "external_service_failure"},
}

// statusOf returns the HTTP status and error code for err.
func statusOf(err error) (int, string) {
	kind := kindOf(err)
	for _, s := range errorStatuses {
		if errors.Is(kind, s.kind) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// messageOf returns the client-visible text for err.
func messageOf(err error) string {
	var allocErr *allocation.Error
	if errors.As(err, &allocErr) {
		return allocErr.Error()
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrNotFound) {
		return notFoundMessage
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Err != nil {
			return apiErr.Err.Error()
		}
		if apiErr.Kind != nil {
			return apiErr.Kind.Error()
		}
	}
	return err.Error()
}
