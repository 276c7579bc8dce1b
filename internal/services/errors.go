package services

import (
	"errors"
	"fmt"
	"time"

	"talenthub/match-engine/internal/models"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrJobNotFound       = errors.New("job posting not found")
	ErrMatchNotFound     = errors.New("match not found")

	// ErrRefreshInProgress means the caller's deadline expired while a
	// computation was in flight and no prior result exists to fall back on.
	// The computation keeps running in the background.
	ErrRefreshInProgress = errors.New("match refresh in progress")
)

// ValidationError covers malformed or missing identifiers. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ThrottledError is not a failure: the cooldown is active, the cached match is
// attached, and NextRefreshAt tells the caller when a refresh will be admitted.
type ThrottledError struct {
	Match         *models.JobMatch
	NextRefreshAt time.Time
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("refresh throttled until %s", e.NextRefreshAt.Format(time.RFC3339))
}

// RefreshInProgressError carries the best available cached result (possibly
// nil) to a caller whose deadline expired mid-computation. Unwraps to
// ErrRefreshInProgress.
type RefreshInProgressError struct {
	Match *models.JobMatch
}

func (e *RefreshInProgressError) Error() string {
	return ErrRefreshInProgress.Error()
}

func (e *RefreshInProgressError) Unwrap() error {
	return ErrRefreshInProgress
}

// ComputationError wraps a calculator or persistence fault during an admitted
// computation. The pair stays in its last good cached state.
type ComputationError struct {
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("match computation failed: %v", e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
