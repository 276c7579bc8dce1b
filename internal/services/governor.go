package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"talenthub/match-engine/internal/models"
)

// pairKey identifies the unit of caching and mutual exclusion.
type pairKey struct {
	candidateID uuid.UUID
	jobID       uuid.UUID
}

type flightResult struct {
	match *models.JobMatch
	err   error
}

// flight is one in-flight computation for a pair. Every caller admitted while
// it runs shares its result.
type flight struct {
	done   chan struct{}
	result flightResult
}

// flightGroup collapses concurrent admitted computations so at most one runs
// per pair. A finished flight — success, failure or panic — always removes
// itself from the group; a pair can never stay stuck in COMPUTING.
type flightGroup struct {
	mu       sync.Mutex
	inflight map[pairKey]*flight
}

func newFlightGroup() *flightGroup {
	return &flightGroup{inflight: make(map[pairKey]*flight)}
}

// Do returns the pair's in-flight computation, starting fn in a new goroutine
// when none exists. fn runs at most once per flight, detached from any single
// caller's lifetime.
func (g *flightGroup) Do(key pairKey, fn func() (*models.JobMatch, error)) *flight {
	g.mu.Lock()
	if f, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		return f
	}

	f := &flight{done: make(chan struct{})}
	g.inflight[key] = f
	g.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				f.result = flightResult{err: &ComputationError{Err: fmt.Errorf("panic during computation: %v", r)}}
			}
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
			close(f.done)
		}()

		match, err := fn()
		f.result = flightResult{match: match, err: err}
	}()

	return f
}

// wait blocks until the flight completes or the caller's context expires.
// completed=false means the caller gave up; the computation keeps running and
// will update the cache for subsequent readers.
func (f *flight) wait(ctx context.Context) (match *models.JobMatch, err error, completed bool) {
	select {
	case <-f.done:
		return f.result.match, f.result.err, true
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}
