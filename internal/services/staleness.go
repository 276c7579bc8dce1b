package services

import (
	"time"

	"talenthub/match-engine/internal/config"
	"talenthub/match-engine/internal/models"
)

// Freshness is the derived state of a persisted match at one read instant.
// Nothing here is stored: it is recomputed from timestamps on every read, so
// profile and posting edits never fan out writes to match rows.
type Freshness struct {
	IsStale       bool
	CanRefresh    bool
	NextRefreshAt time.Time
}

// EvaluateFreshness derives FRESH/STALE for a match. A match is stale when the
// candidate or job changed after the last computation, or when the result has
// outlived the validity window (scoring policy itself drifts over time).
// Staleness always overrides the cooldown.
func EvaluateFreshness(match *models.JobMatch, candidateUpdated, jobUpdated, now time.Time, cfg config.MatchingConfig) Freshness {
	stale := candidateUpdated.After(match.LastRefreshedAt) ||
		jobUpdated.After(match.LastRefreshedAt) ||
		now.Sub(match.LastRefreshedAt) > cfg.MaxValidityWindow

	next := match.LastRefreshedAt.Add(cfg.CooldownInterval)

	return Freshness{
		IsStale:       stale,
		CanRefresh:    stale || !now.Before(next),
		NextRefreshAt: next,
	}
}

// annotateMatch fills the derived, non-persisted fields on a match before it
// is handed to a caller.
func annotateMatch(match *models.JobMatch, candidateUpdated, jobUpdated, now time.Time, cfg config.MatchingConfig) {
	fresh := EvaluateFreshness(match, candidateUpdated, jobUpdated, now, cfg)
	match.IsStale = fresh.IsStale
	match.CanRefresh = fresh.CanRefresh
	next := fresh.NextRefreshAt
	match.NextRefreshAt = &next
}
