package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub/match-engine/internal/config"
	"talenthub/match-engine/internal/models"
	"talenthub/match-engine/internal/repositories"
	"talenthub/match-engine/internal/scoring"
)

// MatcherService is the compatibility engine's public surface.
//
// A JobMatch is created lazily: on the first read of a pair or on an explicit
// refresh request, never pre-computed in bulk. Recomputation always updates the
// one row per pair in place.
type MatcherService interface {
	ListMatches(ctx context.Context, candidateID uuid.UUID) ([]models.JobMatch, error)
	GetMatch(ctx context.Context, candidateID, jobID uuid.UUID) (*models.JobMatch, error)
	RequestRefresh(ctx context.Context, candidateID, jobID uuid.UUID) (*models.JobMatch, error)
}

type matcherService struct {
	candidateRepo repositories.CandidateRepository
	jobRepo       repositories.JobRepository
	matchRepo     repositories.MatchRepository
	resolver      RelatedSkillResolver
	narrative     NarrativeService
	scoringCfg    scoring.Config
	matchingCfg   config.MatchingConfig
	flights       *flightGroup
	now           func() time.Time
}

func NewMatcherService(
	candidateRepo repositories.CandidateRepository,
	jobRepo repositories.JobRepository,
	matchRepo repositories.MatchRepository,
	resolver RelatedSkillResolver,
	narrative NarrativeService,
	scoringCfg scoring.Config,
	matchingCfg config.MatchingConfig,
) MatcherService {
	return &matcherService{
		candidateRepo: candidateRepo,
		jobRepo:       jobRepo,
		matchRepo:     matchRepo,
		resolver:      resolver,
		narrative:     narrative,
		scoringCfg:    scoringCfg,
		matchingCfg:   matchingCfg,
		flights:       newFlightGroup(),
		now:           time.Now,
	}
}

// ListMatches implements MatcherService. Every returned match carries the
// derived is_stale / can_refresh / next_refresh_at fields; no computation is
// triggered here.
func (m *matcherService) ListMatches(ctx context.Context, candidateID uuid.UUID) ([]models.JobMatch, error) {
	candidate, err := m.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, mapNotFound(err, ErrCandidateNotFound)
	}

	matches, err := m.matchRepo.FindByCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]uuid.UUID, 0, len(matches))
	for _, match := range matches {
		jobIDs = append(jobIDs, match.JobID)
	}
	jobs, err := m.jobRepo.FindByIDs(jobIDs)
	if err != nil {
		return nil, err
	}
	jobUpdated := make(map[uuid.UUID]time.Time, len(jobs))
	for _, job := range jobs {
		jobUpdated[job.ID] = job.UpdatedAt
	}

	now := m.now()
	for i := range matches {
		annotateMatch(&matches[i], candidate.UpdatedAt, jobUpdated[matches[i].JobID], now, m.matchingCfg)
	}

	return matches, nil
}

// GetMatch implements MatcherService. A read miss triggers the first
// computation for the pair — lazy creation, no bulk pre-computation.
func (m *matcherService) GetMatch(ctx context.Context, candidateID, jobID uuid.UUID) (*models.JobMatch, error) {
	candidate, err := m.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, mapNotFound(err, ErrCandidateNotFound)
	}
	job, err := m.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapNotFound(err, ErrJobNotFound)
	}

	match, err := m.matchRepo.FindByPair(candidateID, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m.admit(ctx, candidateID, jobID, nil)
		}
		return nil, err
	}

	annotateMatch(match, candidate.UpdatedAt, job.UpdatedAt, m.now(), m.matchingCfg)
	return match, nil
}

// RequestRefresh implements MatcherService. Admission rules, in order: a pair
// with no row is admitted unconditionally; a stale pair is admitted (staleness
// overrides cooldown); a fresh pair inside the cooldown is throttled with the
// cached result attached; otherwise admitted. A throttled or cache-hit request
// never mutates any persisted field.
func (m *matcherService) RequestRefresh(ctx context.Context, candidateID, jobID uuid.UUID) (*models.JobMatch, error) {
	candidate, err := m.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, mapNotFound(err, ErrCandidateNotFound)
	}
	job, err := m.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapNotFound(err, ErrJobNotFound)
	}

	existing, err := m.matchRepo.FindByPair(candidateID, jobID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		fresh := EvaluateFreshness(existing, candidate.UpdatedAt, job.UpdatedAt, m.now(), m.matchingCfg)
		if !fresh.IsStale && !fresh.CanRefresh {
			annotateMatch(existing, candidate.UpdatedAt, job.UpdatedAt, m.now(), m.matchingCfg)
			return nil, &ThrottledError{Match: existing, NextRefreshAt: fresh.NextRefreshAt}
		}
	}

	return m.admit(ctx, candidateID, jobID, existing)
}

// admit runs (or joins) the pair's single in-flight computation. When the
// caller's deadline expires first, the best available cached result is
// returned alongside ErrRefreshInProgress and the computation finishes in the
// background.
func (m *matcherService) admit(ctx context.Context, candidateID, jobID uuid.UUID, previous *models.JobMatch) (*models.JobMatch, error) {
	key := pairKey{candidateID: candidateID, jobID: jobID}

	f := m.flights.Do(key, func() (*models.JobMatch, error) {
		// Detached from the caller: a caller timeout must not cancel the
		// computation, only stop waiting for it.
		computeCtx, cancel := context.WithTimeout(context.Background(), m.matchingCfg.ComputeTimeout)
		defer cancel()
		return m.compute(computeCtx, candidateID, jobID)
	})

	match, err, completed := f.wait(ctx)
	if !completed {
		log.Printf("⏳ Caller gave up waiting for match %s/%s; computation continues\n", candidateID, jobID)
		if previous != nil {
			stale := *previous
			stale.IsStale = true
			return nil, &RefreshInProgressError{Match: &stale}
		}
		return nil, &RefreshInProgressError{}
	}
	return match, err
}

// compute is the admitted computation path: score, aggregate, narrate, persist.
// It re-reads the row inside the flight because a concurrent admitted
// computation may have completed between the caller's admission check and now.
func (m *matcherService) compute(ctx context.Context, candidateID, jobID uuid.UUID) (*models.JobMatch, error) {
	candidate, err := m.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, mapNotFound(err, ErrCandidateNotFound)
	}
	job, err := m.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapNotFound(err, ErrJobNotFound)
	}

	now := m.now()

	existing, err := m.matchRepo.FindByPair(candidateID, jobID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ComputationError{Err: err}
	}
	if existing != nil {
		fresh := EvaluateFreshness(existing, candidate.UpdatedAt, job.UpdatedAt, now, m.matchingCfg)
		if !fresh.IsStale && !fresh.CanRefresh {
			annotateMatch(existing, candidate.UpdatedAt, job.UpdatedAt, now, m.matchingCfg)
			return existing, nil
		}
	}

	related := m.resolver.ResolveRelated(ctx, candidate, job)
	breakdown := scoring.ComputeBreakdown(candidate, job, related, m.scoringCfg, now)
	reasons := scoring.Reasons(breakdown, m.scoringCfg)
	concerns := scoring.Concerns(breakdown, m.scoringCfg)
	missing := scoring.MissingSkills(candidate, job)
	summary := m.narrative.Summary(ctx, breakdown, reasons, concerns, missing)

	match := &models.JobMatch{
		ID:              uuid.New(),
		CandidateID:     candidateID,
		JobID:           jobID,
		OverallScore:    scoring.OverallScore(breakdown, m.scoringCfg),
		Reasons:         reasons,
		Concerns:        concerns,
		MissingSkills:   missing,
		Summary:         summary,
		Status:          models.MatchNew,
		AnalyzedAt:      now,
		LastRefreshedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	match.SetBreakdown(breakdown)

	if existing != nil {
		match.ID = existing.ID
		match.AnalyzedAt = existing.AnalyzedAt
		match.Status = existing.Status
		match.CreatedAt = existing.CreatedAt
	}

	if err := m.matchRepo.Upsert(match); err != nil {
		return nil, &ComputationError{Err: err}
	}

	// Re-read after the guarded upsert: if a concurrent computation persisted
	// a later refresh, the row is authoritative, not our local copy.
	persisted, err := m.matchRepo.FindByPair(candidateID, jobID)
	if err != nil {
		return nil, &ComputationError{Err: err}
	}

	annotateMatch(persisted, candidate.UpdatedAt, job.UpdatedAt, m.now(), m.matchingCfg)
	return persisted, nil
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
