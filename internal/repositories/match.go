package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talenthub/match-engine/internal/models"
)

type MatchRepository interface {
	FindByPair(candidateID, jobID uuid.UUID) (*models.JobMatch, error)
	FindByCandidate(candidateID uuid.UUID) ([]models.JobMatch, error)
	Upsert(match *models.JobMatch) error
	UpdateStatus(candidateID, jobID uuid.UUID, status models.MatchStatus) error
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// FindByPair implements MatchRepository.
func (r *matchRepository) FindByPair(candidateID, jobID uuid.UUID) (*models.JobMatch, error) {
	var match models.JobMatch
	err := r.db.
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		First(&match).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("match not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	return &match, nil
}

// FindByCandidate implements MatchRepository.
func (r *matchRepository) FindByCandidate(candidateID uuid.UUID) ([]models.JobMatch, error) {
	var matches []models.JobMatch
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Order("overall_score DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find matches: %w", err)
	}

	return matches, nil
}

// Upsert implements MatchRepository. The write is an idempotent upsert keyed by
// (candidate_id, job_id), guarded so a slow computation can never overwrite a
// result that a concurrent computation persisted with a later refresh time.
// analyzed_at and status are deliberately absent from the update set: the first
// is set once on insert, the second belongs to the presentation layer.
func (r *matchRepository) Upsert(match *models.JobMatch) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_score",
			"skills_score",
			"salary_score",
			"experience_score",
			"arrangement_score",
			"shift_score",
			"location_score",
			"urgency_score",
			"reasons",
			"concerns",
			"missing_skills",
			"summary",
			"last_refreshed_at",
			"updated_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "job_matches.last_refreshed_at < excluded.last_refreshed_at"},
		}},
	}).Create(match).Error
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

// UpdateStatus implements MatchRepository. It touches only the presentation
// lifecycle tag, never the engine's fields.
func (r *matchRepository) UpdateStatus(candidateID, jobID uuid.UUID, status models.MatchStatus) error {
	result := r.db.Model(&models.JobMatch{}).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update match status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("match not found: %w", gorm.ErrRecordNotFound)
	}

	return nil
}
