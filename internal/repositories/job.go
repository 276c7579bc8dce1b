package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub/match-engine/internal/models"
)

type JobRepository interface {
	FindByID(id uuid.UUID) (*models.JobPosting, error)
	FindByIDs(ids []uuid.UUID) ([]models.JobPosting, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// FindByID implements JobRepository.
func (r *jobRepository) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	var job models.JobPosting
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("job posting not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find job posting: %w", err)
	}

	return &job, nil
}

// FindByIDs implements JobRepository.
func (r *jobRepository) FindByIDs(ids []uuid.UUID) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	if err := r.db.Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to find job postings: %w", err)
	}

	return jobs, nil
}
