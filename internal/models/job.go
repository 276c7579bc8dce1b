package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	lvl := ExperienceLevel(s)
	switch lvl {
	case LevelEntry, LevelMid, LevelSenior:
		return lvl, nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// JobPosting is the engine's read-only view of a job. Posting lifecycle
// (publish, close, delete) belongs to the posting service.
type JobPosting struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title           string          `gorm:"type:text" json:"title"`
	RequiredSkills  []string        `gorm:"serializer:json;type:jsonb" json:"required_skills"`
	SalaryMin       *int64          `json:"salary_min,omitempty"`
	SalaryMax       *int64          `json:"salary_max,omitempty"`
	SalaryCurrency  string          `gorm:"type:text" json:"salary_currency"`
	Arrangement     WorkSetup       `gorm:"type:text" json:"arrangement"`
	Shift           ShiftPreference `gorm:"type:text" json:"shift"`
	ExperienceLevel ExperienceLevel `gorm:"type:text" json:"experience_level"`
	City            string          `gorm:"type:text" json:"city"`
	Region          string          `gorm:"type:text" json:"region"`
	Country         string          `gorm:"type:text" json:"country"`
	PostedAt        time.Time       `json:"posted_at"`
	FillDeadline    *time.Time      `json:"fill_deadline,omitempty"`
	CreatedAt       time.Time       `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}

// DaysOpen reports how long the posting has been up relative to now.
func (j *JobPosting) DaysOpen(now time.Time) float64 {
	if j.PostedAt.IsZero() || now.Before(j.PostedAt) {
		return 0
	}
	return now.Sub(j.PostedAt).Hours() / 24
}
