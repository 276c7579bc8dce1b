package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchNew       MatchStatus = "new"
	MatchViewed    MatchStatus = "viewed"
	MatchDismissed MatchStatus = "dismissed"
)

func ParseMatchStatus(s string) (MatchStatus, error) {
	ms := MatchStatus(s)
	switch ms {
	case MatchNew, MatchViewed, MatchDismissed:
		return ms, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// MatchScoreBreakdown holds the seven component scores, each in [0,100].
type MatchScoreBreakdown struct {
	Skills      int `json:"skills"`
	Salary      int `json:"salary"`
	Experience  int `json:"experience"`
	Arrangement int `json:"arrangement"`
	Shift       int `json:"shift"`
	Location    int `json:"location"`
	Urgency     int `json:"urgency"`
}

// JobMatch is the persisted result of one candidate/job computation. Exactly one
// row exists per (candidate_id, job_id); recomputation updates it in place.
//
// IsStale, CanRefresh and NextRefreshAt are derived at read time from
// LastRefreshedAt, the cooldown, and the candidate/job updated_at timestamps, so
// profile and posting edits never fan out writes to match rows.
type JobMatch struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_pair" json:"candidate_id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_matches_pair" json:"job_id"`

	OverallScore     int      `json:"overall_score"`
	SkillsScore      int      `json:"skills_score"`
	SalaryScore      int      `json:"salary_score"`
	ExperienceScore  int      `json:"experience_score"`
	ArrangementScore int      `json:"arrangement_score"`
	ShiftScore       int      `json:"shift_score"`
	LocationScore    int      `json:"location_score"`
	UrgencyScore     int      `json:"urgency_score"`
	Reasons          []string `gorm:"serializer:json;type:jsonb" json:"reasons"`
	Concerns         []string `gorm:"serializer:json;type:jsonb" json:"concerns"`
	MissingSkills    []string `gorm:"serializer:json;type:jsonb" json:"missing_skills"`
	Summary          string   `gorm:"type:text" json:"summary"`

	// Status belongs to the presentation layer; engine recomputations never
	// touch it.
	Status MatchStatus `gorm:"type:text;not null;default:'new'" json:"status"`

	AnalyzedAt      time.Time `json:"analyzed_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	CreatedAt       time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`

	IsStale       bool       `gorm:"-" json:"is_stale"`
	CanRefresh    bool       `gorm:"-" json:"can_refresh"`
	NextRefreshAt *time.Time `gorm:"-" json:"next_refresh_at,omitempty"`
}

func (JobMatch) TableName() string {
	return "job_matches"
}

// Breakdown regroups the stored component columns as a value object.
func (m *JobMatch) Breakdown() MatchScoreBreakdown {
	return MatchScoreBreakdown{
		Skills:      m.SkillsScore,
		Salary:      m.SalaryScore,
		Experience:  m.ExperienceScore,
		Arrangement: m.ArrangementScore,
		Shift:       m.ShiftScore,
		Location:    m.LocationScore,
		Urgency:     m.UrgencyScore,
	}
}

func (m *JobMatch) SetBreakdown(b MatchScoreBreakdown) {
	m.SkillsScore = b.Skills
	m.SalaryScore = b.Salary
	m.ExperienceScore = b.Experience
	m.ArrangementScore = b.Arrangement
	m.ShiftScore = b.Shift
	m.LocationScore = b.Location
	m.UrgencyScore = b.Urgency
}
