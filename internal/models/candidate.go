package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ShiftPreference string

const (
	ShiftDay       ShiftPreference = "day"
	ShiftNight     ShiftPreference = "night"
	ShiftGraveyard ShiftPreference = "graveyard"
	ShiftFlexible  ShiftPreference = "flexible"
)

type WorkSetup string

const (
	SetupRemote WorkSetup = "remote"
	SetupOnsite WorkSetup = "onsite"
	SetupHybrid WorkSetup = "hybrid"
)

type WorkStatus string

const (
	StatusActivelyLooking WorkStatus = "actively_looking"
	StatusOpenToOffers    WorkStatus = "open_to_offers"
	StatusEmployed        WorkStatus = "employed_not_looking"
)

func ParseWorkSetup(s string) (WorkSetup, error) {
	ws := WorkSetup(s)
	switch ws {
	case SetupRemote, SetupOnsite, SetupHybrid:
		return ws, nil
	}
	return "", fmt.Errorf("unknown work setup %q", s)
}

func ParseShiftPreference(s string) (ShiftPreference, error) {
	sp := ShiftPreference(s)
	switch sp {
	case ShiftDay, ShiftNight, ShiftGraveyard, ShiftFlexible:
		return sp, nil
	}
	return "", fmt.Errorf("unknown shift preference %q", s)
}

// CandidateProfile is the engine's read-only view of a worker profile. Rows are
// owned by the profile service; the engine only ever reads them.
type CandidateProfile struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName         string           `gorm:"type:text" json:"full_name"`
	Skills           []CandidateSkill `gorm:"foreignKey:CandidateID" json:"skills"`
	WorkHistory      []WorkHistory    `gorm:"foreignKey:CandidateID" json:"work_history"`
	DesiredSalaryMin *int64           `json:"desired_salary_min,omitempty"`
	DesiredSalaryMax *int64           `json:"desired_salary_max,omitempty"`
	SalaryCurrency   string           `gorm:"type:text" json:"salary_currency"`
	YearsExperience  float64          `json:"years_experience"`
	PreferredShift   ShiftPreference  `gorm:"type:text" json:"preferred_shift"`
	PreferredSetup   WorkSetup        `gorm:"type:text" json:"preferred_setup"`
	WorkStatus       WorkStatus       `gorm:"type:text" json:"work_status"`
	City             string           `gorm:"type:text" json:"city"`
	Region           string           `gorm:"type:text" json:"region"`
	Country          string           `gorm:"type:text" json:"country"`
	CreatedAt        time.Time        `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}

// CandidateSkill carries proficiency on a 1-5 scale. IsPrimary marks the skills
// the candidate leads with on their profile.
type CandidateSkill struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Category    string    `gorm:"type:text" json:"category"`
	Proficiency int       `json:"proficiency"`
	Years       float64   `json:"years"`
	IsPrimary   bool      `json:"is_primary"`
}

func (CandidateSkill) TableName() string {
	return "candidate_skills"
}

type WorkHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Title       string     `gorm:"type:text" json:"title"`
	Company     string     `gorm:"type:text" json:"company"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

func (WorkHistory) TableName() string {
	return "work_histories"
}
