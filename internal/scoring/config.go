// Package scoring computes the seven-dimension compatibility breakdown between
// a candidate profile and a job posting, and aggregates it into an overall
// score with human-readable reasons and concerns.
//
// Every function here is pure: same inputs, same outputs. Signals that depend
// on elapsed time (days a posting has been open) take an explicit reference
// time instead of reading the clock.
package scoring

import (
	"fmt"
	"math"
)

// Weights distributes the overall score across the seven dimensions. Skills and
// salary dominate because they are the strongest predictors of an actual hire;
// location and urgency are tie-breakers.
type Weights struct {
	Skills      float64
	Salary      float64
	Experience  float64
	Arrangement float64
	Shift       float64
	Location    float64
	Urgency     float64
}

func (w Weights) Sum() float64 {
	return w.Skills + w.Salary + w.Experience + w.Arrangement + w.Shift + w.Location + w.Urgency
}

type Config struct {
	Weights Weights

	// StrongThreshold marks a component as a reason when its score is >= it;
	// WeakThreshold marks a concern when the score is <= it.
	StrongThreshold int
	WeakThreshold   int

	// RelatedSkillCredit is the partial credit for a required skill matched
	// only through a related skill, as a fraction of full credit.
	RelatedSkillCredit float64

	// PrimaryBoost is added once to the skills score when a matched required
	// skill is one of the candidate's primary or high-proficiency skills.
	PrimaryBoost int
}

// DefaultConfig returns the engine-version defaults. Weights are fixed per
// engine version and must always sum to exactly 1.0.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skills:      0.30,
			Salary:      0.20,
			Experience:  0.15,
			Arrangement: 0.15,
			Shift:       0.10,
			Location:    0.05,
			Urgency:     0.05,
		},
		StrongThreshold:    80,
		WeakThreshold:      40,
		RelatedSkillCredit: 0.5,
		PrimaryBoost:       10,
	}
}

func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("component weights must sum to 1.0, got %v", c.Weights.Sum())
	}
	if c.StrongThreshold <= c.WeakThreshold {
		return fmt.Errorf("strong threshold (%d) must exceed weak threshold (%d)", c.StrongThreshold, c.WeakThreshold)
	}
	if c.RelatedSkillCredit < 0 || c.RelatedSkillCredit > 1 {
		return fmt.Errorf("related skill credit must be in [0,1], got %v", c.RelatedSkillCredit)
	}
	if c.PrimaryBoost < 0 || c.PrimaryBoost > 100 {
		return fmt.Errorf("primary boost must be in [0,100], got %d", c.PrimaryBoost)
	}
	return nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
