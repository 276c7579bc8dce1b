package scoring

import (
	"math"

	"talenthub/match-engine/internal/models"
)

// Dimension names one of the seven score components.
type Dimension string

const (
	DimSkills      Dimension = "skills"
	DimSalary      Dimension = "salary"
	DimExperience  Dimension = "experience"
	DimArrangement Dimension = "arrangement"
	DimShift       Dimension = "shift"
	DimLocation    Dimension = "location"
	DimUrgency     Dimension = "urgency"
)

// dimensionOrder fixes iteration order so reasons, concerns and summaries come
// out identical for identical inputs.
var dimensionOrder = []Dimension{
	DimSkills, DimSalary, DimExperience, DimArrangement, DimShift, DimLocation, DimUrgency,
}

// Label is the human-readable phrase for a dimension, used in summaries.
var dimensionLabels = map[Dimension]string{
	DimSkills:      "skills",
	DimSalary:      "salary",
	DimExperience:  "experience",
	DimArrangement: "work setup",
	DimShift:       "shift",
	DimLocation:    "location",
	DimUrgency:     "availability",
}

var reasonTemplates = map[Dimension]string{
	DimSkills:      "Strong skills alignment with the job's requirements",
	DimSalary:      "Offered salary fits the desired range",
	DimExperience:  "Experience level fits the role",
	DimArrangement: "Preferred work setup matches the job",
	DimShift:       "Preferred shift matches the job schedule",
	DimLocation:    "Location works well for this job",
	DimUrgency:     "Availability lines up with the job's hiring timeline",
}

var concernTemplates = map[Dimension]string{
	DimSkills:      "Significant gaps in the required skills",
	DimSalary:      "Offered salary falls short of the desired range",
	DimExperience:  "Experience level may not fit the role",
	DimArrangement: "Work setup preference conflicts with the job",
	DimShift:       "Shift preference does not align with the job schedule",
	DimLocation:    "Location may make this job difficult",
	DimUrgency:     "Availability may not match the job's hiring timeline",
}

func (d Dimension) Label() string {
	return dimensionLabels[d]
}

func componentScore(b models.MatchScoreBreakdown, d Dimension) int {
	switch d {
	case DimSkills:
		return b.Skills
	case DimSalary:
		return b.Salary
	case DimExperience:
		return b.Experience
	case DimArrangement:
		return b.Arrangement
	case DimShift:
		return b.Shift
	case DimLocation:
		return b.Location
	case DimUrgency:
		return b.Urgency
	}
	return 0
}

// OverallScore is the weighted average of the seven components, rounded to an
// integer in [0,100].
func OverallScore(b models.MatchScoreBreakdown, cfg Config) int {
	w := cfg.Weights
	sum := w.Skills*float64(b.Skills) +
		w.Salary*float64(b.Salary) +
		w.Experience*float64(b.Experience) +
		w.Arrangement*float64(b.Arrangement) +
		w.Shift*float64(b.Shift) +
		w.Location*float64(b.Location) +
		w.Urgency*float64(b.Urgency)
	return clampScore(int(math.Round(sum)))
}

// Reasons renders a templated sentence for every component at or above the
// strong threshold, in fixed dimension order.
func Reasons(b models.MatchScoreBreakdown, cfg Config) []string {
	reasons := []string{}
	for _, d := range dimensionOrder {
		if componentScore(b, d) >= cfg.StrongThreshold {
			reasons = append(reasons, reasonTemplates[d])
		}
	}
	return reasons
}

// Concerns renders a templated sentence for every component at or below the
// weak threshold, in fixed dimension order.
func Concerns(b models.MatchScoreBreakdown, cfg Config) []string {
	concerns := []string{}
	for _, d := range dimensionOrder {
		if componentScore(b, d) <= cfg.WeakThreshold {
			concerns = append(concerns, concernTemplates[d])
		}
	}
	return concerns
}

// StrongDimensions returns the labels of strong components, for summaries.
func StrongDimensions(b models.MatchScoreBreakdown, cfg Config) []string {
	labels := []string{}
	for _, d := range dimensionOrder {
		if componentScore(b, d) >= cfg.StrongThreshold {
			labels = append(labels, dimensionLabels[d])
		}
	}
	return labels
}

// WeakDimensions returns the labels of weak components, for summaries.
func WeakDimensions(b models.MatchScoreBreakdown, cfg Config) []string {
	labels := []string{}
	for _, d := range dimensionOrder {
		if componentScore(b, d) <= cfg.WeakThreshold {
			labels = append(labels, dimensionLabels[d])
		}
	}
	return labels
}
