package scoring

import (
	"math"
	"time"

	"talenthub/match-engine/internal/models"
)

// experienceBuckets maps a posting's experience level to the years range it
// expects. Senior has no practical upper bound.
var experienceBuckets = map[models.ExperienceLevel]struct{ min, max float64 }{
	models.LevelEntry:  {0, 2},
	models.LevelMid:    {2, 5},
	models.LevelSenior: {5, 50},
}

// BuildStaticRelated derives the related-skill set from the category taxonomy:
// a required skill counts as related when the candidate holds a different skill
// in the same category. The candidate skill's own category field wins over the
// static map when present.
func BuildStaticRelated(candidate *models.CandidateProfile, job *models.JobPosting) RelatedSkills {
	related := make(RelatedSkills, len(job.RequiredSkills))

	for _, required := range job.RequiredSkills {
		reqNorm := NormalizeSkill(required)
		reqCategory := CategoryOf(required)
		if reqCategory == "" {
			continue
		}
		for _, skill := range candidate.Skills {
			if NormalizeSkill(skill.Name) == reqNorm {
				continue
			}
			category := skill.Category
			if category == "" {
				category = CategoryOf(skill.Name)
			}
			if category == reqCategory {
				related[reqNorm] = true
				break
			}
		}
	}

	return related
}

// SkillsScore averages per-required-skill credit: full for an exact match,
// partial for a related match, zero otherwise. One boost applies when any
// exactly-matched skill is primary or high proficiency. A posting with no
// required skills scores 100 — there is nothing to fail.
func SkillsScore(candidate *models.CandidateProfile, job *models.JobPosting, related RelatedSkills, cfg Config) int {
	if len(job.RequiredSkills) == 0 {
		return 100
	}

	bySkill := make(map[string]models.CandidateSkill, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		bySkill[NormalizeSkill(skill.Name)] = skill
	}

	var credit float64
	primaryHit := false
	for _, required := range job.RequiredSkills {
		reqNorm := NormalizeSkill(required)
		if skill, ok := bySkill[reqNorm]; ok {
			credit += 1.0
			if skill.IsPrimary || skill.Proficiency >= 4 {
				primaryHit = true
			}
			continue
		}
		if related[reqNorm] {
			credit += cfg.RelatedSkillCredit
		}
	}

	score := int(math.Round(credit / float64(len(job.RequiredSkills)) * 100))
	if primaryHit {
		score += cfg.PrimaryBoost
	}
	return clampScore(score)
}

// MissingSkills is the set difference: required skills with no exact match in
// the candidate's skill set, in the posting's order. A related match does not
// remove a skill from the list — the candidate still lacks it.
func MissingSkills(candidate *models.CandidateProfile, job *models.JobPosting) []string {
	have := make(map[string]bool, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		have[NormalizeSkill(skill.Name)] = true
	}

	missing := []string{}
	for _, required := range job.RequiredSkills {
		if !have[NormalizeSkill(required)] {
			missing = append(missing, required)
		}
	}
	return missing
}

// SalaryScore compares the candidate's desired range against the offered one.
// Overlapping ranges score 70 plus up to 30 for overlap depth relative to the
// candidate's range width; disjoint ranges degrade linearly with the gap,
// normalized the same way. Incomplete data on either side is neutral (50), not
// punitive — thin profiles should not tank the match.
func SalaryScore(candidate *models.CandidateProfile, job *models.JobPosting) int {
	if candidate.DesiredSalaryMin == nil && candidate.DesiredSalaryMax == nil {
		return 50
	}
	if job.SalaryMin == nil && job.SalaryMax == nil {
		return 50
	}
	if candidate.SalaryCurrency != "" && job.SalaryCurrency != "" &&
		!equalFold(candidate.SalaryCurrency, job.SalaryCurrency) {
		return 50
	}

	cMin, cMax := fillRange(candidate.DesiredSalaryMin, candidate.DesiredSalaryMax)
	jMin, jMax := fillRange(job.SalaryMin, job.SalaryMax)
	if cMin > cMax || jMin > jMax {
		return 50
	}

	width := float64(cMax - cMin)
	if width <= 0 {
		width = 1
	}

	overlap := minInt64(cMax, jMax) - maxInt64(cMin, jMin)
	if overlap >= 0 {
		return clampScore(70 + int(math.Round(30*float64(overlap)/width)))
	}

	var gap int64
	if jMax < cMin {
		gap = cMin - jMax
	} else {
		gap = jMin - cMax
	}
	return clampScore(70 - int(math.Round(70*float64(gap)/width)))
}

// ExperienceScore checks the candidate's total years against the posting's
// level bucket. Shortfall is penalized linearly; over-qualification is a weaker
// signal, so its penalty starts later and is capped.
func ExperienceScore(candidate *models.CandidateProfile, job *models.JobPosting) int {
	bucket, ok := experienceBuckets[job.ExperienceLevel]
	if !ok {
		return 70
	}

	years := candidate.YearsExperience
	if years < 0 {
		years = 0
	}

	if years < bucket.min {
		shortfall := bucket.min - years
		score := 100 - int(math.Round(25*shortfall))
		if score < 10 {
			score = 10
		}
		return score
	}

	if years > bucket.max {
		overshoot := years - bucket.max
		if overshoot <= 2 {
			return 100
		}
		penalty := int(math.Round(10 * (overshoot - 2)))
		if penalty > 20 {
			penalty = 20
		}
		return 100 - penalty
	}

	return 100
}

// ArrangementScore is a categorical table. Mismatches never score zero;
// arrangement is frequently negotiable.
func ArrangementScore(candidate *models.CandidateProfile, job *models.JobPosting) int {
	if candidate.PreferredSetup == "" || job.Arrangement == "" {
		return 70
	}
	if candidate.PreferredSetup == job.Arrangement {
		return 100
	}
	if candidate.PreferredSetup == models.SetupHybrid || job.Arrangement == models.SetupHybrid {
		return 70
	}
	return 25
}

// ShiftScore is categorical: flexible on either side scores high regardless of
// the other side's value.
func ShiftScore(candidate *models.CandidateProfile, job *models.JobPosting) int {
	if candidate.PreferredShift == "" || job.Shift == "" {
		return 70
	}
	if candidate.PreferredShift == models.ShiftFlexible || job.Shift == models.ShiftFlexible {
		return 90
	}
	if candidate.PreferredShift == job.Shift {
		return 100
	}
	return 20
}

// LocationScore is irrelevant (100) when either side is remote; otherwise it is
// tiered by administrative proximity.
func LocationScore(candidate *models.CandidateProfile, job *models.JobPosting) int {
	if candidate.PreferredSetup == models.SetupRemote || job.Arrangement == models.SetupRemote {
		return 100
	}

	switch {
	case bothEqual(candidate.City, job.City):
		return 100
	case bothEqual(candidate.Region, job.Region):
		return 75
	case bothEqual(candidate.Country, job.Country):
		return 50
	case candidate.Country != "" && job.Country != "":
		return 20
	}
	return 60
}

// UrgencyScore rewards alignment between the candidate's availability and the
// posting's fill urgency. The older the posting (or the nearer its deadline),
// the more the candidate's availability dominates; fresh postings sit near a
// neutral 60 for everyone, which is what makes this dimension a tie-breaker.
func UrgencyScore(candidate *models.CandidateProfile, job *models.JobPosting, now time.Time) int {
	availability := 60
	switch candidate.WorkStatus {
	case models.StatusActivelyLooking:
		availability = 100
	case models.StatusOpenToOffers:
		availability = 70
	case models.StatusEmployed:
		availability = 40
	}

	urgency := job.DaysOpen(now) / 30
	if urgency > 1 {
		urgency = 1
	}
	if job.FillDeadline != nil {
		until := job.FillDeadline.Sub(now)
		if until <= 7*24*time.Hour && urgency < 0.8 {
			urgency = 0.8
		}
	}

	return clampScore(int(math.Round(float64(availability)*urgency + 60*(1-urgency))))
}

// ComputeBreakdown runs all seven calculators for one computation.
func ComputeBreakdown(candidate *models.CandidateProfile, job *models.JobPosting, related RelatedSkills, cfg Config, now time.Time) models.MatchScoreBreakdown {
	return models.MatchScoreBreakdown{
		Skills:      SkillsScore(candidate, job, related, cfg),
		Salary:      SalaryScore(candidate, job),
		Experience:  ExperienceScore(candidate, job),
		Arrangement: ArrangementScore(candidate, job),
		Shift:       ShiftScore(candidate, job),
		Location:    LocationScore(candidate, job),
		Urgency:     UrgencyScore(candidate, job, now),
	}
}

func fillRange(min, max *int64) (int64, int64) {
	switch {
	case min == nil:
		return *max, *max
	case max == nil:
		return *min, *min
	}
	return *min, *max
}

func bothEqual(a, b string) bool {
	return a != "" && b != "" && equalFold(a, b)
}

func equalFold(a, b string) bool {
	return NormalizeSkill(a) == NormalizeSkill(b)
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
