package scoring

import "strings"

// skillCategories maps normalized skill names to a coarse category. Two skills
// in the same category count as related for partial credit. The static map is
// the fallback when no vector skill index is configured; it covers the common
// skills seen in profiles, not the long tail.
var skillCategories = map[string]string{
	"customer service":  "customer_support",
	"customer support":  "customer_support",
	"technical support": "customer_support",
	"help desk":         "customer_support",
	"call handling":     "customer_support",
	"chat support":      "customer_support",

	"sales":                "sales",
	"telemarketing":        "sales",
	"lead generation":      "sales",
	"business development": "sales",
	"account management":   "sales",
	"cold calling":         "sales",

	"go":         "software",
	"golang":     "software",
	"python":     "software",
	"java":       "software",
	"javascript": "software",
	"typescript": "software",
	"node.js":    "software",
	"react":      "software",
	"php":        "software",

	"sql":              "data",
	"excel":            "data",
	"data analysis":    "data",
	"google sheets":    "data",
	"data engineering": "data",

	"photoshop":      "design",
	"figma":          "design",
	"ui design":      "design",
	"graphic design": "design",
	"canva":          "design",

	"data entry":         "admin",
	"virtual assistance": "admin",
	"scheduling":         "admin",
	"email management":   "admin",

	"bookkeeping": "finance",
	"accounting":  "finance",
	"payroll":     "finance",
	"quickbooks":  "finance",

	"seo":             "marketing",
	"content writing": "marketing",
	"copywriting":     "marketing",
	"social media":    "marketing",
	"email marketing": "marketing",
}

// NormalizeSkill lowercases and trims a skill name so lookups and comparisons
// are insensitive to formatting differences between profiles and postings.
func NormalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CategoryOf returns the taxonomy category for a skill name, or "" when the
// skill is not in the static map.
func CategoryOf(name string) string {
	return skillCategories[NormalizeSkill(name)]
}

// RelatedSkills records, per normalized required skill name, whether the
// candidate holds a related (same-category or vector-similar) skill. Built by
// the caller — statically via BuildStaticRelated or through the skill index —
// and consumed by SkillsScore, which stays pure.
type RelatedSkills map[string]bool
