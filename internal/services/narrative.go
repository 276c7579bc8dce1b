package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"talenthub/match-engine/internal/models"
	"talenthub/match-engine/internal/scoring"
)

// Summarizer turns a score breakdown into a short natural-language summary.
// Two implementations exist: a Gemini-backed one and a deterministic templated
// one. The engine prefers the first and always has the second.
type Summarizer interface {
	Summarize(ctx context.Context, breakdown models.MatchScoreBreakdown, reasons, concerns, missingSkills []string) (string, error)
}

// NarrativeService produces the match summary. The external collaborator is
// bounded by a timeout and its failures never surface: narrative degradation
// affects wording, not correctness.
type NarrativeService interface {
	Summary(ctx context.Context, breakdown models.MatchScoreBreakdown, reasons, concerns, missingSkills []string) string
}

type narrativeService struct {
	external Summarizer
	fallback Summarizer
	timeout  time.Duration
}

// NewNarrativeService builds the narrative pipeline. external may be nil when
// no collaborator is configured; the templated fallback then serves alone.
func NewNarrativeService(external Summarizer, cfg scoring.Config, timeout time.Duration) NarrativeService {
	return &narrativeService{
		external: external,
		fallback: NewTemplateSummarizer(cfg),
		timeout:  timeout,
	}
}

// Summary implements NarrativeService.
func (n *narrativeService) Summary(ctx context.Context, breakdown models.MatchScoreBreakdown, reasons, concerns, missingSkills []string) string {
	if n.external != nil {
		bounded, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		summary, err := n.external.Summarize(bounded, breakdown, reasons, concerns, missingSkills)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		log.Printf("⚠️  Narrative collaborator unavailable, using templated summary: %v\n", err)
	}

	summary, _ := n.fallback.Summarize(ctx, breakdown, reasons, concerns, missingSkills)
	return summary
}

// ── Gemini-backed summarizer ───────────────────────────────────────────────

type geminiSummarizer struct {
	gemini     GeminiService
	maxRetries int
}

func NewGeminiSummarizer(gemini GeminiService, maxRetries int) Summarizer {
	return &geminiSummarizer{gemini: gemini, maxRetries: maxRetries}
}

// Summarize implements Summarizer.
func (g *geminiSummarizer) Summarize(ctx context.Context, breakdown models.MatchScoreBreakdown, reasons, concerns, missingSkills []string) (string, error) {
	prompt := buildSummaryPrompt(breakdown, reasons, concerns, missingSkills)

	summary, err := g.gemini.GenerateTextWithRetry(ctx, prompt, 0.5, g.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	return strings.TrimSpace(summary), nil
}

func buildSummaryPrompt(breakdown models.MatchScoreBreakdown, reasons, concerns, missingSkills []string) string {
	return fmt.Sprintf(`You are a recruitment assistant summarizing how well a candidate fits a job.

COMPONENT SCORES (0-100):
- Skills: %d
- Salary: %d
- Experience: %d
- Work setup: %d
- Shift: %d
- Location: %d
- Availability: %d

POSITIVE FACTORS:
%s

RISK FACTORS:
%s

MISSING REQUIRED SKILLS: %s

Write a single short paragraph (1-2 sentences) summarizing the fit for the candidate.
Mention the strongest factor and the most important risk. Return ONLY the summary text,
no JSON, no markdown.`,
		breakdown.Skills,
		breakdown.Salary,
		breakdown.Experience,
		breakdown.Arrangement,
		breakdown.Shift,
		breakdown.Location,
		breakdown.Urgency,
		formatList(reasons),
		formatList(concerns),
		formatList(missingSkills),
	)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(items, "\n- ")
}

// ── Templated fallback summarizer ──────────────────────────────────────────

type templateSummarizer struct {
	cfg scoring.Config
}

func NewTemplateSummarizer(cfg scoring.Config) Summarizer {
	return &templateSummarizer{cfg: cfg}
}

// Summarize implements Summarizer. Deterministic: identical inputs yield an
// identical sentence.
func (t *templateSummarizer) Summarize(_ context.Context, breakdown models.MatchScoreBreakdown, _, _, missingSkills []string) (string, error) {
	strong := scoring.StrongDimensions(breakdown, t.cfg)
	weak := scoring.WeakDimensions(breakdown, t.cfg)

	var b strings.Builder
	if len(strong) > 0 {
		b.WriteString("Strong fit on " + joinNatural(strong))
	} else {
		b.WriteString("Moderate overall fit")
	}
	if len(weak) > 0 {
		b.WriteString("; " + joinNatural(weak) + " may not align")
	}
	b.WriteString(".")

	if len(missingSkills) > 0 {
		b.WriteString(" Missing skills: " + strings.Join(missingSkills, ", ") + ".")
	}

	return b.String(), nil
}

func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
