package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"talenthub/match-engine/internal/models"
	"talenthub/match-engine/internal/scoring"
)

type stubSummarizer struct {
	summary string
	err     error
	block   bool
}

func (s *stubSummarizer) Summarize(ctx context.Context, _ models.MatchScoreBreakdown, _, _, _ []string) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.summary, s.err
}

func narrativeBreakdown() models.MatchScoreBreakdown {
	return models.MatchScoreBreakdown{
		Skills: 90, Salary: 85, Experience: 60, Arrangement: 60,
		Shift: 20, Location: 60, Urgency: 60,
	}
}

func TestNarrative_PrefersExternalSummarizer(t *testing.T) {
	external := &stubSummarizer{summary: "Great fit overall."}
	narrative := NewNarrativeService(external, scoring.DefaultConfig(), time.Second)

	got := narrative.Summary(context.Background(), narrativeBreakdown(), nil, nil, nil)
	if got != "Great fit overall." {
		t.Errorf("Summary = %q, want the external result", got)
	}
}

func TestNarrative_FallsBackOnError(t *testing.T) {
	external := &stubSummarizer{err: errors.New("service unavailable")}
	narrative := NewNarrativeService(external, scoring.DefaultConfig(), time.Second)

	got := narrative.Summary(context.Background(), narrativeBreakdown(), nil, nil, []string{"Sales"})
	if got == "" {
		t.Fatal("fallback summary should never be empty")
	}
	if !strings.Contains(got, "skills") {
		t.Errorf("fallback summary %q should mention the strong dimensions", got)
	}
	if !strings.Contains(got, "Sales") {
		t.Errorf("fallback summary %q should list the missing skills", got)
	}
}

func TestNarrative_FallsBackOnTimeout(t *testing.T) {
	external := &stubSummarizer{block: true}
	narrative := NewNarrativeService(external, scoring.DefaultConfig(), 20*time.Millisecond)

	start := time.Now()
	got := narrative.Summary(context.Background(), narrativeBreakdown(), nil, nil, nil)
	if got == "" {
		t.Fatal("fallback summary should never be empty")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("narrative held the computation for %v; the timeout did not bound it", elapsed)
	}
}

func TestNarrative_NilExternalUsesTemplate(t *testing.T) {
	narrative := NewNarrativeService(nil, scoring.DefaultConfig(), time.Second)

	got := narrative.Summary(context.Background(), narrativeBreakdown(), nil, nil, nil)
	if !strings.Contains(got, "Strong fit on skills and salary") {
		t.Errorf("template summary = %q, want the strong dimensions phrase", got)
	}
	if !strings.Contains(got, "shift may not align") {
		t.Errorf("template summary = %q, want the weak dimension phrase", got)
	}
}

func TestTemplateSummarizer_Deterministic(t *testing.T) {
	summarizer := NewTemplateSummarizer(scoring.DefaultConfig())
	b := narrativeBreakdown()

	first, _ := summarizer.Summarize(context.Background(), b, nil, nil, []string{"Sales"})
	second, _ := summarizer.Summarize(context.Background(), b, nil, nil, []string{"Sales"})
	if first != second {
		t.Errorf("template summaries differ: %q vs %q", first, second)
	}
}

func TestTemplateSummarizer_NoStrongDimensions(t *testing.T) {
	summarizer := NewTemplateSummarizer(scoring.DefaultConfig())
	b := models.MatchScoreBreakdown{
		Skills: 50, Salary: 50, Experience: 50, Arrangement: 50,
		Shift: 50, Location: 50, Urgency: 50,
	}

	got, _ := summarizer.Summarize(context.Background(), b, nil, nil, nil)
	if !strings.Contains(got, "Moderate overall fit") {
		t.Errorf("summary = %q, want the moderate-fit phrase", got)
	}
}
