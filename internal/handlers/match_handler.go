package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"talenthub/match-engine/internal/models"
	"talenthub/match-engine/internal/repositories"
	"talenthub/match-engine/internal/services"
)

type MatchHandler struct {
	matcher   services.MatcherService
	matchRepo repositories.MatchRepository
}

func NewMatchHandler(matcher services.MatcherService, matchRepo repositories.MatchRepository) *MatchHandler {
	return &MatchHandler{
		matcher:   matcher,
		matchRepo: matchRepo,
	}
}

// HandleListMatches handles GET /candidates/:candidate_id/matches
func (h *MatchHandler) HandleListMatches(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("candidate_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	matches, err := h.matcher.ListMatches(c.Context(), candidateID)
	if err != nil {
		return matchErrorResponse(c, err)
	}

	return c.JSON(models.MatchListResponse{
		CandidateID: candidateID.String(),
		Matches:     matches,
		Total:       len(matches),
	})
}

// HandleGetMatch handles GET /candidates/:candidate_id/matches/:job_id
func (h *MatchHandler) HandleGetMatch(c *fiber.Ctx) error {
	candidateID, jobID, err := parsePair(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	match, err := h.matcher.GetMatch(c.Context(), candidateID, jobID)
	if err != nil {
		return matchErrorResponse(c, err)
	}

	return c.JSON(match)
}

// HandleRequestRefresh handles POST /candidates/:candidate_id/matches/:job_id/refresh
func (h *MatchHandler) HandleRequestRefresh(c *fiber.Ctx) error {
	candidateID, jobID, err := parsePair(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	match, err := h.matcher.RequestRefresh(c.Context(), candidateID, jobID)
	if err != nil {
		return matchErrorResponse(c, err)
	}

	return c.JSON(models.RefreshResponse{
		Match:     match,
		Refreshed: true,
	})
}

// HandleUpdateStatus handles PATCH /candidates/:candidate_id/matches/:job_id/status.
// Status is a presentation-layer tag; the engine never touches it during
// recomputation.
func (h *MatchHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	candidateID, jobID, err := parsePair(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req models.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	status, err := models.ParseMatchStatus(req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.matchRepo.UpdateStatus(candidateID, jobID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Match not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update match status",
		})
	}

	return c.JSON(fiber.Map{
		"candidate_id": candidateID.String(),
		"job_id":       jobID.String(),
		"status":       string(status),
	})
}

func parsePair(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	candidateID, err := uuid.Parse(c.Params("candidate_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, &services.ValidationError{Field: "candidate_id", Reason: "must be a UUID"}
	}
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, &services.ValidationError{Field: "job_id", Reason: "must be a UUID"}
	}
	return candidateID, jobID, nil
}

// matchErrorResponse maps the engine's error taxonomy to HTTP responses.
func matchErrorResponse(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validation.Error(),
		})
	}

	var throttled *services.ThrottledError
	if errors.As(err, &throttled) {
		return c.Status(fiber.StatusTooManyRequests).JSON(models.ThrottledResponse{
			Error:         "Refresh cooldown active",
			Match:         throttled.Match,
			NextRefreshAt: throttled.NextRefreshAt,
		})
	}

	var inProgress *services.RefreshInProgressError
	if errors.As(err, &inProgress) {
		return c.Status(fiber.StatusAccepted).JSON(models.RefreshInProgressResponse{
			Message: "Refresh in progress; retry shortly for the updated result",
			Match:   inProgress.Match,
		})
	}

	switch {
	case errors.Is(err, services.ErrCandidateNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Candidate not found",
		})
	case errors.Is(err, services.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job posting not found",
		})
	case errors.Is(err, services.ErrMatchNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Match not found",
		})
	}

	var computation *services.ComputationError
	if errors.As(err, &computation) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Match computation failed",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
