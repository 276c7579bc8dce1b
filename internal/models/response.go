package models

import "time"

type MatchListResponse struct {
	CandidateID string     `json:"candidate_id"`
	Matches     []JobMatch `json:"matches"`
	Total       int        `json:"total"`
}

type RefreshResponse struct {
	Match     *JobMatch `json:"match"`
	Refreshed bool      `json:"refreshed"`
}

type ThrottledResponse struct {
	Error         string    `json:"error"`
	Match         *JobMatch `json:"match,omitempty"`
	NextRefreshAt time.Time `json:"next_refresh_at"`
}

type RefreshInProgressResponse struct {
	Message string    `json:"message"`
	Match   *JobMatch `json:"match,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
