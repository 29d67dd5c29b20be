// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import "feed-ranking-service/internal/domain"

// FeedRequest represents the query parameters for feed endpoints.
type FeedRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// ToFeedParams converts FeedRequest to domain.FeedParams. Out-of-range values
// are bound-corrected downstream; validation here only rejects nonsense the
// client should fix.
func (r *FeedRequest) ToFeedParams() domain.FeedParams {
	params := domain.FeedParams{
		Limit:  r.Limit,
		Offset: r.Offset,
	}
	params.Validate()

	return params
}

// GenerateFeedRequest is the body for POST feed requests carrying per-request
// weight overrides. All weight fields are optional; absent fields keep the
// active config's values.
type GenerateFeedRequest struct {
	Weights *domain.WeightsPatch `json:"weights" validate:"omitempty"`
}

// PresetRequest names a preset to activate. The name arrives as a path
// parameter; unknown names are rejected by the scoring service.
type PresetRequest struct {
	Name string `validate:"required,max=50"`
}

// ConfigUpdateRequest is the PATCH body for partial scoring config updates.
// It is the wire form of a deep-merge patch: only present fields change.
type ConfigUpdateRequest struct {
	domain.ConfigPatch
}
