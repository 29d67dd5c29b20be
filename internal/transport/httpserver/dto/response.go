package dto

import (
	"time"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/internal/domain"
)

// PostResponse represents a single scored post in a feed response.
type PostResponse struct {
	ID       string   `json:"id"`
	AuthorID string   `json:"author_id"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags,omitempty"`

	Metrics domain.EngagementMetrics `json:"metrics"`

	AuthorReputation int     `json:"author_reputation"`
	EngagementScore  float64 `json:"engagement_score"`

	Breakdown *domain.ScoreBreakdown `json:"breakdown,omitempty"`

	CreatedAt string `json:"created_at"`
}

// FromScoredPost converts a domain.ScoredPost to PostResponse.
func FromScoredPost(sp domain.ScoredPost) PostResponse {
	return PostResponse{
		ID:               sp.Post.ID,
		AuthorID:         sp.Post.AuthorID,
		Title:            sp.Post.Title,
		Tags:             sp.Post.Tags,
		Metrics:          sp.Post.Metrics,
		AuthorReputation: sp.Post.AuthorReputation,
		EngagementScore:  sp.EngagementScore,
		Breakdown:        sp.Breakdown,
		CreatedAt:        sp.Post.CreatedAt.Format(time.RFC3339),
	}
}

// PaginationMeta holds pagination metadata for feed responses.
type PaginationMeta struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// FeedResponse represents one feed page.
type FeedResponse struct {
	Posts      []PostResponse `json:"posts"`
	Kind       string         `json:"kind"`
	Algorithm  string         `json:"algorithm"`
	Pagination PaginationMeta `json:"pagination"`

	Weights *domain.MetricWeights `json:"weights,omitempty"`
	Stats   *domain.ScoreStats    `json:"stats,omitempty"`

	Degraded bool `json:"degraded,omitempty"`
}

// FromFeedPage converts a domain.FeedPage to FeedResponse.
func FromFeedPage(page *domain.FeedPage) FeedResponse {
	posts := make([]PostResponse, len(page.Posts))
	for i, sp := range page.Posts {
		posts[i] = FromScoredPost(sp)
	}

	return FeedResponse{
		Posts:     posts,
		Kind:      string(page.Kind),
		Algorithm: string(page.Algorithm),
		Pagination: PaginationMeta{
			Limit:   page.Limit,
			Offset:  page.Offset,
			Count:   page.Count,
			HasMore: page.HasMore,
		},
		Weights:  page.Weights,
		Stats:    page.Stats,
		Degraded: page.Degraded,
	}
}

// ConfigResponse wraps the active scoring configuration.
type ConfigResponse struct {
	Config *domain.ScoringConfig `json:"config"`
}

// MetricsResponse reports score distribution stats for the active algorithm
// over a recent content window.
type MetricsResponse struct {
	Algorithm  string            `json:"algorithm"`
	WindowSize int               `json:"window_size"`
	Stats      domain.ScoreStats `json:"stats"`
}

// RescoreResponse represents the outcome of a manually triggered rescore pass.
type RescoreResponse struct {
	Scanned  int    `json:"scanned"`
	Updated  int    `json:"updated"`
	Duration string `json:"duration"`
}

// FromRescoreResult converts a service.RescoreResult to RescoreResponse.
func FromRescoreResult(r *service.RescoreResult) RescoreResponse {
	return RescoreResponse{
		Scanned:  r.Scanned,
		Updated:  r.Updated,
		Duration: r.Duration.String(),
	}
}

// HealthResponse represents health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
