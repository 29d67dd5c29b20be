package domain

import "math"

// FeedKind distinguishes the two feed products.
type FeedKind string

const (
	FeedKindTrending     FeedKind = "trending"
	FeedKindPersonalized FeedKind = "personalized"
)

// FeedParams holds pagination parameters for a feed request.
type FeedParams struct {
	Limit  int
	Offset int
}

// DefaultFeedParams returns feed params with sensible defaults.
func DefaultFeedParams() FeedParams {
	return FeedParams{Limit: 20, Offset: 0}
}

// Validate ensures feed params are within acceptable bounds. This is bound
// correction, not validation.
func (p *FeedParams) Validate() {
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ScoredPost pairs a post with its freshly computed engagement score.
type ScoredPost struct {
	Post            *Post           `json:"post"`
	EngagementScore float64         `json:"engagement_score"`
	Breakdown       *ScoreBreakdown `json:"breakdown,omitempty"`
}

// FeedPage is one page of an assembled feed.
type FeedPage struct {
	Posts     []ScoredPost `json:"posts"`
	Kind      FeedKind     `json:"kind"`
	Algorithm Algorithm    `json:"algorithm"`
	Limit     int          `json:"limit"`
	Offset    int          `json:"offset"`
	Count     int          `json:"count"`
	HasMore   bool         `json:"has_more"`

	// Weights and Stats are populated for personalized feeds.
	Weights *MetricWeights `json:"weights,omitempty"`
	Stats   *ScoreStats    `json:"stats,omitempty"`

	// Degraded marks a page that is empty because the data layer was
	// unavailable, as opposed to a store that genuinely has no content.
	Degraded bool `json:"degraded,omitempty"`
}

// EmptyFeedPage returns an empty page for the given parameters.
func EmptyFeedPage(kind FeedKind, alg Algorithm, params FeedParams, degraded bool) *FeedPage {
	return &FeedPage{
		Posts:     []ScoredPost{},
		Kind:      kind,
		Algorithm: alg,
		Limit:     params.Limit,
		Offset:    params.Offset,
		Degraded:  degraded,
	}
}

// ScoreStats summarizes a score distribution across a candidate set. Used for
// tuning dashboards and the feed stats metadata, not for feed correctness.
type ScoreStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ComputeScoreStats calculates min/max/mean/population-stddev over scores.
func ComputeScoreStats(scores []float64) ScoreStats {
	stats := ScoreStats{Count: len(scores)}
	if len(scores) == 0 {
		return stats
	}

	stats.Min = scores[0]
	stats.Max = scores[0]

	var sum float64
	for _, s := range scores {
		sum += s
		if s < stats.Min {
			stats.Min = s
		}
		if s > stats.Max {
			stats.Max = s
		}
	}
	stats.Mean = sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := s - stats.Mean
		variance += d * d
	}
	variance /= float64(len(scores))
	stats.StdDev = math.Sqrt(variance)

	return stats
}
