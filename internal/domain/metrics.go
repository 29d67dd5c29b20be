// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidMetrics is returned when engagement metrics contain negative counts.
var ErrInvalidMetrics = errors.New("invalid engagement metrics")

// EngagementMetrics holds the raw interaction counters for a single post.
// All counters are non-negative; missing values default to zero.
type EngagementMetrics struct {
	Likes          int `json:"likes"`
	Dislikes       int `json:"dislikes"`
	Agrees         int `json:"agrees"`
	Disagrees      int `json:"disagrees"`
	Comments       int `json:"comments"`
	Shares         int `json:"shares"`
	Views          int `json:"views"`
	CommunityNotes int `json:"community_notes"`
	Reports        int `json:"reports"`

	// CommentStats aggregates engagement on the post's own comments.
	CommentStats CommentEngagement `json:"comment_stats"`
}

// CommentEngagement aggregates the reaction counters of a post's comments.
type CommentEngagement struct {
	Count     int `json:"count"`
	Likes     int `json:"likes"`
	Dislikes  int `json:"dislikes"`
	Agrees    int `json:"agrees"`
	Disagrees int `json:"disagrees"`
}

// PositiveRatio returns the share of positive reactions across all comment
// engagement, or 0.5 (neutral) when the comments carry no reactions at all.
func (c CommentEngagement) PositiveRatio() float64 {
	positive := float64(c.Likes + c.Agrees)
	total := positive + float64(c.Dislikes+c.Disagrees)
	if total == 0 {
		return 0.5
	}

	return positive / total
}

// Validate rejects metrics containing negative counters. Negative input is a
// caller bug (counters only ever increment), so it is reported rather than
// silently clamped.
func (m *EngagementMetrics) Validate() error {
	counters := []struct {
		name  string
		value int
	}{
		{"likes", m.Likes},
		{"dislikes", m.Dislikes},
		{"agrees", m.Agrees},
		{"disagrees", m.Disagrees},
		{"comments", m.Comments},
		{"shares", m.Shares},
		{"views", m.Views},
		{"community_notes", m.CommunityNotes},
		{"reports", m.Reports},
	}

	for _, c := range counters {
		if c.value < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalidMetrics, c.name, c.value)
		}
	}

	return nil
}

// PositiveEngagement computes the weighted positive engagement signal used by
// the quality bias: likes + agrees + 0.5*comments + 2*shares.
func (m *EngagementMetrics) PositiveEngagement() float64 {
	return float64(m.Likes) + float64(m.Agrees) +
		0.5*float64(m.Comments) + 2*float64(m.Shares)
}

// NegativeEngagement computes the weighted negative engagement signal used by
// the quality bias: dislikes + disagrees + 3*reports.
func (m *EngagementMetrics) NegativeEngagement() float64 {
	return float64(m.Dislikes) + float64(m.Disagrees) + 3*float64(m.Reports)
}

// QualityRatio returns positive / (positive + negative) engagement, or 0.5
// (neutral) when the post has no engagement signal in either direction.
func (m *EngagementMetrics) QualityRatio() float64 {
	positive := m.PositiveEngagement()
	negative := m.NegativeEngagement()
	if positive == 0 && negative == 0 {
		return 0.5
	}

	return positive / (positive + negative)
}

// IsControversial reports whether the post's approval counters are lopsided in
// either direction by at least threshold. Disagreement-heavy posts and
// suspiciously one-sided posts are both flagged: a controversy heuristic that
// only looked at the negative direction would miss brigaded or astroturfed
// content.
func (m *EngagementMetrics) IsControversial(threshold float64) bool {
	positive := float64(m.Likes + m.Agrees)
	negative := float64(m.Dislikes + m.Disagrees)

	negativeRatio := negative / maxFloat(1, positive)
	positiveRatio := positive / maxFloat(1, negative)

	return negativeRatio >= threshold || positiveRatio >= threshold
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
