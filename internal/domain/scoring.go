package domain

import (
	"math"
	"time"
)

// Fixed multipliers of the non-linear modifiers. These are part of the scoring
// contract and intentionally not configurable.
const (
	controversyMultiplier = 1.3
	newContentMultiplier  = 1.2
	newContentWindowHours = 24

	// DefaultAuthorReputation is used when a post's author has no known
	// reputation (and always in trending mode, which skips the lookup).
	DefaultAuthorReputation = 70
)

// BreakdownStep records the running score after one modifier was applied.
type BreakdownStep struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	Score      float64 `json:"score"`
}

// ScoreBreakdown explains how a score was produced. It is rebuilt on every
// call and never cached: the active config may change between requests.
type ScoreBreakdown struct {
	Algorithm     Algorithm          `json:"algorithm"`
	Contributions map[string]float64 `json:"contributions"`
	BaseScore     float64            `json:"base_score"`
	Steps         []BreakdownStep    `json:"steps"`
	FinalScore    float64            `json:"final_score"`
}

// Score computes the engagement score for a post at the given reference time.
//
// The modifier order is fixed and significant: each step feeds the next.
//
//  1. Base score: weighted sum over the nine engagement counters.
//  2. Time decay: score *= factor^hoursAge (continuous, fractional hours).
//  3. Controversy boost: x1.3 when the approval ratio is lopsided in either
//     direction beyond the threshold.
//  4. Quality bias: x(0.8 + 0.4*qualityRatio), a multiplier in [0.8, 1.2].
//  5. New content boost: x1.2 while the post is under 24 hours old.
//  6. Author reputation: x(1 + (rep/100 - 0.5)*weight); reputation 50 is
//     always neutral. Reputation is clamped to [0, 100] before use.
//  7. Clamp to [MinScore, MaxScore] (both ScaleToRange branches clamp).
//  8. Round to 2 decimal places.
//
// The function is pure: same metrics, config and now always produce the same
// score. A future createdAt yields a negative age and therefore decay/boost
// factors above 1; timestamp sanity is the caller's concern.
func Score(m *EngagementMetrics, createdAt time.Time, authorReputation int, cfg *ScoringConfig, now time.Time) (float64, *ScoreBreakdown) {
	breakdown := &ScoreBreakdown{
		Algorithm:     cfg.Algorithm,
		Contributions: make(map[string]float64, 9),
	}

	score := baseScore(m, &cfg.Weights, breakdown.Contributions)
	breakdown.BaseScore = roundTo2Decimals(score)

	hoursAge := now.Sub(createdAt).Hours()

	if cfg.Modifiers.TimeDecayEnabled {
		decay := math.Pow(cfg.Modifiers.TimeDecayFactor, hoursAge)
		score *= decay
		breakdown.addStep("time_decay", decay, score)
	}

	if cfg.Modifiers.ControversyBoost && m.IsControversial(cfg.Modifiers.ControversyThreshold) {
		score *= controversyMultiplier
		breakdown.addStep("controversy_boost", controversyMultiplier, score)
	}

	if cfg.Modifiers.QualityBias {
		multiplier := 0.8 + 0.4*m.QualityRatio()
		score *= multiplier
		breakdown.addStep("quality_bias", multiplier, score)
	}

	if cfg.Modifiers.NewContentBoost && hoursAge < newContentWindowHours {
		score *= newContentMultiplier
		breakdown.addStep("new_content_boost", newContentMultiplier, score)
	}

	if weight := cfg.Modifiers.AuthorReputationWeight; weight > 0 {
		normalized := float64(clampReputation(authorReputation)) / 100
		multiplier := 1 + (normalized-0.5)*weight
		score *= multiplier
		breakdown.addStep("author_reputation", multiplier, score)
	}

	score = clampScore(score, &cfg.Adjustments)
	score = roundTo2Decimals(score)
	breakdown.FinalScore = score

	return score, breakdown
}

// baseScore computes the weighted sum over all nine counters, recording the
// per-metric contribution.
func baseScore(m *EngagementMetrics, w *MetricWeights, contributions map[string]float64) float64 {
	parts := []struct {
		name   string
		count  int
		weight float64
	}{
		{"likes", m.Likes, w.Likes},
		{"dislikes", m.Dislikes, w.Dislikes},
		{"agrees", m.Agrees, w.Agrees},
		{"disagrees", m.Disagrees, w.Disagrees},
		{"comments", m.Comments, w.Comments},
		{"shares", m.Shares, w.Shares},
		{"views", m.Views, w.Views},
		{"community_notes", m.CommunityNotes, w.CommunityNotes},
		{"reports", m.Reports, w.Reports},
	}

	var total float64
	for _, p := range parts {
		contribution := float64(p.count) * p.weight
		contributions[p.name] = contribution
		total += contribution
	}

	return total
}

func (b *ScoreBreakdown) addStep(name string, multiplier, score float64) {
	b.Steps = append(b.Steps, BreakdownStep{
		Name:       name,
		Multiplier: multiplier,
		Score:      roundTo2Decimals(score),
	})
}

// clampScore bounds the score to [MinScore, MaxScore].
//
// Both branches clamp. ScaleToRange was meant to rescale the distribution
// instead, but the shipped behavior has always clamped; preserved as is.
func clampScore(score float64, adj *Adjustments) float64 {
	if adj.ScaleToRange {
		return math.Min(math.Max(score, adj.MinScore), adj.MaxScore)
	}

	return math.Min(math.Max(score, adj.MinScore), adj.MaxScore)
}

func clampReputation(reputation int) int {
	if reputation < 0 {
		return 0
	}
	if reputation > 100 {
		return 100
	}

	return reputation
}

// roundTo2Decimals rounds a float to 2 decimal places.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
