package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset is returned when an algorithm name does not match any preset.
var ErrUnknownPreset = errors.New("unknown scoring preset")

// Algorithm identifies a scoring preset.
type Algorithm string

const (
	AlgorithmStandard    Algorithm = "standard"
	AlgorithmControversy Algorithm = "controversy"
	AlgorithmQuality     Algorithm = "quality"
	AlgorithmBalanced    Algorithm = "balanced"
	AlgorithmCustom      Algorithm = "custom"
)

// ParseAlgorithm validates a preset name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmStandard, AlgorithmControversy, AlgorithmQuality, AlgorithmBalanced, AlgorithmCustom:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}

// MetricWeights holds one multiplier per engagement counter. The reports
// weight is negative in every preset.
type MetricWeights struct {
	Likes          float64 `json:"likes"`
	Dislikes       float64 `json:"dislikes"`
	Agrees         float64 `json:"agrees"`
	Disagrees      float64 `json:"disagrees"`
	Comments       float64 `json:"comments"`
	Shares         float64 `json:"shares"`
	Views          float64 `json:"views"`
	CommunityNotes float64 `json:"community_notes"`
	Reports        float64 `json:"reports"`
}

// Modifiers holds the non-linear scoring toggles applied after the weighted sum.
type Modifiers struct {
	TimeDecayEnabled bool    `json:"time_decay_enabled"`
	TimeDecayFactor  float64 `json:"time_decay_factor"` // per-hour multiplier, 0 < factor <= 1

	ControversyBoost     bool    `json:"controversy_boost"`
	ControversyThreshold float64 `json:"controversy_threshold"`

	QualityBias     bool `json:"quality_bias"`
	NewContentBoost bool `json:"new_content_boost"` // applies within the first 24 hours only

	AuthorReputationWeight float64 `json:"author_reputation_weight"` // 0 = ignored, 1 = full influence
}

// Adjustments bound the final score.
//
// ScaleToRange currently clamps on both branches; the rescale interpretation
// (min-max normalizing the distribution) was never implemented. The flag is
// kept so a future rescale does not change the config shape. See DESIGN.md.
type Adjustments struct {
	MinScore     float64 `json:"min_score"`
	MaxScore     float64 `json:"max_score"`
	ScaleToRange bool    `json:"scale_to_range"`
}

// ScoringConfig is the full scoring configuration. It is treated as an
// immutable snapshot once published; mutation happens by building a modified
// copy and swapping it in (see service.ScoringService).
type ScoringConfig struct {
	Algorithm   Algorithm     `json:"algorithm"`
	Weights     MetricWeights `json:"weights"`
	Modifiers   Modifiers     `json:"modifiers"`
	Adjustments Adjustments   `json:"adjustments"`
}

// Preset returns the fixed configuration table for a named algorithm.
// AlgorithmCustom has no table: applying it preserves the current config, so
// callers must special-case it before asking for a preset.
func Preset(alg Algorithm) (*ScoringConfig, error) {
	switch alg {
	case AlgorithmStandard:
		return &ScoringConfig{
			Algorithm: AlgorithmStandard,
			Weights: MetricWeights{
				Likes: 1.0, Dislikes: -0.5, Agrees: 1.0, Disagrees: -0.5,
				Comments: 2.0, Shares: 3.0, Views: 0.01, CommunityNotes: 0.5, Reports: -5.0,
			},
			Modifiers: Modifiers{
				TimeDecayEnabled:     true,
				TimeDecayFactor:      0.95,
				ControversyThreshold: 1.5,
			},
			Adjustments: defaultAdjustments(),
		}, nil

	case AlgorithmControversy:
		return &ScoringConfig{
			Algorithm: AlgorithmControversy,
			Weights: MetricWeights{
				Likes: 0.5, Dislikes: 0.5, Agrees: 1.0, Disagrees: 1.0,
				Comments: 3.0, Shares: 2.0, Views: 0.01, CommunityNotes: 2.0, Reports: -3.0,
			},
			Modifiers: Modifiers{
				TimeDecayEnabled:       true,
				TimeDecayFactor:        0.97,
				ControversyBoost:       true,
				ControversyThreshold:   1.5,
				NewContentBoost:        true,
				AuthorReputationWeight: 0.1,
			},
			Adjustments: defaultAdjustments(),
		}, nil

	case AlgorithmQuality:
		return &ScoringConfig{
			Algorithm: AlgorithmQuality,
			Weights: MetricWeights{
				Likes: 1.5, Dislikes: -1.0, Agrees: 2.0, Disagrees: -0.5,
				Comments: 2.5, Shares: 4.0, Views: 0.01, CommunityNotes: 1.0, Reports: -10.0,
			},
			Modifiers: Modifiers{
				TimeDecayEnabled:       true,
				TimeDecayFactor:        0.93,
				ControversyThreshold:   1.5,
				QualityBias:            true,
				AuthorReputationWeight: 0.6,
			},
			Adjustments: defaultAdjustments(),
		}, nil

	case AlgorithmBalanced:
		return &ScoringConfig{
			Algorithm: AlgorithmBalanced,
			Weights: MetricWeights{
				Likes: 1.0, Dislikes: -0.5, Agrees: 1.2, Disagrees: -0.4,
				Comments: 2.0, Shares: 3.0, Views: 0.01, CommunityNotes: 1.0, Reports: -5.0,
			},
			Modifiers: Modifiers{
				TimeDecayEnabled:       true,
				TimeDecayFactor:        0.95,
				ControversyThreshold:   1.5,
				NewContentBoost:        true,
				AuthorReputationWeight: 0.3,
			},
			Adjustments: defaultAdjustments(),
		}, nil

	case AlgorithmCustom:
		return nil, fmt.Errorf("%w: custom has no preset table", ErrUnknownPreset)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, alg)
	}
}

// DefaultConfig returns the configuration the service boots with.
func DefaultConfig() *ScoringConfig {
	cfg, _ := Preset(AlgorithmBalanced)
	return cfg
}

func defaultAdjustments() Adjustments {
	return Adjustments{MinScore: 0, MaxScore: 1000, ScaleToRange: false}
}

// Clone returns a deep copy of the config. All fields are value types, so a
// struct copy is sufficient, but callers should go through Clone so the copy
// guarantee survives future pointer fields.
func (c *ScoringConfig) Clone() *ScoringConfig {
	clone := *c
	return &clone
}

// WeightsPatch is a partial weights update; nil fields are left unchanged.
type WeightsPatch struct {
	Likes          *float64 `json:"likes,omitempty"`
	Dislikes       *float64 `json:"dislikes,omitempty"`
	Agrees         *float64 `json:"agrees,omitempty"`
	Disagrees      *float64 `json:"disagrees,omitempty"`
	Comments       *float64 `json:"comments,omitempty"`
	Shares         *float64 `json:"shares,omitempty"`
	Views          *float64 `json:"views,omitempty"`
	CommunityNotes *float64 `json:"community_notes,omitempty"`
	Reports        *float64 `json:"reports,omitempty"`
}

// ModifiersPatch is a partial modifiers update; nil fields are left unchanged.
type ModifiersPatch struct {
	TimeDecayEnabled       *bool    `json:"time_decay_enabled,omitempty"`
	TimeDecayFactor        *float64 `json:"time_decay_factor,omitempty"`
	ControversyBoost       *bool    `json:"controversy_boost,omitempty"`
	ControversyThreshold   *float64 `json:"controversy_threshold,omitempty"`
	QualityBias            *bool    `json:"quality_bias,omitempty"`
	NewContentBoost        *bool    `json:"new_content_boost,omitempty"`
	AuthorReputationWeight *float64 `json:"author_reputation_weight,omitempty"`
}

// AdjustmentsPatch is a partial adjustments update; nil fields are left unchanged.
type AdjustmentsPatch struct {
	MinScore     *float64 `json:"min_score,omitempty"`
	MaxScore     *float64 `json:"max_score,omitempty"`
	ScaleToRange *bool    `json:"scale_to_range,omitempty"`
}

// ConfigPatch is a partial ScoringConfig update. Top-level sections merge
// key-by-key: a patch touching one weight must not discard the others.
type ConfigPatch struct {
	Algorithm   *Algorithm        `json:"algorithm,omitempty"`
	Weights     *WeightsPatch     `json:"weights,omitempty"`
	Modifiers   *ModifiersPatch   `json:"modifiers,omitempty"`
	Adjustments *AdjustmentsPatch `json:"adjustments,omitempty"`
}

// Merge returns a new config with the patch applied on top of c.
// The receiver is never mutated.
func (c *ScoringConfig) Merge(patch *ConfigPatch) *ScoringConfig {
	merged := c.Clone()
	if patch == nil {
		return merged
	}

	if patch.Algorithm != nil {
		merged.Algorithm = *patch.Algorithm
	}

	if p := patch.Weights; p != nil {
		setFloat(&merged.Weights.Likes, p.Likes)
		setFloat(&merged.Weights.Dislikes, p.Dislikes)
		setFloat(&merged.Weights.Agrees, p.Agrees)
		setFloat(&merged.Weights.Disagrees, p.Disagrees)
		setFloat(&merged.Weights.Comments, p.Comments)
		setFloat(&merged.Weights.Shares, p.Shares)
		setFloat(&merged.Weights.Views, p.Views)
		setFloat(&merged.Weights.CommunityNotes, p.CommunityNotes)
		setFloat(&merged.Weights.Reports, p.Reports)
	}

	if p := patch.Modifiers; p != nil {
		setBool(&merged.Modifiers.TimeDecayEnabled, p.TimeDecayEnabled)
		setFloat(&merged.Modifiers.TimeDecayFactor, p.TimeDecayFactor)
		setBool(&merged.Modifiers.ControversyBoost, p.ControversyBoost)
		setFloat(&merged.Modifiers.ControversyThreshold, p.ControversyThreshold)
		setBool(&merged.Modifiers.QualityBias, p.QualityBias)
		setBool(&merged.Modifiers.NewContentBoost, p.NewContentBoost)
		setFloat(&merged.Modifiers.AuthorReputationWeight, p.AuthorReputationWeight)
	}

	if p := patch.Adjustments; p != nil {
		setFloat(&merged.Adjustments.MinScore, p.MinScore)
		setFloat(&merged.Adjustments.MaxScore, p.MaxScore)
		setBool(&merged.Adjustments.ScaleToRange, p.ScaleToRange)
	}

	return merged
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
