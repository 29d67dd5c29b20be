package domain

import (
	"math"
	"testing"
	"time"
)

const floatTolerance = 1e-9

// fixedNow keeps scoring tests deterministic: the engine takes the reference
// time explicitly, so no test depends on the wall clock.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestScore_BalancedScenario(t *testing.T) {
	cfg, err := Preset(AlgorithmBalanced)
	if err != nil {
		t.Fatalf("Preset(balanced) error: %v", err)
	}

	metrics := &EngagementMetrics{
		Likes:    10, // 10 * 1.0 = 10
		Comments: 5,  // 5 * 2.0 = 10
		Shares:   2,  // 2 * 3.0 = 6
	}
	createdAt := fixedNow.Add(-1 * time.Hour)

	// Base: 10 + 10 + 6 = 26
	// Decay: 26 * 0.95^1 = 24.7
	// New content (<24h): 24.7 * 1.2 = 29.64
	// Reputation 70, weight 0.3: 29.64 * (1 + (0.7-0.5)*0.3) = 29.64 * 1.06 = 31.4184
	// Rounded: 31.42
	score, breakdown := Score(metrics, createdAt, 70, cfg, fixedNow)

	if score != 31.42 {
		t.Errorf("Score() = %v, want 31.42", score)
	}
	if breakdown.BaseScore != 26.0 {
		t.Errorf("BaseScore = %v, want 26", breakdown.BaseScore)
	}
	if breakdown.Algorithm != AlgorithmBalanced {
		t.Errorf("Algorithm = %v, want balanced", breakdown.Algorithm)
	}
	if breakdown.FinalScore != score {
		t.Errorf("FinalScore = %v, want %v", breakdown.FinalScore, score)
	}

	wantSteps := []string{"time_decay", "new_content_boost", "author_reputation"}
	if len(breakdown.Steps) != len(wantSteps) {
		t.Fatalf("got %d steps, want %d: %+v", len(breakdown.Steps), len(wantSteps), breakdown.Steps)
	}
	for i, name := range wantSteps {
		if breakdown.Steps[i].Name != name {
			t.Errorf("step %d = %q, want %q", i, breakdown.Steps[i].Name, name)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	metrics := &EngagementMetrics{Likes: 42, Dislikes: 3, Comments: 7, Shares: 1, Reports: 1}
	createdAt := fixedNow.Add(-13 * time.Hour)

	first, _ := Score(metrics, createdAt, 80, cfg, fixedNow)
	second, _ := Score(metrics, createdAt, 80, cfg, fixedNow)

	if first != second {
		t.Errorf("Score not deterministic: %v != %v", first, second)
	}
}

func TestScore_BaseMonotonicity(t *testing.T) {
	cfg, _ := Preset(AlgorithmStandard)
	createdAt := fixedNow.Add(-2 * time.Hour)

	base := func(m *EngagementMetrics) float64 {
		_, b := Score(m, createdAt, DefaultAuthorReputation, cfg, fixedNow)
		return b.BaseScore
	}

	reference := &EngagementMetrics{Likes: 10, Comments: 3, Shares: 1, Reports: 2}
	refBase := base(reference)

	// Bumping any positively weighted counter never decreases the base score.
	increments := []struct {
		name string
		bump func(m *EngagementMetrics)
	}{
		{"likes", func(m *EngagementMetrics) { m.Likes++ }},
		{"agrees", func(m *EngagementMetrics) { m.Agrees++ }},
		{"comments", func(m *EngagementMetrics) { m.Comments++ }},
		{"shares", func(m *EngagementMetrics) { m.Shares++ }},
		{"views", func(m *EngagementMetrics) { m.Views++ }},
		{"community_notes", func(m *EngagementMetrics) { m.CommunityNotes++ }},
	}

	for _, tt := range increments {
		t.Run(tt.name, func(t *testing.T) {
			bumped := *reference
			tt.bump(&bumped)
			if got := base(&bumped); got < refBase {
				t.Errorf("base score decreased after +1 %s: %v < %v", tt.name, got, refBase)
			}
		})
	}

	// Reports carry a negative weight: more reports never increases the base.
	reported := *reference
	reported.Reports++
	if got := base(&reported); got > refBase {
		t.Errorf("base score increased after +1 report: %v > %v", got, refBase)
	}
}

func TestScore_OutputBounds(t *testing.T) {
	tests := []struct {
		name    string
		metrics EngagementMetrics
		want    float64
	}{
		{
			name:    "viral post clamps to max",
			metrics: EngagementMetrics{Likes: 1_000_000_000},
			want:    1000,
		},
		{
			name:    "report-buried post clamps to min",
			metrics: EngagementMetrics{Likes: 1, Reports: 10_000},
			want:    0,
		},
	}

	cfg := DefaultConfig()
	createdAt := fixedNow.Add(-1 * time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score(&tt.metrics, createdAt, DefaultAuthorReputation, cfg, fixedNow)
			if score != tt.want {
				t.Errorf("Score() = %v, want %v", score, tt.want)
			}
		})
	}
}

func TestScore_ScaleToRangeClampsOnBothBranches(t *testing.T) {
	// ScaleToRange has never rescaled; both branches clamp identically.
	// This test pins the shipped behavior.
	metrics := &EngagementMetrics{Likes: 1_000_000_000}
	createdAt := fixedNow.Add(-1 * time.Hour)

	clampCfg := DefaultConfig()
	clampCfg.Adjustments.ScaleToRange = false

	scaleCfg := DefaultConfig()
	scaleCfg.Adjustments.ScaleToRange = true

	clamped, _ := Score(metrics, createdAt, DefaultAuthorReputation, clampCfg, fixedNow)
	scaled, _ := Score(metrics, createdAt, DefaultAuthorReputation, scaleCfg, fixedNow)

	if clamped != scaled {
		t.Errorf("ScaleToRange changed clamping: %v != %v", clamped, scaled)
	}
}

func TestScore_NeutralReputation(t *testing.T) {
	metrics := &EngagementMetrics{Likes: 100}
	createdAt := fixedNow.Add(-1 * time.Hour)

	for _, weight := range []float64{0.1, 0.3, 0.5, 1.0} {
		cfg := DefaultConfig()
		cfg.Modifiers.AuthorReputationWeight = weight

		_, breakdown := Score(metrics, createdAt, 50, cfg, fixedNow)

		var repStep *BreakdownStep
		for i := range breakdown.Steps {
			if breakdown.Steps[i].Name == "author_reputation" {
				repStep = &breakdown.Steps[i]
			}
		}
		if repStep == nil {
			t.Fatalf("weight %v: no author_reputation step", weight)
		}
		if math.Abs(repStep.Multiplier-1.0) > floatTolerance {
			t.Errorf("weight %v: reputation 50 multiplier = %v, want 1.0", weight, repStep.Multiplier)
		}
	}
}

func TestScore_ReputationClamped(t *testing.T) {
	metrics := &EngagementMetrics{Likes: 100}
	createdAt := fixedNow.Add(-1 * time.Hour)
	cfg := DefaultConfig()

	atHundred, _ := Score(metrics, createdAt, 100, cfg, fixedNow)
	aboveHundred, _ := Score(metrics, createdAt, 250, cfg, fixedNow)
	atZero, _ := Score(metrics, createdAt, 0, cfg, fixedNow)
	belowZero, _ := Score(metrics, createdAt, -40, cfg, fixedNow)

	if atHundred != aboveHundred {
		t.Errorf("reputation above 100 not clamped: %v != %v", aboveHundred, atHundred)
	}
	if atZero != belowZero {
		t.Errorf("reputation below 0 not clamped: %v != %v", belowZero, atZero)
	}
}

func TestScore_ZeroEngagementQualityNeutral(t *testing.T) {
	metrics := &EngagementMetrics{}

	if ratio := metrics.QualityRatio(); ratio != 0.5 {
		t.Errorf("QualityRatio() = %v, want 0.5", ratio)
	}

	cfg, _ := Preset(AlgorithmQuality)
	_, breakdown := Score(metrics, fixedNow.Add(-1*time.Hour), DefaultAuthorReputation, cfg, fixedNow)

	for _, step := range breakdown.Steps {
		if step.Name == "quality_bias" && math.Abs(step.Multiplier-1.0) > floatTolerance {
			t.Errorf("zero engagement quality multiplier = %v, want 1.0", step.Multiplier)
		}
	}
}

func TestScore_ControversySymmetry(t *testing.T) {
	// Lopsided ratios in either direction count as controversial.
	tests := []struct {
		name    string
		metrics EngagementMetrics
	}{
		{"disagreement heavy", EngagementMetrics{Disagrees: 100}},
		{"suspiciously one-sided", EngagementMetrics{Likes: 100}},
	}

	cfg, _ := Preset(AlgorithmControversy)
	createdAt := fixedNow.Add(-1 * time.Hour)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.metrics.IsControversial(1.5) {
				t.Fatal("IsControversial(1.5) = false, want true")
			}

			_, breakdown := Score(&tt.metrics, createdAt, DefaultAuthorReputation, cfg, fixedNow)

			found := false
			for _, step := range breakdown.Steps {
				if step.Name == "controversy_boost" {
					found = true
					if step.Multiplier != 1.3 {
						t.Errorf("controversy multiplier = %v, want 1.3", step.Multiplier)
					}
				}
			}
			if !found {
				t.Error("controversy_boost step missing")
			}
		})
	}
}

func TestScore_TimeDecayIsContinuous(t *testing.T) {
	metrics := &EngagementMetrics{Likes: 100}

	cfg := DefaultConfig()
	cfg.Modifiers.NewContentBoost = false
	cfg.Modifiers.AuthorReputationWeight = 0

	// 30 minutes of age decays by 0.95^0.5, not a step function.
	score, _ := Score(metrics, fixedNow.Add(-30*time.Minute), DefaultAuthorReputation, cfg, fixedNow)
	want := roundTo2Decimals(100 * math.Pow(0.95, 0.5))

	if score != want {
		t.Errorf("Score() = %v, want %v", score, want)
	}
}

func TestScore_FutureTimestampBoostsInsteadOfErroring(t *testing.T) {
	// A future createdAt gives negative age: decay turns into growth. Legal
	// by contract; timestamp validation belongs upstream.
	metrics := &EngagementMetrics{Likes: 100}

	cfg := DefaultConfig()
	cfg.Modifiers.NewContentBoost = false
	cfg.Modifiers.AuthorReputationWeight = 0

	past, _ := Score(metrics, fixedNow.Add(-1*time.Hour), DefaultAuthorReputation, cfg, fixedNow)
	future, _ := Score(metrics, fixedNow.Add(2*time.Hour), DefaultAuthorReputation, cfg, fixedNow)

	if future <= past {
		t.Errorf("future timestamp should inflate score: future=%v past=%v", future, past)
	}
}

func TestScore_NewContentWindowEdge(t *testing.T) {
	metrics := &EngagementMetrics{Likes: 100}
	cfg := DefaultConfig()

	hasBoost := func(createdAt time.Time) bool {
		_, breakdown := Score(metrics, createdAt, DefaultAuthorReputation, cfg, fixedNow)
		for _, step := range breakdown.Steps {
			if step.Name == "new_content_boost" {
				return true
			}
		}
		return false
	}

	if !hasBoost(fixedNow.Add(-23 * time.Hour)) {
		t.Error("23h old post should get the new content boost")
	}
	if hasBoost(fixedNow.Add(-24 * time.Hour)) {
		t.Error("24h old post should not get the new content boost")
	}
}

func TestComputeScoreStats(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   ScoreStats
	}{
		{
			name:   "empty",
			scores: nil,
			want:   ScoreStats{},
		},
		{
			name:   "uniform",
			scores: []float64{5, 5, 5, 5},
			want:   ScoreStats{Count: 4, Min: 5, Max: 5, Mean: 5, StdDev: 0},
		},
		{
			name:   "spread",
			scores: []float64{2, 4, 4, 4, 5, 5, 7, 9},
			want:   ScoreStats{Count: 8, Min: 2, Max: 9, Mean: 5, StdDev: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScoreStats(tt.scores)
			if got.Count != tt.want.Count || got.Min != tt.want.Min || got.Max != tt.want.Max {
				t.Errorf("ComputeScoreStats() = %+v, want %+v", got, tt.want)
			}
			if math.Abs(got.Mean-tt.want.Mean) > floatTolerance {
				t.Errorf("Mean = %v, want %v", got.Mean, tt.want.Mean)
			}
			if math.Abs(got.StdDev-tt.want.StdDev) > floatTolerance {
				t.Errorf("StdDev = %v, want %v", got.StdDev, tt.want.StdDev)
			}
		})
	}
}
