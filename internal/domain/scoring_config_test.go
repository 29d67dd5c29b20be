package domain

import (
	"errors"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"standard", AlgorithmStandard, false},
		{"controversy", AlgorithmControversy, false},
		{"quality", AlgorithmQuality, false},
		{"balanced", AlgorithmBalanced, false},
		{"custom", AlgorithmCustom, false},
		{"viral", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPreset) {
					t.Errorf("ParseAlgorithm(%q) err = %v, want ErrUnknownPreset", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAlgorithm(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreset_TablesAreFixed(t *testing.T) {
	tests := []struct {
		alg             Algorithm
		wantLikes       float64
		wantReports     float64
		wantDecayFactor float64
	}{
		{AlgorithmStandard, 1.0, -5.0, 0.95},
		{AlgorithmControversy, 0.5, -3.0, 0.97},
		{AlgorithmQuality, 1.5, -10.0, 0.93},
		{AlgorithmBalanced, 1.0, -5.0, 0.95},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			cfg, err := Preset(tt.alg)
			if err != nil {
				t.Fatalf("Preset(%v) error: %v", tt.alg, err)
			}
			if cfg.Algorithm != tt.alg {
				t.Errorf("Algorithm = %v, want %v", cfg.Algorithm, tt.alg)
			}
			if cfg.Weights.Likes != tt.wantLikes {
				t.Errorf("Weights.Likes = %v, want %v", cfg.Weights.Likes, tt.wantLikes)
			}
			if cfg.Weights.Reports != tt.wantReports {
				t.Errorf("Weights.Reports = %v, want %v", cfg.Weights.Reports, tt.wantReports)
			}
			if cfg.Modifiers.TimeDecayFactor != tt.wantDecayFactor {
				t.Errorf("TimeDecayFactor = %v, want %v", cfg.Modifiers.TimeDecayFactor, tt.wantDecayFactor)
			}
			if cfg.Adjustments.MinScore != 0 || cfg.Adjustments.MaxScore != 1000 {
				t.Errorf("Adjustments = %+v, want [0, 1000]", cfg.Adjustments)
			}
		})
	}
}

func TestPreset_CustomHasNoTable(t *testing.T) {
	if _, err := Preset(AlgorithmCustom); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Preset(custom) err = %v, want ErrUnknownPreset", err)
	}
}

func TestPreset_ReturnsIndependentCopies(t *testing.T) {
	first, _ := Preset(AlgorithmBalanced)
	first.Weights.Likes = 99

	second, _ := Preset(AlgorithmBalanced)
	if second.Weights.Likes == 99 {
		t.Error("preset table leaked mutation between calls")
	}
}

func TestMerge_PartialWeightsKeepUnspecified(t *testing.T) {
	cfg := DefaultConfig()
	originalComments := cfg.Weights.Comments

	likes := 4.0
	merged := cfg.Merge(&ConfigPatch{
		Weights: &WeightsPatch{Likes: &likes},
	})

	if merged.Weights.Likes != 4.0 {
		t.Errorf("merged Likes = %v, want 4.0", merged.Weights.Likes)
	}
	if merged.Weights.Comments != originalComments {
		t.Errorf("merged Comments = %v, want unchanged %v", merged.Weights.Comments, originalComments)
	}
	if merged.Weights.Reports != cfg.Weights.Reports {
		t.Error("unspecified weights must survive a partial update")
	}
}

func TestMerge_DeepMergesAllSections(t *testing.T) {
	cfg := DefaultConfig()

	alg := AlgorithmCustom
	decayOff := false
	threshold := 2.0
	maxScore := 500.0

	merged := cfg.Merge(&ConfigPatch{
		Algorithm: &alg,
		Modifiers: &ModifiersPatch{
			TimeDecayEnabled:     &decayOff,
			ControversyThreshold: &threshold,
		},
		Adjustments: &AdjustmentsPatch{MaxScore: &maxScore},
	})

	if merged.Algorithm != AlgorithmCustom {
		t.Errorf("Algorithm = %v, want custom", merged.Algorithm)
	}
	if merged.Modifiers.TimeDecayEnabled {
		t.Error("TimeDecayEnabled should be patched to false")
	}
	if merged.Modifiers.ControversyThreshold != 2.0 {
		t.Errorf("ControversyThreshold = %v, want 2.0", merged.Modifiers.ControversyThreshold)
	}
	if merged.Modifiers.TimeDecayFactor != cfg.Modifiers.TimeDecayFactor {
		t.Error("unpatched modifier changed")
	}
	if merged.Adjustments.MaxScore != 500 {
		t.Errorf("MaxScore = %v, want 500", merged.Adjustments.MaxScore)
	}
	if merged.Adjustments.MinScore != cfg.Adjustments.MinScore {
		t.Error("unpatched adjustment changed")
	}
}

func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	cfg := DefaultConfig()
	originalLikes := cfg.Weights.Likes

	likes := 123.0
	_ = cfg.Merge(&ConfigPatch{Weights: &WeightsPatch{Likes: &likes}})

	if cfg.Weights.Likes != originalLikes {
		t.Errorf("Merge mutated receiver: Likes = %v, want %v", cfg.Weights.Likes, originalLikes)
	}
}

func TestMerge_NilPatchIsClone(t *testing.T) {
	cfg := DefaultConfig()
	merged := cfg.Merge(nil)

	if merged == cfg {
		t.Fatal("Merge(nil) must return a copy, not the receiver")
	}
	if *merged != *cfg {
		t.Errorf("Merge(nil) = %+v, want identical values %+v", merged, cfg)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Weights.Shares = 42
	if cfg.Weights.Shares == 42 {
		t.Error("Clone shares state with the original")
	}
}
