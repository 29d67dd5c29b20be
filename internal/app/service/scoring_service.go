// Package service provides application use cases.
package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"feed-ranking-service/internal/domain"
)

// ScoringService owns the process-wide scoring configuration and exposes the
// scoring operations on top of it.
//
// Reads take an atomic snapshot pointer: a score computation sees either the
// before- or after-image of an update, never a half-merged config. Writers are
// rare (administrative) and serialize on a mutex while building the new
// snapshot; readers never block.
type ScoringService struct {
	current atomic.Pointer[domain.ScoringConfig]
	mu      sync.Mutex // serializes config writers
	logger  *zap.Logger
}

// NewScoringService creates a ScoringService with the given initial config
// (nil means the balanced default).
func NewScoringService(initial *domain.ScoringConfig, logger *zap.Logger) *ScoringService {
	if initial == nil {
		initial = domain.DefaultConfig()
	}

	s := &ScoringService{logger: logger}
	s.current.Store(initial.Clone())

	return s
}

// Snapshot returns the active config snapshot. The returned value is shared
// and must be treated as read-only; use GetConfig for a mutable copy.
func (s *ScoringService) Snapshot() *domain.ScoringConfig {
	return s.current.Load()
}

// GetConfig returns a deep copy of the active config, safe to hand to
// callers outside the service.
func (s *ScoringService) GetConfig() *domain.ScoringConfig {
	return s.current.Load().Clone()
}

// ApplyPreset atomically replaces the active config with a named preset.
// The custom preset is a no-op: it preserves whatever is currently set.
func (s *ScoringService) ApplyPreset(name string) error {
	alg, err := domain.ParseAlgorithm(name)
	if err != nil {
		return err
	}

	if alg == domain.AlgorithmCustom {
		s.logger.Debug("custom preset requested, keeping current config")
		return nil
	}

	preset, err := domain.Preset(alg)
	if err != nil {
		return fmt.Errorf("loading preset %q: %w", name, err)
	}

	s.mu.Lock()
	s.current.Store(preset)
	s.mu.Unlock()

	s.logger.Info("scoring preset applied", zap.String("algorithm", string(alg)))

	return nil
}

// UpdateConfig deep-merges a partial update into the active config and swaps
// the merged snapshot in. Returns a copy of the resulting config.
func (s *ScoringService) UpdateConfig(patch *domain.ConfigPatch) (*domain.ScoringConfig, error) {
	if patch != nil && patch.Algorithm != nil {
		if _, err := domain.ParseAlgorithm(string(*patch.Algorithm)); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	merged := s.current.Load().Merge(patch)
	s.current.Store(merged)
	s.mu.Unlock()

	s.logger.Info("scoring config updated", zap.String("algorithm", string(merged.Algorithm)))

	return merged.Clone(), nil
}

// CalculateScore scores a single post's metrics against the active config.
// Invalid metrics (negative counters) are rejected.
func (s *ScoringService) CalculateScore(metrics *domain.EngagementMetrics, createdAt time.Time, authorReputation int) (float64, *domain.ScoreBreakdown, error) {
	return s.CalculateScoreAt(metrics, createdAt, authorReputation, time.Now().UTC())
}

// CalculateScoreAt is CalculateScore with an explicit reference time, which
// keeps batch scoring consistent across one candidate set.
func (s *ScoringService) CalculateScoreAt(metrics *domain.EngagementMetrics, createdAt time.Time, authorReputation int, now time.Time) (float64, *domain.ScoreBreakdown, error) {
	if err := metrics.Validate(); err != nil {
		return 0, nil, err
	}

	cfg := s.current.Load()
	score, breakdown := domain.Score(metrics, createdAt, authorReputation, cfg, now)

	return score, breakdown, nil
}

// BatchCalculateScores scores a candidate set against one config snapshot and
// one reference time. Posts with invalid metrics are skipped.
func (s *ScoringService) BatchCalculateScores(posts []*domain.Post) []domain.ScoredPost {
	cfg := s.current.Load()
	now := time.Now().UTC()

	scored := make([]domain.ScoredPost, 0, len(posts))
	for _, post := range posts {
		if err := post.Metrics.Validate(); err != nil {
			s.logger.Warn("skipping post with invalid metrics",
				zap.String("post_id", post.ID),
				zap.Error(err),
			)
			continue
		}

		score, breakdown := domain.Score(&post.Metrics, post.CreatedAt, post.AuthorReputation, cfg, now)
		scored = append(scored, domain.ScoredPost{
			Post:            post,
			EngagementScore: score,
			Breakdown:       breakdown,
		})
	}

	return scored
}

// AlgorithmMetrics computes the score distribution over a candidate set under
// the active config. Observability only; feeds never depend on it.
func (s *ScoringService) AlgorithmMetrics(posts []*domain.Post) domain.ScoreStats {
	scored := s.BatchCalculateScores(posts)

	scores := make([]float64, len(scored))
	for i, sp := range scored {
		scores[i] = sp.EngagementScore
	}

	return domain.ComputeScoreStats(scores)
}
