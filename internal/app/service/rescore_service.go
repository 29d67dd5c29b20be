package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"feed-ranking-service/internal/domain"
)

// RescoreService recomputes and persists stored engagement scores for recent
// posts. Feed assembly always scores fresh; the persisted column only backs
// observability queries and ad-hoc ORDER BY score inspection, and drifts as
// time decay advances, so it is refreshed periodically.
type RescoreService struct {
	repo    domain.PostRepository
	scoring *ScoringService
	window  time.Duration
	limit   int
	logger  *zap.Logger
}

// NewRescoreService creates a RescoreService covering posts created within
// window (default 7 days), at most limit per run.
func NewRescoreService(repo domain.PostRepository, scoring *ScoringService, window time.Duration, limit int, logger *zap.Logger) *RescoreService {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	if limit <= 0 {
		limit = 1000
	}

	return &RescoreService{
		repo:    repo,
		scoring: scoring,
		window:  window,
		limit:   limit,
		logger:  logger,
	}
}

// RescoreResult holds the outcome of one rescore run.
type RescoreResult struct {
	Scanned  int
	Updated  int
	Duration time.Duration
}

// RescoreRecent recomputes scores for recent posts and persists them in one
// batched update. Posts with invalid metrics are skipped, not fatal.
func (s *RescoreService) RescoreRecent(ctx context.Context) (*RescoreResult, error) {
	start := time.Now()

	since := time.Now().UTC().Add(-s.window)
	posts, err := s.repo.FetchWindow(ctx, since, s.limit)
	if err != nil {
		return nil, fmt.Errorf("fetching posts to rescore: %w", err)
	}

	scored := s.scoring.BatchCalculateScores(posts)

	scores := make(map[string]float64, len(scored))
	for _, sp := range scored {
		scores[sp.Post.ID] = sp.EngagementScore
	}

	if len(scores) > 0 {
		if err := s.repo.BulkUpdateScores(ctx, scores); err != nil {
			return nil, fmt.Errorf("persisting rescored posts: %w", err)
		}
	}

	result := &RescoreResult{
		Scanned:  len(posts),
		Updated:  len(scores),
		Duration: time.Since(start),
	}

	s.logger.Info("rescore completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("updated", result.Updated),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
