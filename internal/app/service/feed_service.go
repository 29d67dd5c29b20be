package service

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"feed-ranking-service/internal/domain"
)

// TrendingAlgorithmName is the algorithm label attached to trending pages.
// Trending always reports this fixed label, not the active preset: the
// ranking is a plain score sort independent of which preset produced it.
const TrendingAlgorithmName domain.Algorithm = "engagement-scoring"

// FeedConfig holds feed assembly settings.
type FeedConfig struct {
	// TrendingWindow bounds the trending candidate query (default 24h).
	TrendingWindow time.Duration

	// TrendingPoolSize caps the trending window fetch.
	TrendingPoolSize int

	// PoolBuffer is the number of candidates fetched beyond limit+offset for
	// personalized feeds, so that pagination within one session stays stable.
	PoolBuffer int

	// SessionTTL is how long a drawn personalized ordering is kept. Within
	// the TTL, pages for the same (user, weights) come from one draw and
	// never overlap.
	SessionTTL time.Duration
}

// DefaultFeedConfig returns the feed settings used when config is silent.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		TrendingWindow:   24 * time.Hour,
		TrendingPoolSize: 500,
		PoolBuffer:       50,
		SessionTTL:       2 * time.Minute,
	}
}

// FeedService assembles trending and personalized feed pages.
//
// It is the only component that talks to the persistence collaborator; the
// scoring engine never calls back into it.
type FeedService struct {
	repo       domain.PostRepository
	reputation domain.ReputationProvider // nil disables lookups
	scoring    *ScoringService
	cache      domain.Cache // nil disables session caching
	cfg        FeedConfig
	logger     *zap.Logger

	// Injection points for tests.
	now    func() time.Time
	newRng func() *rand.Rand
}

// NewFeedService creates a FeedService.
func NewFeedService(
	repo domain.PostRepository,
	reputation domain.ReputationProvider,
	scoring *ScoringService,
	cache domain.Cache,
	cfg FeedConfig,
	logger *zap.Logger,
) *FeedService {
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 24 * time.Hour
	}
	if cfg.TrendingPoolSize <= 0 {
		cfg.TrendingPoolSize = 500
	}
	if cfg.PoolBuffer <= 0 {
		cfg.PoolBuffer = 50
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Minute
	}

	return &FeedService{
		repo:       repo,
		reputation: reputation,
		scoring:    scoring,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newRng: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// GetTrending assembles a page of the global trending feed: candidates from
// the last TrendingWindow, scored under the active config with the default
// author reputation, sorted by score descending.
//
// The operation never surfaces a hard error. A failing data layer degrades to
// an empty page with the Degraded marker set, so callers can distinguish
// "nothing trending" from "content unavailable".
func (s *FeedService) GetTrending(ctx context.Context, params domain.FeedParams) *domain.FeedPage {
	params.Validate()

	total, err := s.repo.CountPublic(ctx)
	if err != nil {
		s.logger.Warn("trending degraded: count failed", zap.Error(err))
		return domain.EmptyFeedPage(domain.FeedKindTrending, TrendingAlgorithmName, params, true)
	}
	if total == 0 {
		// Empty store is a valid, cheap state; skip the window query.
		return domain.EmptyFeedPage(domain.FeedKindTrending, TrendingAlgorithmName, params, false)
	}

	since := s.now().Add(-s.cfg.TrendingWindow)
	candidates, err := s.repo.FetchWindow(ctx, since, s.cfg.TrendingPoolSize)
	if err != nil {
		s.logger.Warn("trending degraded: window fetch failed", zap.Error(err))
		return domain.EmptyFeedPage(domain.FeedKindTrending, TrendingAlgorithmName, params, true)
	}

	scored := s.scoreCandidates(ctx, candidates, s.scoring.Snapshot())
	if scored == nil {
		// Context cancelled mid-loop; the caller is gone anyway.
		return domain.EmptyFeedPage(domain.FeedKindTrending, TrendingAlgorithmName, params, true)
	}

	// Stable sort: ties keep fetch order, which is createdAt descending.
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].EngagementScore > scored[b].EngagementScore
	})

	page := slicePage(scored, params)

	s.logger.Debug("trending feed assembled",
		zap.Int("candidates", len(candidates)),
		zap.Int("page_size", len(page)),
		zap.Int("offset", params.Offset),
	)

	return &domain.FeedPage{
		Posts:     page,
		Kind:      domain.FeedKindTrending,
		Algorithm: TrendingAlgorithmName,
		Limit:     params.Limit,
		Offset:    params.Offset,
		Count:     len(page),
		HasMore:   len(page) == params.Limit,
	}
}

// GenerateFeed assembles a page of a user's personalized feed.
//
// Candidates are over-fetched beyond limit+offset, scored, and ordered by one
// weighted-random draw over the whole pool (scores as unnormalized weights,
// floored to a small epsilon so zero-engagement posts stay selectable). The
// drawn ordering is cached per (user, weights) for SessionTTL, which makes
// pages within a session disjoint and gap-free. Offsets beyond the
// oversampled window return an empty page.
//
// A non-nil weights patch applies for this call only and never touches the
// process-wide config; the resulting page is labeled with the custom
// algorithm name.
func (s *FeedService) GenerateFeed(ctx context.Context, userID string, params domain.FeedParams, customWeights *domain.WeightsPatch) *domain.FeedPage {
	params.Validate()

	cfg := s.scoring.Snapshot()
	if customWeights != nil {
		custom := domain.AlgorithmCustom
		cfg = cfg.Merge(&domain.ConfigPatch{
			Algorithm: &custom,
			Weights:   customWeights,
		})
	}

	sessionKey := s.sessionKey(userID, &cfg.Weights)

	if session := s.loadSession(ctx, sessionKey); session != nil {
		return s.pageFromSession(session, params)
	}

	poolSize := params.Offset + params.Limit + s.cfg.PoolBuffer
	candidates, err := s.repo.FetchCandidatePool(ctx, userID, poolSize)
	if err != nil {
		s.logger.Warn("personalized feed degraded: pool fetch failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return domain.EmptyFeedPage(domain.FeedKindPersonalized, cfg.Algorithm, params, true)
	}
	if len(candidates) == 0 {
		return domain.EmptyFeedPage(domain.FeedKindPersonalized, cfg.Algorithm, params, false)
	}

	s.resolveReputations(ctx, candidates)

	scored := s.scoreCandidates(ctx, candidates, cfg)
	if scored == nil {
		return domain.EmptyFeedPage(domain.FeedKindPersonalized, cfg.Algorithm, params, true)
	}

	weights := make([]float64, len(scored))
	scores := make([]float64, len(scored))
	for i, sp := range scored {
		weights[i] = sp.EngagementScore
		scores[i] = sp.EngagementScore
	}

	order := domain.WeightedShuffle(weights, s.newRng())
	drawn := make([]domain.ScoredPost, len(order))
	for i, idx := range order {
		drawn[i] = scored[idx]
	}

	session := &feedSession{
		Posts:     drawn,
		Algorithm: cfg.Algorithm,
		Weights:   cfg.Weights,
		Stats:     domain.ComputeScoreStats(scores),
		PoolSize:  len(candidates),
	}
	s.storeSession(ctx, sessionKey, session)

	s.logger.Debug("personalized feed drawn",
		zap.String("user_id", userID),
		zap.Int("pool_size", len(candidates)),
		zap.String("algorithm", string(cfg.Algorithm)),
	)

	return s.pageFromSession(session, params)
}

// scoreCandidates scores a candidate slice under one config snapshot, skipping
// candidates with invalid metrics so one bad record cannot blank a feed.
// Returns nil when the context is cancelled mid-loop.
func (s *FeedService) scoreCandidates(ctx context.Context, posts []*domain.Post, cfg *domain.ScoringConfig) []domain.ScoredPost {
	reference := s.now()

	scored := make([]domain.ScoredPost, 0, len(posts))
	for _, post := range posts {
		if ctx.Err() != nil {
			return nil
		}

		if err := post.Metrics.Validate(); err != nil {
			s.logger.Warn("skipping candidate with invalid metrics",
				zap.String("post_id", post.ID),
				zap.Error(err),
			)
			continue
		}

		score, _ := domain.Score(&post.Metrics, post.CreatedAt, post.AuthorReputation, cfg, reference)
		scored = append(scored, domain.ScoredPost{Post: post, EngagementScore: score})
	}

	return scored
}

// resolveReputations fills in author reputations with one batched lookup.
// Failures fall back to the default; a degraded reputation service must not
// degrade the feed.
func (s *FeedService) resolveReputations(ctx context.Context, posts []*domain.Post) {
	if s.reputation == nil {
		return
	}

	ids := make([]string, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			ids = append(ids, p.AuthorID)
		}
	}

	reputations, err := s.reputation.BatchLookup(ctx, ids)
	if err != nil {
		s.logger.Warn("reputation lookup failed, using defaults", zap.Error(err))
		return
	}

	for _, p := range posts {
		if rep, ok := reputations[p.AuthorID]; ok {
			p.AuthorReputation = rep
		} else {
			p.AuthorReputation = domain.DefaultAuthorReputation
		}
	}
}

// feedSession is one cached weighted draw over an over-fetched pool.
type feedSession struct {
	Posts     []domain.ScoredPost  `json:"posts"`
	Algorithm domain.Algorithm     `json:"algorithm"`
	Weights   domain.MetricWeights `json:"weights"`
	Stats     domain.ScoreStats    `json:"stats"`
	PoolSize  int                  `json:"pool_size"`
}

func (s *FeedService) pageFromSession(session *feedSession, params domain.FeedParams) *domain.FeedPage {
	page := slicePage(session.Posts, params)

	weights := session.Weights
	stats := session.Stats

	return &domain.FeedPage{
		Posts:     page,
		Kind:      domain.FeedKindPersonalized,
		Algorithm: session.Algorithm,
		Limit:     params.Limit,
		Offset:    params.Offset,
		Count:     len(page),
		HasMore:   len(page) == params.Limit,
		Weights:   &weights,
		Stats:     &stats,
	}
}

func (s *FeedService) loadSession(ctx context.Context, key string) *feedSession {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}

	var session feedSession
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("discarding corrupt feed session", zap.String("key", key), zap.Error(err))
		return nil
	}

	return &session
}

func (s *FeedService) storeSession(ctx context.Context, key string, session *feedSession) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Error("marshaling feed session", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cfg.SessionTTL); err != nil {
		// Cache loss only costs pagination stability, not correctness.
		s.logger.Warn("storing feed session failed", zap.String("key", key), zap.Error(err))
	}
}

// sessionKey derives the cache key for one (user, weights) feed session.
func (s *FeedService) sessionKey(userID string, w *domain.MetricWeights) string {
	h := fnv.New64a()
	buf := make([]byte, 8)
	for _, v := range []float64{
		w.Likes, w.Dislikes, w.Agrees, w.Disagrees, w.Comments,
		w.Shares, w.Views, w.CommunityNotes, w.Reports,
	} {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		_, _ = h.Write(buf)
	}

	return fmt.Sprintf("feed:session:%s:%x", userID, h.Sum64())
}

func slicePage(posts []domain.ScoredPost, params domain.FeedParams) []domain.ScoredPost {
	if params.Offset >= len(posts) {
		return []domain.ScoredPost{}
	}

	end := params.Offset + params.Limit
	if end > len(posts) {
		end = len(posts)
	}

	return posts[params.Offset:end]
}
