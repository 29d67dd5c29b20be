package domain

import (
	"context"
	"time"
)

// PostRepository defines the interface for post persistence operations.
// Implementations: internal/infra/postgres/repository.go
type PostRepository interface {
	// CountPublic returns the number of public posts. Feed assembly uses it
	// to short-circuit on an empty store before running window queries.
	CountPublic(ctx context.Context) (int64, error)

	// FetchWindow returns public posts created at or after since, newest
	// first, capped at limit. Engagement counters and comment aggregates are
	// fully populated.
	FetchWindow(ctx context.Context, since time.Time, limit int) ([]*Post, error)

	// FetchCandidatePool returns up to poolSize public posts for a
	// personalized feed, newest first, excluding the user's own posts.
	FetchCandidatePool(ctx context.Context, userID string, poolSize int) ([]*Post, error)

	// GetByID retrieves a single post by its internal ID. Returns nil when
	// not found.
	GetByID(ctx context.Context, id string) (*Post, error)

	// Upsert creates or updates a single post.
	Upsert(ctx context.Context, post *Post) error

	// BulkUpdateScores persists freshly computed scores by post ID.
	BulkUpdateScores(ctx context.Context, scores map[string]float64) error
}

// ReputationProvider defines the interface for the author reputation service.
// Implementations: internal/infra/reputation/client.go
type ReputationProvider interface {
	// BatchLookup resolves reputations (0-100) for the given author IDs.
	// Missing authors are absent from the result map; callers fall back to
	// DefaultAuthorReputation.
	BatchLookup(ctx context.Context, authorIDs []string) (map[string]int, error)

	// HealthCheck verifies the reputation service is accessible.
	HealthCheck(ctx context.Context) error
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}
