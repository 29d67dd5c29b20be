package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"feed-ranking-service/internal/domain"
)

// Repository implements domain.PostRepository using PostgreSQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountPublic returns the number of public posts.
func (r *Repository) CountPublic(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Where("visibility = ?", string(domain.VisibilityPublic)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting public posts: %w", err)
	}

	return count, nil
}

// FetchWindow returns public posts created at or after since, newest first.
// The createdAt ordering doubles as the tie-break order for equal scores
// downstream, so it must stay deterministic.
func (r *Repository) FetchWindow(ctx context.Context, since time.Time, limit int) ([]*domain.Post, error) {
	var models []PostModel
	err := r.db.WithContext(ctx).
		Where("visibility = ?", string(domain.VisibilityPublic)).
		Where("created_at >= ?", since).
		Order("created_at DESC, id").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("fetching posts window: %w", err)
	}

	return ToDomainSlice(models), nil
}

// FetchCandidatePool returns up to poolSize public posts for a personalized
// feed, excluding the requesting user's own posts and favoring recent,
// high-scoring content via the persisted score column.
func (r *Repository) FetchCandidatePool(ctx context.Context, userID string, poolSize int) ([]*domain.Post, error) {
	var models []PostModel
	err := r.db.WithContext(ctx).
		Where("visibility = ?", string(domain.VisibilityPublic)).
		Where("author_id <> ?", userID).
		Order("score DESC, created_at DESC, id").
		Limit(poolSize).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("fetching candidate pool: %w", err)
	}

	return ToDomainSlice(models), nil
}

// GetByID retrieves a single post by its internal ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model PostModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}

		return nil, fmt.Errorf("getting post by id: %w", err)
	}

	return model.ToDomain(), nil
}

// Upsert creates or updates a single post.
func (r *Repository) Upsert(ctx context.Context, post *domain.Post) error {
	model := FromDomain(post)
	model.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "body", "tags", "visibility",
			"likes", "dislikes", "agrees", "disagrees", "comments",
			"shares", "views", "community_notes", "reports",
			"comment_count", "comment_likes", "comment_dislikes",
			"comment_agrees", "comment_disagrees",
			"author_reputation", "score", "updated_at",
		}),
	}).Create(model).Error

	if err != nil {
		return fmt.Errorf("upserting post: %w", err)
	}

	// Update the domain object with database-generated fields
	post.ID = model.ID
	post.CreatedAt = model.CreatedAt
	post.UpdatedAt = model.UpdatedAt

	return nil
}

// BulkUpdateScores persists freshly computed scores by post ID. Scores are
// written in one transaction so a partially applied rescore never becomes
// visible to the stored ORDER BY.
func (r *Repository) BulkUpdateScores(ctx context.Context, scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}

	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, score := range scores {
			err := tx.Model(&PostModel{}).
				Where("id = ?", id).
				Updates(map[string]any{"score": score, "updated_at": now}).Error
			if err != nil {
				return fmt.Errorf("updating score for post %s: %w", id, err)
			}
		}

		return nil
	})
}
