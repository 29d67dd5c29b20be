package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addFeedIndexes adds the composite indexes the two feed queries depend on.
//
// Trending filters on (visibility, created_at >= window) and orders by
// created_at descending; the candidate-pool query filters on visibility and
// orders by (score DESC, created_at DESC). Both are served by partial
// composite indexes restricted to public posts, which keeps the index small
// when most content is private.
func addFeedIndexes() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_feed_indexes",
		Migrate: func(tx *gorm.DB) error {
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_posts_public_created_at
					ON posts (created_at DESC)
					WHERE visibility = 'public'`,
				`CREATE INDEX IF NOT EXISTS idx_posts_public_score
					ON posts (score DESC, created_at DESC)
					WHERE visibility = 'public'`,
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_posts_public_created_at`).Error
			_ = tx.Exec(`DROP INDEX IF EXISTS idx_posts_public_score`).Error
			return nil
		},
	}
}
