package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPostsTable creates the posts table with all indexes.
func createPostsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_posts",
		Migrate: func(tx *gorm.DB) error {
			// Create table
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS posts (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					author_id VARCHAR(100) NOT NULL,
					title VARCHAR(500) NOT NULL,
					body TEXT,
					tags TEXT[],
					visibility VARCHAR(20) NOT NULL DEFAULT 'public',

					-- Engagement counters
					likes INTEGER DEFAULT 0,
					dislikes INTEGER DEFAULT 0,
					agrees INTEGER DEFAULT 0,
					disagrees INTEGER DEFAULT 0,
					comments INTEGER DEFAULT 0,
					shares INTEGER DEFAULT 0,
					views INTEGER DEFAULT 0,
					community_notes INTEGER DEFAULT 0,
					reports INTEGER DEFAULT 0,

					-- Comment engagement aggregates
					comment_count INTEGER DEFAULT 0,
					comment_likes INTEGER DEFAULT 0,
					comment_dislikes INTEGER DEFAULT 0,
					comment_agrees INTEGER DEFAULT 0,
					comment_disagrees INTEGER DEFAULT 0,

					-- Signals
					author_reputation INTEGER DEFAULT 70,
					score DECIMAL(10,2) DEFAULT 0,

					-- Timestamps
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			// Create indexes
			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);",
				"CREATE INDEX IF NOT EXISTS idx_posts_visibility ON posts(visibility);",
				"CREATE INDEX IF NOT EXISTS idx_posts_score ON posts(score DESC);",
				"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS posts;").Error
		},
	}
}
