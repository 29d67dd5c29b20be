package postgres

import (
	"time"

	"feed-ranking-service/internal/domain"

	"github.com/lib/pq"
)

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AuthorID   string         `gorm:"type:varchar(100);not null;index"`
	Title      string         `gorm:"type:varchar(500);not null"`
	Body       string         `gorm:"type:text"`
	Tags       pq.StringArray `gorm:"type:text[]"`
	Visibility string         `gorm:"type:varchar(20);not null;default:'public';index"`

	// Engagement counters
	Likes          int `gorm:"default:0"`
	Dislikes       int `gorm:"default:0"`
	Agrees         int `gorm:"default:0"`
	Disagrees      int `gorm:"default:0"`
	Comments       int `gorm:"default:0"`
	Shares         int `gorm:"default:0"`
	Views          int `gorm:"default:0"`
	CommunityNotes int `gorm:"default:0"`
	Reports        int `gorm:"default:0"`

	// Comment engagement aggregates
	CommentCount     int `gorm:"default:0"`
	CommentLikes     int `gorm:"default:0"`
	CommentDislikes  int `gorm:"default:0"`
	CommentAgrees    int `gorm:"default:0"`
	CommentDisagrees int `gorm:"default:0"`

	// Signals
	AuthorReputation int     `gorm:"default:70"`
	Score            float64 `gorm:"type:decimal(10,2);default:0;index"`

	// Timestamps
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for PostModel.
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts PostModel to domain.Post.
func (m *PostModel) ToDomain() *domain.Post {
	return &domain.Post{
		ID:         m.ID,
		AuthorID:   m.AuthorID,
		Title:      m.Title,
		Body:       m.Body,
		Tags:       m.Tags,
		Visibility: domain.Visibility(m.Visibility),
		Metrics: domain.EngagementMetrics{
			Likes:          m.Likes,
			Dislikes:       m.Dislikes,
			Agrees:         m.Agrees,
			Disagrees:      m.Disagrees,
			Comments:       m.Comments,
			Shares:         m.Shares,
			Views:          m.Views,
			CommunityNotes: m.CommunityNotes,
			Reports:        m.Reports,
			CommentStats: domain.CommentEngagement{
				Count:     m.CommentCount,
				Likes:     m.CommentLikes,
				Dislikes:  m.CommentDislikes,
				Agrees:    m.CommentAgrees,
				Disagrees: m.CommentDisagrees,
			},
		},
		AuthorReputation: m.AuthorReputation,
		Score:            m.Score,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain creates a PostModel from domain.Post.
func FromDomain(p *domain.Post) *PostModel {
	return &PostModel{
		ID:               p.ID,
		AuthorID:         p.AuthorID,
		Title:            p.Title,
		Body:             p.Body,
		Tags:             p.Tags,
		Visibility:       string(p.Visibility),
		Likes:            p.Metrics.Likes,
		Dislikes:         p.Metrics.Dislikes,
		Agrees:           p.Metrics.Agrees,
		Disagrees:        p.Metrics.Disagrees,
		Comments:         p.Metrics.Comments,
		Shares:           p.Metrics.Shares,
		Views:            p.Metrics.Views,
		CommunityNotes:   p.Metrics.CommunityNotes,
		Reports:          p.Metrics.Reports,
		CommentCount:     p.Metrics.CommentStats.Count,
		CommentLikes:     p.Metrics.CommentStats.Likes,
		CommentDislikes:  p.Metrics.CommentStats.Dislikes,
		CommentAgrees:    p.Metrics.CommentStats.Agrees,
		CommentDisagrees: p.Metrics.CommentStats.Disagrees,
		AuthorReputation: p.AuthorReputation,
		Score:            p.Score,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToDomainSlice converts PostModels to domain.Posts.
func ToDomainSlice(models []PostModel) []*domain.Post {
	posts := make([]*domain.Post, len(models))
	for i := range models {
		posts[i] = models[i].ToDomain()
	}

	return posts
}
