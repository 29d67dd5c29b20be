package domain

import (
	"time"
)

// Visibility controls who may see a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Post is the content entity as the ranking engine sees it: an identifier,
// its engagement counters and the temporal/author signals scoring needs.
// Posts are immutable for the duration of one feed-assembly call.
type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Visibility Visibility `json:"visibility"`

	Metrics EngagementMetrics `json:"metrics"`

	// AuthorReputation is 0-100; DefaultAuthorReputation when unknown.
	AuthorReputation int `json:"author_reputation"`

	// Score is the persisted engagement score, refreshed by the rescore job.
	// Feed assembly always recomputes fresh scores; this column only backs
	// the stored ORDER BY for observability queries.
	Score float64 `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPost creates a Post with timestamps and the default author reputation.
func NewPost(authorID, title string) *Post {
	now := time.Now().UTC()
	return &Post{
		AuthorID:         authorID,
		Title:            title,
		Tags:             []string{},
		Visibility:       VisibilityPublic,
		AuthorReputation: DefaultAuthorReputation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsPublic reports whether the post may appear in anonymous feeds.
func (p *Post) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// HoursSinceCreation returns the post age in fractional hours at now.
func (p *Post) HoursSinceCreation(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours()
}
