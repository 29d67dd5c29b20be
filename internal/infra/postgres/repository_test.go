package postgres

import (
	"context"
	"testing"
	"time"

	"feed-ranking-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connected GORM DB
//
// Prerequisites:
//   - Docker must be running
//   - Run: docker-compose up postgres
//
// OR
//   - Skip tests with: go test -short
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR use existing postgres: docker-compose up postgres
3. OR skip integration tests: go test -short

`, err)
	}

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	// Connect to database
	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: nil, // Silent logger for tests
	})
	require.NoError(t, err, "Failed to connect to test database")

	// Run migrations
	err = db.AutoMigrate(&PostModel{})
	require.NoError(t, err, "Failed to run migrations")

	// Cleanup function
	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

// createTestPost is a factory function for creating test posts
func createTestPost(authorID string, createdAt time.Time) *domain.Post {
	return &domain.Post{
		AuthorID:   authorID,
		Title:      "Test Title",
		Body:       "Test body",
		Tags:       []string{"tag1", "tag2"},
		Visibility: domain.VisibilityPublic,
		Metrics: domain.EngagementMetrics{
			Likes:    10,
			Comments: 3,
			Views:    100,
		},
		AuthorReputation: 70,
		CreatedAt:        createdAt,
	}
}

// TestUpsert_InsertNew verifies that Upsert creates a new record
func TestUpsert_InsertNew(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	post := createTestPost("author-1", time.Now().UTC())

	err := repo.Upsert(ctx, post)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID, "ID should be generated")
	assert.False(t, post.CreatedAt.IsZero(), "CreatedAt should be set")
	assert.False(t, post.UpdatedAt.IsZero(), "UpdatedAt should be set")

	// Verify record exists in database
	var model PostModel
	err = db.Where("id = ?", post.ID).First(&model).Error
	require.NoError(t, err)
	assert.Equal(t, "Test Title", model.Title)
	assert.Equal(t, 10, model.Likes)
}

// TestUpsert_UpdateExisting verifies that Upsert updates an existing record
func TestUpsert_UpdateExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	post := createTestPost("author-1", time.Now().UTC())
	err := repo.Upsert(ctx, post)
	require.NoError(t, err)

	originalID := post.ID
	originalUpdatedAt := post.UpdatedAt

	// Wait to ensure UpdatedAt will be different
	time.Sleep(10 * time.Millisecond)

	post.Title = "Updated Title"
	post.Metrics.Likes = 200
	err = repo.Upsert(ctx, post)
	require.NoError(t, err)

	assert.Equal(t, originalID, post.ID, "ID should remain unchanged")
	assert.True(t, post.UpdatedAt.After(originalUpdatedAt), "UpdatedAt should be newer")

	var model PostModel
	err = db.Where("id = ?", post.ID).First(&model).Error
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", model.Title)
	assert.Equal(t, 200, model.Likes)

	// Update-on-conflict, not insert
	var count int64
	err = db.Model(&PostModel{}).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestCountPublic verifies private posts are excluded from the count
func TestCountPublic(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	public := createTestPost("author-1", time.Now().UTC())
	private := createTestPost("author-2", time.Now().UTC())
	private.Visibility = domain.VisibilityPrivate

	require.NoError(t, repo.Upsert(ctx, public))
	require.NoError(t, repo.Upsert(ctx, private))

	count, err := repo.CountPublic(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// TestFetchWindow verifies the window filter and the newest-first ordering
func TestFetchWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	recent := createTestPost("author-1", now.Add(-1*time.Hour))
	recent.Title = "recent"
	older := createTestPost("author-2", now.Add(-6*time.Hour))
	older.Title = "older"
	stale := createTestPost("author-3", now.Add(-48*time.Hour))
	stale.Title = "stale"
	private := createTestPost("author-4", now.Add(-1*time.Hour))
	private.Visibility = domain.VisibilityPrivate

	for _, p := range []*domain.Post{recent, older, stale, private} {
		require.NoError(t, repo.Upsert(ctx, p))
	}

	posts, err := repo.FetchWindow(ctx, now.Add(-24*time.Hour), 100)
	require.NoError(t, err)

	require.Len(t, posts, 2, "stale and private posts are excluded")
	assert.Equal(t, "recent", posts[0].Title, "newest first")
	assert.Equal(t, "older", posts[1].Title)
}

// TestFetchWindow_LimitApplied verifies the pool cap
func TestFetchWindow_LimitApplied(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		post := createTestPost("author-1", now.Add(-time.Duration(i)*time.Minute))
		require.NoError(t, repo.Upsert(ctx, post))
	}

	posts, err := repo.FetchWindow(ctx, now.Add(-time.Hour), 5)
	require.NoError(t, err)
	assert.Len(t, posts, 5)
}

// TestFetchCandidatePool verifies own posts are excluded and the score
// ordering is applied
func TestFetchCandidatePool(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	own := createTestPost("user-1", now)
	low := createTestPost("author-2", now)
	low.Score = 10
	high := createTestPost("author-3", now)
	high.Score = 90

	for _, p := range []*domain.Post{own, low, high} {
		require.NoError(t, repo.Upsert(ctx, p))
	}

	posts, err := repo.FetchCandidatePool(ctx, "user-1", 100)
	require.NoError(t, err)

	require.Len(t, posts, 2, "requesting user's own posts are excluded")
	assert.Equal(t, "author-3", posts[0].AuthorID, "highest score first")
	assert.Equal(t, "author-2", posts[1].AuthorID)
}

// TestGetByID_NotFound verifies nil, nil on missing rows
func TestGetByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	post, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, post)
}

// TestBulkUpdateScores verifies scores land on the right rows
func TestBulkUpdateScores(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	a := createTestPost("author-1", now)
	b := createTestPost("author-2", now)
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, b))

	err := repo.BulkUpdateScores(ctx, map[string]float64{
		a.ID: 42.5,
		b.ID: 17.25,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.5, got.Score)

	got, err = repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 17.25, got.Score)
}

// TestBulkUpdateScores_Empty verifies handling of empty input
func TestBulkUpdateScores_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	err := repo.BulkUpdateScores(context.Background(), nil)
	assert.NoError(t, err, "Nil map should not cause error")

	err = repo.BulkUpdateScores(context.Background(), map[string]float64{})
	assert.NoError(t, err, "Empty map should not cause error")
}

// TestMetricsRoundTrip verifies every engagement counter survives the model
// mapping, comment aggregates included
func TestMetricsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	post := createTestPost("author-1", time.Now().UTC())
	post.Metrics = domain.EngagementMetrics{
		Likes:          1,
		Dislikes:       2,
		Agrees:         3,
		Disagrees:      4,
		Comments:       5,
		Shares:         6,
		Views:          7,
		CommunityNotes: 8,
		Reports:        9,
		CommentStats: domain.CommentEngagement{
			Count:     5,
			Likes:     10,
			Dislikes:  11,
			Agrees:    12,
			Disagrees: 13,
		},
	}

	require.NoError(t, repo.Upsert(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.Metrics, got.Metrics)
}
