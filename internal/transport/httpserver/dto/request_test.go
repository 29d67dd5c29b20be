package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-ranking-service/internal/domain"
	"feed-ranking-service/internal/validator"
)

func newTestValidator() *validator.Validator {
	return validator.New()
}

// TestFeedRequest_Validation_Valid tests valid feed requests.
func TestFeedRequest_Validation_Valid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		req  FeedRequest
	}{
		{
			name: "zero values are valid (defaults apply downstream)",
			req:  FeedRequest{},
		},
		{
			name: "explicit limit and offset",
			req:  FeedRequest{Limit: 20, Offset: 40},
		},
		{
			name: "limit at the cap",
			req:  FeedRequest{Limit: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate(&tt.req))
		})
	}
}

// TestFeedRequest_Validation_Invalid tests rejected feed requests.
func TestFeedRequest_Validation_Invalid(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		req  FeedRequest
	}{
		{
			name: "limit above the cap",
			req:  FeedRequest{Limit: 101},
		},
		{
			name: "negative offset",
			req:  FeedRequest{Offset: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.Validate(&tt.req))
		})
	}
}

// TestFeedRequest_ToFeedParams verifies bound correction on conversion.
func TestFeedRequest_ToFeedParams(t *testing.T) {
	tests := []struct {
		name       string
		req        FeedRequest
		wantLimit  int
		wantOffset int
	}{
		{
			name:       "zero limit gets the default",
			req:        FeedRequest{},
			wantLimit:  20,
			wantOffset: 0,
		},
		{
			name:       "explicit values pass through",
			req:        FeedRequest{Limit: 50, Offset: 10},
			wantLimit:  50,
			wantOffset: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.req.ToFeedParams()
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

// TestConfigUpdateRequest_PartialUnmarshal verifies absent fields stay nil so
// the deep merge can tell "not sent" from "set to zero".
func TestConfigUpdateRequest_PartialUnmarshal(t *testing.T) {
	body := []byte(`{"weights":{"likes":2.5,"reports":0},"modifiers":{"quality_bias":true}}`)

	var req ConfigUpdateRequest
	require.NoError(t, json.Unmarshal(body, &req))

	require.NotNil(t, req.Weights)
	require.NotNil(t, req.Weights.Likes)
	assert.Equal(t, 2.5, *req.Weights.Likes)

	require.NotNil(t, req.Weights.Reports, "explicit zero must be present")
	assert.Equal(t, 0.0, *req.Weights.Reports)

	assert.Nil(t, req.Weights.Shares, "absent fields stay nil")
	require.NotNil(t, req.Modifiers)
	require.NotNil(t, req.Modifiers.QualityBias)
	assert.True(t, *req.Modifiers.QualityBias)

	assert.Nil(t, req.Adjustments)
	assert.Nil(t, req.Algorithm)
}

// TestGenerateFeedRequest_Unmarshal verifies the weights override body shape.
func TestGenerateFeedRequest_Unmarshal(t *testing.T) {
	body := []byte(`{"weights":{"comments":4.0}}`)

	var req GenerateFeedRequest
	require.NoError(t, json.Unmarshal(body, &req))

	require.NotNil(t, req.Weights)
	require.NotNil(t, req.Weights.Comments)
	assert.Equal(t, 4.0, *req.Weights.Comments)
	assert.Nil(t, req.Weights.Likes)

	var empty GenerateFeedRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Nil(t, empty.Weights)
}

// TestFromFeedPage_EmptyPage verifies empty pages serialize with an empty
// posts array, not null.
func TestFromFeedPage_EmptyPage(t *testing.T) {
	page := domain.EmptyFeedPage(domain.FeedKindTrending, domain.AlgorithmBalanced, domain.FeedParams{Limit: 20}, false)

	resp := FromFeedPage(page)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"posts":[]`)
	assert.Equal(t, 0, resp.Pagination.Count)
	assert.False(t, resp.Degraded)
}
