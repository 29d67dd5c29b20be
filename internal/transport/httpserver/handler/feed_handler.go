// Package handler provides HTTP handlers for the API.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/internal/transport/httpserver/dto"
	"feed-ranking-service/internal/validator"
)

// FeedHandler handles feed-related HTTP requests.
type FeedHandler struct {
	feedService *service.FeedService
	validator   *validator.Validator
	logger      *zap.Logger
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedSvc *service.FeedService, v *validator.Validator, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feedService: feedSvc,
		validator:   v,
		logger:      logger,
	}
}

// Trending handles GET /api/v1/feed/trending
func (h *FeedHandler) Trending(c *fiber.Ctx) error {
	var req dto.FeedRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	page := h.feedService.GetTrending(c.Context(), req.ToFeedParams())

	return c.JSON(dto.FromFeedPage(page))
}

// Personalized handles GET /api/v1/users/:user_id/feed
func (h *FeedHandler) Personalized(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "user_id is required",
			Code:  "MISSING_USER_ID",
		})
	}

	var req dto.FeedRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	page := h.feedService.GenerateFeed(c.Context(), userID, req.ToFeedParams(), nil)

	return c.JSON(dto.FromFeedPage(page))
}

// PersonalizedWithWeights handles POST /api/v1/users/:user_id/feed
//
// The body may carry a partial weights override applying to this request
// only; the process-wide scoring config is never touched.
func (h *FeedHandler) PersonalizedWithWeights(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "user_id is required",
			Code:  "MISSING_USER_ID",
		})
	}

	var req dto.FeedRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	var body dto.GenerateFeedRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	page := h.feedService.GenerateFeed(c.Context(), userID, req.ToFeedParams(), body.Weights)

	return c.JSON(dto.FromFeedPage(page))
}
