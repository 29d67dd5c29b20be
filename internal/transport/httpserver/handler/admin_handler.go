package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"feed-ranking-service/internal/app/service"
	"feed-ranking-service/internal/domain"
	"feed-ranking-service/internal/transport/httpserver/dto"
)

// metricsWindowSize caps the candidate sample the metrics endpoint scores.
const metricsWindowSize = 500

// SessionStore invalidates cached feed sessions. Config changes clear it so
// pages drawn under the old config cannot be served after the switch.
type SessionStore interface {
	Clear(ctx context.Context) error
}

// AdminHandler handles scoring configuration and maintenance endpoints.
type AdminHandler struct {
	scoringService *service.ScoringService
	rescoreService *service.RescoreService
	repo           domain.PostRepository
	sessions       SessionStore // nil when caching is disabled
	logger         *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	scoringSvc *service.ScoringService,
	rescoreSvc *service.RescoreService,
	repo domain.PostRepository,
	sessions SessionStore,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		scoringService: scoringSvc,
		rescoreService: rescoreSvc,
		repo:           repo,
		sessions:       sessions,
		logger:         logger,
	}
}

// ApplyPreset handles POST /api/v1/admin/scoring/presets/:name
func (h *AdminHandler) ApplyPreset(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "preset name is required",
			Code:  "MISSING_PRESET",
		})
	}

	if err := h.scoringService.ApplyPreset(name); err != nil {
		if errors.Is(err, domain.ErrUnknownPreset) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "unknown preset: " + name,
				Code:  "PRESET_NOT_FOUND",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "PRESET_FAILED",
		})
	}

	h.clearSessions(c.Context())
	h.logger.Info("scoring preset applied", zap.String("preset", name))

	return c.JSON(dto.ConfigResponse{Config: h.scoringService.GetConfig()})
}

// UpdateConfig handles PATCH /api/v1/admin/scoring/config
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	var req dto.ConfigUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	updated, err := h.scoringService.UpdateConfig(&req.ConfigPatch)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownPreset) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_ALGORITHM",
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "CONFIG_UPDATE_FAILED",
		})
	}

	h.clearSessions(c.Context())
	h.logger.Info("scoring config updated", zap.String("algorithm", string(updated.Algorithm)))

	return c.JSON(dto.ConfigResponse{Config: updated})
}

// GetConfig handles GET /api/v1/admin/scoring/config
func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	return c.JSON(dto.ConfigResponse{Config: h.scoringService.GetConfig()})
}

// Metrics handles GET /api/v1/admin/scoring/metrics
//
// Scores a recent candidate window under the active config and reports the
// score distribution, so operators can sanity-check a config before and
// after a switch.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	posts, err := h.repo.FetchCandidatePool(c.Context(), "", metricsWindowSize)
	if err != nil {
		h.logger.Error("metrics window fetch failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to load content window",
			Code:  "INTERNAL_ERROR",
		})
	}

	stats := h.scoringService.AlgorithmMetrics(posts)

	return c.JSON(dto.MetricsResponse{
		Algorithm:  string(h.scoringService.Snapshot().Algorithm),
		WindowSize: len(posts),
		Stats:      stats,
	})
}

// Rescore handles POST /api/v1/admin/rescore
func (h *AdminHandler) Rescore(c *fiber.Ctx) error {
	h.logger.Info("manual rescore triggered")

	result, err := h.rescoreService.RescoreRecent(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "RESCORE_FAILED",
		})
	}

	return c.JSON(dto.FromRescoreResult(result))
}

func (h *AdminHandler) clearSessions(ctx context.Context) {
	if h.sessions == nil {
		return
	}

	if err := h.sessions.Clear(ctx); err != nil {
		// Stale sessions expire on their own TTL; losing the eager clear is
		// worth logging, not failing the request.
		h.logger.Warn("failed to clear feed sessions", zap.Error(err))
	}
}
