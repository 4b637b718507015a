package handler

import (
	"github.com/census-statistics-service/internal/pkg/errors"
	"github.com/census-statistics-service/internal/pkg/utils"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/census-statistics-service/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POIHandler exposes point-of-interest recompute and listing endpoints.
type POIHandler struct {
	recomputeUC *usecase.RecomputeUseCase
	statisticUC *usecase.StatisticUseCase
	logger      *zap.Logger
}

// NewPOIHandler creates a new POIHandler.
func NewPOIHandler(recomputeUC *usecase.RecomputeUseCase, statisticUC *usecase.StatisticUseCase, logger *zap.Logger) *POIHandler {
	return &POIHandler{
		recomputeUC: recomputeUC,
		statisticUC: statisticUC,
		logger:      logger,
	}
}

// Recompute runs a synchronous POI recompute for one statistic.
func (h *POIHandler) Recompute(c *fiber.Ctx) error {
	statisticID, err := parseStatisticID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.RecomputeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	result, err := h.recomputeUC.Run(c.Context(), statisticID, req.Force)
	if err != nil {
		h.logger.Error("POI recompute failed",
			zap.String("statistic_id", statisticID), zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// Enqueue publishes an asynchronous POI recompute job for one statistic.
func (h *POIHandler) Enqueue(c *fiber.Ctx) error {
	statisticID, err := parseStatisticID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.RecomputeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	if err := h.statisticUC.EnqueueRecompute(c.Context(), statisticID, req.Force); err != nil {
		return utils.SendError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"statistic_id": statisticID,
		"status":       "enqueued",
	})
}

// List returns the active POIs of one statistic.
func (h *POIHandler) List(c *fiber.Ctx) error {
	statisticID, err := parseStatisticID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	pois, err := h.statisticUC.ListPOIs(c.Context(), statisticID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{
		"pois": pois,
	}, &utils.Meta{
		Total: len(pois),
	})
}

func parseStatisticID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.ErrInvalidStatisticID
	}
	return id, nil
}
