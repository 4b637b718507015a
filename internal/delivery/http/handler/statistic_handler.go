package handler

import (
	"github.com/census-statistics-service/internal/pkg/utils"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatisticHandler exposes statistic listing endpoints.
type StatisticHandler struct {
	statisticUC *usecase.StatisticUseCase
	logger      *zap.Logger
}

// NewStatisticHandler creates a new StatisticHandler.
func NewStatisticHandler(statisticUC *usecase.StatisticUseCase, logger *zap.Logger) *StatisticHandler {
	return &StatisticHandler{
		statisticUC: statisticUC,
		logger:      logger,
	}
}

// List returns every stored statistic.
func (h *StatisticHandler) List(c *fiber.Ctx) error {
	stats, err := h.statisticUC.List(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, fiber.Map{
		"statistics": stats,
	}, &utils.Meta{
		Total: len(stats),
	})
}

// Get returns one statistic by id.
func (h *StatisticHandler) Get(c *fiber.Ctx) error {
	statisticID, err := parseStatisticID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	stat, err := h.statisticUC.GetByID(c.Context(), statisticID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, stat, nil)
}
