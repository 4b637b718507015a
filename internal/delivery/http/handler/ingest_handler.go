package handler

import (
	"github.com/census-statistics-service/internal/pkg/utils"
	"github.com/census-statistics-service/internal/pkg/validator"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/census-statistics-service/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IngestHandler exposes the census ingestion pipeline.
type IngestHandler struct {
	ingestUC *usecase.IngestUseCase
	logger   *zap.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestUC *usecase.IngestUseCase, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestUC: ingestUC,
		logger:   logger,
	}
}

// Ingest runs one ingestion for a census table group.
func (h *IngestHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.ingestUC.Run(c.Context(), req)
	if err != nil {
		h.logger.Error("Ingestion failed",
			zap.String("group", req.Group), zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result.Statistics),
	})
}
