package handlers

import (
	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InvestmentHandler struct {
	investments *service.InvestmentService
	logger      *zap.Logger
}

func NewInvestmentHandler(investments *service.InvestmentService, logger *zap.Logger) *InvestmentHandler {
	return &InvestmentHandler{
		investments: investments,
		logger:      logger,
	}
}

// Sync godoc
// @Summary Sync investments
// @Description Store positions not seen before for every connection of the user
// @Tags investments
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.InvestmentSyncResponse
// @Router /api/v1/investments/sync [post]
func (h *InvestmentHandler) Sync(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.investments.Sync(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.logger, err, "Failed to sync investments")
	}
	return c.JSON(resp)
}

// List godoc
// @Summary List stored investments
// @Tags investments
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.InvestmentResponse
// @Router /api/v1/investments [get]
func (h *InvestmentHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.investments.List(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.logger, err, "Failed to list investments")
	}
	return c.JSON(resp)
}
