package handlers

import (
	"strings"

	"wallet-api/internal/ledger"
	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactions *service.TransactionService
	logger       *zap.Logger
}

func NewTransactionHandler(transactions *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// List godoc
// @Summary List ingested transactions by classified direction
// @Description Excluded transactions (bill payments, own-account transfers) are left out; amounts are non-negative
// @Tags transactions
// @Produce json
// @Param direction query string true "INCOME or EXPENSE"
// @Param year query int false "Year"
// @Param month query int false "Month (needs year)"
// @Security Bearer
// @Success 200 {array} dto.EntryResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	direction := ledger.Direction(strings.ToUpper(c.Query("direction")))
	filter, err := periodFilter(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.transactions.ListClassified(c.UserContext(), userID, direction, filter)
	if err != nil {
		return fail(c, h.logger, err, "Failed to list transactions")
	}
	return c.JSON(resp)
}
