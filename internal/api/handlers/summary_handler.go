package handlers

import (
	"fmt"
	"time"

	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SummaryHandler struct {
	summary *service.SummaryService
	logger  *zap.Logger
}

func NewSummaryHandler(summary *service.SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		summary: summary,
		logger:  logger,
	}
}

func queryYear(c *fiber.Ctx) (int, error) {
	return queryInt(c, "year", time.Now().Year())
}

func queryYearMonth(c *fiber.Ctx) (int, int, error) {
	year, err := queryYear(c)
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(c, "month", 0)
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// Monthly godoc
// @Summary Monthly summaries
// @Description Twelve rows with incomes, expenses and balance, manual and ingested data merged
// @Tags summary
// @Produce json
// @Param year query int false "Year (defaults to the current one)"
// @Security Bearer
// @Success 200 {array} dto.MonthlySummaryResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/monthly [get]
func (h *SummaryHandler) Monthly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, err := queryYear(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.summary.Monthly(c.UserContext(), userID, year)
	if err != nil {
		return fail(c, h.logger, err, "Failed to build monthly summary")
	}
	return c.JSON(resp)
}

// Yearly godoc
// @Summary Yearly summary
// @Tags summary
// @Produce json
// @Param year query int false "Year (defaults to the current one)"
// @Security Bearer
// @Success 200 {object} dto.YearlySummaryResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/yearly [get]
func (h *SummaryHandler) Yearly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, err := queryYear(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.summary.Yearly(c.UserContext(), userID, year)
	if err != nil {
		return fail(c, h.logger, err, "Failed to build yearly summary")
	}
	return c.JSON(resp)
}

// Categories godoc
// @Summary Per-category totals for a month
// @Tags summary
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month"
// @Security Bearer
// @Success 200 {object} dto.CategorySummaryResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/categories [get]
func (h *SummaryHandler) Categories(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, month, err := queryYearMonth(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.summary.ByCategory(c.UserContext(), userID, year, month)
	if err != nil {
		return fail(c, h.logger, err, "Failed to build category summary")
	}
	return c.JSON(resp)
}

// Evolution godoc
// @Summary Month by month totals, counts and averages
// @Tags summary
// @Produce json
// @Param year query int false "Year (defaults to the current one)"
// @Security Bearer
// @Success 200 {object} dto.EvolutionResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/evolution [get]
func (h *SummaryHandler) Evolution(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, err := queryYear(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.summary.Evolution(c.UserContext(), userID, year)
	if err != nil {
		return fail(c, h.logger, err, "Failed to build evolution")
	}
	return c.JSON(resp)
}

// ExportMonthly godoc
// @Summary Export a month as XLSX
// @Tags summary
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year"
// @Param month query int true "Month"
// @Security Bearer
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/export-monthly [get]
func (h *SummaryHandler) ExportMonthly(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, month, err := queryYearMonth(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	data, err := h.summary.ExportMonthly(c.UserContext(), userID, year, month)
	if err != nil {
		return fail(c, h.logger, err, "Failed to export monthly report")
	}
	return sendXLSX(c, service.ExportFileName("relatorio", year, month), data)
}

// ExportMonthlyByCategory godoc
// @Summary Export a month's category totals as XLSX
// @Tags summary
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year"
// @Param month query int true "Month"
// @Security Bearer
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary/export-monthly-by-category [get]
func (h *SummaryHandler) ExportMonthlyByCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	year, month, err := queryYearMonth(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	data, err := h.summary.ExportMonthlyByCategory(c.UserContext(), userID, year, month)
	if err != nil {
		return fail(c, h.logger, err, "Failed to export category report")
	}
	return sendXLSX(c, service.ExportFileName("relatorio-categorias", year, month), data)
}

func sendXLSX(c *fiber.Ctx, name string, data []byte) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(data)
}
