package handlers

import (
	"wallet-api/internal/dto"
	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type IncomeHandler struct {
	incomes *service.IncomeService
	logger  *zap.Logger
}

func NewIncomeHandler(incomes *service.IncomeService, logger *zap.Logger) *IncomeHandler {
	return &IncomeHandler{
		incomes: incomes,
		logger:  logger,
	}
}

// Create godoc
// @Summary Record a manual income
// @Tags incomes
// @Accept json
// @Produce json
// @Param request body dto.IncomeRequest true "Income"
// @Security Bearer
// @Success 201 {object} dto.IncomeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/incomes [post]
func (h *IncomeHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.IncomeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.incomes.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, h.logger, err, "Failed to create income")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List manual incomes
// @Tags incomes
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (needs year)"
// @Security Bearer
// @Success 200 {array} dto.IncomeResponse
// @Router /api/v1/incomes [get]
func (h *IncomeHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := periodFilter(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.incomes.List(c.UserContext(), userID, filter)
	if err != nil {
		return fail(c, h.logger, err, "Failed to list incomes")
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update a manual income
// @Tags incomes
// @Accept json
// @Produce json
// @Param id path string true "Income ID"
// @Param request body dto.IncomeRequest true "Income"
// @Security Bearer
// @Success 200 {object} dto.IncomeResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/incomes/{id} [put]
func (h *IncomeHandler) Update(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid income ID")
	}

	var req dto.IncomeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.incomes.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return fail(c, h.logger, err, "Failed to update income")
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a manual income
// @Tags incomes
// @Param id path string true "Income ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/incomes/{id} [delete]
func (h *IncomeHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid income ID")
	}

	if err := h.incomes.Delete(c.UserContext(), userID, id); err != nil {
		return fail(c, h.logger, err, "Failed to delete income")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type ExpenseHandler struct {
	expenses *service.ExpenseService
	logger   *zap.Logger
}

func NewExpenseHandler(expenses *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenses: expenses,
		logger:   logger,
	}
}

// Create godoc
// @Summary Record a manual expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.ExpenseRequest true "Expense"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.expenses.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, h.logger, err, "Failed to create expense")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List manual expenses
// @Tags expenses
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (needs year)"
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := periodFilter(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.expenses.List(c.UserContext(), userID, filter)
	if err != nil {
		return fail(c, h.logger, err, "Failed to list expenses")
	}
	return c.JSON(resp)
}

// ByCategory godoc
// @Summary Manual expense totals per category
// @Tags expenses
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (needs year)"
// @Security Bearer
// @Success 200 {array} dto.CategoryAggregateResponse
// @Router /api/v1/expenses/by-category [get]
func (h *ExpenseHandler) ByCategory(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := periodFilter(c)
	if err != nil {
		return fail(c, h.logger, err, "Invalid period")
	}
	resp, err := h.expenses.TotalsByCategory(c.UserContext(), userID, filter)
	if err != nil {
		return fail(c, h.logger, err, "Failed to total expenses")
	}
	return c.JSON(resp)
}

// Update godoc
// @Summary Update a manual expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body dto.ExpenseRequest true "Expense"
// @Security Bearer
// @Success 200 {object} dto.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid expense ID")
	}

	var req dto.ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.expenses.Update(c.UserContext(), userID, id, &req)
	if err != nil {
		return fail(c, h.logger, err, "Failed to update expense")
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a manual expense
// @Tags expenses
// @Param id path string true "Expense ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid expense ID")
	}

	if err := h.expenses.Delete(c.UserContext(), userID, id); err != nil {
		return fail(c, h.logger, err, "Failed to delete expense")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
