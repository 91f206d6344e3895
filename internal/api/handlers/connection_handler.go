package handlers

import (
	"wallet-api/internal/dto"
	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	connections  *service.ConnectionService
	sync         *service.SyncService
	transactions *service.TransactionService
	logger       *zap.Logger
}

func NewConnectionHandler(
	connections *service.ConnectionService,
	sync *service.SyncService,
	transactions *service.TransactionService,
	logger *zap.Logger,
) *ConnectionHandler {
	return &ConnectionHandler{
		connections:  connections,
		sync:         sync,
		transactions: transactions,
		logger:       logger,
	}
}

// ConnectToken godoc
// @Summary Create a connect token
// @Description Issue a token for the aggregator's account linking widget
// @Tags connections
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ConnectTokenResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/pluggy/connect-token [post]
func (h *ConnectionHandler) ConnectToken(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.connections.ConnectToken(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.logger, err, "Failed to create connect token")
	}
	return c.JSON(resp)
}

// Create godoc
// @Summary Store a linked connection
// @Tags connections
// @Accept json
// @Produce json
// @Param request body dto.CreateConnectionRequest true "Connection"
// @Security Bearer
// @Success 201 {object} dto.ConnectionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/connections [post]
func (h *ConnectionHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.connections.Create(c.UserContext(), userID, &req)
	if err != nil {
		return fail(c, h.logger, err, "Failed to create connection")
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List the user's connections
// @Tags connections
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ConnectionResponse
// @Router /api/v1/connections [get]
func (h *ConnectionHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.connections.List(c.UserContext(), userID)
	if err != nil {
		return fail(c, h.logger, err, "Failed to list connections")
	}
	return c.JSON(resp)
}

// Get godoc
// @Summary Get a connection
// @Tags connections
// @Produce json
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 200 {object} dto.ConnectionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/connections/{itemId} [get]
func (h *ConnectionHandler) Get(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.connections.Get(c.UserContext(), userID, c.Params("itemId"))
	if err != nil {
		return fail(c, h.logger, err, "Failed to get connection")
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary Delete a connection
// @Tags connections
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/connections/{itemId} [delete]
func (h *ConnectionHandler) Delete(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.connections.Delete(c.UserContext(), userID, c.Params("itemId")); err != nil {
		return fail(c, h.logger, err, "Failed to delete connection")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Accounts godoc
// @Summary List the connection's accounts
// @Description Accounts as currently reported by the aggregator
// @Tags connections
// @Produce json
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 200 {array} dto.AccountResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/connections/{itemId}/accounts [get]
func (h *ConnectionHandler) Accounts(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.connections.Accounts(c.UserContext(), userID, c.Params("itemId"))
	if err != nil {
		return fail(c, h.logger, err, "Failed to list accounts")
	}
	return c.JSON(resp)
}

// Status godoc
// @Summary Get the aggregator status of a connection
// @Tags connections
// @Produce json
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 200 {object} dto.ConnectionStatusResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/connections/{itemId}/status [get]
func (h *ConnectionHandler) Status(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.connections.Status(c.UserContext(), userID, c.Params("itemId"))
	if err != nil {
		return fail(c, h.logger, err, "Failed to get connection status")
	}
	return c.JSON(resp)
}

// Sync godoc
// @Summary Sync a connection
// @Description Ingest the connection's accounts and transactions. Already stored transactions are skipped.
// @Tags connections
// @Produce json
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 200 {object} dto.SyncResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/connections/{itemId}/sync [post]
func (h *ConnectionHandler) Sync(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	res, err := h.sync.SyncConnection(c.UserContext(), userID, c.Params("itemId"))
	if err != nil {
		return fail(c, h.logger, err, "Failed to sync connection")
	}
	return c.JSON(service.ToSyncResponse(res))
}

// Transactions godoc
// @Summary List the connection's stored transactions
// @Tags connections
// @Produce json
// @Param itemId path string true "Aggregator item id"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/connections/{itemId}/transactions [get]
func (h *ConnectionHandler) Transactions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	resp, err := h.transactions.ListByItem(c.UserContext(), userID, c.Params("itemId"))
	if err != nil {
		return fail(c, h.logger, err, "Failed to list transactions")
	}
	return c.JSON(resp)
}
