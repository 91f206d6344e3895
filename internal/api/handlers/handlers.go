package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"wallet-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

// statusFor maps service sentinels to HTTP codes; anything else is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidPeriod):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrConnectionNotFound),
		errors.Is(err, service.ErrIncomeNotFound),
		errors.Is(err, service.ErrExpenseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConnectionExists), errors.Is(err, service.ErrUserExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes the error response. Client errors carry the service message;
// server errors are logged and answered with msg only.
func fail(c *fiber.Ctx, logger *zap.Logger, err error, msg string) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		logger.Error(msg, zap.String("path", c.Path()), zap.Error(err))
		return c.Status(code).JSON(fiber.Map{
			"error": msg,
		})
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// queryInt reads an optional integer query value. Absent means def; anything
// that is not a number is an invalid period.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", service.ErrInvalidPeriod, key)
	}
	return n, nil
}

func periodFilter(c *fiber.Ctx) (service.PeriodFilter, error) {
	year, err := queryInt(c, "year", 0)
	if err != nil {
		return service.PeriodFilter{}, err
	}
	month, err := queryInt(c, "month", 0)
	if err != nil {
		return service.PeriodFilter{}, err
	}
	return service.PeriodFilter{Year: year, Month: month}, nil
}
