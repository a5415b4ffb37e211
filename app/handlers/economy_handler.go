package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/webstar-labs/webstar/app/dto"
	businessflow "github.com/webstar-labs/webstar/business_flow"
	"github.com/webstar-labs/webstar/utils"
)

// EconomyHandlerInterface defines the contract for points economy handlers
type EconomyHandlerInterface interface {
	GetBalance(c fiber.Ctx) error
	GetHistory(c fiber.Ctx) error
}

// EconomyHandler handles points economy HTTP requests
type EconomyHandler struct {
	economyFlow businessflow.EconomyFlow
}

// NewEconomyHandler creates a new economy handler
func NewEconomyHandler(economyFlow businessflow.EconomyFlow) *EconomyHandler {
	return &EconomyHandler{economyFlow: economyFlow}
}

func (h *EconomyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EconomyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetBalance returns the caller's current points balance
func (h *EconomyHandler) GetBalance(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	result, err := h.economyFlow.GetBalance(h.createRequestContext(c, "/api/v1/points/balance"), userID)
	if err != nil {
		log.Println("Fetching points balance failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch balance", "BALANCE_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Balance retrieved", result)
}

// GetHistory returns a page of the caller's points ledger
func (h *EconomyHandler) GetHistory(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "page must be a number", "INVALID_PAGINATION", nil)
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "page_size must be a number", "INVALID_PAGINATION", nil)
	}

	result, err := h.economyFlow.GetHistory(h.createRequestContext(c, "/api/v1/points/history"), userID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}

		log.Println("Fetching points history failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch history", "HISTORY_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "History retrieved", result)
}

func (h *EconomyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EconomyHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
