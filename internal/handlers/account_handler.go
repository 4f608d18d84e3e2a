package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/statusxp/statusxp-backend/internal/auth"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"github.com/statusxp/statusxp-backend/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// LinkAccount handles POST /platforms/:platform/link.
func (h *AccountHandler) LinkAccount(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.LinkAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	result, err := h.accountService.Link(c.UserContext(), userID, platform, &req.Credentials)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrMissingPSNCredentials),
			errors.Is(err, services.ErrMissingXboxCredentials),
			errors.Is(err, services.ErrMissingSteamCredentials):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to link account"})
	}

	if result.RequiresMerge {
		return c.JSON(dto.LinkAccountResponse{
			RequiresMerge:  true,
			ExistingUserID: result.ExistingUserID.String(),
			Message:        "This " + platform.String() + " account is already linked to another profile",
		})
	}

	return c.JSON(dto.LinkAccountResponse{
		Success: true,
		Message: "Account linked successfully",
	})
}

// DeleteAccount handles DELETE /account.
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	if err := h.accountService.DeleteAccount(c.UserContext(), userID); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to delete account"})
	}

	return c.JSON(dto.SuccessResponse{Success: true, Message: "Account deleted"})
}
