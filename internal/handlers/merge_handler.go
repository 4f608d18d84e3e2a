package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/statusxp/statusxp-backend/internal/auth"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"github.com/statusxp/statusxp-backend/internal/services"
)

type MergeHandler struct {
	mergeService *services.MergeService
}

func NewMergeHandler(mergeService *services.MergeService) *MergeHandler {
	return &MergeHandler{mergeService: mergeService}
}

// ConfirmMerge handles POST /platforms/:platform/merge: the user has
// approved merging the colliding account into their own.
func (h *MergeHandler) ConfirmMerge(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.ConfirmMergeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if req.ExistingUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "existingUserId is required"})
	}

	if err := h.mergeService.ConfirmMerge(c.UserContext(), userID, platform, &req); err != nil {
		var mergeErr *services.MergeError
		switch {
		case errors.Is(err, services.ErrSameAccount), errors.Is(err, services.ErrAlreadyMerged):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrProfileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.As(err, &mergeErr):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: mergeErr.Error()})
		case errors.Is(err, services.ErrMissingPSNCredentials),
			errors.Is(err, services.ErrMissingXboxCredentials),
			errors.Is(err, services.ErrMissingSteamCredentials):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.SuccessResponse{Success: true, Message: "Account merged successfully"})
}
