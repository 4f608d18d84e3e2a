package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/statusxp/statusxp-backend/internal/auth"
	"github.com/statusxp/statusxp-backend/internal/dto"
	"github.com/statusxp/statusxp-backend/internal/models"
	"github.com/statusxp/statusxp-backend/internal/services"
)

type SyncHandler struct {
	syncService *services.SyncService
}

func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// StopSync handles POST /sync/:platform/stop.
func (h *SyncHandler) StopSync(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	platform, err := models.ParsePlatform(c.Params("platform"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.syncService.RequestStop(c.UserContext(), userID, platform); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		var workerErr *services.WorkerError
		if errors.As(err, &workerErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: workerErr.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to stop sync"})
	}

	return c.JSON(dto.SuccessResponse{
		Success: true,
		Message: "Sync stop requested. Current progress will be saved.",
	})
}

// SyncStatus handles GET /sync/status.
func (h *SyncHandler) SyncStatus(c *fiber.Ctx) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	resp, err := h.syncService.Status(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to read sync status"})
	}

	return c.JSON(resp)
}

// ForceStopAll handles POST /admin/sync/force-stop. Admin middleware has
// already gated access; this mutates every user's state.
func (h *SyncHandler) ForceStopAll(c *fiber.Ctx) error {
	resp, err := h.syncService.ForceStopAll(c.UserContext())
	if err != nil {
		slog.Error("force-stop failed", "action", "force_stop_all", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to force-stop syncs"})
	}

	return c.JSON(resp)
}
