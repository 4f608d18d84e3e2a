package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/statusxp/statusxp-backend/internal/config"
	"github.com/statusxp/statusxp-backend/internal/handlers"
	"github.com/statusxp/statusxp-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	accountHandler *handlers.AccountHandler,
	mergeHandler *handlers.MergeHandler,
	syncHandler *handlers.SyncHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Check)

	// Platform account linking and merge confirmation (JWT required).
	// Merge is rate limited harder: it moves whole accounts around.
	platforms := api.Group("/platforms", middleware.JWTProtected(cfg))
	platforms.Post("/:platform/link", accountHandler.LinkAccount)
	platforms.Post("/:platform/merge", limiter.New(limiter.Config{
		Max:               5,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), mergeHandler.ConfirmMerge)

	// Sync status and stop requests (JWT required)
	sync := api.Group("/sync", middleware.JWTProtected(cfg))
	sync.Get("/status", syncHandler.SyncStatus)
	sync.Post("/:platform/stop", syncHandler.StopSync)

	// Account removal (JWT required)
	api.Delete("/account", middleware.JWTProtected(cfg), accountHandler.DeleteAccount)

	// Admin maintenance (JWT + admin gate)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Post("/sync/force-stop", syncHandler.ForceStopAll)
}
