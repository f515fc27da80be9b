package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"crmapi/config"
	controller "crmapi/controllers"
	"crmapi/middleware"
	"crmapi/utils"
)

// SetupRoutes wires the public auth endpoints, the protected lead API and
// the health check onto the app. Everything the handlers need is passed in
// explicitly; there is no package-level state.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	tokenManager := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	authController := controller.NewAuthController(db, tokenManager, logger)
	leadController := controller.NewLeadController(db, logger)

	requestLog := fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})

	// Health check: a trivial store round-trip, no authorization required.
	// The only endpoint allowed to surface store diagnostics.
	app.Get("/health", func(c *fiber.Ctx) error {
		var one int
		if err := db.WithContext(c.UserContext()).Raw("SELECT 1").Scan(&one).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Database connection failed", err)
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Successfully connected to the database.",
		})
	})

	// Public auth endpoints
	app.Post("/register", requestLog, authController.Register)
	app.Post("/login", requestLog, middleware.LoginRateLimiter(cfg), authController.Login)

	protected := middleware.Protected(db, tokenManager)

	app.Get("/me", protected, authController.GetCurrentUser)

	// Lead API, behind the access gate
	leads := app.Group("/leads", protected, requestLog)
	leads.Get("/", leadController.GetLeads)
	leads.Post("/", leadController.CreateLead)
	leads.Get("/:id", leadController.GetLead)
	leads.Put("/:id", leadController.UpdateLead)

	// Trailing 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	logger.Info("routes initialized")
}
