package api

import (
	"ruleflow/internal/api/handlers"
	"ruleflow/pkg/auth"
	"ruleflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	clientHandler *handlers.ClientHandler,
	ruleHandler *handlers.RuleHandler,
	processHandler *handlers.ProcessHandler,
	accountHandler *handlers.AccountHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	// Pipeline entrypoint
	protected.Post("/process", processHandler.Process)

	// Standalone pipeline tools
	tools := protected.Group("/tools")
	tools.Post("/validate_subject", processHandler.ValidateSubject)
	tools.Post("/reconcile", processHandler.Reconcile)
	tools.Post("/commit", processHandler.Commit)
	tools.Post("/fields/:name", processHandler.RunFieldTool)

	// Client routes
	clients := protected.Group("/clients")
	clients.Post("", clientHandler.Create)
	clients.Get("", clientHandler.List)
	clients.Get("/find", clientHandler.Find)
	clients.Get("/:id", clientHandler.Get)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Rule routes nested under the owning client
	clients.Post("/:id/rules", ruleHandler.Store)
	clients.Get("/:id/rules", ruleHandler.List)
	clients.Get("/:id/rules/search", ruleHandler.Search)
	clients.Delete("/:id/rules", ruleHandler.Delete)

	// Ledger read views
	accounts := protected.Group("/accounts")
	accounts.Get("", accountHandler.List)
	accounts.Get("/:id", accountHandler.Get)
	accounts.Get("/:id/transactions", accountHandler.ListTransactions)

	return app
}
