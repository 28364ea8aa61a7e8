package server

import (
	"log"
	"strings"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/cashbox"
	"magaza-backend/internal/config"
	"magaza-backend/internal/dashboard"
	"magaza-backend/internal/dispatch"
	"magaza-backend/internal/finance"
	"magaza-backend/internal/inventory"
	"magaza-backend/internal/models"
	"magaza-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// New: Fiber uygulamasını kurar ve tüm route'ları bağlar. Testler de aynı
// uygulamayı app.Test ile kullanır.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Gelir/gider defteri
	protected.Post("/transactions", finance.CreateTransactionHandler())
	protected.Get("/transactions", finance.ListTransactionsHandler())
	protected.Get("/transactions/summary", finance.SummaryHandler())
	protected.Get("/transactions/:id", finance.GetTransactionHandler())
	protected.Put("/transactions/:id", finance.UpdateTransactionHandler())
	protected.Delete("/transactions/:id", finance.DeleteTransactionHandler())

	// Kategoriler
	protected.Post("/categories", inventory.CreateCategoryHandler())
	protected.Get("/categories", inventory.ListCategoriesHandler())
	protected.Get("/categories/:id", inventory.GetCategoryHandler())
	protected.Put("/categories/:id", inventory.UpdateCategoryHandler())
	protected.Delete("/categories/:id", inventory.DeleteCategoryHandler())

	// Stoklar (/:id'den önce sabit path'ler bağlanmalı)
	protected.Post("/stocks", inventory.CreateStockHandler())
	protected.Get("/stocks", inventory.ListStocksHandler())
	protected.Get("/stocks/export", inventory.ExportStocksHandler())
	protected.Get("/stocks/by-code", inventory.ListStocksByCodeHandler())
	protected.Put("/stocks/by-code/:code", inventory.AdjustStockByCodeHandler(cfg))
	protected.Get("/stocks/:id", inventory.GetStockHandler())
	protected.Put("/stocks/:id", inventory.UpdateStockHandler())
	protected.Delete("/stocks/:id", inventory.DeleteStockHandler())
	protected.Patch("/stocks/:id/update-quantity", inventory.SetStockQuantityHandler(cfg))

	// Stok hareketleri (salt okunur)
	protected.Get("/stock-movements", inventory.ListMovementsHandler())
	protected.Get("/stock-movements/:id", inventory.GetMovementHandler())

	// Satışlar
	protected.Post("/sales", sales.CreateSaleHandler(cfg))
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/export", sales.ExportSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Put("/sales/:id", sales.UpdateSaleHandler())
	protected.Delete("/sales/:id", sales.DeleteSaleHandler())

	// İadeler
	protected.Post("/returns", sales.CreateReturnHandler())
	protected.Get("/returns", sales.ListReturnsHandler())
	protected.Get("/returns/:id", sales.GetReturnHandler())
	protected.Put("/returns/:id", sales.UpdateReturnHandler())
	protected.Delete("/returns/:id", sales.DeleteReturnHandler())

	// Kasa oturumları
	protected.Post("/cash-sessions/open", cashbox.OpenSessionHandler())
	protected.Post("/cash-sessions/:id/close", cashbox.CloseSessionHandler())
	protected.Get("/cash-sessions", cashbox.ListSessionsHandler())
	protected.Get("/cash-sessions/:id", cashbox.GetSessionHandler())

	// Sevkler
	protected.Post("/dispatches", dispatch.CreateDispatchHandler())
	protected.Get("/dispatches", dispatch.ListDispatchesHandler())
	protected.Get("/dispatches/:id", dispatch.GetDispatchHandler())
	protected.Delete("/dispatches/:id", dispatch.DeleteDispatchHandler())

	// Dashboard
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler())

	// Audit logs (sadece super admin)
	protected.Get("/audit-logs", auth.RequireRole(models.RoleSuperAdmin), audit.ListAuditLogsHandler())

	return app
}
