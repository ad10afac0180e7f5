package main

import (
	"log"
	"strings"

	"mantar-backend/internal/audit"
	"mantar-backend/internal/auth"
	"mantar-backend/internal/cleanqueue"
	"mantar-backend/internal/config"
	"mantar-backend/internal/database"
	"mantar-backend/internal/grows"
	"mantar-backend/internal/recipes"
	"mantar-backend/internal/supplies"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

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
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Tedarik defteri
	protected.Get("/supplies", supplies.ListSuppliesHandler())
	protected.Post("/supplies", supplies.CreateSupplyHandler())
	protected.Put("/supplies/:id", supplies.UpdateSupplyHandler())
	protected.Delete("/supplies/:id", supplies.DeleteSupplyHandler())
	protected.Post("/supplies/:id/restock", supplies.RestockHandler())
	protected.Post("/supplies/:id/reprice", supplies.RepriceHandler())
	protected.Get("/supplies/:id/audits", audit.ListSupplyAuditsHandler())

	// Denetim kayıtları (tedarik satırı önizlemesi ?supply_id=&limit=5 ile)
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Get("/audit-logs/export.csv", audit.ExportAuditCSVHandler())

	// Tarifler
	protected.Get("/recipes", recipes.ListRecipesHandler())
	protected.Post("/recipes", recipes.CreateRecipeHandler())
	protected.Put("/recipes/:id", recipes.UpdateRecipeHandler())
	protected.Delete("/recipes/:id", recipes.DeleteRecipeHandler())
	protected.Post("/recipes/:id/clone", recipes.CloneRecipeHandler())

	// Yetiştirmeler
	protected.Get("/grows", grows.ListGrowsHandler())
	protected.Post("/grows", grows.CreateGrowHandler())
	protected.Put("/grows/:id", grows.UpdateGrowHandler())
	protected.Delete("/grows/:id", grows.DeleteGrowHandler())
	protected.Put("/grows/:id/archive", grows.ArchiveGrowHandler())
	protected.Post("/grows/:id/reset-clean-gate", grows.ResetCleanGateHandler())

	// Temizlik kuyruğu
	protected.Get("/clean-queue", cleanqueue.ListQueueHandler())
	protected.Post("/clean-queue/:supplyId/return", cleanqueue.CleanReturnHandler())
	protected.Post("/clean-queue/scan", cleanqueue.ScanBackfillHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
