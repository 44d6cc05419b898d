package main

import (
	"log"
	"strings"

	"adega-backend/internal/audit"
	"adega-backend/internal/auth"
	"adega-backend/internal/cashier"
	"adega-backend/internal/config"
	"adega-backend/internal/database"
	"adega-backend/internal/menu"
	"adega-backend/internal/metrics"
	"adega-backend/internal/models"
	"adega-backend/internal/orders"
	"adega-backend/internal/sales"
	"adega-backend/internal/stock"
	"adega-backend/internal/team"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis do ambiente")
	}

	cfg := config.Load()
	database.Init(cfg)
	metrics.Init()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado no servidor",
			})
		},
	})

	// CORS origins vêm como string separada por vírgula
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Cardápio
	menuRoutes := protected.Group("/menu", auth.RequireTab(auth.TabMenu))
	menuRoutes.Get("/products", menu.ListProductsHandler())

	// Comandas
	orderRoutes := protected.Group("/orders", auth.RequireTab(auth.TabOrders))
	orderRoutes.Post("", orders.CreateOrderHandler())
	orderRoutes.Get("", orders.ListOrdersHandler())
	orderRoutes.Post("/:id/items", orders.AddItemHandler())
	orderRoutes.Post("/:id/ready", orders.MarkReadyHandler())
	orderRoutes.Post("/:id/close", orders.CloseOrderHandler())
	orderRoutes.Get("/:id/whatsapp", orders.WhatsAppLinkHandler(cfg))
	orderRoutes.Get("/:id/receipt", orders.ReceiptHandler(cfg))
	orderRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), orders.DeleteOrderHandler())

	// Venda direta
	salesRoutes := protected.Group("/sales", auth.RequireTab(auth.TabSales))
	salesRoutes.Post("/quick", sales.QuickSaleHandler())

	// Caixa
	cashierRoutes := protected.Group("/cashier", auth.RequireTab(auth.TabCashier))
	cashierRoutes.Get("/entries", cashier.ListEntriesHandler())
	cashierRoutes.Get("/summary", cashier.SummaryHandler())
	cashierRoutes.Get("/report", cashier.ReportHandler(cfg))

	// Estoque
	stockRoutes := protected.Group("/stock", auth.RequireTab(auth.TabStock))
	stockRoutes.Post("/products", stock.UpsertProductHandler())
	stockRoutes.Delete("/products/:id", stock.DeleteProductHandler())
	stockRoutes.Post("/import", stock.ImportHandler())
	stockRoutes.Get("/export", stock.ExportHandler())
	stockRoutes.Get("/template", stock.TemplateHandler())

	// Equipe (sempre só admin)
	teamRoutes := protected.Group("/team", auth.RequireRole(models.RoleAdmin))
	teamRoutes.Get("/users", team.ListUsersHandler())
	teamRoutes.Post("/users", team.CreateUserHandler())
	teamRoutes.Get("/permissions", team.GetPermissionsHandler())
	teamRoutes.Put("/permissions", team.UpdatePermissionsHandler())

	// Audit logs
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
