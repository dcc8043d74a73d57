package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-bom/internal/config"
	"go-inventory-bom/internal/handler"
	"go-inventory-bom/internal/middleware"
	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/service"
	"go-inventory-bom/internal/ws"
	"go-inventory-bom/pkg/cache"
	"go-inventory-bom/pkg/database"
	"go-inventory-bom/pkg/i18n"
	"go-inventory-bom/pkg/jwt"
	"go-inventory-bom/pkg/logger"
	"go-inventory-bom/pkg/validator"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	log := logger.GetLogger()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	jwt.SetSecretKey(cfg.JWTSecret)

	loc, trans := i18n.NewEnglish()
	if err := validator.UseTranslator(trans); err != nil {
		log.Fatalf("register validator translations: %v", err)
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseOptions())
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// 3. Seed privileges, roles, global units, default company and admin user
	seedDefaults(db, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Order guard: redis when configured, database transaction alone otherwise
	guard := service.NoopOrderGuard()
	if cfg.RedisAddress != "" {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		rdb, locker, err := cache.Connect(ctx, cfg.RedisAddress, 5)
		cancel()
		if err != nil {
			logger.LogError(log, "main", "main", "redis unavailable, continuing without order guard", cfg.RedisAddress, err)
		} else {
			defer rdb.Close()
			guard = cache.NewOrderGuard(rdb, locker, cfg.OrderLockTTL, cfg.IdempotencyTTL)
		}
	}

	// 6. Dependency Injection (Wiring Layers)
	tenants := service.ContextTenantResolver{}
	unitRepo := repository.NewUnitRepo(db)
	rawMaterialRepo := repository.NewRawMaterialRepo(db)
	formulaRepo := repository.NewFormulaRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)

	unitService := service.NewUnitService(db, unitRepo, rawMaterialRepo, formulaRepo, tenants)
	rawMaterialService := service.NewRawMaterialService(db, rawMaterialRepo, unitRepo, formulaRepo, unitService, tenants, wsHub, cfg.AllowNegativeStock)
	formulaService := service.NewFormulaService(db, formulaRepo, rawMaterialRepo, unitRepo, productRepo, tenants)
	productService := service.NewProductService(productRepo, formulaRepo, tenants)
	orderService := service.NewOrderService(db, orderRepo, productRepo, formulaRepo, rawMaterialRepo, unitService, tenants, guard, wsHub,
		service.OrderConfig{AllowNegativeStock: cfg.AllowNegativeStock})
	dashService := service.NewDashboardService(orderRepo, tenants)
	authService := service.NewAuthService(userRepo, wsHub)

	resp := handler.NewResponder(loc)
	unitHandler := handler.NewUnitHandler(unitService, resp)
	rawMaterialHandler := handler.NewRawMaterialHandler(rawMaterialService, resp)
	formulaHandler := handler.NewFormulaHandler(formulaService, resp)
	productHandler := handler.NewProductHandler(productService, resp)
	orderHandler := handler.NewOrderHandler(orderService, resp)
	dashHandler := handler.NewDashboardHandler(dashService, resp)
	authHandler := handler.NewAuthHandler(authService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory BOM v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/order-volume", dashHandler.GetOrderVolume)

	// Units
	protected.Get("/units", middleware.RequirePrivilege("unit:view"), unitHandler.GetUnits)
	protected.Get("/units/:id", middleware.RequirePrivilege("unit:view"), unitHandler.GetUnit)
	protected.Get("/units/:id/rate-to-root", middleware.RequirePrivilege("unit:view"), unitHandler.GetRateToRoot)
	protected.Get("/units/:id/convert", middleware.RequirePrivilege("unit:view"), unitHandler.ConvertUnit)
	protected.Post("/units", middleware.RequirePrivilege("unit:create"), unitHandler.CreateUnit)
	protected.Put("/units/:id", middleware.RequirePrivilege("unit:update"), unitHandler.UpdateUnit)
	protected.Delete("/units/:id", middleware.RequirePrivilege("unit:delete"), unitHandler.DeleteUnit)

	// Formulas
	protected.Get("/formulas", middleware.RequirePrivilege("formula:view"), formulaHandler.GetFormulas)
	protected.Get("/formulas/:id", middleware.RequirePrivilege("formula:view"), formulaHandler.GetFormula)
	protected.Post("/formulas", middleware.RequirePrivilege("formula:create"), formulaHandler.CreateFormula)
	protected.Put("/formulas/:id", middleware.RequirePrivilege("formula:update"), formulaHandler.UpdateFormula)
	protected.Delete("/formulas/:id", middleware.RequirePrivilege("formula:delete"), formulaHandler.DeleteFormula)

	// Raw materials
	protected.Get("/raw-materials", middleware.RequirePrivilege("raw_material:view"), rawMaterialHandler.GetRawMaterials)
	protected.Get("/raw-materials/:id", middleware.RequirePrivilege("raw_material:view"), rawMaterialHandler.GetRawMaterial)
	protected.Post("/raw-materials", middleware.RequirePrivilege("raw_material:create"), rawMaterialHandler.CreateRawMaterial)
	protected.Put("/raw-materials/:id", middleware.RequirePrivilege("raw_material:update"), rawMaterialHandler.UpdateRawMaterial)
	protected.Delete("/raw-materials/:id", middleware.RequirePrivilege("raw_material:delete"), rawMaterialHandler.DeleteRawMaterial)
	protected.Post("/raw-materials/:id/adjust", middleware.RequirePrivilege("raw_material:update"), rawMaterialHandler.AdjustStock)

	// Products
	protected.Get("/products", middleware.RequirePrivilege("product:view"), productHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege("product:view"), productHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), productHandler.DeleteProduct)

	// Orders
	protected.Get("/orders", middleware.RequirePrivilege("order:view"), orderHandler.GetOrders)
	protected.Get("/orders/:id", middleware.RequirePrivilege("order:view"), orderHandler.GetOrder)
	protected.Post("/orders", middleware.RequirePrivilege("order:create"), orderHandler.PlaceOrder)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route: clients pass their JWT as ?token= and receive their company's events
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		claims, err := jwt.ValidateToken(c.Query("token"))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		c.Locals("company_id", claims.CompanyID)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		companyID, _ := c.Locals("company_id").(uuid.UUID)
		client := &ws.Client{Conn: c, CompanyID: companyID}
		wsHub.Register <- client
		defer func() { wsHub.Unregister <- client }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}
	log.Info("Server exited")
}

// seedDefaults creates default privileges, roles, global units, the default company and its
// admin user if they don't exist
func seedDefaults(db *gorm.DB, log *logrus.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	unitRepo := repository.NewUnitRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Warnf("failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Warnf("failed to seed roles: %v", err)
	}
	if err := unitRepo.SeedDefaults(); err != nil {
		log.Warnf("failed to seed global units: %v", err)
	}

	company, err := companyRepo.SeedDefault("Default Company")
	if err != nil {
		log.Warnf("failed to seed default company: %v", err)
		return
	}

	if _, err := userRepo.FindByEmail("admin@example.com"); err == nil {
		return
	}
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err != nil {
		log.Warnf("master role missing, admin user not created: %v", err)
		return
	}
	admin := &model.User{
		CompanyID:  company.ID,
		Email:      "admin@example.com",
		FullName:   "Master Administrator",
		RoleID:     &masterRole.ID,
		IsActive:   true,
		Privileges: masterRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword("admin123"); err != nil {
		log.Warnf("failed to hash admin password: %v", err)
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Warnf("failed to create admin user: %v", err)
		return
	}
	log.WithFields(logrus.Fields{"email": admin.Email, "company": company.Code}).Info("admin user created (password admin123)")
}
