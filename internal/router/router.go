package router

import (
	"time"

	"makepri/internal/config"
	"makepri/internal/handler"
	"makepri/internal/infra"
	"makepri/internal/middleware"
	"makepri/internal/repository"
	"makepri/internal/service"
	"makepri/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailerCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	images := infra.NewImageClient(cfg.ImageServiceURL, cfg.ImageServiceToken)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	cashRepo := repository.NewCashRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	priceHistoryRepo := repository.NewPriceHistoryRepository(db)
	stockMovementRepo := repository.NewStockMovementRepository(db)
	financeRepo := repository.NewFinanceRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, priceHistoryRepo, rdb, images)
	inventorySvc := service.NewInventoryService(productRepo, stockMovementRepo)
	cashSvc := service.NewCashService(cashRepo, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, cashSvc, cashRepo, inventorySvc, productRepo, customerRepo, dispatcher)
	customerSvc := service.NewCustomerService(customerRepo)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo)
	financeSvc := service.NewFinanceService(financeRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc, inventorySvc)
	barcodeH := handler.NewBarcodeHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	cashH := handler.NewCashHandler(cashSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	financeH := handler.NewFinanceHandler(financeSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Barcode price check — no auth required (self-service scanner kiosks)
	r.GET("/v1/barcode/:barcode", barcodeH.Lookup)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyStaff := middleware.RequireRole("cashier", "seller", "stockist", "manager", "admin")

		// Sales — cashiers and sellers register, managers cancel
		v1.POST("/sales", middleware.RequireRole("cashier", "seller", "manager", "admin"), salesH.Register)
		v1.GET("/sales", anyStaff, salesH.List)
		v1.GET("/sales/:id", anyStaff, salesH.GetByID)
		v1.DELETE("/sales/:id", middleware.RequireRole("manager", "admin"), salesH.Cancel)

		// Products — reads for all staff, stock for stockists up, writes manager up
		v1.GET("/products", anyStaff, productsH.List)
		v1.GET("/products/:id", anyStaff, productsH.GetByID)
		v1.GET("/products/:id/price-history", anyStaff, productsH.PriceHistory)
		v1.GET("/products/:id/stock-movements", middleware.RequireRole("stockist", "manager", "admin"), productsH.StockMovements)
		v1.PATCH("/products/:id/stock", middleware.RequireRole("stockist", "manager", "admin"), productsH.AdjustStock)
		v1.GET("/products/low-stock", middleware.RequireRole("stockist", "manager", "admin"), productsH.LowStock)
		prods := v1.Group("/products", middleware.RequireRole("manager", "admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
			prods.PUT("/:id/promotion", productsH.SetPromotion)
			prods.DELETE("/:id/promotion", productsH.ClearPromotion)
			prods.POST("/:id/image", productsH.UploadImage)
		}

		// Cash register lifecycle
		cash := v1.Group("/cash")
		{
			cashier := middleware.RequireRole("cashier", "manager", "admin")
			cash.POST("/open", cashier, cashH.Open)
			cash.POST("/close", cashier, cashH.Close)
			cash.POST("/movements", cashier, cashH.RegisterMovement)
			cash.GET("/:id", cashier, cashH.GetSession)
			cash.GET("/active/:drawer", cashier, cashH.Active)
			cash.GET("/suggested-float/:drawer", cashier, cashH.SuggestedFloat)
			cash.GET("/history", middleware.RequireRole("manager", "admin"), cashH.History)
		}

		// Customers
		v1.GET("/customers", anyStaff, customersH.List)
		v1.GET("/customers/:id", anyStaff, customersH.GetByID)
		v1.POST("/customers", middleware.RequireRole("cashier", "seller", "manager", "admin"), customersH.Create)
		v1.PUT("/customers/:id", middleware.RequireRole("cashier", "seller", "manager", "admin"), customersH.Update)
		v1.DELETE("/customers/:id", middleware.RequireRole("manager", "admin"), customersH.Deactivate)

		// Categories — manager writes, all staff read
		v1.GET("/categories", anyStaff, categoriesH.List)
		categories := v1.Group("/categories", middleware.RequireRole("manager", "admin"))
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Deactivate)
		}

		// Finance ledger — back office only
		finance := v1.Group("/finance", middleware.RequireRole("manager", "admin"))
		{
			finance.POST("", financeH.Create)
			finance.GET("", financeH.List)
			finance.PUT("/:id", financeH.Update)
			finance.DELETE("/:id", financeH.Delete)
		}

		// User management — admin only
		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
