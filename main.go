package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gocart-backend/config"
	"gocart-backend/database"
	"gocart-backend/internal/api"
	"gocart-backend/internal/middleware"
	"gocart-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services. The WebSocket hub doubles as the catalog notifier for every
	// write path that changes marketplace visibility.
	wsService := services.NewWebSocketService()
	userService := services.NewUserService(db)
	emailService := services.NewEmailService(cfg)
	storeService := services.NewStoreService(db, wsService)
	productService := services.NewProductService(db, wsService)
	couponService := services.NewCouponService(db)
	orderService := services.NewOrderService(db, couponService, wsService)
	cartService := services.NewCartService(db)
	chatService := services.NewChatService(db)

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	authHandlers := api.NewAuthHandlers(db, cfg.JWTSecret, cfg.JWTExpiration)
	storeHandlers := api.NewStoreHandlers(storeService, userService, emailService)
	productHandlers := api.NewProductHandlers(productService, storeService, emailService)
	couponHandlers := api.NewCouponHandlers(couponService)
	orderHandlers := api.NewOrderHandlers(orderService)
	cartHandlers := api.NewCartHandlers(cartService)
	chatHandlers := api.NewChatHandlers(chatService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityMiddleware(&middleware.SecurityConfig{
		MaxRequestSize:    cfg.MaxFileSize,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.RateLimitWindow) * time.Second,
	}))
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.GET("/ws", wsService.HandleWebSocket)

	v1 := router.Group("/api/v1")
	{
		// Auth
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimitMiddleware())
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
		v1.GET("/auth/me", authMiddleware.AuthRequired(), authHandlers.Me)

		// Public marketplace
		v1.GET("/products", productHandlers.ListMarketplace)
		v1.GET("/products/:id", productHandlers.GetProduct)
		v1.GET("/stores/:username", storeHandlers.GetStore)
		v1.GET("/coupons", couponHandlers.ListPublicCoupons)
		v1.POST("/coupons/validate", authMiddleware.OptionalAuth(), couponHandlers.ValidateCoupon)
		v1.POST("/stores", authMiddleware.OptionalAuth(), storeHandlers.SubmitStore)

		// Shopper
		shopper := v1.Group("")
		shopper.Use(authMiddleware.AuthRequired())
		shopper.GET("/cart", cartHandlers.GetCart)
		shopper.POST("/cart", cartHandlers.SetCartItem)
		shopper.DELETE("/cart", cartHandlers.ClearCart)
		shopper.DELETE("/cart/:productId", cartHandlers.RemoveCartItem)
		shopper.POST("/orders", orderHandlers.CreateOrder)
		shopper.GET("/orders", orderHandlers.GetOrders)
		shopper.GET("/orders/:id", orderHandlers.GetOrder)

		// Store owner
		store := v1.Group("/store")
		store.Use(authMiddleware.AuthRequired())
		store.GET("", storeHandlers.GetMyStore)
		store.PUT("/active", storeHandlers.SetMyActive)
		store.GET("/products", productHandlers.GetStoreProducts)
		store.POST("/products", productHandlers.CreateProduct)
		store.PUT("/products/:id", productHandlers.UpdateProduct)
		store.PUT("/products/:id/stock", productHandlers.UpdateStock)
		store.PUT("/products/:id/in-stock", productHandlers.SetInStock)
		store.GET("/coupons", couponHandlers.ListStoreCoupons)
		store.POST("/coupons", couponHandlers.CreateStoreCoupon)
		store.PUT("/coupons/:id", couponHandlers.UpdateStoreCoupon)
		store.GET("/orders", orderHandlers.GetStoreOrders)
		store.PUT("/orders/:id/status", orderHandlers.UpdateOrderStatus)
		store.GET("/chat", chatHandlers.GetStoreMessages)
		store.POST("/chat", chatHandlers.SendStoreMessage)

		// Admin
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.AuthRequired(), authMiddleware.RequireRole("admin"))
		admin.GET("/stores", storeHandlers.ListStores)
		admin.PUT("/stores/:id/review", storeHandlers.ReviewStore)
		admin.PATCH("/stores/:id/active", storeHandlers.SetStoreActive)
		admin.GET("/products/pending", productHandlers.ListPendingProducts)
		admin.PUT("/products/:id/review", productHandlers.ReviewProduct)
		admin.POST("/coupons", couponHandlers.CreateGlobalCoupon)
		admin.PUT("/coupons/:id", couponHandlers.UpdateGlobalCoupon)
		admin.GET("/coupons/pending", couponHandlers.ListPendingStoreCoupons)
		admin.PUT("/coupons/:id/review", couponHandlers.ReviewStoreCoupon)
		admin.GET("/chat", chatHandlers.ListConversations)
		admin.GET("/chat/:storeId", chatHandlers.GetConversation)
		admin.POST("/chat/:storeId", chatHandlers.SendAdminMessage)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("GoCart API server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server shutdown complete")
}

// corsMiddleware reflects allowed origins and answers preflight requests
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (cfg.AllowAllOrigins || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
