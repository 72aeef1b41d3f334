package main

import (
	"log"

	_ "nutscredit/api/swagger" // swagger docs
	"nutscredit/internal/auth"
	"nutscredit/internal/chat"
	"nutscredit/internal/config"
	"nutscredit/internal/conversation"
	"nutscredit/internal/database"
	"nutscredit/internal/handler"
	"nutscredit/internal/logger"
	"nutscredit/internal/middleware"
	"nutscredit/internal/repository"
	"nutscredit/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Nuts Credit API
// @version         1.0
// @description     Record-keeping API for client credit, nut stock, and the request approval workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()
	logg := logger.New(cfg.LogLevel)

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		logg.Fatal().Err(err).Msg("database connection failed")
	}
	logg.Info().Msg("connected to PostgreSQL")

	// Repositories and transaction boundary
	txManager := repository.NewTransactionManager(db)
	clientRepo := repository.NewClientRepository(db)
	nutRepo := repository.NewNutRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	guard := auth.NewGuard(cfg.MainAdminID, adminRepo)
	if cfg.MainAdminID == "" {
		logg.Warn().Msg("MAIN_ADMIN_ID is not set; admin registration and request decisions will be rejected")
	}

	// Chat hub doubles as the outbound messenger for approval prompts
	hub := chat.NewHub(logg)
	go hub.Run()

	// Services
	clientService := service.NewClientService(clientRepo, auditRepo, txManager)
	nutService := service.NewNutService(nutRepo, auditRepo, txManager)
	adminService := service.NewAdminService(adminRepo, auditRepo, txManager, guard)
	requestService := service.NewRequestService(requestRepo, nutRepo, adminRepo, auditRepo, txManager, guard, hub, logg)

	// Conversation engine and the chat-side router that feeds it
	engine := conversation.NewEngine()
	chatRouter := chat.NewRouter(engine, clientService, nutService, adminService, requestService, guard, hub, logg)

	// HTTP handlers
	clientHandler := handler.NewClientHandler(clientService)
	nutHandler := handler.NewNutHandler(nutService)
	adminHandler := handler.NewAdminHandler(adminService, guard)
	requestHandler := handler.NewRequestHandler(requestService, guard)
	auditHandler := handler.NewAuditHandler(auditRepo, guard)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/ws", func(c *gin.Context) {
		chat.ServeWs(hub, chatRouter, c, middleware.GetJWTSecret())
	})

	clientHandler.RegisterRoutes(router.Group(""))
	nutHandler.RegisterRoutes(router.Group(""))
	adminHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	logg.Info().Str("port", cfg.Port).Msg("server listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		logg.Fatal().Err(err).Msg("server failed")
	}
}
