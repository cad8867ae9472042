package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/auth"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           TecniGestion API
// @version         1.0
// @description     Backend for independent technicians: clients, scheduled visits, and price quotes.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "tecnigestion"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokenTTL := auth.DefaultTokenTTL
	if days := os.Getenv("TOKEN_TTL_DAYS"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			log.Fatalf("Invalid TOKEN_TTL_DAYS: %q", days)
		}
		tokenTTL = time.Duration(n) * 24 * time.Hour
	}
	tokenManager := auth.NewManager(auth.Config{Secret: []byte(secret), TokenTTL: tokenTTL})

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	accountRepo := repository.NewAccountRepository(db)
	clientRepo := repository.NewClientRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(accountRepo, tokenManager)
	clientService := service.NewClientService(clientRepo, auditRepo)
	visitService := service.NewVisitService(visitRepo, clientRepo, auditRepo, wsHub)
	quoteService := service.NewQuoteService(quoteRepo, clientRepo, auditRepo, txManager, wsHub)
	dashboardService := service.NewDashboardService(visitRepo, clientRepo, quoteRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	visitHandler := handler.NewVisitHandler(visitService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokenManager)
	})

	// Register API Routes
	authMW := middleware.RequireAccount(tokenManager)
	authHandler.RegisterRoutes(router.Group(""), authMW)
	clientHandler.RegisterRoutes(router.Group(""), authMW)
	visitHandler.RegisterRoutes(router.Group(""), authMW)
	quoteHandler.RegisterRoutes(router.Group(""), authMW)
	dashboardHandler.RegisterRoutes(router.Group(""), authMW)
	auditHandler.RegisterRoutes(router.Group(""), authMW)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
