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

	"craftfolio/api/config"
	"craftfolio/api/database"
	"craftfolio/api/handlers"
	"craftfolio/api/middleware"
	"craftfolio/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL (users, portfolios, case studies) ---
	dbClient, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Initialize ClickHouse (visit events) ---
	chClient, err := database.NewClickHouseDB(database.ClickHouseConfig{
		Host:     cfg.ClickHouseHost,
		Port:     cfg.ClickHousePort,
		Database: cfg.ClickHouseDB,
		Username: cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
	})
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse database: %v", err)
	}
	defer chClient.Close()

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	if err := chClient.EnsureSchema(schemaCtx); err != nil {
		cancelSchema()
		log.Fatalf("Failed to ensure ClickHouse schema: %v", err)
	}
	cancelSchema()

	// --- Initialize Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	portfolioStore := store.NewPortfolioStore(dbClient.DB)
	caseStudyStore := store.NewCaseStudyStore(dbClient.DB)
	analyticsStore := store.NewAnalyticsStore(chClient)

	mediaStore, err := store.NewMediaStore(context.Background(), cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// --- Initialize Handlers ---
	jwtSecret := []byte(cfg.JWTSecret)
	authHandlers := handlers.NewAuthHandlers(userStore, jwtSecret)
	portfolioHandlers := handlers.NewPortfolioHandlers(portfolioStore)
	caseStudyHandlers := handlers.NewCaseStudyHandlers(portfolioStore, caseStudyStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsStore, portfolioStore, caseStudyStore)
	publicHandlers := handlers.NewPublicHandlers(userStore, portfolioStore, caseStudyStore)
	uploadHandlers := handlers.NewUploadHandlers(mediaStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware(cfg.FrontendOrigin))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandlers.Register)
			auth.POST("/login", authHandlers.Login)
			auth.POST("/logout", authHandlers.Logout)
			auth.GET("/me", middleware.AuthRequired(jwtSecret), authHandlers.Me)
		}

		// Public tracking endpoint: visitors are anonymous.
		api.POST("/analytics/track", analyticsHandlers.TrackView)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(jwtSecret))
		{
			protected.GET("/portfolio", portfolioHandlers.GetPortfolio)
			protected.POST("/portfolio", portfolioHandlers.CreateUpdatePortfolio)
			protected.PUT("/portfolio/theme", portfolioHandlers.UpdateTheme)
			protected.PUT("/portfolio/publish", portfolioHandlers.TogglePublish)

			protected.GET("/case-study", caseStudyHandlers.ListCaseStudies)
			protected.POST("/case-study", caseStudyHandlers.CreateCaseStudy)
			protected.GET("/case-study/:id", caseStudyHandlers.GetCaseStudy)
			protected.PUT("/case-study/:id", caseStudyHandlers.UpdateCaseStudy)
			protected.DELETE("/case-study/:id", caseStudyHandlers.DeleteCaseStudy)
			protected.PUT("/case-study/:id/publish", caseStudyHandlers.TogglePublish)
			protected.PUT("/case-study/:id/feature", caseStudyHandlers.ToggleFeature)

			protected.GET("/analytics/portfolio", analyticsHandlers.GetPortfolioAnalytics)
			protected.GET("/analytics/case-study/:id", analyticsHandlers.GetCaseStudyAnalytics)

			protected.POST("/upload", uploadHandlers.UploadMedia)
			protected.DELETE("/upload", uploadHandlers.DeleteMedia)
		}
	}

	// Public portfolio pages live at the root, keyed by username.
	r.GET("/:username", publicHandlers.GetPublicPortfolio)
	r.GET("/:username/:slug", publicHandlers.GetPublicCaseStudy)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Go API server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Go API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
