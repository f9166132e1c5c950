package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundsteps/internal/catalog"
	"soundsteps/internal/config"
	"soundsteps/internal/database"
	"soundsteps/internal/events"
	"soundsteps/internal/feedback"
	"soundsteps/internal/handlers"
	"soundsteps/internal/leaderboard"
	"soundsteps/internal/progress"
	"soundsteps/internal/repository"
	"soundsteps/internal/security"
	"soundsteps/internal/service"
	"soundsteps/internal/storage"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed the username screening list (non-fatal: an empty table means
	// screening is a no-op until the next restart)
	if err := db.SeedBadWords(); err != nil {
		log.Printf("Warning: Failed to seed bad words filter: %v", err)
	}

	// Persistent key-value store for progress and leaderboard records
	store := storage.NewSQLStore(db)

	// Achievement/XP catalog
	cat := catalog.Load(cfg.CatalogPath)
	if cfg.XPPerLevel > 0 {
		cat.XPPerLevel = cfg.XPPerLevel
	}

	// Gamification event bus and celebration feed
	bus := events.NewBus()
	celebrations := feedback.NewService(bus)
	go func() {
		for c := range celebrations.Celebrations() {
			log.Printf("Celebration for %s: %s (%s)", c.UserID, c.Title, c.Kind)
		}
	}()

	// Core engines
	progressService := progress.NewService(store, cat, bus)
	board := leaderboard.New(store)

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	tokens := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenDuration)
	authService := service.NewAuthService(userRepo, tokens, store, db)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
		RedirectURL:  cfg.OAuthRedirectBase + "/api/auth/google/callback",
	}

	// Initialize handlers
	limiter := security.NewRateLimiter(30, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, googleOAuth, cfg.AppBaseURL)
	progressHandler := handlers.NewProgressHandler(progressService, board)
	leaderboardHandler := handlers.NewLeaderboardHandler(board)
	contentHandler := handlers.NewContentHandler(cat)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/guest", middleware.RateLimit(authHandler.Guest))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("GET /api/auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.GoogleOAuthCallback)
	mux.HandleFunc("POST /api/auth/password-reset/request", middleware.RateLimit(authHandler.RequestPasswordReset))
	mux.HandleFunc("POST /api/auth/password-reset/confirm", middleware.RateLimit(authHandler.ResetPassword))

	// Progress routes
	mux.HandleFunc("GET /api/progress/stats", middleware.RequireAuth(progressHandler.GetStats))
	mux.HandleFunc("POST /api/progress/activity", middleware.RequireAuth(progressHandler.RecordActivity))
	mux.HandleFunc("POST /api/progress/complete/{module}", middleware.RequireAuth(progressHandler.CompleteModule))
	mux.HandleFunc("GET /api/progress/{userId}", middleware.RequireAuth(progressHandler.GetProgress))
	mux.HandleFunc("POST /api/progress/{userId}", middleware.RequireAuth(progressHandler.SaveProgress))
	mux.HandleFunc("DELETE /api/progress/{userId}", middleware.RequireAuth(progressHandler.ResetProgress))

	// Leaderboard routes
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.GetLeaderboard)
	mux.HandleFunc("GET /api/leaderboard/rank", middleware.RequireAuth(leaderboardHandler.GetRank))

	// Learning content routes
	mux.HandleFunc("GET /api/flashcards/letters", contentHandler.GetLetters)
	mux.HandleFunc("GET /api/blending/words", contentHandler.GetBlendWords)
	mux.HandleFunc("GET /api/minimal-pairs", contentHandler.GetMinimalPairs)
	mux.HandleFunc("GET /api/achievements", contentHandler.GetAchievements)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
