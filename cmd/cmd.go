package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"challenge-feed-backend/internal/config"
	"challenge-feed-backend/internal/handlers"
	"challenge-feed-backend/internal/middleware"
	"challenge-feed-backend/internal/repository"
	"challenge-feed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	// Initialize blob store
	blobs, err := services.NewBlobStore(
		context.Background(),
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}

	// Initialize push notifier (optional)
	var notifier services.FriendNotifier
	if cfg.APNS.Enabled {
		pushNotifier, err := services.NewPushNotifier(
			cfg.APNS.CertPath,
			cfg.APNS.CertPassword,
			cfg.APNS.Topic,
			cfg.APNS.Production,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
		notifier = pushNotifier
	}

	// Initialize services
	userService := services.NewUserService(userRepo, blobs, cfg.JWT.Secret)
	friendService := services.NewFriendService(friendRepo, userService, notifier)
	challengeService := services.NewChallengeService(challengeRepo)
	evidenceService := services.NewEvidenceService(blobs, challengeService)
	feedService := services.NewFeedService(friendService, challengeService)
	hub := services.NewFeedHub()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	feedHandler := handlers.NewFeedHandler(feedService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, evidenceService, friendService, userService, hub)
	wsHandler := handlers.NewWebSocketHandler(hub, userService, friendService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/me", userHandler.GetMe)
			r.Patch("/me/username", userHandler.UpdateUsername)
			r.Put("/me/profile-picture", userHandler.UploadProfilePicture)
			r.Put("/me/push-token", userHandler.UpdatePushToken)
			r.Get("/me/completed-challenges", challengeHandler.ListCompleted)
			r.Get("/me/progress", challengeHandler.GetProgress)

			r.Get("/users/search", userHandler.SearchUsers)
			r.Get("/users/{user_id}", userHandler.GetUser)
			r.Get("/users/{user_id}/challenges/{challenge_id}/evidence-url", challengeHandler.GetEvidenceURL)

			r.Get("/friends", friendHandler.ListFriends)
			r.Delete("/friends/{friend_id}", friendHandler.RemoveFriend)
			r.Post("/friend-requests", friendHandler.SendRequest)
			r.Get("/friend-requests", friendHandler.ListRequests)
			r.Post("/friend-requests/{request_id}/accept", friendHandler.AcceptRequest)
			r.Post("/friend-requests/{request_id}/reject", friendHandler.RejectRequest)

			r.Get("/feed", feedHandler.GetFeed)

			r.Get("/categories", challengeHandler.ListCategories)
			r.Get("/categories/{category_id}/challenges", challengeHandler.ListChallenges)
			r.Post("/categories/{category_id}/challenges", challengeHandler.CreateChallenge)
			r.Get("/categories/{category_id}/challenges/{challenge_id}", challengeHandler.GetChallenge)
			r.Post("/categories/{category_id}/challenges/{challenge_id}/evidence", challengeHandler.UploadEvidence)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
