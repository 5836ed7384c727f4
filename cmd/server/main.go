package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crackit-game/crackit/internal/server/api"
	"github.com/crackit-game/crackit/internal/server/services"
	"github.com/crackit-game/crackit/internal/server/storage"
	"github.com/crackit-game/crackit/pkg/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crackit-server",
	Short: "Crackit game server - code guessing with email authentication",
	Long:  "Server component for Crackit providing the HTTP API, level minting and the leaderboard",
	// Default to serve command if no subcommand provided
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the game server",
	Long:  "Start the Crackit server with HTTP API and background presence sweeping",
	Run:   runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion("crackit-server"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) {

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.Printf("=== Crackit Server ===")
	log.Printf("%s", version.GetVersion("crackit-server"))
	log.Println()

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Pick the storage backend: Firestore when credentials are
	// configured, in-memory otherwise (development only, nothing
	// survives a restart).
	var userRepo storage.UserRepository
	var levelRepo storage.LevelRepository

	if os.Getenv("FIREBASE_CREDENTIALS_PATH") != "" {
		log.Println("Connecting to Firestore...")
		client, err := storage.NewFirestoreClient(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to Firestore: %v", err)
		}
		defer client.Close()

		userRepo = storage.NewFirestoreUserRepository(client)
		levelRepo = storage.NewFirestoreLevelRepository(client)
		log.Println("Firestore connected")
	} else {
		log.Println("Warning: FIREBASE_CREDENTIALS_PATH not set, using in-memory storage")
		userRepo = storage.NewMemoryUserRepository()
		levelRepo = storage.NewMemoryLevelRepository()
	}

	// Initialize services
	emailService, err := services.NewEmailService()
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := services.NewAuthService(userRepo, emailService)
	levelService := services.NewLevelService(levelRepo, userRepo)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	authHandler := api.NewAuthHandler(authService)
	levelHandler := api.NewLevelHandler(levelService)
	userHandler := api.NewUserHandler(userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.CORSMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"crackit"}`))
	})

	// Public routes
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/request-code", authHandler.RequestCode)
		r.Post("/verify-code", authHandler.VerifyCode)

		r.Group(func(r chi.Router) {
			r.Use(api.AuthMiddleware)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Protected routes
	r.Route("/api", func(r chi.Router) {
		r.Use(api.AuthMiddleware)

		r.Route("/levels", func(r chi.Router) {
			r.Get("/", levelHandler.ListLevels)
			r.Get("/{tier}", levelHandler.GetCurrentLevel)
			r.Post("/{tier}/guess", levelHandler.SubmitGuess)
		})

		r.Get("/users", userHandler.Leaderboard)
		r.Post("/users/heartbeat", userHandler.Heartbeat)
	})

	// Get server config
	host := os.Getenv("API_HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf("%s:%s", host, port)

	// Create server
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background presence sweeper
	go sweepStalePresence(userService)

	// Start server
	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// sweepStalePresence marks users offline when their last heartbeat is
// older than OFFLINE_AFTER (default 2m).
func sweepStalePresence(userService *services.UserService) {
	offlineAfter := 2 * time.Minute
	if raw := os.Getenv("OFFLINE_AFTER"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			offlineAfter = parsed
		} else {
			log.Printf("Warning: invalid OFFLINE_AFTER %q, using default: %v", raw, err)
		}
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()
		if count, err := userService.SweepOffline(ctx, offlineAfter); err != nil {
			log.Printf("Failed to sweep stale presence: %v", err)
		} else if count > 0 {
			log.Printf("Marked %d users offline", count)
		}
	}
}
