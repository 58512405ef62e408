package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"cfb-pickem-go/config"
	"cfb-pickem-go/database"
	"cfb-pickem-go/handlers"
	"cfb-pickem-go/logging"
	"cfb-pickem-go/middleware"
	"cfb-pickem-go/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		Timeout:  cfg.Database.Timeout,
	})
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	// Repositories
	pickRepo := database.NewMongoPickRepository(db)
	pickSetRepo := database.NewMongoPickSetRepository(db)
	gameRepo := database.NewMongoGameRepository(db)
	userRepo := database.NewMongoUserRepository(db)
	paymentRepo := database.NewMongoPaymentRepository(db)

	// Services
	grouper := services.NewGrouperService()
	pickService := services.NewPickService(pickRepo, pickSetRepo, gameRepo, grouper, cfg.Pool.GamesPerWeek)
	duplicates := services.NewDuplicateService()
	resolver := services.NewConflictResolver(pickSetRepo, paymentRepo, cfg.Pool.GamesPerWeek, cfg.Pool.AllowIncompleteAutoAssign)
	scoring := services.NewScoringService(pickSetRepo)
	leaderboard := services.NewLeaderboardService(pickSetRepo)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret)

	// Background score updater
	if cfg.Pool.UpdaterEnabled {
		feed := services.NewScoreFeedClient(cfg.Pool.ScoreFeedURL)
		updater := services.NewScoreUpdater(feed, gameRepo, scoring, cfg.Pool.CurrentSeason, cfg.Pool.PollInterval)
		updater.Start()
		defer updater.Stop()
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboard, cfg.Pool.CurrentSeason)
	adminHandler := handlers.NewAdminHandler(pickService, duplicates, resolver, pickSetRepo, cfg.Pool.CurrentSeason)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Routes
	r := mux.NewRouter()
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods("GET")

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/group", adminHandler.GroupPicks).Methods("POST")
	admin.HandleFunc("/duplicates", adminHandler.GetDuplicates).Methods("GET")
	admin.HandleFunc("/resolve", adminHandler.Resolve).Methods("POST")
	admin.HandleFunc("/resolve/choice", adminHandler.ApplyChoice).Methods("POST")

	addr := cfg.GetServerAddress()
	logging.Infof("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logging.Fatalf("Server failed: %v", err)
	}
}
