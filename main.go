package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"taskboard/config"
	"taskboard/database"
	"taskboard/handlers"
	"taskboard/middleware"
	"taskboard/service"
	"taskboard/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	taskStore := store.NewGormStore(database.GetDB())
	taskService := service.NewTaskService(taskStore, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, taskStore, logger)
	assignmentHandler := handlers.NewAssignmentHandler(taskService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)

	router := handlers.NewRouter(authHandler, assignmentHandler, taskHandler, taskStore.GetEmployee)

	log.Printf("Server starting on port %s (%s database)", cfg.ServerPort, cfg.DatabaseDriver)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
