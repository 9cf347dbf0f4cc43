package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"vecstore/internal/api"
	"vecstore/internal/collection"
	"vecstore/internal/config"
)

func main() {
	mode := flag.String("mode", "dev", "Run mode (dev or test)")
	flag.Parse()

	profile := "dev"
	if *mode == "test" {
		profile = "test"
	}

	appConfig, err := config.LoadConfigWithProfile(profile)
	if err != nil {
		slog.Error("Error loading config", "error", err, "profile", profile)
		os.Exit(1)
	}

	slog.Info("Loaded configuration", "profile", profile)

	setupLogging(appConfig.Server.LogLevel)
	setupGinMode(appConfig.Server.LogLevel)

	path := appConfig.Server.DataDir + "/collection.db"
	slog.Info("Opening collection", "path", path)
	coll, err := collection.OpenWithOptions(path, appConfig.Collection)
	if err != nil {
		slog.Error("Error opening collection", "error", err)
		os.Exit(1)
	}
	defer coll.Close()

	api.Initialize(coll)

	router := gin.Default()
	setupRoutes(router, appConfig)

	addr := fmt.Sprintf(":%d", appConfig.Server.Port)
	slog.Info("Server listening", "address", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("Error starting server", "error", err)
		os.Exit(1)
	}
}

func setupLogging(logLevel string) {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func setupGinMode(logLevel string) {
	switch strings.ToLower(logLevel) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "error":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}

func setupRoutes(router *gin.Engine, cfg *config.AppConfig) {
	api.SetupRoutes(router)
	if cfg.Server.SearchURLSuffix != "" && cfg.Server.SearchURLSuffix != "/search" {
		router.POST(cfg.Server.SearchURLSuffix, api.HandleSearch)
	}
	if cfg.Server.UpsertURLSuffix != "" && cfg.Server.UpsertURLSuffix != "/documents" {
		router.PUT(cfg.Server.UpsertURLSuffix, api.HandleUpsert)
	}
}
