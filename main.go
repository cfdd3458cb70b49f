package main

import (
	"os"
	"os/signal"
	"syscall"

	"anneta.link/configs"
	"anneta.link/configs/configslog"
	"anneta.link/routes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		configslog.Init("development")
		configslog.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	configslog.Init(cfg.AppEnv)
	defer configslog.Sync()

	if _, err := configs.InitDB(cfg.DatabaseDSN); err != nil {
		configslog.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer configs.CloseDB()

	app := fiber.New(fiber.Config{
		AppName:               "anneta.link",
		DisableStartupMessage: cfg.AppEnv == "production",
	})

	routes.SetupRoutes(app, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		configslog.SLog.Info("Shutting down...")
		if err := app.Shutdown(); err != nil {
			configslog.Log.Error("Shutdown error", zap.Error(err))
		}
	}()

	configslog.SLog.Infof("Listening on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		configslog.Log.Fatal("Server stopped", zap.Error(err))
	}
}
