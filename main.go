package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"gerejaku_backend/internals/configs"
	database "gerejaku_backend/internals/databases"
	scheduler "gerejaku_backend/internals/features/users/auth/scheduler"
	middlewares "gerejaku_backend/internals/middlewares"
	routes "gerejaku_backend/internals/route"
	"gerejaku_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            middlewares.ErrorHandler,
		BodyLimit:               6 * 1024 * 1024, // logo uploads
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrations
	database.ConnectDB()
	database.TunePool()
	if configs.GetEnvBool("RUN_MIGRATIONS", true) {
		if err := database.RunMigrations(); err != nil {
			configs.Log.Fatalf("❌ migrations failed: %v", err)
		}
	}
	if configs.GetEnvBool("SEED_DEMO", false) {
		seeds.RunAllSeeds(database.DB)
	}
	database.WarmUpQueries()

	// ⏱ housekeeping after the DB is ready
	cleanup, err := scheduler.StartHousekeeping(database.DB)
	if err != nil {
		configs.Log.Fatalf("❌ housekeeping schedule: %v", err)
	}

	routes.SetupRoutes(app, database.DB)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		configs.Log.Infof("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			configs.Log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop accepting, let cron jobs finish, close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	configs.Log.Info("🛑 shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	select {
	case <-cleanup.Stop().Done():
	case <-ctx.Done():
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
