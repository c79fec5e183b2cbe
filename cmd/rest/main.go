package main

import (
	"context"
	"log"
	"time"

	"ai-sqlchat-be/internal/bootstrap"
	"ai-sqlchat-be/internal/config"
	"ai-sqlchat-be/internal/server"
	"ai-sqlchat-be/internal/tracer"
	"ai-sqlchat-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	ctx := context.Background()
	if err := container.TaskRunnerService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start task consumer: %v", err)
	}
	go func() {
		log.Println("Background: Starting scheduled task dispatcher...")
		container.TaskRunnerService.Start(ctx, time.Duration(cfg.Scheduler.PollIntervalSeconds)*time.Second)
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
