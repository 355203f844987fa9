package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docsync-be/internal/bootstrap"
	"docsync-be/internal/config"
	"docsync-be/internal/constant"
	"docsync-be/internal/scheduler"
	"docsync-be/internal/server"
	"docsync-be/internal/tracer"
	"docsync-be/pkg/database"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// Tracer is a no-op unless OTEL_ENABLED=true
	tracerOpts := tracer.Options{
		Enabled:     cfg.App.OtelEnabled,
		Endpoint:    cfg.App.OtelEndpoint,
		Environment: cfg.App.Environment,
		SourceIndex: cfg.Elasticsearch.Index,
		WriteMode:   cfg.Storage.WriteMode,
	}
	if cfg.Scheduler.Enabled {
		tracerOpts.Cron = cfg.Scheduler.Cron
	}
	shutdownTracer := tracer.InitTracer(tracerOpts)
	defer shutdownTracer(context.Background())

	if err := scheduler.ValidateCron(cfg.Scheduler.Cron); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatalf("[FATAL] Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start trigger consumer: %v", err)
	}
	if err := container.SyncRequestService.Start(ctx); err != nil {
		log.Printf("[WARN] Sync requests over NATS disabled: %v", err)
	}

	if cfg.Scheduler.Enabled {
		if err := container.Scheduler.Start(cfg.Scheduler.Cron); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
	} else {
		container.Logger.Info(constant.ModuleScheduler, "Cron schedule disabled, runs start on request only", nil)
	}

	g, gctx := errgroup.WithContext(ctx)

	// 5. Ops Server
	if cfg.App.HttpEnabled {
		srv := server.New(cfg, container)
		g.Go(func() error {
			return srv.Run()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	// 6. Shutdown: stop the timer, then wait for the active run to finish
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down, waiting for the active processing run...")
		container.Scheduler.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[ERROR] Worker stopped with error: %v", err)
	}
	log.Println("✅ Worker stopped")
}
