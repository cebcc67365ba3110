package main

// Retention sweeper: removes expired generated resumes and temp uploads on a
// fixed interval. Run alongside the API server:
//   go run ./cmd/sweeper

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"resume-tailor/internal/bootstrap"
	"resume-tailor/internal/shared/config"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("retention sweeper started interval=%s", app.Retention.Interval)
	app.Retention.Run(ctx)

	log.Printf("retention sweeper stopped")
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
