package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agendamoz/barber-platform/internal/app/bootstrap"
	"github.com/agendamoz/barber-platform/internal/config"
	"github.com/agendamoz/barber-platform/internal/notify"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.UseMemoryQueue {
		logger.Error("notify worker requires an SQS queue; the in-memory queue does not cross processes")
		os.Exit(1)
	}

	queue, err := bootstrap.BuildReceiptQueue(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build receipt queue", "error", err)
		os.Exit(1)
	}

	worker := notify.NewWorker(queue, notify.LogSender{Logger: logger}, logger)

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	logger.Info("starting receipt workers", "count", workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("receipt worker stopped", "error", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("notify worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
