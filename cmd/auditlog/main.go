// Command auditlog consumes account events from RabbitMQ and appends them
// to <dir>/account.log.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/iliyamo/record-tracker/internal/config"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/queue"
)

func main() {
	dir := pflag.String("dir", "logs", "directory holding account.log")
	pflag.Parse()

	cfg, err := config.LoadEvents()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Env == "prod")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.RabbitMQURL, Queue: cfg.EventsQueue, Dir: *dir, Log: logger}
	logger.Info(ctx, "auditlog: consuming", "queue", cfg.EventsQueue, "dir", *dir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "auditlog stopped", "err", err)
		os.Exit(1)
	}
}
