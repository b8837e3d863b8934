// Package main is the entry point for the taskcollab CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskcollab/internal/backend/taskapi"
	"taskcollab/internal/cli"
	"taskcollab/internal/commands"
	"taskcollab/internal/config"
	"taskcollab/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	factory := func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Service, error) {
		return taskapi.New(cfg, logger)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
