package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moodmix/internal/server"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	addrConfig := r.config.Server
	if host := cmd.String("host"); host != "" {
		addrConfig.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		addrConfig.Port = int(port)
	}

	store, closer, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPIHandler(r.newEngine(store), store, r.search, r.broker, logger)
	srv := server.NewServer(addrConfig.Addr(), server.NewAPIRouter(api, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting api", "addr", srv.Addr(), "storage", r.config.Storage.Driver)
	return srv.Run(ctx)
}
