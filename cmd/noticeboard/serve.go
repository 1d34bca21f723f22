package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/noticeboard/pkg/httpserver"
	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

func serveCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			logger.SetAsDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, func(ctx context.Context) (*app, error) {
				return buildApp(ctx, cfg, log)
			})
		},
	}
}

func serve(ctx context.Context, cfg appConfig, build func(context.Context) (*app, error)) error {
	a, err := build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("shutdown cleanup failed", logger.Error(err))
		}
	}()

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(a.log))
	return srv.Run(ctx, a.routes())
}
