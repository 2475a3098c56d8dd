package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-api/internal/api/http"
	"github.com/spec-kit/ticket-api/internal/api/http/handlers"
	"github.com/spec-kit/ticket-api/internal/app"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := app.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		api := app.NewAPI(cfg, store, logger)
		defer api.Close()
		server := httptransport.NewServer(httptransport.ServerConfig{
			AppName:            cfg.App.Name,
			Logger:             logger,
			Metrics:            api.Metrics,
			Builder:            api.Builder,
			Dispatcher:         api.Dispatcher,
			Health:             handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store.Driver, store.Repo, api.Metrics),
			Timeout:            cfg.App.RequestTimeout(),
			RateLimitPerMinute: cfg.App.RateLimitPerMinute,
		})

		go func() {
			logger.Info("http server listening",
				zap.String("addr", cfg.App.Addr()),
				zap.String("store", store.Driver))
			if err := server.Listen(cfg.App.Addr()); err != nil {
				logger.Error("fiber listen", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()
		logger.Info("shutting down")
		return server.ShutdownWithTimeout(shutdownTimeout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
