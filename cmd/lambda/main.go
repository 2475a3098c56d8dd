package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/api/lambda"
	"github.com/spec-kit/ticket-api/internal/app"
	"github.com/spec-kit/ticket-api/internal/config"
	"github.com/spec-kit/ticket-api/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer store.Close()

	api := app.NewAPI(cfg, store, logger)
	defer api.Close()
	awslambda.Start(lambda.NewProxyHandler(api.Dispatcher, api.Builder))
}
