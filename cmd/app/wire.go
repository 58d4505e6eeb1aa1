//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/smart-wardrobe/internal/bootstrap"
	"github.com/yanqian/smart-wardrobe/internal/domain/outfit"
	"github.com/yanqian/smart-wardrobe/internal/infra/config"
	"github.com/yanqian/smart-wardrobe/internal/infra/gateway"
	httpiface "github.com/yanqian/smart-wardrobe/internal/interface/http"
	"github.com/yanqian/smart-wardrobe/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideGatewayConfig,
		provideControllerConfig,
		provideCycleCounters,
		gateway.NewClient,
		outfit.NewController,
		wire.Bind(new(outfit.Fetcher), new(*gateway.Client)),
		wire.Bind(new(httpiface.BreakerReporter), new(*gateway.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
