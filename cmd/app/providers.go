package main

import (
	"github.com/yanqian/smart-wardrobe/internal/domain/outfit"
	"github.com/yanqian/smart-wardrobe/internal/infra/config"
	"github.com/yanqian/smart-wardrobe/internal/infra/gateway"
	"github.com/yanqian/smart-wardrobe/pkg/metrics"
)

func provideGatewayConfig(cfg *config.Config) gateway.Config {
	return gateway.Config{
		BaseURL:         cfg.Gateway.BaseURL,
		Timeout:         cfg.Gateway.Timeout,
		BreakerFailures: cfg.Gateway.Breaker.ConsecutiveFailures,
		BreakerCooldown: cfg.Gateway.Breaker.Cooldown,
	}
}

func provideControllerConfig(cfg *config.Config) outfit.Config {
	// Validate has already rejected anything but basic or smart.
	mode, _ := outfit.ParseMode(cfg.Session.DefaultMode)
	return outfit.Config{
		DefaultCity: cfg.Session.DefaultCity,
		DefaultMode: mode,
	}
}

func provideCycleCounters() *metrics.CycleCounters {
	return metrics.NewCycleCounters()
}
