//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final binary.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/internal/conf"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/internal/server"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Radar, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		newApp,
	))
}
