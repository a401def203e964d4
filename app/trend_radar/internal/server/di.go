package server

import (
	"github.com/google/wire"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/internal/service"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/share"
)

// ProviderSet 是趋势雷达服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Radar providers
	NewRadarConfig,
	NewReportSource,
	NewController,
	NewShareClient,

	// Service providers
	service.NewTrendService,
	wire.Bind(new(service.Sharer), new(*share.Client)),
)
