package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/internal/conf"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/controller"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/generator"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/share"
)

// NewRadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config，密钥允许由环境变量覆盖
func NewRadarConfig(c *conf.Radar) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		cfg.ApplyEnv()
		return cfg
	}
	cfg.RequestTimeout = int(c.RequestTimeout)
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL:     c.Llm.BaseUrl,
			APIKey:      c.Llm.ApiKey,
			Model:       c.Llm.Model,
			Temperature: c.Llm.Temperature,
		}
	}
	if c.Search != nil {
		cfg.Search.Provider = c.Search.Provider
		cfg.Search.MaxResults = int(c.Search.MaxResults)
		if c.Search.Tavily != nil {
			cfg.Search.Tavily.APIKey = c.Search.Tavily.ApiKey
		}
		if c.Search.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: c.Search.Searxng.BaseUrl,
				Timeout: int(c.Search.Searxng.Timeout),
			}
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	if c.Share != nil {
		cfg.Share = config.ShareConfig{
			DingTalkWebhook: c.Share.DingtalkWebhook,
			WeChatWebhook:   c.Share.WechatWebhook,
		}
	}
	cfg.ApplyEnv()
	return cfg
}

// NewReportSource 初始化报告生成客户端
func NewReportSource(cfg *config.Config, logger log.Logger) (generator.Source, error) {
	src, err := generator.NewFromConfig(context.Background(), cfg)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init report generator: %v", err)
		return nil, err
	}
	return src, nil
}

// NewController 退出时等待未完成的生成请求
func NewController(cfg *config.Config, src generator.Source, logger log.Logger) (*controller.Controller, func()) {
	ctrl := controller.New(src, controller.Options{
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})
	cleanup := func() {
		log.NewHelper(logger).Info("Waiting for in-flight generate requests")
		ctrl.Wait()
	}
	return ctrl, cleanup
}

func NewShareClient(cfg *config.Config) *share.Client {
	return share.NewClient(cfg.Share)
}
