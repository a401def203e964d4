package factory

import (
	"fmt"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search/searxng"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search/tavily"
)

// NewSearcher 根据配置创建搜索实例。未配置服务商且没有 tavily key 时返回 nil，表示不做检索溯源。
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		if cfg.Tavily.APIKey == "" {
			return nil, nil
		}
		provider = "tavily"
	}

	switch provider {
	case "none":
		return nil, nil

	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
