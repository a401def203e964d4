package dedup

import "github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"

// SourceTitles 按首次出现的顺序返回去重后的信息源标题，标题区分大小写精确匹配
func SourceTitles(items []model.TrendItem) []string {
	seen := make(map[string]struct{})
	titles := []string{}
	for _, item := range items {
		for _, src := range item.Sources {
			if _, ok := seen[src.Title]; ok {
				continue
			}
			seen[src.Title] = struct{}{}
			titles = append(titles, src.Title)
		}
	}
	return titles
}
