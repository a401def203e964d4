package i18n

import (
	"fmt"
	"reflect"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

// Labels 界面与导出文本使用的全部文案
type Labels struct {
	AppTitle        string `json:"app_title"`
	TopicAI         string `json:"topic_ai"`
	TopicEcommerce  string `json:"topic_ecommerce"`
	Generate        string `json:"generate"`
	Analyzing       string `json:"analyzing"`
	Ready           string `json:"ready"`
	ReadyDesc       string `json:"ready_desc"`
	GeneratedOn     string `json:"generated_on"`
	Insights        string `json:"insights"`
	DingTalk        string `json:"dingtalk"`
	WeChat          string `json:"wechat"`
	Sources         string `json:"sources"`
	Error           string `json:"error"`
	Summary         string `json:"summary"`
	Impact          string `json:"impact"`
	Takeaway        string `json:"takeaway"`
	TopTen          string `json:"top_ten"`
	SourcesFallback string `json:"sources_fallback"`
}

// TopicLabel 领域的本地化名称
func (l Labels) TopicLabel(t model.Topic) string {
	switch model.MustTopic(t) {
	case model.TopicEcommerce:
		return l.TopicEcommerce
	default:
		return l.TopicAI
	}
}

// Catalog 按语言封闭的文案表，构造时校验完整性
type Catalog struct {
	tables map[model.Language]Labels
}

// New 每种语言都必须存在且所有字段非空，否则返回错误
func New(tables map[model.Language]Labels) (*Catalog, error) {
	c := &Catalog{tables: make(map[model.Language]Labels, len(tables))}
	for _, lang := range model.Languages() {
		labels, ok := tables[lang]
		if !ok {
			return nil, fmt.Errorf("i18n: missing labels for language %q", lang)
		}
		if field := firstEmpty(labels); field != "" {
			return nil, fmt.Errorf("i18n: label %s is empty for language %q", field, lang)
		}
		c.tables[lang] = labels
	}
	for lang := range tables {
		if !lang.Valid() {
			return nil, fmt.Errorf("i18n: unsupported language %q", lang)
		}
	}
	return c, nil
}

// MustNew 与 New 相同，出错时 panic
func MustNew(tables map[model.Language]Labels) *Catalog {
	c, err := New(tables)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup 返回指定语言的文案
func (c *Catalog) Lookup(lang model.Language) Labels {
	return c.tables[model.MustLanguage(lang)]
}

func firstEmpty(labels Labels) string {
	v := reflect.ValueOf(labels)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).String() == "" {
			return v.Type().Field(i).Name
		}
	}
	return ""
}

var defaultCatalog = MustNew(map[model.Language]Labels{
	model.LanguageZh: {
		AppTitle:        "TrendRadar AI",
		TopicAI:         "AI 技术",
		TopicEcommerce:  "跨境电商",
		Generate:        "生成榜单 (Top 10)",
		Analyzing:       "正在全网检索并总结...",
		Ready:           "准备探索趋势",
		ReadyDesc:       "选择一个领域并点击生成，利用 AI 检索国内外服务商动态及行业热点。",
		GeneratedOn:     "生成时间",
		Insights:        "条核心洞察",
		DingTalk:        "钉钉卡片",
		WeChat:          "微信消息",
		Sources:         "信息源",
		Error:           "获取趋势失败。请检查 API Key 并重试。",
		Summary:         "摘要",
		Impact:          "影响",
		Takeaway:        "启示",
		TopTen:          "热点 Top 10",
		SourcesFallback: "AI 搜索溯源",
	},
	model.LanguageEn: {
		AppTitle:        "TrendRadar AI",
		TopicAI:         "AI Technology",
		TopicEcommerce:  "Cross-border E-commerce",
		Generate:        "Generate Top 10",
		Analyzing:       "Searching & Summarizing...",
		Ready:           "Ready to Scout Trends",
		ReadyDesc:       "Select a domain and click generate to fetch the latest insights using AI.",
		GeneratedOn:     "Generated on",
		Insights:        "key insights found",
		DingTalk:        "DingTalk Card",
		WeChat:          "WeChat Msg",
		Sources:         "Information Sources",
		Error:           "Failed to fetch trends. Please check your API key and try again.",
		Summary:         "Summary",
		Impact:          "Impact",
		Takeaway:        "Key Takeaway",
		TopTen:          "Top 10 Trends",
		SourcesFallback: "AI Search Grounding",
	},
})

// Default 内置中英文文案
func Default() *Catalog {
	return defaultCatalog
}
