package generator

import (
	"fmt"
	"strings"

	dm "github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

// document 一条检索到的溯源资料，编号从 1 开始
type document struct {
	dm.GroundingSource
	published string
	content   string
}

var searchQueries = map[dm.Topic]map[dm.Language]string{
	dm.TopicAI: {
		dm.LanguageZh: "AI 技术 大模型 服务商 最新动态",
		dm.LanguageEn: "AI technology large language model providers latest news",
	},
	dm.TopicEcommerce: {
		dm.LanguageZh: "跨境电商 平台 政策 物流 服务商 最新动态",
		dm.LanguageEn: "cross-border e-commerce platforms policy logistics latest news",
	},
}

var topicFocus = map[dm.Topic]string{
	dm.TopicAI:        "AI technology: model releases, AI infrastructure and cloud providers, developer tooling, regulation, funding, both Chinese and international vendors",
	dm.TopicEcommerce: "cross-border e-commerce: marketplaces (Amazon, Temu, TikTok Shop, AliExpress, SHEIN), payments, logistics, tariffs and customs policy, SaaS service providers, both Chinese and international",
}

func languageName(lang dm.Language) string {
	if lang == dm.LanguageZh {
		return "Simplified Chinese"
	}
	return "English"
}

func systemPrompt(lang dm.Language) string {
	return fmt.Sprintf("You are a senior industry analyst. You write concise, factual trend briefings in %s. "+
		"Output markdown only, exactly in the layout you are given, with no preamble or closing remarks.", languageName(lang))
}

func userPrompt(topic dm.Topic, lang dm.Language, date string, docs []document) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Today is %s. Identify the 10 most important current trends in %s.\n", date, topicFocus[topic])
	fmt.Fprintf(&sb, "Rank them by importance, most important first. Write every value in %s.\n\n", languageName(lang))

	if len(docs) > 0 {
		sb.WriteString("Use the numbered news results below as evidence and cite them by number.\n\n")
		for i, d := range docs {
			fmt.Fprintf(&sb, "[%d] %s\nURL: %s\n", i+1, d.Title, d.URI)
			if d.published != "" {
				fmt.Fprintf(&sb, "Published: %s\n", d.published)
			}
			fmt.Fprintf(&sb, "%s\n\n", d.content)
		}
	} else {
		sb.WriteString("No news results are available; leave Sources empty.\n\n")
	}

	sb.WriteString(`Use exactly this layout for each trend, keeping the English field labels:

## 1. <trend title>
**Summary:** <two or three sentences>
**Impact:** <who is affected and how>
**Takeaway:** <one actionable sentence>
**Sources:** [1], [3]
`)
	return sb.String()
}
