package model

import (
	"fmt"
	"strings"
)

// Topic 榜单领域
type Topic string

const (
	TopicAI        Topic = "AI Technology"
	TopicEcommerce Topic = "Cross-border E-commerce"
)

var topicSlugs = map[Topic]string{
	TopicAI:        "ai",
	TopicEcommerce: "ecommerce",
}

// Topics 返回全部领域，顺序固定
func Topics() []Topic {
	return []Topic{TopicAI, TopicEcommerce}
}

// Valid 判断是否为已知领域
func (t Topic) Valid() bool {
	_, ok := topicSlugs[t]
	return ok
}

// Slug 用于 URL、文件名等场景的短名
func (t Topic) Slug() string {
	return topicSlugs[MustTopic(t)]
}

// ParseTopic 解析短名或完整名称
func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	for t, slug := range topicSlugs {
		if strings.EqualFold(s, slug) || strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q", s)
}

// MustTopic 调用方传入枚举外的值属于编程错误，直接 panic
func MustTopic(t Topic) Topic {
	if !t.Valid() {
		panic(fmt.Sprintf("model: invalid topic %q", string(t)))
	}
	return t
}

// Language 报告语言
type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

func Languages() []Language {
	return []Language{LanguageZh, LanguageEn}
}

func (l Language) Valid() bool {
	return l == LanguageZh || l == LanguageEn
}

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown language %q", s)
	}
	return l, nil
}

func MustLanguage(l Language) Language {
	if !l.Valid() {
		panic(fmt.Sprintf("model: invalid language %q", string(l)))
	}
	return l
}

// Platform 导出目标平台
type Platform string

const (
	PlatformDingTalk Platform = "dingtalk"
	PlatformWeChat   Platform = "wechat"
)

func Platforms() []Platform {
	return []Platform{PlatformDingTalk, PlatformWeChat}
}

func (p Platform) Valid() bool {
	return p == PlatformDingTalk || p == PlatformWeChat
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

func MustPlatform(p Platform) Platform {
	if !p.Valid() {
		panic(fmt.Sprintf("model: invalid platform %q", string(p)))
	}
	return p
}

// GroundingSource 信息源引用，去重时只以 Title 为准
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// TrendItem 单条趋势，按排名排列
type TrendItem struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Summary  string            `json:"summary"`
	Impact   string            `json:"impact"`
	Takeaway string            `json:"takeaway"`
	Sources  []GroundingSource `json:"sources"`
}

// MaxItems 单份报告最多保留的条目数
const MaxItems = 10

// TrendReport 一次生成结果的快照，构造后不再修改
type TrendReport struct {
	Topic       Topic       `json:"topic"`
	Language    Language    `json:"language"`
	Date        string      `json:"date"`
	Items       []TrendItem `json:"items"`
	RawMarkdown string      `json:"raw_markdown"`
}
