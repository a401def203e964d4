package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/logger"
	dm "github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search/factory"
)

// Source 报告生成边界：每次调用只发起一次请求，不做重试
type Source interface {
	Generate(ctx context.Context, topic dm.Topic, lang dm.Language) (*dm.TrendReport, error)
}

const (
	defaultMaxSources = 8
	minSnippetBytes   = 300
	maxSnippetBytes   = 2000
	groundingWindow   = 7 // 天
	fetchConcurrency  = 4
	maxFetchBudget    = 20 * time.Second
)

// Fetcher 抓取网页正文，必须遵守 ctx 的取消
type Fetcher func(ctx context.Context, url string) (string, error)

// Client 基于大模型的报告生成客户端，可选地先用搜索结果做溯源
type Client struct {
	chatModel   model.BaseChatModel
	searcher    search.Searcher
	limiter     *rate.Limiter
	temperature float32
	maxSources  int
	fetch       Fetcher
	now         func() time.Time
}

var _ Source = (*Client)(nil)

// Option 客户端选项
type Option func(*Client)

// WithSearcher 设置溯源搜索，nil 表示不检索
func WithSearcher(s search.Searcher) Option {
	return func(c *Client) { c.searcher = s }
}

func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

func WithMaxSources(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxSources = n
		}
	}
}

// WithFetcher 替换正文抓取，nil 表示只使用搜索摘要
func WithFetcher(f Fetcher) Option {
	return func(c *Client) { c.fetch = f }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient 创建生成客户端
func NewClient(cm model.BaseChatModel, opts ...Option) *Client {
	c := &Client{
		chatModel:   cm,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		temperature: 0.3,
		maxSources:  defaultMaxSources,
		fetch:       fetchAndCleanContent,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewChatModel 初始化 OpenAI 兼容的对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return chatModel, nil
}

// NewLimiter Limit 为 RPM/60，Burst 为 QPS；RPM 未配置时不限流
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	if cfg.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
}

// NewFromConfig 按配置组装模型、搜索和限流器
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	chatModel, err := NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}
	if searcher == nil {
		logger.Log.Info("未配置搜索服务，报告将不包含信息源")
	}
	return NewClient(chatModel,
		WithSearcher(searcher),
		WithLimiter(NewLimiter(cfg.Concurrency)),
		WithTemperature(cfg.Temperature()),
		WithMaxSources(cfg.Search.MaxResults),
	), nil
}

// Generate 实现 Source
func (c *Client) Generate(ctx context.Context, topic dm.Topic, lang dm.Language) (*dm.TrendReport, error) {
	dm.MustTopic(topic)
	dm.MustLanguage(lang)

	now := c.now()
	date := now.Format(time.DateOnly)
	docs := c.ground(ctx, topic, lang, now)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: ErrProviderUnavailable, Err: err}
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt(lang)),
		schema.UserMessage(userPrompt(topic, lang, date, docs)),
	}
	logger.Log.Infof("请求生成榜单 [%s/%s]，溯源资料 %d 条", topic, lang, len(docs))

	resp, err := c.chatModel.Generate(ctx, messages, model.WithTemperature(c.temperature))
	if err != nil {
		logger.Log.Errorf("生成榜单失败 [%s/%s]: %v", topic, lang, err)
		return nil, classify(err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, &Error{Kind: ErrMalformedResponse, Err: errors.New("empty response")}
	}

	grounding := make([]dm.GroundingSource, len(docs))
	for i, d := range docs {
		grounding[i] = d.GroundingSource
	}
	report, err := Parse(resp.Content, grounding, topic, lang, date)
	if err != nil {
		logger.Log.Warnf("解析榜单失败 [%s/%s]: %v", topic, lang, err)
		return nil, err
	}
	logger.Log.Infof("榜单生成完成 [%s/%s]: %d 条", topic, lang, len(report.Items))
	return report, nil
}

// ground 检索失败只降级为无溯源生成，不算服务商故障
func (c *Client) ground(ctx context.Context, topic dm.Topic, lang dm.Language, now time.Time) []document {
	if c.searcher == nil {
		return nil
	}

	req := &search.Request{
		Query:             searchQueries[topic][lang],
		Topic:             "news",
		Language:          string(lang),
		MaxResults:        c.maxSources * 2,
		IncludeRawContent: true,
		StartDate:         now.AddDate(0, 0, -groundingWindow).Format(time.DateOnly),
		EndDate:           now.Format(time.DateOnly),
	}
	resp, err := c.searcher.Search(ctx, req)
	if err != nil {
		logger.Log.Warnf("检索溯源失败 [%s]: %v", topic, err)
		return nil
	}

	var docs []document
	for _, item := range resp.Results {
		if item.Title == "" || item.URL == "" {
			continue
		}
		content := item.Content
		if len(item.RawContent) > len(content) {
			content = item.RawContent
		}
		docs = append(docs, document{
			GroundingSource: dm.GroundingSource{Title: item.Title, URI: item.URL},
			published:       item.PublishedDate,
			content:         truncate(strings.TrimSpace(content), maxSnippetBytes),
		})
		if len(docs) >= c.maxSources {
			break
		}
	}
	c.enrich(ctx, docs)
	return docs
}

// fetchBudget 正文抓取最多占用剩余时间的一半，给限流和模型调用留出时间
func fetchBudget(ctx context.Context) time.Duration {
	budget := maxFetchBudget
	if dl, ok := ctx.Deadline(); ok {
		if half := time.Until(dl) / 2; half < budget {
			budget = half
		}
	}
	return budget
}

// enrich 并发抓取摘要过短的资料正文；超出预算时直接使用已拿到的结果
func (c *Client) enrich(ctx context.Context, docs []document) {
	if c.fetch == nil {
		return
	}
	urls := make(map[int]string)
	for i, d := range docs {
		if len(d.content) < minSnippetBytes {
			urls[i] = d.URI
		}
	}
	if len(urls) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, fetchBudget(ctx))
	defer cancel()

	var mu sync.Mutex
	fetched := make(map[int]string, len(urls))
	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(fetchConcurrency)
		for i, u := range urls {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				text, err := c.fetch(ctx, u)
				if err != nil {
					logger.Log.Debugf("抓取正文失败 %s: %v", u, err)
					return nil
				}
				mu.Lock()
				fetched[i] = text
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Log.Warnf("抓取正文超时，%d 条资料只使用搜索摘要", len(urls))
	}

	mu.Lock()
	defer mu.Unlock()
	for i, text := range fetched {
		text = truncate(strings.TrimSpace(text), maxSnippetBytes)
		if len(text) > len(docs[i].content) {
			docs[i].content = text
		}
	}
}

func fetchAndCleanContent(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, res.StatusCode)
	}

	article, err := readability.FromReader(res.Body, req.URL)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// truncate 按字节截断且不切断 UTF-8 字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size > 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
