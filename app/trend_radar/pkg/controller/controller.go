package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/dedup"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/export"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/generator"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/i18n"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/store"
)

// ErrNoReport 当前领域还没有可导出的报告
var ErrNoReport = errors.New("no report for topic")

const defaultTimeout = 120 * time.Second

// ViewModel 当前选中领域的展示数据
type ViewModel struct {
	Topic           model.Topic        `json:"topic"`
	TopicSlug       string             `json:"topic_slug"`
	TopicLabel      string             `json:"topic_label"`
	Language        model.Language     `json:"language"`
	Labels          i18n.Labels        `json:"labels"`
	Status          store.Status       `json:"status"`
	Report          *model.TrendReport `json:"report,omitempty"`
	IsLoading       bool               `json:"is_loading"`
	Error           string             `json:"error,omitempty"`
	InsightCount    int                `json:"insight_count"`
	Sources         []string           `json:"sources"`
	SourcesFallback bool               `json:"sources_fallback"`
}

// Options 可选依赖，零值字段使用默认实现
type Options struct {
	Store     *store.Store
	Formatter *export.Formatter
	Catalog   *i18n.Catalog
	Timeout   time.Duration
	Logger    log.Logger
}

// Controller 把用户操作映射到报告状态和导出
type Controller struct {
	source    generator.Source
	store     *store.Store
	formatter *export.Formatter
	catalog   *i18n.Catalog
	timeout   time.Duration
	log       *log.Helper

	mu    sync.Mutex
	topic model.Topic
	lang  model.Language

	wg sync.WaitGroup
}

// New 默认选中 AI 领域、中文
func New(source generator.Source, opts Options) *Controller {
	c := &Controller{
		source:    source,
		store:     opts.Store,
		formatter: opts.Formatter,
		catalog:   opts.Catalog,
		timeout:   opts.Timeout,
		topic:     model.TopicAI,
		lang:      model.LanguageZh,
	}
	if c.store == nil {
		c.store = store.New()
	}
	if c.catalog == nil {
		c.catalog = i18n.Default()
	}
	if c.formatter == nil {
		c.formatter = export.NewFormatter(c.catalog)
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger
	}
	c.log = log.NewHelper(logger)
	return c
}

// Selection 同一时刻的领域与语言快照，需要多次读取时先取快照
func (c *Controller) Selection() (model.Topic, model.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic, c.lang
}

// SelectTopic 切换领域，各领域已有的报告和错误保持不变
func (c *Controller) SelectTopic(topic model.Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = model.MustTopic(topic)
}

func (c *Controller) SetLanguage(lang model.Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = model.MustLanguage(lang)
}

// ToggleLanguage 在中英文之间切换，返回切换后的语言
func (c *Controller) ToggleLanguage() model.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lang == model.LanguageZh {
		c.lang = model.LanguageEn
	} else {
		c.lang = model.LanguageZh
	}
	return c.lang
}

// Generate 为当前领域和语言发起一次异步生成，不阻塞其他操作
func (c *Controller) Generate() store.Ticket {
	topic, lang := c.Selection()
	tk := c.store.BeginFetch(topic)
	c.log.Infof("开始生成 [%s/%s] seq=%d", topic, lang, tk.Seq)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		_ = c.run(ctx, tk, lang)
	}()
	return tk
}

// Fetch 同步完成一次完整的生成流程，供批处理使用
func (c *Controller) Fetch(ctx context.Context, topic model.Topic, lang model.Language) error {
	tk := c.store.BeginFetch(topic)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.run(ctx, tk, lang)
}

// run 是唯一把生成错误转换为用户可见状态的地方
func (c *Controller) run(ctx context.Context, tk store.Ticket, lang model.Language) error {
	report, err := c.source.Generate(ctx, tk.Topic, lang)
	if err != nil {
		c.log.Errorf("生成失败 [%s/%s] seq=%d: %v", tk.Topic, lang, tk.Seq, err)
		if !c.store.FailFetch(tk, c.failureMessage(err, lang)) {
			c.log.Warnf("丢弃过期的失败结果 [%s] seq=%d", tk.Topic, tk.Seq)
		}
		return err
	}
	if !c.store.CompleteFetch(tk, report) {
		c.log.Warnf("丢弃过期的生成结果 [%s] seq=%d", tk.Topic, tk.Seq)
		return nil
	}
	c.log.Infof("生成完成 [%s/%s] seq=%d，共 %d 条", tk.Topic, lang, tk.Seq, len(report.Items))
	return nil
}

func (c *Controller) failureMessage(err error, lang model.Language) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return c.catalog.Lookup(lang).Error
}

// Wait 等待所有在途的生成请求结束
func (c *Controller) Wait() {
	c.wg.Wait()
}

// View 当前选中领域的视图
func (c *Controller) View() ViewModel {
	topic, lang := c.Selection()
	return c.ViewFor(topic, lang)
}

// ViewFor 指定领域与语言的视图
func (c *Controller) ViewFor(topic model.Topic, lang model.Language) ViewModel {
	labels := c.catalog.Lookup(lang)
	v := c.store.View(topic)
	vm := ViewModel{
		Topic:      topic,
		TopicSlug:  topic.Slug(),
		TopicLabel: labels.TopicLabel(topic),
		Language:   lang,
		Labels:     labels,
		Status:     v.Status(),
		Report:     v.Report,
		IsLoading:  v.IsLoading,
		Error:      v.Error,
		Sources:    []string{},
	}
	if v.Report != nil {
		vm.InsightCount = len(v.Report.Items)
		vm.Sources = dedup.SourceTitles(v.Report.Items)
		if len(vm.Sources) == 0 {
			vm.Sources = []string{labels.SourcesFallback}
			vm.SourcesFallback = true
		}
	}
	return vm
}

// Export 用当前语言导出当前领域的报告
func (c *Controller) Export(platform model.Platform) (string, error) {
	topic, lang := c.Selection()
	return c.ExportFor(topic, platform, lang)
}

func (c *Controller) ExportFor(topic model.Topic, platform model.Platform, lang model.Language) (string, error) {
	report := c.store.View(topic).Report
	if report == nil {
		return "", ErrNoReport
	}
	return c.formatter.Format(report, platform, lang), nil
}

// Raw 当前领域报告的原始 markdown，用于复制兜底
func (c *Controller) Raw() (string, error) {
	topic, _ := c.Selection()
	report := c.store.View(topic).Report
	if report == nil {
		return "", ErrNoReport
	}
	return report.RawMarkdown, nil
}
