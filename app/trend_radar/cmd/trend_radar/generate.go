package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/controller"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/generator"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/logger"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/share"
)

const defaultOutputDir = "output"

var errAllFailed = errors.New("all reports failed")

type generateOptions struct {
	configPath string
	topic      string
	lang       string
	outDir     string
	push       bool
}

// pusher 推送接口，nil 表示不推送
type pusher interface {
	Push(ctx context.Context, platform model.Platform, title, text string) error
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "生成趋势报告并导出为钉钉/微信文本",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "app/trend_radar/configs/config.yaml", "config path")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "only generate this topic (ai|ecommerce)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "only generate this language (zh|en)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&opts.push, "push", false, "push exports to configured webhooks")
	return cmd
}

func runGenerate(ctx context.Context, opts *generateOptions) error {
	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}

	topics, err := resolveTopics(cfg.Topics, opts.topic)
	if err != nil {
		return err
	}
	langs, err := resolveLanguages(cfg.Languages, opts.lang)
	if err != nil {
		return err
	}
	dir := opts.outDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	if dir == "" {
		dir = defaultOutputDir
	}

	src, err := generator.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("LLM 初始化失败: %w", err)
	}
	ctrl := controller.New(src, controller.Options{
		Timeout: cfg.Timeout(),
		Logger:  logger.NewKratosLogger(logger.Log),
	})

	var p pusher
	if opts.push {
		p = share.NewClient(cfg.Share)
	}
	return generateAll(ctx, ctrl, topics, langs, dir, p)
}

// resolveTopics 命令行参数优先，其次配置文件，都为空时生成全部领域
func resolveTopics(configured []string, flag string) ([]model.Topic, error) {
	if flag != "" {
		configured = []string{flag}
	}
	if len(configured) == 0 {
		return model.Topics(), nil
	}
	topics := make([]model.Topic, 0, len(configured))
	for _, s := range configured {
		t, err := model.ParseTopic(s)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, nil
}

func resolveLanguages(configured []string, flag string) ([]model.Language, error) {
	if flag != "" {
		configured = []string{flag}
	}
	if len(configured) == 0 {
		return []model.Language{model.LanguageZh}, nil
	}
	langs := make([]model.Language, 0, len(configured))
	for _, s := range configured {
		l, err := model.ParseLanguage(s)
		if err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, nil
}

// generateAll 各领域并行生成；同一领域的多个语言串行，避免互相覆盖
func generateAll(ctx context.Context, ctrl *controller.Controller, topics []model.Topic, langs []model.Language, dir string, p pusher) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("无法创建输出目录: %w", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, topic := range topics {
		wg.Add(1)
		go func(topic model.Topic) {
			defer wg.Done()
			for _, lang := range langs {
				if err := ctrl.Fetch(ctx, topic, lang); err != nil {
					logger.Log.Errorf("生成报告失败 [%s/%s]: %v", topic, lang, err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				if err := writeReport(ctx, ctrl, topic, lang, dir, p); err != nil {
					logger.Log.Errorf("写出报告失败 [%s/%s]: %v", topic, lang, err)
				}
			}
		}(topic)
	}
	wg.Wait()

	total := len(topics) * len(langs)
	logger.Log.Infof("批处理完成: 成功 %d, 失败 %d, 输出目录 %s", total-failed, failed, dir)
	if total > 0 && failed == total {
		return errAllFailed
	}
	return nil
}

func writeReport(ctx context.Context, ctrl *controller.Controller, topic model.Topic, lang model.Language, dir string, p pusher) error {
	vm := ctrl.ViewFor(topic, lang)
	if vm.Report == nil {
		return controller.ErrNoReport
	}
	base := fmt.Sprintf("%s_%s", topic.Slug(), lang)
	if err := os.WriteFile(filepath.Join(dir, base+".md"), []byte(vm.Report.RawMarkdown), 0o644); err != nil {
		return err
	}

	title := vm.TopicLabel + " " + vm.Labels.TopTen
	for _, platform := range model.Platforms() {
		text, err := ctrl.ExportFor(topic, platform, lang)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", base, platform))
		if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
			return err
		}
		if p == nil {
			continue
		}
		if err := p.Push(ctx, platform, title, text); err != nil {
			if errors.Is(err, share.ErrNotConfigured) {
				logger.Log.Debugf("跳过未配置的平台 %s", platform)
				continue
			}
			logger.Log.Errorf("推送失败 [%s/%s/%s]: %v", topic, lang, platform, err)
		}
	}
	logger.Log.Infof("已写出报告 %s (%d 条)", base, vm.InsightCount)
	return nil
}
