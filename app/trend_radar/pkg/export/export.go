package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/i18n"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

// renderer 平台相关的叶子渲染规则，遍历逻辑由 render 统一负责
type renderer interface {
	title(sb *strings.Builder, text string)
	meta(sb *strings.Builder, label, date string)
	heading(sb *strings.Builder, rank int, title string)
	field(sb *strings.Builder, label, text string)
	sources(sb *strings.Builder, label string, sources []model.GroundingSource)
	separator(sb *strings.Builder)
	footer(sb *strings.Builder, text string)
}

var renderers = map[model.Platform]renderer{
	model.PlatformDingTalk: dingtalkRenderer{},
	model.PlatformWeChat:   wechatRenderer{},
}

// Formatter 把报告转换为各平台可直接粘贴的文本
type Formatter struct {
	catalog *i18n.Catalog
}

// NewFormatter 创建导出器，catalog 为空时使用内置文案
func NewFormatter(catalog *i18n.Catalog) *Formatter {
	if catalog == nil {
		catalog = i18n.Default()
	}
	return &Formatter{catalog: catalog}
}

// Format 纯函数：相同的报告、平台、语言总是得到相同的字节
func (f *Formatter) Format(report *model.TrendReport, platform model.Platform, lang model.Language) string {
	r := renderers[model.MustPlatform(platform)]
	return render(r, report, f.catalog.Lookup(lang))
}

func render(r renderer, report *model.TrendReport, labels i18n.Labels) string {
	var sb strings.Builder
	r.title(&sb, labels.TopicLabel(report.Topic)+" "+labels.TopTen)
	r.meta(&sb, labels.GeneratedOn, report.Date)
	for i, item := range report.Items {
		if i > 0 {
			r.separator(&sb)
		}
		r.heading(&sb, i+1, item.Title)
		r.field(&sb, labels.Summary, item.Summary)
		r.field(&sb, labels.Impact, item.Impact)
		r.field(&sb, labels.Takeaway, item.Takeaway)
		if len(item.Sources) > 0 {
			r.sources(&sb, labels.Sources, item.Sources)
		}
	}
	r.footer(&sb, labels.AppTitle)
	return sb.String()
}

// dingtalkRenderer 钉钉 markdown 卡片
type dingtalkRenderer struct{}

var (
	linkTextEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

	// 链接地址里的括号会打断 markdown 链接，也会让微信文本出现方括号
	uriEscaper = strings.NewReplacer("[", "%5B", "]", "%5D", "(", "%28", ")", "%29")
)

func (dingtalkRenderer) title(sb *strings.Builder, text string) {
	fmt.Fprintf(sb, "## 🔥 %s\n\n", text)
}

func (dingtalkRenderer) meta(sb *strings.Builder, label, date string) {
	fmt.Fprintf(sb, "> %s: %s\n\n", label, date)
}

func (dingtalkRenderer) heading(sb *strings.Builder, rank int, title string) {
	fmt.Fprintf(sb, "### %d. %s\n\n", rank, title)
}

func (dingtalkRenderer) field(sb *strings.Builder, label, text string) {
	fmt.Fprintf(sb, "**%s:** %s\n\n", label, text)
}

func (dingtalkRenderer) sources(sb *strings.Builder, label string, sources []model.GroundingSource) {
	fmt.Fprintf(sb, "**%s:**\n\n", label)
	for _, src := range sources {
		if src.URI == "" {
			fmt.Fprintf(sb, "- %s\n", src.Title)
			continue
		}
		fmt.Fprintf(sb, "- [%s](%s)\n", linkTextEscaper.Replace(src.Title), uriEscaper.Replace(src.URI))
	}
	sb.WriteString("\n")
}

func (dingtalkRenderer) separator(sb *strings.Builder) {
	sb.WriteString("---\n\n")
}

func (dingtalkRenderer) footer(sb *strings.Builder, text string) {
	fmt.Fprintf(sb, "---\n\n*%s*\n", text)
}

// wechatRenderer 微信纯文本消息，不输出任何 markdown 语法
type wechatRenderer struct{}

var (
	mdLink     = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	mdReplacer = strings.NewReplacer("**", "", "__", "", "`", "", "[", "【", "]", "】")
)

// plain 去掉模型输出中夹带的行内 markdown
func plain(s string) string {
	s = mdLink.ReplaceAllString(s, "$1 ($2)")
	s = mdReplacer.Replace(s)
	return strings.TrimLeft(s, "# ")
}

func (wechatRenderer) title(sb *strings.Builder, text string) {
	fmt.Fprintf(sb, "【%s】\n", plain(text))
}

func (wechatRenderer) meta(sb *strings.Builder, label, date string) {
	fmt.Fprintf(sb, "%s: %s\n\n", label, date)
}

func (wechatRenderer) heading(sb *strings.Builder, rank int, title string) {
	fmt.Fprintf(sb, "%d. %s\n", rank, plain(title))
}

func (wechatRenderer) field(sb *strings.Builder, label, text string) {
	fmt.Fprintf(sb, "%s: %s\n", label, plain(text))
}

func (wechatRenderer) sources(sb *strings.Builder, label string, sources []model.GroundingSource) {
	fmt.Fprintf(sb, "%s:\n", label)
	for _, src := range sources {
		if src.URI == "" {
			fmt.Fprintf(sb, "· %s\n", plain(src.Title))
			continue
		}
		fmt.Fprintf(sb, "· %s (%s)\n", plain(src.Title), uriEscaper.Replace(src.URI))
	}
}

func (wechatRenderer) separator(sb *strings.Builder) {
	sb.WriteString("\n——————\n\n")
}

func (wechatRenderer) footer(sb *strings.Builder, text string) {
	fmt.Fprintf(sb, "\n— %s\n", text)
}
