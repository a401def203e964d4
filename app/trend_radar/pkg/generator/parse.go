package generator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

type field int

const (
	fieldNone field = iota
	fieldSummary
	fieldImpact
	fieldTakeaway
	fieldSources
)

var fieldAliases = map[string]field{
	"summary":      fieldSummary,
	"摘要":           fieldSummary,
	"概要":           fieldSummary,
	"概述":           fieldSummary,
	"impact":       fieldImpact,
	"影响":           fieldImpact,
	"takeaway":     fieldTakeaway,
	"key takeaway": fieldTakeaway,
	"启示":           fieldTakeaway,
	"要点":           fieldTakeaway,
	"核心要点":         fieldTakeaway,
	"sources":      fieldSources,
	"source":       fieldSources,
	"来源":           fieldSources,
	"信息源":          fieldSources,
}

var (
	headingRe   = regexp.MustCompile(`^(?:#{1,6}\s*(?:\*\*)?|\*\*)\s*(\d{1,2})\s*[.、)）]\s*(.+)$`)
	fieldRe     = regexp.MustCompile(`^([^:：]{1,20})[:：]\s*(.*)$`)
	listRe      = regexp.MustCompile(`^[-*+•]\s+`)
	ruleRe      = regexp.MustCompile(`^[-*_]{3,}$`)
	citationRe  = regexp.MustCompile(`\[([^\]]+)\]\((\S+?)\)|\[(\d+(?:\s*[,，、]\s*\d+)*)\]`)
	bareRefsRe  = regexp.MustCompile(`^\d+(?:\s*[,，、;；]\s*\d+)*$`)
	numberRe    = regexp.MustCompile(`\d+`)
	idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/linyuxi2024/TrendRadar-AI"))
)

type draft struct {
	title    string
	summary  string
	impact   string
	takeaway string
	sources  []model.GroundingSource
	seen     map[string]struct{}
}

func (d *draft) wellFormed() bool {
	return d.title != "" && d.summary != "" && d.impact != "" && d.takeaway != ""
}

func (d *draft) appendText(f field, text string) {
	var dst *string
	switch f {
	case fieldSummary:
		dst = &d.summary
	case fieldImpact:
		dst = &d.impact
	case fieldTakeaway:
		dst = &d.takeaway
	default:
		return
	}
	if *dst == "" {
		*dst = text
	} else if text != "" {
		*dst += " " + text
	}
}

// addSources 只接受 [n]、[n, m]、markdown 链接，或整行只有逗号分隔的编号；正文里的日期、年份不算引用
func (d *draft) addSources(text string, grounding []model.GroundingSource) {
	if bareRefsRe.MatchString(text) {
		d.addRefs(text, grounding)
		return
	}
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		if m[3] != "" {
			d.addRefs(m[3], grounding)
			continue
		}
		d.add(model.GroundingSource{Title: strings.TrimSpace(m[1]), URI: m[2]})
	}
}

func (d *draft) addRefs(text string, grounding []model.GroundingSource) {
	for _, s := range numberRe.FindAllString(text, -1) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(grounding) {
			continue
		}
		d.add(grounding[n-1])
	}
}

func (d *draft) add(src model.GroundingSource) {
	key := src.Title + "\x00" + src.URI
	if _, ok := d.seen[key]; ok {
		return
	}
	d.seen[key] = struct{}{}
	d.sources = append(d.sources, src)
}

// stripFences 去掉整段回复外层的代码块标记
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range []string{"```markdown", "```md", "```"} {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseDrafts 按固定规则逐行解析，同样的输入总是得到同样的条目
func parseDrafts(raw string, grounding []model.GroundingSource) []*draft {
	var (
		drafts  []*draft
		current *draft
		last    field
	)
	for _, line := range strings.Split(stripFences(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || ruleRe.MatchString(line) {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			title := strings.TrimSpace(strings.ReplaceAll(m[2], "**", ""))
			current = &draft{title: title, seen: make(map[string]struct{})}
			drafts = append(drafts, current)
			last = fieldNone
			continue
		}
		if current == nil {
			continue
		}

		text := strings.TrimSpace(strings.ReplaceAll(listRe.ReplaceAllString(line, ""), "**", ""))
		if m := fieldRe.FindStringSubmatch(text); m != nil {
			if f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(m[1]))]; ok {
				last = f
				value := strings.TrimSpace(m[2])
				if f == fieldSources {
					current.addSources(value, grounding)
				} else {
					current.appendText(f, value)
				}
				continue
			}
		}
		if last == fieldSources {
			current.addSources(text, grounding)
		} else {
			current.appendText(last, text)
		}
	}
	return drafts
}

func itemID(topic model.Topic, lang model.Language, date string, rank int, title string) string {
	key := fmt.Sprintf("%s|%s|%s|%d|%s", topic, lang, date, rank, title)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Parse 把服务商返回的 markdown 转换为报告。没有任何合格条目时整体失败，不返回部分结果。
func Parse(raw string, grounding []model.GroundingSource, topic model.Topic, lang model.Language, date string) (*model.TrendReport, error) {
	report := &model.TrendReport{
		Topic:       model.MustTopic(topic),
		Language:    model.MustLanguage(lang),
		Date:        date,
		RawMarkdown: raw,
		Items:       []model.TrendItem{},
	}

	for _, d := range parseDrafts(raw, grounding) {
		if !d.wellFormed() {
			continue
		}
		rank := len(report.Items) + 1
		sources := d.sources
		if sources == nil {
			sources = []model.GroundingSource{}
		}
		report.Items = append(report.Items, model.TrendItem{
			ID:       itemID(topic, lang, date, rank, d.title),
			Title:    d.title,
			Summary:  d.summary,
			Impact:   d.impact,
			Takeaway: d.takeaway,
			Sources:  sources,
		})
		if len(report.Items) == model.MaxItems {
			break
		}
	}

	if len(report.Items) == 0 {
		return nil, &Error{Kind: ErrMalformedResponse, Raw: raw, Err: fmt.Errorf("no well-formed trend item in %d bytes", len(raw))}
	}
	return report, nil
}
