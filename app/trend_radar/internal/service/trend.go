package service

import (
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/controller"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/share"
)

// Sharer 推送导出文本到群机器人
type Sharer interface {
	Push(ctx context.Context, platform model.Platform, title, text string) error
}

type TrendService struct {
	ctrl   *controller.Controller
	sharer Sharer
	log    *log.Helper
}

func NewTrendService(ctrl *controller.Controller, sharer Sharer, logger log.Logger) *TrendService {
	return &TrendService{
		ctrl:   ctrl,
		sharer: sharer,
		log:    log.NewHelper(logger),
	}
}

// RegisterTrendHTTPServer 注册全部接口，toggle 必须先于 {lang} 注册
func RegisterTrendHTTPServer(srv *http.Server, s *TrendService) {
	r := srv.Route("/api/v1")
	r.GET("/view", s.GetView)
	r.POST("/topic/{topic}", s.SelectTopic)
	r.POST("/language/toggle", s.ToggleLanguage)
	r.POST("/language/{lang}", s.SetLanguage)
	r.POST("/generate", s.Generate)
	r.GET("/export/{platform}", s.Export)
	r.GET("/raw", s.Raw)
	r.POST("/share/{platform}", s.Share)
}

func (s *TrendService) GetView(ctx http.Context) error {
	return ctx.JSON(nethttp.StatusOK, s.ctrl.View())
}

func (s *TrendService) SelectTopic(ctx http.Context) error {
	topic, err := model.ParseTopic(ctx.Vars().Get("topic"))
	if err != nil {
		return errors.BadRequest("INVALID_TOPIC", err.Error())
	}
	s.ctrl.SelectTopic(topic)
	return ctx.JSON(nethttp.StatusOK, s.ctrl.View())
}

func (s *TrendService) SetLanguage(ctx http.Context) error {
	lang, err := model.ParseLanguage(ctx.Vars().Get("lang"))
	if err != nil {
		return errors.BadRequest("INVALID_LANGUAGE", err.Error())
	}
	s.ctrl.SetLanguage(lang)
	return ctx.JSON(nethttp.StatusOK, s.ctrl.View())
}

func (s *TrendService) ToggleLanguage(ctx http.Context) error {
	s.ctrl.ToggleLanguage()
	return ctx.JSON(nethttp.StatusOK, s.ctrl.View())
}

// Generate 立即返回 202，结果通过 GetView 轮询
func (s *TrendService) Generate(ctx http.Context) error {
	tk := s.ctrl.Generate()
	s.log.Infof("accepted generate request topic=%s seq=%d", tk.Topic, tk.Seq)
	return ctx.JSON(nethttp.StatusAccepted, s.ctrl.View())
}

func (s *TrendService) Export(ctx http.Context) error {
	platform, err := model.ParsePlatform(ctx.Vars().Get("platform"))
	if err != nil {
		return errors.BadRequest("INVALID_PLATFORM", err.Error())
	}
	text, err := s.ctrl.Export(platform)
	if err != nil {
		return reportError(err)
	}
	return ctx.String(nethttp.StatusOK, text)
}

func (s *TrendService) Raw(ctx http.Context) error {
	raw, err := s.ctrl.Raw()
	if err != nil {
		return reportError(err)
	}
	return ctx.String(nethttp.StatusOK, raw)
}

func (s *TrendService) Share(ctx http.Context) error {
	platform, err := model.ParsePlatform(ctx.Vars().Get("platform"))
	if err != nil {
		return errors.BadRequest("INVALID_PLATFORM", err.Error())
	}
	// 标题和正文必须来自同一个领域
	topic, lang := s.ctrl.Selection()
	text, err := s.ctrl.ExportFor(topic, platform, lang)
	if err != nil {
		return reportError(err)
	}
	vm := s.ctrl.ViewFor(topic, lang)
	title := vm.TopicLabel + " " + vm.Labels.TopTen
	if err := s.sharer.Push(ctx, platform, title, text); err != nil {
		s.log.Errorf("push %s failed: %v", platform, err)
		if errors.Is(err, share.ErrNotConfigured) {
			return errors.ServiceUnavailable("SHARE_NOT_CONFIGURED", err.Error())
		}
		return errors.New(nethttp.StatusBadGateway, "SHARE_FAILED", err.Error())
	}
	return ctx.JSON(nethttp.StatusOK, map[string]string{"status": "sent"})
}

func reportError(err error) error {
	if errors.Is(err, controller.ErrNoReport) {
		return errors.NotFound("REPORT_NOT_FOUND", err.Error())
	}
	return errors.InternalServer("INTERNAL", err.Error())
}
