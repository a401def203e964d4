package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/config"
	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/model"
)

// ErrNotConfigured 目标平台没有配置 webhook
var ErrNotConfigured = errors.New("share webhook not configured")

// Client 通过群机器人 webhook 推送导出文本
type Client struct {
	webhooks map[model.Platform]string
	client   *http.Client
}

// NewClient 创建推送客户端，未配置的平台推送时返回 ErrNotConfigured
func NewClient(cfg config.ShareConfig) *Client {
	return &Client{
		webhooks: map[model.Platform]string{
			model.PlatformDingTalk: cfg.DingTalkWebhook,
			model.PlatformWeChat:   cfg.WeChatWebhook,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled 是否配置了该平台
func (c *Client) Enabled(platform model.Platform) bool {
	return c.webhooks[platform] != ""
}

type dingtalkMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"markdown"`
}

type wechatMessage struct {
	MsgType string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

type robotReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Push 把已格式化的文本发送到对应平台
func (c *Client) Push(ctx context.Context, platform model.Platform, title, text string) error {
	webhook := c.webhooks[model.MustPlatform(platform)]
	if webhook == "" {
		return fmt.Errorf("%w: %s", ErrNotConfigured, platform)
	}

	var body interface{}
	switch platform {
	case model.PlatformDingTalk:
		msg := dingtalkMessage{MsgType: "markdown"}
		msg.Markdown.Title = title
		msg.Markdown.Text = text
		body = msg
	default:
		msg := wechatMessage{MsgType: "text"}
		msg.Text.Content = text
		body = msg
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%s webhook error (status %d): %s", platform, res.StatusCode, string(data))
	}

	var reply robotReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	if reply.ErrCode != 0 {
		return fmt.Errorf("%s webhook error (errcode %d): %s", platform, reply.ErrCode, reply.ErrMsg)
	}
	return nil
}
