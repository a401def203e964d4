package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/linyuxi2024/TrendRadar-AI/app/trend_radar/pkg/search"
)

const (
	defaultEndpoint   = "https://api.tavily.com/search"
	defaultMaxResults = 5
	searchDepth       = "basic"
)

// APIError Tavily 返回非 200 状态
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tavily api error (status %d): %s", e.StatusCode, e.Body)
}

// Client Tavily 搜索客户端
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

var _ search.Searcher = (*Client)(nil)

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, endpoint: defaultEndpoint, http: http.DefaultClient}
}

// WithBaseURL 替换接口地址，用于自建代理或测试
func (c *Client) WithBaseURL(u string) *Client {
	c.endpoint = u
	return c
}

// 只声明实际会发送和读取的字段
type wireRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	Topic             string `json:"topic"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
	EndDate           string `json:"end_date,omitempty"`
}

type wireResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Content       string `json:"content"`
		RawContent    string `json:"raw_content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

func newWireRequest(req *search.Request) wireRequest {
	w := wireRequest{
		Query:             req.Query,
		SearchDepth:       searchDepth,
		Topic:             req.Topic,
		MaxResults:        req.MaxResults,
		IncludeRawContent: req.IncludeRawContent,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
	}
	if w.Topic == "" {
		w.Topic = "general"
	}
	if w.MaxResults <= 0 {
		w.MaxResults = defaultMaxResults
	}
	return w
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	payload, err := json.Marshal(newWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var wr wireResponse
	if err := json.NewDecoder(res.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	out := &search.Response{Results: make([]search.Result, 0, len(wr.Results))}
	for _, r := range wr.Results {
		out.Results = append(out.Results, search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			RawContent:    r.RawContent,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
