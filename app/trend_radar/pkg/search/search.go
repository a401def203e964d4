package search

import "context"

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	Language   string // zh / en，部分服务商会忽略
	MaxResults int
	// IncludeRawContent 要求服务商直接返回正文，不支持的服务商忽略
	IncludeRawContent bool
	StartDate         string // Format: YYYY-MM-DD
	EndDate           string // Format: YYYY-MM-DD
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果，RawContent 为空表示服务商没有返回正文
type Result struct {
	Title         string
	URL           string
	Content       string
	RawContent    string
	PublishedDate string
}
