package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Radar  *Radar  `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Radar struct {
	Llm            *LLM         `json:"llm"`
	Search         *Search      `json:"search"`
	Log            *Log         `json:"log"`
	Concurrency    *Concurrency `json:"concurrency"`
	RequestTimeout int32        `json:"request_timeout"`
	Share          *Share       `json:"share"`
}

type LLM struct {
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
}

type Search struct {
	Provider   string   `json:"provider"`
	MaxResults int32    `json:"max_results"`
	Tavily     *Tavily  `json:"tavily"`
	Searxng    *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Share struct {
	DingtalkWebhook string `json:"dingtalk_webhook"`
	WechatWebhook   string `json:"wechat_webhook"`
}
