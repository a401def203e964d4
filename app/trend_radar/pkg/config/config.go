package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envLLMAPIKey    = "TRENDRADAR_LLM_API_KEY"
	envTavilyAPIKey = "TRENDRADAR_TAVILY_API_KEY"

	defaultRequestTimeout = 120 * time.Second
	defaultTemperature    = 0.3
)

// Config 项目配置结构体
type Config struct {
	LLM            LLMConfig         `yaml:"llm"`
	Search         SearchConfig      `yaml:"search"`
	Log            LogConfig         `yaml:"log"`
	Concurrency    ConcurrencyConfig `yaml:"concurrency"`
	RequestTimeout int               `yaml:"request_timeout"` // 秒
	Topics         []string          `yaml:"topics"`
	Languages      []string          `yaml:"languages"`
	OutputDir      string            `yaml:"output_dir"`
	Share          ShareConfig       `yaml:"share"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// SearchConfig 搜索相关配置，Provider 为空时不做检索溯源
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// ShareConfig 机器人 webhook，留空表示不推送
type ShareConfig struct {
	DingTalkWebhook string `yaml:"dingtalk_webhook"`
	WeChatWebhook   string `yaml:"wechat_webhook"`
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	return &cfg, nil
}

// ApplyEnv 用环境变量覆盖密钥，避免把密钥写进配置文件
func (c *Config) ApplyEnv() {
	if v := os.Getenv(envLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(envTavilyAPIKey); v != "" {
		c.Search.Tavily.APIKey = v
	}
}

// Timeout 单次生成请求的超时时间
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// Temperature 未配置时使用默认值
func (c *Config) Temperature() float32 {
	if c.LLM.Temperature <= 0 {
		return defaultTemperature
	}
	return c.LLM.Temperature
}
