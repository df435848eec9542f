package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/spf13/viper"
)

// Function names used as rate limit keys and route labels.
const (
	FunctionDietChat   = "diet-chat"
	FunctionFoodSearch = "food-search"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	AI        AIConfig
	Auth      AuthConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level  string
	Format string
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Region      string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// AuthConfig holds the shared secret used to verify bearer tokens.
type AuthConfig struct {
	JWTSecret string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
	DSN    string
}

// RateLimitConfig carries per-function request budgets.
type RateLimitConfig struct {
	Window time.Duration
	Limits map[string]int
}

// Limit returns the configured budget for a function.
func (c RateLimitConfig) Limit(function string) int {
	return c.Limits[function]
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// CompletionsURL is the OpenAI-compatible chat completions endpoint.
func (c AIConfig) CompletionsURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (*ark.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("LLM_API_KEY and LLM_MODEL are required")
	}

	temperature := c.Temperature
	maxTokens := c.MaxTokens

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		Model:       c.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
}

// Load 从环境变量（以及可选的配置文件）加载配置。
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	server, err := loadServerConfig(v.GetString("PORT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: server,
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		AI: AIConfig{
			APIKey:      strings.TrimSpace(v.GetString("LLM_API_KEY")),
			BaseURL:     strings.TrimSpace(v.GetString("LLM_BASE_URL")),
			Model:       strings.TrimSpace(v.GetString("LLM_MODEL")),
			Region:      strings.TrimSpace(v.GetString("LLM_REGION")),
			Timeout:     v.GetDuration("LLM_TIMEOUT"),
			Temperature: float32(v.GetFloat64("LLM_SEARCH_TEMPERATURE")),
			MaxTokens:   v.GetInt("LLM_SEARCH_MAX_TOKENS"),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(v.GetString("AUTH_JWT_SECRET")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			DSN:    strings.TrimSpace(v.GetString("DATABASE_DSN")),
		},
		RateLimit: RateLimitConfig{
			Window: v.GetDuration("RATE_LIMIT_WINDOW"),
			Limits: map[string]int{
				FunctionDietChat:   v.GetInt("RATE_LIMIT_CHAT"),
				FunctionFoodSearch: v.GetInt("RATE_LIMIT_SEARCH"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER value: %q", c.Store.Driver)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid RATE_LIMIT_WINDOW value: %s", c.RateLimit.Window)
	}
	for fn, limit := range c.RateLimit.Limits {
		if limit < 1 {
			return fmt.Errorf("invalid rate limit for %s: %d", fn, limit)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("LLM_REGION", "")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_SEARCH_TEMPERATURE", 0.3)
	v.SetDefault("LLM_SEARCH_MAX_TOKENS", 2000)
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("RATE_LIMIT_WINDOW", "24h")
	v.SetDefault("RATE_LIMIT_CHAT", 100)
	v.SetDefault("RATE_LIMIT_SEARCH", 100)
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(port string) (ServerConfig, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}
