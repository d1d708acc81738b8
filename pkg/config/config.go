package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                 `json:"app" yaml:"app"`
	Providers map[string]ProviderConfig `json:"providers" yaml:"providers"`
	Search    SearchConfig              `json:"search" yaml:"search"`
	Execution ExecutionConfig           `json:"execution" yaml:"execution"`
	Gateways  GatewaysConfig            `json:"gateways" yaml:"gateways"`
	Journal   JournalConfig             `json:"journal" yaml:"journal"`
}

type AppConfig struct {
	Name       string `json:"name" yaml:"name"`
	PromptsDir string `json:"prompts_dir" yaml:"prompts_dir"`
	LLMLogPath string `json:"llm_log_path" yaml:"llm_log_path"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type SearchConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
}

type ExecutionConfig struct {
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	MaxTokens           int     `json:"max_tokens" yaml:"max_tokens"`
	MaxToolSteps        int     `json:"max_tool_steps" yaml:"max_tool_steps"`
	StageTimeoutSeconds int     `json:"stage_timeout_seconds" yaml:"stage_timeout_seconds"`
}

type GatewaysConfig struct {
	Web      WebConfig     `json:"web" yaml:"web"`
	Telegram GatewayConfig `json:"telegram" yaml:"telegram"`
}

type WebConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type JournalConfig struct {
	Path string `json:"path" yaml:"path"`
}

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"

	DefaultAnthropicModel = "claude-3-5-sonnet-20240620"
)

// Default returns a configuration that runs with only the two API keys added.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:       "meetprep",
			LLMLogPath: filepath.Join("logs", "llm.jsonl"),
		},
		Providers: map[string]ProviderConfig{
			ProviderAnthropic: {Model: DefaultAnthropicModel, Enabled: true},
		},
		Search: SearchConfig{
			Provider:   "serper",
			MaxResults: 10,
		},
		Execution: ExecutionConfig{
			Temperature:  0.7,
			MaxTokens:    4096,
			MaxToolSteps: 8,
		},
		Gateways: GatewaysConfig{
			Web: WebConfig{Addr: ":8501"},
		},
	}
}

// LoadConfig reads a JSON or YAML file over the defaults. The format is
// picked by extension; anything that is not .yaml/.yml is read as JSON.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is LoadConfig but a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// GetDefaultProvider returns the first enabled provider, preferring
// anthropic when several are enabled.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	if p, ok := c.Providers[ProviderAnthropic]; ok && p.Enabled {
		return ProviderAnthropic, p
	}
	for _, name := range []string{ProviderOpenAI, ProviderOpenRouter} {
		if p, ok := c.Providers[name]; ok && p.Enabled {
			return name, p
		}
	}
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg := c.Gateways.Telegram
	if tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}

func (e ExecutionConfig) StageTimeout() time.Duration {
	return time.Duration(e.StageTimeoutSeconds) * time.Second
}
