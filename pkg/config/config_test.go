package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"providers": {"anthropic": {"api_key": "sk-ant", "model": "claude-3-5-sonnet-20240620", "enabled": true}},
		"search": {"provider": "duckduckgo"},
		"execution": {"stage_timeout_seconds": 90},
		"gateways": {"telegram": {"token": "tg", "enabled": true}}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	name, p := cfg.GetDefaultProvider()
	if name != ProviderAnthropic || p.APIKey != "sk-ant" {
		t.Errorf("default provider = %s %+v", name, p)
	}
	if cfg.Search.Provider != "duckduckgo" || cfg.Search.MaxResults != 10 {
		t.Errorf("search config = %+v", cfg.Search)
	}
	if cfg.Execution.StageTimeout() != 90*time.Second {
		t.Errorf("stage timeout = %v", cfg.Execution.StageTimeout())
	}
	if cfg.Execution.Temperature != 0.7 {
		t.Errorf("defaults should survive partial files, temperature = %v", cfg.Execution.Temperature)
	}
	if _, ok := cfg.GetTelegramConfig(); !ok {
		t.Error("telegram should be enabled")
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
providers:
  anthropic:
    enabled: false
  openai:
    api_key: sk-openai
    model: gpt-4o
    enabled: true
search:
  provider: serper
  api_key: serper-key
gateways:
  web:
    addr: "127.0.0.1:9000"
journal:
  path: runs.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	name, p := cfg.GetDefaultProvider()
	if name != ProviderOpenAI || p.Model != "gpt-4o" {
		t.Errorf("default provider = %s %+v", name, p)
	}
	if cfg.Search.APIKey != "serper-key" || cfg.Gateways.Web.Addr != "127.0.0.1:9000" || cfg.Journal.Path != "runs.db" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("telegram should be disabled")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, "config.json", `{not json`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := cfg.GetDefaultProvider(); name != ProviderAnthropic {
		t.Errorf("default provider = %s", name)
	}
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config.example.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	name, p := cfg.GetDefaultProvider()
	if name != ProviderAnthropic || p.Model != DefaultAnthropicModel {
		t.Errorf("default provider = %s %+v", name, p)
	}
	if cfg.Search.Provider != "serper" || cfg.Gateways.Web.Addr != ":8501" || cfg.Journal.Path != "" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("telegram should be disabled in the example")
	}
}
