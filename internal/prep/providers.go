package prep

import (
	"fmt"

	"github.com/rahul/meetprep/internal/agent"
	"github.com/rahul/meetprep/internal/governance"
	"github.com/rahul/meetprep/internal/observability"
	"github.com/rahul/meetprep/internal/plan"
	"github.com/rahul/meetprep/internal/tools"
	"github.com/rahul/meetprep/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModelFactory returns a constructor for the named provider. The API key
// is bound per call so each request can bring its own.
func NewModelFactory(name string, p config.ProviderConfig) (ModelFactory, error) {
	switch name {
	case config.ProviderAnthropic:
		return func(apiKey string) (llms.Model, error) {
			opts := []anthropic.Option{
				anthropic.WithToken(apiKey),
				anthropic.WithModel(modelOr(p.Model, config.DefaultAnthropicModel)),
			}
			if p.BaseURL != "" {
				opts = append(opts, anthropic.WithBaseURL(p.BaseURL))
			}
			return anthropic.New(opts...)
		}, nil
	case config.ProviderOpenAI, config.ProviderOpenRouter:
		return func(apiKey string) (llms.Model, error) {
			opts := []openai.Option{
				openai.WithToken(apiKey),
				openai.WithModel(p.Model),
			}
			if p.BaseURL != "" {
				opts = append(opts, openai.WithBaseURL(p.BaseURL))
			}
			return openai.New(opts...)
		}, nil
	default:
		return nil, fmt.Errorf("provider %s not yet implemented", name)
	}
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

func NewSearchFactory(sc config.SearchConfig) SearchFactory {
	return func(apiKey string) (tools.Searcher, error) {
		return tools.NewSearcher(sc.Provider, apiKey, sc.MaxResults)
	}
}

// ConfiguredCredentials are the keys from the config file, used when a
// boundary does not supply its own.
func ConfiguredCredentials(cfg *config.Config) Credentials {
	_, p := cfg.GetDefaultProvider()
	return Credentials{LLMAPIKey: p.APIKey, SearchAPIKey: cfg.Search.APIKey}
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config, logger *observability.Logger, journal Journal) (*Service, error) {
	name, p := cfg.GetDefaultProvider()
	if name == "" {
		return nil, fmt.Errorf("no enabled provider found in config")
	}
	newModel, err := NewModelFactory(name, p)
	if err != nil {
		return nil, err
	}

	assembler, err := plan.NewAssembler(plan.NewPromptManager(cfg.App.PromptsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to load stage templates: %w", err)
	}

	provider := cfg.Search.Provider
	if provider == "" {
		provider = tools.ProviderSerper
	}

	return &Service{
		Assembler:      assembler,
		NewModel:       newModel,
		NewSearcher:    NewSearchFactory(cfg.Search),
		SearchProvider: provider,
		Policy:         governance.NewResearchPolicyEngine(),
		Logger:         logger,
		Options: agent.Options{
			Temperature:  cfg.Execution.Temperature,
			MaxTokens:    cfg.Execution.MaxTokens,
			MaxToolSteps: cfg.Execution.MaxToolSteps,
			StageTimeout: cfg.Execution.StageTimeout(),
		},
		Journal: journal,
	}, nil
}
