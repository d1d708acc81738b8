package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/serpapi"
)

const (
	ProviderSerper     = "serper"
	ProviderSerpAPI    = "serpapi"
	ProviderDuckDuckGo = "duckduckgo"
)

var ErrMissingSearchKey = errors.New("search provider requires an API key")

// Searcher is a web search backend that returns plain text results.
type Searcher interface {
	Call(ctx context.Context, query string) (string, error)
}

// RequiresKey reports whether provider needs a search API key.
func RequiresKey(provider string) bool {
	return provider != ProviderDuckDuckGo
}

// NewSearcher builds the backend for provider with the given key.
func NewSearcher(provider, apiKey string, maxResults int) (Searcher, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	if RequiresKey(provider) && apiKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingSearchKey)
	}

	switch provider {
	case ProviderSerper, "":
		return NewSerperClient(apiKey, maxResults), nil
	case ProviderSerpAPI:
		client, err := serpapi.New(serpapi.WithAPIKey(apiKey))
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderDuckDuckGo:
		client, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", provider)
	}
}

type SearchTool struct {
	client   Searcher
	provider string
}

func NewSearchTool(client Searcher, provider string) *SearchTool {
	return &SearchTool{client: client, provider: provider}
}

func (s *SearchTool) Name() string {
	return "search"
}

func (s *SearchTool) Description() string {
	return "Search the web for real-time information: news, filings, partnerships, industry reports."
}

func (s *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to look up",
			},
		},
		"required": []string{"query"},
	}
}

func (s *SearchTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}
	if args.Query == "" {
		return "Error: query is required", nil
	}

	res, err := s.client.Call(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	return res, nil
}
