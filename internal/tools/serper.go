package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperClient queries the Serper Google Search API.
type SerperClient struct {
	APIKey     string
	Endpoint   string
	MaxResults int
	HTTP       *http.Client
}

func NewSerperClient(apiKey string, maxResults int) *SerperClient {
	return &SerperClient{
		APIKey:     apiKey,
		Endpoint:   serperEndpoint,
		MaxResults: maxResults,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
	}
}

type serperResponse struct {
	AnswerBox *struct {
		Title   string `json:"title"`
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answerBox"`
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"knowledgeGraph"`
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic"`
}

func (c *SerperClient) Call(ctx context.Context, query string) (string, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": c.MaxResults})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("X-API-KEY", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper request failed: status code %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode serper response: %w", err)
	}
	return formatSerper(parsed), nil
}

func formatSerper(r serperResponse) string {
	var b strings.Builder
	if r.AnswerBox != nil {
		answer := r.AnswerBox.Answer
		if answer == "" {
			answer = r.AnswerBox.Snippet
		}
		fmt.Fprintf(&b, "Answer: %s\n\n", answer)
	}
	if r.KnowledgeGraph != nil && r.KnowledgeGraph.Title != "" {
		fmt.Fprintf(&b, "Knowledge graph: %s (%s) %s\n\n", r.KnowledgeGraph.Title, r.KnowledgeGraph.Type, r.KnowledgeGraph.Description)
	}
	for i, o := range r.Organic {
		fmt.Fprintf(&b, "%d. %s\nLink: %s\n", i+1, o.Title, o.Link)
		if o.Date != "" {
			fmt.Fprintf(&b, "Date: %s\n", o.Date)
		}
		fmt.Fprintf(&b, "Snippet: %s\n---\n", o.Snippet)
	}
	if b.Len() == 0 {
		return "No results found."
	}
	return b.String()
}
