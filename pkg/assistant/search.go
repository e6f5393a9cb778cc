package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Brave web search defaults.
const (
	DefaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	DefaultSearchResults = 3
)

// SearchArgs are the arguments of the web search tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"the search query"`
}

// BraveSearchConfig configures the Brave web search tool.
type BraveSearchConfig struct {
	APIKey string

	// Endpoint defaults to DefaultBraveEndpoint.
	Endpoint string
	// Results defaults to DefaultSearchResults.
	Results int

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// SearchResult is one web search hit as reported to the agent.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// BraveSearchTool returns a tool answering web queries with the Brave
// Search API. The results are returned to the agent as a JSON list.
func BraveSearchTool(cfg BraveSearchConfig) (Tool, error) {
	if cfg.APIKey == "" {
		return Tool{}, fmt.Errorf("assistant: brave search needs an API key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultBraveEndpoint
	}
	if cfg.Results <= 0 {
		cfg.Results = DefaultSearchResults
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return NewFuncTool("brave_search",
		"A search engine. Useful for when you need to answer questions about current events. Input should be a search query.",
		func(ctx context.Context, arg SearchArgs) (string, error) {
			return braveSearch(ctx, cfg, arg.Query)
		})
}

func braveSearch(ctx context.Context, cfg BraveSearchConfig, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("brave endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(cfg.Results))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", cfg.APIKey)

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brave search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brave search: %s", resp.Status)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("brave search: decode: %w", err)
	}
	results := make([]SearchResult, 0, len(body.Web.Results))
	for _, r := range body.Web.Results {
		if len(results) == cfg.Results {
			break
		}
		results = append(results, SearchResult{Title: r.Title, Link: r.URL, Snippet: r.Description})
	}
	out, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
