package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// RegisterBuiltins adds the built-in capability set to a registry.
// Business-specific capabilities (git, home automation, price tracking)
// live outside this module and register through the same interface.
func RegisterBuiltins(r *Registry) {
	r.Register(&clockCapability{})
	r.Register(&echoCapability{})
	r.Register(&webSearchCapability{client: http.DefaultClient})
}

// clockCapability reports the current time.
type clockCapability struct{}

func (c *clockCapability) Name() string { return "clock" }

func (c *clockCapability) Description() string {
	return "Report the current date and time."
}

func (c *clockCapability) Run(ctx context.Context, inv Invocation) (string, error) {
	return time.Now().Format(time.RFC1123), nil
}

// echoCapability returns its text argument unchanged. Useful for wiring
// checks and fast-path rules that only need to relay text.
type echoCapability struct{}

func (c *echoCapability) Name() string { return "echo" }

func (c *echoCapability) Description() string {
	return "Return the given text unchanged."
}

func (c *echoCapability) Run(ctx context.Context, inv Invocation) (string, error) {
	text := inv.String("text")
	if text == "" {
		return "", fmt.Errorf("text is required")
	}
	return text, nil
}

// webSearchCapability searches the web via the Brave Search API.
type webSearchCapability struct {
	client *http.Client
}

func (c *webSearchCapability) Name() string { return "web_search" }

func (c *webSearchCapability) Description() string {
	return "Search the web. Returns titles, URLs, and short snippets."
}

// SearchResult represents a single search result.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (c *webSearchCapability) Run(ctx context.Context, inv Invocation) (string, error) {
	query := inv.String("query")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	apiKey := os.Getenv("BRAVE_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("no search API configured. Set BRAVE_API_KEY")
	}

	results, err := searchBrave(ctx, c.client, query, 5, apiKey)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return b.String(), nil
}

// searchBrave searches using the Brave Search API.
func searchBrave(ctx context.Context, client *http.Client, query string, count int, apiKey string) ([]SearchResult, error) {
	url := fmt.Sprintf("https://api.search.brave.com/res/v1/web/search?q=%s&count=%d",
		strings.ReplaceAll(query, " ", "+"), count)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Subscription-Token", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("brave search error (%d): %s", resp.StatusCode, string(body))
	}

	var braveResp struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&braveResp); err != nil {
		return nil, fmt.Errorf("failed to parse brave response: %w", err)
	}

	results := make([]SearchResult, 0, len(braveResp.Web.Results))
	for _, r := range braveResp.Web.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results, nil
}
