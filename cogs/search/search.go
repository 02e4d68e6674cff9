// Package search looks things up on DuckDuckGo.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brensch/selfbot/discord"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// Result is one search hit.
type Result struct {
	Title string
	URL   string
}

// Client scrapes the DuckDuckGo HTML endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	results    int
}

// NewClient creates a client returning at most results hits per query.
func NewClient(endpoint string, results int, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		results:    results,
	}
}

type request struct {
	Query string `discord:"rest,description:what to search for"`
}

// New returns the setup of the search extension.
func New(client *Client) discord.Setup {
	return func(b *discord.Bot) error {
		if client == nil {
			return fmt.Errorf("search needs a client")
		}
		return b.AddCommand(discord.NewCommand("g", "Searches DuckDuckGo", func(ctx *discord.Context, req request) error {
			results, err := client.Search(context.Background(), req.Query)
			if err != nil {
				return err
			}
			_, err = ctx.Reply(FormatResults(req.Query, results))
			return err
		}).WithAliases("search", "ddg"))
	}
}

// Search fetches the results page for query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	results, err := ParseResults(body, c.results)
	if err != nil {
		return nil, err
	}
	slog.Debug("search completed", "query", query, "results", len(results))
	return results, nil
}

// ParseResults extracts up to limit results from a DuckDuckGo HTML page.
func ParseResults(htmlBody []byte, limit int) ([]Result, error) {
	doc, err := html.Parse(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := unwrapRedirect(attr(n, "href"))
			title := strings.Join(strings.Fields(textContent(n)), " ")
			if href != "" && title != "" {
				results = append(results, Result{Title: title, URL: href})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// FormatResults renders results as a message.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for `%s`.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Results for `%s`:\n", query)
	for i, r := range results {
		if i == 0 {
			fmt.Fprintf(&sb, "**%s**\n%s\n", r.Title, r.URL)
			continue
		}
		// Later links are suppressed from embedding.
		fmt.Fprintf(&sb, "**%s**\n<%s>\n", r.Title, r.URL)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// unwrapRedirect turns "//duckduckgo.com/l/?uddg=<target>" into the target.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
