package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultSearchBaseURL = "https://html.duckduckgo.com/html/"

// WebSearcher queries the DuckDuckGo HTML endpoint, which needs no API key.
type WebSearcher struct {
	client  *http.Client
	baseURL string
}

// NewWebSearcher creates a searcher against the public HTML endpoint.
func NewWebSearcher() *WebSearcher {
	return &WebSearcher{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultSearchBaseURL,
	}
}

func (s *WebSearcher) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; watsnew-harvester)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned %s", resp.Status)
	}
	return ParseSearchResults(resp.Body, maxResults)
}

// ParseSearchResults extracts hits from the HTML endpoint markup. Each hit is
// a "result__a" anchor (title + redirect link) followed by a "result__snippet"
// node. Result links are redirect URLs carrying the target in the uddg
// parameter.
func ParseSearchResults(r io.Reader, maxResults int) ([]SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if maxResults <= 0 || len(results) < maxResults {
					if link := resolveRedirect(attr(n, "href")); link != "" {
						results = append(results, SearchResult{
							Title: strings.TrimSpace(nodeText(n)),
							Link:  link,
						})
					}
				}
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = strings.TrimSpace(nodeText(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

// resolveRedirect unwraps the /l/?uddg=<target> indirection the endpoint
// puts around result links. Non-redirect links pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

var _ Searcher = (*WebSearcher)(nil)
