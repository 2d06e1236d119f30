// internal/wiki/client.go
//
// HTTP client for the Wikipedia content APIs consumed by the game:
//   - REST v1:    random article summary, summary-by-title
//   - action API: full article hypertext (action=parse), title search
//     suggestions (action=opensearch)
//
// Failure semantics follow the game's error design:
//   - Summary lookups return (nil, nil) on a plain not-found.
//   - Content fetches never fail outward; they degrade to an error-flagged
//     Page the session can still display.
//   - Search returns an empty list on blank input or any failure.

package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRESTBase  = "https://en.wikipedia.org/api/rest_v1"
	defaultActionAPI = "https://en.wikipedia.org/w/api.php"

	userAgent   = "WikiWander/1.0 (wiki navigation game)"
	searchLimit = 5
)

// Client talks to the Wikipedia APIs. Safe for concurrent use.
type Client struct {
	client   *http.Client
	restBase string
	apiBase  string
}

// NewClient builds a Client. Empty base URLs fall back to English
// Wikipedia's public endpoints.
func NewClient(restBase, apiBase string) *Client {
	if restBase == "" {
		restBase = defaultRESTBase
	}
	if apiBase == "" {
		apiBase = defaultActionAPI
	}
	return &Client{
		client:   &http.Client{Timeout: 10 * time.Second},
		restBase: strings.TrimRight(restBase, "/"),
		apiBase:  apiBase,
	}
}

// RandomSummary fetches a random article summary. A non-standard result
// (disambiguation, special page) is retried once; if the retry is also
// non-standard the original result is kept with a warning rather than
// failing the selection.
func (c *Client) RandomSummary(ctx context.Context) (*Summary, error) {
	sum, err := c.getSummary(ctx, c.restBase+"/page/random/summary")
	if err != nil {
		return nil, err
	}
	if sum.Standard() {
		return sum, nil
	}
	if retry, err := c.getSummary(ctx, c.restBase+"/page/random/summary"); err == nil && retry.Standard() {
		return retry, nil
	}
	log.Warn().Str("title", sum.Titles.Normalized).Str("type", sum.Type).Msg("non-standard random article")
	return sum, nil
}

// Summary fetches the summary for a specific title. Returns (nil, nil)
// when the article does not exist.
func (c *Client) Summary(ctx context.Context, title string) (*Summary, error) {
	u := c.restBase + "/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary returned %s", resp.Status)
	}

	var sum Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &sum, nil
}

// Content fetches the full hypertext body for a title via action=parse.
// If parsing fails but a summary exists (redirects, special pages), a stub
// body linking to the source site is synthesized. On total failure an
// error-flagged Page is returned; Content itself never errors.
func (c *Client) Content(ctx context.Context, title string) *Page {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("origin", "*")

	var res parseResult
	if err := c.getJSON(ctx, c.apiBase+"?"+params.Encode(), &res); err != nil {
		log.Error().Err(err).Str("title", title).Msg("fetch article content")
		return errorPage(title, err)
	}

	if res.Parse != nil && res.Parse.Text != "" {
		return &Page{
			Title:        res.Parse.Title,
			DisplayTitle: res.Parse.Title,
			HTML:         res.Parse.Text,
		}
	}

	// Redirects and special pages parse to nothing; fall back to the
	// summary endpoint so the player at least sees what they hit.
	if sum, err := c.Summary(ctx, title); err == nil && sum != nil {
		desc := sum.Description
		if desc == "" {
			desc = sum.Extract
		}
		return &Page{
			Title:        sum.Titles.Normalized,
			DisplayTitle: sum.Titles.Display,
			HTML: fmt.Sprintf(
				`<p>Article content could not be loaded. This might be a redirect or a special page. <a href="%s" target="_blank" rel="noopener noreferrer">View on Wikipedia</a></p>`,
				sum.ContentURLs.Desktop.Page),
			Summary: desc,
		}
	}

	if res.Error != nil {
		return errorPage(title, fmt.Errorf("api error: %s", res.Error.Info))
	}
	return errorPage(title, fmt.Errorf("article content not found for %q", title))
}

// Search returns up to searchLimit article titles matching the prefix via
// action=opensearch (main namespace only). Blank input and failures both
// yield an empty list.
func (c *Client) Search(ctx context.Context, term string) []string {
	if strings.TrimSpace(term) == "" {
		return []string{}
	}

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", term)
	params.Set("limit", fmt.Sprint(searchLimit))
	params.Set("namespace", "0")
	params.Set("format", "json")
	params.Set("origin", "*")

	// opensearch responds with [term, [titles], [descriptions], [urls]].
	var raw []json.RawMessage
	if err := c.getJSON(ctx, c.apiBase+"?"+params.Encode(), &raw); err != nil {
		log.Warn().Err(err).Str("term", term).Msg("search articles")
		return []string{}
	}
	if len(raw) < 2 {
		return []string{}
	}
	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		log.Warn().Err(err).Str("term", term).Msg("parse search titles")
		return []string{}
	}
	if len(titles) > searchLimit {
		titles = titles[:searchLimit]
	}
	return titles
}

// ------------------------------ helpers ------------------------------------

// getSummary fetches and decodes a Summary from a fully-formed URL.
func (c *Client) getSummary(ctx context.Context, u string) (*Summary, error) {
	var sum Summary
	if err := c.getJSON(ctx, u, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// errorPage builds the degraded Page shown when nothing could be loaded.
func errorPage(title string, err error) *Page {
	return &Page{
		Title:        title,
		DisplayTitle: title,
		HTML:         fmt.Sprintf("<p>Error loading article: %s. Please try refreshing or selecting a different article.</p>", err),
		IsError:      true,
	}
}
