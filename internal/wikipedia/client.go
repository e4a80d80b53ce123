// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikipedia searches and fetches encyclopedia articles through the
// MediaWiki Action API.
package wikipedia

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/wiki-nlp/internal/httputil"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

const (
	defaultEndpoint    = "https://%s.wikipedia.org/w/api.php"
	defaultLanguage    = "en"
	defaultUserAgent   = "wiki-nlp/0.1 (https://github.com/pdiddy/wiki-nlp)"
	defaultTimeout     = 30 * time.Second
	defaultSearchLimit = 10
	defaultRetries     = 3
	defaultRetryWait   = 2 * time.Second
	maxRetryWait       = 60 * time.Second
)

// Client queries a single wiki edition. It satisfies the pipeline's
// ArticleSource interface.
type Client struct {
	http        *resty.Client
	endpoint    string
	language    string
	searchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithLanguage selects the wiki edition (e.g. "en", "ja"). It also resets
// the endpoint unless WithBaseURL is applied afterwards.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang == "" {
			return
		}
		c.language = lang
		c.endpoint = fmt.Sprintf(defaultEndpoint, lang)
	}
}

// WithBaseURL overrides the api.php endpoint. Tests point this at an
// httptest server.
func WithBaseURL(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// WithToken sends a Wikimedia API bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// WithSearchLimit caps the number of candidate titles per search.
func WithSearchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRetry sets how many times a rate-limited request is retried and the
// initial wait between attempts.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
		if wait > 0 {
			c.http.SetRetryWaitTime(wait)
			if wait > maxRetryWait {
				c.http.SetRetryMaxWaitTime(wait)
			}
		}
	}
}

// NewClient returns a Client for the English Wikipedia unless options say otherwise.
func NewClient(opts ...Option) *Client {
	rc := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(defaultRetries).
		SetRetryWaitTime(defaultRetryWait).
		SetRetryMaxWaitTime(maxRetryWait).
		AddRetryCondition(func(r *resty.Response, _ error) bool {
			return r != nil && httputil.Retryable(r.StatusCode())
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			if r == nil {
				return 0, nil
			}
			return httputil.RetryAfter(r.Header()), nil
		})

	c := &Client{
		http:        rc,
		endpoint:    fmt.Sprintf(defaultEndpoint, defaultLanguage),
		language:    defaultLanguage,
		searchLimit: defaultSearchLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a Client from pipeline configuration.
func NewFromConfig(hc types.HTTPConfig, src types.SourceConfig, token string) *Client {
	return NewClient(
		WithLanguage(src.Language),
		WithBaseURL(src.BaseURL),
		WithUserAgent(hc.UserAgent),
		WithTimeout(hc.Timeout),
		WithRetry(hc.MaxRetries, httputil.RetryBaseDelay),
		WithSearchLimit(src.SearchLimit),
		WithToken(token),
	)
}

// Language returns the wiki edition this client queries.
func (c *Client) Language() string { return c.language }

// Search returns the titles matching term in the order the service ranks them.
func (c *Client) Search(ctx context.Context, term string) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrInvalidParameters
	}

	params := map[string]string{
		"action":        "query",
		"list":          "search",
		"srsearch":      term,
		"srlimit":       strconv.Itoa(c.searchLimit),
		"srprop":        "",
		"srinfo":        "totalhits|suggestion",
		"format":        "json",
		"formatversion": "2",
	}

	var sr searchResponse
	if err := c.get(ctx, params, &sr); err != nil {
		return nil, fmt.Errorf("searching %q: %w", term, err)
	}
	if sr.Error != nil {
		return nil, sr.Error
	}

	titles := make([]string, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		titles = append(titles, hit.Title)
	}
	slog.Debug("wikipedia search", "term", term, "hits", len(titles), "total", sr.Query.SearchInfo.TotalHits)
	return titles, nil
}

// Fetch returns the plain-text content and canonical URL of the page with
// the given title. Redirects are followed.
func (c *Client) Fetch(ctx context.Context, title string) (types.Article, error) {
	if strings.TrimSpace(title) == "" {
		return types.Article{}, ErrInvalidParameters
	}

	params := map[string]string{
		"action":        "query",
		"prop":          "extracts|info|revisions",
		"explaintext":   "1",
		"inprop":        "url",
		"rvprop":        "timestamp",
		"redirects":     "1",
		"titles":        title,
		"format":        "json",
		"formatversion": "2",
	}

	var pr pageResponse
	if err := c.get(ctx, params, &pr); err != nil {
		return types.Article{}, fmt.Errorf("fetching %q: %w", title, err)
	}
	if pr.Error != nil {
		return types.Article{}, pr.Error
	}
	if len(pr.Query.Pages) == 0 {
		return types.Article{}, fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}

	page := pr.Query.Pages[0]
	if page.Missing || page.Invalid || page.PageID == 0 {
		return types.Article{}, fmt.Errorf("%q: %w", title, ErrPageNotFound)
	}

	a := types.Article{
		Title:    page.Title,
		PageID:   page.PageID,
		URL:      page.FullURL,
		Content:  page.Extract,
		Language: c.language,
	}
	if a.URL == "" {
		a.URL = c.pageURL(page.Title)
	}
	if len(page.Revisions) > 0 {
		a.LastUpdated = page.Revisions[0].Timestamp
	}
	slog.Debug("wikipedia fetch", "title", a.Title, "page_id", a.PageID, "chars", len(a.Content))
	return a, nil
}

func (c *Client) get(ctx context.Context, params map[string]string, out any) error {
	// Some MediaWiki mirrors answer with text/html; the body is always JSON.
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		ForceContentType("application/json").
		Get(c.endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("MediaWiki API returned HTTP %d", res.StatusCode())
	}
	return nil
}

func (c *Client) pageURL(title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
		c.language, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}

// MediaWiki API JSON structures (formatversion=2).
type searchResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits  int    `json:"totalhits"`
			Suggestion string `json:"suggestion"`
		} `json:"searchinfo"`
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
	Error *APIError `json:"error"`
}

type pageResponse struct {
	Query struct {
		Pages []struct {
			PageID    int    `json:"pageid"`
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Invalid   bool   `json:"invalid"`
			Extract   string `json:"extract"`
			FullURL   string `json:"fullurl"`
			Revisions []struct {
				Timestamp time.Time `json:"timestamp"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
	Error *APIError `json:"error"`
}
