// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/journal-grabber/internal/httputil"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// nowFunc is swapped by tests that need a fixed date bound.
var nowFunc = time.Now

// Client executes profile searches against the arXiv API.
type Client struct {
	http    *http.Client
	builder *Builder
	limiter *rate.Limiter
	log     *zap.Logger
	cfg     types.SearchConfig
}

// NewClient builds a search client. The rate limiter spaces API calls by
// cfg.APIDelay; arXiv asks clients for roughly one request every three
// seconds.
func NewClient(cfg types.SearchConfig, log *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.APIDelay > 0 {
		limit = rate.Every(cfg.APIDelay)
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		builder: &Builder{CategoryPrefixes: cfg.CategoryPrefixes, BareCategories: cfg.BareCategories},
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		cfg:     cfg,
	}
}

// Search runs the dated query for the given topics, newest submissions
// first. When the dated query yields nothing and the recency window is
// under a year, it retries exactly once without the date bound and with a
// reduced result cap, so rarely-published topics are not starved.
func (c *Client) Search(ctx context.Context, topics []string) ([]types.Article, error) {
	dated, undated := c.builder.Build(topics, c.cfg.MaxResults, c.cfg.WindowDays, nowFunc())

	articles, err := c.execute(ctx, dated)
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 && c.cfg.WindowDays < 365 {
		c.log.Info("no results within window, widening search",
			zap.Strings("topics", topics),
			zap.Int("window_days", c.cfg.WindowDays),
		)
		return c.execute(ctx, undated)
	}
	return articles, nil
}

func (c *Client) execute(ctx context.Context, p Params) ([]types.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("search_query", p.Query)
	v.Set("start", strconv.Itoa(p.Start))
	v.Set("max_results", strconv.Itoa(p.MaxResults))
	v.Set("sortBy", "submittedDate")
	v.Set("sortOrder", "descending")
	reqURL := arxivAPIBase + "?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0, c.log)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading arXiv response: %w", err)
	}

	articles, err := ParseFeed(body)
	if err != nil {
		// Malformed responses are treated as empty, not fatal.
		c.log.Warn("unparseable arXiv response", zap.Error(err))
		return nil, nil
	}

	c.log.Debug("arXiv query executed",
		zap.String("query", p.Query),
		zap.Int("results", len(articles)),
	)
	return articles, nil
}
