// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

func testSearchCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		MaxResults: 50,
		WindowDays: 7,
		APIDelay:   0,
	}
}

const emptyFeedXML = `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func entryXML(id string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/%s</id>
    <title>A Paper</title>
    <summary>An abstract.</summary>
  </entry>
</feed>`, id)
}

func TestSearchDatedQueryHit(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("search_query"))
		if r.URL.Query().Get("sortBy") != "submittedDate" {
			t.Errorf("sortBy = %q", r.URL.Query().Get("sortBy"))
		}
		if r.URL.Query().Get("sortOrder") != "descending" {
			t.Errorf("sortOrder = %q", r.URL.Query().Get("sortOrder"))
		}
		fmt.Fprint(w, entryXML("2301.00001v1"))
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	c := NewClient(testSearchCfg(), zap.NewNop())
	articles, err := c.Search(context.Background(), []string{"cs.AI"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(articles) != 1 || articles[0].ID != "2301.00001v1" {
		t.Fatalf("articles = %v", articles)
	}
	if len(queries) != 1 {
		t.Fatalf("query count = %d, want 1 (no fallback on a hit)", len(queries))
	}
	if !strings.Contains(queries[0], "submittedDate:[") {
		t.Errorf("first query missing date bound: %q", queries[0])
	}
}

func TestSearchWidensOnEmptyWindow(t *testing.T) {
	var queries []string
	var maxResults []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("search_query"))
		maxResults = append(maxResults, r.URL.Query().Get("max_results"))
		if len(queries) == 1 {
			fmt.Fprint(w, emptyFeedXML)
			return
		}
		fmt.Fprint(w, entryXML("2105.12345v3"))
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	c := NewClient(testSearchCfg(), zap.NewNop())
	articles, err := c.Search(context.Background(), []string{"transformer"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("query count = %d, want exactly 2 (one widening retry)", len(queries))
	}
	if strings.Contains(queries[1], "submittedDate:[") {
		t.Errorf("retry query still has date bound: %q", queries[1])
	}
	if maxResults[1] != "20" {
		t.Errorf("retry max_results = %q, want 20 (reduced cap)", maxResults[1])
	}
	if len(articles) != 1 || articles[0].ID != "2105.12345v3" {
		t.Errorf("articles = %v", articles)
	}
}

func TestSearchNoWideningForYearWindow(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, emptyFeedXML)
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	cfg := testSearchCfg()
	cfg.WindowDays = 365
	c := NewClient(cfg, zap.NewNop())

	articles, err := c.Search(context.Background(), []string{"cs.AI"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry at a year window)", calls)
	}
	if len(articles) != 0 {
		t.Errorf("articles = %v, want empty", articles)
	}
}

func TestSearchMalformedResponseWidensThenEmpty(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, "not xml <<<")
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	c := NewClient(testSearchCfg(), zap.NewNop())
	articles, err := c.Search(context.Background(), []string{"cs.AI"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("articles = %v, want empty on malformed responses", articles)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestSearchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	c := NewClient(testSearchCfg(), zap.NewNop())
	if _, err := c.Search(context.Background(), []string{"cs.AI"}); err == nil {
		t.Fatal("Search() expected error on HTTP 500")
	}
}
