// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search builds arXiv queries, executes them, and parses the
// Atom responses into normalized articles.
package search

import (
	"fmt"
	"strings"
	"time"
)

// Default category-code recognition tables. A topic counts as a category
// code when it contains a dot and starts with one of these prefixes, or
// when it equals one of the bare top-level archives.
var (
	defaultCategoryPrefixes = []string{
		"cs.", "math.", "physics.", "astro-ph", "cond-mat", "quant-ph", "stat.",
	}
	defaultBareCategories = []string{"cs", "math", "physics"}
)

// fallbackCap limits results on the widened (undated) retry.
const fallbackCap = 20

// Builder turns profile topics into arXiv search_query strings.
type Builder struct {
	// CategoryPrefixes and BareCategories override the built-in category
	// recognition tables when non-empty.
	CategoryPrefixes []string
	BareCategories   []string
}

// Params holds one executable query: the search_query string plus the
// request parameters sent alongside it.
type Params struct {
	Query      string
	Start      int
	MaxResults int
}

// Build returns the dated query (submission-date lower bound of
// now − windowDays) and the undated variant of the same query with a
// reduced result cap. The undated variant backs the zero-result widening
// retry.
func (b *Builder) Build(topics []string, maxResults, windowDays int, now time.Time) (dated, undated Params) {
	categories, keywords := b.Partition(topics)

	var parts []string
	if len(categories) > 0 {
		quoted := make([]string, len(categories))
		for i, c := range categories {
			quoted[i] = fmt.Sprintf("cat:%q", c)
		}
		parts = append(parts, "("+strings.Join(quoted, " OR ")+")")
	}
	for _, kw := range keywords {
		parts = append(parts, fmt.Sprintf("(ti:%q OR abs:%q)", kw, kw))
	}

	query := "all"
	if len(parts) > 0 {
		query = strings.Join(parts, " OR ")
	}

	startDate := now.AddDate(0, 0, -windowDays).Format("20060102")
	dated = Params{
		Query:      query + fmt.Sprintf(" AND submittedDate:[%s* TO *]", startDate),
		MaxResults: maxResults,
	}
	undated = Params{
		Query:      query,
		MaxResults: min(maxResults, fallbackCap),
	}
	return dated, undated
}

// Partition splits topics into category codes and keyword terms,
// preserving order within each group.
func (b *Builder) Partition(topics []string) (categories, keywords []string) {
	prefixes := b.CategoryPrefixes
	if len(prefixes) == 0 {
		prefixes = defaultCategoryPrefixes
	}
	bare := b.BareCategories
	if len(bare) == 0 {
		bare = defaultBareCategories
	}

	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if isCategory(topic, prefixes, bare) {
			categories = append(categories, topic)
		} else {
			keywords = append(keywords, topic)
		}
	}
	return categories, keywords
}

func isCategory(topic string, prefixes, bare []string) bool {
	if strings.Contains(topic, ".") {
		for _, p := range prefixes {
			if strings.HasPrefix(topic, p) {
				return true
			}
		}
	}
	for _, b := range bare {
		if topic == b {
			return true
		}
	}
	return false
}
