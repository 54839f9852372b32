// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

// arXiv Atom feed XML structures. The feed is namespaced
// (http://www.w3.org/2005/Atom plus arXiv extensions); encoding/xml
// matches the local element names.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string         `xml:"id"`
	Title      string         `xml:"title"`
	Summary    string         `xml:"summary"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Authors    []atomAuthor   `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Links      []atomLink     `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

// ParseFeed decodes an arXiv Atom response into normalized articles,
// preserving provider order. Entries without an extractable identifier
// are dropped. A decode error yields no articles; the caller decides how
// to log it.
func ParseFeed(data []byte) ([]types.Article, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, err
	}

	var articles []types.Article
	for _, entry := range feed.Entries {
		id := entryID(entry.ID)
		if id == "" {
			continue
		}

		a := types.Article{
			ID:       id,
			Title:    normalizeText(entry.Title),
			Abstract: normalizeText(entry.Summary),
		}

		for _, author := range entry.Authors {
			if name := strings.TrimSpace(author.Name); name != "" {
				a.Authors = append(a.Authors, name)
			}
		}
		for _, cat := range entry.Categories {
			if cat.Term != "" {
				a.Categories = append(a.Categories, cat.Term)
			}
		}
		for _, link := range entry.Links {
			if link.Type == "application/pdf" {
				a.PDFURL = link.Href
				break
			}
		}

		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			a.Published = t
		}
		if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			a.Updated = t
		}

		articles = append(articles, a)
	}
	return articles, nil
}

// entryID extracts the arXiv identifier from the entry's <id> URI: the
// last path segment, version suffix included
// (e.g. "http://arxiv.org/abs/2301.00001v2" → "2301.00001v2").
func entryID(idURL string) string {
	idURL = strings.TrimSpace(idURL)
	if idURL == "" {
		return ""
	}
	idx := strings.LastIndex(idURL, "/")
	if idx < 0 {
		return idURL
	}
	return idURL[idx+1:]
}

// normalizeText trims the value and replaces interior newlines with
// single spaces, matching how arXiv wraps long titles and abstracts.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
