// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CatalogEntry records one ingested article. Entries are created exactly
// once per arXiv identifier, at the moment the PDF download succeeds, and
// are never mutated afterwards.
type CatalogEntry struct {
	// ArxivID is the external identifier and the sole deduplication key.
	ArxivID      string    `json:"arxiv_id" yaml:"arxiv_id"`
	Title        string    `json:"title" yaml:"title"`
	Authors      string    `json:"authors" yaml:"authors"`
	Abstract     string    `json:"abstract" yaml:"abstract"`
	Subjects     string    `json:"subjects" yaml:"subjects"`
	FilePath     string    `json:"file_path" yaml:"file_path"`
	ProfileID    string    `json:"profile_id" yaml:"profile_id"`
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}

// SortField names a sortable catalog column.
type SortField string

const (
	SortByTitle        SortField = "title"
	SortByAuthors      SortField = "authors"
	SortByArxivID      SortField = "arxiv_id"
	SortByDownloadedAt SortField = "downloaded_at"
)

// CatalogFilter selects and orders catalog entries for listing.
type CatalogFilter struct {
	// Text matches title, authors, abstract, or arXiv id as a substring.
	Text string

	// Category matches the subjects column as a substring.
	Category string

	// Author matches the authors column as a substring.
	Author string

	// ProfileID restricts to entries owned by one profile.
	ProfileID string

	// From and To bound the ingestion timestamp. Zero values are ignored.
	From time.Time
	To   time.Time

	// SortBy defaults to downloaded_at; Descending defaults to true.
	SortBy     SortField
	Descending bool

	// Page is 1-based; PerPage defaults to 20.
	Page    int
	PerPage int
}

// CatalogPage is one page of catalog entries plus paging metadata.
type CatalogPage struct {
	Entries []CatalogEntry `json:"entries"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
}

// CategoryCount pairs an arXiv category with its frequency in the catalog.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CatalogStats summarizes the catalog.
type CatalogStats struct {
	TotalCount       int             `json:"total_count"`
	TopCategories    []CategoryCount `json:"top_categories"`
	PerProfileCounts map[string]int  `json:"per_profile_counts"`
	Last30DaysCount  int             `json:"last_30_days_count"`
}
