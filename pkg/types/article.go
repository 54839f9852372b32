// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Article is a normalized arXiv search result. It is produced by the feed
// parser and consumed by the ingest pipeline; it is never persisted.
type Article struct {
	// ID is the external arXiv identifier, version suffix included
	// (e.g. "2301.00001v2").
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Abstract   string    `json:"abstract" yaml:"abstract"`
	Authors    []string  `json:"authors" yaml:"authors"`
	Categories []string  `json:"categories" yaml:"categories"`
	PDFURL     string    `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	Published  time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	Updated    time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`
}
