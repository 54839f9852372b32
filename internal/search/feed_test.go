// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"
	"time"
)

const sampleFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v2</id>
    <title>Attention Is
  All You Need</title>
    <summary>
      We propose a new
      network architecture.
    </summary>
    <published>2023-01-17T18:58:28Z</published>
    <updated>2023-02-01T09:00:00Z</updated>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
    <link href="http://arxiv.org/abs/2301.00001v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2301.00001v2" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <title>Entry without an identifier</title>
    <summary>Dropped.</summary>
  </entry>
</feed>`

func TestParseFeed(t *testing.T) {
	articles, err := ParseFeed([]byte(sampleFeedXML))
	if err != nil {
		t.Fatalf("ParseFeed() error = %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("len(articles) = %d, want 1 (id-less entry dropped)", len(articles))
	}

	a := articles[0]
	if a.ID != "2301.00001v2" {
		t.Errorf("ID = %q, want %q", a.ID, "2301.00001v2")
	}
	if a.Title != "Attention Is   All You Need" {
		t.Errorf("Title = %q (newlines should become spaces)", a.Title)
	}
	if len(a.Abstract) == 0 || a.Abstract[0] == ' ' {
		t.Errorf("Abstract = %q, want trimmed", a.Abstract)
	}
	if len(a.Authors) != 2 || a.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", a.Authors)
	}
	if len(a.Categories) != 2 || a.Categories[0] != "cs.CL" || a.Categories[1] != "cs.LG" {
		t.Errorf("Categories = %v", a.Categories)
	}
	if a.PDFURL != "http://arxiv.org/pdf/2301.00001v2" {
		t.Errorf("PDFURL = %q", a.PDFURL)
	}
	want := time.Date(2023, 1, 17, 18, 58, 28, 0, time.UTC)
	if !a.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", a.Published, want)
	}
}

func TestParseFeedMalformed(t *testing.T) {
	articles, err := ParseFeed([]byte("this is not xml <"))
	if err == nil {
		t.Fatal("ParseFeed() expected error for malformed input")
	}
	if len(articles) != 0 {
		t.Errorf("len(articles) = %d, want 0", len(articles))
	}
}

func TestParseFeedEmpty(t *testing.T) {
	articles, err := ParseFeed([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	if err != nil {
		t.Fatalf("ParseFeed() error = %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("len(articles) = %d, want 0", len(articles))
	}
}

func TestEntryID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.00001v2", "2301.00001v2"},
		{"http://arxiv.org/abs/2301.00001", "2301.00001"},
		{"2301.00001", "2301.00001"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := entryID(tt.in); got != tt.want {
			t.Errorf("entryID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
