// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

const defaultPerPage = 20

// HasEntry reports whether an arXiv identifier is already cataloged. It is
// a dedup optimization only; InsertEntry's ErrDuplicate is the guarantee.
func (s *Store) HasEntry(ctx context.Context, arxivID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM articles WHERE arxiv_id = ?`, arxivID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking entry: %w", err)
	}
	return n > 0, nil
}

// InsertEntry commits one catalog row. A uniqueness violation on the arXiv
// identifier returns ErrDuplicate, which concurrent runs rely on to
// resolve the check-then-insert race cleanly.
func (s *Store) InsertEntry(ctx context.Context, e types.CatalogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (arxiv_id, title, authors, abstract, subjects, file_path, profile_id, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ArxivID, e.Title, e.Authors, e.Abstract, e.Subjects, e.FilePath, e.ProfileID,
		e.DownloadedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// sortColumns whitelists the sortable fields; anything else falls back to
// ingestion time.
var sortColumns = map[types.SortField]string{
	types.SortByTitle:        "title",
	types.SortByAuthors:      "authors",
	types.SortByArxivID:      "arxiv_id",
	types.SortByDownloadedAt: "downloaded_at",
}

// ListEntries returns one page of catalog entries matching the filter.
func (s *Store) ListEntries(ctx context.Context, f types.CatalogFilter) (types.CatalogPage, error) {
	base := sq.Select().From("articles")
	base = applyFilter(base, f)

	var total int
	countSQL, countArgs, err := base.Column("count(*)").ToSql()
	if err != nil {
		return types.CatalogPage{}, fmt.Errorf("building count query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return types.CatalogPage{}, fmt.Errorf("counting entries: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "downloaded_at"
	}
	dir := "ASC"
	if f.Descending || f.SortBy == "" {
		dir = "DESC"
	}

	listSQL, listArgs, err := applyFilter(sq.Select(
		"arxiv_id", "title", "authors", "abstract", "subjects", "file_path", "profile_id", "downloaded_at",
	).From("articles"), f).
		OrderBy(col + " " + dir).
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		ToSql()
	if err != nil {
		return types.CatalogPage{}, fmt.Errorf("building list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return types.CatalogPage{}, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		var (
			e            types.CatalogEntry
			downloadedAt string
		)
		if err := rows.Scan(&e.ArxivID, &e.Title, &e.Authors, &e.Abstract, &e.Subjects,
			&e.FilePath, &e.ProfileID, &downloadedAt); err != nil {
			return types.CatalogPage{}, fmt.Errorf("scanning entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, downloadedAt); err == nil {
			e.DownloadedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return types.CatalogPage{}, fmt.Errorf("iterating entries: %w", err)
	}

	pages := (total + perPage - 1) / perPage
	return types.CatalogPage{Entries: entries, Total: total, Page: page, Pages: pages}, nil
}

func applyFilter(b sq.SelectBuilder, f types.CatalogFilter) sq.SelectBuilder {
	if f.Text != "" {
		like := "%" + f.Text + "%"
		b = b.Where(sq.Or{
			sq.Like{"title": like},
			sq.Like{"authors": like},
			sq.Like{"abstract": like},
			sq.Like{"arxiv_id": like},
		})
	}
	if f.Category != "" {
		b = b.Where(sq.Like{"subjects": "%" + f.Category + "%"})
	}
	if f.Author != "" {
		b = b.Where(sq.Like{"authors": "%" + f.Author + "%"})
	}
	if f.ProfileID != "" {
		b = b.Where(sq.Eq{"profile_id": f.ProfileID})
	}
	if !f.From.IsZero() {
		b = b.Where(sq.GtOrEq{"downloaded_at": f.From.UTC().Format(timestampLayout)})
	}
	if !f.To.IsZero() {
		b = b.Where(sq.LtOrEq{"downloaded_at": f.To.UTC().Format(timestampLayout)})
	}
	return b
}

// Stats summarizes the catalog: total size, the ten most frequent
// categories, per-profile counts, and ingestion volume over the last 30
// days.
func (s *Store) Stats(ctx context.Context) (types.CatalogStats, error) {
	stats := types.CatalogStats{PerProfileCounts: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&stats.TotalCount); err != nil {
		return stats, fmt.Errorf("counting articles: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -30).Format(timestampLayout)
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM articles WHERE downloaded_at >= ?`, cutoff,
	).Scan(&stats.Last30DaysCount); err != nil {
		return stats, fmt.Errorf("counting recent articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_id, count(*) FROM articles GROUP BY profile_id`)
	if err != nil {
		return stats, fmt.Errorf("counting per profile: %w", err)
	}
	for rows.Next() {
		var (
			profileID string
			n         int
		)
		if err := rows.Scan(&profileID, &n); err != nil {
			rows.Close()
			return stats, fmt.Errorf("scanning profile count: %w", err)
		}
		stats.PerProfileCounts[profileID] = n
	}
	if err := rows.Close(); err != nil {
		return stats, err
	}

	top, err := s.topCategories(ctx, 10)
	if err != nil {
		return stats, err
	}
	stats.TopCategories = top
	return stats, nil
}

// topCategories splits the comma-joined subjects column and counts term
// frequencies in Go; SQLite has no portable string-split.
func (s *Store) topCategories(ctx context.Context, limit int) ([]types.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subjects FROM articles WHERE subjects != ''`)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var subjects string
		if err := rows.Scan(&subjects); err != nil {
			return nil, fmt.Errorf("scanning subjects: %w", err)
		}
		for _, c := range strings.Split(subjects, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				counts[c]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top := make([]types.CategoryCount, 0, len(counts))
	for c, n := range counts {
		top = append(top, types.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Category < top[j].Category
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
