// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/journal-grabber/internal/catalog"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// Searcher runs a topic search and returns normalized articles, newest
// submissions first.
type Searcher interface {
	Search(ctx context.Context, topics []string) ([]types.Article, error)
}

// Forwarder pushes a new catalog entry to an external reference manager.
type Forwarder interface {
	Forward(ctx context.Context, entry types.CatalogEntry, pdfPath string) error
}

// Pipeline executes one profile run: search, dedup against the catalog,
// fetch new PDFs, and commit catalog rows.
type Pipeline struct {
	store     *catalog.Store
	searcher  Searcher
	downloads *http.Client
	forwarder Forwarder // nil when forwarding is disabled
	cfg       types.DownloadConfig
	log       *zap.Logger
}

// New assembles a pipeline. forwarder may be nil.
func New(store *catalog.Store, searcher Searcher, forwarder Forwarder, cfg types.DownloadConfig, log *zap.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		searcher:  searcher,
		downloads: &http.Client{Timeout: cfg.Timeout},
		forwarder: forwarder,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes the profile's search and ingests every result not yet in
// the catalog, in provider order. Individual fetch or commit failures skip
// that article and never abort the batch. The profile's last-run timestamp
// is updated exactly once, after the whole result list is processed,
// whether or not anything new was found. Returns the number of newly
// created catalog entries.
func (p *Pipeline) Run(ctx context.Context, profile types.Profile) (int, error) {
	log := p.log.With(zap.String("profile_id", profile.ID), zap.String("profile", profile.Name))

	articles, err := p.searcher.Search(ctx, profile.Topics)
	if err != nil {
		// A failed search is a zero-result run, not a fatal one.
		log.Warn("search failed", zap.Error(err))
		articles = nil
	}

	destDir := profile.DownloadPath
	if destDir == "" {
		destDir = p.cfg.DefaultDir
	}

	newCount := 0
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			break
		}

		known, err := p.store.HasEntry(ctx, article.ID)
		if err != nil {
			log.Warn("catalog lookup failed", zap.String("arxiv_id", article.ID), zap.Error(err))
			continue
		}
		if known {
			continue
		}

		pdfPath, err := FetchPDF(ctx, p.downloads, article.ID, destDir, p.cfg, log)
		if err != nil {
			log.Warn("pdf fetch failed", zap.String("arxiv_id", article.ID), zap.Error(err))
			continue
		}

		entry := types.CatalogEntry{
			ArxivID:      article.ID,
			Title:        article.Title,
			Authors:      strings.Join(article.Authors, ", "),
			Abstract:     article.Abstract,
			Subjects:     strings.Join(article.Categories, ", "),
			FilePath:     pdfPath,
			ProfileID:    profile.ID,
			DownloadedAt: time.Now().UTC(),
		}

		if err := p.store.InsertEntry(ctx, entry); err != nil {
			if errors.Is(err, catalog.ErrDuplicate) {
				// A concurrent run committed first; same as a pre-check hit.
				log.Debug("lost insert race", zap.String("arxiv_id", article.ID))
				continue
			}
			log.Warn("catalog commit failed", zap.String("arxiv_id", article.ID), zap.Error(err))
			continue
		}

		if err := writeMetadata(entry, destDir); err != nil {
			log.Warn("metadata sidecar write failed", zap.String("arxiv_id", article.ID), zap.Error(err))
		}

		if p.forwarder != nil {
			if err := p.forwarder.Forward(ctx, entry, pdfPath); err != nil {
				log.Warn("reference-manager forward failed", zap.String("arxiv_id", article.ID), zap.Error(err))
			}
		}

		newCount++
		log.Info("ingested article", zap.String("arxiv_id", article.ID), zap.String("title", entry.Title))
	}

	if err := p.store.TouchLastRun(ctx, profile.ID, time.Now().UTC()); err != nil {
		log.Warn("last-run update failed", zap.Error(err))
	}

	log.Info("profile run complete", zap.Int("results", len(articles)), zap.Int("new", newCount))
	return newCount, nil
}

// writeMetadata drops a YAML sidecar next to the PDF so the download
// directory is self-describing without the database.
func writeMetadata(entry types.CatalogEntry, destDir string) error {
	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	path := filepath.Join(destDir, CanonicalID(entry.ArxivID)+".yaml")
	return os.WriteFile(path, data, 0o644)
}
