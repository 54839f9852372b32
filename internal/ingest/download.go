// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns search results into catalog entries: it fetches
// PDFs for unseen articles, commits catalog rows, and drives the optional
// reference-manager forwarding.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

// arxivPDFBase is the arXiv PDF endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// CanonicalID strips a trailing version suffix from an arXiv identifier
// (e.g. "2301.00001v2" → "2301.00001"). PDFs are stored under the
// canonical id so revisions of the same paper share one file.
func CanonicalID(arxivID string) string {
	vIdx := strings.LastIndex(arxivID, "v")
	if vIdx <= 0 {
		return arxivID
	}
	if _, err := strconv.Atoi(arxivID[vIdx+1:]); err != nil {
		return arxivID
	}
	return arxivID[:vIdx]
}

// FetchPDF downloads the PDF for arxivID into destDir, creating the
// directory if needed. The destination path is derived from the canonical
// id; if a file already exists there the fetch is satisfied without a
// network call. The body is streamed through a temp file and renamed into
// place so a failed download never leaves a partial PDF behind.
func FetchPDF(ctx context.Context, client *http.Client, arxivID, destDir string, cfg types.DownloadConfig, log *zap.Logger) (string, error) {
	canonical := CanonicalID(arxivID)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	destPath := filepath.Join(destDir, canonical+".pdf")
	if _, err := os.Stat(destPath); err == nil {
		log.Debug("pdf already on disk", zap.String("path", destPath))
		return destPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivPDFBase+canonical+".pdf", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", canonical, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d downloading %s", resp.StatusCode, canonical)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		log.Warn("response may not be a PDF",
			zap.String("arxiv_id", canonical),
			zap.String("content_type", ct),
		)
	}

	body := io.Reader(resp.Body)
	if cfg.MaxSizeMB > 0 {
		limit := int64(cfg.MaxSizeMB) << 20
		body = io.LimitReader(resp.Body, limit+1)
	}

	tmpFile, err := os.CreateTemp(destDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	written, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if cfg.MaxSizeMB > 0 && written > int64(cfg.MaxSizeMB)<<20 {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download exceeds %d MB limit", cfg.MaxSizeMB)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}
