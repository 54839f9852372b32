// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero forwards catalog entries to a Zotero library. It is a
// pass-through over the Zotero Web API: item creation plus an
// imported-file PDF attachment. Zotero owns the item data model; nothing
// here is read back.
package zotero

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/internal/httputil"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// apiBase is the Zotero API endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.zotero.org"

// Client talks to one Zotero library.
type Client struct {
	http *http.Client
	cfg  types.ZoteroConfig
	log  *zap.Logger
}

// NewClient returns a forwarder for the configured library, or nil when
// forwarding is disabled or not configured.
func NewClient(cfg types.ZoteroConfig, log *zap.Logger) *Client {
	if !cfg.Enabled || cfg.APIKey == "" || (cfg.UserID == "" && cfg.GroupID == "") {
		return nil
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
		log:  log,
	}
}

// libraryPrefix returns the API path prefix for the configured library.
// A group id takes precedence over the user id.
func (c *Client) libraryPrefix() string {
	if c.cfg.GroupID != "" {
		return apiBase + "/groups/" + c.cfg.GroupID
	}
	return apiBase + "/users/" + c.cfg.UserID
}

// creator is one Zotero author record.
type creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// tag is one Zotero subject tag.
type tag struct {
	Tag string `json:"tag"`
}

// preprintItem is the payload for a Zotero preprint entry.
type preprintItem struct {
	ItemType     string    `json:"itemType"`
	Title        string    `json:"title"`
	AbstractNote string    `json:"abstractNote"`
	Creators     []creator `json:"creators"`
	Repository   string    `json:"repository"`
	ArchiveID    string    `json:"archiveID"`
	URL          string    `json:"url"`
	Tags         []tag     `json:"tags"`
}

// attachmentItem is the payload for an imported-file attachment.
type attachmentItem struct {
	ItemType    string `json:"itemType"`
	ParentItem  string `json:"parentItem"`
	LinkMode    string `json:"linkMode"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// writeResponse is the Zotero item-write envelope.
type writeResponse struct {
	Successful map[string]struct {
		Key string `json:"key"`
	} `json:"successful"`
	Failed map[string]struct {
		Message string `json:"message"`
	} `json:"failed"`
}

// Forward creates a preprint item for the entry and attaches its PDF.
// An attachment failure after a successful item creation is logged but
// not returned: the item is already useful on its own.
func (c *Client) Forward(ctx context.Context, entry types.CatalogEntry, pdfPath string) error {
	itemKey, err := c.createItem(ctx, entry)
	if err != nil {
		return fmt.Errorf("creating zotero item: %w", err)
	}

	if err := c.attachPDF(ctx, itemKey, pdfPath); err != nil {
		c.log.Warn("zotero attachment failed",
			zap.String("arxiv_id", entry.ArxivID),
			zap.String("item_key", itemKey),
			zap.Error(err),
		)
	}
	return nil
}

func (c *Client) createItem(ctx context.Context, entry types.CatalogEntry) (string, error) {
	item := preprintItem{
		ItemType:     "preprint",
		Title:        entry.Title,
		AbstractNote: entry.Abstract,
		Creators:     splitCreators(entry.Authors),
		Repository:   "arXiv",
		ArchiveID:    entry.ArxivID,
		URL:          "https://arxiv.org/abs/" + entry.ArxivID,
		Tags:         subjectTags(entry.Subjects),
	}

	var resp writeResponse
	if err := c.postItems(ctx, []any{item}, &resp); err != nil {
		return "", err
	}
	return firstKey(resp)
}

// attachPDF runs Zotero's three-step file upload: create the attachment
// item, request upload authorization, then upload and register the file.
func (c *Client) attachPDF(ctx context.Context, parentKey, pdfPath string) error {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("reading pdf: %w", err)
	}
	filename := filepath.Base(pdfPath)

	item := attachmentItem{
		ItemType:    "attachment",
		ParentItem:  parentKey,
		LinkMode:    "imported_file",
		Title:       filename,
		Filename:    filename,
		ContentType: "application/pdf",
	}

	var resp writeResponse
	if err := c.postItems(ctx, []any{item}, &resp); err != nil {
		return err
	}
	attachmentKey, err := firstKey(resp)
	if err != nil {
		return err
	}

	sum := md5.Sum(data)
	form := url.Values{}
	form.Set("md5", hex.EncodeToString(sum[:]))
	form.Set("filename", filename)
	form.Set("filesize", strconv.Itoa(len(data)))
	form.Set("mtime", "0")

	authURL := c.libraryPrefix() + "/items/" + attachmentKey + "/file"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("If-None-Match", "*")
	c.setAuth(req)

	res, err := httputil.DoWithRetry(ctx, c.http, req, 0, c.log)
	if err != nil {
		return fmt.Errorf("requesting upload authorization: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("upload authorization returned HTTP %d", res.StatusCode)
	}

	var auth struct {
		Exists      int    `json:"exists"`
		URL         string `json:"url"`
		ContentType string `json:"contentType"`
		Prefix      string `json:"prefix"`
		Suffix      string `json:"suffix"`
		UploadKey   string `json:"uploadKey"`
	}
	if err := json.NewDecoder(res.Body).Decode(&auth); err != nil {
		return fmt.Errorf("parsing upload authorization: %w", err)
	}
	if auth.Exists == 1 {
		// Identical file already stored server-side.
		return nil
	}

	var body bytes.Buffer
	body.WriteString(auth.Prefix)
	body.Write(data)
	body.WriteString(auth.Suffix)

	upReq, err := http.NewRequestWithContext(ctx, http.MethodPost, auth.URL, &body)
	if err != nil {
		return err
	}
	upReq.Header.Set("Content-Type", auth.ContentType)

	upRes, err := c.http.Do(upReq)
	if err != nil {
		return fmt.Errorf("uploading file: %w", err)
	}
	io.Copy(io.Discard, upRes.Body)
	upRes.Body.Close()
	if upRes.StatusCode >= 300 {
		return fmt.Errorf("file upload returned HTTP %d", upRes.StatusCode)
	}

	regForm := url.Values{}
	regForm.Set("upload", auth.UploadKey)
	regReq, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(regForm.Encode()))
	if err != nil {
		return err
	}
	regReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	regReq.Header.Set("If-None-Match", "*")
	c.setAuth(regReq)

	regRes, err := httputil.DoWithRetry(ctx, c.http, regReq, 0, c.log)
	if err != nil {
		return fmt.Errorf("registering upload: %w", err)
	}
	io.Copy(io.Discard, regRes.Body)
	regRes.Body.Close()
	if regRes.StatusCode != http.StatusNoContent && regRes.StatusCode != http.StatusOK {
		return fmt.Errorf("upload registration returned HTTP %d", regRes.StatusCode)
	}
	return nil
}

func (c *Client) postItems(ctx context.Context, items []any, out *writeResponse) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.libraryPrefix()+"/items", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	res, err := httputil.DoWithRetry(ctx, c.http, req, 0, c.log)
	if err != nil {
		return fmt.Errorf("zotero request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("zotero returned HTTP %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing zotero response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Zotero-API-Key", c.cfg.APIKey)
	req.Header.Set("Zotero-API-Version", "3")
}

func firstKey(resp writeResponse) (string, error) {
	if info, ok := resp.Successful["0"]; ok && info.Key != "" {
		return info.Key, nil
	}
	for _, info := range resp.Successful {
		if info.Key != "" {
			return info.Key, nil
		}
	}
	for _, f := range resp.Failed {
		return "", fmt.Errorf("zotero rejected item: %s", f.Message)
	}
	return "", fmt.Errorf("zotero response contained no item key")
}

// splitCreators turns the catalog's comma-joined author string back into
// Zotero creator records, splitting each name into first and last parts.
func splitCreators(authors string) []creator {
	var creators []creator
	for _, name := range strings.Split(authors, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		parts := strings.Fields(name)
		if len(parts) >= 2 {
			creators = append(creators, creator{
				CreatorType: "author",
				FirstName:   strings.Join(parts[:len(parts)-1], " "),
				LastName:    parts[len(parts)-1],
			})
		} else {
			creators = append(creators, creator{CreatorType: "author", Name: name})
		}
	}
	return creators
}

func subjectTags(subjects string) []tag {
	var tags []tag
	for _, s := range strings.Split(subjects, ",") {
		if s = strings.TrimSpace(s); s != "" {
			tags = append(tags, tag{Tag: s})
		}
	}
	return tags
}
