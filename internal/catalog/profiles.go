// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

// CreateProfile inserts a new profile row. The caller assigns the id.
func (s *Store) CreateProfile(ctx context.Context, p types.Profile) error {
	topics, err := json.Marshal(p.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, topics, frequency_hours, download_path, is_active, last_run, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(topics), p.FrequencyHours, p.DownloadPath,
		boolToInt(p.IsActive), timePtrToString(p.LastRun), p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// GetProfile loads one profile by id.
func (s *Store) GetProfile(ctx context.Context, id string) (types.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, topics, frequency_hours, download_path, is_active, last_run, created_at
		 FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// ListProfiles returns all profiles ordered by creation time.
func (s *Store) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, topics, frequency_hours, download_path, is_active, last_run, created_at
		 FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ActiveProfiles returns profiles with the active flag set.
func (s *Store) ActiveProfiles(ctx context.Context) ([]types.Profile, error) {
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	active := profiles[:0]
	for _, p := range profiles {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// UpdateProfile overwrites the mutable fields of a stored profile.
func (s *Store) UpdateProfile(ctx context.Context, p types.Profile) error {
	topics, err := json.Marshal(p.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles
		 SET name = ?, topics = ?, frequency_hours = ?, download_path = ?, is_active = ?
		 WHERE id = ?`,
		p.Name, string(topics), p.FrequencyHours, p.DownloadPath, boolToInt(p.IsActive), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return checkAffected(res)
}

// DeleteProfile removes a profile. Catalog entries keep their profile id
// for attribution even after the profile is gone.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return checkAffected(res)
}

// TouchLastRun records the completion time of a pipeline invocation. It is
// called exactly once per run, whether or not anything new was ingested.
func (s *Store) TouchLastRun(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET last_run = ? WHERE id = ?`,
		at.UTC().Format(timestampLayout), id,
	)
	if err != nil {
		return fmt.Errorf("updating last run: %w", err)
	}
	return checkAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (types.Profile, error) {
	var (
		p         types.Profile
		topicsRaw string
		isActive  int
		lastRun   sql.NullString
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Name, &topicsRaw, &p.FrequencyHours, &p.DownloadPath, &isActive, &lastRun, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Profile{}, ErrNotFound
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("scanning profile: %w", err)
	}

	if err := json.Unmarshal([]byte(topicsRaw), &p.Topics); err != nil {
		return types.Profile{}, fmt.Errorf("decoding topics: %w", err)
	}
	p.IsActive = isActive != 0
	if lastRun.Valid && lastRun.String != "" {
		if t, err := time.Parse(time.RFC3339Nano, lastRun.String); err == nil {
			p.LastRun = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrToString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}
