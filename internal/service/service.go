// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package service is the application facade: it owns the store, the
// search client, the ingest pipeline, and the scheduler, and exposes the
// operations the CLI calls. All validation and schedule bookkeeping
// happens here so the packages underneath stay single-purpose.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/internal/catalog"
	"github.com/pdiddy/journal-grabber/internal/ingest"
	"github.com/pdiddy/journal-grabber/internal/scheduler"
	"github.com/pdiddy/journal-grabber/internal/search"
	"github.com/pdiddy/journal-grabber/internal/zotero"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// ErrInvalidProfile marks a rejected profile spec or update.
var ErrInvalidProfile = errors.New("invalid profile")

// runner is the pipeline surface the service needs.
type runner interface {
	Run(ctx context.Context, profile types.Profile) (int, error)
}

// Service wires the components together behind one API.
type Service struct {
	store     *catalog.Store
	pipeline  runner
	scheduler *scheduler.Scheduler
	cfg       types.Config
	log       *zap.Logger
}

// New opens the catalog store and assembles the service. The scheduler
// driver is not started; call Start for daemon mode.
func New(cfg types.Config, log *zap.Logger) (*Service, error) {
	store, err := catalog.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	var forwarder ingest.Forwarder
	// NewClient returns nil when forwarding is off; a typed nil in the
	// interface would dodge the pipeline's nil check.
	if zc := zotero.NewClient(cfg.Zotero, log); zc != nil {
		forwarder = zc
	}

	searcher := search.NewClient(cfg.Search, log)
	pipeline := ingest.New(store, searcher, forwarder, cfg.Download, log)

	s := &Service{
		store:    store,
		pipeline: pipeline,
		cfg:      cfg,
		log:      log,
	}
	s.scheduler = scheduler.New(s.runScheduled, cfg.Scheduler.PollInterval, log)
	return s, nil
}

// Close releases the catalog store. Stop the scheduler first in daemon
// mode.
func (s *Service) Close() error {
	return s.store.Close()
}

// Start registers every active profile and launches the scheduler driver.
func (s *Service) Start(ctx context.Context) error {
	profiles, err := s.store.ActiveProfiles(ctx)
	if err != nil {
		return fmt.Errorf("loading active profiles: %w", err)
	}
	for _, p := range profiles {
		s.scheduler.Register(p)
	}
	s.scheduler.Start(ctx)
	s.log.Info("scheduler started", zap.Int("active_profiles", len(profiles)))
	return nil
}

// Stop halts the scheduler driver.
func (s *Service) Stop() {
	s.scheduler.Stop()
}

// CreateProfile validates the spec, assigns an id, persists the profile,
// and schedules it when active. Activity defaults to true.
func (s *Service) CreateProfile(ctx context.Context, spec types.ProfileSpec) (types.Profile, error) {
	topics := cleanTopics(spec.Topics)
	if spec.Name == "" {
		return types.Profile{}, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if len(topics) == 0 {
		return types.Profile{}, fmt.Errorf("%w: at least one topic is required", ErrInvalidProfile)
	}

	active := true
	if spec.IsActive != nil {
		active = *spec.IsActive
	}
	downloadPath := spec.DownloadPath
	if downloadPath == "" {
		downloadPath = s.cfg.Download.DefaultDir
	}

	p := types.Profile{
		ID:             uuid.NewString(),
		Name:           spec.Name,
		Topics:         topics,
		FrequencyHours: s.clampFrequency(spec.FrequencyHours),
		DownloadPath:   downloadPath,
		IsActive:       active,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateProfile(ctx, p); err != nil {
		return types.Profile{}, err
	}
	s.scheduler.Register(p)

	s.log.Info("profile created",
		zap.String("profile_id", p.ID),
		zap.String("name", p.Name),
		zap.Int("frequency_hours", p.FrequencyHours),
	)
	return p, nil
}

// GetProfile loads one profile by id.
func (s *Service) GetProfile(ctx context.Context, id string) (types.Profile, error) {
	return s.store.GetProfile(ctx, id)
}

// ListProfiles returns all profiles ordered by creation time.
func (s *Service) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	return s.store.ListProfiles(ctx)
}

// UpdateProfile applies a partial mutation and re-derives the schedule:
// the profile is rescheduled when active afterwards, unscheduled when not.
// Rescheduling resets the timer to one full interval from now.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd types.ProfileUpdate) (types.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return types.Profile{}, err
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return types.Profile{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidProfile)
		}
		p.Name = *upd.Name
	}
	if upd.Topics != nil {
		topics := cleanTopics(*upd.Topics)
		if len(topics) == 0 {
			return types.Profile{}, fmt.Errorf("%w: at least one topic is required", ErrInvalidProfile)
		}
		p.Topics = topics
	}
	if upd.FrequencyHours != nil {
		p.FrequencyHours = s.clampFrequency(*upd.FrequencyHours)
	}
	if upd.DownloadPath != nil {
		p.DownloadPath = *upd.DownloadPath
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}

	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return types.Profile{}, err
	}

	if p.IsActive {
		s.scheduler.Register(p)
	} else {
		s.scheduler.Unregister(p.ID)
	}
	return p, nil
}

// DeleteProfile unschedules and removes a profile. Its catalog entries
// stay; they carry the profile id for attribution only.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	s.scheduler.Unregister(id)
	return s.store.DeleteProfile(ctx, id)
}

// RunProfileNow executes the pipeline for one profile immediately,
// outside its schedule. Inactive profiles run too; a manual run is an
// explicit request. The scheduled timer is not touched.
func (s *Service) RunProfileNow(ctx context.Context, id string) (int, error) {
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.pipeline.Run(ctx, p)
}

// ListCatalogEntries returns a filtered, sorted catalog page.
func (s *Service) ListCatalogEntries(ctx context.Context, filter types.CatalogFilter) (types.CatalogPage, error) {
	return s.store.ListEntries(ctx, filter)
}

// CatalogStats returns aggregate catalog counts.
func (s *Service) CatalogStats(ctx context.Context) (types.CatalogStats, error) {
	return s.store.Stats(ctx)
}

// runScheduled is the scheduler's run function. The profile is resolved
// at fire time so edits between fires take effect; a profile deleted or
// deactivated since registration unschedules itself.
func (s *Service) runScheduled(ctx context.Context, profileID string) (int, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if errors.Is(err, catalog.ErrNotFound) {
		s.scheduler.Unregister(profileID)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !p.IsActive {
		s.scheduler.Unregister(profileID)
		return 0, nil
	}
	return s.pipeline.Run(ctx, p)
}

func (s *Service) clampFrequency(hours int) int {
	min, max := s.cfg.Scheduler.MinFrequencyHours, s.cfg.Scheduler.MaxFrequencyHours
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	if hours < min {
		return min
	}
	if hours > max {
		return max
	}
	return hours
}

func cleanTopics(topics []string) []string {
	var out []string
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
