// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/internal/catalog"
	"github.com/pdiddy/journal-grabber/pkg/types"
)

// stubRunner stands in for the ingest pipeline.
type stubRunner struct {
	ran []string
	n   int
	err error
}

func (r *stubRunner) Run(_ context.Context, p types.Profile) (int, error) {
	r.ran = append(r.ran, p.ID)
	return r.n, r.err
}

func newTestService(t *testing.T) (*Service, *stubRunner) {
	t.Helper()

	cfg := types.DefaultConfig()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "catalog.db")
	cfg.Download.DefaultDir = filepath.Join(t.TempDir(), "downloads")

	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	run := &stubRunner{}
	s.pipeline = run
	return s, run
}

func spec(name string, topics ...string) types.ProfileSpec {
	return types.ProfileSpec{Name: name, Topics: topics, FrequencyHours: 24}
}

func TestCreateProfile(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI", "transformer"))
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "ml papers", p.Name)
	assert.Equal(t, []string{"cs.AI", "transformer"}, p.Topics)
	assert.Equal(t, 24, p.FrequencyHours)
	assert.True(t, p.IsActive, "profiles default to active")
	assert.Equal(t, s.cfg.Download.DefaultDir, p.DownloadPath)
	assert.True(t, s.scheduler.Scheduled(p.ID), "active profile must be scheduled on create")

	got, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreateProfileValidation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateProfile(ctx, spec("", "cs.AI"))
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = s.CreateProfile(ctx, spec("no topics"))
	assert.ErrorIs(t, err, ErrInvalidProfile)

	// Whitespace-only topics count as empty.
	_, err = s.CreateProfile(ctx, spec("blank topics", "  ", ""))
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCreateProfileClampsFrequency(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		hours int
		want  int
	}{
		{0, 1},
		{-5, 1},
		{24, 24},
		{168, 168},
		{1000, 168},
	}
	for _, tt := range tests {
		sp := spec(fmt.Sprintf("f%d", tt.hours), "cs.AI")
		sp.FrequencyHours = tt.hours
		p, err := s.CreateProfile(ctx, sp)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.FrequencyHours, "input %d", tt.hours)
	}
}

func TestCreateInactiveProfileNotScheduled(t *testing.T) {
	s, _ := newTestService(t)

	inactive := false
	sp := spec("paused", "cs.AI")
	sp.IsActive = &inactive

	p, err := s.CreateProfile(context.Background(), sp)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.False(t, s.scheduler.Scheduled(p.ID))
}

func TestUpdateProfilePartial(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)

	name := "renamed"
	freq := 48
	got, err := s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{Name: &name, FrequencyHours: &freq})
	require.NoError(t, err)

	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 48, got.FrequencyHours)
	assert.Equal(t, p.Topics, got.Topics, "omitted fields keep their values")
	assert.Equal(t, p.DownloadPath, got.DownloadPath)
}

func TestUpdateProfileRederivesSchedule(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)
	require.True(t, s.scheduler.Scheduled(p.ID))

	inactive := false
	_, err = s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, s.scheduler.Scheduled(p.ID), "deactivation must unschedule")

	active := true
	_, err = s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{IsActive: &active})
	require.NoError(t, err)
	assert.True(t, s.scheduler.Scheduled(p.ID), "reactivation must reschedule")
}

func TestUpdateProfileValidation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)

	empty := ""
	_, err = s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	noTopics := []string{}
	_, err = s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{Topics: &noTopics})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = s.UpdateProfile(ctx, "no-such-id", types.ProfileUpdate{})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteProfileUnschedules(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteProfile(ctx, p.ID))
	assert.False(t, s.scheduler.Scheduled(p.ID))

	_, err = s.GetProfile(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.ErrorIs(t, s.DeleteProfile(ctx, "no-such-id"), catalog.ErrNotFound)
}

func TestRunProfileNow(t *testing.T) {
	s, run := newTestService(t)
	ctx := context.Background()

	inactive := false
	sp := spec("paused", "cs.AI")
	sp.IsActive = &inactive
	p, err := s.CreateProfile(ctx, sp)
	require.NoError(t, err)

	run.n = 3
	n, err := s.RunProfileNow(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{p.ID}, run.ran, "manual runs work for inactive profiles")

	_, err = s.RunProfileNow(ctx, "no-such-id")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRunScheduledResolvesProfileAtFireTime(t *testing.T) {
	s, run := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)

	n, err := s.runScheduled(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []string{p.ID}, run.ran)

	// A deactivated profile unschedules itself instead of running.
	inactive := false
	_, err = s.UpdateProfile(ctx, p.ID, types.ProfileUpdate{IsActive: &inactive})
	require.NoError(t, err)

	run.ran = nil
	n, err = s.runScheduled(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, run.ran)

	// A deleted profile is a quiet no-op, not an error.
	s.scheduler.Register(types.Profile{ID: "ghost", Topics: []string{"cs.AI"}, FrequencyHours: 1, IsActive: true})
	n, err = s.runScheduled(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, s.scheduler.Scheduled("ghost"))
}

func TestStartSchedulesActiveProfiles(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p1, err := s.CreateProfile(ctx, spec("one", "cs.AI"))
	require.NoError(t, err)
	inactive := false
	sp := spec("two", "cs.LG")
	sp.IsActive = &inactive
	p2, err := s.CreateProfile(ctx, sp)
	require.NoError(t, err)

	// Fresh service over the same database, as after a daemon restart.
	cfg := s.cfg
	s2, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })
	s2.pipeline = &stubRunner{}

	require.NoError(t, s2.Start(ctx))
	t.Cleanup(s2.Stop)

	assert.True(t, s2.scheduler.Scheduled(p1.ID))
	assert.False(t, s2.scheduler.Scheduled(p2.ID))
}

func TestCatalogPassthrough(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, spec("ml papers", "cs.AI"))
	require.NoError(t, err)

	entry := types.CatalogEntry{
		ArxivID:      "2301.00001v1",
		Title:        "Attention Is All You Need",
		Authors:      "Ashish Vaswani",
		Subjects:     "cs.CL",
		FilePath:     "/tmp/2301.00001.pdf",
		ProfileID:    p.ID,
		DownloadedAt: time.Now().UTC(),
	}
	require.NoError(t, s.store.InsertEntry(ctx, entry))

	page, err := s.ListCatalogEntries(ctx, types.CatalogFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	stats, err := s.CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCount)
}
