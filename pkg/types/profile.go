// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Profile is a saved topic-based search configuration with a polling
// schedule. Topics are an ordered mix of arXiv category codes (e.g. "cs.AI")
// and free-text keywords.
type Profile struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Topics         []string   `json:"topics" yaml:"topics"`
	FrequencyHours int        `json:"frequency_hours" yaml:"frequency_hours"`
	DownloadPath   string     `json:"download_path" yaml:"download_path"`
	IsActive       bool       `json:"is_active" yaml:"is_active"`
	LastRun        *time.Time `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// Interval returns the profile's polling interval as a duration.
func (p Profile) Interval() time.Duration {
	return time.Duration(p.FrequencyHours) * time.Hour
}

// ProfileSpec carries the user-supplied fields for profile creation.
type ProfileSpec struct {
	Name           string   `json:"name"`
	Topics         []string `json:"topics"`
	FrequencyHours int      `json:"frequency_hours"`
	DownloadPath   string   `json:"download_path"`
	IsActive       *bool    `json:"is_active"`
}

// ProfileUpdate carries a partial profile mutation. Nil fields keep the
// stored value.
type ProfileUpdate struct {
	Name           *string   `json:"name"`
	Topics         *[]string `json:"topics"`
	FrequencyHours *int      `json:"frequency_hours"`
	DownloadPath   *string   `json:"download_path"`
	IsActive       *bool     `json:"is_active"`
}
