package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records an administrative or authentication action.
type AuditLog struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	UserID    *string         `json:"userId,omitempty"`
	IP        string          `json:"ip,omitempty"`
	UserAgent string          `json:"userAgent,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FeatureFlag is a named boolean toggle managed from the admin panel.
type FeatureFlag struct {
	Key       string    `json:"key"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Setting is a free-form JSON configuration value keyed by name.
// Maintenance mode lives at key "maintenance".
type Setting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// SettingKeyMaintenance is the settings key holding the maintenance toggle.
const SettingKeyMaintenance = "maintenance"

// MaintenanceSetting is the payload stored under the maintenance key.
type MaintenanceSetting struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

// LeaderboardEntry is a scored entry shown on the public leaderboard.
type LeaderboardEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Score     int64     `json:"score"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportUser is a user record inside an export bundle. Unlike the API-facing
// User type it carries the password hash so an import can restore accounts
// without resetting credentials.
type ExportUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

// ExportBundle is the full data snapshot produced by /admin/export and
// consumed by /admin/import.
type ExportBundle struct {
	ExportedAt  time.Time          `json:"exportedAt"`
	Users       []ExportUser       `json:"users"`
	Flags       []FeatureFlag      `json:"featureFlags"`
	Settings    []Setting          `json:"settings"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
