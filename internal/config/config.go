// Package config defines the server configuration and how it is loaded.
package config

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"notrello/internal/calendar"
	"notrello/internal/timeline"
)

// Slot layouts accepted by TimelineSlots.
const (
	SlotsHourly      = "hourly"
	SlotsFiveMinutes = "five_minutes"
)

const minSecretLen = 16

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr is the HTTP listen address, e.g. ":7521".
	Addr string `koanf:"addr"`

	MongoURI      string `koanf:"mongodb_uri"`
	MongoDatabase string `koanf:"mongodb_database"`

	// JWTSecret signs session tokens. At least 16 bytes.
	JWTSecret    string        `koanf:"jwt_secret"`
	SessionTTL   time.Duration `koanf:"session_ttl"`
	CookieSecure bool          `koanf:"cookie_secure"`

	// Timezone names the location used for "today" and for dropping past
	// events on import. "Local" uses the host zone.
	Timezone string `koanf:"timezone"`

	// TimelineSlots picks the drop targets of the daily board: hourly or
	// five_minutes, between TimelineStart and TimelineEnd.
	TimelineSlots string `koanf:"timeline_slots"`
	TimelineStart string `koanf:"timeline_start"`
	TimelineEnd   string `koanf:"timeline_end"`

	// ImportMaxBytes caps an uploaded .ics file.
	ImportMaxBytes int64 `koanf:"import_max_bytes"`
	// ImportRecurrenceDays expands RRULE events this many days ahead; 0
	// imports only the first occurrence.
	ImportRecurrenceDays int `koanf:"import_recurrence_days"`

	// WeekStart is monday or sunday.
	WeekStart string `koanf:"week_start"`

	// RetentionDays drops cards older than this many days; 0 keeps all.
	RetentionDays   int    `koanf:"retention_days"`
	MaintenanceCron string `koanf:"maintenance_cron"`

	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":7521",
		MongoURI:             "mongodb://localhost:27017",
		MongoDatabase:        "notrello",
		SessionTTL:           7 * 24 * time.Hour,
		Timezone:             "Local",
		TimelineSlots:        SlotsHourly,
		TimelineStart:        "08:00",
		TimelineEnd:          "19:00",
		ImportMaxBytes:       5 << 20,
		ImportRecurrenceDays: 0,
		WeekStart:            "monday",
		RetentionDays:        0,
		MaintenanceCron:      "@every 5m",
		MetricsEnabled:       true,
	}
}

// Validate checks the values that the server cannot start without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MongoURI == "" || c.MongoDatabase == "" {
		return fmt.Errorf("%w: mongodb_uri and mongodb_database are required", ErrInvalidConfig)
	}
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("%w: jwt_secret must be at least %d bytes", ErrInvalidConfig, minSecretLen)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Slots(); err != nil {
		return err
	}
	if c.ImportMaxBytes <= 0 {
		return fmt.Errorf("%w: import_max_bytes must be positive", ErrInvalidConfig)
	}
	if c.ImportRecurrenceDays < 0 || c.RetentionDays < 0 {
		return fmt.Errorf("%w: day counts must not be negative", ErrInvalidConfig)
	}
	if _, ok := calendar.ParseWeekStart(c.WeekStart); !ok {
		return fmt.Errorf("%w: week_start %q", ErrInvalidConfig, c.WeekStart)
	}
	return nil
}

// Slots builds the daily board layout.
func (c *Config) Slots() (timeline.Slots, error) {
	first, err := timeline.ParseClock(c.TimelineStart)
	if err != nil {
		return timeline.Slots{}, fmt.Errorf("%w: timeline_start: %v", ErrInvalidConfig, err)
	}
	last, err := timeline.ParseClock(c.TimelineEnd)
	if err != nil {
		return timeline.Slots{}, fmt.Errorf("%w: timeline_end: %v", ErrInvalidConfig, err)
	}
	if last <= first {
		return timeline.Slots{}, fmt.Errorf("%w: timeline_start must be before timeline_end", ErrInvalidConfig)
	}

	switch c.TimelineSlots {
	case SlotsHourly:
		return timeline.HourlySlots(first, last), nil
	case SlotsFiveMinutes:
		return timeline.FiveMinuteSlots(first, last), nil
	}
	return timeline.Slots{}, fmt.Errorf("%w: timeline_slots %q", ErrInvalidConfig, c.TimelineSlots)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FirstWeekday resolves WeekStart, defaulting to monday.
func (c *Config) FirstWeekday() time.Weekday {
	d, _ := calendar.ParseWeekStart(c.WeekStart)
	return d
}

// Dump writes the effective configuration as YAML with the secret redacted.
func (c *Config) Dump(w io.Writer) error {
	secret := ""
	if c.JWTSecret != "" {
		secret = "<redacted>"
	}
	out := map[string]any{
		"log_level":              c.LogLevel,
		"addr":                   c.Addr,
		"mongodb_uri":            c.MongoURI,
		"mongodb_database":       c.MongoDatabase,
		"jwt_secret":             secret,
		"session_ttl":            c.SessionTTL.String(),
		"cookie_secure":          c.CookieSecure,
		"timezone":               c.Timezone,
		"timeline_slots":         c.TimelineSlots,
		"timeline_start":         c.TimelineStart,
		"timeline_end":           c.TimelineEnd,
		"import_max_bytes":       c.ImportMaxBytes,
		"import_recurrence_days": c.ImportRecurrenceDays,
		"week_start":             c.WeekStart,
		"retention_days":         c.RetentionDays,
		"maintenance_cron":       c.MaintenanceCron,
		"metrics_enabled":        c.MetricsEnabled,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
