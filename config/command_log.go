package config

import (
	"fmt"

	"github.com/kilianp07/wheelsched/core/cmdlog"
)

// CommandLogConfig defines the command history and its durable store.
type CommandLogConfig struct {
	// Backend selects the store type: "memory", "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// Capacity bounds the in-memory history.
	Capacity int `json:"capacity"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *CommandLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = cmdlog.BackendMemory
	}
	if c.Capacity == 0 {
		c.Capacity = cmdlog.DefaultCapacity
	}
	if c.Path == "" {
		switch c.Backend {
		case cmdlog.BackendJSONL:
			c.Path = "commands.jsonl"
		case cmdlog.BackendSQLite:
			c.Path = "commands.db"
		}
	}
}

// Validate checks mandatory fields.
func (c CommandLogConfig) Validate() error {
	switch c.Backend {
	case cmdlog.BackendMemory:
	case cmdlog.BackendJSONL, cmdlog.BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be positive")
	}
	return nil
}

// Options converts the section for cmdlog.Open.
func (c CommandLogConfig) Options() cmdlog.Options {
	return cmdlog.Options{
		Backend:    c.Backend,
		Path:       c.Path,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
