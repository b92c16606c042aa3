package cmdlog

import (
	"github.com/kilianp07/wheelsched/core/factory"
)

// Backend names a Store implementation.
const (
	BackendMemory = "memory"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Options selects and configures a Store.
type Options struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

var stores = factory.NewRegistry[Store]()

func init() {
	_ = RegisterStore(BackendMemory, func(map[string]any) (Store, error) { return nil, nil })
	_ = RegisterStore(BackendJSONL, func(conf map[string]any) (Store, error) {
		var o Options
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		if o.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(o.Path, o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
		}
		return NewJSONLStore(o.Path)
	})
	_ = RegisterStore(BackendSQLite, func(conf map[string]any) (Store, error) {
		var o Options
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		return NewSQLiteStore(o.Path)
	})
}

// RegisterStore adds a store factory for backend name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return stores.Register(name, f)
}

// Open builds the store described by o. The memory backend has no store
// and returns nil. A JSONL store rotates when MaxSizeMB is positive.
func Open(o Options) (Store, error) {
	backend := o.Backend
	if backend == "" {
		backend = BackendMemory
	}
	return stores.Create(factory.ModuleConfig{
		Type: backend,
		Conf: map[string]any{
			"path":         o.Path,
			"max_size_mb":  o.MaxSizeMB,
			"max_backups":  o.MaxBackups,
			"max_age_days": o.MaxAgeDays,
		},
	})
}
