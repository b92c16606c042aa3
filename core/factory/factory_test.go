package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	Path string
	Size int
}

type storeConf struct {
	Path string `json:"path"`
	Size int    `json:"max_size_mb"`
}

func newStoreRegistry(t *testing.T) *Registry[*store] {
	t.Helper()
	reg := NewRegistry[*store]()
	require.NoError(t, reg.Register("jsonl", func(conf map[string]any) (*store, error) {
		var c storeConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("path is required")
		}
		return &store{Path: c.Path, Size: c.Size}, nil
	}))
	return reg
}

func TestRegistryCreate(t *testing.T) {
	reg := newStoreRegistry(t)
	s, err := reg.Create(ModuleConfig{Type: " JSONL ", Conf: map[string]any{"path": "commands.jsonl", "max_size_mb": "5"}})
	require.NoError(t, err)
	assert.Equal(t, "commands.jsonl", s.Path)
	assert.Equal(t, 5, s.Size)
}

func TestRegistryErrors(t *testing.T) {
	reg := newStoreRegistry(t)
	assert.Error(t, reg.Register("jsonl", func(map[string]any) (*store, error) { return nil, nil }))
	assert.Error(t, reg.Register("sqlite", nil))
	assert.Error(t, reg.Register("  ", func(map[string]any) (*store, error) { return nil, nil }))

	_, err := reg.Create(ModuleConfig{Type: "redis"})
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "jsonl")

	_, err = reg.Create(ModuleConfig{Type: "jsonl"})
	assert.EqualError(t, err, "jsonl: path is required")
}

func TestNames(t *testing.T) {
	reg := newStoreRegistry(t)
	require.NoError(t, reg.Register("Memory", func(map[string]any) (*store, error) { return &store{}, nil }))
	assert.Equal(t, []string{"jsonl", "memory"}, reg.Names())
}
