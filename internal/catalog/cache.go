package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ShelfmarkCache maps bibid to a resolved full shelfmark across runs.
type ShelfmarkCache interface {
	Lookup(bibid string) (string, bool, error)
	Store(bibid, shelfmark string) error
	Flush() error
}

// FileCache is a ShelfmarkCache kept in memory and written as one YAML map
// on Flush.
type FileCache struct {
	path    string
	entries map[string]string
}

// LoadFileCache reads path if it exists. A missing file yields an empty cache.
func LoadFileCache(path string) (*FileCache, error) {
	c := &FileCache{path: path, entries: map[string]string{}}

	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(blob, &c.entries); err != nil {
		return nil, fmt.Errorf("parse shelfmark cache %s: %w", path, err)
	}
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	return c, nil
}

func (c *FileCache) Lookup(bibid string) (string, bool, error) {
	v, ok := c.entries[bibid]
	return v, ok, nil
}

func (c *FileCache) Store(bibid, shelfmark string) error {
	c.entries[bibid] = shelfmark
	return nil
}

func (c *FileCache) Len() int { return len(c.entries) }

// Flush rewrites the whole file.
func (c *FileCache) Flush() error {
	blob, err := yaml.Marshal(c.entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Entries returns a copy of the cached mapping.
func (c *FileCache) Entries() map[string]string {
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
