// Package source resolves course unit keys to document text. Sources hide
// where the text comes from (local PDF, local markdown, GitHub) behind one
// Load contract.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrUnknownUnit reports a key absent from the catalog.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrEmptyDocument reports a unit whose document produced no text.
	ErrEmptyDocument = errors.New("document has no extractable text")
)

// Source loads the full text of a unit's document.
type Source interface {
	Load(ctx context.Context, key string) (string, error)
}

// Unit is one entry in the course catalog.
type Unit struct {
	Key  string `toml:"key"`
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Catalog maps unit keys to documents, preserving file order for display.
type Catalog struct {
	units []Unit
	byKey map[string]Unit
}

// LoadCatalog reads a TOML unit catalog:
//
//	[[unit]]
//	key  = "unit4-bonds"
//	name = "Unit 4 - Bonds"
//	path = "assets/unit4_bonds.pdf"
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes catalog TOML and validates entries.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file struct {
		Units []Unit `toml:"unit"`
	}
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Units) == 0 {
		return nil, fmt.Errorf("catalog defines no units")
	}

	byKey := make(map[string]Unit, len(file.Units))
	for _, u := range file.Units {
		if u.Key == "" || u.Path == "" {
			return nil, fmt.Errorf("catalog unit %q missing key or path", u.Name)
		}
		if _, dup := byKey[u.Key]; dup {
			return nil, fmt.Errorf("catalog has duplicate unit key %q", u.Key)
		}
		byKey[u.Key] = u
	}
	return &Catalog{units: file.Units, byKey: byKey}, nil
}

// Units returns all units in catalog order.
func (c *Catalog) Units() []Unit {
	out := make([]Unit, len(c.units))
	copy(out, c.units)
	return out
}

// Lookup finds a unit by key.
func (c *Catalog) Lookup(key string) (Unit, bool) {
	u, ok := c.byKey[key]
	return u, ok
}

// Cached wraps a source with a process-lifetime text cache. Extraction runs
// once per key even under concurrent loads; failed loads are not cached.
func Cached(src Source) Source {
	return &cachedSource{
		src:     src,
		entries: make(map[string]*textEntry),
	}
}

type cachedSource struct {
	src     Source
	mu      sync.Mutex
	entries map[string]*textEntry
}

type textEntry struct {
	ready chan struct{}
	text  string
	err   error
}

func (c *cachedSource) Load(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			return e.text, e.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	e := &textEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.text, e.err = c.src.Load(ctx, key)
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
	close(e.ready)

	return e.text, e.err
}
