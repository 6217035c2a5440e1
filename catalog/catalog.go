// Package catalog holds the registry of named, parameterized report
// definitions and translates them into SQL for the platform's Postgres
// schema. Definitions describe their query as a small tagged structure
// (filters, aggregates, sorts) instead of hand-built SQL text; only the
// generated statement ever reaches the datastore, with every caller-supplied
// value bound as a positional argument.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotFound is returned when no report with the requested name exists
	ErrNotFound = errors.New("report not found")

	// ErrDuplicateName is returned when registering a name that already exists
	ErrDuplicateName = errors.New("report name already registered")
)

// Catalog is a registry of report definitions. Definitions are immutable once
// registered; replacing one requires a new catalog so in-flight executions
// never observe a definition changing under them.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// NewWithBuiltins creates a catalog preloaded with the built-in report set
func NewWithBuiltins() (*Catalog, error) {
	c := New()
	for _, def := range Builtins() {
		if err := c.Register(def); err != nil {
			return nil, fmt.Errorf("failed to register built-in report: %w", err)
		}
	}
	return c, nil
}

// Register adds a definition under its name
func (c *Catalog) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("definition has no name")
	}
	if def.Mode != ModeRead && def.Mode != ModeWrite {
		return fmt.Errorf("definition %q has invalid mode %q", def.Name, def.Mode)
	}
	if def.Mode == ModeWrite && def.Write == nil {
		return fmt.Errorf("write definition %q has no write statement", def.Name)
	}
	if def.Mode == ModeRead && def.Write != nil {
		return fmt.Errorf("read definition %q carries a write statement", def.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, def.Name)
	}
	c.defs[def.Name] = def
	return nil
}

// Get returns the definition registered under name
func (c *Catalog) Get(name string) (Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return def, nil
}

// Names returns all registered report names in sorted order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
