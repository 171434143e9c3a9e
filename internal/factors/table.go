// Package factors holds the static emission factor table.
//
// The table is read once from its Source and is immutable afterwards. The
// footprint of an activity is computed from it at write time only, so later
// edits to the source never change stored history.
package factors

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"footprint/internal/core"
)

var errNoReader = errors.New("source has no reader")

type key struct {
	category string
	subtype  string
}

// Table resolves (category, subtype) pairs to emission factors.
type Table struct {
	src    Source
	logger *slog.Logger

	mu         sync.RWMutex
	loaded     bool
	index      map[key]core.EmissionFactor
	subtypes   map[string][]string
	categories []string
}

// New creates an unloaded table backed by src.
func New(src Source, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{src: src, logger: logger}
}

// Load reads the source. Once it has succeeded, further calls are no-ops;
// a failed load leaves the table empty and may be retried.
func (t *Table) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return nil
	}
	if t.src.Read == nil {
		return &core.LoadError{Source: t.src.Name, Index: -1, Err: errNoReader}
	}

	data, err := t.src.Read()
	if err != nil {
		return &core.LoadError{Source: t.src.Name, Index: -1, Err: err}
	}
	factors, err := parse(t.src, data)
	if err != nil {
		return err
	}

	t.build(factors)
	t.loaded = true
	t.logger.Info("Emission factors loaded",
		"source", t.src.Name,
		"factors", len(factors),
		"categories", len(t.categories))
	return nil
}

func (t *Table) build(factors []core.EmissionFactor) {
	t.index = make(map[key]core.EmissionFactor, len(factors))
	t.subtypes = make(map[string][]string)

	for _, f := range factors {
		k := key{f.Category, f.Subtype}
		if _, dup := t.index[k]; dup {
			t.logger.Warn("Duplicate emission factor ignored",
				"category", f.Category, "subtype", f.Subtype)
			continue
		}
		t.index[k] = f
		t.subtypes[f.Category] = append(t.subtypes[f.Category], f.Subtype)
	}

	t.categories = make([]string, 0, len(t.subtypes))
	for c, subs := range t.subtypes {
		sort.Strings(subs)
		t.categories = append(t.categories, c)
	}
	sort.Strings(t.categories)
}

// Loaded reports whether Load has succeeded.
func (t *Table) Loaded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loaded
}

// Len returns the number of distinct (category, subtype) pairs.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.index)
}

// ListCategories returns the sorted distinct categories.
func (t *Table) ListCategories() ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.loaded {
		return nil, core.ErrNotLoaded
	}
	return append([]string(nil), t.categories...), nil
}

// ListSubtypes returns the sorted subtypes of category, or an empty slice
// when the category is unknown.
func (t *Table) ListSubtypes(category string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.loaded {
		return nil, core.ErrNotLoaded
	}
	return append([]string{}, t.subtypes[category]...), nil
}

// Resolve looks up a factor. A miss, including on an unloaded table, is
// reported through ok rather than an error.
func (t *Table) Resolve(category, subtype string) (core.EmissionFactor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.index[key{category, subtype}]
	return f, ok
}

// ComputeFootprint returns factor × quantity in kg CO2e, or 0 when the pair
// does not resolve. Unknown pairs are not an error.
func (t *Table) ComputeFootprint(category, subtype string, quantity float64) float64 {
	f, ok := t.Resolve(category, subtype)
	if !ok {
		return 0
	}
	return f.Factor * quantity
}
