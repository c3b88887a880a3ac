package dataset

import (
	"sort"
	"sync"
)

// Registry is a named collection of tables shared between the HTTP handlers
// and the directory watcher. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Add registers a table under its name, replacing any previous table.
func (r *Registry) Add(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t.Name()] = t
}

// Get looks up a table by name.
func (r *Registry) Get(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Remove drops a table by name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, name)
}

// Names returns the sorted registered table names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}
