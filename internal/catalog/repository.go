package catalog

import (
	"fmt"
	"sort"
)

// Repository holds one index per catalog key and is threaded explicitly
// into every component that resolves capabilities. There is no ambient
// process-wide catalog.
type Repository struct {
	indexes map[string]*Index
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{indexes: make(map[string]*Index)}
}

// Register adds an index under its catalog key.
// At most one index may exist per key.
func (r *Repository) Register(idx *Index) error {
	if idx == nil {
		return fmt.Errorf("cannot register a nil index")
	}
	if _, exists := r.indexes[idx.Key()]; exists {
		return fmt.Errorf("catalog %q is already registered", idx.Key())
	}
	r.indexes[idx.Key()] = idx
	return nil
}

// Get returns the index registered under key.
func (r *Repository) Get(key string) (*Index, error) {
	idx, ok := r.indexes[key]
	if !ok {
		return nil, fmt.Errorf("no catalog registered under key %q", key)
	}
	return idx, nil
}

// Keys returns the registered catalog keys in lexical order.
func (r *Repository) Keys() []string {
	keys := make([]string, 0, len(r.indexes))
	for k := range r.indexes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
