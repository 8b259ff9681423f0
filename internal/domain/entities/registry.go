package entities

// RegistryEntry is one row of the static facility dataset
type RegistryEntry struct {
	Name     string
	Address  string
	Phone    string
	Location Location
}

// Registry is an immutable, name-indexed set of registry entries.
type Registry struct {
	entries []RegistryEntry
	byName  map[string]RegistryEntry
	skipped int
}

// NewRegistry indexes entries by exact name. On duplicate names the last entry wins
// the lookup, while Entries keeps every row in load order.
func NewRegistry(entries []RegistryEntry, skipped int) *Registry {
	byName := make(map[string]RegistryEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	return &Registry{
		entries: entries,
		byName:  byName,
		skipped: skipped,
	}
}

// Entries returns all loaded entries in source order
func (r *Registry) Entries() []RegistryEntry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Lookup finds an entry by exact name
func (r *Registry) Lookup(name string) (RegistryEntry, bool) {
	if r == nil {
		return RegistryEntry{}, false
	}
	e, ok := r.byName[name]
	return e, ok
}

// Len returns the number of loaded entries
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Skipped returns how many source rows were rejected during load
func (r *Registry) Skipped() int {
	if r == nil {
		return 0
	}
	return r.skipped
}
