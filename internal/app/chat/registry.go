package chat

import "slices"

// Registry maps live connection IDs to the username they authenticated as.
// It is owned by the Manager loop and is not safe for concurrent use.
type Registry struct {
	entries map[string]registryEntry
	seq     uint64
}

type registryEntry struct {
	username string
	seq      uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Bind records username for connID. A connection is bound at most once;
// Bind reports false and changes nothing if connID already has an identity.
func (r *Registry) Bind(connID, username string) bool {
	if _, ok := r.entries[connID]; ok {
		return false
	}
	r.seq++
	r.entries[connID] = registryEntry{username: username, seq: r.seq}
	return true
}

// Unbind removes connID and reports whether it was present.
func (r *Registry) Unbind(connID string) bool {
	if _, ok := r.entries[connID]; !ok {
		return false
	}
	delete(r.entries, connID)
	return true
}

// Identity returns the username bound to connID.
func (r *Registry) Identity(connID string) (string, bool) {
	e, ok := r.entries[connID]
	return e.username, ok
}

// Snapshot lists the bound usernames, oldest binding first.
// A user with several connections appears once per connection.
func (r *Registry) Snapshot() []string {
	ordered := make([]registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		ordered = append(ordered, e)
	}
	slices.SortFunc(ordered, func(a, b registryEntry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	names := make([]string, len(ordered))
	for i, e := range ordered {
		names[i] = e.username
	}
	return names
}

// Len returns the number of authenticated connections.
func (r *Registry) Len() int {
	return len(r.entries)
}
