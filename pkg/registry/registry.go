package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Registry is the in-memory requester→target mapping backed by a Store.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
	store   Store
}

// Open loads the snapshot from store and returns a ready Registry.
//
// A corrupt or unreadable snapshot does not fail startup: the error is
// logged and the registry starts empty, matching the recovery behavior
// operators expect when the data file was hand-edited or truncated.
func Open(ctx context.Context, store Store) *Registry {
	entries, err := store.Load(ctx)
	if err != nil {
		log.Printf("[ERROR] Failed to load registry snapshot, starting empty: %v", err)
		entries = make(map[string]string)
	}
	if entries == nil {
		entries = make(map[string]string)
	}

	return &Registry{
		entries: entries,
		store:   store,
	}
}

// Lookup returns the target name registered for requesterID.
func (r *Registry) Lookup(requesterID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.entries[requesterID]
	return name, ok
}

// FindOwner returns the requester that currently owns targetName.
// Linear scan; the expected scale is hundreds of entries.
func (r *Registry) FindOwner(targetName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for requester, name := range r.entries {
		if name == targetName {
			return requester, true
		}
	}
	return "", false
}

// Put inserts or overwrites the entry for requesterID. The caller is
// responsible for having already cleared any prior target from the external
// allow-list.
func (r *Registry) Put(requesterID, targetName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[requesterID] = targetName
}

// Delete removes the entry for requesterID, if any. Used during
// supersession after the old name has been removed from the allow-list.
func (r *Registry) Delete(requesterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, requesterID)
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns a copy of the full mapping.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Persist writes the current mapping through to the store.
func (r *Registry) Persist(ctx context.Context) error {
	snapshot := r.Snapshot()
	if err := r.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}
	return nil
}

// Ping reports whether the backing store is reachable.
func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
