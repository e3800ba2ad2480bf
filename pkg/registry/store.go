package registry

import "context"

// Store is the durable backend behind a Registry. Implementations must make
// Save all-or-nothing: a failed write may not corrupt the previously stored
// snapshot.
type Store interface {
	// Load reads the full mapping. A missing snapshot yields an empty map
	// and no error; a present-but-unreadable snapshot yields an error so
	// the caller can decide whether to start fresh.
	Load(ctx context.Context) (map[string]string, error)

	// Save replaces the stored snapshot wholesale.
	Save(ctx context.Context, entries map[string]string) error

	// Ping verifies the backend is usable. Used by the health endpoint.
	Ping(ctx context.Context) error
}
