package testsupport

import (
	"testing"

	"plinth/internal/catalog"
	"plinth/internal/config"
)

// MustOpenStore opens a catalog store against the test config and registers
// cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}
