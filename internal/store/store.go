// Package store is the persistence boundary for save blobs.
// A save is an opaque byte blob keyed by save id; every Save overwrites the
// previous blob in full.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load and Delete when no save exists for the id.
var ErrNotFound = errors.New("store: save not found")

// Store loads and saves whole blobs.
type Store interface {
	Load(ctx context.Context, saveID string) ([]byte, error)
	Save(ctx context.Context, saveID string, blob []byte) error
	Delete(ctx context.Context, saveID string) error
	Close() error
}

// Open builds the store for driver ("file", "sqlite" or "memory").
func Open(driver, dataDir string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "file", "":
		return NewFileStore(dataDir)
	case "sqlite":
		return OpenSQLite(dataDir)
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}

func cleanID(saveID string) (string, error) {
	id := strings.TrimSpace(saveID)
	if id == "" {
		return "", fmt.Errorf("store: save id is required")
	}
	return id, nil
}
