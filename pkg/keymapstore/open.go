// Package keymapstore selects one of the keymap snapshot backends.
package keymapstore

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/keymapstore/json"
	"codeberg.org/miketth/evkeys/pkg/keymapstore/memory"
	"codeberg.org/miketth/evkeys/pkg/keymapstore/sqlite"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"os"
	"path/filepath"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown keymap store backend")

type Store interface {
	evkeys.KeymapStore
	io.Closer
}

type memoryStore struct {
	*memory.KeymapStore
}

func (memoryStore) Close() error { return nil }

// Open creates the parent directory of path for file backends.
func Open(backend, path string, log *zap.SugaredLogger) (Store, error) {
	switch backend {
	case BackendSQLite, BackendJSON, "":
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	switch backend {
	case BackendSQLite, "":
		store, err := sqlite.NewKeymapStore(path, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil

	case BackendJSON:
		store, err := json.NewKeymapStore(path)
		if err != nil {
			return nil, fmt.Errorf("open json store: %w", err)
		}
		return store, nil

	case BackendMemory:
		return memoryStore{memory.NewKeymapStore()}, nil
	}

	return nil, fmt.Errorf("%q: %w", backend, ErrUnknownBackend)
}
