package memory

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"fmt"
	"slices"
	"sync"
)

type KeymapStore struct {
	lock    sync.RWMutex
	keymaps map[string]*keymap.Table
}

func NewKeymapStore() *KeymapStore {
	return &KeymapStore{
		keymaps: make(map[string]*keymap.Table),
	}
}

func (s *KeymapStore) GetKeymap(name string) (*keymap.Table, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	table, ok := s.keymaps[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, evkeys.ErrKeymapNotFound)
	}
	return table, nil
}

func (s *KeymapStore) SetKeymap(name string, table *keymap.Table) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.keymaps[name] = table
	return nil
}

func (s *KeymapStore) ListKeymaps() ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	names := make([]string, 0, len(s.keymaps))
	for name := range s.keymaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
