package json

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
)

type KeymapStore struct {
	keymaps map[string][]keymap.Entry
	file    *os.File
	lock    sync.Mutex
	dirty   bool
}

func NewKeymapStore(filename string) (*KeymapStore, error) {
	fileExists := true
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &KeymapStore{
		keymaps: make(map[string][]keymap.Entry),
		file:    file,
	}

	if fileExists {
		err = store.load()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	return store, nil
}

// Close writes pending changes and closes the file.
func (s *KeymapStore) Close() error {
	if err := s.Save(); err != nil {
		s.file.Close()
		return fmt.Errorf("save: %w", err)
	}
	return s.file.Close()
}

func (s *KeymapStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	_, err = s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	err = dec.Decode(&s.keymaps)
	if err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

func (s *KeymapStore) Save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	err = enc.Encode(s.keymaps)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

func (s *KeymapStore) GetKeymap(name string) (*keymap.Table, error) {
	s.lock.Lock()
	entries, ok := s.keymaps[name]
	s.lock.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, evkeys.ErrKeymapNotFound)
	}

	table, err := keymap.FromEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("keymap %q: %w", name, err)
	}
	return table, nil
}

func (s *KeymapStore) SetKeymap(name string, table *keymap.Table) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.keymaps[name] = table.Entries()
	s.dirty = true
	return nil
}

func (s *KeymapStore) ListKeymaps() ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	names := make([]string, 0, len(s.keymaps))
	for name := range s.keymaps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
