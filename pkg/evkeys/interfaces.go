package evkeys

import (
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"errors"
)

var ErrKeymapNotFound = errors.New("keymap not found")

// EventSource delivers the events of one input device in the order they were produced.
type EventSource interface {
	ReadEvent() (translate.Event, error)
	Name() string
	Close() error
}

// KeymapStore keeps named keymap snapshots so a layout can be reused without dumpkeys.
type KeymapStore interface {
	GetKeymap(name string) (*keymap.Table, error)
	SetKeymap(name string, table *keymap.Table) error
	ListKeymaps() ([]string, error)
}
