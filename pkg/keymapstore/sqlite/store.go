package sqlite

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/keymapstore/sqlite/migrations"
	"context"
	"database/sql"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"time"
)

type KeymapStore struct {
	db      *sql.DB
	querier *Queries
}

func NewKeymapStore(filename string, log *zap.SugaredLogger) (*KeymapStore, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &KeymapStore{
		db:      db,
		querier: New(db),
	}, nil
}

func (s *KeymapStore) Close() error {
	return s.db.Close()
}

func (s *KeymapStore) GetKeymap(name string) (*keymap.Table, error) {
	ctx := context.Background()

	exists, err := s.querier.KeymapExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, evkeys.ErrKeymapNotFound)
	}

	rows, err := s.querier.GetKeymapEntries(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}

	entries := make([]keymap.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, keymap.Entry{
			Code:  keymap.Keycode(row.Code),
			Base:  rune(row.Base),
			Shift: rune(row.Shift),
			AltGr: rune(row.Altgr),
		})
	}

	table, err := keymap.FromEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("keymap %q: %w", name, err)
	}
	return table, nil
}

// SetKeymap replaces the stored keymap called name in one transaction.
func (s *KeymapStore) SetKeymap(name string, table *keymap.Table) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := s.querier.WithTx(tx)
	if err := q.DeleteKeymap(ctx, name); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	if err := q.InsertKeymap(ctx, name, time.Now().Unix()); err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	for _, e := range table.Entries() {
		if err := q.InsertKeymapEntry(ctx, KeymapEntry{
			Keymap: name,
			Code:   int64(e.Code),
			Base:   int64(e.Base),
			Shift:  int64(e.Shift),
			Altgr:  int64(e.AltGr),
		}); err != nil {
			return fmt.Errorf("sqlite insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *KeymapStore) ListKeymaps() ([]string, error) {
	names, err := s.querier.ListKeymaps(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	return names, nil
}
