package sqlite

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type KeymapEntry struct {
	Keymap string
	Code   int64
	Base   int64
	Shift  int64
	Altgr  int64
}

const keymapExists = `select count(*) from keymaps where name = ?`

func (q *Queries) KeymapExists(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, keymapExists, name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

const getKeymapEntries = `select keymap, code, base, shift, altgr from keymap_entries where keymap = ? order by code`

func (q *Queries) GetKeymapEntries(ctx context.Context, name string) ([]KeymapEntry, error) {
	rows, err := q.db.QueryContext(ctx, getKeymapEntries, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []KeymapEntry
	for rows.Next() {
		var i KeymapEntry
		if err := rows.Scan(&i.Keymap, &i.Code, &i.Base, &i.Shift, &i.Altgr); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteKeymap = `delete from keymaps where name = ?`

func (q *Queries) DeleteKeymap(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, deleteKeymap, name)
	return err
}

const insertKeymap = `insert into keymaps (name, created_at) values (?, ?)`

func (q *Queries) InsertKeymap(ctx context.Context, name string, createdAt int64) error {
	_, err := q.db.ExecContext(ctx, insertKeymap, name, createdAt)
	return err
}

const insertKeymapEntry = `insert into keymap_entries (keymap, code, base, shift, altgr) values (?, ?, ?, ?, ?)`

func (q *Queries) InsertKeymapEntry(ctx context.Context, arg KeymapEntry) error {
	_, err := q.db.ExecContext(ctx, insertKeymapEntry, arg.Keymap, arg.Code, arg.Base, arg.Shift, arg.Altgr)
	return err
}

const listKeymaps = `select name from keymaps order by name`

func (q *Queries) ListKeymaps(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listKeymaps)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
