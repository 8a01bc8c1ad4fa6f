package keymap

import (
	"errors"
	"fmt"
)

var ErrNotCharacterKey = errors.New("not a character key")

const (
	defaultBase  = "1234567890-=qwertyuiop[]asdfghjkl;'`\\zxcvbnm,./<"
	defaultShift = "!@#$%^&*()_+QWERTYUIOP{}ASDFGHJKL:\"~|ZXCVBNM<>?>"
)

var defaultLabels = [NumFunc]string{
	"<Esc>", "<BckSp>", "<Tab>", "<Enter>", "<LCtrl>", "<LShft>",
	"<RShft>", "<KP*>", "<LAlt>", " ", "<CpsLk>", "<F1>", "<F2>",
	"<F3>", "<F4>", "<F5>", "<F6>", "<F7>", "<F8>", "<F9>", "<F10>",
	"<NumLk>", "<ScrLk>", "<KP7>", "<KP8>", "<KP9>", "<KP->", "<KP4>",
	"<KP5>", "<KP6>", "<KP+>", "<KP1>", "<KP2>", "<KP3>", "<KP0>",
	"<KP.>", "<F11>", "<F12>", "<KPEnt>", "<RCtrl>", "<KP/>",
	"<PrtSc>", "<AltGr>", "<Break>", "<Home>", "<Up>",
	"<PgUp>", "<Left>", "<Right>", "<End>", "<Down>", "<PgDn>",
	"<Ins>", "<Del>", "<Pause>", "<LMeta>", "<RMeta>", "<Menu>",
}

// Table is a complete keymap. A built Table is never modified, so one value can be
// shared by every device reader without locking.
type Table struct {
	base   [NumChar]rune
	shift  [NumChar]rune
	altgr  [NumChar]rune
	labels [NumFunc]string
}

// Entry is the per-key form of a Table's character layers.
type Entry struct {
	Code  Keycode `json:"code"`
	Base  rune    `json:"base"`
	Shift rune    `json:"shift,omitempty"`
	AltGr rune    `json:"altgr,omitempty"`
}

var defaultTable = func() *Table {
	t := &Table{labels: defaultLabels}
	copy(t.base[:], []rune(defaultBase))
	copy(t.shift[:], []rune(defaultShift))
	return t
}()

// Default returns the built-in US keymap.
func Default() *Table {
	return defaultTable
}

func (t *Table) charIndex(code Keycode) int {
	if Classify(code) != Character {
		return -1
	}

	idx, ok := CharIndex(code)
	if !ok || idx >= NumChar {
		panic(fmt.Sprintf("keymap: character keycode %d has no character index", code))
	}

	return idx
}

// Resolve returns the character produced by a character key. The altgr layer wins when
// altgr is held and has an entry, then the shift layer, then the base layer. Zero means
// the key produces nothing.
func (t *Table) Resolve(code Keycode, shift, altgr bool) rune {
	idx := t.charIndex(code)
	if idx < 0 {
		return 0
	}

	if altgr && t.altgr[idx] != 0 {
		return t.altgr[idx]
	}
	if shift && t.shift[idx] != 0 {
		return t.shift[idx]
	}

	return t.base[idx]
}

// Label returns the display label of a function or modifier-function key.
func (t *Table) Label(code Keycode) (string, bool) {
	switch Classify(code) {
	case Function, ModifierFunction:
	default:
		return "", false
	}

	idx, ok := FuncIndex(code)
	if !ok {
		panic(fmt.Sprintf("keymap: function keycode %d has no label index", code))
	}

	return t.labels[idx], true
}

// Entries lists every character key that has at least one non-zero layer.
func (t *Table) Entries() []Entry {
	var out []Entry
	for code := Keycode(0); code < NumCodes; code++ {
		idx := t.charIndex(code)
		if idx < 0 {
			continue
		}
		if t.base[idx] == 0 && t.shift[idx] == 0 && t.altgr[idx] == 0 {
			continue
		}

		out = append(out, Entry{
			Code:  code,
			Base:  t.base[idx],
			Shift: t.shift[idx],
			AltGr: t.altgr[idx],
		})
	}

	return out
}

func FromEntries(entries []Entry) (*Table, error) {
	b := NewBuilder()
	for _, e := range entries {
		if err := b.Set(e); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// Builder assembles a Table. It starts with empty character layers and the default labels.
type Builder struct {
	t Table
}

func NewBuilder() *Builder {
	return &Builder{t: Table{labels: defaultLabels}}
}

func (b *Builder) index(code Keycode) (int, error) {
	idx := b.t.charIndex(code)
	if idx < 0 {
		return -1, fmt.Errorf("keycode %d: %w", code, ErrNotCharacterKey)
	}
	return idx, nil
}

func (b *Builder) Set(e Entry) error {
	idx, err := b.index(e.Code)
	if err != nil {
		return err
	}

	b.t.base[idx] = e.Base
	b.t.shift[idx] = e.Shift
	b.t.altgr[idx] = e.AltGr
	return nil
}

func (b *Builder) SetBase(code Keycode, r rune) error {
	idx, err := b.index(code)
	if err != nil {
		return err
	}
	b.t.base[idx] = r
	return nil
}

func (b *Builder) SetShift(code Keycode, r rune) error {
	idx, err := b.index(code)
	if err != nil {
		return err
	}
	b.t.shift[idx] = r
	return nil
}

func (b *Builder) SetAltGr(code Keycode, r rune) error {
	idx, err := b.index(code)
	if err != nil {
		return err
	}
	b.t.altgr[idx] = r
	return nil
}

// Build returns a copy of the current state; the Builder may keep being used.
func (b *Builder) Build() *Table {
	t := b.t
	return &t
}
