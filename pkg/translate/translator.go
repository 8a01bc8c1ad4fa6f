package translate

import (
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"fmt"
)

// TypeKey is EV_KEY, the only event type that is translated.
const TypeKey uint16 = 0x01

type Value int32

const (
	Release Value = 0
	Press   Value = 1
	Repeat  Value = 2
)

type Event struct {
	Type  uint16
	Code  keymap.Keycode
	Value Value
}

type Translator struct {
	table *keymap.Table
}

func New(table *keymap.Table) *Translator {
	if table == nil {
		table = keymap.Default()
	}
	return &Translator{table: table}
}

func (t *Translator) Table() *keymap.Table {
	return t.table
}

// Translate applies ev to mods and returns the text it produces.
func (t *Translator) Translate(ev Event, mods *Modifiers) Output {
	// Non-key events (sync, scan codes, axes) are dropped, not escaped.
	if ev.Type != TypeKey {
		return Output{}
	}

	down := ev.Value == Press || ev.Value == Repeat
	class := keymap.Classify(ev.Code)

	if class == keymap.Unused {
		if !down {
			return Output{}
		}
		return Output{text: fmt.Sprintf("<E-%x>", uint16(ev.Code))}
	}

	switch {
	case ev.Value == Release:
		mods.update(ev.Code, false)
		return Output{}
	case !down:
		return Output{}
	case mods.update(ev.Code, true):
		return Output{}
	}

	prefix := mods.prefix()

	switch class {
	case keymap.Character:
		r := t.table.Resolve(ev.Code, mods.Shift, mods.AltGr)
		switch r {
		case 0:
			return Output{}
		case '<':
			return Output{prefix: prefix, text: "<<"}
		}
		return Output{prefix: prefix, text: string(r)}

	case keymap.ModifierFunction:
		if ev.Value != Press {
			return Output{}
		}
	}

	label, _ := t.table.Label(ev.Code)
	return Output{prefix: prefix, text: label}
}
