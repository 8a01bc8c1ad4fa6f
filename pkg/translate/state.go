package translate

import "codeberg.org/miketth/evkeys/pkg/keymap"

const (
	keyLeftCtrl   keymap.Keycode = 29
	keyLeftShift  keymap.Keycode = 42
	keyRightShift keymap.Keycode = 54
	keyLeftAlt    keymap.Keycode = 56
	keyRightCtrl  keymap.Keycode = 97
	keyRightAlt   keymap.Keycode = 100
	keyLeftMeta   keymap.Keycode = 125
	keyRightMeta  keymap.Keycode = 126
)

// Modifiers is the modifier state of one device. The zero value has every flag clear.
// It must not be shared between devices.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	AltGr bool
	Meta  bool
}

func (m *Modifiers) flag(code keymap.Keycode) *bool {
	switch code {
	case keyLeftShift, keyRightShift:
		return &m.Shift
	case keyLeftCtrl, keyRightCtrl:
		return &m.Ctrl
	case keyLeftAlt:
		return &m.Alt
	case keyRightAlt:
		return &m.AltGr
	case keyLeftMeta, keyRightMeta:
		return &m.Meta
	}
	return nil
}

// IsModifier reports whether code drives one of the modifier flags.
func IsModifier(code keymap.Keycode) bool {
	var m Modifiers
	return m.flag(code) != nil
}

// update sets or clears the flag for code and reports whether code is a modifier.
func (m *Modifiers) update(code keymap.Keycode, down bool) bool {
	f := m.flag(code)
	if f == nil {
		return false
	}
	*f = down
	return true
}

func (m Modifiers) prefix() string {
	switch {
	case m.Ctrl && m.Alt && m.Meta:
		return "<CTRL,ALT,META>+"
	case m.Ctrl && m.Alt:
		return "<CTRL,ALT>+"
	case m.Alt && m.Meta:
		return "<ALT,META>+"
	case m.Ctrl && m.Meta:
		return "<CTRL,META>+"
	case m.Meta:
		return "<META>+"
	case m.Ctrl:
		return "<CTRL>+"
	case m.Alt:
		return "<ALT>+"
	}
	return ""
}
