package layout

import (
	"bufio"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrNoBindings = errors.New("no character key bindings found")

// letterMask marks KT_LETTER values in dumpkeys numeric output.
const letterMask = 0xB00

// LoadError reports why a keymap could not be loaded. The caller's table is unaffected.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return "load keymap: " + e.Op + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load invokes src and parses its output into a new table.
func Load(ctx context.Context, src Source) (*keymap.Table, error) {
	raw, err := src.Invoke(ctx)
	if err != nil {
		return nil, &LoadError{Op: "invoke", Err: err}
	}

	table, err := Parse(raw)
	if err != nil {
		return nil, &LoadError{Op: "parse", Err: err}
	}

	return table, nil
}

// Parse builds a table from `dumpkeys -n` output. Recognised lines are
//
//	keycode  30 = +0x0b61 +0x0b41 +0x0b61
//	shift keycode  30 = +0x0b41
//	altgr keycode  18 = U+20ac
//
// Everything else, including bindings of non-character keys, is skipped.
func Parse(raw string) (*keymap.Table, error) {
	b := keymap.NewBuilder()
	applied := 0

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var (
			ok  bool
			err error
		)
		switch fields[0] {
		case "keycode":
			ok, err = parseKeycodeLine(b, fields)
		case "shift", "altgr":
			ok, err = parseLayerLine(b, fields)
		}
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", scanner.Text(), err)
		}
		if ok {
			applied++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dump: %w", err)
	}

	if applied == 0 {
		return nil, ErrNoBindings
	}

	return b.Build(), nil
}

// binding splits `keycode N = v...` into the keycode and its values.
func binding(fields []string) (keymap.Keycode, []string, bool) {
	if len(fields) < 3 || fields[0] != "keycode" || fields[2] != "=" {
		return 0, nil, false
	}

	code, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return 0, nil, false
	}

	kc := keymap.Keycode(code)
	if keymap.Classify(kc) != keymap.Character {
		return 0, nil, false
	}

	return kc, fields[3:], true
}

func parseKeycodeLine(b *keymap.Builder, fields []string) (bool, error) {
	code, values, ok := binding(fields)
	if !ok {
		return false, nil
	}

	var layers [3]rune
	for i := 0; i < len(layers) && i < len(values); i++ {
		layers[i] = parseValue(values[i])
	}

	base, shift, altgr := layers[0], layers[1], layers[2]
	if shift == 0 {
		if upper := unicode.ToUpper(base); upper != base {
			shift = upper
		}
	}

	if err := b.Set(keymap.Entry{Code: code, Base: base, Shift: shift, AltGr: altgr}); err != nil {
		return false, err
	}
	return true, nil
}

func parseLayerLine(b *keymap.Builder, fields []string) (bool, error) {
	code, values, ok := binding(fields[1:])
	if !ok || len(values) == 0 {
		return false, nil
	}

	set := b.SetAltGr
	if fields[0] == "shift" {
		set = b.SetShift
	}
	if err := set(code, parseValue(values[0])); err != nil {
		return false, err
	}
	return true, nil
}

// parseValue decodes 0x0061, U+0061 and their +-prefixed letter forms. Symbolic names
// decode to zero.
func parseValue(s string) rune {
	letter := strings.HasPrefix(s, "+")
	s = strings.TrimPrefix(s, "+")

	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"), strings.HasPrefix(s, "U+"):
		s = s[2:]
	default:
		return 0
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > unicode.MaxRune {
		return 0
	}

	r := rune(v)
	if letter && r&letterMask != 0 {
		r ^= letterMask
	}
	return r
}
