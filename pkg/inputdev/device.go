package inputdev

import (
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"errors"
	"fmt"
	evdev "github.com/holoplot/go-evdev"
)

var ErrNotKeyboard = errors.New("device does not look like a keyboard")

// Device is an open evdev node.
type Device struct {
	path string
	dev  *evdev.InputDevice
}

func Open(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Device{path: path, dev: dev}, nil
}

// OpenKeyboard opens path and fails with ErrNotKeyboard unless it reports letter and
// enter keys.
func OpenKeyboard(path string) (*Device, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}

	if !d.IsKeyboard() {
		d.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotKeyboard)
	}

	return d, nil
}

func (d *Device) IsKeyboard() bool {
	hasA, hasEnter := false, false
	for _, c := range d.dev.CapableEvents(evdev.EV_KEY) {
		switch c {
		case evdev.KEY_A:
			hasA = true
		case evdev.KEY_ENTER:
			hasEnter = true
		}
	}
	return hasA && hasEnter
}

func (d *Device) ReadEvent() (translate.Event, error) {
	ev, err := d.dev.ReadOne()
	if err != nil {
		return translate.Event{}, err
	}

	return translate.Event{
		Type:  uint16(ev.Type),
		Code:  keymap.Keycode(ev.Code),
		Value: translate.Value(ev.Value),
	}, nil
}

func (d *Device) Name() string {
	name, err := d.dev.Name()
	if err != nil || name == "" {
		return d.path
	}
	return fmt.Sprintf("%s (%s)", d.path, name)
}

func (d *Device) Close() error {
	return d.dev.Close()
}
