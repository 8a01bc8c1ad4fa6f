package inputdev

import (
	"fmt"
	evdev "github.com/holoplot/go-evdev"
)

// Discover opens every input device that looks like a keyboard.
func Discover() ([]*Device, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var keyboards []*Device
	for _, p := range paths {
		d, err := OpenKeyboard(p.Path)
		if err != nil {
			continue
		}
		keyboards = append(keyboards, d)
	}

	return keyboards, nil
}
