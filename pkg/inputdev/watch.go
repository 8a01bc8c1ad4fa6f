package inputdev

import (
	"codeberg.org/miketth/evkeys/pkg/evkeys"
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"path/filepath"
	"strings"
	"time"
)

const DevInput = "/dev/input"

// udev needs a moment to apply permissions to a freshly created node.
const settleDelay = 250 * time.Millisecond

// Watch sends keyboards that appear under dir on found until ctx is done.
func Watch(ctx context.Context, dir string, found chan<- evkeys.EventSource, log *zap.SugaredLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !event.Has(fsnotify.Create) || !strings.HasPrefix(filepath.Base(event.Name), "event") {
				continue
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settleDelay):
			}

			d, err := OpenKeyboard(event.Name)
			if err != nil {
				log.Debugw("ignoring new input device", "device", event.Name, "error", err)
				continue
			}

			select {
			case found <- d:
			case <-ctx.Done():
				d.Close()
				return ctx.Err()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			log.Warnw("device watcher error", "error", err)
		}
	}
}
