package evkeys

import (
	"codeberg.org/miketth/evkeys/pkg/translate"
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"io"
	"sync"
)

type Recorder struct {
	translator *translate.Translator

	sinkLock sync.Mutex
	sink     io.Writer

	log *zap.SugaredLogger
}

func NewRecorder(translator *translate.Translator, sink io.Writer, log *zap.SugaredLogger) *Recorder {
	return &Recorder{
		translator: translator,
		sink:       sink,
		log:        log,
	}
}

type readResult struct {
	event translate.Event
	err   error
}

// ProcessDevice translates events from src until ctx is done or src fails. src is closed
// on return. Each call keeps its own modifier state.
func (r *Recorder) ProcessDevice(ctx context.Context, src EventSource) error {
	defer src.Close()

	var mods translate.Modifiers

	results := make(chan readResult)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			ev, err := src.ReadEvent()
			select {
			case results <- readResult{event: ev, err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-results:
			if res.err != nil {
				return fmt.Errorf("read %s: %w", src.Name(), res.err)
			}

			out := r.translator.Translate(res.event, &mods)
			if out.Empty() {
				continue
			}
			if err := r.write(out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
}

func (r *Recorder) write(out translate.Output) error {
	r.sinkLock.Lock()
	defer r.sinkLock.Unlock()

	if _, err := out.WriteTo(r.sink); err != nil {
		return err
	}

	if f, ok := r.sink.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Run reads every source received on sources concurrently. A failing device is logged and
// dropped; Run returns once ctx is done (or sources is closed) and all devices have stopped.
func (r *Recorder) Run(ctx context.Context, sources <-chan EventSource) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case src, ok := <-sources:
			if !ok {
				wg.Wait()
				return nil
			}

			r.log.Infow("listening to keyboard", "device", src.Name())
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := r.ProcessDevice(ctx, src)
				switch {
				case errors.Is(err, context.Canceled):
				case err != nil:
					r.log.Warnw("stopped reading device", "device", src.Name(), "error", err)
				}
			}()
		}
	}
}
