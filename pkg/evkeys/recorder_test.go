package evkeys

import (
	"bytes"
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"io"
	"sync"
	"testing"
	"time"
)

type fakeSource struct {
	name   string
	events []translate.Event
	block  chan struct{}

	mu     sync.Mutex
	closed bool
}

func newFakeSource(name string, events ...translate.Event) *fakeSource {
	return &fakeSource{name: name, events: events, block: make(chan struct{})}
}

func (f *fakeSource) ReadEvent() (translate.Event, error) {
	f.mu.Lock()
	if len(f.events) > 0 {
		ev := f.events[0]
		f.events = f.events[1:]
		f.mu.Unlock()
		return ev, nil
	}
	f.mu.Unlock()

	<-f.block
	return translate.Event{}, io.EOF
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.block)
	}
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func key(code keymap.Keycode, v translate.Value) translate.Event {
	return translate.Event{Type: translate.TypeKey, Code: code, Value: v}
}

func TestProcessDevice(t *testing.T) {
	var out syncBuffer
	rec := NewRecorder(translate.New(nil), &out, zap.NewNop().Sugar())

	src := newFakeSource("kbd",
		key(42, translate.Press),
		key(35, translate.Press),
		key(35, translate.Release),
		key(42, translate.Release),
		key(18, translate.Press),
		key(28, translate.Press),
		translate.Event{Type: 0, Code: 0, Value: 0},
		key(255, translate.Press),
	)
	src.Close()

	err := rec.ProcessDevice(context.Background(), src)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "He<Enter><E-ff>", out.String())
}

func TestProcessDeviceCancel(t *testing.T) {
	var out syncBuffer
	rec := NewRecorder(translate.New(nil), &out, zap.NewNop().Sugar())
	src := newFakeSource("kbd", key(30, translate.Press))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rec.ProcessDevice(ctx, src)
	}()

	require.Eventually(t, func() bool { return out.String() == "a" }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("ProcessDevice did not return after cancel")
	}
	assert.True(t, src.isClosed())
}

func TestRunKeepsDeviceStateSeparate(t *testing.T) {
	var out syncBuffer
	rec := NewRecorder(translate.New(nil), &out, zap.NewNop().Sugar())

	first := newFakeSource("first", key(42, translate.Press))
	second := newFakeSource("second", key(30, translate.Press))

	sources := make(chan EventSource, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- rec.Run(ctx, sources)
	}()

	sources <- first
	require.Eventually(t, func() bool {
		first.mu.Lock()
		defer first.mu.Unlock()
		return len(first.events) == 0
	}, time.Second, time.Millisecond)
	sources <- second

	require.Eventually(t, func() bool { return out.String() == "a" }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, first.isClosed())
	assert.True(t, second.isClosed())
}

func TestRunClosedSources(t *testing.T) {
	rec := NewRecorder(translate.New(nil), io.Discard, zap.NewNop().Sugar())

	src := newFakeSource("gone")
	src.Close()

	sources := make(chan EventSource, 1)
	sources <- src
	close(sources)

	assert.NoError(t, rec.Run(context.Background(), sources))
}
