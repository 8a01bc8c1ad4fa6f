package inputdev

import (
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"codeberg.org/miketth/evkeys/pkg/translate"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// record is struct input_event on 64-bit Linux.
type record struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// RecordSize is the size of one raw event record.
const RecordSize = 24

// Replay decodes raw event records captured from an event device, e.g. with
// `cat /dev/input/eventN > capture`.
type Replay struct {
	name string
	r    io.Reader
}

func NewReplay(name string, r io.Reader) *Replay {
	return &Replay{name: name, r: r}
}

func (p *Replay) ReadEvent() (translate.Event, error) {
	var rec record
	if err := binary.Read(p.r, binary.LittleEndian, &rec); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return translate.Event{}, fmt.Errorf("truncated event record: %w", err)
		}
		return translate.Event{}, err
	}

	return translate.Event{
		Type:  rec.Type,
		Code:  keymap.Keycode(rec.Code),
		Value: translate.Value(rec.Value),
	}, nil
}

func (p *Replay) Name() string {
	return p.name
}

func (p *Replay) Close() error {
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// AppendRecord encodes ev the way the kernel would, with a zero timestamp.
func AppendRecord(dst []byte, ev translate.Event) []byte {
	dst = append(dst, make([]byte, 16)...)
	dst = binary.LittleEndian.AppendUint16(dst, ev.Type)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(ev.Code))
	return binary.LittleEndian.AppendUint32(dst, uint32(ev.Value))
}
