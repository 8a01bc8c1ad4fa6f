package translate

import (
	"errors"
	"io"
	"iter"
	"unicode/utf8"
)

var ErrTruncated = errors.New("output truncated")

// Output holds the fragments produced by a single event: an optional modifier prefix
// followed by a character or label.
type Output struct {
	prefix string
	text   string
}

func (o Output) Empty() bool {
	return o.prefix == "" && o.text == ""
}

// All yields the non-empty fragments in order. It can be ranged over any number of times.
func (o Output) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if o.prefix != "" && !yield(o.prefix) {
			return
		}
		if o.text != "" {
			yield(o.text)
		}
	}
}

func (o Output) String() string {
	return o.prefix + o.text
}

func (o Output) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for frag := range o.All() {
		n, err := io.WriteString(w, frag)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// AppendTo appends the output to dst without letting len(dst) exceed limit. If the output
// does not fit it is cut at the last whole UTF-8 sequence and ErrTruncated is returned.
func (o Output) AppendTo(dst []byte, limit int) ([]byte, error) {
	for frag := range o.All() {
		room := limit - len(dst)
		if len(frag) <= room {
			dst = append(dst, frag...)
			continue
		}

		cut := max(room, 0)
		for cut > 0 && !utf8.RuneStart(frag[cut]) {
			cut--
		}
		return append(dst, frag[:cut]...), ErrTruncated
	}
	return dst, nil
}
