package keymap

const (
	// NumChar is the size of each character layer.
	NumChar = 48
	// NumFunc is the number of function key labels.
	NumFunc = 58
)

type span struct {
	first, last Keycode
	offset      int
}

// Each span maps [first, last] onto [offset, offset+last-first] of the dense index space.
var charSpans = []span{
	{2, 13, 0},   // 1 .. =
	{16, 27, 12}, // q .. ]
	{30, 41, 24}, // a .. `
	{43, 53, 36}, // \ .. /
	{86, 86, 47}, // 102nd key, left of z
}

var funcSpans = []span{
	{1, 1, 0},      // esc
	{14, 15, 1},    // backspace, tab
	{28, 29, 3},    // enter, left ctrl
	{42, 42, 5},    // left shift
	{54, 83, 6},    // right shift .. keypad dot
	{87, 88, 36},   // F11, F12
	{96, 111, 38},  // keypad enter .. delete
	{119, 119, 54}, // pause
	{125, 127, 55}, // left meta, right meta, compose
}

func lookup(spans []span, code Keycode) (int, bool) {
	for _, s := range spans {
		if code >= s.first && code <= s.last {
			return s.offset + int(code-s.first), true
		}
	}
	return -1, false
}

// CharIndex returns the position of a character key in the character layers.
func CharIndex(code Keycode) (int, bool) {
	return lookup(charSpans, code)
}

// FuncIndex returns the position of a function or modifier-function key in the label array.
func FuncIndex(code Keycode) (int, bool) {
	return lookup(funcSpans, code)
}
