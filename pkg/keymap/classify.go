package keymap

// Keycode is a Linux input subsystem key code (KEY_* in <linux/input.h>).
type Keycode uint16

// NumCodes bounds the classification table. Codes at or above it are Unused.
const NumCodes = 128

type Class uint8

const (
	Unused Class = iota
	Character
	Function
	// ModifierFunction keys print a label on press but never on auto-repeat.
	ModifierFunction
)

func (c Class) String() string {
	switch c {
	case Character:
		return "character"
	case Function:
		return "function"
	case ModifierFunction:
		return "modifier-function"
	default:
		return "unused"
	}
}

// c = character, f = function, m = modifier function, _ = unused.
// One row per 16 keycodes.
const classTable = "" +
	"_fccccccccccccff" +
	"ccccccccccccffcc" +
	"ccccccccccfccccc" +
	"ccccccffffmfffff" +
	"fffffmmfffffffff" +
	"ffff__cff_______" +
	"ffffffffffffffff" +
	"_______f_____fff"

func Classify(code Keycode) Class {
	if code >= NumCodes {
		return Unused
	}

	switch classTable[code] {
	case 'c':
		return Character
	case 'f':
		return Function
	case 'm':
		return ModifierFunction
	}

	return Unused
}
