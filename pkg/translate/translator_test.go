package translate

import (
	"codeberg.org/miketth/evkeys/pkg/keymap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"slices"
	"strings"
	"testing"
)

func key(code keymap.Keycode, v Value) Event {
	return Event{Type: TypeKey, Code: code, Value: v}
}

func run(t *testing.T, tr *Translator, mods *Modifiers, events ...Event) string {
	t.Helper()
	var sb strings.Builder
	for _, ev := range events {
		_, err := tr.Translate(ev, mods).WriteTo(&sb)
		require.NoError(t, err)
	}
	return sb.String()
}

func TestPlainCharacter(t *testing.T) {
	var mods Modifiers
	assert.Equal(t, "a", run(t, New(nil), &mods, key(30, Press)))
}

func TestShiftedCharacter(t *testing.T) {
	tr := New(keymap.Default())
	var mods Modifiers

	assert.Equal(t, "", run(t, tr, &mods, key(42, Press)))
	assert.Equal(t, "A", run(t, tr, &mods, key(30, Press)))
	assert.Equal(t, "", run(t, tr, &mods, key(42, Release), key(30, Release)))
	assert.Equal(t, Modifiers{}, mods)
}

func TestControlPrefix(t *testing.T) {
	var mods Modifiers
	assert.Equal(t, "<CTRL>+a", run(t, New(nil), &mods, key(29, Press), key(30, Press)))
}

func TestUnknownKeycode(t *testing.T) {
	tr := New(nil)
	var mods Modifiers

	assert.Equal(t, "<E-ff>", run(t, tr, &mods, key(255, Press)))
	assert.Equal(t, "<E-54>", run(t, tr, &mods, key(84, Repeat)))
	assert.Equal(t, "", run(t, tr, &mods, key(255, Release), key(0, Release)))
}

func TestNonKeyEventsIgnored(t *testing.T) {
	var mods Modifiers
	events := []Event{
		{Type: 0x00, Code: 0, Value: 0},     // SYN_REPORT
		{Type: 0x04, Code: 4, Value: 1},     // MSC_SCAN
		{Type: 0x02, Code: 0, Value: Press}, // REL_X
	}
	assert.Equal(t, "", run(t, New(nil), &mods, events...))
}

func TestPrefixCombinations(t *testing.T) {
	tests := []struct {
		name string
		mods Modifiers
		want string
	}{
		{"none", Modifiers{}, "a"},
		{"alt", Modifiers{Alt: true}, "<ALT>+a"},
		{"ctrl", Modifiers{Ctrl: true}, "<CTRL>+a"},
		{"meta", Modifiers{Meta: true}, "<META>+a"},
		{"ctrl alt", Modifiers{Ctrl: true, Alt: true}, "<CTRL,ALT>+a"},
		{"alt meta", Modifiers{Alt: true, Meta: true}, "<ALT,META>+a"},
		{"ctrl meta", Modifiers{Ctrl: true, Meta: true}, "<CTRL,META>+a"},
		{"ctrl alt meta", Modifiers{Ctrl: true, Alt: true, Meta: true}, "<CTRL,ALT,META>+a"},
		{"altgr is not a prefix", Modifiers{AltGr: true}, "a"},
		{"shift is not a prefix", Modifiers{Shift: true, Ctrl: true}, "<CTRL>+A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods := tt.mods
			assert.Equal(t, tt.want, run(t, New(nil), &mods, key(30, Press)))
			assert.Equal(t, tt.mods, mods)
		})
	}
}

func TestModifierKeysTrackFlags(t *testing.T) {
	tests := []struct {
		code keymap.Keycode
		want Modifiers
	}{
		{42, Modifiers{Shift: true}},
		{54, Modifiers{Shift: true}},
		{29, Modifiers{Ctrl: true}},
		{97, Modifiers{Ctrl: true}},
		{56, Modifiers{Alt: true}},
		{100, Modifiers{AltGr: true}},
		{125, Modifiers{Meta: true}},
		{126, Modifiers{Meta: true}},
	}

	for _, tt := range tests {
		var mods Modifiers
		tr := New(nil)
		assert.Equal(t, "", run(t, tr, &mods, key(tt.code, Press)))
		assert.Equal(t, tt.want, mods, "keycode %d", tt.code)
		assert.Equal(t, "", run(t, tr, &mods, key(tt.code, Repeat)))
		assert.Equal(t, tt.want, mods, "keycode %d", tt.code)
	}
}

func TestModifierPressReleaseReversible(t *testing.T) {
	codes := []keymap.Keycode{42, 54, 29, 97, 56, 100, 125, 126}
	tr := New(nil)

	for bits := 0; bits < 32; bits++ {
		prior := Modifiers{
			Shift: bits&1 != 0,
			Ctrl:  bits&2 != 0,
			Alt:   bits&4 != 0,
			AltGr: bits&8 != 0,
			Meta:  bits&16 != 0,
		}
		for _, code := range codes {
			mods := prior
			run(t, tr, &mods, key(code, Press), key(code, Release))

			want := prior
			*want.flag(code) = false
			assert.Equal(t, want, mods, "state %05b keycode %d", bits, code)

			// only the released key's own flag may differ from the prior state
			if !*prior.flag(code) {
				assert.Equal(t, prior, mods, "state %05b keycode %d", bits, code)
			}
		}
	}
}

func TestNonModifiersLeaveStateAlone(t *testing.T) {
	tr := New(nil)
	for code := keymap.Keycode(0); code < keymap.NumCodes; code++ {
		if IsModifier(code) {
			continue
		}
		mods := Modifiers{Shift: true, Meta: true}
		for _, v := range []Value{Press, Repeat, Release} {
			tr.Translate(key(code, v), &mods)
		}
		assert.Equal(t, Modifiers{Shift: true, Meta: true}, mods, "keycode %d", code)
	}
}

func TestLessThanIsEscaped(t *testing.T) {
	b := keymap.NewBuilder()
	require.NoError(t, b.Set(keymap.Entry{Code: 30, Base: '<', Shift: 'A'}))
	require.NoError(t, b.Set(keymap.Entry{Code: 31, Base: 's', Shift: '<'}))
	require.NoError(t, b.Set(keymap.Entry{Code: 32, Base: 'd', AltGr: '<'}))
	tr := New(b.Build())

	var mods Modifiers
	assert.Equal(t, "<<", run(t, tr, &mods, key(30, Press)))
	assert.Equal(t, "<<", run(t, tr, &Modifiers{Shift: true}, key(31, Press)))
	assert.Equal(t, "<<", run(t, tr, &Modifiers{AltGr: true}, key(32, Press)))

	// default table: 102nd key and shifted comma
	assert.Equal(t, "<<", run(t, New(nil), &Modifiers{}, key(86, Press)))
	assert.Equal(t, "<<", run(t, New(nil), &Modifiers{Shift: true}, key(51, Press)))
	assert.Equal(t, "<CTRL>+<<", run(t, New(nil), &Modifiers{Ctrl: true}, key(86, Press)))
}

func TestAltGrLayer(t *testing.T) {
	b := keymap.NewBuilder()
	require.NoError(t, b.Set(keymap.Entry{Code: 18, Base: 'e', Shift: 'E', AltGr: '€'}))
	require.NoError(t, b.Set(keymap.Entry{Code: 30, Base: 'a', Shift: 'A'}))
	tr := New(b.Build())

	var mods Modifiers
	assert.Equal(t, "€a", run(t, tr, &mods, key(100, Press), key(18, Press), key(30, Press)))
	assert.Equal(t, "A", run(t, tr, &mods, key(42, Press), key(30, Press)))
	assert.Equal(t, "E", run(t, tr, &mods, key(100, Release), key(18, Press)))
}

func TestEmptyResolutionProducesNothing(t *testing.T) {
	tr := New(keymap.NewBuilder().Build())
	assert.Equal(t, "", run(t, tr, &Modifiers{Ctrl: true}, key(30, Press)))
}

func TestModifierFunctionRepeatSuppressed(t *testing.T) {
	tr := New(nil)
	for code := keymap.Keycode(0); code < keymap.NumCodes; code++ {
		if keymap.Classify(code) != keymap.ModifierFunction {
			continue
		}
		var mods Modifiers
		label, _ := tr.Table().Label(code)
		assert.Equal(t, label, run(t, tr, &mods, key(code, Press)))
		assert.Equal(t, "", run(t, tr, &mods, key(code, Repeat)))
		assert.Equal(t, "", run(t, tr, &mods, key(code, Release)))
	}
}

func TestFunctionKeys(t *testing.T) {
	tr := New(nil)
	var mods Modifiers

	assert.Equal(t, "<Enter><Enter>", run(t, tr, &mods, key(28, Press), key(28, Repeat)))
	assert.Equal(t, "<F1>", run(t, tr, &mods, key(59, Press), key(59, Release)))
	assert.Equal(t, "<KP7>", run(t, tr, &mods, key(71, Press)))
	assert.Equal(t, " ", run(t, tr, &mods, key(57, Press)))
	assert.Equal(t, "<CTRL,ALT>+<Del>", run(t, tr, &mods, key(29, Press), key(56, Press), key(111, Press)))
}

func TestDevicesAreIndependent(t *testing.T) {
	tr := New(nil)
	var first, second Modifiers

	run(t, tr, &first, key(42, Press))
	assert.Equal(t, "a", run(t, tr, &second, key(30, Press)))
	assert.Equal(t, "A", run(t, tr, &first, key(30, Press)))
}

func TestOutputAll(t *testing.T) {
	out := Output{prefix: "<CTRL>+", text: "a"}
	assert.Equal(t, []string{"<CTRL>+", "a"}, slices.Collect(out.All()))
	assert.Equal(t, []string{"<CTRL>+", "a"}, slices.Collect(out.All()))
	assert.Empty(t, slices.Collect(Output{}.All()))
	assert.True(t, Output{}.Empty())
}

func TestAppendToTruncatesAtRuneBoundary(t *testing.T) {
	out := Output{prefix: "<ALT>+", text: "€"}

	buf, err := out.AppendTo(nil, 64)
	require.NoError(t, err)
	assert.Equal(t, "<ALT>+€", string(buf))

	buf, err = out.AppendTo(nil, 7)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, "<ALT>+", string(buf))

	buf, err = out.AppendTo([]byte("xx"), 5)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, "xx<AL", string(buf))

	buf, err = out.AppendTo([]byte("full"), 2)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, "full", string(buf))
}
