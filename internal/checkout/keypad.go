package checkout

import (
	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

// Virtual keypad keys beyond the digit/decimal set.
const (
	KeyBackspace = "←"
	KeyClear     = "C"
)

// ApplyKey behaves like physical keyboard input scoped to one text field,
// honoring the recorded caret/selection range:
//
//   - digit (or decimal point): splice at sel.Start replacing [Start,End),
//     caret lands after the inserted rune
//   - backspace: delete the selection, or the rune before a collapsed caret;
//     no-op when the caret sits at position 0
//   - clear: empty the field, caret to 0
//
// Returns the new text, the caret to restore, and whether the key was
// recognized. Selections are clamped to the text bounds first.
func ApplyKey(text string, sel types.Selection, key string) (string, types.Selection, bool) {
	runes := []rune(text)
	sel = sel.Clamp(len(runes))

	switch {
	case isSpliceKey(key):
		out := make([]rune, 0, len(runes)+1)
		out = append(out, runes[:sel.Start]...)
		out = append(out, []rune(key)...)
		out = append(out, runes[sel.End:]...)
		return string(out), types.Caret(sel.Start + 1), true

	case key == KeyBackspace:
		if !sel.Collapsed() {
			out := append(append([]rune{}, runes[:sel.Start]...), runes[sel.End:]...)
			return string(out), types.Caret(sel.Start), true
		}
		if sel.Start == 0 {
			return text, sel, true
		}
		out := append(append([]rune{}, runes[:sel.Start-1]...), runes[sel.Start:]...)
		return string(out), types.Caret(sel.Start - 1), true

	case key == KeyClear:
		return "", types.Caret(0), true
	}

	return text, sel, false
}

func isSpliceKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return (c >= '0' && c <= '9') || c == '.'
}
