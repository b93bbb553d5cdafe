package checkout

import (
	"testing"

	"github.com/tillpoint/tillpoint-backend/pkg/types"
)

func TestApplyKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		sel       types.Selection
		key       string
		wantText  string
		wantCaret int
	}{
		{
			name:      "digit replaces full selection",
			text:      "120",
			sel:       types.Selection{Start: 0, End: 3},
			key:       "5",
			wantText:  "5",
			wantCaret: 1,
		},
		{
			name:      "digit appends at collapsed caret",
			text:      "12",
			sel:       types.Caret(2),
			key:       "3",
			wantText:  "123",
			wantCaret: 3,
		},
		{
			name:      "digit inserts mid-text",
			text:      "19",
			sel:       types.Caret(1),
			key:       "5",
			wantText:  "159",
			wantCaret: 2,
		},
		{
			name:      "decimal point splices like a digit",
			text:      "15",
			sel:       types.Caret(1),
			key:       ".",
			wantText:  "1.5",
			wantCaret: 2,
		},
		{
			name:      "backspace noop at position zero",
			text:      "7",
			sel:       types.Caret(0),
			key:       KeyBackspace,
			wantText:  "7",
			wantCaret: 0,
		},
		{
			name:      "backspace deletes previous rune",
			text:      "120",
			sel:       types.Caret(3),
			key:       KeyBackspace,
			wantText:  "12",
			wantCaret: 2,
		},
		{
			name:      "backspace deletes selection",
			text:      "1234",
			sel:       types.Selection{Start: 1, End: 3},
			key:       KeyBackspace,
			wantText:  "14",
			wantCaret: 1,
		},
		{
			name:      "clear empties the field",
			text:      "450",
			sel:       types.Caret(2),
			key:       KeyClear,
			wantText:  "",
			wantCaret: 0,
		},
		{
			name:      "out of range selection is clamped",
			text:      "12",
			sel:       types.Selection{Start: 5, End: 9},
			key:       "3",
			wantText:  "123",
			wantCaret: 3,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			text, caret, ok := ApplyKey(tc.text, tc.sel, tc.key)
			if !ok {
				t.Fatalf("key %q not recognized", tc.key)
			}
			if text != tc.wantText {
				t.Fatalf("text = %q, want %q", text, tc.wantText)
			}
			if !caret.Collapsed() || caret.Start != tc.wantCaret {
				t.Fatalf("caret = %+v, want collapsed at %d", caret, tc.wantCaret)
			}
		})
	}
}

func TestApplyKeyUnknownKey(t *testing.T) {
	t.Parallel()

	text, sel, ok := ApplyKey("12", types.Caret(1), "x")
	if ok {
		t.Fatal("unknown key reported as handled")
	}
	if text != "12" || sel.Start != 1 {
		t.Fatalf("unknown key mutated state: %q %+v", text, sel)
	}
}
