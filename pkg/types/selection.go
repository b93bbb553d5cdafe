package types

// Selection is a caret/selection range over a text field, measured in runes.
// Start == End means a collapsed caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Collapsed reports whether the selection is just a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Clamp bounds the selection to [0, length] and orders Start <= End.
func (s Selection) Clamp(length int) Selection {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > length {
			return length
		}
		return v
	}
	out := Selection{Start: clamp(s.Start), End: clamp(s.End)}
	if out.Start > out.End {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

// Caret returns a collapsed selection at the given position.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}
