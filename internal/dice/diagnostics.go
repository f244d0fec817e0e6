package dice

import (
	"slices"
	"strconv"
	"strings"

	"modernc.org/mathutil"
)

// Diagnostics describes why an expression failed to parse: the furthest
// position the parser reached and every alternative it would have accepted
// there.
type Diagnostics struct {
	Source  string
	Pos     int
	Message string

	expected []string
}

func newDiagnostics(src string, pos int) Diagnostics {
	return Diagnostics{Source: src, Pos: pos}
}

// AddValue records one more acceptable alternative at Pos.
func (d *Diagnostics) AddValue(label string) {
	if slices.Contains(d.expected, label) {
		return
	}
	d.expected = append(d.expected, label)
}

// SetMessage attaches a human explanation, replacing any previous one.
func (d *Diagnostics) SetMessage(text string) {
	d.Message = text
}

// SetPos stamps the failure position.
func (d *Diagnostics) SetPos(pos int) {
	d.Pos = pos
}

// Expected returns the accepted alternatives in sorted order.
func (d *Diagnostics) Expected() []string {
	out := slices.Clone(d.expected)
	slices.Sort(out)
	return out
}

// Merge combines two diagnostics. The one taken further into the input wins
// outright; at the same position the expected sets are unioned and the
// receiver's message is kept unless it is empty.
func (d Diagnostics) Merge(other Diagnostics) Diagnostics {
	furthest := mathutil.Max(d.Pos, other.Pos)
	switch {
	case d.Pos != furthest:
		return other.clone()
	case other.Pos != furthest:
		return d.clone()
	}

	merged := d.clone()
	for _, label := range other.expected {
		merged.AddValue(label)
	}
	if merged.Message == "" {
		merged.Message = other.Message
	}
	if merged.Source == "" {
		merged.Source = other.Source
	}
	return merged
}

func (d Diagnostics) clone() Diagnostics {
	d.expected = slices.Clone(d.expected)
	return d
}

// Error renders the diagnostic on a single line.
func (d *Diagnostics) Error() string {
	var b strings.Builder
	b.WriteString("at position ")
	b.WriteString(strconv.Itoa(d.Pos))
	b.WriteString(", expected one of: ")
	b.WriteString(strings.Join(d.Expected(), ", "))
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// Snippet renders the source with a caret under the failing character.
func (d *Diagnostics) Snippet() string {
	return Caret(d.Source, d.Pos)
}

// Caret renders source on one line with a caret under the character at pos.
// Positions past the end point just after the last character.
func Caret(source string, pos int) string {
	src := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, source)
	col := min(max(pos, 0), len([]rune(src)))
	return src + "\n" + strings.Repeat(" ", col) + "^"
}
