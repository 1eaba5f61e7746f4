package diagram

import (
	"strconv"
	"strings"

	"github.com/desertthunder/fretmastery/internal/pitch"
)

const cellWidth = 4

// RenderText draws the same window as [Generate] as monospace text, highest string first.
//
//	   0     1    2    3    4
//	e     ||----|----|----|-G--|
func RenderText(positions []pitch.Position, opts Options) (string, error) {
	opts = opts.withDefaults()

	win, err := resolveWindow(positions, opts)
	if err != nil {
		return "", err
	}

	marks := make(map[[2]int]string, len(positions))
	for _, p := range positions {
		if win.contains(p.Fret) {
			marks[[2]int{p.StringIndex, p.Fret}] = opts.label(p.Pitch)
		}
	}

	var b strings.Builder

	header := "  "
	if win.showsNut() {
		header += center("0", cellWidth, ' ') + "  "
	} else {
		header += " "
	}
	for cell := 1; cell <= win.count; cell++ {
		header += center(strconv.Itoa(win.start+cell), cellWidth, ' ') + " "
	}
	b.WriteString(strings.TrimRight(header, " "))
	b.WriteByte('\n')

	for str := pitch.StringCount - 1; str >= 0; str-- {
		b.WriteString(stringName(str))
		b.WriteByte(' ')

		if win.showsNut() {
			b.WriteString(center(marks[[2]int{str, 0}], cellWidth, ' '))
			b.WriteString("||")
		} else {
			b.WriteByte('|')
		}

		for cell := 1; cell <= win.count; cell++ {
			b.WriteString(center(marks[[2]int{str, win.start + cell}], cellWidth, '-'))
			b.WriteByte('|')
		}
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// stringName labels the high E string in lower case, as tab does.
func stringName(str int) string {
	name := pitch.StandardTuning[str].Name(true)
	if str == pitch.StringCount-1 {
		return strings.ToLower(name)
	}
	return name
}

func center(s string, width int, fill byte) string {
	if len(s) >= width {
		return s[:width]
	}
	pad := width - len(s)
	left := pad / 2
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), pad-left)
}
