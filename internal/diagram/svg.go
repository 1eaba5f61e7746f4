package diagram

import (
	"bytes"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/desertthunder/fretmastery/internal/pitch"
)

const (
	marginLeft   = 40
	marginRight  = 20
	marginTop    = 20
	marginBottom = 30
	titleHeight  = 20
)

const (
	stringStyle = "stroke:#444;stroke-width:1"
	fretStyle   = "stroke:#888;stroke-width:2"
	nutStyle    = "fill:#222"
	markerStyle = "fill:#1f6feb;stroke:#0b3d91;stroke-width:1"
	labelStyle  = "fill:#fff;font-family:sans-serif;font-size:10px;text-anchor:middle"
	numberStyle = "fill:#555;font-family:sans-serif;font-size:10px;text-anchor:middle"
	titleStyle  = "fill:#222;font-family:sans-serif;font-size:13px;text-anchor:middle"
)

// Document is a rendered SVG diagram.
type Document struct {
	SVG    string
	Length int
}

// Bytes returns the document as a byte slice for writing to disk or a response.
func (d *Document) Bytes() []byte {
	return []byte(d.SVG)
}

// layout holds the integer geometry of one diagram.
type layout struct {
	win       window
	left, top int
	gridW     int
	gridH     int
	fretGap   int
	stringGap int
	radius    int
}

func newLayout(w window, o Options) layout {
	l := layout{win: w, left: marginLeft, top: marginTop}
	if o.Title != "" {
		l.top += titleHeight
	}

	l.stringGap = max((o.Height-l.top-marginBottom)/(pitch.StringCount-1), 1)
	l.fretGap = max((o.Width-marginLeft-marginRight)/w.count, 1)
	l.gridH = l.stringGap * (pitch.StringCount - 1)
	l.gridW = l.fretGap * w.count
	l.radius = min(max(min(l.stringGap, l.fretGap)*2/5, 4), 10)
	return l
}

// stringY places the highest string on top.
func (l layout) stringY(str int) int {
	return l.top + (pitch.StringCount-1-str)*l.stringGap
}

func (l layout) fretX(line int) int {
	return l.left + line*l.fretGap
}

// markerX centres a marker in its fret cell. Open strings sit left of the nut.
func (l layout) markerX(fret int) int {
	if fret == 0 {
		return l.left - marginLeft/2
	}
	return l.fretX(fret-l.win.start-1) + l.fretGap/2
}

// Generate renders positions onto a fretboard grid.
//
// Positions outside the visible window are skipped. An empty slice yields a bare grid. The returned error is
// always a [*pitch.RangeError].
func Generate(positions []pitch.Position, opts Options) (*Document, error) {
	opts = opts.withDefaults()

	win, err := resolveWindow(positions, opts)
	if err != nil {
		return nil, err
	}
	l := newLayout(win, opts)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(opts.Width, opts.Height, 0, 0, opts.Width, opts.Height)

	if opts.Title != "" {
		canvas.Title(opts.Title)
		canvas.Text(opts.Width/2, marginTop, opts.Title, titleStyle)
	}

	canvas.Gid("strings")
	for str := range pitch.StringCount {
		y := l.stringY(str)
		canvas.Line(l.left, y, l.left+l.gridW, y, stringStyle)
	}
	canvas.Gend()

	canvas.Gid("frets")
	for line := 0; line <= win.count; line++ {
		x := l.fretX(line)
		canvas.Line(x, l.top, x, l.top+l.gridH, fretStyle)
	}
	if win.showsNut() {
		canvas.Rect(l.left-3, l.top, 6, l.gridH, nutStyle)
	}
	canvas.Gend()

	canvas.Gid("fret-numbers")
	for cell := 1; cell <= win.count; cell++ {
		canvas.Text(l.markerX(win.start+cell), l.top+l.gridH+20, strconv.Itoa(win.start+cell), numberStyle)
	}
	canvas.Gend()

	canvas.Gid("markers")
	for _, p := range positions {
		if !win.contains(p.Fret) {
			continue
		}
		x, y := l.markerX(p.Fret), l.stringY(p.StringIndex)
		canvas.Circle(x, y, l.radius, markerStyle)
		canvas.Text(x, y+3, opts.label(p.Pitch), labelStyle)
	}
	canvas.Gend()

	canvas.End()

	return &Document{SVG: buf.String(), Length: buf.Len()}, nil
}

// GenerateRange resolves r on a standard fretboard sized by opts.MaxFret and renders it.
func GenerateRange(r string, opts Options) ([]pitch.Position, *Document, error) {
	opts = opts.withDefaults()

	positions, err := pitch.Standard(opts.MaxFret).ResolveString(r)
	if err != nil {
		return nil, nil, err
	}

	doc, err := Generate(positions, opts)
	if err != nil {
		return nil, nil, err
	}
	return positions, doc, nil
}
