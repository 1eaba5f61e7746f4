// Package diagram draws fretboard diagrams with highlighted positions, as SVG documents or plain text.
//
// Output depends only on the positions and [Options] passed in, so identical calls produce byte-identical results.
package diagram

import (
	"github.com/desertthunder/fretmastery/internal/pitch"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 200

	// minFrets is the narrowest window picked automatically.
	minFrets = 4
	// emptyFrets is the window drawn when there is nothing to highlight.
	emptyFrets = 12
)

// Options controls layout and labelling.
//
// A zero FretCount picks the window from the positions: it starts at the nut when the lowest fret is 0 or 1 and
// covers at least four frets. StartFret only applies together with a positive FretCount.
type Options struct {
	Width      int
	Height     int
	StartFret  int
	FretCount  int
	MaxFret    int
	ShowOctave bool
	Flats      bool
	Title      string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.MaxFret <= 0 {
		o.MaxFret = pitch.DefaultMaxFret
	}
	return o
}

func (o Options) label(p pitch.Pitch) string {
	return p.Label(!o.Flats, o.ShowOctave)
}

// window is the visible slice of the neck: fret cells start+1 through start+count, plus the open-string column
// when start is 0.
type window struct {
	start int
	count int
}

func (w window) showsNut() bool { return w.start == 0 }

func (w window) contains(fret int) bool {
	if fret == 0 {
		return w.showsNut()
	}
	return fret > w.start && fret <= w.start+w.count
}

func resolveWindow(positions []pitch.Position, o Options) (window, error) {
	if o.StartFret < 0 || o.FretCount < 0 {
		return window{}, &pitch.RangeError{Reason: "diagram window cannot be negative"}
	}

	for _, p := range positions {
		if p.StringIndex < 0 || p.StringIndex >= pitch.StringCount {
			return window{}, &pitch.RangeError{Input: p.Note(), Reason: "position is not on a guitar string"}
		}
		if p.Fret < 0 || p.Fret > o.MaxFret {
			return window{}, &pitch.RangeError{Input: p.Note(), Reason: "position is beyond the fretboard"}
		}
	}

	if o.FretCount > 0 {
		if o.StartFret+o.FretCount > o.MaxFret {
			return window{}, &pitch.RangeError{Reason: "diagram window extends past the last fret"}
		}
		return window{start: o.StartFret, count: o.FretCount}, nil
	}

	if len(positions) == 0 {
		return window{start: 0, count: min(emptyFrets, o.MaxFret)}, nil
	}

	lo, hi := positions[0].Fret, positions[0].Fret
	for _, p := range positions[1:] {
		lo = min(lo, p.Fret)
		hi = max(hi, p.Fret)
	}

	w := window{start: max(lo-1, 0)}
	if lo <= 1 {
		w.start = 0
	}
	w.count = max(hi-w.start, minFrets)
	if w.start+w.count > o.MaxFret {
		w.start = max(o.MaxFret-w.count, 0)
		w.count = min(w.count, o.MaxFret)
	}
	return w, nil
}
