package pitch

import "fmt"

// StringCount is the number of strings on the modelled guitar.
const StringCount = 6

// DefaultMaxFret is the highest fret used when none is configured.
const DefaultMaxFret = 24

// Tuning lists the open-string pitches from the lowest string (index 0) to the highest.
type Tuning [StringCount]Pitch

// StandardTuning is E2 A2 D3 G3 B3 E4.
var StandardTuning = Tuning{40, 45, 50, 55, 59, 64}

// String renders the tuning as space separated note names, low string first.
func (t Tuning) String() string {
	s := ""
	for i, p := range t {
		if i > 0 {
			s += " "
		}
		s += p.String()
	}
	return s
}

// Position is a playable (string, fret) pair and the pitch it sounds.
type Position struct {
	StringIndex int   `json:"string"`
	Fret        int   `json:"fret"`
	Pitch       Pitch `json:"pitch"`
}

// Note returns the sharp-spelled note with octave, e.g. "G3".
func (p Position) Note() string {
	return p.Pitch.String()
}

// Fretboard is a tuning plus the highest reachable fret.
type Fretboard struct {
	Tuning  Tuning
	MaxFret int
}

// Standard returns a standard-tuned fretboard. maxFret <= 0 selects [DefaultMaxFret].
func Standard(maxFret int) Fretboard {
	if maxFret <= 0 {
		maxFret = DefaultMaxFret
	}
	return Fretboard{Tuning: StandardTuning, MaxFret: maxFret}
}

// PitchAt returns the pitch sounded at fret on the given string.
func (f Fretboard) PitchAt(str, fret int) (Pitch, error) {
	if str < 0 || str >= StringCount {
		return 0, rangeErr(fmt.Sprintf("string %d", str), "string must be within 0..%d", StringCount-1)
	}
	if fret < 0 || fret > f.MaxFret {
		return 0, rangeErr(fmt.Sprintf("fret %d", fret), "fret must be within 0..%d", f.MaxFret)
	}
	return f.Tuning[str].Transpose(fret), nil
}

// PositionsOf returns every (string, fret) pair that sounds p, low string first.
// The result is empty when p is out of reach.
func (f Fretboard) PositionsOf(p Pitch) []Position {
	var positions []Position
	for str, open := range f.Tuning {
		fret := int(p - open)
		if fret < 0 || fret > f.MaxFret {
			continue
		}
		positions = append(positions, Position{StringIndex: str, Fret: fret, Pitch: p})
	}
	return positions
}

// Lowest returns the lowest playable pitch.
func (f Fretboard) Lowest() Pitch {
	low := f.Tuning[0]
	for _, p := range f.Tuning[1:] {
		low = min(low, p)
	}
	return low
}

// Highest returns the highest playable pitch.
func (f Fretboard) Highest() Pitch {
	high := f.Tuning[0]
	for _, p := range f.Tuning[1:] {
		high = max(high, p)
	}
	return high.Transpose(f.MaxFret)
}

// Resolve returns every position whose pitch lies within r, ordered by pitch and then by string.
//
// It fails with a [*RangeError] when the bounds are inverted or either endpoint cannot be played.
func (f Fretboard) Resolve(r NoteRange) ([]Position, error) {
	if r.Low > r.High {
		return nil, rangeErr(r.String(), "low note %s is above high note %s", r.Low, r.High)
	}
	if len(f.PositionsOf(r.Low)) == 0 {
		return nil, rangeErr(r.String(), "%s is outside the fretboard (%s..%s)", r.Low, f.Lowest(), f.Highest())
	}
	if len(f.PositionsOf(r.High)) == 0 {
		return nil, rangeErr(r.String(), "%s is outside the fretboard (%s..%s)", r.High, f.Lowest(), f.Highest())
	}

	var positions []Position
	for p := r.Low; p <= r.High; p++ {
		positions = append(positions, f.PositionsOf(p)...)
	}
	return positions, nil
}

// ResolveString parses s with [ParseRange] and resolves it on f.
func (f Fretboard) ResolveString(s string) ([]Position, error) {
	r, err := ParseRange(s)
	if err != nil {
		return nil, err
	}
	return f.Resolve(r)
}

// ResolveNoteRange resolves s on a standard-tuned fretboard with [DefaultMaxFret] frets.
func ResolveNoteRange(s string) ([]Position, error) {
	return Standard(DefaultMaxFret).ResolveString(s)
}
