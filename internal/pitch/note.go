package pitch

import (
	"strconv"
)

// Pitch is an absolute semitone index in MIDI numbering.
type Pitch int

const (
	MinPitch Pitch = 0
	MaxPitch Pitch = 127
)

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

	// naturals holds the pitch class of each natural note letter.
	naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
)

// Class returns the pitch class, 0 (C) through 11 (B).
func (p Pitch) Class() int {
	c := int(p) % 12
	if c < 0 {
		c += 12
	}
	return c
}

// Octave returns the scientific octave number, so middle C (60) is in octave 4.
func (p Pitch) Octave() int {
	return (int(p)-p.Class())/12 - 1
}

// Name returns the note letter with its accidental, without the octave.
func (p Pitch) Name(preferSharps bool) string {
	if preferSharps {
		return sharpNames[p.Class()]
	}
	return flatNames[p.Class()]
}

// Label returns the name, followed by the octave when withOctave is set.
func (p Pitch) Label(preferSharps, withOctave bool) string {
	if !withOctave {
		return p.Name(preferSharps)
	}
	return p.Name(preferSharps) + strconv.Itoa(p.Octave())
}

// String spells the pitch with sharps and its octave, e.g. "F#3".
func (p Pitch) String() string {
	return p.Label(true, true)
}

// Transpose returns p shifted by n semitones.
func (p Pitch) Transpose(n int) Pitch {
	return p + Pitch(n)
}

// ParseNote parses a letter A-G, an optional "#" or "b", and a single octave digit.
//
// Accidentals carry across octave boundaries: "B#3" is C4 and "Cb4" is B3.
// Malformed input is a *ParseError; a well-formed note beyond MIDI 0..127 is a *RangeError.
func ParseNote(s string) (Pitch, error) {
	if len(s) < 2 || len(s) > 3 {
		return 0, parseErr(s, "note must be a letter, an optional accidental and an octave digit")
	}

	class, ok := naturals[s[0]]
	if !ok {
		return 0, parseErr(s, "invalid note name %q", s[0])
	}

	if len(s) == 3 {
		switch s[1] {
		case '#':
			class++
		case 'b':
			class--
		default:
			return 0, parseErr(s, "invalid accidental %q", s[1])
		}
	}

	last := s[len(s)-1]
	if last < '0' || last > '9' {
		return 0, parseErr(s, "invalid octave %q", last)
	}
	octave := int(last - '0')

	p := Pitch((octave+1)*12 + class)
	if p < MinPitch || p > MaxPitch {
		return 0, rangeErr(s, "pitch %d is outside %d..%d", p, MinPitch, MaxPitch)
	}
	return p, nil
}

// MustParseNote is like [ParseNote] but panics on error. Intended for constants and tests.
func MustParseNote(s string) Pitch {
	p, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return p
}
