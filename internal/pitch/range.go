package pitch

import (
	"errors"
	"regexp"
	"strings"
)

var rangePattern = regexp.MustCompile(`^([A-G]#?[0-9])-([A-G]#?[0-9])$`)

// NoteRange is an inclusive span of pitches.
type NoteRange struct {
	Low  Pitch
	High Pitch
}

// ParseRange parses "<note><octave>-<note><octave>", e.g. "E2-E4" or "F#3-A#4".
//
// Only sharps are accepted and there is no surrounding whitespace. The order of the bounds is not checked here.
func ParseRange(s string) (NoteRange, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return NoteRange{}, parseErr(s, "expected a range like E2-E4")
	}

	low, err := ParseNote(m[1])
	if err != nil {
		return NoteRange{}, endpointErr(s, "low", err)
	}
	high, err := ParseNote(m[2])
	if err != nil {
		return NoteRange{}, endpointErr(s, "high", err)
	}
	return NoteRange{Low: low, High: high}, nil
}

// endpointErr rewraps a bound's error against the whole range, keeping its kind.
func endpointErr(input, bound string, err error) error {
	var rerr *RangeError
	if errors.As(err, &rerr) {
		return rangeErr(input, "%s note: %s", bound, rerr.Reason)
	}
	return parseErr(input, "%s note: %v", bound, err)
}

// ParseSpan accepts either a single note ("G3") or a range ("E2-A2").
// A single note becomes a range with equal bounds.
func ParseSpan(s string) (NoteRange, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "-") {
		return ParseRange(s)
	}
	p, err := ParseNote(s)
	if err != nil {
		return NoteRange{}, err
	}
	return NoteRange{Low: p, High: p}, nil
}

func (r NoteRange) String() string {
	return r.Low.String() + "-" + r.High.String()
}

// Contains reports whether p lies within the range.
func (r NoteRange) Contains(p Pitch) bool {
	return p >= r.Low && p <= r.High
}

// Covers reports whether o lies entirely within the range.
func (r NoteRange) Covers(o NoteRange) bool {
	return r.Contains(o.Low) && r.Contains(o.High)
}

// Span returns the number of semitones between the bounds.
func (r NoteRange) Span() int {
	return int(r.High - r.Low)
}
