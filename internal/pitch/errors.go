package pitch

import (
	"fmt"

	"github.com/desertthunder/fretmastery/internal/shared"
)

// ParseError reports malformed note or note-range input.
//
// It matches [shared.ErrParse] with errors.Is.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return shared.ErrParse }

// RangeError reports input that parsed but falls outside the fretboard, or a range whose bounds are inverted.
//
// It matches [shared.ErrRange] with errors.Is.
type RangeError struct {
	Input  string
	Reason string
}

func (e *RangeError) Error() string {
	if e.Input == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Input, e.Reason)
}

func (e *RangeError) Unwrap() error { return shared.ErrRange }

func parseErr(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

func rangeErr(input, format string, args ...any) *RangeError {
	return &RangeError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
