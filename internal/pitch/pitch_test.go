package pitch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/fretmastery/internal/shared"
)

func TestParseNote(t *testing.T) {
	tt := []struct {
		in   string
		want Pitch
	}{
		{in: "C4", want: 60},
		{in: "A4", want: 69},
		{in: "E2", want: 40},
		{in: "F#3", want: 54},
		{in: "Gb3", want: 54},
		{in: "B#3", want: 60},
		{in: "Cb4", want: 59},
		{in: "C0", want: 12},
	}

	for _, tc := range tt {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseNote(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, in := range []string{"", "E", "X9", "H2", "E#", "Ex4", "e2", "E10", "C#44"} {
			_, err := ParseNote(in)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr, in)
			assert.ErrorIs(t, err, shared.ErrParse, in)
		}
	})

	t.Run("well-formed pitches beyond MIDI are out of range", func(t *testing.T) {
		for _, in := range []string{"B#9", "G#9", "A9", "B9"} {
			_, err := ParseNote(in)
			var rerr *RangeError
			assert.ErrorAs(t, err, &rerr, in)
			assert.False(t, errors.Is(err, shared.ErrParse), in)
		}
	})
}

func TestPitchNames(t *testing.T) {
	p := MustParseNote("A#2")

	assert.Equal(t, "A#2", p.String())
	assert.Equal(t, "Bb", p.Name(false))
	assert.Equal(t, "A#", p.Label(true, false))
	assert.Equal(t, "Bb2", p.Label(false, true))
	assert.Equal(t, 2, p.Octave())
	assert.Equal(t, 10, p.Class())

	assert.Equal(t, -1, Pitch(0).Octave())
	assert.Equal(t, "C-1", Pitch(0).String())
}

func TestFretboard(t *testing.T) {
	fb := Standard(0)

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, DefaultMaxFret, fb.MaxFret)
		assert.Equal(t, "E2 A2 D3 G3 B3 E4", fb.Tuning.String())
		assert.Equal(t, MustParseNote("E2"), fb.Lowest())
		assert.Equal(t, MustParseNote("E6"), fb.Highest())
	})

	t.Run("PitchAt", func(t *testing.T) {
		p, err := fb.PitchAt(0, 5)
		require.NoError(t, err)
		assert.Equal(t, "A2", p.String())

		p, err = fb.PitchAt(5, 12)
		require.NoError(t, err)
		assert.Equal(t, "E5", p.String())

		_, err = fb.PitchAt(6, 0)
		assert.ErrorIs(t, err, shared.ErrRange)

		_, err = fb.PitchAt(0, 25)
		assert.ErrorIs(t, err, shared.ErrRange)

		_, err = fb.PitchAt(0, -1)
		assert.ErrorIs(t, err, shared.ErrRange)
	})

	t.Run("PitchAt and PositionsOf are inverse", func(t *testing.T) {
		for str := range StringCount {
			for fret := 0; fret <= fb.MaxFret; fret++ {
				p, err := fb.PitchAt(str, fret)
				require.NoError(t, err)

				again, err := fb.PitchAt(str, fret)
				require.NoError(t, err)
				assert.Equal(t, p, again)

				assert.Contains(t, fb.PositionsOf(p), Position{StringIndex: str, Fret: fret, Pitch: p})
			}
		}
	})

	t.Run("PositionsOf", func(t *testing.T) {
		positions := fb.PositionsOf(MustParseNote("E4"))
		assert.Equal(t, []Position{
			{StringIndex: 0, Fret: 24, Pitch: 64},
			{StringIndex: 1, Fret: 19, Pitch: 64},
			{StringIndex: 2, Fret: 14, Pitch: 64},
			{StringIndex: 3, Fret: 9, Pitch: 64},
			{StringIndex: 4, Fret: 5, Pitch: 64},
			{StringIndex: 5, Fret: 0, Pitch: 64},
		}, positions)

		assert.Empty(t, fb.PositionsOf(MustParseNote("D2")))
		assert.Empty(t, fb.PositionsOf(MustParseNote("F6")))
	})

	t.Run("shorter neck", func(t *testing.T) {
		short := Standard(12)
		assert.Len(t, short.PositionsOf(MustParseNote("E4")), 3)
	})
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("E2-E4")
	require.NoError(t, err)
	assert.Equal(t, NoteRange{Low: 40, High: 64}, r)
	assert.Equal(t, "E2-E4", r.String())
	assert.Equal(t, 24, r.Span())

	r, err = ParseRange("F#3-A#4")
	require.NoError(t, err)
	assert.Equal(t, NoteRange{Low: 54, High: 70}, r)

	for _, in := range []string{"X9-E4", "E2", "E2-", "e2-e4", "Eb2-E4", "E2 - E4", " E2-E4", "E2-E4-G4", "E12-E4"} {
		_, err := ParseRange(in)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, in)
	}
}

func TestParseSpan(t *testing.T) {
	r, err := ParseSpan("G3")
	require.NoError(t, err)
	assert.Equal(t, NoteRange{Low: 55, High: 55}, r)

	r, err = ParseSpan("E2-A2")
	require.NoError(t, err)
	assert.Equal(t, NoteRange{Low: 40, High: 45}, r)

	_, err = ParseSpan("nope")
	assert.ErrorIs(t, err, shared.ErrParse)
}

func TestNoteRangeContains(t *testing.T) {
	r := NoteRange{Low: MustParseNote("E2"), High: MustParseNote("E4")}

	assert.True(t, r.Contains(MustParseNote("G3")))
	assert.True(t, r.Contains(r.Low))
	assert.True(t, r.Contains(r.High))
	assert.False(t, r.Contains(MustParseNote("F4")))

	assert.True(t, r.Covers(NoteRange{Low: MustParseNote("A2"), High: MustParseNote("D3")}))
	assert.False(t, r.Covers(NoteRange{Low: MustParseNote("A2"), High: MustParseNote("A4")}))
}

func TestResolveNoteRange(t *testing.T) {
	t.Run("E2-E4 spans exactly its bounds", func(t *testing.T) {
		positions, err := ResolveNoteRange("E2-E4")
		require.NoError(t, err)
		require.NotEmpty(t, positions)

		lo, hi := positions[0].Pitch, positions[0].Pitch
		for _, p := range positions {
			lo = min(lo, p.Pitch)
			hi = max(hi, p.Pitch)
		}
		assert.Equal(t, MustParseNote("E2"), lo)
		assert.Equal(t, MustParseNote("E4"), hi)
	})

	t.Run("ordered by pitch then string", func(t *testing.T) {
		positions, err := ResolveNoteRange("A2-B2")
		require.NoError(t, err)
		assert.Equal(t, []Position{
			{StringIndex: 0, Fret: 5, Pitch: 45},
			{StringIndex: 1, Fret: 0, Pitch: 45},
			{StringIndex: 0, Fret: 6, Pitch: 46},
			{StringIndex: 1, Fret: 1, Pitch: 46},
			{StringIndex: 0, Fret: 7, Pitch: 47},
			{StringIndex: 1, Fret: 2, Pitch: 47},
		}, positions)
	})

	t.Run("single note", func(t *testing.T) {
		positions, err := ResolveNoteRange("E2-E2")
		require.NoError(t, err)
		assert.Equal(t, []Position{{StringIndex: 0, Fret: 0, Pitch: 40}}, positions)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := ResolveNoteRange("E4-E2")
		var rerr *RangeError
		require.ErrorAs(t, err, &rerr)
		assert.True(t, errors.Is(err, shared.ErrRange))
	})

	t.Run("invalid note name", func(t *testing.T) {
		_, err := ResolveNoteRange("X9-E4")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.ErrorIs(t, err, shared.ErrParse)
	})

	t.Run("endpoint below the fretboard", func(t *testing.T) {
		_, err := ResolveNoteRange("C2-E4")
		assert.ErrorIs(t, err, shared.ErrRange)
	})

	t.Run("endpoint beyond MIDI", func(t *testing.T) {
		_, err := ResolveNoteRange("E2-G#9")
		var rerr *RangeError
		require.ErrorAs(t, err, &rerr)
		assert.ErrorIs(t, err, shared.ErrRange)
		assert.False(t, errors.Is(err, shared.ErrParse))
	})

	t.Run("endpoint above the configured neck", func(t *testing.T) {
		_, err := Standard(12).ResolveString("E2-G5")
		assert.ErrorIs(t, err, shared.ErrRange)
	})
}
