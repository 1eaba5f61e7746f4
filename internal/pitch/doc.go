// Package pitch maps guitar fretboard positions to musical pitches and back.
//
// Pitches are absolute semitone indices using MIDI numbering (C-1 = 0, E2 = 40, A4 = 69), so every comparison and
// distance is integer arithmetic. A [Fretboard] pairs a six-string [Tuning] with a maximum fret and answers the two
// questions the rest of the application asks: which pitch a (string, fret) pair sounds, and where a pitch (or every
// pitch of a [NoteRange]) can be played.
package pitch
