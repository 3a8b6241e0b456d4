package tonal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

const (
	// ReferenceA4 is the concert pitch of A4 in Hz
	ReferenceA4 = 440.0
	// MIDIA4 is the MIDI note number of A4
	MIDIA4 = 69
)

// NoteNames is the chromatic scale starting at C
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is an equal-tempered chromatic note
type Note struct {
	Name   string `json:"name"`
	Octave int    `json:"octave"`
	MIDI   int    `json:"midi"`
}

// String renders the display form, e.g. "A4" or "C#-1"
func (n Note) String() string {
	return n.Name + strconv.Itoa(n.Octave)
}

// Frequency returns the equal-tempered frequency of the note in Hz
func (n Note) Frequency() float64 {
	return ReferenceA4 * math.Pow(2, float64(n.MIDI-MIDIA4)/12.0)
}

// NoteFromMIDI builds a note from its MIDI number. Negative numbers are
// valid and land in octave -2 and below.
func NoteFromMIDI(midi int) Note {
	return Note{
		Name:   NoteNames[common.FloorMod(midi, 12)],
		Octave: common.FloorDiv(midi, 12) - 1,
		MIDI:   midi,
	}
}

// NoteFromFrequency maps a positive frequency to the nearest note.
// The result is undefined for frequency <= 0.
func NoteFromFrequency(frequency float64) Note {
	semitones := 12 * math.Log2(frequency/ReferenceA4)
	return NoteFromMIDI(int(math.Round(semitones)) + MIDIA4)
}

// ParseNote parses the String form of a note, e.g. "A4", "c#3", "G-1"
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Note{}, fmt.Errorf("empty note")
	}

	nameLen := 1
	if len(s) > 1 && s[1] == '#' {
		nameLen = 2
	}
	name := strings.ToUpper(s[:nameLen])

	pitchClass := -1
	for i, n := range NoteNames {
		if n == name {
			pitchClass = i
			break
		}
	}
	if pitchClass < 0 {
		return Note{}, fmt.Errorf("unknown note name in %q", s)
	}

	octave, err := strconv.Atoi(s[nameLen:])
	if err != nil {
		return Note{}, fmt.Errorf("invalid octave in %q: %w", s, err)
	}

	return NoteFromMIDI((octave+1)*12 + pitchClass), nil
}
