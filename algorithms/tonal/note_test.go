package tonal

import (
	"math"
	"testing"
)

func TestNoteFromFrequency(t *testing.T) {
	tests := []struct {
		freq   float64
		name   string
		octave int
	}{
		{440, "A", 4},
		{220, "A", 3},
		{880, "A", 5},
		{261.63, "C", 4},
		{277.18, "C#", 4},
		{246.94, "B", 3},
		{82.41, "E", 2},
		{8.18, "C", -1},
		{7.7, "B", -2},
	}

	for _, tt := range tests {
		got := NoteFromFrequency(tt.freq)
		if got.Name != tt.name || got.Octave != tt.octave {
			t.Errorf("NoteFromFrequency(%.2f) = %s%d, want %s%d", tt.freq, got.Name, got.Octave, tt.name, tt.octave)
		}
	}
}

func TestNoteRoundsToNearestSemitone(t *testing.T) {
	// 40 cents sharp of A4 still maps to A4
	sharp := 440 * math.Pow(2, 0.4/12)
	if got := NoteFromFrequency(sharp).String(); got != "A4" {
		t.Errorf("40 cents sharp = %s, want A4", got)
	}
	// 60 cents sharp rounds up
	sharper := 440 * math.Pow(2, 0.6/12)
	if got := NoteFromFrequency(sharper).String(); got != "A#4" {
		t.Errorf("60 cents sharp = %s, want A#4", got)
	}
}

func TestNoteFrequency(t *testing.T) {
	if got := NoteFromMIDI(69).Frequency(); got != 440 {
		t.Errorf("A4 frequency = %f, want 440", got)
	}
	if got := NoteFromMIDI(60).Frequency(); math.Abs(got-261.6256) > 1e-3 {
		t.Errorf("C4 frequency = %f, want 261.6256", got)
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		in   string
		midi int
	}{
		{"A4", 69},
		{"c4", 60},
		{"C#3", 49},
		{"G-1", 7},
		{"B-2", -1},
	}

	for _, tt := range tests {
		got, err := ParseNote(tt.in)
		if err != nil {
			t.Errorf("ParseNote(%q): %v", tt.in, err)
			continue
		}
		if got.MIDI != tt.midi {
			t.Errorf("ParseNote(%q).MIDI = %d, want %d", tt.in, got.MIDI, tt.midi)
		}
		if back := NoteFromFrequency(got.Frequency()); back != got {
			t.Errorf("round trip of %q = %v, want %v", tt.in, back, got)
		}
	}

	for _, bad := range []string{"", "H2", "A", "A#x", "E#4"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("ParseNote(%q) should fail", bad)
		}
	}
}
