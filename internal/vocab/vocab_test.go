package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNew_SortsAndDedups(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want Vocabulary
	}{
		{
			name: "already sorted",
			in:   []string{"A", "B", "C"},
			want: Vocabulary{"A", "B", "C"},
		},
		{
			name: "unsorted with duplicates",
			in:   []string{"G", "Am7", "C", "G", "Am7"},
			want: Vocabulary{"Am7", "C", "G"},
		},
		{
			name: "empty",
			in:   nil,
			want: Vocabulary{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := New(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("New(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMapping_Bijection(t *testing.T) {
	v := New([]string{"C", "A", "B"})
	m := v.Mapping()

	if m.Size() != 3 {
		t.Fatalf("expected size 3, got %d", m.Size())
	}

	// Sorted position assignment: A:0, B:1, C:2.
	for i, chord := range []string{"A", "B", "C"} {
		idx, err := m.Index(chord)
		if err != nil {
			t.Fatalf("Index(%q): %v", chord, err)
		}
		if idx != i {
			t.Fatalf("Index(%q) = %d, want %d", chord, idx, i)
		}
	}

	// Decode then re-encode every index must be the identity.
	for i := 0; i < m.Size(); i++ {
		chord, err := m.Chord(i)
		if err != nil {
			t.Fatalf("Chord(%d): %v", i, err)
		}
		back, err := m.Index(chord)
		if err != nil {
			t.Fatalf("Index(%q): %v", chord, err)
		}
		if back != i {
			t.Fatalf("round trip of index %d gave %d", i, back)
		}
	}
}

func TestMapping_EncodeDecodeRoundTrip(t *testing.T) {
	m := New([]string{"A", "B", "C", "Am7", "G"}).Mapping()
	song := []string{"A", "G", "Am7", "C", "A", "B"}

	encoded, err := m.Encode(song)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := m.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, song) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, song)
	}
}

func TestMapping_Errors(t *testing.T) {
	m := New([]string{"A", "B"}).Mapping()

	if _, err := m.Encode([]string{"A", "Zsus4"}); !errors.Is(err, ErrUnknownChord) {
		t.Fatalf("expected ErrUnknownChord, got %v", err)
	}
	if _, err := m.Chord(2); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange, got %v", err)
	}
	if _, err := m.Chord(-1); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("expected ErrIndexRange for negative index, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocabulary.json")
	if err := os.WriteFile(path, []byte(`["G","C","Am7","C"]`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Vocabulary{"Am7", "C", "G"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("Load = %v, want %v", v, want)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
