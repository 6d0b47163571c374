// Package vocab holds the chord vocabulary and the chord↔index mapping
// shared between training and generation. The mapping is derived from the
// lexicographically sorted vocabulary, so the same vocabulary file always
// produces the same encoding; a trained model is only valid together with
// the vocabulary it was trained on.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	// ErrUnknownChord is returned when a chord symbol is not part of the
	// vocabulary. Upstream cleaning derives the vocabulary from the same
	// corpus, so hitting this means the two inputs are out of sync.
	ErrUnknownChord = errors.New("chord not in vocabulary")

	// ErrIndexRange is returned when decoding an index outside [0, Size).
	ErrIndexRange = errors.New("index outside vocabulary range")
)

// Vocabulary is the deduplicated, sorted set of chord symbols.
type Vocabulary []string

// New builds a Vocabulary from raw symbols, deduplicating and sorting.
func New(symbols []string) Vocabulary {
	seen := make(map[string]struct{}, len(symbols))
	out := make(Vocabulary, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Load reads a JSON list of chord symbols, as written by the scraper stage.
func Load(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var symbols []string
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return New(symbols), nil
}

// Mapping returns the bijection between this vocabulary's symbols and the
// integers [0, Size), assigned by sorted position.
func (v Vocabulary) Mapping() *Mapping {
	m := &Mapping{
		toIndex: make(map[string]int, len(v)),
		toChord: make([]string, len(v)),
	}
	for i, chord := range v {
		m.toIndex[chord] = i
		m.toChord[i] = chord
	}
	return m
}

// Mapping is a bijection chord symbol ↔ integer index. It is immutable
// after construction.
type Mapping struct {
	toIndex map[string]int
	toChord []string
}

// Size returns the number of chords in the mapping.
func (m *Mapping) Size() int { return len(m.toChord) }

// Index returns the integer index of a chord symbol.
func (m *Mapping) Index(chord string) (int, error) {
	i, ok := m.toIndex[chord]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownChord, chord)
	}
	return i, nil
}

// Chord returns the chord symbol for an integer index.
func (m *Mapping) Chord(i int) (string, error) {
	if i < 0 || i >= len(m.toChord) {
		return "", fmt.Errorf("%w: %d (size %d)", ErrIndexRange, i, len(m.toChord))
	}
	return m.toChord[i], nil
}

// Encode maps a chord sequence to its integer encoding.
func (m *Mapping) Encode(chords []string) ([]int, error) {
	out := make([]int, len(chords))
	for i, c := range chords {
		idx, err := m.Index(c)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode maps an integer encoding back to chord symbols.
func (m *Mapping) Decode(indices []int) ([]string, error) {
	out := make([]string, len(indices))
	for i, idx := range indices {
		c, err := m.Chord(idx)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
