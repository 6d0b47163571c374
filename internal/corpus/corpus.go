// Package corpus loads the scraped song collection and enforces the
// invariants the scraper stage promises: every song is a non-empty chord
// sequence with no chord repeated back to back.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrAdjacentRepeat means a song contains the same chord twice in a
// row. The cleaning stage removes immediate repeats, so this is a bug
// in the upstream pipeline and aborts corpus construction.
var ErrAdjacentRepeat = errors.New("adjacent repeated chord")

// Song is one scraped chord progression.
type Song struct {
	ID     string
	Chords []string
}

// Validate checks the no-adjacent-repeat invariant established by the
// cleaning stage. A violation must abort corpus construction, never be
// repaired here. Length is not validated: songs too short to train on,
// the empty song included, are the windowing step's to count and skip.
func Validate(s Song) error {
	for i := 1; i < len(s.Chords); i++ {
		if s.Chords[i] == s.Chords[i-1] {
			return fmt.Errorf("song %s at position %d (%q): %w",
				s.ID, i, s.Chords[i], ErrAdjacentRepeat)
		}
	}
	return nil
}

// LoadJSON reads a songs file as written by the scraper: a JSON object
// mapping song identifier to a space-separated chord string. Songs are
// returned sorted by identifier so corpus order is deterministic.
func LoadJSON(path string) ([]Song, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read songs: %w", err)
	}
	var byID map[string]string
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, fmt.Errorf("parse songs %s: %w", path, err)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	songs := make([]Song, 0, len(byID))
	for _, id := range ids {
		songs = append(songs, Song{ID: id, Chords: strings.Fields(byID[id])})
	}
	return songs, nil
}
