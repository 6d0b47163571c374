// Package window turns variable-length chord progressions into the
// fixed-width examples the network trains on: every contiguous run of
// seqLength chords paired with the chord that follows it.
package window

import (
	"fmt"

	"github.com/giacomov/chords-ai/internal/corpus"
	"github.com/giacomov/chords-ai/internal/vocab"
)

// Example is one supervised training pair: a window of seqLength encoded
// chords and the encoded chord that immediately follows it in the song.
type Example struct {
	Input  []int `json:"input"`
	Target int   `json:"target"`
}

// Result is the windowed corpus plus the number of songs that were too
// short to contribute a single example.
type Result struct {
	Examples []Example
	Skipped  int
}

// Slide emits every window of an encoded song. A song of length L yields
// exactly L-seqLength examples when L >= seqLength+1, otherwise none.
// Windows overlap by design: every valid start offset is used, with no
// padding and no wraparound.
func Slide(encoded []int, seqLength int) []Example {
	if seqLength <= 0 {
		panic(fmt.Sprintf("window: seqLength must be positive, got %d", seqLength))
	}
	if len(encoded) < seqLength+1 {
		return nil
	}
	out := make([]Example, 0, len(encoded)-seqLength)
	for i := 0; i+seqLength < len(encoded); i++ {
		raw := encoded[i : i+seqLength+1]
		input := make([]int, seqLength)
		copy(input, raw[:seqLength])
		out = append(out, Example{Input: input, Target: raw[seqLength]})
	}
	return out
}

// Build windows the whole corpus: each song is validated, encoded through
// the mapping, and slid over. Songs shorter than seqLength+1 chords are
// counted as skipped, not treated as errors. A validation or encoding
// failure aborts the build.
func Build(songs []corpus.Song, m *vocab.Mapping, seqLength int) (*Result, error) {
	res := &Result{}
	for _, song := range songs {
		if err := corpus.Validate(song); err != nil {
			return nil, fmt.Errorf("corpus validation: %w", err)
		}
		encoded, err := m.Encode(song.Chords)
		if err != nil {
			return nil, fmt.Errorf("encode song %s: %w", song.ID, err)
		}
		examples := Slide(encoded, seqLength)
		if len(examples) == 0 {
			res.Skipped++
			continue
		}
		res.Examples = append(res.Examples, examples...)
	}
	return res, nil
}
