// Package dataset owns the materialized training corpus: persisting the
// encoded windows so the preprocessing step can be skipped on re-runs,
// splitting examples into train/validation partitions, and computing the
// class weights that counteract chord-frequency imbalance.
package dataset

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/giacomov/chords-ai/internal/window"
)

// Dataset is the windowed corpus in its persisted form.
type Dataset struct {
	SeqLength    int     `json:"seq_length"`
	VocabSize    int     `json:"vocab_size"`
	Inputs       [][]int `json:"inputs"`
	Targets      []int   `json:"targets"`
	SkippedSongs int     `json:"skipped_songs"`
}

// FromWindows flattens a windowing result into its persisted form.
func FromWindows(res *window.Result, seqLength, vocabSize int) *Dataset {
	d := &Dataset{
		SeqLength:    seqLength,
		VocabSize:    vocabSize,
		Inputs:       make([][]int, len(res.Examples)),
		Targets:      make([]int, len(res.Examples)),
		SkippedSongs: res.Skipped,
	}
	for i, ex := range res.Examples {
		d.Inputs[i] = ex.Input
		d.Targets[i] = ex.Target
	}
	return d
}

// Examples reconstructs the example list from the persisted form.
func (d *Dataset) Examples() []window.Example {
	out := make([]window.Example, len(d.Inputs))
	for i := range d.Inputs {
		out[i] = window.Example{Input: d.Inputs[i], Target: d.Targets[i]}
	}
	return out
}

// Save writes the dataset as JSON.
func (d *Dataset) Save(path string) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

// Load reads a dataset written by Save.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &d, nil
}

// Split is a disjoint train/validation partition of the examples.
type Split struct {
	Train []window.Example
	Val   []window.Example
}

// Partition shuffles the examples and carves off valFraction of them as
// the validation set. Membership is independent per example, so
// overlapping windows from the same song can land on both sides; that is
// an accepted modeling tradeoff, not a leak to be fixed here.
func Partition(examples []window.Example, valFraction float64, rng *rand.Rand) Split {
	shuffled := make([]window.Example, len(examples))
	copy(shuffled, examples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nVal := int(float64(len(shuffled)) * valFraction)
	return Split{
		Val:   shuffled[:nVal],
		Train: shuffled[nVal:],
	}
}

// ClassWeights computes one weight per target chord appearing in the
// training partition: maxFrequency/frequency, so the most common chord
// gets weight 1 and rarer chords proportionally more.
func ClassWeights(examples []window.Example) map[int]float64 {
	freq := make(map[int]int)
	maxFreq := 0
	for _, ex := range examples {
		freq[ex.Target]++
		if freq[ex.Target] > maxFreq {
			maxFreq = freq[ex.Target]
		}
	}

	weights := make(map[int]float64, len(freq))
	for class, f := range freq {
		weights[class] = float64(maxFreq) / float64(f)
	}
	return weights
}
