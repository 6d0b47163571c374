package dataset

import (
	"math/rand"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/giacomov/chords-ai/internal/window"
)

func makeExamples(targets []int) []window.Example {
	out := make([]window.Example, len(targets))
	for i, tgt := range targets {
		out[i] = window.Example{Input: []int{i, i + 1, i + 2}, Target: tgt}
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	res := &window.Result{
		Examples: []window.Example{
			{Input: []int{0, 1, 2}, Target: 0},
			{Input: []int{1, 2, 0}, Target: 1},
		},
		Skipped: 3,
	}
	d := FromWindows(res, 3, 5)

	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, d) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", loaded, d)
	}
	if !reflect.DeepEqual(loaded.Examples(), res.Examples) {
		t.Fatalf("Examples() mismatch: got %+v", loaded.Examples())
	}
}

func TestPartition(t *testing.T) {
	examples := makeExamples(make([]int, 100))
	rng := rand.New(rand.NewSource(42))

	split := Partition(examples, 0.2, rng)

	if len(split.Val) != 20 {
		t.Fatalf("validation size = %d, want 20", len(split.Val))
	}
	if len(split.Train) != 80 {
		t.Fatalf("train size = %d, want 80", len(split.Train))
	}

	// Partitions must be disjoint and together cover the input exactly.
	seen := map[int]int{}
	for _, ex := range append(append([]window.Example{}, split.Train...), split.Val...) {
		seen[ex.Input[0]]++
	}
	if len(seen) != 100 {
		t.Fatalf("partition covers %d distinct examples, want 100", len(seen))
	}
	for first, n := range seen {
		if n != 1 {
			t.Fatalf("example %d appears %d times across partitions", first, n)
		}
	}
}

func TestPartition_DoesNotMutateInput(t *testing.T) {
	examples := makeExamples([]int{0, 1, 2, 3, 4})
	firsts := make([]int, len(examples))
	for i, ex := range examples {
		firsts[i] = ex.Input[0]
	}

	Partition(examples, 0.4, rand.New(rand.NewSource(1)))

	for i, ex := range examples {
		if ex.Input[0] != firsts[i] {
			t.Fatal("Partition must shuffle a copy, not the caller's slice")
		}
	}
}

func TestPartition_Deterministic(t *testing.T) {
	examples := makeExamples([]int{0, 1, 0, 2, 1, 0, 2, 2, 1, 0})

	a := Partition(examples, 0.3, rand.New(rand.NewSource(7)))
	b := Partition(examples, 0.3, rand.New(rand.NewSource(7)))

	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed must produce the same split")
	}
}

func TestClassWeights(t *testing.T) {
	targets := make([]int, 0, 175)
	for i := 0; i < 100; i++ {
		targets = append(targets, 0)
	}
	for i := 0; i < 50; i++ {
		targets = append(targets, 1)
	}
	for i := 0; i < 25; i++ {
		targets = append(targets, 2)
	}

	got := ClassWeights(makeExamples(targets))
	want := map[int]float64{0: 1.0, 1: 2.0, 2: 4.0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ClassWeights = %v, want %v", got, want)
	}

	// Classes absent from the training split get no weight entry.
	classes := make([]int, 0, len(got))
	for c := range got {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	if !reflect.DeepEqual(classes, []int{0, 1, 2}) {
		t.Fatalf("unexpected classes %v", classes)
	}
}

func TestClassWeights_Empty(t *testing.T) {
	if got := ClassWeights(nil); len(got) != 0 {
		t.Fatalf("expected empty weights, got %v", got)
	}
}
