package IO

import (
	"slices"
	"testing"

	"github.com/naimul214/Word-Prediction-API/params"
)

func TestCreateSequences(t *testing.T) {
	if _, ok := CreateSequences([]int{5}); ok {
		t.Fatal("single id must be dropped")
	}
	if _, ok := CreateSequences(nil); ok {
		t.Fatal("empty sequence must be dropped")
	}
	p, ok := CreateSequences([]int{4, 5, 6})
	if !ok {
		t.Fatal("three ids should give a pair")
	}
	if !slices.Equal(p.Input, []int{4, 5}) || !slices.Equal(p.Target, []int{5, 6}) {
		t.Fatalf("pair = %+v", p)
	}
}

func TestBatchIteratorPadsToLongestInBatch(t *testing.T) {
	pairs := BuildPairs([][]int{
		{2, 3, 4},       // len 2
		{5},             // dropped
		{6, 7, 8, 9, 2}, // len 4
		{3, 4},          // len 1
	})
	it := NewBatchIterator(pairs, 2)
	if it.Len() != 2 {
		t.Fatalf("Len = %d, want 2", it.Len())
	}

	b, ok := it.Next()
	if !ok || b.Size() != 2 || b.Width() != 4 {
		t.Fatalf("first batch size=%d width=%d", b.Size(), b.Width())
	}
	if !slices.Equal(b.Inputs[0], []int{2, 3, params.PadID, params.PadID}) {
		t.Fatalf("row 0 inputs = %v", b.Inputs[0])
	}
	if !slices.Equal(b.Targets[0], []int{3, 4, params.PadID, params.PadID}) {
		t.Fatalf("row 0 targets = %v", b.Targets[0])
	}
	if !slices.Equal(b.Lengths, []int{2, 4}) {
		t.Fatalf("lengths = %v", b.Lengths)
	}

	b, ok = it.Next()
	if !ok || b.Size() != 1 || b.Width() != 1 {
		t.Fatalf("second batch size=%d width=%d", b.Size(), b.Width())
	}
	if _, ok := it.Next(); ok {
		t.Fatal("iterator should be exhausted")
	}
	it.Reset()
	if b, ok := it.Next(); !ok || b.Lengths[0] != 2 {
		t.Fatal("Reset should restart from the first pair")
	}
}

func TestPadSequences(t *testing.T) {
	got := PadSequences([]int{7, 8, 9}, 10)
	want := []int{0, 0, 0, 0, 0, 0, 0, 7, 8, 9}
	if !slices.Equal(got, want) {
		t.Fatalf("pad = %v, want %v", got, want)
	}

	long := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	got = PadSequences(long, 10)
	if !slices.Equal(got, long[2:]) {
		t.Fatalf("truncate = %v, want the most recent 10", got)
	}
	if len(PadSequences(nil, 10)) != 10 {
		t.Fatal("empty input must still give a full window")
	}
	// the input must not be aliased
	got[0] = -1
	if long[2] == -1 {
		t.Fatal("PadSequences aliased its input")
	}
}
