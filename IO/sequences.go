package IO

import "github.com/naimul214/Word-Prediction-API/params"

// SequencePair is one training example: Target is Input shifted left by one.
type SequencePair struct {
	Input  []int
	Target []int
}

// CreateSequences splits ids into (ids[:-1], ids[1:]). Sequences shorter
// than two ids have nothing to predict and are rejected.
func CreateSequences(ids []int) (SequencePair, bool) {
	if len(ids) < 2 {
		return SequencePair{}, false
	}
	return SequencePair{
		Input:  append([]int(nil), ids[:len(ids)-1]...),
		Target: append([]int(nil), ids[1:]...),
	}, true
}

// BuildPairs maps every id sequence to a pair, dropping the short ones.
func BuildPairs(seqs [][]int) []SequencePair {
	out := make([]SequencePair, 0, len(seqs))
	for _, ids := range seqs {
		if p, ok := CreateSequences(ids); ok {
			out = append(out, p)
		}
	}
	return out
}

// Batch is a group of pairs padded with PadID at the end to the longest
// row in the batch. Lengths holds the unpadded length of every row.
type Batch struct {
	Inputs  [][]int
	Targets [][]int
	Lengths []int
}

func (b Batch) Size() int { return len(b.Inputs) }

// Width is the padded row length.
func (b Batch) Width() int {
	if len(b.Inputs) == 0 {
		return 0
	}
	return len(b.Inputs[0])
}

func padBatch(pairs []SequencePair) Batch {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.Input))
	}
	b := Batch{
		Inputs:  make([][]int, len(pairs)),
		Targets: make([][]int, len(pairs)),
		Lengths: make([]int, len(pairs)),
	}
	for i, p := range pairs {
		in := make([]int, width) // zero value is PadID
		tg := make([]int, width)
		copy(in, p.Input)
		copy(tg, p.Target)
		b.Inputs[i], b.Targets[i], b.Lengths[i] = in, tg, len(p.Input)
	}
	return b
}

// BatchIterator walks the pairs in order, batchSize at a time. The last
// batch may be smaller.
type BatchIterator struct {
	pairs     []SequencePair
	batchSize int
	pos       int
}

func NewBatchIterator(pairs []SequencePair, batchSize int) *BatchIterator {
	if batchSize < 1 {
		panic("batch size must be >= 1")
	}
	return &BatchIterator{pairs: pairs, batchSize: batchSize}
}

// Next returns the following batch, false once the pairs are exhausted.
func (it *BatchIterator) Next() (Batch, bool) {
	if it.pos >= len(it.pairs) {
		return Batch{}, false
	}
	end := min(it.pos+it.batchSize, len(it.pairs))
	b := padBatch(it.pairs[it.pos:end])
	it.pos = end
	return b, true
}

func (it *BatchIterator) Reset() { it.pos = 0 }

// Len is the number of batches in one full pass.
func (it *BatchIterator) Len() int {
	return (len(it.pairs) + it.batchSize - 1) / it.batchSize
}

func (it *BatchIterator) Pairs() int { return len(it.pairs) }

// PadSequences left-pads ids with PadID, or drops the oldest ids, so the
// result is exactly window long and ends with the most recent id.
func PadSequences(ids []int, window int) []int {
	out := make([]int, window)
	if len(ids) >= window {
		copy(out, ids[len(ids)-window:])
		return out
	}
	for i := range window - len(ids) {
		out[i] = params.PadID
	}
	copy(out[window-len(ids):], ids)
	return out
}
