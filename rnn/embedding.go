package rnn

import (
	"math/rand/v2"

	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/params"
	"github.com/naimul214/Word-Prediction-API/utils"
	"gonum.org/v1/gonum/mat"
)

// Embedding stores one column per token id: Table is (Dim x Vocab).
type Embedding struct {
	Vocab, Dim int
	Table      *optimizations.Param

	// cache for backprop
	lastIDs []int
}

func NewEmbedding(vocab, dim int, src rand.Source) *Embedding {
	w := mat.NewDense(dim, vocab, utils.UniformArray(src, dim*vocab, 0.05))
	return &Embedding{Vocab: vocab, Dim: dim, Table: optimizations.NewParam("embedding", w)}
}

// Lookup gathers the columns for ids into a (Dim x T) matrix. Ids outside
// the table read the <unk> column.
func (e *Embedding) Lookup(ids []int) *mat.Dense {
	out := mat.NewDense(e.Dim, len(ids), nil)
	for t, id := range ids {
		if id < 0 || id >= e.Vocab {
			id = params.UnkID
		}
		for i := 0; i < e.Dim; i++ {
			out.Set(i, t, e.Table.W.At(i, id))
		}
	}
	return out
}

func (e *Embedding) Forward(ids []int) *mat.Dense {
	e.lastIDs = ids
	return e.Lookup(ids)
}

// Backward scatters dX (Dim x T) into the gradient columns of the ids
// seen by the last Forward.
func (e *Embedding) Backward(dX *mat.Dense) {
	for t, id := range e.lastIDs {
		if id < 0 || id >= e.Vocab {
			id = params.UnkID
		}
		for i := 0; i < e.Dim; i++ {
			e.Table.G.Set(i, id, e.Table.G.At(i, id)+dX.At(i, t))
		}
	}
}
