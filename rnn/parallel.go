package rnn

import (
	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/utils"
)

// gradsOnly shares the weights of p (read-only) with a private gradient.
// No optimizer state is attached.
func gradsOnly(p *optimizations.Param) *optimizations.Param {
	return &optimizations.Param{Name: p.Name, W: p.W, G: utils.ZerosLike(p.W)}
}

// CloneForGradsOnly creates a clone of the model where all weights are
// shared but gradients and per-layer caches are private. Safe for
// concurrent LossAndGrad calls, one goroutine per clone. The optimizer
// must only ever step the original.
func (m *Model) CloneForGradsOnly() *Model {
	return &Model{
		VocabOut: m.VocabOut,
		EmbedDim: m.EmbedDim,
		Hidden:   m.Hidden,
		RunID:    m.RunID,
		Emb: &Embedding{
			Vocab: m.Emb.Vocab,
			Dim:   m.Emb.Dim,
			Table: gradsOnly(m.Emb.Table),
		},
		Rnn: &LSTM{
			In:     m.Rnn.In,
			Hidden: m.Rnn.Hidden,
			Wx:     gradsOnly(m.Rnn.Wx),
			Wh:     gradsOnly(m.Rnn.Wh),
			B:      gradsOnly(m.Rnn.B),
		},
		Out: &Dense{
			In:  m.Out.In,
			Out: m.Out.Out,
			W:   gradsOnly(m.Out.W),
			B:   gradsOnly(m.Out.B),
		},
	}
}

// AddGrads adds the gradients accumulated by a clone into m.
func (m *Model) AddGrads(clone *Model) {
	src := clone.Params()
	for i, p := range m.Params() {
		p.G.Add(p.G, src[i].G)
	}
}
