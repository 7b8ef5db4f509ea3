package rnn

import (
	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/params"
	"github.com/naimul214/Word-Prediction-API/utils"
	"gonum.org/v1/gonum/mat"
)

// Model is Embedding -> LSTM -> Dense, trained with softmax cross-entropy
// at every position.
type Model struct {
	VocabOut int // output classes, max vocab id + 1
	EmbedDim int
	Hidden   int
	RunID    string // training run that produced the weights

	Emb *Embedding
	Rnn *LSTM
	Out *Dense
}

func NewModel(vocabOut, embedDim, hidden int, seed int64) *Model {
	src := utils.NewSource(seed)
	return &Model{
		VocabOut: vocabOut,
		EmbedDim: embedDim,
		Hidden:   hidden,
		Emb:      NewEmbedding(vocabOut, embedDim, src),
		Rnn:      NewLSTM(embedDim, hidden, src),
		Out:      NewDense(hidden, vocabOut, src),
	}
}

// NewModelFromConfig sizes the output layer for a vocabulary whose
// largest id is maxID.
func NewModelFromConfig(cfg params.TrainingConfig, maxID int) *Model {
	return NewModel(maxID+1, cfg.EmbedDim, cfg.HiddenSize, cfg.Seed)
}

func (m *Model) Params() []*optimizations.Param {
	return []*optimizations.Param{
		m.Emb.Table,
		m.Rnn.Wx, m.Rnn.Wh, m.Rnn.B,
		m.Out.W, m.Out.B,
	}
}

func (m *Model) ZeroGrad() {
	for _, p := range m.Params() {
		p.ZeroGrad()
	}
}

// Forward returns the logits (VocabOut x T) and caches activations for Backward.
func (m *Model) Forward(ids []int) *mat.Dense {
	X := m.Emb.Forward(ids)
	Hs := m.Rnn.Forward(X)
	return m.Out.Forward(Hs)
}

// Backward accumulates the gradients of every parameter for dLogits.
func (m *Model) Backward(dLogits *mat.Dense) {
	dH := m.Out.Backward(dLogits)
	dX := m.Rnn.Backward(dH)
	m.Emb.Backward(dX)
}

// Logits is the cache-free forward pass used at inference time.
func (m *Model) Logits(ids []int) *mat.Dense {
	return m.Out.Infer(m.Rnn.Infer(m.Emb.Lookup(ids)))
}

// NextWordDistribution returns the softmax over the vocabulary at the
// final position of ids.
func (m *Model) NextWordDistribution(ids []int) *mat.Dense {
	return utils.ColVectorSoftmax(utils.LastCol(m.Logits(ids)))
}

// PredictID is the greedy next id after ids.
func (m *Model) PredictID(ids []int) int {
	return utils.Argmax(m.NextWordDistribution(ids))
}

// StepStats sums loss and accuracy over the scored positions of a batch.
type StepStats struct {
	Loss    float64
	Correct int
	Tokens  int
}

func (s *StepStats) Add(o StepStats) {
	s.Loss += o.Loss
	s.Correct += o.Correct
	s.Tokens += o.Tokens
}

func (s StepStats) MeanLoss() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return s.Loss / float64(s.Tokens)
}

func (s StepStats) Accuracy() float64 {
	if s.Tokens == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Tokens)
}

// LossAndGrad scores input against target at every position whose target
// is not padding. With backward set it also accumulates the summed
// gradient; callers scale it before the optimizer step.
func (m *Model) LossAndGrad(input, target []int, backward bool) StepStats {
	var st StepStats
	if len(input) == 0 {
		return st
	}
	var logits *mat.Dense
	if backward {
		logits = m.Forward(input)
	} else {
		logits = m.Logits(input)
	}
	_, T := logits.Dims()
	dLogits := mat.NewDense(m.VocabOut, T, nil)
	for t := 0; t < T; t++ {
		if target[t] == params.PadID {
			continue
		}
		col := utils.ToDense(logits.ColView(t))
		loss, grad := utils.CrossEntropyWithIndex(col, target[t])
		st.Loss += loss
		st.Tokens++
		if utils.Argmax(col) == target[t] {
			st.Correct++
		}
		if backward {
			dLogits.SetCol(t, grad.RawMatrix().Data)
		}
	}
	if backward && st.Tokens > 0 {
		m.Backward(dLogits)
	}
	return st
}
