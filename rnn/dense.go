package rnn

import (
	"math/rand/v2"

	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/utils"
	"gonum.org/v1/gonum/mat"
)

// Dense projects hidden states to vocabulary logits. Softmax is applied
// by the loss and by the predictor, not here.
type Dense struct {
	In, Out int
	W, B    *optimizations.Param // (Out x In), (Out x 1)

	// cache for backprop
	lastInput *mat.Dense
}

func NewDense(in, out int, src rand.Source) *Dense {
	w := mat.NewDense(out, in, utils.GlorotArray(src, out*in, float64(in), float64(out)))
	return &Dense{
		In:  in,
		Out: out,
		W:   optimizations.NewParam("dense_w", w),
		B:   optimizations.NewParam("dense_b", mat.NewDense(out, 1, nil)),
	}
}

func (d *Dense) Infer(X *mat.Dense) *mat.Dense {
	return utils.AddBias(utils.Dot(d.W.W, X), d.B.W) // (Out x T)
}

func (d *Dense) Forward(X *mat.Dense) *mat.Dense {
	d.lastInput = X
	return d.Infer(X)
}

// Backward accumulates dW, dB and returns dX (In x T).
func (d *Dense) Backward(grad *mat.Dense) *mat.Dense {
	d.W.G.Add(d.W.G, utils.Dot(grad, d.lastInput.T()))
	d.B.G.Add(d.B.G, utils.SumCols(grad))
	return utils.Dot(d.W.W.T(), grad)
}
