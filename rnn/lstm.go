package rnn

import (
	"math"
	"math/rand/v2"

	"github.com/naimul214/Word-Prediction-API/optimizations"
	"github.com/naimul214/Word-Prediction-API/utils"
	"gonum.org/v1/gonum/mat"
)

// LSTM is a single recurrent layer returning the hidden state at every
// position. Gate rows are stacked as [input; forget; cell; output].
type LSTM struct {
	In, Hidden int
	Wx         *optimizations.Param // (4H x In)
	Wh         *optimizations.Param // (4H x H)
	B          *optimizations.Param // (4H x 1)

	// cache for backprop
	last *lstmCache
}

type lstmCache struct {
	x          *mat.Dense // (In x T)
	h, c       *mat.Dense // (H x T) states after each step
	i, f, g, o *mat.Dense // (H x T) gate activations
}

func NewLSTM(in, hidden int, src rand.Source) *LSTM {
	wx := mat.NewDense(4*hidden, in, utils.GlorotArray(src, 4*hidden*in, float64(in), float64(4*hidden)))
	wh := mat.NewDense(4*hidden, hidden, utils.GlorotArray(src, 4*hidden*hidden, float64(hidden), float64(4*hidden)))
	b := mat.NewDense(4*hidden, 1, nil)
	// forget gate starts open
	for k := hidden; k < 2*hidden; k++ {
		b.Set(k, 0, 1.0)
	}
	return &LSTM{
		In:     in,
		Hidden: hidden,
		Wx:     optimizations.NewParam("lstm_wx", wx),
		Wh:     optimizations.NewParam("lstm_wh", wh),
		B:      optimizations.NewParam("lstm_b", b),
	}
}

// run is the forward recurrence. It only reads the weights, so
// concurrent callers are safe.
func (l *LSTM) run(X *mat.Dense) *lstmCache {
	H := l.Hidden
	_, T := X.Dims()
	zx := utils.AddBias(utils.Dot(l.Wx.W, X), l.B.W) // (4H x T)
	cc := &lstmCache{
		x: X,
		h: mat.NewDense(H, T, nil),
		c: mat.NewDense(H, T, nil),
		i: mat.NewDense(H, T, nil),
		f: mat.NewDense(H, T, nil),
		g: mat.NewDense(H, T, nil),
		o: mat.NewDense(H, T, nil),
	}
	hPrev := mat.NewDense(H, 1, nil)
	cPrev := mat.NewDense(H, 1, nil)
	for t := 0; t < T; t++ {
		z := utils.Add(zx.Slice(0, 4*H, t, t+1), utils.Dot(l.Wh.W, hPrev)) // (4H x 1)
		ig := utils.Apply(utils.SigmoidApply, z.Slice(0, H, 0, 1))
		fg := utils.Apply(utils.SigmoidApply, z.Slice(H, 2*H, 0, 1))
		gg := utils.Apply(utils.TanhApply, z.Slice(2*H, 3*H, 0, 1))
		og := utils.Apply(utils.SigmoidApply, z.Slice(3*H, 4*H, 0, 1))
		cn := utils.Add(utils.Multiply(fg, cPrev), utils.Multiply(ig, gg))
		hn := utils.Multiply(og, utils.Apply(utils.TanhApply, cn))

		cc.i.SetCol(t, ig.RawMatrix().Data)
		cc.f.SetCol(t, fg.RawMatrix().Data)
		cc.g.SetCol(t, gg.RawMatrix().Data)
		cc.o.SetCol(t, og.RawMatrix().Data)
		cc.c.SetCol(t, cn.RawMatrix().Data)
		cc.h.SetCol(t, hn.RawMatrix().Data)
		cPrev, hPrev = cn, hn
	}
	return cc
}

// Infer returns the hidden states (H x T) without touching the cache.
func (l *LSTM) Infer(X *mat.Dense) *mat.Dense {
	return l.run(X).h
}

func (l *LSTM) Forward(X *mat.Dense) *mat.Dense {
	l.last = l.run(X)
	return l.last.h
}

// Backward runs backprop through time for dH (H x T), accumulates the
// weight gradients and returns dX (In x T).
func (l *LSTM) Backward(dH *mat.Dense) *mat.Dense {
	dX, dWx, dWh, dB := l.BackwardGradsOnly(dH)
	l.Wx.G.Add(l.Wx.G, dWx)
	l.Wh.G.Add(l.Wh.G, dWh)
	l.B.G.Add(l.B.G, dB)
	return dX
}

func (l *LSTM) BackwardGradsOnly(dH *mat.Dense) (dX, dWx, dWh, dB *mat.Dense) {
	cc := l.last
	H := l.Hidden
	_, T := dH.Dims()

	dZ := mat.NewDense(4*H, T, nil)
	dhNext := mat.NewVecDense(H, nil)
	dcNext := make([]float64, H)
	dz := mat.NewVecDense(4*H, nil)
	for t := T - 1; t >= 0; t-- {
		for k := 0; k < H; k++ {
			ig, fg, gg, og := cc.i.At(k, t), cc.f.At(k, t), cc.g.At(k, t), cc.o.At(k, t)
			cPrev := 0.0
			if t > 0 {
				cPrev = cc.c.At(k, t-1)
			}
			tc := math.Tanh(cc.c.At(k, t))
			dh := dH.At(k, t) + dhNext.AtVec(k)
			dc := dh*og*(1-tc*tc) + dcNext[k]

			dz.SetVec(k, dc*gg*ig*(1-ig))
			dz.SetVec(H+k, dc*cPrev*fg*(1-fg))
			dz.SetVec(2*H+k, dc*ig*(1-gg*gg))
			dz.SetVec(3*H+k, dh*tc*og*(1-og))
			dcNext[k] = dc * fg
		}
		dZ.SetCol(t, dz.RawVector().Data)
		dhNext.MulVec(l.Wh.W.T(), dz)
	}

	// hPrev[:, t] = h[:, t-1], zero at t = 0
	hPrev := mat.NewDense(H, T, nil)
	if T > 1 {
		hPrev.Slice(0, H, 1, T).(*mat.Dense).Copy(cc.h.Slice(0, H, 0, T-1))
	}
	dWx = utils.Dot(dZ, cc.x.T())
	dWh = utils.Dot(dZ, hPrev.T())
	dB = utils.SumCols(dZ)
	dX = utils.Dot(l.Wx.W.T(), dZ)
	return dX, dWx, dWh, dB
}
