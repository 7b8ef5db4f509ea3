package optimizations

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Param is one trainable matrix together with its gradient
// accumulator and Adam moments.
type Param struct {
	Name string
	W    *mat.Dense
	G    *mat.Dense
	M, V *mat.Dense
}

func NewParam(name string, w *mat.Dense) *Param {
	r, c := w.Dims()
	return &Param{
		Name: name,
		W:    w,
		G:    mat.NewDense(r, c, nil),
		M:    mat.NewDense(r, c, nil),
		V:    mat.NewDense(r, c, nil),
	}
}

func (p *Param) ZeroGrad() { p.G.Zero() }

// Adam holds the hyperparameters and the shared step counter.
type Adam struct {
	LR, Beta1, Beta2, Eps float64
	T                     int
}

func NewAdam(lr, beta1, beta2, eps float64) *Adam {
	return &Adam{LR: lr, Beta1: beta1, Beta2: beta2, Eps: eps}
}

// Step advances t once and applies the accumulated gradient of every param.
func (a *Adam) Step(ps ...*Param) {
	a.T++
	for _, p := range ps {
		AdamUpdateInPlace(p.W, p.G, p.M, p.V, a.T, a.LR, a.Beta1, a.Beta2, a.Eps, 0)
	}
}

// p -= lr * (mhat/(sqrt(vhat)+eps) + wd * p) with bias correction (AdamW).
func AdamUpdateInPlace(
	p, g, m, v *mat.Dense,
	t int,
	lr, beta1, beta2, eps, weightDecay float64,
) {
	pr, pc := p.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("adamUpdateInPlace: grad shape mismatch")
	}
	if mr, mc := m.Dims(); mr != pr || mc != pc {
		panic("adamUpdateInPlace: m shape mismatch")
	}
	if vr, vc := v.Dims(); vr != pr || vc != pc {
		panic("adamUpdateInPlace: v shape mismatch")
	}
	c1 := 1.0 / (1.0 - math.Pow(beta1, float64(t)))
	c2 := 1.0 / (1.0 - math.Pow(beta2, float64(t)))
	for i := 0; i < pr; i++ {
		pRow, gRow := p.RawRowView(i), g.RawRowView(i)
		mRow, vRow := m.RawRowView(i), v.RawRowView(i)
		for j := 0; j < pc; j++ {
			gij := gRow[j]
			if gij == 0 && mRow[j] == 0 && vRow[j] == 0 {
				// untouched embedding columns stay exactly where they are
				continue
			}
			mij := beta1*mRow[j] + (1.0-beta1)*gij
			vij := beta2*vRow[j] + (1.0-beta2)*gij*gij
			mhat := mij * c1
			vhat := vij * c2
			update := mhat/(math.Sqrt(vhat)+eps) + weightDecay*pRow[j]
			pRow[j] -= lr * update
			mRow[j] = mij
			vRow[j] = vij
		}
	}
}
