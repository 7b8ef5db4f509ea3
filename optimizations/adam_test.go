package optimizations

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAdamFirstStepMovesByLR(t *testing.T) {
	p := NewParam("w", mat.NewDense(1, 3, []float64{1, 1, 1}))
	p.G.SetRow(0, []float64{0.5, -2, 0})
	opt := NewAdam(0.01, 0.9, 0.999, 1e-7)
	opt.Step(p)

	// with bias correction the first update is lr * g/|g|
	want := []float64{0.99, 1.01, 1}
	for j, w := range want {
		if math.Abs(p.W.At(0, j)-w) > 1e-6 {
			t.Fatalf("w[%d] = %.8f, want %.8f", j, p.W.At(0, j), w)
		}
	}
	if opt.T != 1 {
		t.Fatalf("T = %d, want 1", opt.T)
	}
}

func TestAdamDescendsQuadratic(t *testing.T) {
	// minimise (w-3)^2
	p := NewParam("w", mat.NewDense(1, 1, []float64{0}))
	opt := NewAdam(0.05, 0.9, 0.999, 1e-8)
	for i := 0; i < 500; i++ {
		p.ZeroGrad()
		p.G.Set(0, 0, 2*(p.W.At(0, 0)-3))
		opt.Step(p)
	}
	if math.Abs(p.W.At(0, 0)-3) > 0.1 {
		t.Fatalf("w = %v, want ~3", p.W.At(0, 0))
	}
}

func TestAdamUpdateShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on shape mismatch")
		}
	}()
	p := mat.NewDense(2, 2, nil)
	g := mat.NewDense(2, 1, nil)
	AdamUpdateInPlace(p, g, mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil), 1, 0.1, 0.9, 0.999, 1e-8, 0)
}
