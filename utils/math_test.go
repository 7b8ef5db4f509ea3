package utils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestColVectorSoftmaxSumsToOne(t *testing.T) {
	v := mat.NewDense(4, 1, []float64{1000, 1001, -3, 0})
	p := ColVectorSoftmax(v)
	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += p.At(i, 0)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("softmax sum = %v", sum)
	}
	if p.At(1, 0) <= p.At(0, 0) {
		t.Fatalf("ordering lost: %v", mat.Formatted(p))
	}
}

func TestCrossEntropyWithIndex(t *testing.T) {
	logits := mat.NewDense(3, 1, []float64{0, 0, 0})
	loss, grad := CrossEntropyWithIndex(logits, 2)
	if math.Abs(loss-math.Log(3)) > 1e-9 {
		t.Fatalf("loss = %v, want ln 3", loss)
	}
	s := 0.0
	for i := 0; i < 3; i++ {
		s += grad.At(i, 0)
	}
	if math.Abs(s) > 1e-12 {
		t.Fatalf("grad should sum to 0, got %v", s)
	}
	if grad.At(2, 0) >= 0 {
		t.Fatalf("gold grad should be negative, got %v", grad.At(2, 0))
	}
}

func TestArgmaxFirstOnTie(t *testing.T) {
	v := mat.NewDense(4, 1, []float64{0.1, 0.4, 0.4, 0.1})
	if got := Argmax(v); got != 1 {
		t.Fatalf("Argmax = %d, want 1", got)
	}
}

func TestClipGrads(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{3, 0})
	b := mat.NewDense(1, 1, []float64{4})
	s := ClipGrads(1, a, b)
	if math.Abs(s-0.2) > 1e-12 {
		t.Fatalf("scale = %v, want 0.2", s)
	}
	if math.Abs(a.At(0, 0)-0.6) > 1e-12 || math.Abs(b.At(0, 0)-0.8) > 1e-12 {
		t.Fatalf("clipped values wrong: a=%v b=%v", a.At(0, 0), b.At(0, 0))
	}
	if s := ClipGrads(0, a); s != 1 {
		t.Fatalf("maxNorm 0 must disable clipping, got %v", s)
	}
}

func TestGlorotArrayDeterministicAndBounded(t *testing.T) {
	x := GlorotArray(NewSource(7), 100, 3, 5)
	y := GlorotArray(NewSource(7), 100, 3, 5)
	lim := math.Sqrt(6.0 / 8.0)
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("same seed produced different value at %d", i)
		}
		if math.Abs(x[i]) > lim {
			t.Fatalf("value %v outside ±%v", x[i], lim)
		}
	}
}

func TestSumColsAndAddBias(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	s := SumCols(m)
	if s.At(0, 0) != 6 || s.At(1, 0) != 15 {
		t.Fatalf("SumCols = %v", mat.Formatted(s))
	}
	out := AddBias(m, mat.NewDense(2, 1, []float64{10, 20}))
	if out.At(0, 2) != 13 || out.At(1, 0) != 24 {
		t.Fatalf("AddBias = %v", mat.Formatted(out))
	}
}

func TestGateHelpers(t *testing.T) {
	z := mat.NewDense(2, 1, []float64{0, math.Inf(1)})
	s := Apply(SigmoidApply, z)
	if s.At(0, 0) != 0.5 || s.At(1, 0) != 1 {
		t.Fatalf("sigmoid = %v", mat.Formatted(s))
	}
	th := Apply(TanhApply, z)
	if th.At(0, 0) != 0 || th.At(1, 0) != 1 {
		t.Fatalf("tanh = %v", mat.Formatted(th))
	}
	// c' = f*c + i*g
	c := Add(Multiply(s, mat.NewDense(2, 1, []float64{4, 2})), Multiply(s, th))
	if c.At(0, 0) != 2 || c.At(1, 0) != 3 {
		t.Fatalf("cell update = %v", mat.Formatted(c))
	}
	if MatrixNorm(mat.NewDense(1, 2, []float64{3, 4})) != 5 {
		t.Fatal("MatrixNorm(3,4) != 5")
	}
	zl := ZerosLike(c)
	if r, cols := zl.Dims(); r != 2 || cols != 1 || mat.Sum(zl) != 0 {
		t.Fatalf("ZerosLike dims %dx%d", r, cols)
	}
}
