package rnn

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

var ErrShapeMismatch = errors.New("model file shape mismatch")

// modelData is the gob layout of a saved model. Optimizer state is not
// kept: training never resumes from a saved model.
type modelData struct {
	VocabOut, EmbedDim, Hidden int
	RunID                      string

	EmbData []float64
	WxData  []float64
	WhData  []float64
	BData   []float64
	OutW    []float64
	OutB    []float64
}

func rawCopy(m *mat.Dense) []float64 {
	return append([]float64(nil), mat.DenseCopyOf(m).RawMatrix().Data...)
}

// SaveModel persists the weights and layer sizes to filename using gob.
func SaveModel(m *Model, filename string) error {
	data := modelData{
		VocabOut: m.VocabOut,
		EmbedDim: m.EmbedDim,
		Hidden:   m.Hidden,
		RunID:    m.RunID,
		EmbData:  rawCopy(m.Emb.Table.W),
		WxData:   rawCopy(m.Rnn.Wx.W),
		WhData:   rawCopy(m.Rnn.Wh.W),
		BData:    rawCopy(m.Rnn.B.W),
		OutW:     rawCopy(m.Out.W.W),
		OutB:     rawCopy(m.Out.B.W),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// LoadModel rebuilds a model saved by SaveModel.
func LoadModel(filename string) (*Model, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var data modelData
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	V, E, H := data.VocabOut, data.EmbedDim, data.Hidden
	if V <= 0 || E <= 0 || H <= 0 {
		return nil, fmt.Errorf("%s: bad sizes V=%d E=%d H=%d: %w", filename, V, E, H, ErrShapeMismatch)
	}
	check := func(name string, got, want int) error {
		if got != want {
			return fmt.Errorf("%s: %s has %d values, want %d: %w", filename, name, got, want, ErrShapeMismatch)
		}
		return nil
	}
	if err := errors.Join(
		check("embedding", len(data.EmbData), E*V),
		check("lstm_wx", len(data.WxData), 4*H*E),
		check("lstm_wh", len(data.WhData), 4*H*H),
		check("lstm_b", len(data.BData), 4*H),
		check("dense_w", len(data.OutW), V*H),
		check("dense_b", len(data.OutB), V),
	); err != nil {
		return nil, err
	}

	m := NewModel(V, E, H, 0)
	m.RunID = data.RunID
	m.Emb.Table.W = mat.NewDense(E, V, data.EmbData)
	m.Rnn.Wx.W = mat.NewDense(4*H, E, data.WxData)
	m.Rnn.Wh.W = mat.NewDense(4*H, H, data.WhData)
	m.Rnn.B.W = mat.NewDense(4*H, 1, data.BData)
	m.Out.W.W = mat.NewDense(V, H, data.OutW)
	m.Out.B.W = mat.NewDense(V, 1, data.OutB)
	return m, nil
}
