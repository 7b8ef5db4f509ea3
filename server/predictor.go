package server

import (
	"errors"
	"fmt"

	"github.com/naimul214/Word-Prediction-API/IO"
	"github.com/naimul214/Word-Prediction-API/params"
	"github.com/naimul214/Word-Prediction-API/rnn"
)

var ErrVocabModelMismatch = errors.New("vocabulary does not fit the model")

// Predictor holds everything inference needs. It is never mutated after
// construction, so one instance serves all requests.
type Predictor struct {
	model  *rnn.Model
	vocab  IO.Vocabulary
	tok    *IO.WordTokenizer
	window int
}

func NewPredictor(model *rnn.Model, vocab IO.Vocabulary, tok *IO.WordTokenizer, window int) (*Predictor, error) {
	if model == nil || tok == nil {
		return nil, errors.New("predictor needs a model and a tokenizer")
	}
	if window < 1 {
		return nil, fmt.Errorf("window must be >= 1, got %d", window)
	}
	if vocab.Size() == 0 {
		return nil, IO.ErrEmptyVocabulary
	}
	if vocab.MaxID() >= model.VocabOut {
		return nil, fmt.Errorf("max id %d, model has %d outputs: %w",
			vocab.MaxID(), model.VocabOut, ErrVocabModelMismatch)
	}
	return &Predictor{model: model, vocab: vocab, tok: tok, window: window}, nil
}

// LoadPredictor reads the tokenizer, vocab.json and model file named by cfg.
func LoadPredictor(cfg params.TrainingConfig) (*Predictor, error) {
	tok, err := IO.InitTokenizer()
	if err != nil {
		return nil, err
	}
	vocab, err := IO.ImportVocabJSON(cfg.VocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	model, err := rnn.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return NewPredictor(model, vocab, tok, cfg.Window)
}

// Encode turns text into the fixed size id window fed to the model.
// Text with no tokens gives nil ids and no error.
func (p *Predictor) Encode(text string) ([]int, error) {
	toks, err := p.tok.Tokenize(text)
	if err != nil || len(toks) == 0 {
		return nil, err
	}
	return IO.PadSequences(IO.MapTokensToIDs(p.vocab, toks), p.window), nil
}

// PredictNextWord returns the most likely word after text, or <unk> when
// text has no tokens or the winning id has no word. A tokenizer failure
// is returned as an error, never as <unk>.
func (p *Predictor) PredictNextWord(text string) (string, error) {
	ids, err := p.Encode(text)
	if err != nil {
		return "", err
	}
	if ids == nil {
		return params.UnkToken, nil
	}
	return p.vocab.Decode(p.model.PredictID(ids)), nil
}

func (p *Predictor) VocabSize() int { return p.vocab.Size() }

func (p *Predictor) RunID() string { return p.model.RunID }
