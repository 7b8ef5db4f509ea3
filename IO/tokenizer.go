package IO

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// WordTokenizer lower-cases text and splits it into words and
// punctuation marks. It holds no mutable state once built, so one
// instance is shared by every request.
type WordTokenizer struct {
	pre PreTokenizer
}

// PreTokenizer is the splitting stage a WordTokenizer runs after
// lower-casing. pretokenizer.BertPreTokenizer satisfies it.
type PreTokenizer interface {
	PreTokenize(*tk.PreTokenizedString) (*tk.PreTokenizedString, error)
}

var (
	checkText   = "The cat, sat!"
	checkTokens = []string{"the", "cat", ",", "sat", "!"}
)

// InitTokenizer builds the tokenizer and checks it against a known
// sentence. Callers run it once before preparing data or serving.
func InitTokenizer() (*WordTokenizer, error) {
	return NewWordTokenizer(pretokenizer.NewBertPreTokenizer())
}

// NewWordTokenizer wraps pre and runs the same check as InitTokenizer.
func NewWordTokenizer(pre PreTokenizer) (*WordTokenizer, error) {
	t := &WordTokenizer{pre: pre}
	got, err := t.Tokenize(checkText)
	if err != nil {
		return nil, fmt.Errorf("tokenizer init: %w", err)
	}
	if !slices.Equal(got, checkTokens) {
		return nil, fmt.Errorf("tokenizer init: %q gave %q, want %q", checkText, got, checkTokens)
	}
	return t, nil
}

// Tokenize returns the lower-cased word tokens of text. Blank text yields
// no tokens and no error.
func (t *WordTokenizer) Tokenize(text string) ([]string, error) {
	toks, err := t.split(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	return toks, nil
}

// TokenizeAll tokenizes every line and stops at the first failure.
func (t *WordTokenizer) TokenizeAll(lines []string) ([][]string, error) {
	out := make([][]string, len(lines))
	for i, l := range lines {
		toks, err := t.Tokenize(l)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out[i] = toks
	}
	return out, nil
}

// normalizeSpace maps every Unicode space (NBSP, thin space, ...) to an
// ASCII space so the pre-tokenizer splits on it.
func normalizeSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}

func (t *WordTokenizer) split(text string) ([]string, error) {
	text = normalizeSpace(strings.ToLower(text))
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	pts, err := t.pre.PreTokenize(tk.NewPreTokenizedString(text))
	if err != nil {
		return nil, err
	}
	splits := pts.GetSplits(normalizer.OriginalTarget, tk.Byte)
	out := make([]string, 0, len(splits))
	for _, s := range splits {
		if v := strings.TrimSpace(s.Value); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
