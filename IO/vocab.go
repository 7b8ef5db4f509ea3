package IO

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/naimul214/Word-Prediction-API/params"
)

var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// Vocabulary maps words to ids. IDToToken is derived from TokenToID and
// is never persisted.
type Vocabulary struct {
	TokenToID map[string]int
	IDToToken map[int]string
}

func NewVocabulary(tok2id map[string]int) Vocabulary {
	id2tok := make(map[int]string, len(tok2id))
	for tok, id := range tok2id {
		id2tok[id] = tok
	}
	return Vocabulary{TokenToID: tok2id, IDToToken: id2tok}
}

// Size is the number of stored entries, <unk> included.
func (v Vocabulary) Size() int { return len(v.TokenToID) }

// MaxID is the largest id in use. The model needs MaxID+1 output classes.
func (v Vocabulary) MaxID() int {
	mx := params.UnkID
	for _, id := range v.TokenToID {
		if id > mx {
			mx = id
		}
	}
	return mx
}

// VocabLookup is the lookup-or-default used everywhere a token becomes an id.
func VocabLookup(v Vocabulary, tok string) int {
	if id, ok := v.TokenToID[tok]; ok {
		return id
	}
	return params.UnkID
}

// Decode maps an id back to its word, <unk> when the id is unknown.
func (v Vocabulary) Decode(id int) string {
	if tok, ok := v.IDToToken[id]; ok {
		return tok
	}
	return params.UnkToken
}

func MapTokensToIDs(v Vocabulary, toks []string) []int {
	ids := make([]int, len(toks))
	for i, t := range toks {
		ids[i] = VocabLookup(v, t)
	}
	return ids
}

// BuildVocabulary keeps the size most frequent tokens. Equal counts keep
// the order in which the tokens were first seen. Words get ids from 2,
// <unk> is always 1 and id 0 stays free for padding.
func BuildVocabulary(tokenized [][]string, size int) Vocabulary {
	if size < 1 {
		panic("vocab size must be >= 1")
	}
	type kv struct {
		k string
		v int
	}
	counts := make(map[string]int, 1<<15)
	var order []string
	for _, toks := range tokenized {
		for _, t := range toks {
			if t == params.UnkToken || t == params.PadToken {
				continue
			}
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	arr := make([]kv, len(order))
	for i, k := range order {
		arr[i] = kv{k, counts[k]}
	}
	sort.SliceStable(arr, func(i, j int) bool { return arr[i].v > arr[j].v })
	if len(arr) > size {
		arr = arr[:size]
	}

	tok2id := make(map[string]int, len(arr)+1)
	for i, p := range arr {
		tok2id[p.k] = i + 2
	}
	tok2id[params.UnkToken] = params.UnkID
	return NewVocabulary(tok2id)
}

// ExportVocabJSON writes the vocabulary as a flat {"token": id} object.
func ExportVocabJSON(v Vocabulary, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(v.TokenToID); err != nil {
		return fmt.Errorf("encode vocab: %w", err)
	}
	return f.Close()
}

// ImportVocabJSON loads vocab.json and derives the reverse mapping.
func ImportVocabJSON(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, err
	}
	var tok2id map[string]int
	if err := json.Unmarshal(raw, &tok2id); err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocab %s: %w", path, err)
	}
	if len(tok2id) == 0 {
		return Vocabulary{}, fmt.Errorf("%s: %w", path, ErrEmptyVocabulary)
	}
	if id, ok := tok2id[params.UnkToken]; !ok || id != params.UnkID {
		return Vocabulary{}, fmt.Errorf("%s: %s must map to %d", path, params.UnkToken, params.UnkID)
	}
	v := NewVocabulary(tok2id)
	if len(v.IDToToken) != len(tok2id) {
		return Vocabulary{}, fmt.Errorf("%s: duplicate ids in vocabulary", path)
	}
	return v, nil
}
