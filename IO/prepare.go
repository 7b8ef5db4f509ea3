package IO

import (
	"fmt"

	"github.com/naimul214/Word-Prediction-API/params"
)

// maxShardBytes caps one token id shard file.
const maxShardBytes = int64(1 << 30)

// Dataset is what the trainer consumes.
type Dataset struct {
	Vocab Vocabulary
	Train *BatchIterator
	Val   *BatchIterator
}

// PrepareData runs the corpus pipeline: load both splits, tokenize, build
// the vocabulary from the train split, write it to cfg.VocabPath, map to
// ids, build shifted pairs and wrap them in batch iterators.
//
// When vocab.json, both id caches and a matching manifest already exist and
// force is false, the cached ids are used and tokenization is skipped.
func PrepareData(cfg params.TrainingConfig, tok *WordTokenizer, force bool) (*Dataset, error) {
	var (
		vocab            Vocabulary
		trainIDs, valIDs [][]int
		cached           bool
		err              error
	)
	if !force {
		if vocab, trainIDs, valIDs, cached, err = loadCache(cfg); err != nil {
			return nil, err
		}
	}
	if !cached {
		if vocab, trainIDs, valIDs, err = buildCache(cfg, tok); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{
		Vocab: vocab,
		Train: NewBatchIterator(BuildPairs(trainIDs), cfg.BatchSize),
		Val:   NewBatchIterator(BuildPairs(valIDs), cfg.BatchSize),
	}
	fmt.Printf("Train: %d pairs in %d batches, Val: %d pairs in %d batches\n",
		ds.Train.Pairs(), ds.Train.Len(), ds.Val.Pairs(), ds.Val.Len())
	return ds, nil
}

func mapAll(v Vocabulary, toks [][]string) [][]int {
	out := make([][]int, len(toks))
	for i, t := range toks {
		out[i] = MapTokensToIDs(v, t)
	}
	return out
}

// loadCache returns the cached vocabulary and ids, or ok=false when there is
// no cache or it was built from a different corpus or vocab_size.
func loadCache(cfg params.TrainingConfig) (vocab Vocabulary, trainIDs, valIDs [][]int, ok bool, err error) {
	if !fileExists(cfg.VocabPath) || ShardMissing(cfg.TrainIDsPath) || ShardMissing(cfg.ValIDsPath) {
		return vocab, nil, nil, false, nil
	}
	m, err := readManifest(cfg)
	if err != nil {
		fmt.Printf("⚡ Ignoring token id cache: %v\n", err)
		return vocab, nil, nil, false, nil
	}
	if vocab, err = ImportVocabJSON(cfg.VocabPath); err != nil {
		return vocab, nil, nil, false, err
	}
	if reason := m.staleReason(cfg, vocab); reason != "" {
		fmt.Printf("⚡ Rebuilding stale token id cache: %s\n", reason)
		return Vocabulary{}, nil, nil, false, nil
	}

	fmt.Println("⚡ Using cached vocab.json and token id shards")
	if trainIDs, err = ImportTokenIDsBinary(cfg.TrainIDsPath); err != nil {
		return vocab, nil, nil, false, err
	}
	if valIDs, err = ImportTokenIDsBinary(cfg.ValIDsPath); err != nil {
		return vocab, nil, nil, false, err
	}
	return vocab, trainIDs, valIDs, true, nil
}

// buildCache tokenizes both splits from scratch and writes vocab.json, the
// id shards and the manifest describing them.
func buildCache(cfg params.TrainingConfig, tok *WordTokenizer) (vocab Vocabulary, trainIDs, valIDs [][]int, err error) {
	trainLines, err := LoadSplit(cfg.TrainPath)
	if err != nil {
		return vocab, nil, nil, fmt.Errorf("train split: %w", err)
	}
	valLines, err := LoadSplit(cfg.ValPath)
	if err != nil {
		return vocab, nil, nil, fmt.Errorf("validation split: %w", err)
	}
	m := prepManifest{VocabSize: cfg.VocabSize}
	if m.Train, err = stampSplit(cfg.TrainPath); err != nil {
		return vocab, nil, nil, err
	}
	if m.Val, err = stampSplit(cfg.ValPath); err != nil {
		return vocab, nil, nil, err
	}
	fmt.Printf("Loaded %d train lines, %d validation lines\n", len(trainLines), len(valLines))

	trainToks, err := tok.TokenizeAll(trainLines)
	if err != nil {
		return vocab, nil, nil, fmt.Errorf("train split: %w", err)
	}
	valToks, err := tok.TokenizeAll(valLines)
	if err != nil {
		return vocab, nil, nil, fmt.Errorf("validation split: %w", err)
	}

	vocab = BuildVocabulary(trainToks, cfg.VocabSize)
	if err := ExportVocabJSON(vocab, cfg.VocabPath); err != nil {
		return vocab, nil, nil, fmt.Errorf("save vocab: %w", err)
	}
	fmt.Printf("✅ Exported %s (%d entries)\n", cfg.VocabPath, vocab.Size())

	trainIDs = mapAll(vocab, trainToks)
	valIDs = mapAll(vocab, valToks)
	if err := ExportTokenIDsBinary(trainIDs, cfg.TrainIDsPath, maxShardBytes); err != nil {
		return vocab, nil, nil, fmt.Errorf("export train ids: %w", err)
	}
	if err := ExportTokenIDsBinary(valIDs, cfg.ValIDsPath, maxShardBytes); err != nil {
		return vocab, nil, nil, fmt.Errorf("export validation ids: %w", err)
	}
	m.VocabEntries = vocab.Size()
	if err := writeManifest(cfg, m); err != nil {
		return vocab, nil, nil, fmt.Errorf("write prepare manifest: %w", err)
	}
	return vocab, trainIDs, valIDs, nil
}
