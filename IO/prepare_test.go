package IO

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/naimul214/Word-Prediction-API/params"
)

func writeCorpus(t *testing.T, dir string) params.TrainingConfig {
	t.Helper()
	train := " = Heading = \n\nthe cat sat on the mat .\nthe dog sat .\nhi\n the cat ran .\n"
	val := "\nthe cat sat .\n = = Sub = = \n"
	cfg := params.Config
	cfg.TrainPath = filepath.Join(dir, "train.txt")
	cfg.ValPath = filepath.Join(dir, "val.txt")
	cfg.VocabPath = filepath.Join(dir, "vocab.json")
	cfg.TrainIDsPath = filepath.Join(dir, "ids", "train")
	cfg.ValIDsPath = filepath.Join(dir, "ids", "val")
	cfg.BatchSize = 2
	if err := os.WriteFile(cfg.TrainPath, []byte(train), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.ValPath, []byte(val), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestPrepareData(t *testing.T) {
	cfg := writeCorpus(t, t.TempDir())
	tok := loadTestTokenizer(t)

	ds, err := PrepareData(cfg, tok, false)
	if err != nil {
		t.Fatalf("PrepareData: %v", err)
	}
	// "hi" has a single token and cannot form a pair
	if ds.Train.Pairs() != 3 {
		t.Fatalf("train pairs = %d, want 3", ds.Train.Pairs())
	}
	if ds.Val.Pairs() != 1 {
		t.Fatalf("val pairs = %d, want 1", ds.Val.Pairs())
	}
	if ds.Vocab.TokenToID["the"] != 2 {
		t.Fatalf("most frequent word should get id 2, got %v", ds.Vocab.TokenToID)
	}

	onDisk, err := ImportVocabJSON(cfg.VocabPath)
	if err != nil {
		t.Fatalf("vocab not written: %v", err)
	}
	if onDisk.Size() != ds.Vocab.Size() {
		t.Fatalf("vocab on disk has %d entries, want %d", onDisk.Size(), ds.Vocab.Size())
	}

	b, ok := ds.Train.Next()
	if !ok || b.Size() != 2 {
		t.Fatalf("first train batch = %+v", b)
	}
	if b.Width() != 6 { // "the cat sat on the mat ." minus one
		t.Fatalf("width = %d, want 6", b.Width())
	}
}

func TestPrepareDataUsesCache(t *testing.T) {
	dir := t.TempDir()
	cfg := writeCorpus(t, dir)
	tok := loadTestTokenizer(t)
	if _, err := PrepareData(cfg, tok, false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// with the raw files gone only the cache can serve the second run
	os.Remove(cfg.TrainPath)
	os.Remove(cfg.ValPath)
	ds, err := PrepareData(cfg, tok, false)
	if err != nil {
		t.Fatalf("cached run: %v", err)
	}
	if ds.Train.Pairs() != 3 {
		t.Fatalf("cached train pairs = %d, want 3", ds.Train.Pairs())
	}
	if _, err := PrepareData(cfg, tok, true); err == nil {
		t.Fatal("force should re-read the missing raw files and fail")
	}
}

func TestPrepareDataMissingValidation(t *testing.T) {
	cfg := writeCorpus(t, t.TempDir())
	cfg.ValPath = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := PrepareData(cfg, loadTestTokenizer(t), true); err == nil {
		t.Fatal("missing validation split should fail")
	}
}

func TestPrepareDataRebuildsOnVocabSizeChange(t *testing.T) {
	cfg := writeCorpus(t, t.TempDir())
	tok := loadTestTokenizer(t)
	if _, err := PrepareData(cfg, tok, false); err != nil {
		t.Fatal(err)
	}

	cfg.VocabSize = 2
	ds, err := PrepareData(cfg, tok, false)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Vocab.Size() != 3 {
		t.Fatalf("vocab has %d entries, want 2 words + <unk>", ds.Vocab.Size())
	}
	onDisk, err := ImportVocabJSON(cfg.VocabPath)
	if err != nil || onDisk.Size() != 3 {
		t.Fatalf("vocab.json not rewritten: %d entries, %v", onDisk.Size(), err)
	}

	// the rebuilt cache now matches and serves without the raw files
	os.Remove(cfg.TrainPath)
	os.Remove(cfg.ValPath)
	if ds, err = PrepareData(cfg, tok, false); err != nil || ds.Vocab.Size() != 3 {
		t.Fatalf("cache after rebuild: %v", err)
	}
}

func TestPrepareDataRebuildsOnCorpusChange(t *testing.T) {
	cfg := writeCorpus(t, t.TempDir())
	tok := loadTestTokenizer(t)
	if _, err := PrepareData(cfg, tok, false); err != nil {
		t.Fatal(err)
	}

	more := "the cat sat on the mat .\nthe dog sat .\nthe cat ran .\nthe bird flew away .\n"
	if err := os.WriteFile(cfg.TrainPath, []byte(more), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := PrepareData(cfg, tok, false)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Train.Pairs() != 4 {
		t.Fatalf("train pairs = %d, want 4 from the edited corpus", ds.Train.Pairs())
	}
	if _, ok := ds.Vocab.TokenToID["bird"]; !ok {
		t.Fatal("vocabulary was not rebuilt from the edited corpus")
	}
}

func TestPrepareDataIgnoresCacheWithoutManifest(t *testing.T) {
	cfg := writeCorpus(t, t.TempDir())
	tok := loadTestTokenizer(t)
	if _, err := PrepareData(cfg, tok, false); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(manifestPath(cfg)); err != nil {
		t.Fatal(err)
	}
	if err := ExportVocabJSON(NewVocabulary(map[string]int{"<unk>": 1, "zzz": 2}), cfg.VocabPath); err != nil {
		t.Fatal(err)
	}

	ds, err := PrepareData(cfg, tok, false)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Vocab.TokenToID["the"] != 2 {
		t.Fatalf("vocab = %v, want a rebuild from the corpus", ds.Vocab.TokenToID)
	}
	if _, err := readManifest(cfg); err != nil {
		t.Fatalf("manifest not rewritten: %v", err)
	}
}
