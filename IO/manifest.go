package IO

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/naimul214/Word-Prediction-API/params"
)

// splitStamp identifies the raw split a cache was built from.
type splitStamp struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// prepManifest sits next to the train shards and records what they were
// built from. The cache is reused only while it still matches.
type prepManifest struct {
	VocabSize    int        `json:"vocab_size"`
	VocabEntries int        `json:"vocab_entries"`
	Train        splitStamp `json:"train"`
	Val          splitStamp `json:"val"`
}

func manifestPath(cfg params.TrainingConfig) string {
	return cfg.TrainIDsPath + ".manifest.json"
}

func stampSplit(path string) (splitStamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return splitStamp{}, err
	}
	return splitStamp{Path: path, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// changed reports why the split at path no longer matches s. A split that
// is gone from disk is not a change: the cache is then its only copy.
func (s splitStamp) changed(path string) string {
	if s.Path != path {
		return fmt.Sprintf("split moved from %s to %s", s.Path, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return ""
	}
	if fi.Size() != s.Size || !fi.ModTime().Equal(s.ModTime) {
		return path + " changed since the cache was built"
	}
	return ""
}

func writeManifest(cfg params.TrainingConfig, m prepManifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(manifestPath(cfg), raw, 0o644)
}

func readManifest(cfg params.TrainingConfig) (prepManifest, error) {
	var m prepManifest
	raw, err := os.ReadFile(manifestPath(cfg))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode %s: %w", manifestPath(cfg), err)
	}
	return m, nil
}

// staleReason is empty when the manifest still describes cfg and vocab.
func (m prepManifest) staleReason(cfg params.TrainingConfig, vocab Vocabulary) string {
	switch {
	case m.VocabSize != cfg.VocabSize:
		return fmt.Sprintf("vocab_size changed from %d to %d", m.VocabSize, cfg.VocabSize)
	case vocab.Size() != m.VocabEntries || vocab.Size() > cfg.VocabSize+1:
		return fmt.Sprintf("%s has %d entries, expected %d", cfg.VocabPath, vocab.Size(), m.VocabEntries)
	}
	if r := m.Train.changed(cfg.TrainPath); r != "" {
		return r
	}
	return m.Val.changed(cfg.ValPath)
}
