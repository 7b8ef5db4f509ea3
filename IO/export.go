package IO

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func shardPath(prefix string, shard int, ext string) string {
	return fmt.Sprintf("%s-%03d.%s", prefix, shard, ext)
}

// ShardMissing = true if no shard files exist yet for prefix
func ShardMissing(prefix string) bool {
	return !fileExists(shardPath(prefix, 0, "bin"))
}

// ExportTokenIDsBinary writes token ID sequences to a binary data file plus an index:
//
//   - .bin = concatenated int32 token sequences
//   - .idx = int64 (offset, length) per sequence
//
// It will split into shards <= maxShardBytes.
func ExportTokenIDsBinary(seqs [][]int, outPrefix string, maxShardBytes int64) (err error) {
	if err := os.MkdirAll(filepath.Dir(outPrefix), 0o755); err != nil {
		return err
	}
	shard := 0
	var (
		dataF, idxF *os.File
		wData, wIdx *bufio.Writer
		cur         int64
	)
	closeShard := func() error {
		if dataF == nil {
			return nil
		}
		if err := wData.Flush(); err != nil {
			return err
		}
		if err := wIdx.Flush(); err != nil {
			return err
		}
		return errors.Join(dataF.Close(), idxF.Close())
	}
	openShard := func() error {
		if err := closeShard(); err != nil {
			return err
		}
		var err error
		if dataF, err = os.Create(shardPath(outPrefix, shard, "bin")); err != nil {
			return err
		}
		if idxF, err = os.Create(shardPath(outPrefix, shard, "idx")); err != nil {
			dataF.Close()
			return err
		}
		wData = bufio.NewWriter(dataF)
		wIdx = bufio.NewWriter(idxF)
		cur = 0
		return nil
	}
	if err := openShard(); err != nil {
		return err
	}
	defer func() {
		if cerr := closeShard(); err == nil {
			err = cerr
		}
	}()

	buf4 := make([]byte, 4)
	buf8 := make([]byte, 8)
	for _, ids := range seqs {
		// rollover if shard too big
		if cur > 0 && cur+int64(4*len(ids)) > maxShardBytes {
			shard++
			if err := openShard(); err != nil {
				return err
			}
		}
		binary.LittleEndian.PutUint64(buf8, uint64(cur))
		if _, err := wIdx.Write(buf8); err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(buf8, uint64(len(ids)))
		if _, err := wIdx.Write(buf8); err != nil {
			return err
		}
		for _, id := range ids {
			binary.LittleEndian.PutUint32(buf4, uint32(id))
			if _, err := wData.Write(buf4); err != nil {
				return err
			}
		}
		cur += int64(4 * len(ids))
	}
	return removeShardsFrom(outPrefix, shard+1)
}

// removeShardsFrom deletes shard first and every later one, so a shorter
// export never reads back shards left by a longer one.
func removeShardsFrom(prefix string, first int) error {
	for s := first; fileExists(shardPath(prefix, s, "bin")); s++ {
		for _, ext := range []string{"bin", "idx"} {
			if err := os.Remove(shardPath(prefix, s, ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove stale shard: %w", err)
			}
		}
	}
	return nil
}

// ImportTokenIDsBinary reads every shard written under prefix back into
// id sequences, in the original order.
func ImportTokenIDsBinary(prefix string) ([][]int, error) {
	if ShardMissing(prefix) {
		return nil, fmt.Errorf("no shards for %s: %w", prefix, os.ErrNotExist)
	}
	var out [][]int
	for shard := 0; fileExists(shardPath(prefix, shard, "bin")); shard++ {
		data, err := os.ReadFile(shardPath(prefix, shard, "bin"))
		if err != nil {
			return nil, err
		}
		idx, err := os.Open(shardPath(prefix, shard, "idx"))
		if err != nil {
			return nil, err
		}
		r := bufio.NewReader(idx)
		buf16 := make([]byte, 16)
		for {
			_, err := io.ReadFull(r, buf16)
			if err == io.EOF {
				break
			}
			if err != nil {
				idx.Close()
				return nil, fmt.Errorf("shard %d index: %w", shard, err)
			}
			start := int64(binary.LittleEndian.Uint64(buf16[:8]))
			n := int64(binary.LittleEndian.Uint64(buf16[8:]))
			if start+4*n > int64(len(data)) {
				idx.Close()
				return nil, fmt.Errorf("shard %d: sequence at %d overruns data", shard, start)
			}
			ids := make([]int, n)
			for i := range ids {
				off := start + int64(4*i)
				ids[i] = int(binary.LittleEndian.Uint32(data[off : off+4]))
			}
			out = append(out, ids)
		}
		idx.Close()
	}
	return out, nil
}
