package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
)

// DirectoryHash computes the stable content digest of spec.md §3: a
// SHA-256 over the sorted list of (filename, file size) pairs. It
// deliberately excludes modification times and file contents beyond
// size, so rewriting tags does not change the hash (invariant 4 of
// spec.md §8).
func DirectoryHash(files []string) (string, error) {
	type entry struct {
		name string
		size int64
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return "", err
		}
		entries = append(entries, entry{name: filepath.Base(f), size: info.Size()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.name))
		h.Write([]byte{0})
		h.Write([]byte(int64ToBytes(e.size)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func int64ToBytes(v int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
