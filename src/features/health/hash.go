package health

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashChunk is how much of each end of a file goes into the partial
// content hash.
const hashChunk = 1 << 20 // 1 MiB

// ContentHash fingerprints a file cheaply: the file size plus its
// first and last megabyte. Files of up to two megabytes are hashed
// whole. Good enough to notice a re-encode or a tag rewrite without
// reading gigabytes.
func ContentHash(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", 0, err
	}
	size := info.Size()

	hasher := sha256.New()
	var sizeBytes [8]byte
	binary.LittleEndian.PutUint64(sizeBytes[:], uint64(size))
	hasher.Write(sizeBytes[:])

	if size <= 2*hashChunk {
		if _, err := io.Copy(hasher, file); err != nil {
			return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
		}
		return hex.EncodeToString(hasher.Sum(nil)), size, nil
	}

	if _, err := io.CopyN(hasher, file, hashChunk); err != nil {
		return "", 0, fmt.Errorf("failed to hash head of %s: %w", path, err)
	}
	if _, err := file.Seek(-hashChunk, io.SeekEnd); err != nil {
		return "", 0, err
	}
	if _, err := io.CopyN(hasher, file, hashChunk); err != nil {
		return "", 0, fmt.Errorf("failed to hash tail of %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
