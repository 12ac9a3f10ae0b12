// Package fileutil provides low-level file helpers shared by the search,
// replace and sync engines: chunked byte comparison, content digests,
// time-preserving copies and size formatting.
package fileutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// CompareChunkSize is the buffer size used for streaming comparison and
// hashing. Cancellation is polled once per chunk.
const CompareChunkSize = 64 * 1024

// Equal reports whether two files have identical byte content. Sizes are
// compared first so differing files are rejected without reading.
func Equal(ctx context.Context, path1, path2 string) (bool, error) {
	info1, err := os.Stat(path1)
	if err != nil {
		return false, err
	}
	info2, err := os.Stat(path2)
	if err != nil {
		return false, err
	}
	if info1.Size() != info2.Size() {
		return false, nil
	}

	f1, err := os.Open(path1)
	if err != nil {
		return false, err
	}
	defer f1.Close()
	f2, err := os.Open(path2)
	if err != nil {
		return false, err
	}
	defer f2.Close()

	return ReadersEqual(ctx, f1, f2)
}

// ReadersEqual compares two readers chunk by chunk.
func ReadersEqual(ctx context.Context, r1, r2 io.Reader) (bool, error) {
	buf1 := make([]byte, CompareChunkSize)
	buf2 := make([]byte, CompareChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		n1, err1 := io.ReadFull(r1, buf1)
		n2, err2 := io.ReadFull(r2, buf2)
		if n1 != n2 || !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false, nil
		}
		end1 := err1 == io.EOF || err1 == io.ErrUnexpectedEOF
		end2 := err2 == io.EOF || err2 == io.ErrUnexpectedEOF
		switch {
		case end1 && end2:
			return true, nil
		case end1 != end2:
			return false, nil
		case err1 != nil:
			return false, err1
		case err2 != nil:
			return false, err2
		}
	}
}

// HashFile computes the xxhash digest of a file's content.
func HashFile(ctx context.Context, path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return HashReader(ctx, f)
}

// HashReader computes the xxhash digest of everything readable from r.
func HashReader(ctx context.Context, r io.Reader) (uint64, error) {
	h := xxhash.New()
	buf := make([]byte, CompareChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			return h.Sum64(), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// FormatSize renders a byte count in a compact human-readable form.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
