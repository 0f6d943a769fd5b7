// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/zeebo/blake3"
)

// EntryInfo describes one entry of an existing archive.
type EntryInfo struct {
	Name           string
	Method         uint16
	CompressedSize uint64
	Size           uint64
	Modified       time.Time
	// Digest is the hex BLAKE3-256 of the uncompressed contents.
	Digest string
}

// Inspect reads the archive at path and returns its entries in central
// directory order, hashing each entry's contents.
func Inspect(path string) (entries []EntryInfo, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)

	entries = make([]EntryInfo, 0, len(zr.File))
	for _, f := range zr.File {
		digest, err := digestEntry(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", f.Name, err)
		}
		entries = append(entries, EntryInfo{
			Name:           f.Name,
			Method:         f.Method,
			CompressedSize: f.CompressedSize64,
			Size:           f.UncompressedSize64,
			Modified:       f.Modified,
			Digest:         digest,
		})
	}
	return entries, nil
}

// MethodName returns a short label for a ZIP compression method.
func MethodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method-%d", method)
	}
}

func digestEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
