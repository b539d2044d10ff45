package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// fileMagic opens every entry file. It is followed by the expiry as Unix
// nanoseconds (zero: never) and then the raw payload.
var fileMagic = []byte("TTC1")

const fileHeaderLen = 4 + 8

// FileCache keeps one file per key under dir, fanned out into 256
// subdirectories by the first byte of the key hash.
type FileCache struct {
	dir string
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the payload stored under key. Entries that are expired or do
// not start with a valid header are deleted and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, expires, ok := decodeFileEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes data under key. The entry is written to a temporary file in the
// same directory and renamed into place, so readers see either the old or the
// new entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(encodeFileEntry(data, expires))
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Missing keys are not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry and reports the bytes freed.
func (c *FileCache) Clear() (int64, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var freed int64
	for _, e := range entries {
		sub := filepath.Join(c.dir, e.Name())
		freed += diskUsage(sub)
		if err := os.RemoveAll(sub); err != nil {
			return freed, err
		}
	}
	return freed, nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:])
}

func encodeFileEntry(data []byte, expires time.Time) []byte {
	buf := make([]byte, fileHeaderLen, fileHeaderLen+len(data))
	copy(buf, fileMagic)
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(buf[4:], uint64(expires.UnixNano()))
	}
	return append(buf, data...)
}

func decodeFileEntry(raw []byte) (data []byte, expires time.Time, ok bool) {
	if len(raw) < fileHeaderLen || !bytes.Equal(raw[:4], fileMagic) {
		return nil, time.Time{}, false
	}
	if ns := binary.BigEndian.Uint64(raw[4:fileHeaderLen]); ns != 0 {
		expires = time.Unix(0, int64(ns))
	}
	return raw[fileHeaderLen:], expires, true
}

// diskUsage sums the sizes of the regular files under root, skipping
// anything it cannot stat.
func diskUsage(root string) int64 {
	var n int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			n += info.Size()
		}
		return nil
	})
	return n
}

var _ Cache = (*FileCache)(nil)
