// Package filex contains filesystem helpers for entry file storage.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafeName is returned for names that would escape their directory.
var ErrUnsafeName = errors.New("unsafe file name")

// EnsureDir creates dir (and parents) if needed and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// ShardPrefix is the lowercased first two characters of id, or the whole id
// lowercased when it is shorter.
func ShardPrefix(id string) string {
	if len(id) > 2 {
		id = id[:2]
	}
	return strings.ToLower(id)
}

// BaseName strips any directory part a client put into a file name.
// "", ".", ".." and names reduced to nothing are rejected.
func BaseName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	switch base {
	case "", ".", "..", "/":
		return "", ErrUnsafeName
	}
	return base, nil
}

// Ext returns the lowercased extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// WriteAtomic copies r into dir/name through a temp file in the same
// directory and renames it into place. It returns the final path.
func WriteAtomic(dir, name string, r io.Reader) (string, error) {
	if _, err := EnsureDir(dir); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return dst, nil
}
