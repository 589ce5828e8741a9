// Package storage persists generated artifacts and the instance graph.
package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces path with data. Readers see either the old or
// the new content, never a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// WriteAtomic streams fill into a temporary file next to path, syncs it and
// renames it over path. On any error the temporary file is removed and
// path is left untouched.
func WriteAtomic(path string, perm os.FileMode, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErr("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return ioErr("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := fill(tmp); err != nil {
		return ioErr("write", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return ioErr("chmod", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return ioErr("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		return ioErr("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return ioErr("rename", path, err)
	}
	return nil
}
