package fs

import (
	"os"
	"path/filepath"
)

/*
	Removes `path` whether it's a file or a tree.

	If `path` was a file, its parent dir is also removed when that leaves it
	empty; downloads live alone in a dir of their own, and this tidies up
	the dir along with them.
*/
func RemoveItem(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ioError(err)
	}
	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return ioError(err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil {
		return ioError(err)
	}
	parent := filepath.Dir(path)
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		os.Remove(parent)
	}
	return nil
}

/*
	Empties a dir without removing the dir itself, creating it if necessary.
*/
func ClearDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return ioError(err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return ioError(err)
	}
	for _, ent := range entries {
		if err := os.RemoveAll(filepath.Join(path, ent.Name())); err != nil {
			return ioError(err)
		}
	}
	return nil
}
