/*
	Package fs has the small filesystem helpers the cache needs:
	size accounting and removal of whole cache items.
*/
package fs

import (
	"os"
	"path/filepath"
)

/*
	Sums the sizes of all regular files under `path`.

	Symlinks are not followed and count for nothing, nor do directories
	or device nodes.  If `path` is itself a regular file, its size is
	returned.  A path that doesn't exist has size zero.
*/
func TotalSize(path string) (int64, error) {
	var total int64
	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == path {
				return filepath.SkipDir
			}
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, ioError(err)
	}
	return total, nil
}
