package cache

import (
	"os"

	"golang.org/x/sys/unix"
)

/*
	Takes an exclusive advisory lock on `path`, blocking until it's ours.
	Concurrent dwight invocations sharing a cache dir queue up here.
*/
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, CacheIOError.New("cannot open cache lock %q: %s", path, err)
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, CacheIOError.New("cannot lock cache %q: %s", path, err)
	}
	return f, nil
}

func releaseLock(f *os.File) error {
	defer f.Close()
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return CacheIOError.New("cannot unlock cache: %s", err)
	}
	return nil
}
