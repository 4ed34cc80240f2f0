package resource

import (
	"polydawn.net/dwight/lib/fs"
)

func (f Fetcher) fetchGit(r Git, dir string) error {
	if err := fs.ClearDir(dir); err != nil {
		return err
	}
	args := []string{"git", "clone"}
	if r.Pin.Branch != "" {
		args = append(args, "--branch", r.Pin.Branch)
	}
	args = append(args, transportURL(r.URL), dir)
	if err := f.Run.Run(f.cmd(args...)); err != nil {
		return fetchFailed(err)
	}
	if ref := r.Pin.checkoutRef(); ref != "" {
		if err := f.Run.Run(f.cmd("git", "checkout", ref).InDir(dir)); err != nil {
			return fetchFailed(err)
		}
	}
	return nil
}

func (f Fetcher) refreshGit(r Git, path string) error {
	args := []string{"git", "pull"}
	if r.Pin.Branch != "" {
		args = append(args, "origin", r.Pin.Branch)
	}
	return f.Run.Run(f.cmd(args...).InDir(path))
}
