package resource

import (
	"polydawn.net/dwight/lib/fs"
)

func (f Fetcher) fetchHg(r Mercurial, dir string) error {
	if err := fs.ClearDir(dir); err != nil {
		return err
	}
	args := []string{"hg", "clone"}
	if r.Pin.Branch != "" {
		args = append(args, "--branch", r.Pin.Branch)
	}
	args = append(args, transportURL(r.URL), dir)
	if err := f.Run.Run(f.cmd(args...)); err != nil {
		return fetchFailed(err)
	}
	if ref := r.Pin.checkoutRef(); ref != "" {
		if err := f.Run.Run(f.cmd("hg", "update", "--rev", ref).InDir(dir)); err != nil {
			return fetchFailed(err)
		}
	}
	return nil
}

func (f Fetcher) refreshHg(r Mercurial, path string) error {
	args := []string{"hg", "pull", "--update"}
	if r.Pin.Branch != "" {
		args = append(args, "--branch", r.Pin.Branch)
	}
	return f.Run.Run(f.cmd(args...).InDir(path))
}
