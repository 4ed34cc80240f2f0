package resource

import (
	"net/http"

	"github.com/inconshreveable/log15"
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/lib/shell"
)

/*
	Fetcher carries what's needed to fetch and refresh resources:
	a way to run git and hg, the environment they should see, and an
	HTTP client.
*/
type Fetcher struct {
	Run  shell.Runner
	Env  map[string]string // for external tools; typically the invoker's HOME and USER.
	HTTP *http.Client      // nil for `http.DefaultClient`.
	Log  log15.Logger
}

func (f Fetcher) cmd(args ...string) shell.Cmd {
	return shell.Command(args...).WithEnv(f.Env)
}

func (f Fetcher) httpClient() *http.Client {
	if f.HTTP == nil {
		return http.DefaultClient
	}
	return f.HTTP
}

/*
	Fetches `res` into `dir`, which should be freshly allocated for it.
	Returns the path where the content ended up: `dir` itself for
	repositories, or a file within it for downloads.

	Local resources are not fetched; their path is returned unchanged.
*/
func (f Fetcher) Fetch(res Resource, dir string) (string, error) {
	f.Log.Info("fetching", "kind", res.Kind(), "source", res.Locator(), "path", dir)
	switch r := res.(type) {
	case Local:
		return r.Path, nil
	case Git:
		return dir, f.fetchGit(r, dir)
	case Mercurial:
		return dir, f.fetchHg(r, dir)
	case HTTP:
		return f.fetchHTTP(r, dir)
	default:
		panic("unreachable")
	}
}

/*
	Brings previously fetched content at `path` up to date.

	Resources pinned to a commit or tag never change, and neither do
	downloads; refreshing them does nothing.  Reports whether the content
	may have changed.
*/
func (f Fetcher) Refresh(res Resource, path string) (changed bool, err error) {
	switch r := res.(type) {
	case Git:
		if r.Pin.IsFixed() {
			return false, nil
		}
		f.Log.Info("refreshing", "kind", res.Kind(), "source", res.Locator(), "path", path)
		return true, f.refreshGit(r, path)
	case Mercurial:
		if r.Pin.IsFixed() {
			return false, nil
		}
		f.Log.Info("refreshing", "kind", res.Kind(), "source", res.Locator(), "path", path)
		return true, f.refreshHg(r, path)
	default:
		return false, nil
	}
}

// Rewraps a command failure from a fetch as `FetchFailed`, keeping its details.
func fetchFailed(err error) error {
	if err == nil || errors.GetClass(err).Is(FetchFailed) {
		return err
	}
	return FetchFailed.NewWith(errors.GetMessage(err),
		errors.SetData(shell.CommandKey, shell.FailedCommand(err)),
		errors.SetData(shell.ExitCodeKey, shell.FailedExitCode(err)),
	)
}
