package resource

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/lib/shell"
)

// Filename used for downloads whose URL path doesn't end in a usable name.
const defaultDownloadName = "download"

func downloadName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultDownloadName
	}
	name := path.Base(u.Path)
	switch name {
	case "", ".", "/", "..":
		return defaultDownloadName
	}
	return name
}

func (f Fetcher) fetchHTTP(r HTTP, dir string) (string, error) {
	request := "GET " + r.URL
	failed := func(format string, args ...interface{}) error {
		return FetchFailed.NewWith(fmt.Sprintf(format, args...),
			errors.SetData(shell.CommandKey, request),
			errors.SetData(shell.ExitCodeKey, -1),
		)
	}

	resp, err := f.httpClient().Get(r.URL)
	if err != nil {
		return "", failed("fetching %q failed: %s", r.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", failed("fetching %q failed: server said %s", r.URL, resp.Status)
	}

	dest := filepath.Join(dir, downloadName(r.URL))
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", failed("cannot save %q: %s", r.URL, err)
	}
	n, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", failed("downloading %q failed: %s", r.URL, err)
	}
	f.Log.Info("downloaded", "source", r.URL, "path", dest, "size", humanize.IBytes(uint64(n)))
	return dest, nil
}
