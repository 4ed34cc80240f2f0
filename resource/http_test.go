package resource

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"polydawn.net/dwight/cache"
	"polydawn.net/dwight/lib/shell"
	"polydawn.net/dwight/testutil"
)

func TestHTTPFetch(t *testing.T) {
	Convey("Given an HTTP server", t, testutil.WithTmpdir(func(c C) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			switch r.URL.Path {
			case "/images/root.squashfs", "/":
				w.Write([]byte("squashy"))
			default:
				http.NotFound(w, r)
			}
		}))
		Reset(srv.Close)

		log := testutil.TestLogger(c)
		f := Fetcher{Run: &recorder{}, HTTP: srv.Client(), Log: log}
		dir, _ := filepath.Abs("item")
		So(os.MkdirAll(dir, 0755), ShouldBeNil)

		Convey("Downloads land under their basename", func() {
			path, err := f.Fetch(HTTP{URL: srv.URL + "/images/root.squashfs"}, dir)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join(dir, "root.squashfs"))
			body, _ := ioutil.ReadFile(path)
			So(string(body), ShouldEqual, "squashy")
		})

		Convey("URLs without a basename get a default name", func() {
			path, err := f.Fetch(HTTP{URL: srv.URL + "/"}, dir)
			So(err, ShouldBeNil)
			So(filepath.Base(path), ShouldEqual, defaultDownloadName)
		})

		Convey("Error statuses are FetchFailed", func() {
			_, err := f.Fetch(HTTP{URL: srv.URL + "/missing"}, dir)
			So(err, testutil.ShouldBeErrorClass, FetchFailed)
			So(err.Error(), ShouldContainSubstring, "404")
			So(shell.FailedCommand(err), ShouldEqual, "GET "+srv.URL+"/missing")
			So(shell.FailedExitCode(err), ShouldEqual, -1)
			So(err.Error(), ShouldNotContainSubstring, "%!")
		})

		Convey("Resolving through the cache downloads once", func() {
			ch, err := cache.Open("cache", log)
			So(err, ShouldBeNil)
			Reset(func() { ch.Close() })
			res := HTTP{URL: srv.URL + "/images/root.squashfs"}

			path, key, err := f.Resolve(res, ch)
			So(err, ShouldBeNil)
			So(path, testutil.ShouldBeFile, os.FileMode(0))
			So(key.Kind, ShouldEqual, "http")
			So(ch.TotalSize(), ShouldEqual, 7)

			again, _, err := f.Resolve(res, ch)
			So(err, ShouldBeNil)
			So(again, ShouldEqual, path)
			So(hits, ShouldEqual, 1)
		})
	}))

	Convey("Download names", t, func() {
		So(downloadName("http://server/a/b/image.tgz"), ShouldEqual, "image.tgz")
		So(downloadName("http://server/a/b/image.tgz?x=1"), ShouldEqual, "image.tgz")
		So(downloadName("http://server"), ShouldEqual, defaultDownloadName)
		So(downloadName("http://server/"), ShouldEqual, defaultDownloadName)
	})
}
