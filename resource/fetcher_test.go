package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/cache"
	"polydawn.net/dwight/lib/shell"
	"polydawn.net/dwight/testutil"
)

/*
	Records commands instead of running them.  A `git clone` or `hg clone`
	populates its target dir with a single file so there's something to
	measure; a command listed in `fail` exits with code 1.
*/
type recorder struct {
	ran  []shell.Cmd
	fail map[string]bool
}

func (r *recorder) Run(c shell.Cmd) error {
	r.ran = append(r.ran, c)
	if r.fail[c.Args[0]+" "+c.Args[1]] {
		return shell.CommandFailed.NewWith(fmt.Sprintf("%q exited with code 1", c.String()),
			errors.SetData(shell.CommandKey, c.String()),
			errors.SetData(shell.ExitCodeKey, 1),
		)
	}
	if len(c.Args) > 1 && c.Args[1] == "clone" {
		testutil.WriteFile(filepath.Join(c.Args[len(c.Args)-1], "somefile.txt"), "hello")
	}
	return nil
}

func (r *recorder) commands() []string {
	var cmds []string
	for _, c := range r.ran {
		cmds = append(cmds, c.String())
	}
	return cmds
}

func TestFetchCommands(t *testing.T) {
	Convey("Given a fetcher with a recording runner", t, testutil.WithTmpdir(func(c C) {
		rec := &recorder{}
		f := Fetcher{
			Run: rec,
			Env: map[string]string{"HOME": "/home/someone", "USER": "someone"},
			Log: testutil.TestLogger(c),
		}
		dir, _ := filepath.Abs("item")
		So(os.MkdirAll(dir, 0755), ShouldBeNil)

		Convey("Unpinned git clones the default branch", func() {
			path, err := f.Fetch(Git{URL: "git://server/repo"}, dir)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, dir)
			So(rec.commands(), ShouldResemble, []string{"git clone git://server/repo " + dir})
			So(rec.ran[0].Env["HOME"], ShouldEqual, "/home/someone")
		})

		Convey("Branch pins clone that branch", func() {
			_, err := f.Fetch(Git{URL: "ssh+git://server/repo", Pin: Pin{Branch: "dev"}}, dir)
			So(err, ShouldBeNil)
			So(rec.commands(), ShouldResemble, []string{"git clone --branch dev ssh://server/repo " + dir})
		})

		Convey("Commit pins check out after cloning", func() {
			_, err := f.Fetch(Git{URL: "git://server/repo", Pin: Pin{Commit: "abc123"}}, dir)
			So(err, ShouldBeNil)
			So(rec.commands(), ShouldResemble, []string{
				"git clone git://server/repo " + dir,
				"git checkout abc123",
			})
			So(rec.ran[1].Cwd, ShouldEqual, dir)
		})

		Convey("Mercurial tags update after cloning", func() {
			_, err := f.Fetch(Mercurial{URL: "http+hg://server:8000/repo", Pin: Pin{Tag: "v1"}}, dir)
			So(err, ShouldBeNil)
			So(rec.commands(), ShouldResemble, []string{
				"hg clone http://server:8000/repo " + dir,
				"hg update --rev v1",
			})
		})

		Convey("Stale content in the target is cleared before cloning", func() {
			testutil.WriteFile(filepath.Join(dir, "stale"), "old")
			_, err := f.Fetch(Git{URL: "git://server/repo"}, dir)
			So(err, ShouldBeNil)
			So(filepath.Join(dir, "stale"), testutil.ShouldBeNotFile)
		})

		Convey("Clone failures are FetchFailed", func() {
			rec.fail = map[string]bool{"git clone": true}
			_, err := f.Fetch(Git{URL: "git://server/repo"}, dir)
			So(err, testutil.ShouldBeErrorClass, FetchFailed)
			So(err, testutil.ShouldBeErrorClass, shell.CommandFailed)
			So(shell.FailedExitCode(err), ShouldEqual, 1)
			So(shell.FailedCommand(err), ShouldEqual, "git clone git://server/repo "+dir)
		})

		Convey("Refreshing", func() {
			Convey("pulls unpinned repos", func() {
				changed, err := f.Refresh(Git{URL: "git://server/repo"}, dir)
				So(err, ShouldBeNil)
				So(changed, ShouldBeTrue)
				So(rec.commands(), ShouldResemble, []string{"git pull"})
				So(rec.ran[0].Cwd, ShouldEqual, dir)
			})
			Convey("pulls the pinned branch", func() {
				_, err := f.Refresh(Git{URL: "git://server/repo", Pin: Pin{Branch: "dev"}}, dir)
				So(err, ShouldBeNil)
				So(rec.commands(), ShouldResemble, []string{"git pull origin dev"})
			})
			Convey("pulls and updates mercurial", func() {
				_, err := f.Refresh(Mercurial{URL: "http+hg://server/repo", Pin: Pin{Branch: "stable"}}, dir)
				So(err, ShouldBeNil)
				So(rec.commands(), ShouldResemble, []string{"hg pull --update --branch stable"})
			})
			Convey("leaves fixed revisions alone", func() {
				changed, err := f.Refresh(Git{URL: "git://server/repo", Pin: Pin{Tag: "v1"}}, dir)
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				changed, err = f.Refresh(Mercurial{URL: "http+hg://server/repo", Pin: Pin{Commit: "abc"}}, dir)
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
				So(rec.ran, ShouldBeEmpty)
			})
			Convey("leaves downloads alone", func() {
				changed, err := f.Refresh(HTTP{URL: "http://server/img"}, dir)
				So(err, ShouldBeNil)
				So(changed, ShouldBeFalse)
			})
		})
	}))
}

func TestResolve(t *testing.T) {
	Convey("Given a cache and a recording fetcher", t, testutil.WithTmpdir(func(c C) {
		log := testutil.TestLogger(c)
		ch, err := cache.Open("cache", log)
		So(err, ShouldBeNil)
		Reset(func() { ch.Close() })
		rec := &recorder{}
		f := Fetcher{Run: rec, Log: log}
		res := Git{URL: "git://server/repo"}

		Convey("Local paths resolve to themselves, uncached", func() {
			path, key, err := f.Resolve(Local{Path: "/srv/tree"}, ch)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/srv/tree")
			So(key, ShouldBeNil)
			So(ch.Items(), ShouldBeEmpty)
		})

		Convey("First resolution fetches from scratch", func() {
			path, key, err := f.Resolve(res, ch)
			So(err, ShouldBeNil)
			So(path, testutil.ShouldBeFile, os.ModeDir)
			So(filepath.Join(path, "somefile.txt"), testutil.ShouldBeFile)
			So(*key, ShouldResemble, cache.Key{Kind: "git", URL: "git://server/repo"})
			So(ch.Items(), ShouldHaveLength, 1)
			So(ch.Items()[0].Size, ShouldEqual, 5)

			Convey("Second resolution refreshes the same path", func() {
				again, _, err := f.Resolve(res, ch)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, path)
				So(rec.commands()[len(rec.ran)-1], ShouldEqual, "git pull")
				So(ch.Items(), ShouldHaveLength, 1)
			})

			Convey("A different pin gets a different path", func() {
				other, _, err := f.Resolve(Git{URL: "git://server/repo", Pin: Pin{Branch: "dev"}}, ch)
				So(err, ShouldBeNil)
				So(other, ShouldNotEqual, path)
				So(ch.Items(), ShouldHaveLength, 2)
			})
		})

		Convey("Failed fetches leave nothing behind", func() {
			rec.fail = map[string]bool{"git clone": true}
			_, _, err := f.Resolve(res, ch)
			So(err, testutil.ShouldBeErrorClass, FetchFailed)
			So(ch.Items(), ShouldBeEmpty)
			entries, _ := os.ReadDir("cache/items")
			So(entries, ShouldBeEmpty)
		})
	}))
}
