package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/smartystreets/goconvey/convey"
)

/*
	Decorates a goconvey test with a tmpdir.

	The test runs with the tmpdir as its cwd; the tmpdir is removed and the
	previous cwd restored when the convey scope resets.

	See also https://github.com/smartystreets/goconvey/wiki/Decorating-tests-to-provide-common-logic
*/
func WithTmpdir(fn interface{}) func(c convey.C) {
	return func(c convey.C) {
		retreat, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		convey.Reset(func() {
			os.Chdir(retreat)
		})

		tmpBase := "/tmp/dwight-test/"
		err = os.MkdirAll(tmpBase, os.FileMode(0777)|os.ModeSticky)
		if err != nil {
			panic(err)
		}
		tmpdir, err := ioutil.TempDir(tmpBase, "")
		if err != nil {
			panic(err)
		}
		tmpdir, err = filepath.Abs(tmpdir)
		if err != nil {
			panic(err)
		}
		convey.Reset(func() {
			os.RemoveAll(tmpdir)
		})
		err = os.Chdir(tmpdir)
		if err != nil {
			panic(err)
		}

		switch fn := fn.(type) {
		case func():
			fn()
		case func(c convey.C):
			fn(c)
		}
	}
}

// Shorthand for writing a small fixture file, creating parent dirs as needed.
func WriteFile(pth string, body string) {
	if err := os.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		panic(err)
	}
	if err := ioutil.WriteFile(pth, []byte(body), 0644); err != nil {
		panic(err)
	}
}
