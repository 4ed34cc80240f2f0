package resource

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"polydawn.net/dwight/cache"
	"polydawn.net/dwight/def"
	"polydawn.net/dwight/testutil"
)

func TestClassify(t *testing.T) {
	Convey("Locators are classified by scheme", t, func() {
		for locator, kind := range map[string]Kind{
			"/a/b/c":                         KindLocal,
			"relative/path":                  KindLocal,
			"ftp://server/file":              KindLocal,
			"git://git_server/repo":          KindGit,
			"ssh+git://git_server/repo":      KindGit,
			"http+hg://server:8000/repo":     KindMercurial,
			"https+hg://server/repo":         KindMercurial,
			"http://server/file.tar.gz":      KindHTTP,
			"https://secure_server/file.tgz": KindHTTP,
		} {
			So(Classify(locator), ShouldEqual, kind)
		}
	})

	Convey("Transport URLs lose the tool decoration", t, func() {
		So(transportURL("ssh+git://h/r"), ShouldEqual, "ssh://h/r")
		So(transportURL("http+hg://h:8000/r"), ShouldEqual, "http://h:8000/r")
		So(transportURL("https+hg://h/r"), ShouldEqual, "https://h/r")
		So(transportURL("git://h/r"), ShouldEqual, "git://h/r")
	})
}

func TestNew(t *testing.T) {
	Convey("Building resources", t, func() {
		Convey("picks the variant by scheme", func() {
			res, err := New("git://server/repo", Pin{Branch: "dev"})
			So(err, ShouldBeNil)
			So(res, ShouldResemble, Git{URL: "git://server/repo", Pin: Pin{Branch: "dev"}})

			res, err = New("http+hg://server/repo", Pin{Tag: "v1"})
			So(err, ShouldBeNil)
			So(res, ShouldResemble, Mercurial{URL: "http+hg://server/repo", Pin: Pin{Tag: "v1"}})

			res, err = New("http://server/img", Pin{})
			So(err, ShouldBeNil)
			So(res, ShouldResemble, HTTP{URL: "http://server/img"})

			res, err = New("/srv/img", Pin{})
			So(err, ShouldBeNil)
			So(res, ShouldResemble, Local{Path: "/srv/img"})
		})

		Convey("refuses more than one pin", func() {
			for _, pin := range []Pin{
				{Commit: "abc", Branch: "dev"},
				{Commit: "abc", Tag: "v1"},
				{Branch: "dev", Tag: "v1"},
				{Commit: "abc", Branch: "dev", Tag: "v1"},
			} {
				_, err := New("git://server/repo", pin)
				So(err, testutil.ShouldBeErrorClass, InvalidPinError)
				So(err, testutil.ShouldBeErrorClass, def.UsageError)
			}
		})

		Convey("refuses pins where they mean nothing", func() {
			_, err := New("/srv/img", Pin{Branch: "dev"})
			So(err, testutil.ShouldBeErrorClass, InvalidPinError)
			_, err = New("http://server/img", Pin{Commit: "abc"})
			So(err, testutil.ShouldBeErrorClass, InvalidPinError)
		})
	})
}

func TestKeys(t *testing.T) {
	Convey("Cache keys", t, func() {
		Convey("are deterministic", func() {
			a, _ := New("git://server/repo", Pin{Commit: "abc"})
			b, _ := New("git://server/repo", Pin{Commit: "abc"})
			ka, ok := KeyOf(a)
			So(ok, ShouldBeTrue)
			kb, _ := KeyOf(b)
			So(ka, ShouldResemble, kb)
			So(ka, ShouldResemble, cache.Key{Kind: "git", URL: "git://server/repo", Commit: "abc"})
		})

		Convey("differ with the pin", func() {
			seen := map[cache.Key]bool{}
			for _, pin := range []Pin{{}, {Commit: "abc"}, {Branch: "abc"}, {Tag: "abc"}} {
				res, _ := New("git://server/repo", pin)
				k, _ := KeyOf(res)
				So(seen[k], ShouldBeFalse)
				seen[k] = true
			}
		})

		Convey("differ between git and hg", func() {
			g, _ := KeyOf(Git{URL: "u"})
			h, _ := KeyOf(Mercurial{URL: "u"})
			So(g, ShouldNotResemble, h)
		})

		Convey("carry only kind and url for downloads", func() {
			k, ok := KeyOf(HTTP{URL: "http://server/img"})
			So(ok, ShouldBeTrue)
			So(k, ShouldResemble, cache.Key{Kind: "http", URL: "http://server/img"})
		})

		Convey("don't exist for local paths", func() {
			_, ok := KeyOf(Local{Path: "/srv"})
			So(ok, ShouldBeFalse)
		})
	})
}
