package environment

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"polydawn.net/dwight/def"
	"polydawn.net/dwight/mount"
	"polydawn.net/dwight/privilege"
	"polydawn.net/dwight/testutil"
)

type fakeInfo struct {
	name string
	mode os.FileMode
}

func (fi fakeInfo) Name() string       { return fi.name }
func (fi fakeInfo) Size() int64        { return 0 }
func (fi fakeInfo) Mode() os.FileMode  { return fi.mode }
func (fi fakeInfo) ModTime() time.Time { return time.Time{} }
func (fi fakeInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fakeInfo) Sys() interface{}   { return nil }

// A stat that knows about a fixed set of files and dirs.
func fakeStat(files map[string]os.FileMode) func(string) (os.FileInfo, error) {
	return func(path string) (os.FileInfo, error) {
		mode, ok := files[path]
		if !ok {
			return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
		}
		return fakeInfo{name: path, mode: mode}, nil
	}
}

func intp(n int) *int { return &n }

func TestBuildPlan(t *testing.T) {
	Convey("Given a configuration with includes", t, func() {
		cfg := &def.Config{
			RootImage: "http://server/root.squashfs",
			Includes: []def.Include{
				{Dest: "/mounts/tree", Source: "/local/tree"},
				{Dest: "/mounts/image", Source: "http://server/extra.squashfs"},
			},
			Environ: map[string]string{"PATH": "$PATH:/opt/bin", "FOO": "bar"},
		}
		cfg.ApplyDefaults("/home/someone")
		resolved := Resolved{
			Root:     "/cache/items/0/root.squashfs",
			Includes: []string{"/local/tree", "/cache/items/1/extra.squashfs"},
		}
		stat := fakeStat(map[string]os.FileMode{
			"/cache/items/0/root.squashfs":  0,
			"/local/tree":                   os.ModeDir,
			"/cache/items/1/extra.squashfs": 0,
		})
		uid, gid := 1000, 1001
		invoker := privilege.Identity{Uid: &uid, Gid: &gid, Groups: []int{1001, 27}}
		environ := []string{"PATH=/usr/bin:/bin", "HOME=/root", "SUDO_UID=1000"}

		plan, err := BuildPlan(cfg, resolved, invoker, environ, "make test", stat)
		So(err, ShouldBeNil)

		Convey("The root is mounted by kind at the root mount path", func() {
			So(plan.Root, ShouldResemble, mount.Mount{
				Source: "/cache/items/0/root.squashfs",
				Target: def.DefaultRootMountPath,
				Kind:   mount.KindImage,
			})
		})

		Convey("Includes land under the root mount path, in order", func() {
			So(plan.Mounts, ShouldResemble, []mount.Mount{
				{Source: "/local/tree", Target: def.DefaultRootMountPath + "/mounts/tree", Kind: mount.KindBind},
				{Source: "/cache/items/1/extra.squashfs", Target: def.DefaultRootMountPath + "/mounts/image", Kind: mount.KindImage},
			})
		})

		Convey("Includes can't climb out of the root", func() {
			cfg.Includes[0].Dest = "/../../../etc"
			cfg.Includes[1].Dest = "/mounts/../../image"
			plan, err := BuildPlan(cfg, resolved, invoker, environ, "make test", stat)
			So(err, ShouldBeNil)
			So(plan.Mounts[0].Target, ShouldEqual, def.DefaultRootMountPath+"/etc")
			So(plan.Mounts[1].Target, ShouldEqual, def.DefaultRootMountPath+"/image")
		})

		Convey("The invoker's identity is used", func() {
			So(plan.Uid, ShouldEqual, 1000)
			So(plan.Gid, ShouldEqual, 1001)
			So(plan.Groups, ShouldResemble, []int{1001, 27})
		})

		Convey("The environment is overlaid and expanded", func() {
			So(plan.Env, ShouldResemble, []string{
				"FOO=bar",
				"HOME=/root",
				"PATH=/usr/bin:/bin:/opt/bin",
				"SUDO_UID=1000",
			})
		})

		Convey("The working dir defaults to /", func() {
			So(plan.Pwd, ShouldEqual, "/")
			So(plan.Command, ShouldEqual, "make test")
			So(plan.LoopDevices, ShouldEqual, 0)
		})

		Convey("Configured identity wins", func() {
			cfg.Uid = intp(0)
			cfg.Gid = intp(5)
			plan, err := BuildPlan(cfg, resolved, invoker, environ, "x", stat)
			So(err, ShouldBeNil)
			So(plan.Uid, ShouldEqual, 0)
			So(plan.Gid, ShouldEqual, 5)
			So(plan.Groups, ShouldResemble, []int{5})
		})

		Convey("A GID override alone keeps the invoker's groups", func() {
			cfg.Gid = intp(5)
			plan, err := BuildPlan(cfg, resolved, invoker, environ, "x", stat)
			So(err, ShouldBeNil)
			So(plan.Uid, ShouldEqual, 1000)
			So(plan.Gid, ShouldEqual, 5)
			So(plan.Groups, ShouldResemble, []int{1001, 27})
		})

		Convey("Loop devices and working dir are carried over", func() {
			cfg.NumLoopDevices = intp(8)
			cfg.Pwd = "/var"
			plan, err := BuildPlan(cfg, resolved, invoker, environ, "x", stat)
			So(err, ShouldBeNil)
			So(plan.LoopDevices, ShouldEqual, 8)
			So(plan.Pwd, ShouldEqual, "/var")
		})

		Convey("A missing include can't be mounted", func() {
			resolved.Includes[0] = "/local/gone"
			_, err := BuildPlan(cfg, resolved, invoker, environ, "x", stat)
			So(err, testutil.ShouldBeErrorClass, CannotMountPath)
			So(err.Error(), ShouldContainSubstring, "/local/gone")
		})

		Convey("A missing root can't be mounted", func() {
			resolved.Root = "/nope"
			_, err := BuildPlan(cfg, resolved, invoker, environ, "x", stat)
			So(err, testutil.ShouldBeErrorClass, CannotMountPath)
		})
	})

	Convey("Without sudo, the plan runs as root", t, func() {
		cfg := &def.Config{RootImage: "/root.img"}
		cfg.ApplyDefaults("/root")
		plan, err := BuildPlan(cfg, Resolved{Root: "/root.img"}, privilege.Identity{}, nil, "true",
			fakeStat(map[string]os.FileMode{"/root.img": 0}))
		So(err, ShouldBeNil)
		So(plan.Uid, ShouldEqual, 0)
		So(plan.Gid, ShouldEqual, 0)
		So(plan.Groups, ShouldResemble, []int{0})
		So(plan.Mounts, ShouldBeEmpty)
	})
}
