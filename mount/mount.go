/*
	Package mount has the pieces for composing a root filesystem out of
	images and directories: deciding how each source gets mounted, doing
	the mounting, and making sure there are enough loop devices to mount
	images with.

	Mounting goes through the system `mount` command so that loop device
	allocation is handled for us.
*/
package mount

import (
	"os"

	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/def"
	"polydawn.net/dwight/lib/shell"
)

var Error *errors.ErrorClass = def.RuntimeError.NewClass("MountError")

type Kind string

const (
	KindImage = Kind("image") // a filesystem image file, mounted read-only through a loop device.
	KindBind  = Kind("bind")  // a directory, bind mounted.
)

/*
	Mount is one planned mount: `Source` on the host appears at `Target`.
	Targets are host paths (already under the root mount path).
*/
type Mount struct {
	Source string `codec:"source"`
	Target string `codec:"target"`
	Kind   Kind   `codec:"kind"`
}

/*
	Decides how `path` should be mounted: regular files are images,
	directories are bound.  Anything else can't be mounted.
*/
func KindOf(info os.FileInfo) (Kind, error) {
	switch {
	case info.Mode().IsRegular():
		return KindImage, nil
	case info.IsDir():
		return KindBind, nil
	default:
		return "", Error.New("%q is neither a file nor a directory", info.Name())
	}
}

/*
	Placer mounts `src` onto the existing dir `dest`.
*/
type Placer func(run shell.Runner, src, dest string) error

var _ Placer = LoopPlacer
var _ Placer = BindPlacer

// Mounts an image read-only via a loop device.
func LoopPlacer(run shell.Runner, src, dest string) error {
	return run.Run(shell.Command("mount", "-o", "loop,ro", src, dest))
}

// Bind mounts a dir, along with anything mounted beneath it.
func BindPlacer(run shell.Runner, src, dest string) error {
	return run.Run(shell.Command("mount", "--rbind", src, dest))
}

// Picks the placer for a kind of mount.
func PlacerFor(kind Kind) Placer {
	switch kind {
	case KindImage:
		return LoopPlacer
	case KindBind:
		return BindPlacer
	default:
		panic(Error.New("no placer for mount kind %q", kind))
	}
}

/*
	Creates the target dir if needed and mounts onto it.
*/
func Place(run shell.Runner, m Mount) error {
	if err := os.MkdirAll(m.Target, 0755); err != nil {
		return Error.New("cannot create mount target %q: %s", m.Target, err)
	}
	return PlacerFor(m.Kind)(run, m.Source, m.Target)
}
