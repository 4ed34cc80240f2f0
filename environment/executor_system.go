package environment

import (
	"github.com/inconshreveable/log15"
	"golang.org/x/sys/unix"

	"polydawn.net/dwight/lib/shell"
	"polydawn.net/dwight/mount"
)

var _ Executor = &systemExecutor{}

/*
	Does the real thing.  Must run in a process that was started in its own
	mount namespace (see `launch`), or mounts will leak onto the host.
*/
type systemExecutor struct {
	log log15.Logger
	run shell.Runner
}

func (e *systemExecutor) PrivatizeMounts() error {
	return unix.Mount("none", "/", "", unix.MS_REC|unix.MS_PRIVATE, "")
}

func (e *systemExecutor) EnsureLoopDevices(count int) error {
	return mount.EnsureLoopDevices(count, e.log)
}

func (e *systemExecutor) Mount(m mount.Mount) error {
	e.log.Debug("mounting", "source", m.Source, "target", m.Target, "kind", m.Kind)
	return mount.Place(e.run, m)
}

func (e *systemExecutor) Chroot(path string) error {
	e.log.Debug("chroot", "path", path)
	if err := unix.Chroot(path); err != nil {
		return err
	}
	return unix.Chdir("/")
}

func (e *systemExecutor) SetGroups(groups []int) error {
	return unix.Setgroups(groups)
}

func (e *systemExecutor) SetGid(gid int) error {
	return unix.Setgid(gid)
}

func (e *systemExecutor) SetUid(uid int) error {
	return unix.Setuid(uid)
}

func (e *systemExecutor) Chdir(path string) error {
	return unix.Chdir(path)
}

func (e *systemExecutor) Exec(argv []string, env []string) error {
	e.log.Debug("exec", "cmd", argv)
	return unix.Exec(argv[0], argv, env)
}
