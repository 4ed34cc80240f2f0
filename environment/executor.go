package environment

import (
	"polydawn.net/dwight/mount"
)

/*
	Executor performs each step of setting up the chroot.  The child uses
	the real system calls; tests substitute recorders.
*/
type Executor interface {
	PrivatizeMounts() error // keep our mounts from propagating to the host.
	EnsureLoopDevices(count int) error
	Mount(m mount.Mount) error // creates the target as needed.
	Chroot(path string) error  // also moves to the new "/".
	SetGroups(groups []int) error
	SetGid(gid int) error
	SetUid(uid int) error
	Chdir(path string) error
	Exec(argv []string, env []string) error // does not return on success.
}

/*
	Carries out `plan` with `ex`, strictly in order: make mounts private,
	provision loop devices, mount the root then each include, chroot,
	drop to the target identity, move to the working dir, and exec the
	command through `/bin/sh -c`.

	Stops at the first failure.  Returns only on failure (or if the
	executor's `Exec` returns).
*/
func Execute(plan Plan, ex Executor) error {
	if err := ex.PrivatizeMounts(); err != nil {
		return SetupError.New("cannot make mounts private: %s", err)
	}
	if plan.LoopDevices > 0 {
		if err := ex.EnsureLoopDevices(plan.LoopDevices); err != nil {
			return SetupError.New("cannot provision loop devices: %s", err)
		}
	}
	if err := ex.Mount(plan.Root); err != nil {
		return SetupError.New("cannot mount root %q: %s", plan.Root.Source, err)
	}
	for _, m := range plan.Mounts {
		if err := ex.Mount(m); err != nil {
			return SetupError.New("cannot mount %q at %q: %s", m.Source, m.Target, err)
		}
	}
	if err := ex.Chroot(plan.Root.Target); err != nil {
		return SetupError.New("cannot chroot to %q: %s", plan.Root.Target, err)
	}
	// groups and gid before uid; we can't change them once we aren't root.
	if err := ex.SetGroups(plan.Groups); err != nil {
		return SetupError.New("cannot set groups %v: %s", plan.Groups, err)
	}
	if err := ex.SetGid(plan.Gid); err != nil {
		return SetupError.New("cannot set gid %d: %s", plan.Gid, err)
	}
	if err := ex.SetUid(plan.Uid); err != nil {
		return SetupError.New("cannot set uid %d: %s", plan.Uid, err)
	}
	if err := ex.Chdir(plan.Pwd); err != nil {
		return SetupError.New("cannot chdir to %q: %s", plan.Pwd, err)
	}
	if err := ex.Exec([]string{"/bin/sh", "-c", plan.Command}, plan.Env); err != nil {
		return SetupError.New("cannot exec command: %s", err)
	}
	return nil
}
