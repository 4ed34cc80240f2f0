package testutil

import (
	"os"
	"os/exec"

	"github.com/smartystreets/goconvey/convey"
)

/*
	A requirement returns an empty string if satisfied, or a reason for
	skipping the test if not.
*/
type Requirement func() string

/*
	Decorates a goconvey test so that it's skipped (with the reason printed)
	unless every requirement is satisfied.

	Usage is `Requires(RequiresRoot, RequiresCommand("git"), func() {...})`:
	the test body goes last.
*/
func Requires(items ...interface{}) func(c convey.C) {
	fn := items[len(items)-1]
	return func(c convey.C) {
		for _, item := range items[:len(items)-1] {
			var reason string
			switch req := item.(type) {
			case Requirement:
				reason = req()
			case func() string:
				reason = req()
			default:
				panic("testutil.Requires: requirements must be func() string")
			}
			if reason != "" {
				convey.SkipConvey(reason, func() {})
				return
			}
		}
		switch fn := fn.(type) {
		case func():
			fn()
		case func(c convey.C):
			fn(c)
		}
	}
}

func RequiresRoot() string {
	if os.Geteuid() != 0 {
		return "requires root"
	}
	return ""
}

/*
	Returns a requirement that the named binary is on the path.
*/
func RequiresCommand(name string) Requirement {
	return func() string {
		if _, err := exec.LookPath(name); err != nil {
			return "requires " + name
		}
		return ""
	}
}
