package environment

import (
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/def"
)

/*
	Raised when dwight isn't running as root.  Mount namespaces, mounts,
	and chroot all need it.
*/
var NotRootError *errors.ErrorClass = def.UsageError.NewClass("NotRootError")

/*
	Raised when a resolved root image or include doesn't exist on the host,
	or exists but can't be mounted.
*/
var CannotMountPath *errors.ErrorClass = def.RuntimeError.NewClass("CannotMountPath")

/*
	Raised inside the child for anything that goes wrong between starting
	and exec'ing the command.  These never reach the parent as errors; the
	child exits with `ExitSetupFailed` instead.
*/
var SetupError *errors.ErrorClass = def.RuntimeError.NewClass("SetupError")

/*
	Raised when the child can't be started or waited on.
*/
var LaunchError *errors.ErrorClass = def.RuntimeError.NewClass("LaunchError")

// Exit code of a child that failed before running the command.
const ExitSetupFailed = 255
