package cli

import (
	"github.com/spacemonkeygo/errors"
)

type ExitCode byte

const (
	EXIT_BADARGS      = ExitCode(1)
	EXIT_UNKNOWNPANIC = ExitCode(2)   // same code as golang uses when the process dies naturally on an unhandled panic.
	EXIT_USER         = ExitCode(3)   // usage and configuration errors: things the user can fix.
	EXIT_SETUP        = ExitCode(255) // the chroot could not be set up; the command never ran.
)

var ExitCodeKey = errors.GenSym()

/*
	CLI errors are the last line: they should be formatted to be user-facing.
	The main method will convert a CLIError into a short and well-formatted
	message, and will *not* include stack traces unless the user is running
	with debug mode enabled.

	Errors that are a dwight bug or unknown territory should *not* be mapped
	into a CLIError.
*/
var Error *errors.ErrorClass = errors.NewClass("CLIError")

/*
	Exit is not really an error: it carries the exit code of a command run
	in a chroot out to the main method, which exits with that code quietly.
*/
var Exit *errors.ErrorClass = errors.NewClass("CLIExit")

/*
	Use this to set a specific error code the process should exit with
	when producing a `cli.Error` or `cli.Exit`.

	Example: `cli.Error.NewWith("something terrible!", SetExitCode(EXIT_BADARGS))`
*/
func SetExitCode(code ExitCode) errors.ErrorOption {
	return errors.SetData(ExitCodeKey, code)
}

// Reads the exit code from an error, or returns `otherwise` if it has none.
func GetExitCode(err error, otherwise ExitCode) ExitCode {
	code, ok := errors.GetData(err, ExitCodeKey).(ExitCode)
	if !ok {
		return otherwise
	}
	return code
}
