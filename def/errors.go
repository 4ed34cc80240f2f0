package def

import (
	"github.com/spacemonkeygo/errors"
)

// grouping, do not instantiate
var Error *errors.ErrorClass = errors.NewClass("DwightError")

/*
	Usage errors are raised when the caller asked for something that can't be
	done as asked: not running as root, contradictory version pins, etc.

	These are reported to the user with a short message and never with a stack.
*/
var UsageError *errors.ErrorClass = Error.NewClass("UsageError")

// grouping, do not instantiate
var ConfigError *errors.ErrorClass = Error.NewClass("ConfigError")

/*
	Raised when the configuration file can't be read or isn't parsable at all.
*/
var CannotLoadConfigError *errors.ErrorClass = ConfigError.NewClass("CannotLoadConfigError")

/*
	Raised when the configuration parses but describes something invalid:
	a missing required field, a field of the wrong type, a malformed include.
*/
var InvalidConfigError *errors.ErrorClass = ConfigError.NewClass("InvalidConfigError")

/*
	Raised when the configuration names fields we've never heard of.

	We refuse these rather than ignoring them, since a typo'd field name
	would otherwise silently fall back to a default.
*/
var UnknownConfigOptionsError *errors.ErrorClass = ConfigError.NewClass("UnknownConfigOptionsError")

/*
	Runtime errors group everything that goes wrong while actually doing the
	work: external commands failing, paths that can't be mounted, cache
	bookkeeping that doesn't line up.
*/
var RuntimeError *errors.ErrorClass = Error.NewClass("RuntimeError")
