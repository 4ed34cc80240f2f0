package resource

import (
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/def"
	"polydawn.net/dwight/lib/shell"
)

/*
	Raised when a pin is malformed: more than one of commit, branch, and tag
	given, or any pin given for a resource that can't be pinned.
*/
var InvalidPinError *errors.ErrorClass = def.UsageError.NewClass("InvalidPinError")

/*
	Raised when content can't be fetched.  This is a kind of
	`shell.CommandFailed`; for HTTP downloads the "command" is the request.
*/
var FetchFailed *errors.ErrorClass = shell.CommandFailed.NewClass("FetchFailed")
