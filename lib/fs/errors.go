package fs

import (
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/def"
)

var Error *errors.ErrorClass = def.RuntimeError.NewClass("FSError")

func ioError(err error) error {
	return Error.Wrap(errors.IOError.Wrap(err))
}
