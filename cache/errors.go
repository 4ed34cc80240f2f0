package cache

import (
	"github.com/spacemonkeygo/errors"

	"polydawn.net/dwight/def"
)

/*
	Raised when asked about a path the cache has no record of.
*/
var NotFound *errors.ErrorClass = def.RuntimeError.NewClass("NotFound")

/*
	Raised for failures reading or writing the cache's own bookkeeping:
	the state file, the lock, the items dir.
*/
var CacheIOError *errors.ErrorClass = def.RuntimeError.NewClass("CacheIOError")
