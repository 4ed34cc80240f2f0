/*
	Package config gathers the few settings dwight takes from its
	process environment rather than from a configuration file.

	Values here are defaults: anything given on the command line or in
	the configuration file wins.
*/
package config

import (
	"os"
	"path/filepath"
)

// Name of the configuration file used when none is given.
const DefaultConfigFile = "dwight.yaml"

/*
	Return the path to the configuration file to load.

	Defaults to `dwight.yaml` in the current directory, and can be
	set by the `DWIGHT_CONFIG` environment variable.
*/
func GetConfigPath() string {
	pth := os.Getenv("DWIGHT_CONFIG")
	if pth == "" {
		pth = DefaultConfigFile
	}
	return pth
}

/*
	Return the cache dir requested by the environment, or empty string
	if there is no preference (and the configuration's `CACHE_DIR` or the
	default under the invoking user's home should be used).

	Set by the `DWIGHT_CACHE_DIR` environment variable.  Relative paths are
	made absolute against the current working directory.
*/
func GetCacheDir() string {
	pth := os.Getenv("DWIGHT_CACHE_DIR")
	if pth == "" {
		return ""
	}
	pth, err := filepath.Abs(pth)
	if err != nil {
		panic(err)
	}
	return pth
}

/*
	True if either `DEBUG` or `DWIGHT_DEBUG` is set to anything but empty.

	Debug mode raises log verbosity, and makes unexpected errors panic with
	a full stack instead of writing an error report file.
*/
func DebugEnabled() bool {
	return os.Getenv("DWIGHT_DEBUG") != "" || os.Getenv("DEBUG") != ""
}
