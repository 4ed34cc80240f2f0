/*
	Package def holds the configuration types consumed by the rest of dwight,
	and the restricted parser that produces them.

	A configuration names one root image and any number of includes;
	each of those is a locator string that the `resource` package knows
	how to classify and fetch.  Everything else in the configuration
	describes the identity and environment the command will run with.
*/
package def

import (
	"os/user"
	"path/filepath"
)

const (
	DefaultMaxCacheSize  = 10 * 1024 * 1024 * 1024 // 10 GiB.
	DefaultRootMountPath = "/var/lib/dwight/root"
	DefaultPwd           = "/"
)

type Config struct {
	RootImage      string            `codec:"ROOT_IMAGE"`       // locator for the base filesystem.  required.
	Includes       []Include         `codec:"INCLUDES"`         // applied in order.
	Environ        map[string]string `codec:"ENVIRON"`          // overlaid on the inherited environment inside the chroot.
	Uid            *int              `codec:"UID"`              // nil means "the invoking (sudo) user".
	Gid            *int              `codec:"GID"`              // nil means "the invoking (sudo) group".
	NumLoopDevices *int              `codec:"NUM_LOOP_DEVICES"` // nil means don't touch /dev.
	Pwd            string            `codec:"PWD"`              // working dir after chroot.
	CacheDir       string            `codec:"CACHE_DIR"`        // empty means the default under the invoking user's home.
	MaxCacheSize   *int64            `codec:"-"`                // parsed from MAX_CACHE_SIZE, which may be humanized.  nil means the default.
	RootMountPath  string            `codec:"ROOT_MOUNT_PATH"`  // where the root image is mounted before chroot.
}

/*
	Include describes one additional layer mounted into the composed root.

	At most one of Commit, Branch, and Tag may be set, and only for
	version-controlled sources; that's checked when the include is turned
	into a resource, not here.
*/
type Include struct {
	Dest   string `codec:"dest"`   // absolute path inside the chroot.
	Source string `codec:"source"` // locator string.
	Commit string `codec:"commit,omitempty"`
	Branch string `codec:"branch,omitempty"`
	Tag    string `codec:"tag,omitempty"`
}

func (i Include) String() string {
	return i.Source + " -> " + i.Dest
}

/*
	Fills in defaults for anything left unset.  Safe to call more than once.

	The default cache dir is resolved against `home`, which should be the home
	directory of the invoking user rather than root's.
*/
func (cfg *Config) ApplyDefaults(home string) {
	if cfg.Environ == nil {
		cfg.Environ = map[string]string{}
	}
	if cfg.Pwd == "" {
		cfg.Pwd = DefaultPwd
	}
	if cfg.MaxCacheSize == nil {
		size := int64(DefaultMaxCacheSize)
		cfg.MaxCacheSize = &size
	}
	if cfg.RootMountPath == "" {
		cfg.RootMountPath = DefaultRootMountPath
	}
	if cfg.CacheDir == "" {
		if home == "" {
			if u, err := user.Current(); err == nil {
				home = u.HomeDir
			}
		}
		cfg.CacheDir = filepath.Join(home, ".dwight", "cache")
	}
}

// Checks a config for irrecoverable errors.
func (cfg Config) Validate() error {
	if cfg.RootImage == "" {
		return InvalidConfigError.New("ROOT_IMAGE must be set")
	}
	for i, inc := range cfg.Includes {
		if inc.Source == "" {
			return InvalidConfigError.New("include %d: source must be set", i)
		}
		if !filepath.IsAbs(inc.Dest) {
			return InvalidConfigError.New("include %d (%s): dest must be an absolute path", i, inc.Source)
		}
	}
	if !filepath.IsAbs(cfg.Pwd) {
		return InvalidConfigError.New("PWD must be an absolute path, not %q", cfg.Pwd)
	}
	if cfg.NumLoopDevices != nil && *cfg.NumLoopDevices < 0 {
		return InvalidConfigError.New("NUM_LOOP_DEVICES must not be negative")
	}
	if cfg.MaxCacheSize != nil && *cfg.MaxCacheSize < 0 {
		return InvalidConfigError.New("MAX_CACHE_SIZE must not be negative")
	}
	return nil
}
