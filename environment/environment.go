/*
	Package environment runs commands in composed chroots.

	The work is split across two processes.  The parent (the dwight
	process the user started) validates the configuration, resolves every
	resource through the cache as the invoking user, evicts stale cache
	entries, and computes a `Plan`.  It then re-executes itself as a child
	in a fresh mount namespace, hands the plan over a pipe, and waits.

	The child (see `ChildMain`) performs the mounts, chroots, drops to the
	target identity, and execs the command.  Its exit code becomes the exit
	code of `RunCommandInChroot`.
*/
package environment

import (
	"os"

	"github.com/inconshreveable/log15"

	"polydawn.net/dwight/cache"
	"polydawn.net/dwight/def"
	"polydawn.net/dwight/lib/shell"
	"polydawn.net/dwight/privilege"
	"polydawn.net/dwight/resource"
)

type Environment struct {
	Config   *def.Config // defaults already applied.
	Identity privilege.Identity
	Log      log15.Logger
	LogLevel log15.Lvl // passed on to the child.

	run     shell.Runner
	geteuid func() int
	stat    func(string) (os.FileInfo, error)
	launch  func(Plan, log15.Logger) (int, error)
}

func New(cfg *def.Config, id privilege.Identity, log log15.Logger) *Environment {
	return &Environment{
		Config:   cfg,
		Identity: id,
		Log:      log,
		LogLevel: log15.LvlWarn,
		run:      shell.Exec{Log: log},
		geteuid:  os.Geteuid,
		stat:     os.Stat,
		launch:   launch,
	}
}

/*
	Checks that a chroot can be attempted at all: we must be root, and the
	configuration must name a root image.
*/
func (env *Environment) Validate() error {
	if env.geteuid() != 0 {
		return NotRootError.New("dwight must be run as root (try sudo)")
	}
	if env.Config.RootImage == "" {
		return def.InvalidConfigError.New("ROOT_IMAGE must be set")
	}
	return env.Config.Validate()
}

/*
	Opens the cache as the invoking user, runs `fn` on it, and closes it.
	The cache is locked for the duration.
*/
func (env *Environment) WithCache(fn func(*cache.Cache) error) error {
	return env.Identity.AsInvoker(func() error {
		c, err := cache.Open(env.Config.CacheDir, env.Log)
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(c)
	})
}

func (env *Environment) fetcher() resource.Fetcher {
	return resource.Fetcher{
		Run: env.run,
		Env: env.Identity.CommandEnv(),
		Log: env.Log,
	}
}

/*
	Fetches or refreshes the root image and every include, then evicts
	whatever else the cache can spare to get under MAX_CACHE_SIZE.
	Everything happens as the invoking user.

	Resources in use are never evicted.  A failure to evict is returned
	after the rest of the eviction has been attempted and the cache state
	saved.
*/
func (env *Environment) Resolve() (Resolved, error) {
	var resolved Resolved
	err := env.WithCache(func(c *cache.Cache) error {
		fetcher := env.fetcher()
		resolve := func(locator string, pin resource.Pin) (string, error) {
			res, err := resource.New(locator, pin)
			if err != nil {
				return "", err
			}
			path, key, err := fetcher.Resolve(res, c)
			if err != nil {
				return "", err
			}
			if key != nil {
				resolved.Keys = append(resolved.Keys, *key)
			}
			return path, nil
		}

		root, err := resolve(env.Config.RootImage, resource.Pin{})
		if err != nil {
			return err
		}
		resolved.Root = root
		for _, inc := range env.Config.Includes {
			path, err := resolve(inc.Source, resource.Pin{
				Commit: inc.Commit,
				Branch: inc.Branch,
				Tag:    inc.Tag,
			})
			if err != nil {
				return err
			}
			resolved.Includes = append(resolved.Includes, path)
		}

		return c.Cleanup(*env.Config.MaxCacheSize, resolved.Keys)
	})
	return resolved, err
}

/*
	Validates, resolves, and plans; everything short of running `command`.
*/
func (env *Environment) Plan(command string) (Plan, error) {
	if err := env.Validate(); err != nil {
		return Plan{}, err
	}
	resolved, err := env.Resolve()
	if err != nil {
		return Plan{}, err
	}
	plan, err := BuildPlan(env.Config, resolved, env.Identity, os.Environ(), command, env.stat)
	if err != nil {
		return Plan{}, err
	}
	plan.LogLevel = env.LogLevel.String()
	return plan, nil
}

/*
	Runs `command` with `/bin/sh -c` inside the composed chroot, returning
	its exit code.  A command killed by a signal reports 128 plus the
	signal number.  If the child fails before the command starts, the code
	is `ExitSetupFailed` and the reason is in the child's log output.

	Errors are returned only for failures before the child starts.
*/
func (env *Environment) RunCommandInChroot(command string) (int, error) {
	plan, err := env.Plan(command)
	if err != nil {
		return -1, err
	}
	env.Log.Info("launching", "root", plan.Root.Source, "mounts", len(plan.Mounts), "cmd", command)
	return env.launch(plan, env.Log)
}
