package environment

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polydawn.net/dwight/cache"
	"polydawn.net/dwight/def"
	"polydawn.net/dwight/mount"
	"polydawn.net/dwight/privilege"
)

/*
	Plan is everything the child needs to set up and run the command.
	It's computed entirely in the parent and sent to the child before the
	child does anything.
*/
type Plan struct {
	Root        mount.Mount   `codec:"root"`
	Mounts      []mount.Mount `codec:"mounts"` // in order; later mounts may land inside earlier ones.
	Uid         int           `codec:"uid"`
	Gid         int           `codec:"gid"`
	Groups      []int         `codec:"groups"`
	Pwd         string        `codec:"pwd"`
	Env         []string      `codec:"env"` // "KEY=value" pairs, sorted.
	Command     string        `codec:"command"`
	LoopDevices int           `codec:"loop_devices"`
	LogLevel    string        `codec:"log_level"`
}

/*
	Resolved holds host paths for the root image and each include, in
	configuration order, plus the cache keys they occupy.
*/
type Resolved struct {
	Root     string
	Includes []string
	Keys     []cache.Key
}

/*
	Computes the plan for running `command`.

	Nothing is touched on the host except for `stat`ing the resolved paths
	to pick mount kinds; a path that doesn't exist is a `CannotMountPath`.

	The identity is the invoker's unless the configuration overrides it.
	Supplementary groups are the invoker's, unless UID is overridden, in
	which case only the target gid is kept.
*/
func BuildPlan(
	cfg *def.Config,
	resolved Resolved,
	id privilege.Identity,
	environ []string,
	command string,
	stat func(string) (os.FileInfo, error),
) (Plan, error) {
	var plan Plan
	if len(resolved.Includes) != len(cfg.Includes) {
		panic("resolved includes don't match configuration")
	}

	rootKind, err := kindOf(resolved.Root, stat)
	if err != nil {
		return plan, err
	}
	plan.Root = mount.Mount{
		Source: resolved.Root,
		Target: cfg.RootMountPath,
		Kind:   rootKind,
	}
	for i, inc := range cfg.Includes {
		kind, err := kindOf(resolved.Includes[i], stat)
		if err != nil {
			return plan, err
		}
		plan.Mounts = append(plan.Mounts, mount.Mount{
			Source: resolved.Includes[i],
			Target: underRoot(cfg.RootMountPath, inc.Dest),
			Kind:   kind,
		})
	}

	plan.Uid, plan.Gid = 0, 0
	if id.Uid != nil {
		plan.Uid = *id.Uid
	}
	if id.Gid != nil {
		plan.Gid = *id.Gid
	}
	if cfg.Uid != nil {
		plan.Uid = *cfg.Uid
	}
	if cfg.Gid != nil {
		plan.Gid = *cfg.Gid
	}
	if cfg.Uid == nil && len(id.Groups) > 0 {
		plan.Groups = append([]int{}, id.Groups...)
	} else {
		plan.Groups = []int{plan.Gid}
	}

	plan.Env = composeEnv(environ, cfg.Environ)
	plan.Pwd = cfg.Pwd
	if plan.Pwd == "" {
		plan.Pwd = def.DefaultPwd
	}
	plan.Command = command
	if cfg.NumLoopDevices != nil {
		plan.LoopDevices = *cfg.NumLoopDevices
	}
	return plan, nil
}

// Places `dest` beneath `root`; ".." can't climb out of it.
func underRoot(root, dest string) string {
	return filepath.Join(root, filepath.Clean("/"+dest))
}

func kindOf(path string, stat func(string) (os.FileInfo, error)) (mount.Kind, error) {
	info, err := stat(path)
	if err != nil {
		return "", CannotMountPath.New("cannot mount %q: %s", path, err)
	}
	kind, err := mount.KindOf(info)
	if err != nil {
		return "", CannotMountPath.New("cannot mount %q: not a file or directory", path)
	}
	return kind, nil
}

/*
	Overlays `overrides` on the inherited environment.  Override values may
	refer to inherited variables, e.g. `$PATH:/opt/bin`.
*/
func composeEnv(environ []string, overrides map[string]string) []string {
	inherited := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		inherited[k] = v
	}
	result := make(map[string]string, len(inherited)+len(overrides))
	for k, v := range inherited {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = os.Expand(v, func(name string) string { return inherited[name] })
	}
	env := make([]string, 0, len(result))
	for k, v := range result {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
