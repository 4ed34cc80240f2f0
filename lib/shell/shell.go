/*
	Package shell runs the external programs dwight leans on
	(git, hg, mount) and turns their failures into errors.

	Commands are built with gosh.  A non-zero exit becomes a
	`CommandFailed` error carrying the command line and exit code;
	failures to launch at all (missing binary, missing cwd) are
	reported the same way with an exit code of -1.
*/
package shell

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/polydawn/gosh"
	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"polydawn.net/dwight/def"
)

var CommandFailed *errors.ErrorClass = def.RuntimeError.NewClass("CommandFailed")

var (
	CommandKey  = errors.GenSym() // string; the command line.
	ExitCodeKey = errors.GenSym() // int; -1 if the command never ran.
)

/*
	Cmd describes a single invocation of an external program.
*/
type Cmd struct {
	Args []string          // program name first.
	Env  map[string]string // overlaid on the inherited environment.
	Cwd  string            // empty for the current dir.
}

func Command(args ...string) Cmd {
	return Cmd{Args: args}
}

// Returns a copy of the command with additional environment.
func (c Cmd) WithEnv(env map[string]string) Cmd {
	merged := make(map[string]string, len(c.Env)+len(env))
	for k, v := range c.Env {
		merged[k] = v
	}
	for k, v := range env {
		merged[k] = v
	}
	c.Env = merged
	return c
}

func (c Cmd) InDir(dir string) Cmd {
	c.Cwd = dir
	return c
}

func (c Cmd) String() string {
	return strings.Join(c.Args, " ")
}

/*
	Runner executes commands.  `Exec` is the real thing; tests substitute
	recorders.
*/
type Runner interface {
	Run(c Cmd) error
}

/*
	Exec runs commands as child processes, logging each one.
	Output is captured, and logged at debug level or attached to the
	error on failure.
*/
type Exec struct {
	Log log15.Logger
}

func (e Exec) Run(c Cmd) error {
	if len(c.Args) == 0 {
		return CommandFailed.NewWith("no command given", errors.SetData(CommandKey, ""), errors.SetData(ExitCodeKey, -1))
	}
	log := e.Log
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	log.Debug("running command", "cmd", c.String(), "cwd", c.Cwd)

	var buf bytes.Buffer
	code := -1
	var launchErr error
	try.Do(func() {
		code = bake(c).Bake(gosh.Opts{
			OkExit: gosh.AnyExit,
			Out:    &buf,
			Err:    &buf,
		}).Run().GetExitCode()
	}).CatchAll(func(err error) {
		launchErr = err
	}).Done()

	output := buf.String()
	if launchErr != nil {
		log.Warn("command could not be started", "cmd", c.String(), "err", launchErr)
		return CommandFailed.NewWith(fmt.Sprintf("could not run %q: %s", c.String(), launchErr),
			errors.SetData(CommandKey, c.String()),
			errors.SetData(ExitCodeKey, -1),
		)
	}
	if code != 0 {
		log.Warn("command failed", "cmd", c.String(), "code", code, "output", strings.TrimSpace(output))
		return CommandFailed.NewWith(fmt.Sprintf("%q exited with code %d: %s", c.String(), code, strings.TrimSpace(output)),
			errors.SetData(CommandKey, c.String()),
			errors.SetData(ExitCodeKey, code),
		)
	}
	log.Debug("command finished", "cmd", c.String(), "output", strings.TrimSpace(output))
	return nil
}

func bake(c Cmd) gosh.Command {
	parts := make([]interface{}, 0, len(c.Args)+1)
	for _, arg := range c.Args {
		parts = append(parts, arg)
	}
	parts = append(parts, gosh.NullIO)
	cmd := gosh.Gosh(parts...)
	opts := gosh.Opts{}
	if c.Env != nil {
		opts.Env = c.Env
	}
	if c.Cwd != "" {
		opts.Cwd = c.Cwd
	}
	return cmd.Bake(opts)
}

// Reads the command line from a `CommandFailed` error.
func FailedCommand(err error) string {
	s, _ := errors.GetData(err, CommandKey).(string)
	return s
}

// Reads the exit code from a `CommandFailed` error, or -1.
func FailedExitCode(err error) int {
	code, ok := errors.GetData(err, ExitCodeKey).(int)
	if !ok {
		return -1
	}
	return code
}
