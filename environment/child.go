package environment

import (
	"os"
	"runtime"

	"github.com/inconshreveable/log15"
	"github.com/ugorji/go/codec"

	"polydawn.net/dwight/lib/shell"
)

/*
	The argument that marks a re-exec of dwight as the chroot child.
	`main` must hand over to `ChildMain` when it sees this as the first
	argument, before doing anything else.
*/
const ChildArg = "__dwight_chroot_child__"

// The inherited fd the plan arrives on.
const planFd = 3

var planHandle = &codec.JsonHandle{}

/*
	Entrypoint for the child process.  Reads the plan from the parent,
	sets up the chroot, and execs the command.

	Never returns: either the command replaces this process, or we exit
	with `ExitSetupFailed`.
*/
func ChildMain() {
	runtime.LockOSThread()

	log := log15.New("proc", "child")
	log.SetHandler(log15.StreamHandler(os.Stderr, log15.TerminalFormat()))

	var plan Plan
	planFile := os.NewFile(planFd, "plan")
	if err := codec.NewDecoder(planFile, planHandle).Decode(&plan); err != nil {
		log.Crit("cannot read plan from parent", "err", err)
		os.Exit(ExitSetupFailed)
	}
	planFile.Close()

	if lvl, err := log15.LvlFromString(plan.LogLevel); err == nil {
		log.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
	}

	err := Execute(plan, &systemExecutor{
		log: log,
		run: shell.Exec{Log: log},
	})
	if err == nil {
		err = SetupError.New("exec returned without running the command")
	}
	log.Crit("chroot setup failed", "err", err)
	os.Exit(ExitSetupFailed)
}
