package environment

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/inconshreveable/log15"
	"github.com/ugorji/go/codec"
)

/*
	Starts the child in a new mount namespace with our stdio, feeds it the
	plan, and waits for it.  Returns the command's exit code.

	The namespace is created at clone time rather than by the child itself,
	so every thread of the child (and every process it spawns) shares it.
*/
func launch(plan Plan, log log15.Logger) (int, error) {
	planReader, planWriter, err := os.Pipe()
	if err != nil {
		return -1, LaunchError.New("cannot create plan pipe: %s", err)
	}
	defer planWriter.Close()

	cmd := exec.Command("/proc/self/exe", ChildArg)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{planReader} // becomes fd 3 in child
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: syscall.CLONE_NEWNS,
		Pdeathsig:  syscall.SIGKILL,
	}
	if err := cmd.Start(); err != nil {
		planReader.Close()
		return -1, LaunchError.New("cannot start child: %s", err)
	}
	planReader.Close()
	log.Debug("child started", "pid", cmd.Process.Pid)

	if err := codec.NewEncoder(planWriter, planHandle).Encode(plan); err != nil {
		// the child will fail to read it and exit on its own.
		log.Error("cannot send plan to child", "err", err)
	}
	planWriter.Close()

	exitCode := -1
	for exitCode == -1 {
		exitCode, err = waitTry(cmd)
		if err != nil {
			return -1, LaunchError.New("cannot wait for child: %s", err)
		}
	}
	log.Debug("child exited", "code", exitCode)
	return exitCode, nil
}

func waitTry(cmd *exec.Cmd) (int, error) {
	// os.Process.Wait may return for state changes other than exit (stop, continue),
	// so the caller loops until we report a real exit.
	processState, err := cmd.Process.Wait()
	if err != nil {
		return -1, err
	}
	waitStatus, ok := processState.Sys().(syscall.WaitStatus)
	if !ok {
		panic("dwight only works on systems with posix-style process semantics")
	}
	switch {
	case waitStatus.Exited():
		return waitStatus.ExitStatus(), nil
	case waitStatus.Signaled():
		// As in shells: a process killed by signal N exits 128+N.
		return int(waitStatus.Signal()) + 128, nil
	default:
		return -1, nil
	}
}
