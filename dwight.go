package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/spacemonkeygo/errors"
	"github.com/spacemonkeygo/errors/try"

	"polydawn.net/dwight/cli"
	"polydawn.net/dwight/config"
	"polydawn.net/dwight/def"
	"polydawn.net/dwight/environment"
)

func main() {
	// The re-exec'd chroot child takes over before anything else happens.
	if len(os.Args) > 1 && os.Args[1] == environment.ChildArg {
		environment.ChildMain()
	}

	try.Do(func() {
		cli.Main(os.Args, os.Stderr, os.Stdout)
	}).Catch(cli.Exit, func(err *errors.Error) {
		// The command ran; its exit code is ours.  Nothing to report.
		os.Exit(int(cli.GetExitCode(err, cli.EXIT_UNKNOWNPANIC)))
	}).Catch(cli.Error, func(err *errors.Error) {
		exitUser(err, cli.GetExitCode(err, cli.EXIT_USER))
	}).Catch(def.UsageError, func(err *errors.Error) {
		exitUser(err, cli.EXIT_USER)
	}).Catch(def.ConfigError, func(err *errors.Error) {
		exitUser(err, cli.EXIT_USER)
	}).CatchAll(func(err error) {
		// Errors that aren't marked as valid user-facing issues should be
		// logged in preparation for a bug report.
		if config.DebugEnabled() {
			// in debug-mode, repanic all the way to death so that we get all of golang's built in log features.
			panic(err)
		}
		// save the error to a file.  we want to keep the stacks, but not scare away the user.
		logPath, saveErr := saveErrorReport(err)
		var saveMsg string
		if saveErr == nil {
			saveMsg = fmt.Sprintf("The full error has been logged to a file: %q.  Please include this in the report.", logPath)
		} else {
			saveMsg = fmt.Sprintf("Additionally, we were unable to save a full log of the problem (\"%s\").", saveErr)
		}
		fmt.Fprintf(os.Stderr,
			"dwight encountered a serious issue and was unable to complete your request!\n"+
				saveMsg+"\n"+
				"\n"+
				"This is the short version of the problem:\n"+
				"%s\n",
			errors.GetMessage(err))
		os.Exit(int(cli.EXIT_UNKNOWNPANIC))
	}).Done()
}

// Errors the user can act on get a short message and no stack, unless debugging.
func exitUser(err *errors.Error, code cli.ExitCode) {
	if config.DebugEnabled() {
		panic(err)
	}
	fmt.Fprintf(os.Stderr, "dwight was unable to complete your request!\n%s\n", err.Message())
	os.Exit(int(code))
}

func saveErrorReport(caught error) (string, error) {
	logFile, err := ioutil.TempFile(os.TempDir(), "dwight-error-report-")
	if err != nil {
		return "", err
	}
	defer logFile.Close()
	fmt.Fprintf(logFile, "dwight error report\n")
	fmt.Fprintf(logFile, "===================\n")
	fmt.Fprintf(logFile, "Date: %s\n", time.Now())
	fmt.Fprintf(logFile, "Args: %q\n", os.Args)
	fmt.Fprintf(logFile, "\n")
	fmt.Fprintf(logFile, "Full error:\n")
	fmt.Fprintf(logFile, "-----------\n")
	fmt.Fprintf(logFile, "%+v\n", caught)
	fmt.Fprintf(logFile, "\n")
	if e, ok := caught.(*errors.Error); ok {
		fmt.Fprintf(logFile, "Stack:\n")
		fmt.Fprintf(logFile, "------\n")
		fmt.Fprintf(logFile, "%s\n", e.Stack())
	}
	return logFile.Name(), nil
}
