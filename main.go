// Command devlab stands up and tears down a local kind-based development
// environment with Istio, MongoDB, and monitoring preinstalled.
package main

import (
	"io"
	"os"
	"runtime/debug"

	"github.com/devlab-sh/devlab/internal/buildmeta"
	"github.com/devlab-sh/devlab/pkg/cli/cmd"
	"github.com/devlab-sh/devlab/pkg/ui/notify"
)

func main() {
	os.Exit(run(os.Args[1:], execute, os.Stderr))
}

// run invokes fn and converts a panic inside a command handler into exit
// code 1 with a readable stack trace instead of a raw crash.
func run(args []string, fn func([]string) int, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			notify.Errorf(stderr, "panic recovered: %v\n%s", r, debug.Stack())

			code = 1
		}
	}()

	return fn(args)
}

func execute(args []string) int {
	rootCmd := cmd.NewRootCmd(buildmeta.Version, buildmeta.Commit, buildmeta.Date)
	rootCmd.SetArgs(args)

	err := cmd.Execute(rootCmd)
	if err != nil {
		notify.Errorf(rootCmd.ErrOrStderr(), "%v", err)

		return 1
	}

	return 0
}
