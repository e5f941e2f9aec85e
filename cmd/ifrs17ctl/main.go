// Command ifrs17ctl prints IFRS 17 reporting views computed from a data file.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	os.Exit(int(run(context.Background(), path.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr)))
}

// run parses args and executes the selected command.
func run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) subcommands.ExitStatus {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)

	env := newEnv(flags, stdout, stderr)
	commander := subcommands.NewCommander(flags, name)
	commander.Output = stdout
	commander.Error = stderr
	register(commander, env)

	if err := flags.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx)
}
